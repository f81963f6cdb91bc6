package os

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Cmd is a model of the OS command.
type Cmd struct {
	Name string
	Args []string
	Env  []string
	Dir  string
}

// Exec a system command and get the system output. The extra environment is
// appended to the ambient one; deployment scripts must not go through here,
// they get a sanitized environment via the runner instead.
func Exec(ctx context.Context, cmd Cmd) (string, error) {
	osCmd := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	osCmd.Dir = cmd.Dir
	osCmd.Env = append(os.Environ(), cmd.Env...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	osCmd.Stdout = &out
	osCmd.Stderr = &stderr
	err := osCmd.Run()
	if err != nil {
		return "", fmt.Errorf("%w; output: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out.String(), nil
}
