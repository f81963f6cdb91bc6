package svc

import (
	"context"

	"github.com/beldeveloper/deploy-bot/internal/app"
	pkgos "github.com/beldeveloper/deploy-bot/pkg/os"
)

// NewOS creates a new instance of the OS command service.
func NewOS() app.CmdSvc {
	return OS{}
}

// OS runs commands to completion and returns their buffered output.
type OS struct {
}

// Exec the command and return its standard output.
func (s OS) Exec(ctx context.Context, cmd app.Cmd) (string, error) {
	return pkgos.Exec(ctx, pkgos.Cmd{
		Name: cmd.Path,
		Args: cmd.Args,
		Env:  cmd.Env,
		Dir:  cmd.Dir,
	})
}
