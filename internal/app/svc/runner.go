package svc

import (
	"bufio"
	"context"
	"io"
	"log"
	"os/exec"
	"strings"

	"github.com/beldeveloper/deploy-bot/internal/app"
)

// maxLineBytes caps a single output line read from a script.
const maxLineBytes = 1024 * 1024

// NewRunner creates a new instance of the runner service.
func NewRunner() app.RunnerSvc {
	return Runner{}
}

// Runner executes external scripts with an exact argument vector (never
// through a shell) and streams their merged stdout/stderr one line at a
// time. Backpressure comes from the OS pipe: a slow consumer simply slows
// the child down, nothing is buffered beyond a single line.
type Runner struct {
}

// Run starts the command. Output lines are decoded permissively (invalid
// bytes replaced) and right-trimmed. When the command cannot be started, the
// line channel is closed immediately and the fault is reported via Err.
func (s Runner) Run(ctx context.Context, cmd app.Cmd) app.Process {
	p := &process{lines: make(chan string)}
	osCmd := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	osCmd.Dir = cmd.Dir
	osCmd.Env = cmd.Env
	pr, pw := io.Pipe()
	osCmd.Stdout = pw
	osCmd.Stderr = pw
	log.Printf("Exec script: %s %v\n", cmd.Path, cmd.Args)
	if err := osCmd.Start(); err != nil {
		p.err = err
		close(p.lines)
		return p
	}
	waited := make(chan struct{})
	go func() {
		// Wait returns once the child exited and its output is fully copied
		// into the pipe; closing the writer then unblocks the scanner's EOF.
		defer close(waited)
		err := osCmd.Wait()
		if exitErr, ok := err.(*exec.ExitError); ok {
			p.exit = exitErr.ExitCode()
		} else if err != nil {
			p.err = err
		}
		_ = pw.Close()
	}()
	go func() {
		defer close(p.lines)
		sc := bufio.NewScanner(pr)
		sc.Buffer(make([]byte, 64*1024), maxLineBytes)
		for sc.Scan() {
			p.lines <- sanitizeLine(sc.Text())
		}
		if err := sc.Err(); err != nil {
			// drain so the writer side can finish
			_, _ = io.Copy(io.Discard, pr)
			<-waited
			if p.err == nil {
				p.err = err
			}
			return
		}
		<-waited
	}()
	return p
}

func sanitizeLine(line string) string {
	return strings.TrimRight(strings.ToValidUTF8(line, "�"), " \t\r\n")
}

type process struct {
	lines chan string
	exit  int
	err   error
}

func (p *process) Lines() <-chan string {
	return p.lines
}

func (p *process) ExitCode() int {
	return p.exit
}

func (p *process) Err() error {
	return p.err
}
