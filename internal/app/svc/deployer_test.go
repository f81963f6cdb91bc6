package svc

import (
	"context"
	"io"
	"testing"

	"github.com/beldeveloper/deploy-bot/internal/app"
	"github.com/beldeveloper/deploy-bot/internal/app/config"
	"github.com/beldeveloper/deploy-bot/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
)

func deployerConfig() config.Config {
	cfg := sanitizerConfig()
	cfg.Scripts.Deploy = "/app/scripts/deploy.sh"
	cfg.Scripts.Rollback = "/app/scripts/rollback.sh"
	return cfg
}

func newTestDeployer(runner *app.MockRunner) app.DeploySvc {
	cfg := deployerConfig()
	return NewDeployer(NewValidation(), NewSanitizer(cfg), runner, cfg)
}

func drain(ch <-chan string) []string {
	var lines []string
	for l := range ch {
		lines = append(lines, l)
	}
	return lines
}

func TestDeployerDeploySuccess(t *testing.T) {
	runner := &app.MockRunner{Proc: &app.MockProcess{OutLines: []string{"pulling", "restarting", "done"}}}
	out, err := newTestDeployer(runner).Deploy(context.Background(), app.EnvStaging, "deadbeef")
	if err != nil {
		t.Fatal(err)
	}
	lines := drain(out)
	if len(lines) != 3 {
		t.Fatalf("unexpected lines: %v", lines)
	}
	for _, l := range lines {
		if app.IsErrorLine(l) {
			t.Errorf("successful deploy must not emit a sentinel: %q", l)
		}
	}
	if runner.Called != 1 {
		t.Fatalf("runner called %d times", runner.Called)
	}
	cmd := runner.Cmds[0]
	if cmd.Path != "/app/scripts/deploy.sh" {
		t.Errorf("script path = %q", cmd.Path)
	}
	if len(cmd.Args) != 2 || cmd.Args[0] != app.EnvStaging || cmd.Args[1] != "deadbeef" {
		t.Errorf("argv = %v, want [staging deadbeef]", cmd.Args)
	}
	if len(cmd.Env) != 13 {
		t.Errorf("subprocess env has %d entries, want the sanitized 13", len(cmd.Env))
	}
}

func TestDeployerDeployExitCode(t *testing.T) {
	runner := &app.MockRunner{Proc: &app.MockProcess{OutLines: []string{"pulling"}, Exit: 1}}
	out, err := newTestDeployer(runner).Deploy(context.Background(), app.EnvStaging, "deadbeef")
	if err != nil {
		t.Fatal(err)
	}
	lines := drain(out)
	if len(lines) != 2 {
		t.Fatalf("unexpected lines: %v", lines)
	}
	if lines[1] != "ERROR: Deploy script exited with code 1" {
		t.Errorf("sentinel = %q", lines[1])
	}
}

func TestDeployerDeployFault(t *testing.T) {
	runner := &app.MockRunner{Proc: &app.MockProcess{Fault: io.ErrUnexpectedEOF}}
	out, err := newTestDeployer(runner).Deploy(context.Background(), app.EnvProduction, "deadbeef")
	if err != nil {
		t.Fatal(err)
	}
	lines := drain(out)
	if len(lines) != 1 {
		t.Fatalf("expected the sentinel only, got %v", lines)
	}
	if lines[0] != "ERROR: unexpected EOF" {
		t.Errorf("sentinel = %q", lines[0])
	}
}

func TestDeployerDeployValidation(t *testing.T) {
	runner := &app.MockRunner{Proc: &app.MockProcess{}}
	d := newTestDeployer(runner)
	_, err := d.Deploy(context.Background(), "qa", "deadbeef")
	if !errors.Is(err, errtype.ErrInvalidEnvironment) {
		t.Errorf("want ErrInvalidEnvironment, got %v", err)
	}
	_, err = d.Deploy(context.Background(), app.EnvStaging, "deadbeef; rm -rf /")
	if !errors.Is(err, errtype.ErrInvalidCommit) {
		t.Errorf("want ErrInvalidCommit, got %v", err)
	}
	if runner.Called != 0 {
		t.Errorf("no process may launch on invalid input, runner called %d times", runner.Called)
	}
}

func TestDeployerRollbackSuccess(t *testing.T) {
	runner := &app.MockRunner{Proc: &app.MockProcess{OutLines: []string{"reverting", "done"}}}
	out, err := newTestDeployer(runner).Rollback(context.Background(), app.EnvProduction)
	if err != nil {
		t.Fatal(err)
	}
	lines := drain(out)
	if len(lines) != 2 {
		t.Fatalf("unexpected lines: %v", lines)
	}
	cmd := runner.Cmds[0]
	if cmd.Path != "/app/scripts/rollback.sh" {
		t.Errorf("script path = %q", cmd.Path)
	}
	if len(cmd.Args) != 1 || cmd.Args[0] != app.EnvProduction {
		t.Errorf("argv = %v, want [production]", cmd.Args)
	}
}

func TestDeployerRollbackExitCode(t *testing.T) {
	runner := &app.MockRunner{Proc: &app.MockProcess{Exit: 2}}
	out, err := newTestDeployer(runner).Rollback(context.Background(), app.EnvStaging)
	if err != nil {
		t.Fatal(err)
	}
	lines := drain(out)
	if len(lines) != 1 || lines[0] != "ERROR: Rollback script exited with code 2" {
		t.Errorf("sentinel = %v", lines)
	}
}

func TestDeployerRollbackFault(t *testing.T) {
	runner := &app.MockRunner{Proc: &app.MockProcess{Fault: io.ErrClosedPipe}}
	out, err := newTestDeployer(runner).Rollback(context.Background(), app.EnvStaging)
	if err != nil {
		t.Fatal(err)
	}
	lines := drain(out)
	if len(lines) != 1 || lines[0] != "ERROR during rollback: io: read/write on closed pipe" {
		t.Errorf("sentinel = %v", lines)
	}
}

func TestDeployerRollbackValidation(t *testing.T) {
	runner := &app.MockRunner{Proc: &app.MockProcess{}}
	_, err := newTestDeployer(runner).Rollback(context.Background(), "qa")
	if !errors.Is(err, errtype.ErrInvalidEnvironment) {
		t.Errorf("want ErrInvalidEnvironment, got %v", err)
	}
	if runner.Called != 0 {
		t.Errorf("runner called %d times", runner.Called)
	}
}
