package svc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/beldeveloper/deploy-bot/internal/app"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func collect(p app.Process) []string {
	var lines []string
	for l := range p.Lines() {
		lines = append(lines, l)
	}
	return lines
}

func TestRunnerStreamsInOrder(t *testing.T) {
	script := writeScript(t, "echo one\necho two >&2\necho three\n")
	p := NewRunner().Run(context.Background(), app.Cmd{Path: script})
	lines := collect(p)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %v", lines)
	}
	if lines[0] != "one" || lines[2] != "three" {
		t.Errorf("stdout lines out of order: %v", lines)
	}
	if p.ExitCode() != 0 {
		t.Errorf("exit code = %d, want 0", p.ExitCode())
	}
	if p.Err() != nil {
		t.Errorf("unexpected error: %v", p.Err())
	}
}

func TestRunnerExitCode(t *testing.T) {
	script := writeScript(t, "echo failing\nexit 3\n")
	p := NewRunner().Run(context.Background(), app.Cmd{Path: script})
	lines := collect(p)
	if len(lines) != 1 || lines[0] != "failing" {
		t.Fatalf("unexpected lines: %v", lines)
	}
	if p.ExitCode() != 3 {
		t.Errorf("exit code = %d, want 3", p.ExitCode())
	}
	if p.Err() != nil {
		t.Errorf("a nonzero exit is not a fault: %v", p.Err())
	}
}

func TestRunnerStartFault(t *testing.T) {
	p := NewRunner().Run(context.Background(), app.Cmd{Path: "/nonexistent/binary"})
	if lines := collect(p); len(lines) != 0 {
		t.Fatalf("expected no lines, got %v", lines)
	}
	if p.Err() == nil {
		t.Fatal("expected a launch fault")
	}
}

func TestRunnerPassesArgsAndEnv(t *testing.T) {
	script := writeScript(t, `echo "$1 $2"`+"\necho \"$PROBE\"\n")
	p := NewRunner().Run(context.Background(), app.Cmd{
		Path: script,
		Args: []string{"staging", "deadbeef"},
		Env:  []string{"PATH=/usr/bin:/bin", "PROBE=probe-value"},
	})
	lines := collect(p)
	if len(lines) != 2 {
		t.Fatalf("unexpected lines: %v", lines)
	}
	if lines[0] != "staging deadbeef" {
		t.Errorf("argv not passed positionally: %q", lines[0])
	}
	if lines[1] != "probe-value" {
		t.Errorf("env not applied: %q", lines[1])
	}
}

func TestRunnerTrimsTrailingWhitespace(t *testing.T) {
	script := writeScript(t, "printf 'padded   \\r\\n'\n")
	p := NewRunner().Run(context.Background(), app.Cmd{Path: script})
	lines := collect(p)
	if len(lines) != 1 || lines[0] != "padded" {
		t.Errorf("expected trimmed line, got %q", lines)
	}
}

func TestRunnerContextCancel(t *testing.T) {
	script := writeScript(t, "echo started\nsleep 30\necho finished\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := NewRunner().Run(ctx, app.Cmd{Path: script})
	var lines []string
	for l := range p.Lines() {
		lines = append(lines, l)
		if l == "started" {
			cancel()
		}
	}
	for _, l := range lines {
		if l == "finished" {
			t.Fatal("process survived cancellation")
		}
	}
	if p.ExitCode() == 0 && p.Err() == nil {
		t.Error("a killed process must not report success")
	}
}
