package svc

import (
	"context"
	"io"
	"testing"

	"github.com/beldeveloper/deploy-bot/internal/app"
	"github.com/beldeveloper/deploy-bot/internal/app/config"
)

func gitConfig() config.Config {
	var cfg config.Config
	cfg.Git.RepoDir = "/app/repo"
	return cfg
}

func TestGitLatestCommitBranch(t *testing.T) {
	cmd := &app.MockCmdSvc{Out: "abc1234\n"}
	got := NewGit(cmd, gitConfig()).LatestCommit(context.Background(), "develop")
	if got != "abc1234" {
		t.Errorf("LatestCommit = %q", got)
	}
	if len(cmd.Cmds) != 1 {
		t.Fatalf("expected 1 exec, got %d", len(cmd.Cmds))
	}
	c := cmd.Cmds[0]
	if c.Path != "git" || c.Dir != "/app/repo" {
		t.Errorf("unexpected command: %+v", c)
	}
	want := []string{"rev-parse", "--short", "origin/develop"}
	if len(c.Args) != 3 || c.Args[0] != want[0] || c.Args[1] != want[1] || c.Args[2] != want[2] {
		t.Errorf("args = %v, want %v", c.Args, want)
	}
}

func TestGitLatestCommitHead(t *testing.T) {
	cmd := &app.MockCmdSvc{Out: "deadbee\n"}
	got := NewGit(cmd, gitConfig()).LatestCommit(context.Background(), "")
	if got != "deadbee" {
		t.Errorf("LatestCommit = %q", got)
	}
	if c := cmd.Cmds[0]; c.Args[2] != "HEAD" {
		t.Errorf("empty branch must resolve HEAD, got %v", c.Args)
	}
}

func TestGitLatestCommitFailure(t *testing.T) {
	cmd := &app.MockCmdSvc{Err: io.ErrUnexpectedEOF}
	if got := NewGit(cmd, gitConfig()).LatestCommit(context.Background(), "main"); got != app.CommitUnknown {
		t.Errorf("failure must yield the unknown sentinel, got %q", got)
	}
}

func TestGitCurrentBranch(t *testing.T) {
	cmd := &app.MockCmdSvc{Out: "develop\n"}
	got := NewGit(cmd, gitConfig()).CurrentBranch(context.Background())
	if got != "develop" {
		t.Errorf("CurrentBranch = %q", got)
	}
	c := cmd.Cmds[0]
	if len(c.Args) != 2 || c.Args[0] != "rev-parse" || c.Args[1] != "--abbrev-ref" {
		t.Errorf("args = %v", c.Args)
	}
}

func TestGitCurrentBranchFailure(t *testing.T) {
	cmd := &app.MockCmdSvc{Err: io.ErrUnexpectedEOF}
	if got := NewGit(cmd, gitConfig()).CurrentBranch(context.Background()); got != app.CommitUnknown {
		t.Errorf("failure must yield the unknown sentinel, got %q", got)
	}
}
