package svc

import (
	"context"
	"log"
	"strings"

	"github.com/beldeveloper/deploy-bot/internal/app"
	"github.com/beldeveloper/deploy-bot/internal/app/config"
	"github.com/beldeveloper/go-errors-context"
)

// NewGit creates a new instance of the git service.
func NewGit(cmd app.CmdSvc, cfg config.Config) app.VcsSvc {
	return Git{
		cmd:     cmd,
		repoDir: cfg.Git.RepoDir,
	}
}

// Git resolves commits and branches from the local repository clone.
type Git struct {
	cmd     app.CmdSvc
	repoDir string
}

// LatestCommit returns the short hash of the branch tip. When a branch is
// given, the remote-tracking ref is resolved so the result reflects that
// branch specifically, not whatever happens to be checked out locally. Any
// failure yields the "unknown" sentinel instead of an error.
func (s Git) LatestCommit(ctx context.Context, branch string) string {
	ref := "HEAD"
	if branch != "" {
		ref = "origin/" + branch
	}
	out, err := s.cmd.Exec(ctx, app.Cmd{
		Path: "git",
		Args: []string{"rev-parse", "--short", ref},
		Dir:  s.repoDir,
	})
	if err != nil {
		log.Println(errors.WrapContext(err, errors.Context{
			Path:   "svc.Git.LatestCommit",
			Params: errors.Params{"ref": ref},
		}))
		return app.CommitUnknown
	}
	return strings.TrimSpace(out)
}

// CurrentBranch returns the name of the locally checked out branch, or the
// "unknown" sentinel on failure.
func (s Git) CurrentBranch(ctx context.Context) string {
	out, err := s.cmd.Exec(ctx, app.Cmd{
		Path: "git",
		Args: []string{"rev-parse", "--abbrev-ref", "HEAD"},
		Dir:  s.repoDir,
	})
	if err != nil {
		log.Println(errors.WrapContext(err, errors.Context{Path: "svc.Git.CurrentBranch"}))
		return app.CommitUnknown
	}
	return strings.TrimSpace(out)
}
