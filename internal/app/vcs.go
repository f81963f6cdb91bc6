package app

import "context"

// VcsSvc describes the version control reads that support deployments. Both
// operations fall back to the CommitUnknown sentinel instead of returning an
// error: the result flows into validation as already-known-safe data.
type VcsSvc interface {
	// LatestCommit returns the short hash of the tip of the given branch.
	// When branch is empty, the locally checked out HEAD is resolved.
	LatestCommit(ctx context.Context, branch string) string
	// CurrentBranch returns the name of the locally checked out branch.
	CurrentBranch(ctx context.Context) string
}
