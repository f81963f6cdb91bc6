package app

import (
	"context"
	"strings"
)

// CommitUnknown is the sentinel value for a commit that could not be
// resolved. It passes commit validation as plain data but is never
// interpreted as a real revision.
const CommitUnknown = "unknown"

// Cmd describes an external executable invocation. The arguments are handed
// to the kernel as discrete vector elements; nothing is ever concatenated
// into a shell command line.
type Cmd struct {
	Path string
	Args []string
	Env  []string
	Dir  string
}

// Process is a handle for a started command.
type Process interface {
	// Lines yields the merged stdout/stderr output one line at a time, in the
	// order the process wrote it. The channel is closed once the output is
	// exhausted and the process has terminated.
	Lines() <-chan string
	// ExitCode reports the process exit status. Valid only after Lines is closed.
	ExitCode() int
	// Err reports a launch or read fault. Valid only after Lines is closed.
	Err() error
}

// RunnerSvc describes the service that executes external scripts and streams
// their output.
type RunnerSvc interface {
	Run(ctx context.Context, cmd Cmd) Process
}

// CmdSvc describes the service that runs a command to completion and returns
// its buffered standard output.
type CmdSvc interface {
	Exec(ctx context.Context, cmd Cmd) (string, error)
}

// DeploySvc describes the deployment orchestrator. Both operations return a
// lazy line stream; a failed operation ends with exactly one sentinel line,
// and consumers classify the outcome with IsErrorLine.
type DeploySvc interface {
	Deploy(ctx context.Context, environment, commit string) (<-chan string, error)
	Rollback(ctx context.Context, environment string) (<-chan string, error)
}

// ValidationSvc describes the allowlist validation of caller-supplied input.
type ValidationSvc interface {
	Environment(s string) (string, error)
	Commit(s string) (string, error)
}

// SanitizerSvc builds the minimal subprocess environment for the deployment
// scripts from trusted configuration.
type SanitizerSvc interface {
	SubprocessEnv() []string
}

// IsErrorLine reports whether the line is a failure sentinel emitted by the
// deploy service. The check is a prefix match: ordinary log output that
// merely mentions the word ERROR must not count as a failure.
func IsErrorLine(line string) bool {
	return strings.HasPrefix(line, "ERROR:") || strings.HasPrefix(line, "ERROR during")
}
