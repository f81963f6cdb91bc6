package app

import "context"

// MockProcess replays a fixed set of output lines as a Process.
type MockProcess struct {
	OutLines []string
	Exit     int
	Fault    error
}

func (m *MockProcess) Lines() <-chan string {
	ch := make(chan string, len(m.OutLines))
	for _, l := range m.OutLines {
		ch <- l
	}
	close(ch)
	return ch
}

func (m *MockProcess) ExitCode() int { return m.Exit }

func (m *MockProcess) Err() error { return m.Fault }

// MockRunner records the command it was asked to run and hands back a
// prepared process.
type MockRunner struct {
	Proc   *MockProcess
	Called int
	Cmds   []Cmd
}

func (m *MockRunner) Run(ctx context.Context, cmd Cmd) Process {
	m.Called++
	m.Cmds = append(m.Cmds, cmd)
	return m.Proc
}

// MockDeploySvc replays prepared deploy and rollback line streams and
// records the arguments of every call.
type MockDeploySvc struct {
	DeployLines   []string
	RollbackLines []string
	DeployErr     error
	RollbackErr   error
	DeployEnvs    []string
	DeployCommits []string
	RollbackEnvs  []string
}

func (m *MockDeploySvc) Deploy(ctx context.Context, environment, commit string) (<-chan string, error) {
	m.DeployEnvs = append(m.DeployEnvs, environment)
	m.DeployCommits = append(m.DeployCommits, commit)
	if m.DeployErr != nil {
		return nil, m.DeployErr
	}
	return replayLines(m.DeployLines), nil
}

func (m *MockDeploySvc) Rollback(ctx context.Context, environment string) (<-chan string, error) {
	m.RollbackEnvs = append(m.RollbackEnvs, environment)
	if m.RollbackErr != nil {
		return nil, m.RollbackErr
	}
	return replayLines(m.RollbackLines), nil
}

func replayLines(lines []string) <-chan string {
	ch := make(chan string, len(lines))
	for _, l := range lines {
		ch <- l
	}
	close(ch)
	return ch
}

// MockCmdSvc records buffered command executions.
type MockCmdSvc struct {
	Out  string
	Err  error
	Cmds []Cmd
}

func (m *MockCmdSvc) Exec(ctx context.Context, cmd Cmd) (string, error) {
	m.Cmds = append(m.Cmds, cmd)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Out, nil
}

// MockStatusSvc returns a fixed status snapshot.
type MockStatusSvc struct {
	Snapshot map[string]EnvironmentStatus
	Called   int
}

func (m *MockStatusSvc) Status(ctx context.Context) map[string]EnvironmentStatus {
	m.Called++
	return m.Snapshot
}

// MockAuditSvc collects audit events in memory.
type MockAuditSvc struct {
	Events []AuditEvent
	Err    error
}

func (m *MockAuditSvc) Log(user User, action string, meta map[string]string) {
	m.Events = append(m.Events, AuditEvent{
		UserID:   user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Action:   action,
		Env:      meta["env"],
		Commit:   meta["commit"],
	})
}

func (m *MockAuditSvc) Recent(limit int) ([]AuditEvent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if limit > 0 && len(m.Events) > limit {
		return m.Events[len(m.Events)-limit:], nil
	}
	return m.Events, nil
}
