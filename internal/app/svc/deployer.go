package svc

import (
	"context"
	"fmt"
	"log"

	"github.com/beldeveloper/deploy-bot/internal/app"
	"github.com/beldeveloper/deploy-bot/internal/app/config"
	"github.com/beldeveloper/go-errors-context"
)

// NewDeployer creates a new instance of the deploy service.
func NewDeployer(
	validation app.ValidationSvc,
	sanitizer app.SanitizerSvc,
	runner app.RunnerSvc,
	cfg config.Config,
) app.DeploySvc {
	return Deployer{
		validation:     validation,
		sanitizer:      sanitizer,
		runner:         runner,
		deployScript:   cfg.Scripts.Deploy,
		rollbackScript: cfg.Scripts.Rollback,
	}
}

// Deployer orchestrates deployments and rollbacks. It validates the input,
// runs the script with a sanitized environment, relays every output line,
// and terminates a failed stream with exactly one sentinel line. The
// sentinel is always the last line of the stream.
type Deployer struct {
	validation     app.ValidationSvc
	sanitizer      app.SanitizerSvc
	runner         app.RunnerSvc
	deployScript   string
	rollbackScript string
}

// Deploy runs the deployment script for the environment and commit and
// streams its output. Invalid input is rejected before any process launches.
func (s Deployer) Deploy(ctx context.Context, environment, commit string) (<-chan string, error) {
	environment, err := s.validation.Environment(environment)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "svc.Deployer.Deploy.validateEnvironment"})
	}
	commit, err = s.validation.Commit(commit)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "svc.Deployer.Deploy.validateCommit"})
	}
	out := make(chan string)
	go func() {
		defer close(out)
		p := s.runner.Run(ctx, app.Cmd{
			Path: s.deployScript,
			Args: []string{environment, commit},
			Env:  s.sanitizer.SubprocessEnv(),
		})
		for line := range p.Lines() {
			log.Printf("[deploy/%s] %s\n", environment, line)
			out <- line
		}
		if err := p.Err(); err != nil {
			line := "ERROR: " + err.Error()
			log.Printf("[deploy/%s] %s\n", environment, line)
			out <- line
			return
		}
		if code := p.ExitCode(); code != 0 {
			line := fmt.Sprintf("ERROR: Deploy script exited with code %d", code)
			log.Printf("[deploy/%s] %s\n", environment, line)
			out <- line
		}
	}()
	return out, nil
}

// Rollback runs the rollback script for the environment and streams its
// output, with the same sentinel contract as Deploy.
func (s Deployer) Rollback(ctx context.Context, environment string) (<-chan string, error) {
	environment, err := s.validation.Environment(environment)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "svc.Deployer.Rollback.validateEnvironment"})
	}
	out := make(chan string)
	go func() {
		defer close(out)
		p := s.runner.Run(ctx, app.Cmd{
			Path: s.rollbackScript,
			Args: []string{environment},
			Env:  s.sanitizer.SubprocessEnv(),
		})
		for line := range p.Lines() {
			log.Printf("[rollback/%s] %s\n", environment, line)
			out <- line
		}
		if err := p.Err(); err != nil {
			line := "ERROR during rollback: " + err.Error()
			log.Printf("[rollback/%s] %s\n", environment, line)
			out <- line
			return
		}
		if code := p.ExitCode(); code != 0 {
			line := fmt.Sprintf("ERROR: Rollback script exited with code %d", code)
			log.Printf("[rollback/%s] %s\n", environment, line)
			out <- line
		}
	}()
	return out, nil
}
