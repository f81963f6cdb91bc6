package telegram

import (
	"context"
	"strings"
	"testing"

	"github.com/beldeveloper/deploy-bot/internal/app"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// fakeChatAPI records outgoing message texts without any network.
type fakeChatAPI struct {
	texts []string
}

func (f *fakeChatAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		f.texts = append(f.texts, v.Text)
	case tgbotapi.EditMessageTextConfig:
		f.texts = append(f.texts, v.Text)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeChatAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeChatAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeChatAPI) StopReceivingUpdates() {}

func (f *fakeChatAPI) contains(sub string) bool {
	for _, t := range f.texts {
		if strings.Contains(t, sub) {
			return true
		}
	}
	return false
}

func newTestBot(api *fakeChatAPI, deploy *app.MockDeploySvc, audit *app.MockAuditSvc) *Bot {
	return &Bot{api: api, deploySvc: deploy, auditSvc: audit}
}

func actions(audit *app.MockAuditSvc) []string {
	res := make([]string, 0, len(audit.Events))
	for _, e := range audit.Events {
		res = append(res, e.Action)
	}
	return res
}

func hasAction(audit *app.MockAuditSvc, action string) bool {
	for _, e := range audit.Events {
		if e.Action == action {
			return true
		}
	}
	return false
}

func TestRunDeploymentSuccess(t *testing.T) {
	api := &fakeChatAPI{}
	deploy := &app.MockDeploySvc{DeployLines: []string{"Pulling image", "Restarting service"}}
	audit := &app.MockAuditSvc{}
	b := newTestBot(api, deploy, audit)

	b.runDeployment(context.Background(), 1, app.User{ID: 42, Username: "alice"}, app.EnvStaging, "deadbeef")

	if len(deploy.RollbackEnvs) != 0 {
		t.Fatalf("a successful deploy must not trigger a rollback, got %v", deploy.RollbackEnvs)
	}
	if !hasAction(audit, "deploy_started") || !hasAction(audit, "deploy_success") {
		t.Errorf("audit actions = %v", actions(audit))
	}
	if !api.contains("✅ Deployment of deadbeef to staging completed.") {
		t.Errorf("missing success summary in %v", api.texts)
	}
}

// A failure sentinel in the deploy stream must trigger a rollback for the
// same environment, relay every rollback line, and report the rollback
// outcome distinctly.
func TestRunDeploymentAutoRollback(t *testing.T) {
	api := &fakeChatAPI{}
	deploy := &app.MockDeploySvc{
		DeployLines:   []string{"Pulling image", "ERROR: Deploy script exited with code 1"},
		RollbackLines: []string{"Reverting to previous image", "Service restored"},
	}
	audit := &app.MockAuditSvc{}
	b := newTestBot(api, deploy, audit)

	b.runDeployment(context.Background(), 1, app.User{ID: 42, Username: "alice"}, app.EnvStaging, "deadbeef")

	if len(deploy.RollbackEnvs) != 1 || deploy.RollbackEnvs[0] != app.EnvStaging {
		t.Fatalf("rollback calls = %v, want exactly one for staging", deploy.RollbackEnvs)
	}
	for _, line := range deploy.RollbackLines {
		if !api.contains(line) {
			t.Errorf("rollback line %q was not relayed; sent: %v", line, api.texts)
		}
	}
	if !hasAction(audit, "deploy_failed") || !hasAction(audit, "auto_rollback_completed") {
		t.Errorf("audit actions = %v", actions(audit))
	}
	if !api.contains("↩️ Automatic rollback of staging completed.") {
		t.Errorf("missing rollback summary in %v", api.texts)
	}
}

func TestRunDeploymentAutoRollbackFailure(t *testing.T) {
	api := &fakeChatAPI{}
	deploy := &app.MockDeploySvc{
		DeployLines:   []string{"ERROR: Deploy script exited with code 1"},
		RollbackLines: []string{"Reverting", "ERROR: Rollback script exited with code 2"},
	}
	audit := &app.MockAuditSvc{}
	b := newTestBot(api, deploy, audit)

	b.runDeployment(context.Background(), 1, app.User{ID: 42, Username: "alice"}, app.EnvProduction, "deadbeef")

	if len(deploy.RollbackEnvs) != 1 || deploy.RollbackEnvs[0] != app.EnvProduction {
		t.Fatalf("rollback calls = %v", deploy.RollbackEnvs)
	}
	if !api.contains("ERROR: Rollback script exited with code 2") {
		t.Errorf("rollback sentinel was not relayed; sent: %v", api.texts)
	}
	if !hasAction(audit, "auto_rollback_failed") {
		t.Errorf("audit actions = %v", actions(audit))
	}
	if hasAction(audit, "auto_rollback_completed") {
		t.Error("a failed rollback must not be reported as completed")
	}
	if !api.contains("🔥 Automatic rollback of production failed. Manual intervention required.") {
		t.Errorf("missing failed-rollback summary in %v", api.texts)
	}
}

// A rollback that cannot start still reports the distinct failed status.
func TestRunDeploymentAutoRollbackStartFault(t *testing.T) {
	api := &fakeChatAPI{}
	deploy := &app.MockDeploySvc{
		DeployLines: []string{"ERROR: Deploy script exited with code 1"},
		RollbackErr: context.DeadlineExceeded,
	}
	audit := &app.MockAuditSvc{}
	b := newTestBot(api, deploy, audit)

	b.runDeployment(context.Background(), 1, app.User{ID: 42, Username: "alice"}, app.EnvStaging, "deadbeef")

	if !hasAction(audit, "auto_rollback_failed") {
		t.Errorf("audit actions = %v", actions(audit))
	}
	if !api.contains("🔥 Automatic rollback could not start") {
		t.Errorf("missing start-fault message in %v", api.texts)
	}
}
