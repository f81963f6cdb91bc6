package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/beldeveloper/deploy-bot/internal/app"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// historyLimit is the number of audit events shown by /history.
const historyLimit = 20

func (b *Bot) cmdDeploy(ctx context.Context, msg *tgbotapi.Message) {
	user := userInfo(msg.From)
	environment := app.EnvStaging
	if args := strings.Fields(msg.CommandArguments()); len(args) > 0 {
		environment = strings.ToLower(args[0])
	}
	switch environment {
	case app.EnvStaging:
		commit := b.vcsSvc.LatestCommit(ctx, b.cfg.Git.BranchStaging)
		b.runDeployment(ctx, msg.Chat.ID, user, environment, commit)
	case app.EnvProduction:
		if !b.rbac.IsAdmin(user.ID) {
			b.auditSvc.Log(user, "deploy_production_denied", map[string]string{"env": environment})
			b.sendText(msg.Chat.ID, "⛔ Production deployments require the admin role.")
			return
		}
		commit := b.vcsSvc.LatestCommit(ctx, b.cfg.Git.BranchProduction)
		branch := b.vcsSvc.CurrentBranch(ctx)
		m := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf(
			"⚠️ Deploy commit %s to production?\nCurrent branch: %s", commit, branch,
		))
		m.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", "deploy:production:"+commit),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "deploy:cancel"),
		))
		b.send(m)
	default:
		b.sendText(msg.Chat.ID, "Usage: /deploy staging|production")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("Answer callback: %v\n", err)
	}
	if cb.Message == nil {
		return
	}
	// the commit may not contain a colon, but SplitN keeps the parse stable
	// even if the format ever grows
	parts := strings.SplitN(cb.Data, ":", 3)
	if parts[0] != "deploy" {
		return
	}
	user := userInfo(cb.From)
	chatID := cb.Message.Chat.ID
	if len(parts) == 2 && parts[1] == "cancel" {
		b.edit(chatID, cb.Message.MessageID, "❌ Deployment cancelled.")
		b.auditSvc.Log(user, "deploy_cancelled", map[string]string{"env": app.EnvProduction})
		return
	}
	if len(parts) != 3 {
		return
	}
	environment, commit := parts[1], parts[2]
	// any chat member can press the button, so the role is verified again
	if environment == app.EnvProduction && !b.rbac.IsAdmin(user.ID) {
		b.auditSvc.Log(user, "deploy_production_denied", map[string]string{"env": environment})
		b.sendText(chatID, "⛔ Production deployments require the admin role.")
		return
	}
	b.edit(chatID, cb.Message.MessageID, fmt.Sprintf("✅ Confirmed by @%s", user.Username))
	b.runDeployment(ctx, chatID, user, environment, commit)
}

// runDeployment executes one deployment end to end: audit, stream, verdict,
// and the automatic rollback when the stream reports a failure.
func (b *Bot) runDeployment(ctx context.Context, chatID int64, user app.User, environment, commit string) {
	if commit == "" {
		commit = b.vcsSvc.LatestCommit(ctx, "")
	}
	b.auditSvc.Log(user, "deploy_started", map[string]string{"env": environment, "commit": commit})
	lines, err := b.deploySvc.Deploy(ctx, environment, commit)
	if err != nil {
		log.Println(err)
		b.auditSvc.Log(user, "deploy_failed", map[string]string{"env": environment, "commit": commit})
		b.sendText(chatID, "❌ Deployment rejected: "+err.Error())
		return
	}
	b.sendText(chatID, fmt.Sprintf("🚀 Deploying %s to %s...", commit, environment))
	if b.streamLines(chatID, lines) {
		b.auditSvc.Log(user, "deploy_success", map[string]string{"env": environment, "commit": commit})
		b.sendText(chatID, fmt.Sprintf("✅ Deployment of %s to %s completed.", commit, environment))
		return
	}
	b.auditSvc.Log(user, "deploy_failed", map[string]string{"env": environment, "commit": commit})
	b.sendText(chatID, fmt.Sprintf("❌ Deployment to %s failed. Starting automatic rollback...", environment))
	b.autoRollback(ctx, chatID, user, environment)
}

func (b *Bot) autoRollback(ctx context.Context, chatID int64, user app.User, environment string) {
	lines, err := b.deploySvc.Rollback(ctx, environment)
	if err != nil {
		log.Println(err)
		b.auditSvc.Log(user, "auto_rollback_failed", map[string]string{"env": environment})
		b.sendText(chatID, "🔥 Automatic rollback could not start: "+err.Error())
		return
	}
	if b.streamLines(chatID, lines) {
		b.auditSvc.Log(user, "auto_rollback_completed", map[string]string{"env": environment})
		b.sendText(chatID, fmt.Sprintf("↩️ Automatic rollback of %s completed.", environment))
		return
	}
	b.auditSvc.Log(user, "auto_rollback_failed", map[string]string{"env": environment})
	b.sendText(chatID, fmt.Sprintf("🔥 Automatic rollback of %s failed. Manual intervention required.", environment))
}

func (b *Bot) cmdRollback(ctx context.Context, msg *tgbotapi.Message) {
	user := userInfo(msg.From)
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		b.sendText(msg.Chat.ID, "Usage: /rollback staging|production")
		return
	}
	environment := strings.ToLower(args[0])
	b.auditSvc.Log(user, "rollback_initiated", map[string]string{"env": environment})
	lines, err := b.deploySvc.Rollback(ctx, environment)
	if err != nil {
		log.Println(err)
		b.auditSvc.Log(user, "rollback_failed", map[string]string{"env": environment})
		b.sendText(msg.Chat.ID, "❌ Rollback rejected: "+err.Error())
		return
	}
	b.sendText(msg.Chat.ID, fmt.Sprintf("↩️ Rolling back %s...", environment))
	if b.streamLines(msg.Chat.ID, lines) {
		b.auditSvc.Log(user, "rollback_completed", map[string]string{"env": environment})
		b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Rollback of %s completed.", environment))
		return
	}
	b.auditSvc.Log(user, "rollback_failed", map[string]string{"env": environment})
	b.sendText(msg.Chat.ID, fmt.Sprintf("❌ Rollback of %s failed.", environment))
}

func (b *Bot) cmdStatus(ctx context.Context, msg *tgbotapi.Message) {
	user := userInfo(msg.From)
	b.auditSvc.Log(user, "status_checked", nil)
	snapshot := b.statusSvc.Status(ctx)
	var sb strings.Builder
	sb.WriteString("📊 Deployment status\n")
	for _, env := range app.Environments() {
		st := snapshot[env]
		health := "🔴 unhealthy"
		if st.Healthy {
			health = "🟢 healthy"
		}
		fmt.Fprintf(&sb, "\n<b>%s</b>\ncommit: %s\ndeployed: %s\nhealth: %s (%s)\n",
			escapeHTML(env), escapeHTML(st.Commit), escapeHTML(st.DeployedAt), health, escapeHTML(st.HealthURL))
	}
	b.sendHTML(msg.Chat.ID, sb.String())
}

func (b *Bot) cmdHistory(ctx context.Context, msg *tgbotapi.Message) {
	user := userInfo(msg.From)
	events, err := b.auditSvc.Recent(historyLimit)
	if err != nil {
		log.Println(err)
		b.sendText(msg.Chat.ID, "❌ Could not read the audit history.")
		return
	}
	b.auditSvc.Log(user, "history_checked", nil)
	if len(events) == 0 {
		b.sendText(msg.Chat.ID, "The audit history is empty.")
		return
	}
	var sb strings.Builder
	for _, e := range events {
		fmt.Fprintf(&sb, "%s %s %s", e.Timestamp, e.Username, e.Action)
		if e.Env != "" {
			fmt.Fprintf(&sb, " env=%s", e.Env)
		}
		if e.Commit != "" {
			fmt.Fprintf(&sb, " commit=%s", e.Commit)
		}
		sb.WriteString("\n")
	}
	b.sendChunked(msg.Chat.ID, sb.String())
}

func (b *Bot) cmdHelp(ctx context.Context, msg *tgbotapi.Message) {
	b.sendText(msg.Chat.ID, strings.Join([]string{
		"Available commands:",
		"/deploy staging - deploy the latest staging branch commit",
		"/deploy production - deploy to production (admin, with confirmation)",
		"/rollback <environment> - roll back an environment (admin)",
		"/status - show what is deployed and whether it is healthy",
		"/history - show recent audit events (admin)",
		"/help - show this message",
	}, "\n"))
}
