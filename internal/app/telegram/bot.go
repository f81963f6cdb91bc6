package telegram

import (
	"context"
	"log"
	"strings"

	"github.com/beldeveloper/deploy-bot/internal/app"
	"github.com/beldeveloper/deploy-bot/internal/app/config"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// chatAPI is the part of the Telegram client the bot relies on.
type chatAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// NewBot creates a new instance of the bot.
func NewBot(
	api *tgbotapi.BotAPI,
	deploySvc app.DeploySvc,
	statusSvc app.StatusSvc,
	vcsSvc app.VcsSvc,
	auditSvc app.AuditSvc,
	rbac app.RBACSvc,
	cfg config.Config,
) *Bot {
	return &Bot{
		api:       api,
		self:      api.Self.UserName,
		deploySvc: deploySvc,
		statusSvc: statusSvc,
		vcsSvc:    vcsSvc,
		auditSvc:  auditSvc,
		rbac:      rbac,
		cfg:       cfg,
	}
}

// Bot is the chat command surface. Every command handler runs in its own
// goroutine so a long deployment never blocks other operators.
type Bot struct {
	api       chatAPI
	self      string
	deploySvc app.DeploySvc
	statusSvc app.StatusSvc
	vcsSvc    app.VcsSvc
	auditSvc  app.AuditSvc
	rbac      app.RBACSvc
	cfg       config.Config
}

// handlerFunc is a bound command handler. The role middleware wraps values
// of this type.
type handlerFunc func(ctx context.Context, msg *tgbotapi.Message)

// Run long-polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	log.Printf("Telegram bot authorized as @%s\n", b.self)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()
	for update := range updates {
		update := update
		go b.dispatch(ctx, update)
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "deploy":
		b.requireRole(app.RoleStaging, b.cmdDeploy)(ctx, msg)
	case "rollback":
		b.requireRole(app.RoleAdmin, b.cmdRollback)(ctx, msg)
	case "status":
		b.requireRole(app.RoleStaging, b.cmdStatus)(ctx, msg)
	case "history":
		b.requireRole(app.RoleAdmin, b.cmdHistory)(ctx, msg)
	case "help", "start":
		b.requireRole(app.RoleStaging, b.cmdHelp)(ctx, msg)
	}
}

// requireRole wraps a handler with the role gate. A denied call is answered
// in chat and recorded in the audit trail.
func (b *Bot) requireRole(role string, next handlerFunc) handlerFunc {
	return func(ctx context.Context, msg *tgbotapi.Message) {
		user := userInfo(msg.From)
		if !b.rbac.HasRole(user.ID, role) {
			log.Printf("Denied /%s for user %d (%s): missing role %s\n", msg.Command(), user.ID, user.Username, role)
			b.auditSvc.Log(user, "unauthorized_access", map[string]string{"command": msg.Command()})
			b.sendText(msg.Chat.ID, "⛔ You are not authorized to use this command.")
			return
		}
		next(ctx, msg)
	}
}

// userInfo extracts the audit identity from a Telegram user.
func userInfo(from *tgbotapi.User) app.User {
	if from == nil {
		return app.User{Username: "unknown"}
	}
	u := app.User{
		ID:       from.ID,
		Username: from.UserName,
		FullName: strings.TrimSpace(strings.TrimSpace(from.FirstName) + " " + strings.TrimSpace(from.LastName)),
	}
	if u.Username == "" {
		u.Username = "unknown"
	}
	return u
}
