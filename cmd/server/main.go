package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beldeveloper/deploy-bot/internal/app"
	"github.com/beldeveloper/deploy-bot/internal/app/config"
	"github.com/beldeveloper/deploy-bot/internal/app/postgres"
	"github.com/beldeveloper/deploy-bot/internal/app/telegram"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/julienschmidt/httprouter"
)

func main() {
	cfg, err := config.Load(os.Getenv("DEPLOY_BOT_CONFIG"))
	if err != nil {
		log.Fatalf("main: load config: %v\n", err)
	}
	// build the bot and the router using DI wire
	c, err := initializeContainer(cfg)
	if err != nil {
		log.Fatalf("main: %v\n", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// run the chat bot in background
	go c.bot.Run(ctx)
	// run http server; blocks until a shutdown signal arrives
	runHttpServer(c.router, cfg.HTTP.Port)
	cancel()
}

type container struct {
	bot    *telegram.Bot
	router *httprouter.Router
}

func newContainer(bot *telegram.Bot, router *httprouter.Router) container {
	return container{
		bot:    bot,
		router: router,
	}
}

func newAccessKey(cfg config.Config) app.ApiAccessKey {
	return app.ApiAccessKey(cfg.HTTP.AccessKey)
}

func newTelegramAPI(cfg config.Config) *tgbotapi.BotAPI {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Fatalf("main.newTelegramAPI: %v\n", err)
	}
	return api
}

// newAuditRepo returns the database mirror of the audit trail, or nil when
// no database is configured. The audit file works without it.
func newAuditRepo(cfg config.Config) app.AuditRepo {
	if cfg.Audit.DatabaseDSN == "" {
		return nil
	}
	conn, err := pgxpool.Connect(context.Background(), cfg.Audit.DatabaseDSN)
	if err != nil {
		log.Fatalf("main.newAuditRepo: %v\n", err)
	}
	return postgres.NewAudit(conn)
}

func runHttpServer(router *httprouter.Router, httpPort string) {
	srv := &http.Server{
		Addr:    ":" + httpPort,
		Handler: router,
	}
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("main.runHttpServer: serve http: %v; port = %s\n", err, httpPort)
		}
	}()
	log.Printf("Listening :%s for HTTP connections...\n", httpPort)
	<-done
	log.Print("Stopping the application...\n")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("main.runHttpServer: server shutdown: %v\n", err)
	}
}
