//go:build wireinject
// +build wireinject

package main

import (
	"github.com/beldeveloper/deploy-bot/internal/app/config"
	"github.com/beldeveloper/deploy-bot/internal/app/http"
	"github.com/beldeveloper/deploy-bot/internal/app/svc"
	"github.com/beldeveloper/deploy-bot/internal/app/telegram"
	"github.com/google/wire"
)

func initializeContainer(cfg config.Config) (container, error) {
	wire.Build(
		svc.NewValidation,
		svc.NewSanitizer,
		svc.NewRunner,
		svc.NewDeployer,
		svc.NewOS,
		svc.NewGit,
		svc.NewStatus,
		svc.NewAudit,
		svc.NewRBAC,
		telegram.NewBot,
		http.NewHandler,
		http.NewRouter,
		newContainer,
		newTelegramAPI,
		newAccessKey,
		newAuditRepo,
	)
	return container{}, nil
}
