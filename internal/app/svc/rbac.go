package svc

import (
	"github.com/beldeveloper/deploy-bot/internal/app"
	"github.com/beldeveloper/deploy-bot/internal/app/config"
)

// NewRBAC creates a new instance of the RBAC service.
func NewRBAC(cfg config.Config) app.RBACSvc {
	admins := make(map[int64]struct{}, len(cfg.Telegram.AdminIDs))
	for _, id := range cfg.Telegram.AdminIDs {
		admins[id] = struct{}{}
	}
	// admins inherit every staging permission
	authorized := make(map[int64]struct{}, len(cfg.Telegram.StagingIDs)+len(admins))
	for _, id := range cfg.Telegram.StagingIDs {
		authorized[id] = struct{}{}
	}
	for id := range admins {
		authorized[id] = struct{}{}
	}
	return RBAC{admins: admins, authorized: authorized}
}

// RBAC answers permission checks against the static ID allowlists.
type RBAC struct {
	admins     map[int64]struct{}
	authorized map[int64]struct{}
}

// IsAdmin reports whether the user may run production operations.
func (s RBAC) IsAdmin(id int64) bool {
	_, ok := s.admins[id]
	return ok
}

// IsAuthorized reports whether the user may interact with the bot at all.
func (s RBAC) IsAuthorized(id int64) bool {
	_, ok := s.authorized[id]
	return ok
}

// HasRole reports whether the user holds the given role.
func (s RBAC) HasRole(id int64, role string) bool {
	switch role {
	case app.RoleAdmin:
		return s.IsAdmin(id)
	case app.RoleStaging:
		return s.IsAuthorized(id)
	}
	return false
}
