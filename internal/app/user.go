package app

const (
	// RoleStaging defines the minimum privilege: staging deploys and status.
	RoleStaging = "staging"
	// RoleAdmin defines the full access role: production deploys and rollbacks.
	RoleAdmin = "admin"
)

// User identifies the chat operator behind a command.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// RBACSvc describes the role gate. Admins are a superset of staging users.
type RBACSvc interface {
	IsAdmin(id int64) bool
	IsAuthorized(id int64) bool
	HasRole(id int64, role string) bool
}
