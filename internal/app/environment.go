package app

import "context"

const (
	// EnvStaging defines the staging environment.
	EnvStaging = "staging"
	// EnvProduction defines the production environment.
	EnvProduction = "production"
)

// Environments returns the known environments in display order. The set is
// fixed and is never extended at runtime.
func Environments() []string {
	return []string{EnvStaging, EnvProduction}
}

// EnvironmentStatus is a point-in-time snapshot of a single environment.
type EnvironmentStatus struct {
	Commit     string `json:"commit"`
	DeployedAt string `json:"deployedAt"`
	HealthURL  string `json:"healthUrl"`
	Healthy    bool   `json:"healthy"`
}

// StatusSvc describes the service that reports the state of every
// environment. A probe failure marks the environment unhealthy; it never
// prevents reporting on the others.
type StatusSvc interface {
	Status(ctx context.Context) map[string]EnvironmentStatus
}
