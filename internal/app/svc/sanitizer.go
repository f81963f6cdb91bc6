package svc

import (
	"strconv"

	"github.com/beldeveloper/deploy-bot/internal/app"
	"github.com/beldeveloper/deploy-bot/internal/app/config"
)

// subprocessPath is the fixed PATH for the deployment scripts. It is never
// derived from caller input and never references the home directory.
const subprocessPath = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

// NewSanitizer creates a new instance of the sanitizer service.
func NewSanitizer(cfg config.Config) app.SanitizerSvc {
	return Sanitizer{cfg: cfg}
}

// Sanitizer builds the subprocess environment from an explicit enumerated
// key set. The ambient process environment, including the bot token and any
// VCS tokens, never leaks into a script.
type Sanitizer struct {
	cfg config.Config
}

// SubprocessEnv returns the environment for the deploy/rollback scripts.
func (s Sanitizer) SubprocessEnv() []string {
	return []string{
		"HOME=/root",
		"PATH=" + subprocessPath,
		"REGISTRY_URL=" + s.cfg.Registry.URL,
		"REGISTRY_IMAGE=" + s.cfg.Registry.Image,
		"STAGING_HOST=" + s.cfg.Servers.StagingHost,
		"PRODUCTION_HOST=" + s.cfg.Servers.ProductionHost,
		"DEPLOY_USER=" + s.cfg.Servers.DeployUser,
		"SSH_KEY_PATH=" + s.cfg.Servers.SSHKeyPath,
		"KUBE_NAMESPACE=" + s.cfg.Kube.Namespace,
		"USE_KUBERNETES=" + strconv.FormatBool(s.cfg.Kube.Enabled),
		"AWS_REGION=" + s.cfg.AWS.Region,
		"STAGING_HEALTH_URL=" + s.cfg.Health.StagingURL,
		"PRODUCTION_HEALTH_URL=" + s.cfg.Health.ProductionURL,
	}
}
