package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries every setting of the bot. It is assembled once at startup
// and passed to constructors; services never read the ambient environment
// themselves. Secrets (bot token, DB password, API key) come from env vars
// only and are never read from the YAML file.
type Config struct {
	Telegram struct {
		Token      string  `yaml:"-"`
		AdminIDs   []int64 `yaml:"admin_ids"`
		StagingIDs []int64 `yaml:"staging_ids"`
	} `yaml:"telegram"`

	Registry struct {
		URL   string `yaml:"url"`
		Image string `yaml:"image"`
	} `yaml:"registry"`

	AWS struct {
		Region string `yaml:"region"`
	} `yaml:"aws"`

	Servers struct {
		StagingHost    string `yaml:"staging_host"`
		ProductionHost string `yaml:"production_host"`
		DeployUser     string `yaml:"deploy_user"`
		SSHKeyPath     string `yaml:"ssh_key_path"`
	} `yaml:"servers"`

	Health struct {
		StagingURL    string        `yaml:"staging_url"`
		ProductionURL string        `yaml:"production_url"`
		Timeout       time.Duration `yaml:"timeout"`
		Retries       int           `yaml:"retries"`
	} `yaml:"health"`

	Kube struct {
		Enabled   bool   `yaml:"enabled"`
		Namespace string `yaml:"namespace"`
	} `yaml:"kube"`

	Git struct {
		RepoDir          string `yaml:"repo_dir"`
		BranchStaging    string `yaml:"branch_staging"`
		BranchProduction string `yaml:"branch_production"`
	} `yaml:"git"`

	Scripts struct {
		Deploy   string `yaml:"deploy"`
		Rollback string `yaml:"rollback"`
	} `yaml:"scripts"`

	Audit struct {
		Path        string `yaml:"path"`
		DatabaseDSN string `yaml:"-"`
	} `yaml:"audit"`

	StateDir string `yaml:"state_dir"`

	HTTP struct {
		Port      string `yaml:"port"`
		AccessKey string `yaml:"-"`
	} `yaml:"http"`
}

// Load builds the configuration: defaults first, then the optional YAML file,
// then env-var overrides. It fails fast when a required value is missing.
func Load(path string) (Config, error) {
	var c Config

	c.Registry.Image = "myapp"
	c.AWS.Region = "us-east-1"
	c.Servers.DeployUser = "deploy"
	c.Servers.SSHKeyPath = "/app/secrets/deploy_key"
	c.Health.StagingURL = "http://staging.example.com/health"
	c.Health.ProductionURL = "http://production.example.com/health"
	c.Health.Timeout = 10 * time.Second
	c.Health.Retries = 3
	c.Kube.Namespace = "default"
	c.Git.RepoDir = "/app/repo"
	c.Git.BranchStaging = "develop"
	c.Git.BranchProduction = "main"
	c.Scripts.Deploy = "/app/scripts/deploy.sh"
	c.Scripts.Rollback = "/app/scripts/rollback.sh"
	c.Audit.Path = "/var/log/deploybot/audit.log"
	c.StateDir = "/var/lib/deploybot"
	c.HTTP.Port = "8080"

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err = yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}

	if v := os.Getenv("ADMIN_TELEGRAM_IDS"); v != "" {
		c.Telegram.AdminIDs = ParseIDs(v)
	}

	if v := os.Getenv("STAGING_TELEGRAM_IDS"); v != "" {
		c.Telegram.StagingIDs = ParseIDs(v)
	}

	if v := os.Getenv("REGISTRY_URL"); v != "" {
		c.Registry.URL = v
	}

	if v := os.Getenv("REGISTRY_IMAGE"); v != "" {
		c.Registry.Image = v
	}

	if v := os.Getenv("AWS_REGION"); v != "" {
		c.AWS.Region = v
	}

	if v := os.Getenv("STAGING_HOST"); v != "" {
		c.Servers.StagingHost = v
	}

	if v := os.Getenv("PRODUCTION_HOST"); v != "" {
		c.Servers.ProductionHost = v
	}

	if v := os.Getenv("DEPLOY_USER"); v != "" {
		c.Servers.DeployUser = v
	}

	if v := os.Getenv("SSH_KEY_PATH"); v != "" {
		c.Servers.SSHKeyPath = v
	}

	if v := os.Getenv("STAGING_HEALTH_URL"); v != "" {
		c.Health.StagingURL = v
	}

	if v := os.Getenv("PRODUCTION_HEALTH_URL"); v != "" {
		c.Health.ProductionURL = v
	}

	if v := os.Getenv("HEALTH_CHECK_TIMEOUT"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			c.Health.Timeout = time.Duration(sec) * time.Second
		}
	}

	if v := os.Getenv("HEALTH_CHECK_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Health.Retries = n
		}
	}

	if v := os.Getenv("USE_KUBERNETES"); v != "" {
		c.Kube.Enabled = strings.EqualFold(v, "true")
	}

	if v := os.Getenv("KUBE_NAMESPACE"); v != "" {
		c.Kube.Namespace = v
	}

	if v := os.Getenv("REPO_DIR"); v != "" {
		c.Git.RepoDir = v
	}

	if v := os.Getenv("GITHUB_BRANCH_STAGING"); v != "" {
		c.Git.BranchStaging = v
	}

	if v := os.Getenv("GITHUB_BRANCH_PRODUCTION"); v != "" {
		c.Git.BranchProduction = v
	}

	if v := os.Getenv("DEPLOY_SCRIPT"); v != "" {
		c.Scripts.Deploy = v
	}

	if v := os.Getenv("ROLLBACK_SCRIPT"); v != "" {
		c.Scripts.Rollback = v
	}

	if v := os.Getenv("AUDIT_LOG_PATH"); v != "" {
		c.Audit.Path = v
	}

	if host := os.Getenv("AUDIT_DB_HOST"); host != "" {
		c.Audit.DatabaseDSN = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host,
			getenv("AUDIT_DB_PORT", "5432"),
			os.Getenv("AUDIT_DB_USER"),
			os.Getenv("AUDIT_DB_PASSWORD"),
			os.Getenv("AUDIT_DB_NAME"),
		)
	}

	if v := os.Getenv("STATE_DIR"); v != "" {
		c.StateDir = v
	}

	if v := os.Getenv("HTTP_PORT"); v != "" {
		c.HTTP.Port = v
	}

	if v := os.Getenv("API_ACCESS_KEY"); v != "" {
		c.HTTP.AccessKey = v
	}

	if c.Telegram.Token == "" {
		return c, errors.New("TELEGRAM_BOT_TOKEN is required")
	}

	if len(c.Telegram.AdminIDs) == 0 {
		return c, errors.New("ADMIN_TELEGRAM_IDS is required")
	}

	if c.Registry.URL == "" {
		return c, errors.New("REGISTRY_URL is required")
	}

	return c, nil
}

// ParseIDs parses a comma-separated list of numeric Telegram IDs, skipping
// blanks and malformed entries.
func ParseIDs(raw string) []int64 {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
