package svc

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/beldeveloper/deploy-bot/internal/app"
	"github.com/beldeveloper/deploy-bot/internal/app/config"
	"github.com/cenkalti/backoff/v4"
)

// NewStatus creates a new instance of the status service.
func NewStatus(cfg config.Config) app.StatusSvc {
	return Status{
		stateDir: cfg.StateDir,
		timeout:  cfg.Health.Timeout,
		retries:  cfg.Health.Retries,
		healthURLs: map[string]string{
			app.EnvStaging:    cfg.Health.StagingURL,
			app.EnvProduction: cfg.Health.ProductionURL,
		},
		client: &http.Client{Timeout: cfg.Health.Timeout},
	}
}

// Status reports what is deployed where and whether it responds. The report
// is best-effort: a missing state file or an unreachable endpoint degrades
// the snapshot instead of failing it.
type Status struct {
	stateDir   string
	timeout    time.Duration
	retries    int
	healthURLs map[string]string
	client     *http.Client
}

// Status probes every environment concurrently and returns the snapshot.
func (s Status) Status(ctx context.Context) map[string]app.EnvironmentStatus {
	res := make(map[string]app.EnvironmentStatus, len(app.Environments()))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, env := range app.Environments() {
		wg.Add(1)
		go func(env string) {
			defer wg.Done()
			st := app.EnvironmentStatus{
				Commit:     s.stateValue(env+".commit", app.CommitUnknown),
				DeployedAt: s.stateValue(env+".timestamp", "never"),
				HealthURL:  s.healthURLs[env],
			}
			st.Healthy = s.checkHealth(ctx, st.HealthURL)
			mu.Lock()
			res[env] = st
			mu.Unlock()
		}(env)
	}
	wg.Wait()
	return res
}

func (s Status) stateValue(name, fallback string) string {
	data, err := os.ReadFile(filepath.Join(s.stateDir, name))
	if err != nil {
		return fallback
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return fallback
	}
	return v
}

func (s Status) checkHealth(ctx context.Context, url string) bool {
	if url == "" {
		return false
	}
	// one deadline covers the whole probe, retries included, so a dead
	// endpoint cannot stretch the sweep beyond the configured timeout
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	op := func() error {
		req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return errUnhealthy
		}
		return nil
	}
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), uint64(s.retries)),
		probeCtx,
	)
	return backoff.Retry(op, b) == nil
}

var errUnhealthy = statusError("endpoint returned a non-200 status")

type statusError string

func (e statusError) Error() string {
	return string(e)
}
