package svc

import (
	"bufio"
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/beldeveloper/deploy-bot/internal/app"
	"github.com/beldeveloper/deploy-bot/internal/app/config"
	"github.com/beldeveloper/go-errors-context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewAudit creates a new instance of the audit service.
func NewAudit(cfg config.Config, repo app.AuditRepo) app.AuditSvc {
	return &Audit{
		path: cfg.Audit.Path,
		repo: repo,
	}
}

// Audit records security-relevant actions as JSON lines. The file is the
// source of truth; the optional repository mirror is written asynchronously
// and its failures never affect the caller. Logging never fails loudly: an
// unwritable audit destination must not take the bot down.
type Audit struct {
	path string
	repo app.AuditRepo

	mu     sync.Mutex
	logger *zap.Logger
}

// Log appends one audit event. Meta keys are emitted in sorted order so
// records with the same shape serialize identically.
func (s *Audit) Log(user app.User, action string, meta map[string]string) {
	now := time.Now().UTC().Format(time.RFC3339)
	logger, err := s.fileLogger()
	if err != nil {
		log.Println(errors.WrapContext(err, errors.Context{
			Path:   "svc.Audit.Log.open",
			Params: errors.Params{"path": s.path},
		}))
	} else {
		fields := []zap.Field{
			zap.Int64("user_id", user.ID),
			zap.String("username", user.Username),
			zap.String("full_name", user.FullName),
		}
		keys := make([]string, 0, len(meta))
		for k := range meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fields = append(fields, zap.String(k, meta[k]))
		}
		logger.Info(action, fields...)
	}
	log.Printf("Audit: user=%d (%s) action=%s meta=%v\n", user.ID, user.Username, action, meta)
	if s.repo != nil {
		event := app.AuditEvent{
			Timestamp: now,
			UserID:    user.ID,
			Username:  user.Username,
			FullName:  user.FullName,
			Action:    action,
			Env:       meta["env"],
			Commit:    meta["commit"],
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.repo.Add(ctx, event); err != nil {
				log.Println(errors.WrapContext(err, errors.Context{Path: "svc.Audit.Log.mirror"}))
			}
		}()
	}
}

// Recent returns up to limit events from the end of the audit file, oldest
// first. A missing file yields an empty history; lines that fail to parse
// are skipped.
func (s *Audit) Recent(limit int) ([]app.AuditEvent, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapContext(err, errors.Context{
			Path:   "svc.Audit.Recent.open",
			Params: errors.Params{"path": s.path},
		})
	}
	defer f.Close()
	var events []app.AuditEvent
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e app.AuditEvent
		if err := json.Unmarshal(line, &e); err != nil {
			log.Printf("Audit: skipping corrupt record: %v\n", err)
			continue
		}
		events = append(events, e)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "svc.Audit.Recent.scan"})
	}
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}

// fileLogger lazily opens the audit file so the directory is created on the
// first recorded action, not at startup.
func (s *Audit) fileLogger() (*zap.Logger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logger != nil {
		return s.logger, nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:    "timestamp",
		MessageKey: "action",
		LevelKey:   zapcore.OmitKey,
		LineEnding: zapcore.DefaultLineEnding,
		EncodeTime: func(t time.Time, pe zapcore.PrimitiveArrayEncoder) {
			pe.AppendString(t.UTC().Format(time.RFC3339))
		},
	})
	core := zapcore.NewCore(enc, zapcore.AddSync(f), zapcore.InfoLevel)
	s.logger = zap.New(core)
	return s.logger, nil
}
