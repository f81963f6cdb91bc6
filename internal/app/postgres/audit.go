package postgres

import (
	"context"
	"strconv"

	"github.com/beldeveloper/deploy-bot/internal/app"
	"github.com/beldeveloper/go-errors-context"
	"github.com/jackc/pgx/v4/pgxpool"
)

// NewAudit creates a new instance of the repository.
func NewAudit(conn *pgxpool.Pool) app.AuditRepo {
	return Audit{conn: conn}
}

// Audit implements a repository.
type Audit struct {
	conn *pgxpool.Pool
}

// Add saves the audit event.
func (r Audit) Add(ctx context.Context, e app.AuditEvent) error {
	q := `INSERT INTO "audit_events" ("timestamp", "user_id", "username", "full_name", "action", "env", "commit")
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.conn.Exec(ctx, q, e.Timestamp, e.UserID, e.Username, e.FullName, e.Action, e.Env, e.Commit)
	if err != nil {
		return errors.WrapContext(err, errors.Context{
			Path:   "postgres.Audit.Add.Exec",
			Params: errors.Params{"action": e.Action},
		})
	}
	return nil
}

// FindRecent returns the latest events, oldest first.
func (r Audit) FindRecent(ctx context.Context, limit int) ([]app.AuditEvent, error) {
	q := `SELECT "timestamp", "user_id", "username", "full_name", "action", "env", "commit"
		FROM "audit_events" ORDER BY "id" DESC LIMIT ` + strconv.Itoa(limit)
	rows, err := r.conn.Query(ctx, q)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "postgres.Audit.FindRecent.Query"})
	}
	defer rows.Close()
	res := make([]app.AuditEvent, 0)
	var e app.AuditEvent
	for rows.Next() {
		err = rows.Scan(&e.Timestamp, &e.UserID, &e.Username, &e.FullName, &e.Action, &e.Env, &e.Commit)
		if err != nil {
			return nil, errors.WrapContext(err, errors.Context{Path: "postgres.Audit.FindRecent.Scan"})
		}
		res = append(res, e)
	}
	// reverse to chronological order
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return res, nil
}
