package svc

import (
	"regexp"

	"github.com/beldeveloper/deploy-bot/internal/app"
	"github.com/beldeveloper/deploy-bot/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
)

// NewValidation creates a new instance of the validation service.
func NewValidation() app.ValidationSvc {
	return Validation{
		// short or full SHA: 4-40 lowercase hex characters
		commitRx: regexp.MustCompile(`^[0-9a-f]{4,40}$`),
	}
}

// Validation implements the allowlist validation of caller-supplied input.
// Everything that can end up in a subprocess argument vector passes through
// here first, even when an upstream caller already checked.
type Validation struct {
	commitRx *regexp.Regexp
}

// Environment checks the environment name against the fixed set.
func (s Validation) Environment(v string) (string, error) {
	switch v {
	case app.EnvStaging, app.EnvProduction:
		return v, nil
	}
	return "", errors.WrapContext(errtype.ErrInvalidEnvironment, errors.Context{
		Path:   "svc.Validation.Environment",
		Params: errors.Params{"environment": v},
	})
}

// Commit checks that the value is a hex SHA or the "unknown" sentinel. A
// shell fragment appended to a valid-looking hash fails the full-string match.
func (s Validation) Commit(v string) (string, error) {
	if v == app.CommitUnknown || s.commitRx.MatchString(v) {
		return v, nil
	}
	return "", errors.WrapContext(errtype.ErrInvalidCommit, errors.Context{
		Path:   "svc.Validation.Commit",
		Params: errors.Params{"commit": v},
	})
}
