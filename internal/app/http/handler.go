package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/beldeveloper/deploy-bot/internal/app"
	"github.com/beldeveloper/deploy-bot/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	"github.com/julienschmidt/httprouter"
)

// defaultHistoryLimit caps the history response when no limit is given.
const defaultHistoryLimit = 20

// NewHandler creates a new instance of the REST API handler.
func NewHandler(
	statusSvc app.StatusSvc,
	auditSvc app.AuditSvc,
	accessKey app.ApiAccessKey,
) Handler {
	return Handler{
		statusSvc: statusSvc,
		auditSvc:  auditSvc,
		accessKey: string(accessKey),
	}
}

// Handler handles the REST API requests.
type Handler struct {
	statusSvc app.StatusSvc
	auditSvc  app.AuditSvc
	accessKey string
}

// Status returns the deployment status of every environment.
func (h Handler) Status(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.validateKey(r)
	if err != nil {
		apiError(w, err)
		return
	}
	apiSuccess(w, h.statusSvc.Status(r.Context()))
}

// History returns the most recent audit events.
func (h Handler) History(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.validateKey(r)
	if err != nil {
		apiError(w, err)
		return
	}
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			apiError(w, fmt.Errorf("%w: invalid limit: %s", errtype.ErrBadInput, raw))
			return
		}
	}
	res, err := h.auditSvc.Recent(limit)
	if err != nil {
		apiError(w, err)
		return
	}
	if res == nil {
		res = []app.AuditEvent{}
	}
	apiSuccess(w, res)
}

func (h Handler) validateKey(r *http.Request) error {
	// an unset key closes the API entirely rather than opening it to anyone
	if h.accessKey == "" || r.URL.Query().Get("accessKey") != h.accessKey {
		return errors.WrapContext(errtype.ErrUnauthorized, errors.Context{})
	}
	return nil
}
