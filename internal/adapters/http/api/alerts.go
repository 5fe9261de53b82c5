// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/halcyonlabs/carepulse/internal/domain/types"
)

// AlertDependencies defines the interface for alert acknowledgement.
type AlertDependencies interface {
	AckAlert(ctx context.Context, alertID string) (types.AlertView, error)
}

// AlertsHandler handles alert acknowledgement requests.
type AlertsHandler struct {
	deps AlertDependencies
}

// NewAlertsHandler creates a new alerts handler.
func NewAlertsHandler(deps AlertDependencies) *AlertsHandler {
	return &AlertsHandler{deps: deps}
}

// HandleAckAlert handles POST /alerts/{alert_id}/ack requests.
func (h *AlertsHandler) HandleAckAlert(w http.ResponseWriter, r *http.Request) {
	const op = "api.ack_alert"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/alerts/")
	alertID, action, _ := strings.Cut(path, "/")
	if alertID == "" || action != "ack" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	alert, err := h.deps.AckAlert(r.Context(), alertID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, alert)
}
