// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/halcyonlabs/carepulse/internal/domain/model"
	"github.com/halcyonlabs/carepulse/internal/domain/types"
)

// PatientDependencies defines the interface for patient read and write
// operations.
type PatientDependencies interface {
	UpsertPatient(ctx context.Context, p model.Patient) error
	GetPatient(ctx context.Context, patientID string) (types.PatientView, error)
	ListPatients(ctx context.Context) ([]types.PatientView, error)
	ConversationHistory(ctx context.Context, patientID string, window time.Duration, limit int) ([]types.ConversationReport, error)
	Trend(ctx context.Context, patientID string, window time.Duration, label string) (types.TrendSummary, error)
	LatestMetrics(ctx context.Context, patientID string) (types.ConversationReport, error)
	Alerts(ctx context.Context, patientID string, includeAcked bool) ([]types.AlertView, error)
}

// PatientsHandler handles patient requests.
type PatientsHandler struct {
	deps PatientDependencies
}

// NewPatientsHandler creates a new patients handler.
func NewPatientsHandler(deps PatientDependencies) *PatientsHandler {
	return &PatientsHandler{deps: deps}
}

// patientRequest mirrors the OpenAPI schema for PUT /patients.
type patientRequest struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
	Notes     string `json:"notes"`
}

func (p patientRequest) validate() error {
	switch {
	case strings.TrimSpace(p.PatientID) == "":
		return errors.New("missing patient_id")
	case strings.TrimSpace(p.Name) == "":
		return errors.New("missing name")
	}
	return nil
}

// HandlePatients handles GET /patients and PUT /patients requests.
func (h *PatientsHandler) HandlePatients(w http.ResponseWriter, r *http.Request) {
	const op = "api.patients"
	switch r.Method {
	case http.MethodGet:
		patients, err := h.deps.ListPatients(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, patients)
	case http.MethodPut, http.MethodPost:
		var req patientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := h.deps.UpsertPatient(r.Context(), model.Patient{
			PatientID: req.PatientID,
			Name:      req.Name,
			Notes:     req.Notes,
		}); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "patient_id": req.PatientID})
	default:
		http.NotFound(w, r)
	}
}

// HandlePatientSubroutes dispatches GET /patients/{id} and the per-patient
// views under it: /trend, /metrics, /alerts and /conversations.
func (h *PatientsHandler) HandlePatientSubroutes(w http.ResponseWriter, r *http.Request) {
	const op = "api.patient"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/patients/")
	patientID, view, _ := strings.Cut(path, "/")
	if patientID == "" || strings.Contains(view, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch view {
	case "":
		h.servePatient(w, r, patientID)
	case "trend":
		h.serveTrend(w, r, patientID)
	case "metrics":
		h.serveMetrics(w, r, patientID)
	case "alerts":
		h.serveAlerts(w, r, patientID)
	case "conversations":
		h.serveConversations(w, r, patientID)
	default:
		http.NotFound(w, r)
	}
}

func (h *PatientsHandler) servePatient(w http.ResponseWriter, r *http.Request, patientID string) {
	const op = "api.get_patient"
	p, err := h.deps.GetPatient(r.Context(), patientID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PatientsHandler) serveTrend(w http.ResponseWriter, r *http.Request, patientID string) {
	const op = "api.get_trend"
	window, label := parseWindow(r.URL.Query().Get("window"))
	trend, err := h.deps.Trend(r.Context(), patientID, window, label)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

func (h *PatientsHandler) serveMetrics(w http.ResponseWriter, r *http.Request, patientID string) {
	const op = "api.get_metrics"
	report, err := h.deps.LatestMetrics(r.Context(), patientID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *PatientsHandler) serveAlerts(w http.ResponseWriter, r *http.Request, patientID string) {
	const op = "api.get_alerts"
	includeAcked := r.URL.Query().Get("include_acked") == "true"
	alerts, err := h.deps.Alerts(r.Context(), patientID, includeAcked)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if alerts == nil {
		alerts = []types.AlertView{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *PatientsHandler) serveConversations(w http.ResponseWriter, r *http.Request, patientID string) {
	const op = "api.get_conversations"
	window, _ := parseWindow(r.URL.Query().Get("window"))

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	reports, err := h.deps.ConversationHistory(r.Context(), patientID, window, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if reports == nil {
		reports = []types.ConversationReport{}
	}
	writeJSON(w, http.StatusOK, reports)
}
