// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/halcyonlabs/carepulse/internal/domain/dedupe"
	"github.com/halcyonlabs/carepulse/internal/domain/model"
	"github.com/halcyonlabs/carepulse/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a conversation for async evaluation. Returns false on backpressure.
	Enqueue(ctx context.Context, conv model.Conversation) bool

	// Patient profile operations.
	UpsertPatient(ctx context.Context, p model.Patient) error
	GetPatient(ctx context.Context, patientID string) (types.PatientView, error)
	ListPatients(ctx context.Context) ([]types.PatientView, error)

	// Read operations expose evaluated wellness data.
	ConversationHistory(ctx context.Context, patientID string, window time.Duration, limit int) ([]types.ConversationReport, error)
	Trend(ctx context.Context, patientID string, window time.Duration, label string) (types.TrendSummary, error)
	LatestMetrics(ctx context.Context, patientID string) (types.ConversationReport, error)
	Alerts(ctx context.Context, patientID string, includeAcked bool) ([]types.AlertView, error)
	AckAlert(ctx context.Context, alertID string) (types.AlertView, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler        *HealthHandler
	statsHandler         *StatsHandler
	conversationsHandler *ConversationsHandler
	patientsHandler      *PatientsHandler
	alertsHandler        *AlertsHandler
	dashboardHandler     *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:        NewHealthHandler(),
		statsHandler:         NewStatsHandler(statsProvider),
		conversationsHandler: NewConversationsHandler(deps),
		patientsHandler:      NewPatientsHandler(deps),
		alertsHandler:        NewAlertsHandler(deps),
		dashboardHandler:     newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/conversations", MetricsMiddleware(s.conversationsHandler.HandlePostConversation, "conversations"))
	mux.HandleFunc("/patients", MetricsMiddleware(s.patientsHandler.HandlePatients, "patients"))
	mux.HandleFunc("/patients/", MetricsMiddleware(s.patientsHandler.HandlePatientSubroutes, "patients"))
	mux.HandleFunc("/alerts/", MetricsMiddleware(s.alertsHandler.HandleAckAlert, "alerts"))
}

// Window labels accepted by the trend, metrics and conversation views.
// Unknown labels fall back to the default rather than failing the request.
const (
	windowWeek      = 7 * 24 * time.Hour
	windowFortnight = 14 * 24 * time.Hour
	windowMonth     = 30 * 24 * time.Hour
	defaultWindow   = "30d"
)

// parseWindow maps a ?window= query value to a duration and the label that
// was actually applied.
func parseWindow(label string) (time.Duration, string) {
	switch label {
	case "7d":
		return windowWeek, "7d"
	case "14d":
		return windowFortnight, "14d"
	case "30d", "":
		return windowMonth, defaultWindow
	default:
		return windowMonth, defaultWindow
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound allows the API to translate upstream not-found errors to 404
// without binding handlers to a specific storage package.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
