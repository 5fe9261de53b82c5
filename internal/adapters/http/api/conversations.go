// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/halcyonlabs/carepulse/internal/domain/dedupe"
	"github.com/halcyonlabs/carepulse/internal/domain/model"
	"github.com/halcyonlabs/carepulse/internal/domain/wellness"
)

// ConversationDependencies defines the interface for conversation ingest.
type ConversationDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, conv model.Conversation) bool
}

// ConversationsHandler handles conversation ingest requests.
type ConversationsHandler struct {
	deps ConversationDependencies
}

// NewConversationsHandler creates a new conversations handler.
func NewConversationsHandler(deps ConversationDependencies) *ConversationsHandler {
	return &ConversationsHandler{deps: deps}
}

// conversationRequest mirrors the OpenAPI schema for POST /conversations.
// Metrics maps metric keys to observed values; an explicit null marks a
// metric the companion could not measure this conversation.
type conversationRequest struct {
	ConversationID  string              `json:"conversation_id"`
	PatientID       string              `json:"patient_id"`
	StartedAt       string              `json:"started_at"`
	DurationSeconds int                 `json:"duration_seconds"`
	Summary         string              `json:"summary"`
	Metrics         map[string]*float64 `json:"metrics"`
}

func (c conversationRequest) validate() error {
	switch {
	case strings.TrimSpace(c.ConversationID) == "":
		return errors.New("missing conversation_id")
	case strings.TrimSpace(c.PatientID) == "":
		return errors.New("missing patient_id")
	case strings.TrimSpace(c.StartedAt) == "":
		return errors.New("missing started_at")
	case c.DurationSeconds < 0:
		return errors.New("negative duration_seconds")
	}
	if _, err := time.Parse(time.RFC3339, c.StartedAt); err != nil {
		return errors.New("invalid started_at; must be RFC3339")
	}
	return nil
}

// toModel converts a validated request into the domain conversation.
// Metric keys are sorted so the sample order is deterministic.
func (c conversationRequest) toModel() model.Conversation {
	startedAt, _ := time.Parse(time.RFC3339, c.StartedAt)

	keys := make([]string, 0, len(c.Metrics))
	for k := range c.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	samples := make([]model.MetricSample, 0, len(keys))
	for _, k := range keys {
		samples = append(samples, model.MetricSample{
			Key:   wellness.MetricKey(k),
			Value: c.Metrics[k],
			TS:    startedAt,
		})
	}

	return model.Conversation{
		ConversationID:  c.ConversationID,
		PatientID:       c.PatientID,
		StartedAt:       startedAt,
		DurationSeconds: c.DurationSeconds,
		Summary:         c.Summary,
		Samples:         samples,
	}
}

// HandlePostConversation handles POST /conversations requests.
func (h *ConversationsHandler) HandlePostConversation(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_conversation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req conversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.ConversationID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	// Try to enqueue for async evaluation
	if ok := h.deps.Enqueue(r.Context(), req.toModel()); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.ConversationID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
