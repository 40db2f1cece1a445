package review

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/complyward/kyc-review-platform/pkg/logging"
)

// GateNotifier is told when a run parks at a human gate so the surrounding
// HTTP layer can send the approval email. Failures are logged, never
// surfaced to the caller: the gate response stands on its own.
type GateNotifier interface {
	NotifyGateOpened(ctx context.Context, resumeToken string, triage TriageResult) error
}

// Handler wires HTTP requests to the review orchestrator.
type Handler struct {
	orchestrator *Orchestrator
	notifier     GateNotifier
	logger       *logging.Logger
}

// NewHandler creates a review handler. The notifier may be nil.
func NewHandler(orchestrator *Orchestrator, notifier GateNotifier, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		orchestrator: orchestrator,
		notifier:     notifier,
		logger:       logger,
	}
}

// Run handles POST /reviews/run.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode review request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp := h.orchestrator.Run(r.Context(), req)
	if resp.HumanGate != nil && h.notifier != nil {
		if err := h.notifier.NotifyGateOpened(r.Context(), resp.ResumeToken, summaryTriage(resp)); err != nil {
			h.logger.Error("failed to send gate notification", "error", err)
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Resume handles POST /reviews/resume. It shares the orchestrator entry
// point; the token on the request selects the resume path.
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode resume request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, h.orchestrator.Run(r.Context(), req))
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}

func summaryTriage(resp *GraphReviewResponse) TriageResult {
	t := TriageResult{
		RiskScore: resp.GraphReviewTrace.Summary.RiskScore,
		RoutePath: resp.GraphReviewTrace.Summary.Path,
	}
	if resp.GraphReviewTrace.Summary.RiskBreakdown != nil {
		t.RiskBreakdown = *resp.GraphReviewTrace.Summary.RiskBreakdown
	}
	return t
}
