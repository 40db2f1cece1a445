package assist

import (
	"encoding/json"
	"net/http"

	"github.com/complyward/kyc-review-platform/pkg/logging"
)

// Handler wires HTTP requests to the assist service.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type chatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat handles POST /assist/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode chat request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reply, err := h.service.Chat(r.Context(), req.Messages)
	if err != nil {
		h.logger.Error("chat request failed", "error", err)
		http.Error(w, "Assistant is unavailable", http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

type rewriteRequest struct {
	Section      string `json:"section"`
	Instructions string `json:"instructions,omitempty"`
}

type rewriteResponse struct {
	Rewritten string `json:"rewritten"`
}

// Rewrite handles POST /assist/rewrite.
func (h *Handler) Rewrite(w http.ResponseWriter, r *http.Request) {
	var req rewriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode rewrite request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rewritten, err := h.service.Rewrite(r.Context(), req.Section, req.Instructions)
	if err != nil {
		h.logger.Error("rewrite request failed", "error", err)
		http.Error(w, "Assistant is unavailable", http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusOK, rewriteResponse{Rewritten: rewritten})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
