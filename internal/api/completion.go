package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/soochol/filechat/internal/provider"
)

type completionRequest struct {
	Messages []provider.Message `json:"messages"`
}

type completionChoice struct {
	Index        int              `json:"index"`
	Message      provider.Message `json:"message"`
	FinishReason string           `json:"finish_reason,omitempty"`
}

// completionResponse keeps the upstream choices shape so the browser client
// can read choices[0].message directly.
type completionResponse struct {
	Choices []completionChoice `json:"choices"`
}

func (s *Server) chatCompletion(w http.ResponseWriter, r *http.Request) {
	var req completionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "Missing messages", "")
		return
	}
	if s.analyzer == nil {
		writeError(w, http.StatusInternalServerError, "Azure OpenAI configuration missing", "")
		return
	}

	resp, err := s.analyzer.Complete(r.Context(), req.Messages)
	if err != nil {
		if errors.Is(err, provider.ErrNotConfigured) {
			writeError(w, http.StatusInternalServerError, "Azure OpenAI configuration missing", "")
			return
		}
		slog.Error("chat completion failed", "messages", len(req.Messages), "err", err)
		writeError(w, http.StatusInternalServerError, "Chat completion failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, completionResponse{Choices: []completionChoice{{
		Message:      provider.Message{Role: provider.RoleAssistant, Content: resp.Content},
		FinishReason: resp.FinishReason,
	}}})
}
