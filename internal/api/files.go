package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/soochol/filechat/internal/chat"
	"github.com/soochol/filechat/internal/extract"
	"github.com/soochol/filechat/internal/provider"
	"github.com/soochol/filechat/internal/storage"
)

type processRequest struct {
	File *extract.FileRecord `json:"file"`
}

type processResponse struct {
	Message string          `json:"message"`
	Result  *extract.Result `json:"result"`
}

func (s *Server) processFile(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.File == nil {
		writeError(w, http.StatusBadRequest, "No file information provided", "")
		return
	}

	rec, err := s.storage.Resolve(*req.File)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, storage.ErrOutsideStore) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "Invalid file reference", err.Error())
		return
	}

	result, err := extract.ProcessFile(rec)
	if err != nil {
		slog.Error("file processing failed", "original_name", rec.OriginalName, "err", err)
		writeError(w, http.StatusInternalServerError, "File processing failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, processResponse{Message: "File processed successfully", Result: result})
}

type chatRequest struct {
	Message     string            `json:"message"`
	FileContext *chat.FileContext `json:"fileContext"`
}

type chatResponse struct {
	Message  string         `json:"message"`
	Response string         `json:"response"`
	Metadata map[string]any `json:"metadata"`
}

func (s *Server) chatWithFile(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" || req.FileContext == nil {
		writeError(w, http.StatusBadRequest, "Missing message or file context", "")
		return
	}
	if s.analyzer == nil {
		writeError(w, http.StatusInternalServerError, "Azure OpenAI configuration missing", "")
		return
	}

	answer, err := s.analyzer.Ask(r.Context(), req.Message, *req.FileContext)
	if err != nil {
		if errors.Is(err, provider.ErrNotConfigured) {
			writeError(w, http.StatusInternalServerError, "Azure OpenAI configuration missing", "")
			return
		}
		slog.Error("file chat failed", "err", err)
		writeError(w, http.StatusInternalServerError, "File analysis failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Message:  "File analyzed successfully",
		Response: answer,
		Metadata: req.FileContext.Metadata,
	})
}
