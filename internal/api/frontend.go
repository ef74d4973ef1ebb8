package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type frontendConfigResponse struct {
	AzureOpenAI struct {
		Endpoint       string `json:"endpoint"`
		DeploymentName string `json:"deploymentName"`
		APIVersion     string `json:"apiVersion"`
	} `json:"azureOpenAI"`
	APIURL   string `json:"apiUrl"`
	Features struct {
		FileUpload         bool `json:"fileUpload"`
		ConversationSaving bool `json:"conversationSaving"`
	} `json:"features"`
}

func (s *Server) frontendConfig(w http.ResponseWriter, r *http.Request) {
	var resp frontendConfigResponse
	resp.AzureOpenAI.Endpoint = s.frontend.AzureEndpoint
	resp.AzureOpenAI.DeploymentName = s.frontend.DeploymentName
	resp.AzureOpenAI.APIVersion = s.frontend.APIVersion
	resp.APIURL = s.frontend.APIURL
	resp.Features.FileUpload = true
	resp.Features.ConversationSaving = true
	writeJSON(w, http.StatusOK, resp)
}

type conversationSaveRequest struct {
	ConversationID string            `json:"conversation_id"`
	Messages       []json.RawMessage `json:"messages"`
	Timestamp      json.RawMessage   `json:"timestamp,omitempty"`
}

type conversationSaveResponse struct {
	Success        bool   `json:"success"`
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// saveConversation acknowledges the save; conversations are not persisted.
func (s *Server) saveConversation(w http.ResponseWriter, r *http.Request) {
	var req conversationSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConversationID == "" || req.Messages == nil {
		writeError(w, http.StatusBadRequest, "Invalid conversation data", "")
		return
	}

	slog.Info("saving conversation", "conversation_id", req.ConversationID, "messages", len(req.Messages))
	writeJSON(w, http.StatusOK, conversationSaveResponse{
		Success:        true,
		ConversationID: req.ConversationID,
		Message:        "Conversation saved successfully",
	})
}
