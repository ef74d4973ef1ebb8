package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAzureOpenAIProvider_ChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/deployments/gpt-4o-mini/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("api-version"); got != "2024-02-15-preview" {
			t.Errorf("unexpected api-version: %s", got)
		}
		if r.Header.Get("api-key") != "test-key" {
			t.Errorf("unexpected api-key: %s", r.Header.Get("api-key"))
		}
		var reqBody map[string]any
		json.NewDecoder(r.Body).Decode(&reqBody)
		if reqBody["temperature"] != 0.7 {
			t.Errorf("unexpected temperature: %v", reqBody["temperature"])
		}
		if reqBody["max_tokens"] != float64(800) {
			t.Errorf("unexpected max_tokens: %v", reqBody["max_tokens"])
		}
		msgs, _ := reqBody["messages"].([]any)
		if len(msgs) != 2 {
			t.Errorf("messages: got %d, want 2", len(msgs))
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "The file lists two cities."}, "finish_reason": "stop"},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := NewAzureOpenAIProvider(AzureOptions{
		Endpoint:   server.URL + "/",
		APIKey:     "test-key",
		Deployment: "gpt-4o-mini",
		APIVersion: "2024-02-15-preview",
	})
	temp, maxTokens := 0.7, 800
	resp, err := p.ChatCompletion(context.Background(), &ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "You are helpful."},
			{Role: RoleUser, Content: "Summarize"},
		},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		t.Fatalf("ChatCompletion: %v", err)
	}
	if resp.Content != "The file lists two cities." {
		t.Errorf("content: got %q", resp.Content)
	}
	if resp.FinishReason != "stop" {
		t.Errorf("finish_reason: got %q", resp.FinishReason)
	}
}

func TestAzureOpenAIProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"401","message":"Access denied"}}`))
	}))
	defer server.Close()

	p := NewAzureOpenAIProvider(AzureOptions{Endpoint: server.URL, APIKey: "bad", Deployment: "d", APIVersion: "v"})
	_, err := p.ChatCompletion(context.Background(), &ChatRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Azure OpenAI API error") || !strings.Contains(err.Error(), "Access denied") {
		t.Errorf("error should carry upstream body: %v", err)
	}
}

func TestAzureOpenAIProvider_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	p := NewAzureOpenAIProvider(AzureOptions{Endpoint: server.URL, APIKey: "k", Deployment: "d", APIVersion: "v"})
	if _, err := p.ChatCompletion(context.Background(), &ChatRequest{}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestAzureOpenAIProvider_NotConfigured(t *testing.T) {
	p := NewAzureOpenAIProvider(AzureOptions{Endpoint: "https://example.openai.azure.com"})
	_, err := p.ChatCompletion(context.Background(), &ChatRequest{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
