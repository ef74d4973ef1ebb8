package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// AzureOptions identifies one Azure OpenAI chat deployment.
type AzureOptions struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
	Timeout    time.Duration
}

// Configured reports whether every field needed for a request is set.
func (o AzureOptions) Configured() bool {
	return o.Endpoint != "" && o.APIKey != "" && o.Deployment != "" && o.APIVersion != ""
}

type AzureOpenAIProvider struct {
	opts   AzureOptions
	client *http.Client
}

func NewAzureOpenAIProvider(opts AzureOptions) *AzureOpenAIProvider {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AzureOpenAIProvider{opts: opts, client: &http.Client{Timeout: timeout}}
}

func (p *AzureOpenAIProvider) Name() string { return "azure-openai" }

func (p *AzureOpenAIProvider) completionsURL() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(p.opts.Endpoint, "/"),
		url.PathEscape(p.opts.Deployment),
		url.QueryEscape(p.opts.APIVersion))
}

func (p *AzureOpenAIProvider) ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if !p.opts.Configured() {
		return nil, ErrNotConfigured
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.completionsURL(), bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", p.opts.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Azure OpenAI API error: %s", strings.TrimSpace(string(respBody)))
	}

	var apiResp chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := apiResp.Choices[0]
	return &ChatResponse{Content: choice.Message.Content, FinishReason: choice.FinishReason}, nil
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}
