// Package chat builds document-grounded prompts and sends them upstream.
package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soochol/filechat/internal/provider"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 800
)

// FileContext is the extracted document a question refers to.
type FileContext struct {
	FileContent string         `json:"fileContent"`
	Metadata    map[string]any `json:"metadata"`
}

// SystemPrompt describes the document to the model using its metadata.
func SystemPrompt(meta map[string]any) string {
	return fmt.Sprintf("You are an AI assistant that helps users understand documents. \n"+
		"The following text was extracted from a %s file named \"%s\".\n"+
		"Please analyze this content and respond to the user's question.",
		metaString(meta, "fileType"), metaString(meta, "originalName"))
}

// UserPrompt embeds the document text verbatim ahead of the question.
func UserPrompt(fileContent, question string) string {
	return "\nFile Content:\n" + fileContent + "\n\nUser Question: " + question + "\n"
}

// Messages returns the system/user pair sent to the chat completion API.
func Messages(question string, fc FileContext) []provider.Message {
	return []provider.Message{
		{Role: provider.RoleSystem, Content: SystemPrompt(fc.Metadata)},
		{Role: provider.RoleUser, Content: UserPrompt(fc.FileContent, question)},
	}
}

func metaString(meta map[string]any, key string) string {
	v, ok := meta[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Analyzer answers questions about an extracted file.
type Analyzer struct {
	provider provider.Provider
}

func NewAnalyzer(p provider.Provider) *Analyzer {
	return &Analyzer{provider: p}
}

// Complete forwards a client-built conversation unchanged, with the same
// sampling settings as Ask.
func (a *Analyzer) Complete(ctx context.Context, msgs []provider.Message) (*provider.ChatResponse, error) {
	temp, maxTokens := defaultTemperature, defaultMaxTokens
	resp, err := a.provider.ChatCompletion(ctx, &provider.ChatRequest{
		Messages:    msgs,
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("chat completed",
		"provider", a.provider.Name(),
		"messages", len(msgs),
		"finish_reason", resp.FinishReason)
	return resp, nil
}

// Ask sends one question with its file context and returns the reply text.
func (a *Analyzer) Ask(ctx context.Context, question string, fc FileContext) (string, error) {
	temp, maxTokens := defaultTemperature, defaultMaxTokens
	resp, err := a.provider.ChatCompletion(ctx, &provider.ChatRequest{
		Messages:    Messages(question, fc),
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return "", err
	}
	slog.Debug("file chat answered",
		"provider", a.provider.Name(),
		"original_name", metaString(fc.Metadata, "originalName"),
		"finish_reason", resp.FinishReason)
	return resp.Content, nil
}
