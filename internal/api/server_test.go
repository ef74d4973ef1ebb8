package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/soochol/filechat/internal/chat"
	"github.com/soochol/filechat/internal/provider"
	"github.com/soochol/filechat/internal/storage"
)

type stubProvider struct {
	content string
	err     error
	calls   int
	last    *provider.ChatRequest
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) ChatCompletion(_ context.Context, req *provider.ChatRequest) (*provider.ChatResponse, error) {
	p.calls++
	p.last = req
	if p.err != nil {
		return nil, p.err
	}
	return &provider.ChatResponse{Content: p.content, FinishReason: "stop"}, nil
}

func newTestServer(t *testing.T, p provider.Provider) (*Server, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	var analyzer *chat.Analyzer
	if p != nil {
		analyzer = chat.NewAnalyzer(p)
	}
	return NewServer(store, analyzer), store
}

type part struct {
	field, filename, contentType string
	data                         []byte
}

func multipartBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		w.Write(p.data)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestAPI_Health(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	w := doJSON(t, srv, "GET", "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	if decode(t, w)["status"] != "ok" {
		t.Errorf("body: %s", w.Body.String())
	}
}

func TestAPI_NoCacheHeaders(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	w := doJSON(t, srv, "GET", "/api/health", nil)
	if got := w.Header().Get("Cache-Control"); got != "no-store, no-cache, must-revalidate, private" {
		t.Errorf("Cache-Control: got %q", got)
	}
	if w.Header().Get("Pragma") != "no-cache" || w.Header().Get("Expires") != "-1" {
		t.Errorf("Pragma/Expires: %v", w.Header())
	}
}

func TestAPI_UnknownAPIRoute(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	w := doJSON(t, srv, "GET", "/api/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", w.Code)
	}
	resp := decode(t, w)
	if resp["error"] != "Not Found" {
		t.Errorf("error: got %v", resp["error"])
	}
	if resp["message"] != "The requested API endpoint /api/nope does not exist" {
		t.Errorf("message: got %v", resp["message"])
	}
}

func TestAPI_StaticFallback(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0644)
	os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0644)
	srv.SetStaticDir(dir)

	for path, want := range map[string]string{
		"/app.js":        "console.log(1)",
		"/conversations": "<html>app</html>",
		"/":              "<html>app</html>",
	} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s: status %d", path, w.Code)
			continue
		}
		if w.Body.String() != want {
			t.Errorf("%s: body %q, want %q", path, w.Body.String(), want)
		}
	}
}

func TestAPI_FrontendConfig(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	srv.SetFrontendInfo(FrontendInfo{
		AzureEndpoint:  "https://example.openai.azure.com",
		DeploymentName: "gpt-4o-mini",
		APIVersion:     "2024-02-15-preview",
		APIURL:         "https://app.example.com",
	})

	for _, path := range []string{"/api/frontend-config", "/api/config/frontend-config"} {
		w := doJSON(t, srv, "GET", path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status got %d, want 200", path, w.Code)
		}
		resp := decode(t, w)
		azure, _ := resp["azureOpenAI"].(map[string]any)
		if azure["deploymentName"] != "gpt-4o-mini" || azure["endpoint"] != "https://example.openai.azure.com" {
			t.Errorf("%s: azureOpenAI: %v", path, azure)
		}
		if resp["apiUrl"] != "https://app.example.com" {
			t.Errorf("%s: apiUrl: %v", path, resp["apiUrl"])
		}
		features, _ := resp["features"].(map[string]any)
		if features["fileUpload"] != true || features["conversationSaving"] != true {
			t.Errorf("%s: features: %v", path, features)
		}
		if bytes.Contains(w.Body.Bytes(), []byte("apiKey")) {
			t.Errorf("%s: frontend config must not expose keys", path)
		}
	}
}

func TestAPI_SaveConversation(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	w := doJSON(t, srv, "POST", "/api/fn-conversationsave", map[string]any{
		"conversation_id": "c-1",
		"messages":        []map[string]string{{"role": "user", "content": "hi"}},
		"timestamp":       "2026-01-01T00:00:00Z",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	resp := decode(t, w)
	if resp["success"] != true || resp["conversation_id"] != "c-1" {
		t.Errorf("body: %v", resp)
	}
}

func TestAPI_SaveConversationInvalid(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	for _, body := range []any{
		map[string]any{"messages": []any{}},
		map[string]any{"conversation_id": "c-1"},
		map[string]any{"conversation_id": "c-1", "messages": "not-a-list"},
		"{broken",
	} {
		w := doJSON(t, srv, "POST", "/api/fn-conversationsave", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%v: status %d, want 400", body, w.Code)
			continue
		}
		if decode(t, w)["error"] != "Invalid conversation data" {
			t.Errorf("%v: body %s", body, w.Body.String())
		}
	}
}
