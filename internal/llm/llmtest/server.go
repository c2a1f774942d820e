// Package llmtest provides an in-process stand-in for the OpenAI, Claude and
// Gemini endpoints used by the gateway.
package llmtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/hyperifyio/laudo/internal/llm"
)

// Stub answers every provider shape with the text returned by Reply.
type Stub struct {
	// Reply builds the model text for a prompt. Nil echoes a fixed string.
	Reply func(prompt string) string
	// Status, when non-zero, makes every call fail with that code.
	Status  int
	Message string

	mux     *http.ServeMux
	mu      sync.Mutex
	prompts []string
	systems []string
}

// NewStub returns a handler serving the OpenAI, Claude and Gemini routes.
func NewStub(reply func(prompt string) string) *Stub {
	s := &Stub{Reply: reply, mux: http.NewServeMux()}
	s.mux.HandleFunc("/v1/models", s.models)
	s.mux.HandleFunc("/v1/chat/completions", s.chat)
	s.mux.HandleFunc("/v1/messages", s.messages)
	s.mux.HandleFunc("/v1beta/models/", s.generate)
	return s
}

func (s *Stub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Server is a Stub listening on a local test server.
type Server struct {
	*httptest.Server
	*Stub
}

// New starts a stub server. Callers must Close it.
func New(reply func(prompt string) string) *Server {
	st := NewStub(reply)
	return &Server{Server: httptest.NewServer(st), Stub: st}
}

// Gateway returns a gateway whose every provider points at s.
func (s *Server) Gateway() *llm.Gateway {
	return &llm.Gateway{
		HTTPClient:    s.Client(),
		OpenAIBaseURL: s.URL + "/v1",
		ClaudeBaseURL: s.URL,
		GeminiBaseURL: s.URL,
	}
}

// Calls returns the number of generation requests served.
func (s *Stub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// Prompts returns a copy of the prompts received, in arrival order.
func (s *Stub) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Systems returns the system messages received on the chat route.
func (s *Stub) Systems() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.systems...)
}

func (s *Stub) record(prompt string) string {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	if s.Reply == nil {
		return "resposta do modelo"
	}
	return s.Reply(prompt)
}

func (s *Stub) fail(w http.ResponseWriter) bool {
	if s.Status == 0 {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.Status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": s.Status, "message": s.Message, "type": "invalid_request_error"},
	})
	return true
}

func (s *Stub) models(w http.ResponseWriter, r *http.Request) {
	if s.fail(w) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data":   []map[string]any{{"id": "gpt-4o", "object": "model"}},
	})
}

func (s *Stub) chat(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if s.fail(w) {
		return
	}
	prompt := ""
	for _, m := range req.Messages {
		switch m.Role {
		case "user":
			prompt = m.Content
		case "system":
			s.mu.Lock()
			s.systems = append(s.systems, m.Content)
			s.mu.Unlock()
		}
	}
	text := s.record(prompt)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-stub",
		"object":  "chat.completion",
		"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": text}, "finish_reason": "stop"}},
	})
}

func (s *Stub) messages(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req struct {
		Messages []struct {
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if s.fail(w) {
		return
	}
	if r.Header.Get("x-api-key") == "" || r.Header.Get("anthropic-version") == "" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"missing auth headers"}}`))
		return
	}
	prompt := ""
	if len(req.Messages) > 0 {
		prompt = messageText(req.Messages[0].Content)
	}
	text := s.record(prompt)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":          "msg_stub",
		"type":        "message",
		"role":        "assistant",
		"stop_reason": "end_turn",
		"content":     []map[string]any{{"type": "text", "text": text}},
	})
}

func (s *Stub) generate(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if s.fail(w) {
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		key = r.Header.Get("x-goog-api-key")
	}
	if !strings.HasSuffix(r.URL.Path, ":generateContent") || key == "" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad gemini request"}}`))
		return
	}
	prompt := ""
	if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
		prompt = req.Contents[0].Parts[0].Text
	}
	text := s.record(prompt)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []map[string]any{{"content": map[string]any{"parts": []map[string]any{{"text": text}}}}},
	})
}

// messageText accepts a Claude message content given as a plain string or
// as a list of text blocks.
func messageText(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var blocks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	_ = json.Unmarshal(raw, &blocks)
	var b strings.Builder
	for _, bl := range blocks {
		if bl.Type == "text" {
			b.WriteString(bl.Text)
		}
	}
	return b.String()
}
