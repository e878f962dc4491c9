package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mindmate/internal/config"
	"mindmate/internal/conversation"
	"mindmate/internal/llm"
	"mindmate/internal/safety"
	"mindmate/internal/sentiment"
	"mindmate/internal/triage"
)

func newTestHandler(t *testing.T, cfg config.Config) *http.ServeMux {
	t.Helper()
	detector, err := safety.NewDetector(safety.DefaultLibrary(), nil)
	if err != nil {
		t.Fatalf("detector: %v", err)
	}
	windows := conversation.NewStore(cfg.Conversation.WindowMax, cfg.Conversation.ContextSize)
	orch := triage.New(
		detector,
		sentiment.NewChain(nil, time.Second, nil),
		llm.NewChain(nil, time.Second, nil),
		windows,
		nil,
		nil,
	)
	handler, err := NewHandler(cfg, orch, windows, nil, nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux
}

func postChat(t *testing.T, mux *http.ServeMux, body map[string]any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestChatPositiveOutage(t *testing.T) {
	mux := newTestHandler(t, config.Default())

	rr := postChat(t, mux, map[string]any{"message": "I'm feeling great today!"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rr.Code, rr.Body.String())
	}

	var res triage.Result
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.CrisisDetected {
		t.Fatalf("unexpected crisis")
	}
	if res.Sentiment.Label != sentiment.LabelPositive {
		t.Fatalf("expected positive label, got %q", res.Sentiment.Label)
	}
	if res.ResponseText != llm.Canned(sentiment.LabelPositive) {
		t.Fatalf("expected positive canned template")
	}
	if res.ConversationID == "" {
		t.Fatalf("expected conversation id in response")
	}
}

func TestChatCrisis(t *testing.T) {
	mux := newTestHandler(t, config.Default())

	rr := postChat(t, mux, map[string]any{"message": "I want to kill myself"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}

	var res triage.Result
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.CrisisDetected {
		t.Fatalf("expected crisis")
	}
	if !strings.Contains(res.ResponseText, "988") || !strings.Contains(res.ResponseText, "911") {
		t.Fatalf("crisis response missing hotline numbers")
	}
	if len(res.Resources) == 0 {
		t.Fatalf("expected crisis resources")
	}
	if res.Severity != triage.SeverityHigh {
		t.Fatalf("expected high severity, got %q", res.Severity)
	}
}

func TestChatValidation(t *testing.T) {
	mux := newTestHandler(t, config.Default())

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{"missing message", map[string]any{}, http.StatusBadRequest},
		{"empty message", map[string]any{"message": ""}, http.StatusBadRequest},
		{"blank message", map[string]any{"message": "   "}, http.StatusBadRequest},
		{"oversized message", map[string]any{"message": strings.Repeat("x", 2001)}, http.StatusBadRequest},
		{"max-length message", map[string]any{"message": strings.Repeat("x", 2000)}, http.StatusOK},
		{"unknown field", map[string]any{"message": "hi", "admin": true}, http.StatusBadRequest},
		{"wrong type", map[string]any{"message": 42}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if rr := postChat(t, mux, tc.body, nil); rr.Code != tc.want {
			t.Errorf("%s: status %d, want %d", tc.name, rr.Code, tc.want)
		}
	}
}

func TestChatRejectsInvalidJSON(t *testing.T) {
	mux := newTestHandler(t, config.Default())
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
}

func TestConversationReadAndClear(t *testing.T) {
	mux := newTestHandler(t, config.Default())

	rr := postChat(t, mux, map[string]any{"message": "hello there", "conversation_id": "conv-1"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("chat status %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/conversations/conv-1", nil)
	get := httptest.NewRecorder()
	mux.ServeHTTP(get, req)
	if get.Code != http.StatusOK {
		t.Fatalf("get status %d", get.Code)
	}
	var payload struct {
		ConversationID string                 `json:"conversation_id"`
		History        []conversation.Message `json:"history"`
	}
	if err := json.Unmarshal(get.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.History) != 2 {
		t.Fatalf("expected user+assistant history, got %d entries", len(payload.History))
	}

	del := httptest.NewRecorder()
	mux.ServeHTTP(del, httptest.NewRequest(http.MethodDelete, "/conversations/conv-1", nil))
	if del.Code != http.StatusOK {
		t.Fatalf("delete status %d", del.Code)
	}

	again := httptest.NewRecorder()
	mux.ServeHTTP(again, httptest.NewRequest(http.MethodDelete, "/conversations/conv-1", nil))
	if again.Code != http.StatusNotFound {
		t.Fatalf("second delete status %d, want 404", again.Code)
	}
}

func TestConversationUnknownID(t *testing.T) {
	mux := newTestHandler(t, config.Default())
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/conversations/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rr.Code)
	}
}

func TestAPIKeyGate(t *testing.T) {
	cfg := config.Default()
	cfg.Security.APIKey = "secret"
	mux := newTestHandler(t, cfg)

	if rr := postChat(t, mux, map[string]any{"message": "hi"}, nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("status without key %d, want 401", rr.Code)
	}
	headers := map[string]string{"X-MM-API-Key": "secret"}
	if rr := postChat(t, mux, map[string]any{"message": "hi"}, headers); rr.Code != http.StatusOK {
		t.Fatalf("status with key %d, want 200", rr.Code)
	}
}

func TestHealthAndDisclaimer(t *testing.T) {
	mux := newTestHandler(t, config.Default())

	hz := httptest.NewRecorder()
	mux.ServeHTTP(hz, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if hz.Code != http.StatusOK {
		t.Fatalf("healthz status %d", hz.Code)
	}

	dc := httptest.NewRecorder()
	mux.ServeHTTP(dc, httptest.NewRequest(http.MethodGet, "/disclaimer", nil))
	if dc.Code != http.StatusOK {
		t.Fatalf("disclaimer status %d", dc.Code)
	}
	if !strings.Contains(dc.Body.String(), "988") {
		t.Fatalf("disclaimer missing hotline number")
	}
}
