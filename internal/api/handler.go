package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"mindmate/internal/config"
	"mindmate/internal/conversation"
	"mindmate/internal/safety"
	"mindmate/internal/triage"
)

// chatRequestSchema rejects caller-input violations before the core ever
// sees the message; the pipeline itself never returns errors.
const chatRequestSchema = `{
	"type": "object",
	"required": ["message"],
	"properties": {
		"message": {"type": "string", "minLength": 1, "maxLength": 2000},
		"conversation_id": {"type": "string"},
		"user_id": {"type": "string"}
	},
	"additionalProperties": false
}`

// Pinger is a readiness dependency (store, queue).
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Config       config.Config
	Orchestrator *triage.Orchestrator
	Windows      *conversation.Store
	Ready        []Pinger

	logger *zap.Logger
	schema *jsonschema.Schema
}

func NewHandler(cfg config.Config, orch *triage.Orchestrator, windows *conversation.Store, ready []Pinger, logger *zap.Logger) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("chat_request.json", bytes.NewReader([]byte(chatRequestSchema))); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile("chat_request.json")
	if err != nil {
		return nil, err
	}
	return &Handler{
		Config:       cfg,
		Orchestrator: orch,
		Windows:      windows,
		Ready:        ready,
		logger:       logger,
		schema:       schema,
	}, nil
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", h.handleRoot)
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/readyz", h.handleReady)
	mux.HandleFunc("/disclaimer", h.handleDisclaimer)
	mux.HandleFunc("/chat", h.handleChat)
	mux.HandleFunc("/conversations/", h.handleConversation)
}

func (h *Handler) authorized(r *http.Request) bool {
	key := h.Config.Security.APIKey
	return key == "" || r.Header.Get("X-MM-API-Key") == key
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "MindMate Mental Health Support API",
		"status":  "healthy",
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	for _, dep := range h.Ready {
		if err := dep.Ping(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *Handler) handleDisclaimer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"disclaimer": safety.Disclaimer()})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.schema.Validate(raw); err != nil {
		http.Error(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	message, _ := raw["message"].(string)
	conversationID, _ := raw["conversation_id"].(string)
	if strings.TrimSpace(message) == "" {
		http.Error(w, "message must not be blank", http.StatusBadRequest)
		return
	}

	res := h.Orchestrator.Handle(r.Context(), conversationID, message)
	h.logger.Debug("chat handled",
		zap.String("conversation_id", res.ConversationID),
		zap.String("severity", res.Severity),
		zap.Bool("crisis_detected", res.CrisisDetected))
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleConversation(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/conversations/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		history, ok := h.Windows.History(id)
		if !ok {
			http.Error(w, "conversation not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"conversation_id": id,
			"history":         history,
		})
	case http.MethodDelete:
		if !h.Windows.Clear(id) {
			http.Error(w, "conversation not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "conversation " + id + " cleared",
		})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
