package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carevox/carevox/internal/completion"
	"github.com/carevox/carevox/internal/history"
	"github.com/carevox/carevox/internal/pipeline"
)

const chatSystemPrompt = "You are a helpful clinical assistant. Answer medical questions " +
	"clearly and accurately, and advise consulting a healthcare professional for " +
	"personal medical decisions."

type ChatHandler struct {
	gateway completion.Gateway
	runner  *pipeline.Runner
	store   history.Store
	model   string
}

func NewChatHandler(gw completion.Gateway, runner *pipeline.Runner, store history.Store, model string) *ChatHandler {
	return &ChatHandler{gateway: gw, runner: runner, store: store, model: model}
}

type chatRequest struct {
	Message        string `json:"message"`
	SessionID      string `json:"sessionId"`
	OutputLanguage string `json:"outputLanguage"`
}

type chatData struct {
	Response         string `json:"response"`
	DetectedLanguage string `json:"detectedLanguage"`
	SessionID        string `json:"sessionId"`
	AudioBase64      string `json:"audioBase64,omitempty"`
	AudioFormat      string `json:"audioFormat,omitempty"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, pipeline.Validation("invalid request body"))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, pipeline.Validation("message is required"))
		return
	}
	if !h.gateway.Configured() {
		writeError(w, pipeline.Configuration("completion service is not configured: set OPENAI_API_KEY"))
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	outputLanguage := req.OutputLanguage
	if outputLanguage == "" {
		outputLanguage = "en"
	}

	ctx := r.Context()

	// Read-then-append is last-write-wins across concurrent requests for the
	// same session; individual appends are serialized by the store.
	prior, err := h.store.Get(ctx, sessionID)
	if err != nil {
		slog.Warn("history read failed, continuing without context",
			"session", sessionID, "error", err)
	}

	messages := make([]completion.Message, 0, len(prior)+2)
	messages = append(messages, completion.Message{Role: "system", Content: chatSystemPrompt})
	for _, e := range prior {
		messages = append(messages, completion.Message{Role: e.Role, Content: e.Content})
	}
	messages = append(messages, completion.Message{Role: "user", Content: req.Message})

	res, err := h.runner.Run(ctx, pipeline.RunInput{
		TargetLanguage: outputLanguage,
		Timeout:        textTimeout,
		Invoke: func(ctx context.Context) (string, error) {
			resp, err := h.gateway.Complete(ctx, completion.Request{
				Model:    h.model,
				Messages: messages,
			})
			if err != nil {
				return "", err
			}
			return resp.Content, nil
		},
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.store.Append(ctx, sessionID,
		history.Entry{Role: "user", Content: req.Message},
		history.Entry{Role: "assistant", Content: res.FinalText()},
	); err != nil {
		slog.Warn("history append failed", "session", sessionID, "error", err)
	}

	data := chatData{
		Response:         res.FinalText(),
		DetectedLanguage: res.DetectedLanguage,
		SessionID:        sessionID,
	}
	if res.Audio != nil {
		data.AudioBase64 = base64.StdEncoding.EncodeToString(res.Audio)
		data.AudioFormat = res.AudioFormat
	}
	writeSuccess(w, http.StatusOK, data)
}

// ClearSession drops a session's conversation history.
func (h *ChatHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		writeError(w, pipeline.Validation("session id is required"))
		return
	}

	existed, err := h.store.Clear(r.Context(), sessionID)
	if err != nil {
		writeError(w, pipeline.Internal(err))
		return
	}
	if !existed {
		writeError(w, pipeline.NotFound("unknown session"))
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"sessionId": sessionID, "status": "cleared"})
}
