package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carevox/carevox/internal/completion"
	"github.com/carevox/carevox/internal/history"
	"github.com/carevox/carevox/internal/language"
	"github.com/carevox/carevox/internal/pipeline"
	"github.com/carevox/carevox/internal/speech"
)

// fakeGateway scripts the completion upstream for handler tests.
type fakeGateway struct {
	configured bool
	content    string
	err        error
	calls      int
	lastReq    completion.Request
}

func (f *fakeGateway) Complete(ctx context.Context, req completion.Request) (*completion.Response, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &completion.Response{Content: f.content, Provider: "fake", Model: req.Model}, nil
}

func (f *fakeGateway) Configured() bool { return f.configured }

type staticDetector struct{ code string }

func (d staticDetector) Detect(string) string { return d.code }

type staticTranslator struct{ result string }

func (s staticTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if s.result == "" {
		return "", errors.New("translator unavailable")
	}
	return s.result, nil
}

type staticSynth struct {
	audio []byte
	err   error
}

func (s staticSynth) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	return s.audio, s.err
}
func (s staticSynth) Format() string { return "mp3" }
func (s staticSynth) Name() string   { return "static" }

type envelope struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
	Error   struct {
		Kind       string `json:"kind"`
		Message    string `json:"message"`
		Details    string `json:"details"`
		RetryAfter int    `json:"retryAfter"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func testPolicy() pipeline.RetryPolicy {
	return pipeline.RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond, GrowthFactor: 2}
}

func newTestRunner(synth staticSynth) *pipeline.Runner {
	langStage := language.NewStage(staticDetector{"en"}, staticTranslator{result: "traducido"})
	speechStage := speech.NewStage(synth, "en")
	return pipeline.NewRunner(langStage, speechStage, testPolicy())
}

func postJSON(t *testing.T, h http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestChatInvalidBody(t *testing.T) {
	gw := &fakeGateway{configured: true}
	h := NewChatHandler(gw, newTestRunner(staticSynth{}), history.NewMemoryStore(0), "gpt-4o-mini")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/", bytes.NewReader([]byte("{bad")))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "ValidationError", env.Error.Kind)
}

func TestChatEmptyMessage(t *testing.T) {
	gw := &fakeGateway{configured: true}
	h := NewChatHandler(gw, newTestRunner(staticSynth{}), history.NewMemoryStore(0), "gpt-4o-mini")

	rec := postJSON(t, h.Chat, chatRequest{Message: "   "})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "ValidationError", env.Error.Kind)
	assert.Equal(t, "message is required", env.Error.Message)
	assert.Zero(t, gw.calls, "no upstream call on invalid input")
}

func TestChatMissingCredential(t *testing.T) {
	gw := &fakeGateway{configured: false}
	h := NewChatHandler(gw, newTestRunner(staticSynth{}), history.NewMemoryStore(0), "gpt-4o-mini")

	rec := postJSON(t, h.Chat, chatRequest{Message: "hello"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "ConfigurationError", env.Error.Kind)
	assert.Contains(t, env.Error.Message, "not configured")
	assert.Zero(t, gw.calls, "unconfigured service must not reach the upstream")
}

func TestChatSuccess(t *testing.T) {
	gw := &fakeGateway{configured: true, content: "You should rest and hydrate."}
	store := history.NewMemoryStore(0)
	h := NewChatHandler(gw, newTestRunner(staticSynth{audio: []byte("mp3bytes")}), store, "gpt-4o-mini")

	rec := postJSON(t, h.Chat, chatRequest{Message: "I have a headache", SessionID: "s1"})

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "You should rest and hydrate.", env.Data["response"])
	assert.Equal(t, "en", env.Data["detectedLanguage"])
	assert.Equal(t, "s1", env.Data["sessionId"])
	assert.NotEmpty(t, env.Data["audioBase64"])
	assert.Equal(t, "mp3", env.Data["audioFormat"])

	// Both turns recorded.
	entries, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, history.Entry{Role: "user", Content: "I have a headache"}, entries[0])
	assert.Equal(t, history.Entry{Role: "assistant", Content: "You should rest and hydrate."}, entries[1])
}

func TestChatGeneratesSessionID(t *testing.T) {
	gw := &fakeGateway{configured: true, content: "hi"}
	h := NewChatHandler(gw, newTestRunner(staticSynth{}), history.NewMemoryStore(0), "gpt-4o-mini")

	rec := postJSON(t, h.Chat, chatRequest{Message: "hello"})

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.NotEmpty(t, env.Data["sessionId"])
}

func TestChatSendsHistoryToUpstream(t *testing.T) {
	gw := &fakeGateway{configured: true, content: "second answer"}
	store := history.NewMemoryStore(0)
	require.NoError(t, store.Append(context.Background(), "s1",
		history.Entry{Role: "user", Content: "first question"},
		history.Entry{Role: "assistant", Content: "first answer"},
	))
	h := NewChatHandler(gw, newTestRunner(staticSynth{}), store, "gpt-4o-mini")

	rec := postJSON(t, h.Chat, chatRequest{Message: "second question", SessionID: "s1"})
	require.Equal(t, http.StatusOK, rec.Code)

	// system prompt, two prior turns, current question.
	require.Len(t, gw.lastReq.Messages, 4)
	assert.Equal(t, "system", gw.lastReq.Messages[0].Role)
	assert.Equal(t, "first question", gw.lastReq.Messages[1].Content)
	assert.Equal(t, "first answer", gw.lastReq.Messages[2].Content)
	assert.Equal(t, "second question", gw.lastReq.Messages[3].Content)
}

func TestChatRateLimitExhaustion(t *testing.T) {
	rl := pipeline.NewUpstreamError(429, errors.New("rate limit exceeded"))
	rl.RetryAfter = 9
	gw := &fakeGateway{configured: true, err: rl}
	store := history.NewMemoryStore(0)
	h := NewChatHandler(gw, newTestRunner(staticSynth{}), store, "gpt-4o-mini")

	rec := postJSON(t, h.Chat, chatRequest{Message: "hello", SessionID: "s1"})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 3, gw.calls, "initial attempt plus two retries")

	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "RateLimited", env.Error.Kind)
	assert.Equal(t, 9, env.Error.RetryAfter)

	// Failed exchanges are not recorded.
	entries, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestChatFatalUpstreamErrorNotRetried(t *testing.T) {
	gw := &fakeGateway{configured: true, err: pipeline.NewUpstreamError(401, errors.New("bad key"))}
	h := NewChatHandler(gw, newTestRunner(staticSynth{}), history.NewMemoryStore(0), "gpt-4o-mini")

	rec := postJSON(t, h.Chat, chatRequest{Message: "hello"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, gw.calls)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "UpstreamFailure", env.Error.Kind)
}

func TestClearSession(t *testing.T) {
	store := history.NewMemoryStore(0)
	require.NoError(t, store.Append(context.Background(), "s1", history.Entry{Role: "user", Content: "x"}))
	h := NewChatHandler(&fakeGateway{configured: true}, newTestRunner(staticSynth{}), store, "gpt-4o-mini")

	r := chi.NewRouter()
	r.Delete("/chat/sessions/{id}", h.ClearSession)

	req := httptest.NewRequest(http.MethodDelete, "/chat/sessions/s1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "cleared", env.Data["status"])

	entries, _ := store.Get(context.Background(), "s1")
	assert.Empty(t, entries)
}

func TestClearSessionUnknown(t *testing.T) {
	h := NewChatHandler(&fakeGateway{configured: true}, newTestRunner(staticSynth{}), history.NewMemoryStore(0), "gpt-4o-mini")

	r := chi.NewRouter()
	r.Delete("/chat/sessions/{id}", h.ClearSession)

	req := httptest.NewRequest(http.MethodDelete, "/chat/sessions/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "NotFound", env.Error.Kind)
	assert.Equal(t, "unknown session", env.Error.Message)
}
