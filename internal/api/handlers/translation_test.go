package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carevox/carevox/internal/speech"
)

type countingTranslator struct {
	result string
	err    error
	calls  int
}

func (c *countingTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	c.calls++
	return c.result, c.err
}

func newTranslationHandler(tr *countingTranslator, synth staticSynth, configured bool) *TranslationHandler {
	return NewTranslationHandler(staticDetector{"en"}, tr, speech.NewStage(synth, "en"), configured)
}

func TestTranslate(t *testing.T) {
	tr := &countingTranslator{result: "hola mundo"}
	h := newTranslationHandler(tr, staticSynth{}, true)

	rec := postJSON(t, h.Translate, translateRequest{Text: "hello world", TargetLanguage: "es"})

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "hello world", env.Data["originalText"])
	assert.Equal(t, "hola mundo", env.Data["translatedText"])
	assert.Equal(t, "en", env.Data["sourceLanguage"])
	assert.Equal(t, "es", env.Data["targetLanguage"])
	assert.Equal(t, 1, tr.calls)
}

func TestTranslateSameLanguageNoOp(t *testing.T) {
	tr := &countingTranslator{result: "should not be used"}
	h := newTranslationHandler(tr, staticSynth{}, true)

	rec := postJSON(t, h.Translate, translateRequest{Text: "hello world", SourceLanguage: "en", TargetLanguage: "EN"})

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "hello world", env.Data["translatedText"])
	assert.Zero(t, tr.calls, "same-language translation must not call the endpoint")
}

func TestTranslateMissingText(t *testing.T) {
	h := newTranslationHandler(&countingTranslator{}, staticSynth{}, true)
	rec := postJSON(t, h.Translate, translateRequest{TargetLanguage: "es"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ValidationError", decodeEnvelope(t, rec).Error.Kind)
}

func TestTranslateMissingTarget(t *testing.T) {
	h := newTranslationHandler(&countingTranslator{}, staticSynth{}, true)
	rec := postJSON(t, h.Translate, translateRequest{Text: "hello"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranslateFailureFallsBackToOriginal(t *testing.T) {
	tr := &countingTranslator{err: errors.New("endpoint down")}
	h := newTranslationHandler(tr, staticSynth{}, true)

	rec := postJSON(t, h.Translate, translateRequest{Text: "hello world", TargetLanguage: "es"})

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "hello world", env.Data["translatedText"])
}

func TestTextToSpeech(t *testing.T) {
	h := newTranslationHandler(&countingTranslator{}, staticSynth{audio: []byte("mp3data")}, true)

	rec := postJSON(t, h.TextToSpeech, ttsRequest{Text: "read this aloud", Language: "en"})

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("mp3data")), env.Data["audioBase64"])
	assert.Equal(t, "mp3", env.Data["audioFormat"])
}

func TestTextToSpeechEmptyText(t *testing.T) {
	h := newTranslationHandler(&countingTranslator{}, staticSynth{audio: []byte("x")}, true)

	rec := postJSON(t, h.TextToSpeech, ttsRequest{Text: "  "})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "ValidationError", env.Error.Kind)
	assert.Equal(t, "no text to synthesize", env.Error.Message)
}

func TestTextToSpeechNotConfigured(t *testing.T) {
	h := newTranslationHandler(&countingTranslator{}, staticSynth{}, false)

	rec := postJSON(t, h.TextToSpeech, ttsRequest{Text: "hello"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "ConfigurationError", env.Error.Kind)
	assert.Contains(t, env.Error.Message, "not configured")
}

func TestTextToSpeechSynthesisFailure(t *testing.T) {
	h := newTranslationHandler(&countingTranslator{}, staticSynth{err: errors.New("voice backend down")}, true)

	rec := postJSON(t, h.TextToSpeech, ttsRequest{Text: "hello"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "UpstreamFailure", env.Error.Kind)
	assert.Equal(t, "speech synthesis failed", env.Error.Message)
}

func TestHealth(t *testing.T) {
	h := NewHealthHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data["status"])
}

func TestInfoWithoutRedis(t *testing.T) {
	h := NewHealthHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	rec := httptest.NewRecorder()
	h.Info(InfoCapabilities{Completion: true, Speech: false, AuthEnabled: true})(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "disabled", env.Data["redis"])

	services, ok := env.Data["services"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, services["chat"])
	assert.Equal(t, false, services["transcription"])
	assert.Equal(t, true, services["translation"])
}
