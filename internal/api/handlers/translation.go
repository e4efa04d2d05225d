package handlers

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/carevox/carevox/internal/language"
	"github.com/carevox/carevox/internal/pipeline"
	"github.com/carevox/carevox/internal/speech"
)

// TranslationHandler serves the standalone translate and text-to-speech
// endpoints, which bypass the completion upstream entirely.
type TranslationHandler struct {
	detector   language.Detector
	translator language.Translator
	speech     *speech.Stage
	configured bool // speech synthesis credential present
}

func NewTranslationHandler(d language.Detector, t language.Translator, s *speech.Stage, configured bool) *TranslationHandler {
	return &TranslationHandler{detector: d, translator: t, speech: s, configured: configured}
}

type translateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

type translateData struct {
	OriginalText   string `json:"originalText"`
	TranslatedText string `json:"translatedText"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

func (h *TranslationHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, pipeline.Validation("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, pipeline.Validation("text is required"))
		return
	}
	if req.TargetLanguage == "" {
		writeError(w, pipeline.Validation("targetLanguage is required"))
		return
	}

	source := req.SourceLanguage
	if source == "" {
		source = h.detector.Detect(req.Text)
	}

	// Translating into the source language is a no-op, byte-equal to the
	// input; no external call is made.
	translated := req.Text
	if !strings.EqualFold(source, req.TargetLanguage) {
		out, err := h.translator.Translate(r.Context(), req.Text, source, req.TargetLanguage)
		if err != nil || strings.TrimSpace(out) == "" {
			slog.Warn("translation failed, returning original text",
				"source", source, "target", req.TargetLanguage, "error", err)
		} else {
			translated = out
		}
	}

	writeSuccess(w, http.StatusOK, translateData{
		OriginalText:   req.Text,
		TranslatedText: translated,
		SourceLanguage: source,
		TargetLanguage: req.TargetLanguage,
	})
}

type ttsRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type ttsData struct {
	AudioBase64 string `json:"audioBase64"`
	AudioFormat string `json:"audioFormat"`
}

// TextToSpeech synthesizes the given text. Unlike the pipeline's synthesis
// stage, failure here is the failure of the whole feature.
func (h *TranslationHandler) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, pipeline.Validation("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, pipeline.Validation("no text to synthesize"))
		return
	}
	if !h.configured {
		writeError(w, pipeline.Configuration("speech synthesis is not configured: set OPENAI_API_KEY"))
		return
	}

	lang := req.Language
	if lang == "" {
		lang = "en"
	}

	audio, format := h.speech.Synthesize(r.Context(), req.Text, lang)
	if audio == nil {
		writeError(w, &pipeline.Error{
			Kind:    pipeline.KindUpstream,
			Message: "speech synthesis failed",
		})
		return
	}

	writeSuccess(w, http.StatusOK, ttsData{
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		AudioFormat: format,
	})
}
