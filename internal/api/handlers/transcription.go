package handlers

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/carevox/carevox/internal/pipeline"
	"github.com/carevox/carevox/internal/speech"
)

// TranscriptionHandler turns uploaded audio into text, with optional
// translation and a spoken rendition of the result.
type TranscriptionHandler struct {
	transcriber speech.Transcriber
	runner      *pipeline.Runner
	uploadDir   string
	configured  bool
}

func NewTranscriptionHandler(t speech.Transcriber, runner *pipeline.Runner, uploadDir string, configured bool) *TranscriptionHandler {
	return &TranscriptionHandler{transcriber: t, runner: runner, uploadDir: uploadDir, configured: configured}
}

type transcriptionData struct {
	Transcription    string `json:"transcription"`
	Translation      string `json:"translation,omitempty"`
	DetectedLanguage string `json:"detectedLanguage"`
	AudioBase64      string `json:"audioBase64,omitempty"`
	AudioFormat      string `json:"audioFormat,omitempty"`
}

func (h *TranscriptionHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	f, header, err := formFile(r, "audio", maxAudioBytes, audioExts)
	if err != nil {
		writeError(w, err)
		return
	}
	defer f.Close()

	if !h.configured {
		writeError(w, pipeline.Configuration("transcription service is not configured: set OPENAI_API_KEY"))
		return
	}
	outputLanguage := formValue(r, "outputLanguage", "en")

	path, err := pipeline.SaveUpload(h.uploadDir, header.Filename, f)
	if err != nil {
		writeError(w, pipeline.Internal(err))
		return
	}

	var res *pipeline.Result
	err = pipeline.WithTempFile(path, func(path string) error {
		res, err = h.runner.Run(r.Context(), pipeline.RunInput{
			TargetLanguage: outputLanguage,
			Timeout:        mediaTimeout,
			Invoke: func(ctx context.Context) (string, error) {
				tr, err := h.transcriber.Transcribe(ctx, path)
				if err != nil {
					return "", err
				}
				return tr.Text, nil
			},
		})
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}

	data := transcriptionData{
		Transcription:    res.Text,
		Translation:      res.TranslatedText,
		DetectedLanguage: res.DetectedLanguage,
	}
	if res.Audio != nil {
		data.AudioBase64 = base64.StdEncoding.EncodeToString(res.Audio)
		data.AudioFormat = res.AudioFormat
	}
	writeSuccess(w, http.StatusOK, data)
}
