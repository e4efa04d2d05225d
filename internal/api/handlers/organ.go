package handlers

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"os"

	"github.com/carevox/carevox/internal/completion"
	"github.com/carevox/carevox/internal/pipeline"
	"github.com/carevox/carevox/internal/vision"
)

// OrganHandler runs organ-scan analysis through the vision worker.
type OrganHandler struct {
	gateway   completion.Gateway
	worker    vision.Worker
	runner    *pipeline.Runner
	uploadDir string
}

func NewOrganHandler(gw completion.Gateway, worker vision.Worker, runner *pipeline.Runner, uploadDir string) *OrganHandler {
	return &OrganHandler{gateway: gw, worker: worker, runner: runner, uploadDir: uploadDir}
}

type organData struct {
	Diagnosis       string `json:"diagnosis"`
	Analysis        string `json:"analysis"`
	Recommendations string `json:"recommendations"`
	AudioBase64     string `json:"audioBase64,omitempty"`
	AudioFormat     string `json:"audioFormat,omitempty"`
}

func (h *OrganHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	f, header, err := formFile(r, "image", maxImageBytes, imageExts)
	if err != nil {
		writeError(w, err)
		return
	}
	defer f.Close()

	organ := formValue(r, "organ", "")
	if organ == "" {
		writeError(w, pipeline.Validation("organ is required"))
		return
	}
	if !h.gateway.Configured() {
		writeError(w, pipeline.Configuration("completion service is not configured: set OPENAI_API_KEY"))
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
		saved, err := os.Open(path)
		if err != nil {
			return pipeline.Internal(err)
		}
		defer saved.Close()

		raw, err := io.ReadAll(saved)
		if err != nil {
			return pipeline.Internal(err)
		}

		img := vision.Image{
			Base64:    base64.StdEncoding.EncodeToString(raw),
			MediaType: imageMediaType(header.Filename),
		}

		res, err = h.runner.Run(r.Context(), pipeline.RunInput{
			TargetLanguage: outputLanguage,
			Timeout:        mediaTimeout,
			Invoke: func(ctx context.Context) (string, error) {
				return h.worker.Analyze(ctx, img, organ)
			},
		})
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}

	report := vision.ParseReport(res.FinalText())
	data := organData{
		Diagnosis:       report.Diagnosis,
		Analysis:        report.Analysis,
		Recommendations: report.Recommendations,
	}
	if res.Audio != nil {
		data.AudioBase64 = base64.StdEncoding.EncodeToString(res.Audio)
		data.AudioFormat = res.AudioFormat
	}
	writeSuccess(w, http.StatusOK, data)
}
