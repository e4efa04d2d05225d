package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"github.com/carevox/carevox/internal/completion"
	"github.com/carevox/carevox/internal/document"
	"github.com/carevox/carevox/internal/pipeline"
)

const (
	documentSystemPrompt = "You answer questions strictly from the provided document text. " +
		"If the document does not contain the answer, say so."
	csvSystemPrompt = "You answer questions strictly from the provided tabular data. " +
		"If the data does not contain the answer, say so."

	// Rows of a CSV rendered into the completion prompt.
	csvPromptRowLimit = 200
)

// DocumentHandler serves document and spreadsheet question-answering. Both
// endpoints save the upload, run extraction and the response pipeline inside
// the temp-file scope, and always remove the upload afterwards.
type DocumentHandler struct {
	gateway   completion.Gateway
	runner    *pipeline.Runner
	model     string
	uploadDir string
}

func NewDocumentHandler(gw completion.Gateway, runner *pipeline.Runner, model, uploadDir string) *DocumentHandler {
	return &DocumentHandler{gateway: gw, runner: runner, model: model, uploadDir: uploadDir}
}

type answerData struct {
	Answer      string `json:"answer"`
	AudioBase64 string `json:"audioBase64,omitempty"`
	AudioFormat string `json:"audioFormat,omitempty"`
}

// QueryPDF answers a question about an uploaded PDF.
func (h *DocumentHandler) QueryPDF(w http.ResponseWriter, r *http.Request) {
	f, header, err := formFile(r, "file", maxDocumentBytes, []string{".pdf"})
	if err != nil {
		writeError(w, err)
		return
	}
	defer f.Close()

	question := formValue(r, "question", "")
	if question == "" {
		writeError(w, pipeline.Validation("question is required"))
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

		info, err := saved.Stat()
		if err != nil {
			return pipeline.Internal(err)
		}

		text, err := document.ExtractPDF(saved, info.Size())
		if err != nil {
			return pipeline.Validation("could not read PDF: " + err.Error())
		}
		if text == "" {
			return pipeline.Validation("no text could be extracted from the PDF")
		}

		res, err = h.answer(r.Context(), documentSystemPrompt, text, question, outputLanguage)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, buildAnswerData(res))
}

// QueryCSV answers a question about an uploaded CSV file.
func (h *DocumentHandler) QueryCSV(w http.ResponseWriter, r *http.Request) {
	f, header, err := formFile(r, "file", maxDocumentBytes, []string{".csv"})
	if err != nil {
		writeError(w, err)
		return
	}
	defer f.Close()

	question := formValue(r, "question", "")
	if question == "" {
		writeError(w, pipeline.Validation("question is required"))
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

		table, err := document.RenderCSV(saved, csvPromptRowLimit)
		if err != nil {
			return pipeline.Validation("could not read CSV: " + err.Error())
		}

		res, err = h.answer(r.Context(), csvSystemPrompt, table, question, outputLanguage)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, buildAnswerData(res))
}

func (h *DocumentHandler) answer(ctx context.Context, system, content, question, outputLanguage string) (*pipeline.Result, error) {
	return h.runner.Run(ctx, pipeline.RunInput{
		TargetLanguage: outputLanguage,
		Timeout:        textTimeout,
		Invoke: func(ctx context.Context) (string, error) {
			resp, err := h.gateway.Complete(ctx, completion.Request{
				Model: h.model,
				Messages: []completion.Message{
					{Role: "system", Content: system},
					{Role: "user", Content: fmt.Sprintf("%s\n\nQuestion: %s", content, question)},
				},
			})
			if err != nil {
				return "", err
			}
			return resp.Content, nil
		},
	})
}

func buildAnswerData(res *pipeline.Result) answerData {
	data := answerData{Answer: res.FinalText()}
	if res.Audio != nil {
		data.AudioBase64 = base64.StdEncoding.EncodeToString(res.Audio)
		data.AudioFormat = res.AudioFormat
	}
	return data
}
