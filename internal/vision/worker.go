package vision

import (
	"context"
	"fmt"
	"strings"

	"github.com/carevox/carevox/internal/completion"
)

// Image is an uploaded scan handed to the analysis worker.
type Image struct {
	Base64    string
	MediaType string
}

// Report is a structured organ-scan analysis.
type Report struct {
	Diagnosis       string `json:"diagnosis"`
	Analysis        string `json:"analysis"`
	Recommendations string `json:"recommendations"`
}

// Worker analyzes an organ scan and returns the raw report text. The
// orchestration pipeline stays agnostic to how the analysis is produced.
type Worker interface {
	Analyze(ctx context.Context, img Image, organ string) (string, error)
}

const analysisSystemPrompt = "You are a medical imaging assistant. Review the provided scan " +
	"and respond with three labeled sections: Diagnosis, Analysis, Recommendations. " +
	"Be factual and note uncertainty; this is decision support, not a medical diagnosis."

// CompletionWorker runs the analysis through a vision-capable completion
// model behind the gateway.
type CompletionWorker struct {
	gateway completion.Gateway
	model   string
}

func NewCompletionWorker(gw completion.Gateway, model string) *CompletionWorker {
	if model == "" {
		model = "gpt-4o"
	}
	return &CompletionWorker{gateway: gw, model: model}
}

func (w *CompletionWorker) Analyze(ctx context.Context, img Image, organ string) (string, error) {
	resp, err := w.gateway.Complete(ctx, completion.Request{
		Model: w.model,
		Messages: []completion.Message{
			{Role: "system", Content: analysisSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Analyze this %s scan.", organ)},
		},
		Images: []completion.Image{{Base64: img.Base64, MediaType: img.MediaType}},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

var sectionNames = []string{"diagnosis", "analysis", "recommendations"}

// ParseReport splits a report into its labeled sections. Text that does not
// follow the section layout (or lost its headings in translation) lands in
// Analysis so nothing is dropped.
func ParseReport(text string) Report {
	sections := map[string]string{}
	current := ""
	var buf strings.Builder

	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(buf.String())
		}
		buf.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		name, rest, ok := matchHeading(line)
		if ok {
			flush()
			current = name
			if rest != "" {
				buf.WriteString(rest)
				buf.WriteString("\n")
			}
			continue
		}
		if current != "" {
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
	flush()

	r := Report{
		Diagnosis:       sections["diagnosis"],
		Analysis:        sections["analysis"],
		Recommendations: sections["recommendations"],
	}
	if r.Diagnosis == "" && r.Analysis == "" && r.Recommendations == "" {
		r.Analysis = strings.TrimSpace(text)
	}
	return r
}

// matchHeading recognizes lines like "Diagnosis:", "## Analysis", or
// "**Recommendations:** ..." and returns the section plus trailing content.
func matchHeading(line string) (string, string, bool) {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimLeft(trimmed, "#* ")
	lower := strings.ToLower(trimmed)

	for _, name := range sectionNames {
		if !strings.HasPrefix(lower, name) {
			continue
		}
		rest := trimmed[len(name):]
		rest = strings.TrimLeft(rest, "*")
		if rest == "" || strings.HasPrefix(rest, ":") {
			content := strings.TrimPrefix(rest, ":")
			content = strings.TrimSpace(strings.TrimLeft(content, "* "))
			return name, content, true
		}
	}
	return "", "", false
}
