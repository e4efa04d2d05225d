package language

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Translator maps (text, source, target) to translated text. Implementations
// may fail; the pipeline stage degrades to the original text on failure.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// GoogleTranslator calls the public Google translate endpoint the way the
// deep-translator clients do: one GET per text, segments joined in order.
type GoogleTranslator struct {
	baseURL    string
	httpClient *http.Client
}

func NewGoogleTranslator(baseURL string, timeout time.Duration) *GoogleTranslator {
	if baseURL == "" {
		baseURL = "https://translate.googleapis.com"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GoogleTranslator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (g *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if source == "" {
		source = "auto"
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	endpoint := g.baseURL + "/translate_a/single?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read translate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate failed (status %d): %s", resp.StatusCode, string(body))
	}

	return parseTranslateBody(body)
}

// parseTranslateBody extracts the translated segments from the endpoint's
// nested-array payload: [[["seg1","orig1",...],["seg2",...]],...].
func parseTranslateBody(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("parse translate response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translate response")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("parse translate segments: %w", err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var piece string
		if err := json.Unmarshal(seg[0], &piece); err != nil {
			continue
		}
		sb.WriteString(piece)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no translated segments in response")
	}
	return sb.String(), nil
}
