package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/carevox/carevox/internal/pipeline"
)

// Upstream call budgets: text-only requests resolve quickly, media uploads
// (audio, images) get a longer leash.
const (
	textTimeout  = 30 * time.Second
	mediaTimeout = 120 * time.Second
)

const maxMultipartMemory = 32 << 20

// Accepted upload constraints, enforced before the pipeline runs.
var (
	audioExts = []string{".mp3", ".mp4", ".mpeg", ".mpga", ".m4a", ".wav", ".webm", ".ogg", ".flac"}
	imageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}

	maxAudioBytes    int64 = 25 << 20
	maxImageBytes    int64 = 10 << 20
	maxDocumentBytes int64 = 20 << 20
)

// formFile fetches and validates one uploaded file. All failures are
// validation errors; nothing has touched an upstream yet.
func formFile(r *http.Request, field string, maxBytes int64, allowedExts []string) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, nil, pipeline.Validation("invalid multipart form data")
	}

	f, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, pipeline.Validation(fmt.Sprintf("missing %q file field", field))
	}

	if header.Size > maxBytes {
		f.Close()
		return nil, nil, pipeline.Validation(fmt.Sprintf(
			"file too large: %d bytes (max %d)", header.Size, maxBytes))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !extAllowed(ext, allowedExts) {
		f.Close()
		return nil, nil, pipeline.Validation(fmt.Sprintf(
			"unsupported file type %q (allowed: %s)", ext, strings.Join(allowedExts, ", ")))
	}

	return f, header, nil
}

func extAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

func imageMediaType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

func formValue(r *http.Request, key, fallback string) string {
	if v := strings.TrimSpace(r.FormValue(key)); v != "" {
		return v
	}
	return fallback
}
