package handlers

import (
	"net/http"

	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	redis *redis.Client
}

func NewHealthHandler(rdb *redis.Client) *HealthHandler {
	return &HealthHandler{redis: rdb}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Info summarizes the configured capabilities and security posture.
func (h *HealthHandler) Info(cap InfoCapabilities) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redisStatus := "disabled"
		if h.redis != nil {
			redisStatus = "ok"
			if err := h.redis.Ping(r.Context()).Err(); err != nil {
				redisStatus = "unreachable"
			}
		}

		writeSuccess(w, http.StatusOK, map[string]interface{}{
			"services": map[string]bool{
				"chat":           cap.Completion,
				"documents":      cap.Completion,
				"organ_analyzer": cap.Completion,
				"transcription":  cap.Speech,
				"text_to_speech": cap.Speech,
				"translation":    true,
			},
			"security": map[string]interface{}{
				"api_key_required": cap.AuthEnabled,
			},
			"redis": redisStatus,
		})
	}
}

type InfoCapabilities struct {
	Completion  bool
	Speech      bool
	AuthEnabled bool
}
