package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/carevox/carevox/internal/config"
)

// Middleware gates API routes behind the configured key. A request passes
// with either the API key header or a valid HS256 bearer token. When neither
// a key nor a JWT secret is configured, auth is disabled.
type Middleware struct {
	apiKey    string
	keyHeader string
	jwtSecret []byte
}

func NewMiddleware(cfg config.AuthConfig) *Middleware {
	header := cfg.APIKeyHeader
	if header == "" {
		header = "X-API-Key"
	}
	return &Middleware{
		apiKey:    cfg.APIKey,
		keyHeader: header,
		jwtSecret: []byte(cfg.JWTSecret),
	}
}

func (m *Middleware) Enabled() bool {
	return m.apiKey != "" || len(m.jwtSecret) > 0
}

func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() || m.keyMatches(r) || m.tokenValid(r) {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   map[string]string{"message": "invalid or missing API key"},
		})
	})
}

func (m *Middleware) keyMatches(r *http.Request) bool {
	if m.apiKey == "" {
		return false
	}
	provided := r.Header.Get(m.keyHeader)
	return provided != "" &&
		subtle.ConstantTimeCompare([]byte(provided), []byte(m.apiKey)) == 1
}

func (m *Middleware) tokenValid(r *http.Request) bool {
	if len(m.jwtSecret) == 0 {
		return false
	}
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return false
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.jwtSecret, nil
	})
	return err == nil && token.Valid
}
