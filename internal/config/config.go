package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Completion CompletionConfig
	Speech     SpeechConfig
	Translate  TranslateConfig
	Language   LanguageConfig
	Uploads    UploadConfig
	CORS       CORSConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	APIKey       string
	APIKeyHeader string
	JWTSecret    string
}

type CompletionConfig struct {
	OpenAIKey        string
	AnthropicKey     string
	DefaultProvider  string
	FallbackProvider string
	ChatModel        string
	VisionModel      string
	MaxRetries       int
	RetryBaseDelay   time.Duration
}

type SpeechConfig struct {
	OpenAIKey string
	STTModel  string
	TTSModel  string
	TTSVoice  string
}

type TranslateConfig struct {
	BaseURL string
	Timeout time.Duration
}

type LanguageConfig struct {
	Primary string // fallback when detection is inconclusive
}

type UploadConfig struct {
	Dir         string
	SweepMaxAge time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxRetries, err := getEnvInt("COMPLETION_MAX_RETRIES", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid COMPLETION_MAX_RETRIES: %w", err)
	}

	retryBase, err := getEnvDuration("COMPLETION_RETRY_BASE_DELAY", 500*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("invalid COMPLETION_RETRY_BASE_DELAY: %w", err)
	}

	sweepAge, err := getEnvDuration("UPLOAD_SWEEP_MAX_AGE", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_SWEEP_MAX_AGE: %w", err)
	}

	translateTimeout, err := getEnvDuration("TRANSLATE_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid TRANSLATE_TIMEOUT: %w", err)
	}

	openAIKey := getEnv("OPENAI_API_KEY", "")

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			APIKey:       getEnv("MASTER_API_KEY", ""),
			APIKeyHeader: getEnv("API_KEY_HEADER", "X-API-Key"),
			JWTSecret:    getEnv("JWT_SECRET", ""),
		},
		Completion: CompletionConfig{
			OpenAIKey:        openAIKey,
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			DefaultProvider:  getEnv("COMPLETION_DEFAULT_PROVIDER", "openai"),
			FallbackProvider: getEnv("COMPLETION_FALLBACK_PROVIDER", ""),
			ChatModel:        getEnv("COMPLETION_CHAT_MODEL", "gpt-4o-mini"),
			VisionModel:      getEnv("COMPLETION_VISION_MODEL", "gpt-4o"),
			MaxRetries:       maxRetries,
			RetryBaseDelay:   retryBase,
		},
		Speech: SpeechConfig{
			OpenAIKey: openAIKey,
			STTModel:  getEnv("STT_MODEL", "whisper-1"),
			TTSModel:  getEnv("TTS_MODEL", "tts-1"),
			TTSVoice:  getEnv("TTS_VOICE", "alloy"),
		},
		Translate: TranslateConfig{
			BaseURL: getEnv("TRANSLATE_BASE_URL", "https://translate.googleapis.com"),
			Timeout: translateTimeout,
		},
		Language: LanguageConfig{
			Primary: getEnv("PRIMARY_LANGUAGE", "en"),
		},
		Uploads: UploadConfig{
			Dir:         getEnv("UPLOAD_DIR", os.TempDir()),
			SweepMaxAge: sweepAge,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
