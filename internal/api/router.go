package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/carevox/carevox/internal/api/handlers"
	"github.com/carevox/carevox/internal/api/middleware"
	"github.com/carevox/carevox/internal/auth"
	"github.com/carevox/carevox/internal/completion"
	"github.com/carevox/carevox/internal/config"
	"github.com/carevox/carevox/internal/history"
	"github.com/carevox/carevox/internal/language"
	"github.com/carevox/carevox/internal/pipeline"
	"github.com/carevox/carevox/internal/speech"
	"github.com/carevox/carevox/internal/vision"
)

type Router struct {
	mux   *chi.Mux
	redis *redis.Client // nil when redis is unavailable
	cfg   *config.Config
	authn *auth.Middleware
	gw    completion.Gateway
}

// NewRouter wires the service graph. rdb may be nil; conversation history
// then falls back to the in-process store.
func NewRouter(rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		redis: rdb,
		cfg:   cfg,
		authn: auth.NewMiddleware(cfg.Auth),
		gw:    completion.NewGateway(cfg.Completion),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.CORS.AllowedOrigins))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	speechConfigured := rt.cfg.Speech.OpenAIKey != ""

	// Pipeline stages shared by every feature endpoint.
	detector := language.NewHeuristicDetector(rt.cfg.Language.Primary)
	translator := language.NewGoogleTranslator(rt.cfg.Translate.BaseURL, rt.cfg.Translate.Timeout)
	langStage := language.NewStage(detector, translator)

	synth := speech.NewOpenAISynthesizer(rt.cfg.Speech.OpenAIKey, rt.cfg.Speech.TTSModel, rt.cfg.Speech.TTSVoice)
	speechStage := speech.NewStage(synth, rt.cfg.Language.Primary)

	policy := pipeline.DefaultRetryPolicy()
	policy.MaxRetries = rt.cfg.Completion.MaxRetries
	policy.BaseDelay = rt.cfg.Completion.RetryBaseDelay
	runner := pipeline.NewRunner(langStage, speechStage, policy)

	var store history.Store
	if rt.redis != nil {
		store = history.NewRedisStore(rt.redis, history.DefaultCap, 0)
	} else {
		store = history.NewMemoryStore(history.DefaultCap)
	}

	transcriber := speech.NewWhisperTranscriber(rt.cfg.Speech.OpenAIKey, rt.cfg.Speech.STTModel)
	worker := vision.NewCompletionWorker(rt.gw, rt.cfg.Completion.VisionModel)

	// Health endpoints, no auth.
	health := handlers.NewHealthHandler(rt.redis)
	r.Get("/health", health.Health)
	r.Get("/info", health.Info(handlers.InfoCapabilities{
		Completion:  rt.gw.Configured(),
		Speech:      speechConfigured,
		AuthEnabled: rt.authn.Enabled(),
	}))

	chatH := handlers.NewChatHandler(rt.gw, runner, store, rt.cfg.Completion.ChatModel)
	docH := handlers.NewDocumentHandler(rt.gw, runner, rt.cfg.Completion.ChatModel, rt.cfg.Uploads.Dir)
	organH := handlers.NewOrganHandler(rt.gw, worker, runner, rt.cfg.Uploads.Dir)
	transcribeH := handlers.NewTranscriptionHandler(transcriber, runner, rt.cfg.Uploads.Dir, speechConfigured)
	translateH := handlers.NewTranslationHandler(detector, translator, speechStage, speechConfigured)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authn.Authenticate)

		r.Route("/chat", func(r chi.Router) {
			r.Post("/", chatH.Chat)
			r.Delete("/sessions/{id}", chatH.ClearSession)
		})

		r.Post("/document/query", docH.QueryPDF)
		r.Post("/csv/query", docH.QueryCSV)
		r.Post("/organ-analyzer/analyze", organH.Analyze)
		r.Post("/transcription", transcribeH.Transcribe)

		r.Route("/translation", func(r chi.Router) {
			r.Post("/text-to-speech", translateH.TextToSpeech)
		})
		r.Post("/translate", translateH.Translate)
	})

	return r
}
