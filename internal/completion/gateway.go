package completion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carevox/carevox/internal/config"
	"github.com/carevox/carevox/internal/pipeline"
)

// Gateway routes completion requests to a configured provider, with an
// optional fallback when the primary fails outright. Retry cadence is owned
// by the pipeline executor, not the gateway.
type Gateway interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Configured() bool
}

type gateway struct {
	providers        map[string]Provider
	defaultProvider  string
	fallbackProvider string
}

func NewGateway(cfg config.CompletionConfig) Gateway {
	g := &gateway{
		providers:        make(map[string]Provider),
		defaultProvider:  cfg.DefaultProvider,
		fallbackProvider: cfg.FallbackProvider,
	}

	if cfg.OpenAIKey != "" {
		g.providers["openai"] = NewOpenAIProvider(cfg.OpenAIKey)
	}
	if cfg.AnthropicKey != "" {
		g.providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey)
	}

	return g
}

func (g *gateway) Configured() bool { return len(g.providers) > 0 }

func (g *gateway) provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	return p, nil
}

func (g *gateway) Complete(ctx context.Context, req Request) (*Response, error) {
	if !g.Configured() {
		return nil, pipeline.Configuration("completion service is not configured: set OPENAI_API_KEY or ANTHROPIC_API_KEY")
	}

	providerName := req.Provider
	if providerName == "" {
		providerName = g.defaultProvider
	}

	p, err := g.provider(providerName)
	if err != nil {
		return nil, pipeline.Configuration(err.Error())
	}

	resp, err := p.Complete(ctx, req)
	if err != nil && g.fallbackProvider != "" && g.fallbackProvider != providerName {
		if fb, fbErr := g.provider(g.fallbackProvider); fbErr == nil {
			slog.Warn("primary completion provider failed, trying fallback",
				"primary", providerName, "fallback", g.fallbackProvider, "error", err)
			return fb.Complete(ctx, req)
		}
	}
	return resp, err
}
