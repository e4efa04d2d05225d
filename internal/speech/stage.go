package speech

import (
	"context"
	"log/slog"
	"strings"
)

// Languages the synthesis voice is known to handle. Anything else is mapped
// to the default before synthesis rather than failing.
var supportedLanguages = map[string]struct{}{
	"en": {}, "es": {}, "fr": {}, "de": {}, "it": {}, "pt": {}, "pl": {},
	"hi": {}, "te": {}, "ml": {}, "ta": {}, "bn": {},
	"zh": {}, "ja": {}, "ko": {}, "ru": {}, "ar": {},
}

// Stage is the speech synthesis step of the response pipeline. Every failure
// is absorbed: the caller gets nil audio and the textual result stands.
type Stage struct {
	synth           Synthesizer
	defaultLanguage string
}

func NewStage(synth Synthesizer, defaultLanguage string) *Stage {
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	return &Stage{synth: synth, defaultLanguage: defaultLanguage}
}

// Synthesize returns audio bytes and their format, or (nil, "") when
// synthesis failed or there was nothing to say.
func (s *Stage) Synthesize(ctx context.Context, text, language string) ([]byte, string) {
	if strings.TrimSpace(text) == "" {
		return nil, ""
	}

	lang := normalizeLanguage(language)
	if _, ok := supportedLanguages[lang]; !ok {
		slog.Debug("unsupported synthesis language, using default",
			"language", language, "default", s.defaultLanguage)
		lang = s.defaultLanguage
	}

	audio, err := s.synth.Synthesize(ctx, text, lang)
	if err != nil {
		slog.Warn("speech synthesis failed, continuing without audio", "error", err)
		return nil, ""
	}
	return audio, s.synth.Format()
}

func normalizeLanguage(code string) string {
	code = strings.ToLower(code)
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return code
}
