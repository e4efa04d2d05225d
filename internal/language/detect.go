package language

import (
	"strings"
	"unicode"
)

// Detector guesses the language of a piece of text. Implementations are
// best-effort; callers must treat the result as a hint.
type Detector interface {
	Detect(text string) string
}

// minDetectLen guards against guessing from a few characters.
const minDetectLen = 12

// HeuristicDetector matches non-Latin scripts by unicode range and Latin
// languages by common-word frequency. Inconclusive input falls back to the
// primary language.
type HeuristicDetector struct {
	Primary string
}

func NewHeuristicDetector(primary string) *HeuristicDetector {
	if primary == "" {
		primary = "en"
	}
	return &HeuristicDetector{Primary: primary}
}

var scriptLanguages = []struct {
	rt   *unicode.RangeTable
	code string
}{
	{unicode.Devanagari, "hi"},
	{unicode.Telugu, "te"},
	{unicode.Malayalam, "ml"},
	{unicode.Tamil, "ta"},
	{unicode.Bengali, "bn"},
	{unicode.Han, "zh-CN"},
	{unicode.Hangul, "ko"},
	{unicode.Hiragana, "ja"},
	{unicode.Katakana, "ja"},
	{unicode.Cyrillic, "ru"},
	{unicode.Arabic, "ar"},
	{unicode.Greek, "el"},
}

var latinStopwords = map[string][]string{
	"es": {"el", "la", "los", "las", "que", "de", "es", "una", "por", "para", "como", "está"},
	"fr": {"le", "la", "les", "des", "est", "une", "dans", "pour", "que", "vous", "avec", "être"},
	"de": {"der", "die", "das", "und", "ist", "nicht", "ein", "eine", "mit", "für", "sind", "ich"},
	"pt": {"o", "os", "um", "uma", "não", "para", "com", "você", "está", "são"},
	"it": {"il", "lo", "gli", "che", "di", "una", "per", "con", "sono", "questo"},
	"pl": {"jest", "nie", "się", "na", "to", "czy", "jak", "dla", "przez"},
	"en": {"the", "is", "are", "and", "of", "to", "in", "that", "it", "you", "for", "with"},
}

func (d *HeuristicDetector) Detect(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minDetectLen {
		return d.Primary
	}

	if code := detectScript(trimmed); code != "" {
		return code
	}

	if code := detectLatin(trimmed); code != "" {
		return code
	}
	return d.Primary
}

// detectScript returns the language of the dominant non-Latin script, if any
// script covers a meaningful share of the letters.
func detectScript(text string) string {
	counts := make(map[string]int)
	letters := 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for _, s := range scriptLanguages {
			if unicode.Is(s.rt, r) {
				counts[s.code]++
				break
			}
		}
	}
	if letters == 0 {
		return ""
	}

	best, bestN := "", 0
	for code, n := range counts {
		if n > bestN {
			best, bestN = code, n
		}
	}
	if bestN*4 >= letters { // at least a quarter of the letters
		return best
	}
	return ""
}

func detectLatin(text string) string {
	words := strings.Fields(strings.ToLower(text))
	if len(words) < 3 {
		return ""
	}

	wordSet := make(map[string]struct{}, len(words))
	for _, w := range words {
		wordSet[strings.Trim(w, ".,;:!?()\"'")] = struct{}{}
	}

	best, bestN := "", 0
	for code, stops := range latinStopwords {
		n := 0
		for _, s := range stops {
			if _, ok := wordSet[s]; ok {
				n++
			}
		}
		if n > bestN {
			best, bestN = code, n
		}
	}
	if bestN >= 2 {
		return best
	}
	return ""
}
