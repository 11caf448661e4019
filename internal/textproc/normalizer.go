package textproc

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	urlPattern   = regexp.MustCompile(`http\S+|www\S+|https\S+`)
	emailPattern = regexp.MustCompile(`\S+@\S+`)
)

// Normalizer turns raw message text into a space-joined string of stemmed tokens.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	tokenizer Tokenizer
	fallback  Tokenizer
	logger    *zap.Logger
}

// NewNormalizer creates a new Normalizer using the given tokenizer
func NewNormalizer(tokenizer Tokenizer, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{
		tokenizer: tokenizer,
		fallback:  WhitespaceTokenizer{},
		logger:    logger,
	}
}

// NormalizeValue normalizes v if it is a string and returns "" for anything else
func (n *Normalizer) NormalizeValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return n.Normalize(s)
}

// Normalize strips URLs and emails, lowercases, tokenizes, filters and stems text
func (n *Normalizer) Normalize(text string) string {
	text = SanitizeUTF8(text)
	if strings.TrimSpace(text) == "" {
		return ""
	}

	text = urlPattern.ReplaceAllString(text, "")
	text = emailPattern.ReplaceAllString(text, "")
	text = cases.Lower(language.Und).String(text)

	tokens := n.tokenize(text)

	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !isAlnum(tok) {
			continue
		}
		if IsStopword(tok) || isPunctuation(tok) {
			continue
		}
		kept = append(kept, Stem(tok))
	}

	return strings.Join(kept, " ")
}

func (n *Normalizer) tokenize(text string) []string {
	if n.tokenizer != nil {
		tokens, err := n.tokenizer.Tokenize(text)
		if err == nil {
			return tokens
		}
		n.logger.Warn("Tokenizer failed, falling back to whitespace split", zap.Error(err))
	}
	tokens, _ := n.fallback.Tokenize(text)
	return tokens
}

// isAlnum reports whether s is non-empty and made only of letters and digits
func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

func isPunctuation(s string) bool {
	return utf8.RuneCountInString(s) == 1 && strings.Contains(asciiPunctuation, s)
}
