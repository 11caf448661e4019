package textproc

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/tokenize"
)

// Tokenizer splits text into word-like units
type Tokenizer interface {
	Tokenize(text string) ([]string, error)
}

// TreebankTokenizer splits text into sentences with Punkt, then sentences into
// words with the Penn Treebank rules.
type TreebankTokenizer struct {
	sentences *tokenize.PunktSentenceTokenizer
	words     *tokenize.TreebankWordTokenizer
}

// NewTreebankTokenizer creates a new TreebankTokenizer
func NewTreebankTokenizer() *TreebankTokenizer {
	return &TreebankTokenizer{
		sentences: tokenize.NewPunktSentenceTokenizer(),
		words:     tokenize.NewTreebankWordTokenizer(),
	}
}

// Tokenize returns the words of text. A panic inside the tokenizer is reported as an error.
func (t *TreebankTokenizer) Tokenize(text string) (tokens []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			tokens, err = nil, fmt.Errorf("tokenizer panicked: %v", r)
		}
	}()

	for _, sentence := range t.sentences.Tokenize(text) {
		tokens = append(tokens, t.words.Tokenize(sentence)...)
	}
	return tokens, nil
}

// WhitespaceTokenizer splits on runs of whitespace
type WhitespaceTokenizer struct{}

// Tokenize returns the whitespace-separated fields of text
func (WhitespaceTokenizer) Tokenize(text string) ([]string, error) {
	return strings.Fields(text), nil
}
