package vectorizer

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/mikey/sms-spam-detector/internal/core"
)

const (
	// TypeTfidf is the artifact type of a TF-IDF vectorizer
	TypeTfidf = "tfidf"
	// TypeCount is the artifact type of a raw term-count vectorizer
	TypeCount = "count"

	sklearnDefaultPattern = `(?u)\b\w\w+\b`
	unicodeDefaultPattern = `[\p{L}\p{M}\p{N}_]{2,}`
)

// Params holds the fitted state of a term vectorizer as stored in an artifact file
type Params struct {
	Type         string         `json:"type" yaml:"type"`
	Vocabulary   map[string]int `json:"vocabulary" yaml:"vocabulary"`
	IDF          []float64      `json:"idf,omitempty" yaml:"idf,omitempty"`
	Norm         string         `json:"norm,omitempty" yaml:"norm,omitempty"`
	SublinearTF  bool           `json:"sublinear_tf,omitempty" yaml:"sublinear_tf,omitempty"`
	Binary       bool           `json:"binary,omitempty" yaml:"binary,omitempty"`
	Lowercase    *bool          `json:"lowercase,omitempty" yaml:"lowercase,omitempty"`
	NgramRange   []int          `json:"ngram_range,omitempty" yaml:"ngram_range,omitempty"`
	TokenPattern string         `json:"token_pattern,omitempty" yaml:"token_pattern,omitempty"`
	StopWords    []string       `json:"stop_words,omitempty" yaml:"stop_words,omitempty"`
}

// TermVectorizer maps documents onto a fixed vocabulary, optionally weighting by IDF
type TermVectorizer struct {
	vocabulary map[string]int
	idf        []float64
	norm       string
	sublinear  bool
	binary     bool
	lowercase  bool
	minN       int
	maxN       int
	pattern    *regexp.Regexp
	stopWords  map[string]struct{}
}

// New validates params and builds a vectorizer
func New(p Params) (*TermVectorizer, error) {
	if p.Type != TypeTfidf && p.Type != TypeCount {
		return nil, fmt.Errorf("unsupported vectorizer type: %q", p.Type)
	}
	if len(p.Vocabulary) == 0 {
		return nil, errors.New("vocabulary is empty")
	}

	dim := len(p.Vocabulary)
	seen := make([]bool, dim)
	for term, idx := range p.Vocabulary {
		if idx < 0 || idx >= dim {
			return nil, fmt.Errorf("vocabulary index %d for %q is outside [0,%d)", idx, term, dim)
		}
		if seen[idx] {
			return nil, fmt.Errorf("vocabulary index %d is used twice", idx)
		}
		seen[idx] = true
	}

	v := &TermVectorizer{
		vocabulary: p.Vocabulary,
		sublinear:  p.SublinearTF,
		binary:     p.Binary,
		lowercase:  p.Lowercase == nil || *p.Lowercase,
		minN:       1,
		maxN:       1,
	}

	if p.Type == TypeTfidf {
		if len(p.IDF) != dim {
			return nil, fmt.Errorf("idf has %d weights for a vocabulary of %d terms", len(p.IDF), dim)
		}
		v.idf = p.IDF
		switch p.Norm {
		case "", "l2":
			v.norm = "l2"
		case "l1", "none":
			v.norm = p.Norm
		default:
			return nil, fmt.Errorf("unsupported norm: %q", p.Norm)
		}
	} else {
		v.norm = "none"
	}

	if len(p.NgramRange) > 0 {
		if len(p.NgramRange) != 2 || p.NgramRange[0] < 1 || p.NgramRange[1] < p.NgramRange[0] {
			return nil, fmt.Errorf("invalid ngram_range: %v", p.NgramRange)
		}
		v.minN, v.maxN = p.NgramRange[0], p.NgramRange[1]
	}

	pattern := p.TokenPattern
	if pattern == "" || pattern == sklearnDefaultPattern {
		pattern = unicodeDefaultPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid token_pattern: %w", err)
	}
	v.pattern = re

	if len(p.StopWords) > 0 {
		v.stopWords = make(map[string]struct{}, len(p.StopWords))
		for _, w := range p.StopWords {
			v.stopWords[w] = struct{}{}
		}
	}

	return v, nil
}

// Dim returns the vocabulary size
func (v *TermVectorizer) Dim() int {
	return len(v.vocabulary)
}

// Transform converts each document into a sparse vector
func (v *TermVectorizer) Transform(docs []string) ([]core.FeatureVector, error) {
	if v == nil || len(v.vocabulary) == 0 {
		return nil, errors.New("vectorizer has no vocabulary")
	}

	out := make([]core.FeatureVector, len(docs))
	for i, doc := range docs {
		out[i] = v.transformOne(doc)
	}
	return out, nil
}

func (v *TermVectorizer) transformOne(doc string) core.FeatureVector {
	counts := make(map[int]float64)
	for _, term := range v.analyze(doc) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	for i, idx := range indices {
		tf := counts[idx]
		switch {
		case v.binary:
			tf = 1
		case v.sublinear:
			tf = 1 + math.Log(tf)
		}
		if v.idf != nil {
			tf *= v.idf[idx]
		}
		values[i] = tf
	}

	normalize(values, v.norm)
	return core.FeatureVector{Dim: len(v.vocabulary), Indices: indices, Values: values}
}

// analyze extracts word n-grams in document order
func (v *TermVectorizer) analyze(doc string) []string {
	if v.lowercase {
		doc = strings.ToLower(doc)
	}

	var words []string
	for _, w := range v.pattern.FindAllString(doc, -1) {
		if _, stop := v.stopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}

	if v.minN == 1 && v.maxN == 1 {
		return words
	}

	var terms []string
	for n := v.minN; n <= v.maxN; n++ {
		for i := 0; i+n <= len(words); i++ {
			terms = append(terms, strings.Join(words[i:i+n], " "))
		}
	}
	return terms
}

func normalize(values []float64, norm string) {
	var total float64
	switch norm {
	case "l2":
		for _, x := range values {
			total += x * x
		}
		total = math.Sqrt(total)
	case "l1":
		for _, x := range values {
			total += math.Abs(x)
		}
	default:
		return
	}
	if total == 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}
