package core

import (
	"time"
)

// Label is the binary class predicted for a message
type Label int

const (
	// LabelNotSpam is the class value for legitimate messages
	LabelNotSpam Label = 0
	// LabelSpam is the class value for spam messages
	LabelSpam Label = 1
)

// String returns the display name of the label
func (l Label) String() string {
	if l == LabelSpam {
		return "Spam"
	}
	return "Not Spam"
}

// Message represents a message submitted for classification
type Message struct {
	Text    string
	Subject string
	Sender  string
	Source  string
}

// Content returns the text that goes through the pipeline
func (m *Message) Content() string {
	if m.Subject == "" {
		return m.Text
	}
	return m.Subject + "\n" + m.Text
}

// FeatureVector is a sparse numeric vector produced by a vectorizer.
// Indices are strictly increasing and every index is below Dim.
type FeatureVector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// Dot returns the dot product of the vector with a dense weight row
func (v FeatureVector) Dot(weights []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		sum += v.Values[i] * weights[idx]
	}
	return sum
}

// Verdict represents the result of classifying one message
type Verdict struct {
	Label          Label
	Confidence     float64
	HasConfidence  bool
	NormalizedText string
	ModelUsed      string
	AnalyzedAt     time.Time
	Cached         bool
}

// IsSpam reports whether the verdict label is spam
func (v *Verdict) IsSpam() bool {
	return v.Label == LabelSpam
}

// Artifacts holds the externally trained objects loaded once at startup.
// They are never written after load and may be shared across requests.
type Artifacts struct {
	Vectorizer  Vectorizer
	Classifier  Classifier
	Fingerprint string
}

// CacheEntry is a stored verdict keyed by artifact fingerprint and normalized text
type CacheEntry struct {
	Key           string
	Label         Label
	Confidence    float64
	HasConfidence bool
	CreatedAt     time.Time
	ExpiresAt     time.Time
}
