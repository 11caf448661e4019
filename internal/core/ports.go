package core

import (
	"context"
)

// Normalizer maps raw message text to a whitespace-joined string of stemmed tokens
type Normalizer interface {
	Normalize(text string) string
}

// Vectorizer transforms normalized documents into feature vectors
type Vectorizer interface {
	// Transform returns one vector per document
	Transform(docs []string) ([]FeatureVector, error)

	// Dim returns the size of the feature space
	Dim() int
}

// Classifier predicts class values for feature vectors
type Classifier interface {
	// Predict returns one class value per vector
	Predict(x []FeatureVector) ([]int, error)

	// Classes returns the class values in the column order used by probabilities
	Classes() []int

	// Name identifies the model kind
	Name() string
}

// ProbabilityEstimator is implemented by classifiers that can estimate class probabilities
type ProbabilityEstimator interface {
	// PredictProba returns one row per vector, columns ordered as Classes()
	PredictProba(x []FeatureVector) ([][]float64, error)
}

// FittedChecker is implemented by classifiers that can report whether they were trained
type FittedChecker interface {
	IsFitted() bool
}

// VerdictCache defines the interface for caching verdicts
type VerdictCache interface {
	// Get retrieves a cached entry, returning ErrCacheMiss when absent or expired
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
