package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SpamDetectorService is the core service for spam detection
type SpamDetectorService struct {
	artifacts    *Artifacts
	normalizer   Normalizer
	cache        VerdictCache
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
}

// NewSpamDetectorService creates a new spam detector service
func NewSpamDetectorService(
	artifacts *Artifacts,
	normalizer Normalizer,
	cache VerdictCache,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
) *SpamDetectorService {
	return &SpamDetectorService{
		artifacts:    artifacts,
		normalizer:   normalizer,
		cache:        cache,
		logger:       logger,
		cacheEnabled: cacheEnabled && cache != nil,
		cacheTTL:     cacheTTL,
	}
}

// ModelName returns the kind of the loaded classifier, or "" when none is loaded
func (s *SpamDetectorService) ModelName() string {
	if s.artifacts == nil || s.artifacts.Classifier == nil {
		return ""
	}
	return s.artifacts.Classifier.Name()
}

// Detect normalizes raw text and classifies it
func (s *SpamDetectorService) Detect(ctx context.Context, raw string) (*Verdict, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, NewError(KindEmptyInput, nil)
	}

	normalized := s.normalizer.Normalize(raw)
	if normalized == "" {
		s.logger.Debug("Normalization produced no tokens", zap.Int("input_length", len(raw)))
		return nil, NewError(KindNormalizationDegenerate, nil)
	}

	return s.Classify(ctx, normalized)
}

// DetectMessage classifies the content of a message
func (s *SpamDetectorService) DetectMessage(ctx context.Context, msg *Message) (*Verdict, error) {
	return s.Detect(ctx, msg.Content())
}

// Classify classifies already normalized text, consulting the cache if enabled
func (s *SpamDetectorService) Classify(ctx context.Context, normalized string) (*Verdict, error) {
	key := s.cacheKey(normalized)

	if s.cacheEnabled {
		entry, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			s.logger.Debug("Cache hit for message", zap.String("key", key))
			return &Verdict{
				Label:          entry.Label,
				Confidence:     entry.Confidence,
				HasConfidence:  entry.HasConfidence,
				NormalizedText: normalized,
				ModelUsed:      "cache",
				AnalyzedAt:     time.Now(),
				Cached:         true,
			}, nil
		case !errors.Is(err, ErrCacheMiss):
			s.logger.Warn("Failed to read cache", zap.Error(err))
		}
	}

	verdict, err := Classify(s.artifacts, normalized)
	if err != nil {
		s.logger.Error("Classification failed",
			zap.String("kind", string(KindOf(err))),
			zap.Error(err))
		return nil, err
	}

	if s.cacheEnabled {
		now := time.Now()
		entry := &CacheEntry{
			Key:           key,
			Label:         verdict.Label,
			Confidence:    verdict.Confidence,
			HasConfidence: verdict.HasConfidence,
			CreatedAt:     now,
			ExpiresAt:     now.Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	s.logger.Info("Classified message",
		zap.Bool("is_spam", verdict.IsSpam()),
		zap.Float64("confidence", verdict.Confidence),
		zap.String("model", verdict.ModelUsed))

	return verdict, nil
}

// cacheKey ties a cached verdict to both the artifacts and the normalized text
func (s *SpamDetectorService) cacheKey(normalized string) string {
	h := sha256.New()
	if s.artifacts != nil {
		h.Write([]byte(s.artifacts.Fingerprint))
	}
	h.Write([]byte{0})
	h.Write([]byte(normalized))
	return hex.EncodeToString(h.Sum(nil))
}
