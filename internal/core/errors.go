package core

import (
	"errors"
	"fmt"
)

// ErrCacheMiss is returned by caches when an entry is absent or expired
var ErrCacheMiss = errors.New("cache entry not found")

// ErrorKind identifies which stage produced an error
type ErrorKind string

const (
	KindArtifactNotFound        ErrorKind = "ARTIFACT_NOT_FOUND"
	KindInvalidPath             ErrorKind = "INVALID_PATH"
	KindArtifactCorrupt         ErrorKind = "ARTIFACT_CORRUPT"
	KindEmptyInput              ErrorKind = "EMPTY_INPUT"
	KindNormalizationDegenerate ErrorKind = "NORMALIZATION_DEGENERATE"
	KindVectorization           ErrorKind = "VECTORIZATION_FAILED"
	KindNotFitted               ErrorKind = "NOT_FITTED"
	KindPrediction              ErrorKind = "PREDICTION_FAILED"
)

// Error is a pipeline or startup failure carrying its kind.
// Subject names the artifact file for startup failures.
type Error struct {
	Kind    ErrorKind
	Subject string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.UserMessage())
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// UserMessage returns the text shown to the user for this error
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindArtifactNotFound:
		return fmt.Sprintf("Required file '%s' not found. Please ensure the model and vectorizer are present.", e.Subject)
	case KindInvalidPath:
		return "Invalid file path for model/vectorizer."
	case KindArtifactCorrupt:
		return fmt.Sprintf("Failed to load '%s': %v", e.Subject, e.Err)
	case KindEmptyInput:
		return "Please enter a message to classify."
	case KindNormalizationDegenerate:
		return "Message could not be processed. Please enter valid text."
	case KindVectorization:
		return fmt.Sprintf("Vectorization failed: %v", e.Err)
	case KindNotFitted:
		return "Model is not fitted. Please train it before use."
	case KindPrediction:
		return fmt.Sprintf("Prediction failed: %v", e.Err)
	default:
		return "Unexpected error."
	}
}

// IsStartupFailure reports whether the error must halt the application
func (e *Error) IsStartupFailure() bool {
	switch e.Kind {
	case KindArtifactNotFound, KindInvalidPath, KindArtifactCorrupt:
		return true
	}
	return false
}

// NewError creates a new Error of the given kind
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// NewArtifactError creates a startup Error for the named artifact file
func NewArtifactError(kind ErrorKind, name string, err error) *Error {
	return &Error{Kind: kind, Subject: name, Err: err}
}

// KindOf returns the kind of err, or the empty kind if err is not an *Error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// UserMessageOf returns the user-visible message for any error
func UserMessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	return fmt.Sprintf("Unexpected error: %v", err)
}
