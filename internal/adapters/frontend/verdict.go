// Package frontend holds the ways a message reaches the detector: the web form and
// JSON API, the one-shot CLI and the SMTP content filter.
package frontend

import (
	"fmt"

	"github.com/mikey/sms-spam-detector/internal/core"
)

const (
	// SampleSpam is inserted by the "Insert Spam Example" button
	SampleSpam = "Congratulations! You have won a $1,000 Walmart gift card. Click here to claim your prize: http://fake-link.com"
	// SampleHam is inserted by the "Insert Ham Example" button
	SampleHam = "Hi John, just wanted to remind you about our meeting tomorrow at 10 AM. Let me know if you need anything."
)

// FormatConfidence renders a probability as a percentage with two decimals
func FormatConfidence(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}

// VerdictResponse is the JSON view of a verdict
type VerdictResponse struct {
	Label          string  `json:"label"`
	IsSpam         bool    `json:"is_spam"`
	Confidence     float64 `json:"confidence"`
	ConfidenceText string  `json:"confidence_text"`
	HasConfidence  bool    `json:"has_confidence"`
	Model          string  `json:"model"`
	Cached         bool    `json:"cached"`
}

// ErrorResponse is the JSON view of a failed classification
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func newVerdictResponse(v *core.Verdict) VerdictResponse {
	return VerdictResponse{
		Label:          v.Label.String(),
		IsSpam:         v.IsSpam(),
		Confidence:     v.Confidence,
		ConfidenceText: FormatConfidence(v.Confidence),
		HasConfidence:  v.HasConfidence,
		Model:          v.ModelUsed,
		Cached:         v.Cached,
	}
}
