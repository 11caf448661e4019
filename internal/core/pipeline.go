package core

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Classify runs normalized text through the vectorizer and classifier held by artifacts.
// It returns a verdict or an *Error identifying the failed stage; no partial verdict is returned.
func Classify(artifacts *Artifacts, normalized string) (*Verdict, error) {
	if artifacts == nil || artifacts.Vectorizer == nil {
		return nil, NewError(KindVectorization, errors.New("vectorizer is not loaded"))
	}
	if artifacts.Classifier == nil {
		return nil, NewError(KindNotFitted, errors.New("classifier is not loaded"))
	}

	vectors, err := transform(artifacts.Vectorizer, normalized)
	if err != nil {
		return nil, NewError(KindVectorization, err)
	}

	clf := artifacts.Classifier
	if fc, ok := clf.(FittedChecker); ok && !fc.IsFitted() {
		return nil, NewError(KindNotFitted, nil)
	}

	label, confidence, hasConfidence, err := predict(clf, vectors)
	if err != nil {
		return nil, NewError(KindPrediction, err)
	}

	return &Verdict{
		Label:          label,
		Confidence:     confidence,
		HasConfidence:  hasConfidence,
		NormalizedText: normalized,
		ModelUsed:      clf.Name(),
		AnalyzedAt:     time.Now(),
	}, nil
}

func transform(v Vectorizer, normalized string) (vectors []FeatureVector, err error) {
	defer func() {
		if r := recover(); r != nil {
			vectors, err = nil, fmt.Errorf("vectorizer panicked: %v", r)
		}
	}()

	vectors, err = v.Transform([]string{normalized})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 vector, got %d", len(vectors))
	}
	return vectors, nil
}

func predict(clf Classifier, x []FeatureVector) (label Label, confidence float64, hasConfidence bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classifier panicked: %v", r)
		}
	}()

	values, err := clf.Predict(x)
	if err != nil {
		return 0, 0, false, err
	}
	if len(values) != 1 {
		return 0, 0, false, fmt.Errorf("expected 1 prediction, got %d", len(values))
	}
	predicted := values[0]

	label = LabelNotSpam
	if predicted == int(LabelSpam) {
		label = LabelSpam
	}

	pe, ok := clf.(ProbabilityEstimator)
	if !ok {
		return label, 0.0, false, nil
	}

	proba, err := pe.PredictProba(x)
	if err != nil {
		return 0, 0, false, err
	}
	if len(proba) != 1 {
		return 0, 0, false, fmt.Errorf("expected 1 probability row, got %d", len(proba))
	}

	column := -1
	for i, class := range clf.Classes() {
		if class == predicted {
			column = i
			break
		}
	}
	if column < 0 || column >= len(proba[0]) {
		return 0, 0, false, fmt.Errorf("predicted class %d has no probability column", predicted)
	}

	p := proba[0][column]
	if math.IsNaN(p) {
		return 0, 0, false, errors.New("probability is NaN")
	}
	return label, math.Min(1, math.Max(0, p)), true, nil
}
