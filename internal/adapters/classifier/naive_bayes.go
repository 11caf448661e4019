package classifier

import (
	"fmt"
	"math"

	"github.com/mikey/sms-spam-detector/internal/core"
)

// MultinomialNB is a multinomial naive Bayes model over non-negative features
type MultinomialNB struct {
	classes        []int
	classLogPrior  []float64
	featureLogProb [][]float64
	nFeatures      int
}

// NewMultinomialNB creates a new MultinomialNB from its fitted parameters.
// Empty parameters yield an unfitted model rather than an error.
func NewMultinomialNB(classes []int, classLogPrior []float64, featureLogProb [][]float64) (*MultinomialNB, error) {
	classes = defaultClasses(classes)
	nFeatures, err := validateRows("feature_log_prob", featureLogProb)
	if err != nil {
		return nil, err
	}

	m := &MultinomialNB{
		classes:        classes,
		classLogPrior:  classLogPrior,
		featureLogProb: featureLogProb,
		nFeatures:      nFeatures,
	}
	if !m.IsFitted() {
		return m, nil
	}

	if len(classLogPrior) != len(classes) || len(featureLogProb) != len(classes) {
		return nil, fmt.Errorf("multinomial_nb has %d classes, %d priors and %d feature rows",
			len(classes), len(classLogPrior), len(featureLogProb))
	}
	return m, nil
}

// Name returns the model kind
func (m *MultinomialNB) Name() string { return TypeMultinomialNB }

// Classes returns the class values
func (m *MultinomialNB) Classes() []int { return m.classes }

// IsFitted reports whether the model carries trained parameters
func (m *MultinomialNB) IsFitted() bool {
	return len(m.classLogPrior) > 0 && len(m.featureLogProb) > 0 && m.nFeatures > 0
}

// Predict returns the most likely class for each vector
func (m *MultinomialNB) Predict(x []core.FeatureVector) ([]int, error) {
	jll, err := m.jointLogLikelihood(x)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(jll))
	for i, row := range jll {
		out[i] = m.classes[argmax(row)]
	}
	return out, nil
}

// PredictProba returns normalized class probabilities for each vector
func (m *MultinomialNB) PredictProba(x []core.FeatureVector) ([][]float64, error) {
	jll, err := m.jointLogLikelihood(x)
	if err != nil {
		return nil, err
	}
	for _, row := range jll {
		softmaxInPlace(row)
	}
	return jll, nil
}

func (m *MultinomialNB) jointLogLikelihood(x []core.FeatureVector) ([][]float64, error) {
	if !m.IsFitted() {
		return nil, fmt.Errorf("multinomial_nb is not fitted")
	}
	if err := checkInput(x, m.nFeatures); err != nil {
		return nil, err
	}

	out := make([][]float64, len(x))
	for i, v := range x {
		row := make([]float64, len(m.classes))
		for c := range m.classes {
			row[c] = v.Dot(m.featureLogProb[c]) + m.classLogPrior[c]
		}
		out[i] = row
	}
	return out, nil
}

// softmaxInPlace turns log scores into probabilities using the log-sum-exp trick
func softmaxInPlace(row []float64) {
	maxVal := math.Inf(-1)
	for _, v := range row {
		if v > maxVal {
			maxVal = v
		}
	}
	var sum float64
	for i, v := range row {
		row[i] = math.Exp(v - maxVal)
		sum += row[i]
	}
	for i := range row {
		row[i] /= sum
	}
}
