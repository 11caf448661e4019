package classifier

import (
	"fmt"

	"github.com/mikey/sms-spam-detector/internal/core"
)

const (
	// TypeMultinomialNB is the artifact type of a multinomial naive Bayes model
	TypeMultinomialNB = "multinomial_nb"
	// TypeLogisticRegression is the artifact type of a logistic regression model
	TypeLogisticRegression = "logistic_regression"
	// TypeLinearSVC is the artifact type of a linear support vector classifier
	TypeLinearSVC = "linear_svc"
)

// Params holds the fitted state of a classifier as stored in an artifact file.
// Which fields are used depends on Type.
type Params struct {
	Type           string      `json:"type" yaml:"type"`
	Classes        []int       `json:"classes" yaml:"classes"`
	ClassLogPrior  []float64   `json:"class_log_prior,omitempty" yaml:"class_log_prior,omitempty"`
	FeatureLogProb [][]float64 `json:"feature_log_prob,omitempty" yaml:"feature_log_prob,omitempty"`
	Coef           [][]float64 `json:"coef,omitempty" yaml:"coef,omitempty"`
	Intercept      []float64   `json:"intercept,omitempty" yaml:"intercept,omitempty"`
}

// New builds the classifier described by p
func New(p Params) (core.Classifier, error) {
	var (
		clf core.Classifier
		err error
	)
	switch p.Type {
	case TypeMultinomialNB:
		clf, err = NewMultinomialNB(p.Classes, p.ClassLogPrior, p.FeatureLogProb)
	case TypeLogisticRegression:
		clf, err = NewLogisticRegression(p.Classes, p.Coef, p.Intercept)
	case TypeLinearSVC:
		clf, err = NewLinearSVC(p.Classes, p.Coef, p.Intercept)
	default:
		return nil, fmt.Errorf("unsupported classifier type: %q", p.Type)
	}
	if err != nil {
		return nil, err
	}
	return clf, nil
}

// validateRows checks that every row has the same width and returns it
func validateRows(name string, rows [][]float64) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return 0, fmt.Errorf("%s row %d has %d columns, expected %d", name, i, len(row), width)
		}
	}
	return width, nil
}

// checkInput verifies that every vector matches the model's feature dimension
func checkInput(x []core.FeatureVector, nFeatures int) error {
	for i, v := range x {
		if v.Dim != nFeatures {
			return fmt.Errorf("X has %d features, but the model is expecting %d features as input", v.Dim, nFeatures)
		}
		if len(v.Indices) != len(v.Values) {
			return fmt.Errorf("vector %d has %d indices and %d values", i, len(v.Indices), len(v.Values))
		}
		for _, idx := range v.Indices {
			if idx < 0 || idx >= nFeatures {
				return fmt.Errorf("vector %d has feature index %d outside [0,%d)", i, idx, nFeatures)
			}
		}
	}
	return nil
}

func argmax(row []float64) int {
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] > row[best] {
			best = i
		}
	}
	return best
}

func defaultClasses(classes []int) []int {
	if len(classes) == 0 {
		return []int{0, 1}
	}
	return classes
}
