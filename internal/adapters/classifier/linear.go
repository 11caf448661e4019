package classifier

import (
	"fmt"
	"math"

	"github.com/mikey/sms-spam-detector/internal/core"
)

// linearModel holds the weights shared by the linear classifiers.
// A binary model has one coefficient row; a multiclass model has one per class.
type linearModel struct {
	classes   []int
	coef      [][]float64
	intercept []float64
	nFeatures int
}

func newLinearModel(name string, classes []int, coef [][]float64, intercept []float64) (linearModel, error) {
	classes = defaultClasses(classes)
	if len(classes) < 2 {
		return linearModel{}, fmt.Errorf("%s needs at least 2 classes, got %d", name, len(classes))
	}
	nFeatures, err := validateRows("coef", coef)
	if err != nil {
		return linearModel{}, err
	}

	m := linearModel{classes: classes, coef: coef, intercept: intercept, nFeatures: nFeatures}
	if !m.isFitted() {
		return m, nil
	}

	rows := len(classes)
	if len(classes) == 2 {
		rows = 1
	}
	if len(coef) != rows || len(intercept) != rows {
		return linearModel{}, fmt.Errorf("%s with %d classes needs %d coef rows and intercepts, got %d and %d",
			name, len(classes), rows, len(coef), len(intercept))
	}
	return m, nil
}

func (m linearModel) isFitted() bool {
	return len(m.coef) > 0 && len(m.intercept) > 0 && m.nFeatures > 0
}

// decision returns one score row per vector
func (m linearModel) decision(name string, x []core.FeatureVector) ([][]float64, error) {
	if !m.isFitted() {
		return nil, fmt.Errorf("%s is not fitted", name)
	}
	if err := checkInput(x, m.nFeatures); err != nil {
		return nil, err
	}

	out := make([][]float64, len(x))
	for i, v := range x {
		row := make([]float64, len(m.coef))
		for k := range m.coef {
			row[k] = v.Dot(m.coef[k]) + m.intercept[k]
		}
		out[i] = row
	}
	return out, nil
}

func (m linearModel) predict(name string, x []core.FeatureVector) ([]int, error) {
	scores, err := m.decision(name, x)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(scores))
	for i, row := range scores {
		if len(row) == 1 {
			if row[0] > 0 {
				out[i] = m.classes[1]
			} else {
				out[i] = m.classes[0]
			}
			continue
		}
		out[i] = m.classes[argmax(row)]
	}
	return out, nil
}

// LogisticRegression is a linear model with calibrated probabilities
type LogisticRegression struct {
	linearModel
}

// NewLogisticRegression creates a new LogisticRegression from its fitted parameters
func NewLogisticRegression(classes []int, coef [][]float64, intercept []float64) (*LogisticRegression, error) {
	m, err := newLinearModel(TypeLogisticRegression, classes, coef, intercept)
	if err != nil {
		return nil, err
	}
	return &LogisticRegression{linearModel: m}, nil
}

// Name returns the model kind
func (m *LogisticRegression) Name() string { return TypeLogisticRegression }

// Classes returns the class values
func (m *LogisticRegression) Classes() []int { return m.classes }

// IsFitted reports whether the model carries trained parameters
func (m *LogisticRegression) IsFitted() bool { return m.isFitted() }

// Predict returns the predicted class for each vector
func (m *LogisticRegression) Predict(x []core.FeatureVector) ([]int, error) {
	return m.predict(TypeLogisticRegression, x)
}

// PredictProba returns class probabilities for each vector
func (m *LogisticRegression) PredictProba(x []core.FeatureVector) ([][]float64, error) {
	scores, err := m.decision(TypeLogisticRegression, x)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(scores))
	for i, row := range scores {
		if len(row) == 1 {
			p := 1 / (1 + math.Exp(-row[0]))
			out[i] = []float64{1 - p, p}
			continue
		}
		softmaxInPlace(row)
		out[i] = row
	}
	return out, nil
}

// LinearSVC is a linear support vector classifier. It has no probability estimates.
type LinearSVC struct {
	linearModel
}

// NewLinearSVC creates a new LinearSVC from its fitted parameters
func NewLinearSVC(classes []int, coef [][]float64, intercept []float64) (*LinearSVC, error) {
	m, err := newLinearModel(TypeLinearSVC, classes, coef, intercept)
	if err != nil {
		return nil, err
	}
	return &LinearSVC{linearModel: m}, nil
}

// Name returns the model kind
func (m *LinearSVC) Name() string { return TypeLinearSVC }

// Classes returns the class values
func (m *LinearSVC) Classes() []int { return m.classes }

// IsFitted reports whether the model carries trained parameters
func (m *LinearSVC) IsFitted() bool { return m.isFitted() }

// Predict returns the predicted class for each vector
func (m *LinearSVC) Predict(x []core.FeatureVector) ([]int, error) {
	return m.predict(TypeLinearSVC, x)
}
