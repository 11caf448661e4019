package core

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubVectorizer struct {
	err    error
	panics bool
	calls  int
}

func (v *stubVectorizer) Transform(docs []string) ([]FeatureVector, error) {
	v.calls++
	if v.panics {
		panic("broken vocabulary")
	}
	if v.err != nil {
		return nil, v.err
	}
	out := make([]FeatureVector, len(docs))
	for i, d := range docs {
		out[i] = FeatureVector{Dim: 2, Indices: []int{0}, Values: []float64{float64(len(strings.Fields(d)))}}
	}
	return out, nil
}

func (v *stubVectorizer) Dim() int { return 2 }

type stubClassifier struct {
	label  int
	err    error
	panics bool
	calls  int
}

func (c *stubClassifier) Predict(x []FeatureVector) ([]int, error) {
	c.calls++
	if c.panics {
		panic("index out of range")
	}
	if c.err != nil {
		return nil, c.err
	}
	out := make([]int, len(x))
	for i := range x {
		out[i] = c.label
	}
	return out, nil
}

func (c *stubClassifier) Classes() []int { return []int{0, 1} }
func (c *stubClassifier) Name() string   { return "stub" }

type probaClassifier struct {
	stubClassifier
	proba    []float64
	probaErr error
	fitted   bool
}

func (c *probaClassifier) PredictProba(x []FeatureVector) ([][]float64, error) {
	if c.probaErr != nil {
		return nil, c.probaErr
	}
	out := make([][]float64, len(x))
	for i := range x {
		out[i] = c.proba
	}
	return out, nil
}

func (c *probaClassifier) IsFitted() bool { return c.fitted }

func TestClassify_SpamWithProbability(t *testing.T) {
	a := &Artifacts{
		Vectorizer: &stubVectorizer{},
		Classifier: &probaClassifier{stubClassifier: stubClassifier{label: 1}, proba: []float64{0.2, 0.8}, fitted: true},
	}

	v, err := Classify(a, "win prize")
	require.NoError(t, err)
	require.Equal(t, LabelSpam, v.Label)
	require.True(t, v.IsSpam())
	require.InDelta(t, 0.8, v.Confidence, 1e-12)
	require.True(t, v.HasConfidence)
	require.Equal(t, "win prize", v.NormalizedText)
	require.Equal(t, "stub", v.ModelUsed)
}

func TestClassify_NotSpamUsesPredictedColumn(t *testing.T) {
	a := &Artifacts{
		Vectorizer: &stubVectorizer{},
		Classifier: &probaClassifier{stubClassifier: stubClassifier{label: 0}, proba: []float64{0.9, 0.1}, fitted: true},
	}

	v, err := Classify(a, "meet tomorrow")
	require.NoError(t, err)
	require.Equal(t, LabelNotSpam, v.Label)
	require.Equal(t, "Not Spam", v.Label.String())
	require.InDelta(t, 0.9, v.Confidence, 1e-12)
}

func TestClassify_WithoutProbabilityDefaultsToZero(t *testing.T) {
	a := &Artifacts{Vectorizer: &stubVectorizer{}, Classifier: &stubClassifier{label: 1}}

	v, err := Classify(a, "win prize")
	require.NoError(t, err)
	require.Equal(t, LabelSpam, v.Label)
	require.Equal(t, 0.0, v.Confidence)
	require.False(t, v.HasConfidence)
}

func TestClassify_ClampsConfidence(t *testing.T) {
	a := &Artifacts{
		Vectorizer: &stubVectorizer{},
		Classifier: &probaClassifier{stubClassifier: stubClassifier{label: 1}, proba: []float64{-0.1, 1.0000001}, fitted: true},
	}

	v, err := Classify(a, "win")
	require.NoError(t, err)
	require.Equal(t, 1.0, v.Confidence)
}

func TestClassify_Deterministic(t *testing.T) {
	a := &Artifacts{
		Vectorizer: &stubVectorizer{},
		Classifier: &probaClassifier{stubClassifier: stubClassifier{label: 1}, proba: []float64{0.35, 0.65}, fitted: true},
	}

	first, err := Classify(a, "claim prize")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Classify(a, "claim prize")
		require.NoError(t, err)
		require.Equal(t, first.Label, again.Label)
		require.Equal(t, first.Confidence, again.Confidence)
	}
}

func TestClassify_StageFailures(t *testing.T) {
	cases := []struct {
		name      string
		artifacts *Artifacts
		kind      ErrorKind
	}{
		{
			name:      "vectorizer error",
			artifacts: &Artifacts{Vectorizer: &stubVectorizer{err: errors.New("bad vocabulary")}, Classifier: &stubClassifier{}},
			kind:      KindVectorization,
		},
		{
			name:      "vectorizer panic",
			artifacts: &Artifacts{Vectorizer: &stubVectorizer{panics: true}, Classifier: &stubClassifier{}},
			kind:      KindVectorization,
		},
		{
			name:      "missing vectorizer",
			artifacts: &Artifacts{Classifier: &stubClassifier{}},
			kind:      KindVectorization,
		},
		{
			name:      "not fitted",
			artifacts: &Artifacts{Vectorizer: &stubVectorizer{}, Classifier: &probaClassifier{fitted: false}},
			kind:      KindNotFitted,
		},
		{
			name:      "predict error",
			artifacts: &Artifacts{Vectorizer: &stubVectorizer{}, Classifier: &stubClassifier{err: errors.New("dimension mismatch")}},
			kind:      KindPrediction,
		},
		{
			name:      "predict panic",
			artifacts: &Artifacts{Vectorizer: &stubVectorizer{}, Classifier: &stubClassifier{panics: true}},
			kind:      KindPrediction,
		},
		{
			name: "probability error",
			artifacts: &Artifacts{Vectorizer: &stubVectorizer{}, Classifier: &probaClassifier{
				fitted: true, probaErr: errors.New("no log prior"),
			}},
			kind: KindPrediction,
		},
		{
			name: "probability NaN",
			artifacts: &Artifacts{Vectorizer: &stubVectorizer{}, Classifier: &probaClassifier{
				fitted: true, proba: []float64{math.NaN(), math.NaN()},
			}},
			kind: KindPrediction,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Classify(tc.artifacts, "win prize")
			require.Nil(t, v)
			require.Error(t, err)
			require.Equal(t, tc.kind, KindOf(err))
		})
	}
}

func TestClassify_NotFittedSkipsPredict(t *testing.T) {
	clf := &probaClassifier{fitted: false}
	_, err := Classify(&Artifacts{Vectorizer: &stubVectorizer{}, Classifier: clf}, "win")
	require.Equal(t, KindNotFitted, KindOf(err))
	require.Zero(t, clf.calls)
}

func TestError_UserMessages(t *testing.T) {
	require.Equal(t, "Please enter a message to classify.", NewError(KindEmptyInput, nil).UserMessage())
	require.Equal(t, "Message could not be processed. Please enter valid text.", NewError(KindNormalizationDegenerate, nil).UserMessage())
	require.Equal(t, "Model is not fitted. Please train it before use.", NewError(KindNotFitted, nil).UserMessage())
	require.Equal(t, "Vectorization failed: boom", NewError(KindVectorization, errors.New("boom")).UserMessage())
	require.Equal(t, "Prediction failed: boom", NewError(KindPrediction, errors.New("boom")).UserMessage())
	require.Contains(t, NewArtifactError(KindArtifactNotFound, "model.json", nil).UserMessage(), "'model.json' not found")
	require.True(t, NewArtifactError(KindInvalidPath, "../x", nil).IsStartupFailure())
	require.False(t, NewError(KindPrediction, nil).IsStartupFailure())
	require.Equal(t, "Unexpected error: boom", UserMessageOf(errors.New("boom")))
}
