package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mikey/sms-spam-detector/internal/core"
)

func newTestLoader(t *testing.T, root string) *Loader {
	t.Helper()
	l, err := NewLoader(root, nil)
	require.NoError(t, err)
	return l
}

func TestLoadArtifacts_JSON(t *testing.T) {
	l := newTestLoader(t, "testdata")

	a, err := l.LoadArtifacts("vectorizer.json", "model.json")
	require.NoError(t, err)
	require.Equal(t, 12, a.Vectorizer.Dim())
	require.Equal(t, "multinomial_nb", a.Classifier.Name())
	require.NotEmpty(t, a.Fingerprint)

	spam, err := core.Classify(a, "congratul walmart gift card click claim prize")
	require.NoError(t, err)
	require.Equal(t, core.LabelSpam, spam.Label)
	require.True(t, spam.HasConfidence)
	require.Greater(t, spam.Confidence, 0.5)
	require.LessOrEqual(t, spam.Confidence, 1.0)

	ham, err := core.Classify(a, "hi john want remind meet tomorrow 10")
	require.NoError(t, err)
	require.Equal(t, core.LabelNotSpam, ham.Label)
	require.Greater(t, ham.Confidence, 0.5)
}

func TestLoadArtifacts_YAMLWithoutProbabilities(t *testing.T) {
	l := newTestLoader(t, "testdata")

	a, err := l.LoadArtifacts("vectorizer.json", "model_svc.yaml")
	require.NoError(t, err)

	v, err := core.Classify(a, "claim prize")
	require.NoError(t, err)
	require.Equal(t, core.LabelSpam, v.Label)
	require.Equal(t, 0.0, v.Confidence)
	require.False(t, v.HasConfidence)
}

func TestLoadArtifacts_UnfittedModelLoadsButCannotPredict(t *testing.T) {
	l := newTestLoader(t, "testdata")

	a, err := l.LoadArtifacts("vectorizer.json", "unfitted.json")
	require.NoError(t, err)

	_, err = core.Classify(a, "claim prize")
	require.Equal(t, core.KindNotFitted, core.KindOf(err))
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	l := newTestLoader(t, "testdata")

	_, a, err := l.Open("model.json")
	require.NoError(t, err)
	_, b, err := l.Open("model_svc.yaml")
	require.NoError(t, err)
	_, again, err := l.Open("model.json")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.Equal(t, a, again)
}

func TestOpen_Failures(t *testing.T) {
	l := newTestLoader(t, "testdata")
	outside := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(outside, []byte(`{}`), 0o600))

	cases := []struct {
		name string
		file string
		kind core.ErrorKind
	}{
		{name: "missing", file: "model.pkl", kind: core.KindArtifactNotFound},
		{name: "traversal", file: "../loader.go", kind: core.KindInvalidPath},
		{name: "nested traversal", file: "sub/../../loader.go", kind: core.KindInvalidPath},
		{name: "absolute outside", file: outside, kind: core.KindInvalidPath},
		{name: "root itself", file: ".", kind: core.KindInvalidPath},
		{name: "empty", file: "", kind: core.KindInvalidPath},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := l.Open(tc.file)
			require.Error(t, err)
			require.Equal(t, tc.kind, core.KindOf(err))

			var e *core.Error
			require.ErrorAs(t, err, &e)
			require.True(t, e.IsStartupFailure())
		})
	}
}

func TestOpen_AbsoluteInsideRoot(t *testing.T) {
	l := newTestLoader(t, "testdata")

	_, _, err := l.Open(filepath.Join(l.Root(), "model.json"))
	require.NoError(t, err)
}

func TestOpen_SymlinkOutsideRoot(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(t.TempDir(), "secret.json")
	require.NoError(t, os.WriteFile(target, []byte(`{}`), 0o600))
	if err := os.Symlink(target, filepath.Join(root, "model.json")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	l := newTestLoader(t, root)
	_, _, err := l.Open("model.json")
	require.Equal(t, core.KindInvalidPath, core.KindOf(err))
}

func TestLoad_CorruptArtifacts(t *testing.T) {
	root := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(body), 0o600))
	}
	write("truncated.json", `{"type": "tfidf", "vocabulary": {"prize": 0}`)
	write("unknown_field.json", `{"type": "tfidf", "vocabulary": {"prize": 0}, "idf": [1], "max_df": 0.9}`)
	write("bad_type.json", `{"type": "hashing", "vocabulary": {"prize": 0}}`)
	write("bad_model.yaml", "type: random_forest\n")
	write("model.pkl", "\x80\x04\x95")

	l := newTestLoader(t, root)

	for _, name := range []string{"truncated.json", "unknown_field.json", "bad_type.json", "model.pkl"} {
		_, _, err := l.LoadVectorizer(name)
		require.Equal(t, core.KindArtifactCorrupt, core.KindOf(err), name)
		require.Contains(t, core.UserMessageOf(err), "Failed to load '"+name+"'")
	}

	_, _, err := l.LoadClassifier("bad_model.yaml")
	require.Equal(t, core.KindArtifactCorrupt, core.KindOf(err))

	_, err = newTestLoader(t, "testdata").LoadArtifacts("corrupt.json", "model.json")
	require.Equal(t, core.KindArtifactCorrupt, core.KindOf(err))
}

func TestLoadArtifacts_MissingHaltsOnFirstFailure(t *testing.T) {
	l := newTestLoader(t, "testdata")

	a, err := l.LoadArtifacts("vectorizer.json", "missing.json")
	require.Nil(t, a)
	require.Equal(t, core.KindArtifactNotFound, core.KindOf(err))
	require.Equal(t,
		"Required file 'missing.json' not found. Please ensure the model and vectorizer are present.",
		core.UserMessageOf(err))
}
