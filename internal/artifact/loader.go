// Package artifact loads the externally trained vectorizer and classifier files.
//
// Artifacts are JSON or YAML documents carrying a "type" field that selects the
// concrete model. Files are only read from inside the loader's root directory.
package artifact

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mikey/sms-spam-detector/internal/adapters/classifier"
	"github.com/mikey/sms-spam-detector/internal/adapters/vectorizer"
	"github.com/mikey/sms-spam-detector/internal/core"
)

var errOutsideRoot = errors.New("path escapes the artifact directory")

// Loader reads artifacts from a root directory
type Loader struct {
	root   string
	logger *zap.Logger
}

// NewLoader creates a new Loader rooted at root. An empty root means the current working directory.
func NewLoader(root string, logger *zap.Logger) (*Loader, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve artifact root: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{root: abs, logger: logger}, nil
}

// Root returns the absolute root directory
func (l *Loader) Root() string {
	return l.root
}

// Open validates name and returns the file contents with their sha256 fingerprint
func (l *Loader) Open(name string) ([]byte, string, error) {
	path, err := l.resolve(name)
	if err != nil {
		return nil, "", core.NewArtifactError(core.KindInvalidPath, name, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", core.NewArtifactError(core.KindArtifactNotFound, name, err)
		}
		return nil, "", core.NewArtifactError(core.KindArtifactCorrupt, name, err)
	}

	sum := sha256.Sum256(data)
	return data, hex.EncodeToString(sum[:]), nil
}

// resolve maps name to an absolute path that must stay inside the root
func (l *Loader) resolve(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("empty artifact path")
	}

	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.root, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(l.root, path)
	if err != nil {
		return "", errOutsideRoot
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errOutsideRoot
	}

	// A symlink inside the root may still point outside it
	if real, err := filepath.EvalSymlinks(path); err == nil {
		realRoot, rootErr := filepath.EvalSymlinks(l.root)
		if rootErr != nil {
			realRoot = l.root
		}
		rel, err := filepath.Rel(realRoot, real)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", errOutsideRoot
		}
	}

	return path, nil
}

// LoadVectorizer loads and validates a vectorizer artifact
func (l *Loader) LoadVectorizer(name string) (core.Vectorizer, string, error) {
	data, fingerprint, err := l.Open(name)
	if err != nil {
		return nil, "", err
	}

	var p vectorizer.Params
	if err := decode(name, data, &p); err != nil {
		return nil, "", core.NewArtifactError(core.KindArtifactCorrupt, name, err)
	}

	v, err := vectorizer.New(p)
	if err != nil {
		return nil, "", core.NewArtifactError(core.KindArtifactCorrupt, name, err)
	}

	l.logger.Info("Loaded vectorizer",
		zap.String("file", name),
		zap.String("type", p.Type),
		zap.Int("features", v.Dim()))
	return v, fingerprint, nil
}

// LoadClassifier loads and validates a classifier artifact
func (l *Loader) LoadClassifier(name string) (core.Classifier, string, error) {
	data, fingerprint, err := l.Open(name)
	if err != nil {
		return nil, "", err
	}

	var p classifier.Params
	if err := decode(name, data, &p); err != nil {
		return nil, "", core.NewArtifactError(core.KindArtifactCorrupt, name, err)
	}

	clf, err := classifier.New(p)
	if err != nil {
		return nil, "", core.NewArtifactError(core.KindArtifactCorrupt, name, err)
	}

	_, hasProba := clf.(core.ProbabilityEstimator)
	l.logger.Info("Loaded classifier",
		zap.String("file", name),
		zap.String("type", clf.Name()),
		zap.Bool("probabilities", hasProba))
	return clf, fingerprint, nil
}

// LoadArtifacts loads both artifacts. Any error is a startup failure.
func (l *Loader) LoadArtifacts(vectorizerName, modelName string) (*core.Artifacts, error) {
	vec, vecPrint, err := l.LoadVectorizer(vectorizerName)
	if err != nil {
		return nil, err
	}
	clf, clfPrint, err := l.LoadClassifier(modelName)
	if err != nil {
		return nil, err
	}

	return &core.Artifacts{
		Vectorizer:  vec,
		Classifier:  clf,
		Fingerprint: vecPrint + ":" + clfPrint,
	}, nil
}

// decode picks the format from the file extension
func decode(name string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to decode YAML: %w", err)
		}
	case ".json", "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("failed to decode JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported artifact format: %q", filepath.Ext(name))
	}
	return nil
}
