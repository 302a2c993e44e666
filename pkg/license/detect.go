package license

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-enry/go-license-detector/v4/licensedb"
	classifier "github.com/google/licenseclassifier/v2"
)

// Detector recognizes license texts against a corpus of known licenses.
type Detector struct {
	c *classifier.Classifier
}

// ErrEmptyCorpus is returned for a licenses folder without any license text.
var ErrEmptyCorpus = errors.New("no license texts found")

const downloadCorpus = "curl -L https://github.com/google/licenseclassifier/archive/refs/tags/v2.0.0-alpha.1.tar.gz | tar xz && mv licenseclassifier-*/licenses ."

// NewDetector loads the license corpus found in dir. The corpus is the
// "licenses" folder of github.com/google/licenseclassifier, e.g.:
//
//	curl -L https://github.com/google/licenseclassifier/archive/refs/tags/v2.0.0-alpha.1.tar.gz | tar xz && mv licenseclassifier-*/licenses .
func NewDetector(dir string, threshold float64) (*Detector, error) {
	// LoadLicenses ignores walk errors, a missing folder would load nothing.
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("the folder '%s' is missing (%w), download it with:\n  %s", dir, fs.ErrNotExist, downloadCorpus)
	case err != nil:
		return nil, fmt.Errorf("loading licenses from '%s': %w", dir, err)
	case !info.IsDir():
		return nil, fmt.Errorf("loading licenses from '%s': not a directory", dir)
	}

	n, err := countTexts(dir)
	if err != nil {
		return nil, fmt.Errorf("loading licenses from '%s': %w", dir, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("loading licenses from '%s': %w, download them with:\n  %s", dir, ErrEmptyCorpus, downloadCorpus)
	}

	c := classifier.NewClassifier(threshold)
	if err := c.LoadLicenses(dir); err != nil {
		return nil, fmt.Errorf("loading licenses from '%s': %w", dir, err)
	}
	return &Detector{c: c}, nil
}

// countTexts counts the files LoadLicenses would read.
func countTexts(dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, "txt") {
			n++
		}
		return nil
	})
	return n, err
}

// Identify returns the most likely license for text. ok is false when
// nothing in the corpus resembles it.
func (d *Detector) Identify(text string) (name string, confidence float64, ok bool) {
	for _, m := range d.c.Match([]byte(text)) {
		if m.Confidence < confidence {
			continue
		}
		name, confidence, ok = normalize(m.Name), m.Confidence, true
	}
	return name, confidence, ok
}

// Agrees reports whether text looks like id. Texts the detector does not
// recognize at all are given the benefit of the doubt.
func (d *Detector) Agrees(text string, id ID) (found string, agrees bool) {
	name, _, ok := d.Identify(text)
	if !ok {
		return "", true
	}
	return name, name == id.SPDX()
}

// Hint is a file that looks like a license without having one of the
// conventional names license-hound tries.
type Hint struct {
	File       string  // Path relative to the analysed directory.
	License    string  // Of the form "BSD-3-Clause".
	Confidence float32 // The higher the more confident.
}

func (h Hint) String() string {
	return fmt.Sprintf("%s looks like %s (%.0f%%)", h.File, h.License, h.Confidence*100)
}

// Hints runs go-license-detector on dir, most confident first. It never
// fails: a directory without anything license-like has no hints.
func Hints(dir string) []Hint {
	results := licensedb.Analyse(dir)
	if len(results) == 0 || results[0].ErrStr != "" {
		return nil
	}

	var hints []Hint
	for _, match := range results[0].Matches {
		hints = append(hints, Hint{
			File:       filepath.Clean(match.File),
			License:    normalize(match.License),
			Confidence: match.Confidence,
		})
	}
	sort.SliceStable(hints, func(i, j int) bool {
		return hints[i].Confidence > hints[j].Confidence
	})
	return hints
}

// Classifier databases suffix some names, e.g. "MPL-2.0-no-copyleft-exception".
func normalize(l string) string {
	if strings.HasPrefix(l, "MPL-2.0") {
		return "MPL-2.0"
	}
	if strings.HasPrefix(l, "deprecated_") {
		return strings.TrimPrefix(l, "deprecated_")
	}
	return l
}
