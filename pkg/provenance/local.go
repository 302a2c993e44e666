package provenance

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jakexks/license-hound/pkg/license"
)

// Local looks for conventionally named license files in the package's
// source tree.
type Local struct {
	// Detector is optional. When set, a file that looks like a different
	// license than the declared one is logged, but still used.
	Detector *license.Detector
	Log      *zap.SugaredLogger
}

func (l *Local) Name() string { return "package_tree" }

func (l *Local) Probe(_ context.Context, t Target, id license.ID) (Found, bool) {
	if t.Dir == "" {
		return Found{}, false
	}

	for _, c := range license.GuessFilenames(id) {
		content, err := os.ReadFile(filepath.Join(t.Dir, c.Name()))
		if err != nil {
			continue
		}
		text := string(content)

		if l.Detector != nil && l.Log != nil {
			if other, ok := l.Detector.Agrees(text, id); !ok {
				l.Log.Warnf("package %s@%s: %s looks like %s but %s was declared", t.Name, t.Version, c.Name(), other, id)
			}
		}

		return Found{Source: FromPackageTree(c.Name()), Text: text}, true
	}

	return Found{}, false
}
