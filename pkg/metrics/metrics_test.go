package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakexks/license-hound/pkg/provenance"
)

func TestObserve(t *testing.T) {
	m := New()
	m.ObserveProbe("package_tree", provenance.Miss)
	m.ObserveProbe("github_api", provenance.Hit)
	m.ObserveProbe("package_tree", provenance.Miss)
	m.ObserveProbe("github_repo", provenance.Skip)
	m.ObserveConclusion("ok")
	m.ObserveConclusion("NoSource")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProbesTotal.WithLabelValues("package_tree", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProbesTotal.WithLabelValues("github_api", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProbesTotal.WithLabelValues("github_repo", "skip")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ProbesTotal.WithLabelValues("github_repo", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PackagesTotal.WithLabelValues("NoSource")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveConclusion("ok")

	path := filepath.Join(t.TempDir(), "license_hound.prom")
	require.NoError(t, m.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `license_hound_packages_total{conclusion="ok"} 1`)
}
