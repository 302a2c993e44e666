package provenance

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakexks/license-hound/pkg/license"
)

type fakeProber struct {
	name  string
	found Found
	ok    bool
	calls int
}

func (f *fakeProber) Name() string { return f.name }

func (f *fakeProber) Probe(context.Context, Target, license.ID) (Found, bool) {
	f.calls++
	return f.found, f.ok
}

type recorder struct {
	probes []string
}

func (r *recorder) ObserveProbe(prober string, outcome Outcome) {
	r.probes = append(r.probes, prober+"="+string(outcome))
}

// hostedProber only applies to targets with a repository.
type hostedProber struct {
	fakeProber
}

func (h *hostedProber) Applies(t Target) bool { return t.Repository != "" }

func TestResolve_FirstSuccessWins(t *testing.T) {
	local := &fakeProber{name: "local", ok: true, found: Found{Source: FromPackageTree("LICENSE"), Text: "local"}}
	api := &fakeProber{name: "api", ok: true, found: Found{Source: FromHostedAPI("https://example.com"), Text: "api"}}
	raw := &fakeProber{name: "raw"}

	r := NewChain(local, api, raw)
	rec := &recorder{}
	r.Observer = rec

	found, ok := r.Resolve(context.Background(), Target{}, license.MIT)
	require.True(t, ok)
	assert.Equal(t, "local", found.Text)
	assert.Equal(t, PackageTree, found.Source.Kind)
	assert.Equal(t, 0, api.calls)
	assert.Equal(t, 0, raw.calls)
	assert.Equal(t, []string{"local=hit"}, rec.probes)
}

func TestResolve_FallsThrough(t *testing.T) {
	local := &fakeProber{name: "local"}
	api := &fakeProber{name: "api"}
	raw := &fakeProber{name: "raw", ok: true, found: Found{Source: FromHostedRepo("https://raw/LICENSE"), Text: "raw"}}

	rec := &recorder{}
	r := NewChain(local, api, raw)
	r.Observer = rec

	found, ok := r.Resolve(context.Background(), Target{}, license.MIT)
	require.True(t, ok)
	assert.Equal(t, FromHostedRepo("https://raw/LICENSE"), found.Source)
	assert.Equal(t, []string{"local=miss", "api=miss", "raw=hit"}, rec.probes)
}

func TestResolve_NoMatch(t *testing.T) {
	r := NewChain(&fakeProber{name: "a"}, &fakeProber{name: "b"}, &fakeProber{name: "c"})
	_, ok := r.Resolve(context.Background(), Target{}, license.MIT)
	assert.False(t, ok)
}

func TestResolve_SkipsProbersThatDoNotApply(t *testing.T) {
	local := &fakeProber{name: "local"}
	api := &hostedProber{fakeProber{name: "api"}}
	raw := &hostedProber{fakeProber{name: "raw", ok: true}}
	r := NewChain(local, api, raw)

	rec := &recorder{}
	_, ok := r.ResolveWith(context.Background(), Target{Dir: "x"}, license.MIT, rec)
	assert.False(t, ok)
	assert.Equal(t, 0, api.calls)
	assert.Equal(t, 0, raw.calls)
	assert.Equal(t, []string{"local=miss", "api=skip", "raw=skip"}, rec.probes)

	rec = &recorder{}
	_, ok = r.ResolveWith(context.Background(), Target{Repository: "https://github.com/a/b"}, license.MIT, rec)
	assert.True(t, ok)
	assert.Equal(t, []string{"local=miss", "api=miss", "raw=hit"}, rec.probes)
}

func TestResolveWith_OverridesObserver(t *testing.T) {
	r := NewChain(&fakeProber{name: "a"}, &fakeProber{name: "b", ok: true}, &fakeProber{name: "c"})
	fallback, explicit := &recorder{}, &recorder{}
	r.Observer = fallback

	_, ok := r.ResolveWith(context.Background(), Target{}, license.MIT, explicit)
	require.True(t, ok)
	assert.Empty(t, fallback.probes)
	assert.Equal(t, []string{"a=miss", "b=hit"}, explicit.probes)

	// A nil observer is allowed.
	_, ok = r.ResolveWith(context.Background(), Target{}, license.MIT, nil)
	assert.True(t, ok)
}

func TestSource_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(FromHostedAPI("https://raw.githubusercontent.com/a/b/master/LICENSE"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"github_api","locator":"https://raw.githubusercontent.com/a/b/master/LICENSE"}`, string(b))

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode(FromHostedRepo("https://example.com/LICENSE?a=1&b=2")))
	assert.Equal(t, `{"kind":"github_repo","locator":"https://example.com/LICENSE?a=1&b=2"}`+"\n", buf.String())

	assert.Equal(t, "package_tree:LICENSE", FromPackageTree("LICENSE").String())
	assert.Equal(t, "github_repo", HostedRepo.String())
}

func TestLocal_Priority(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	write("COPYING", "copying")
	write("LICENSE.txt", "license txt")
	write("LICENSE-MIT", "license mit")

	l := &Local{}

	found, ok := l.Probe(context.Background(), Target{Dir: dir}, license.MIT)
	require.True(t, ok)
	assert.Equal(t, FromPackageTree("LICENSE-MIT"), found.Source)
	assert.Equal(t, "license mit", found.Text)

	// Without a license-specific suffix, LICENSE.txt comes before COPYING.
	found, ok = l.Probe(context.Background(), Target{Dir: dir}, license.BSD3Clause)
	require.True(t, ok)
	assert.Equal(t, FromPackageTree("LICENSE.txt"), found.Source)
}

func TestLocal_NoMatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "LICENSE.md"), []byte("x"), 0644))
	// A directory named like a license file is not readable as one.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "LICENSE"), 0755))

	_, ok := (&Local{}).Probe(context.Background(), Target{Dir: dir}, license.MPL2)
	assert.False(t, ok)

	_, ok = (&Local{}).Probe(context.Background(), Target{}, license.MPL2)
	assert.False(t, ok)
}
