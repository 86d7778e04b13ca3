package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/edu-verify/internal/edu/common/log"
	"github.com/haukened/edu-verify/internal/edu/domain"
	"github.com/haukened/edu-verify/internal/edu/repos/index"
	"github.com/haukened/edu-verify/internal/edu/repos/index/bolt"
)

func sampleIndex(t *testing.T) *index.Index {
	t.Helper()
	b := index.NewBuilder(log.NewNoopLogger())
	for name, names := range map[string][]string{
		"stanford.edu":    {"Stanford University"},
		"cs.stanford.edu": {"Stanford CS"},
		"nameless.edu":    nil,
		"ox.ac.uk":        {"University of Oxford", "Oxford"},
	} {
		k, err := domain.KeyFromDomain(name)
		require.NoError(t, err)
		require.NoError(t, b.AddRecord(domain.DomainRecord{Key: k, Names: names, Source: "t"}))
	}
	k, err := domain.KeyFromDomain("alumni.stanford.edu")
	require.NoError(t, err)
	require.NoError(t, b.AddOverride(domain.OverrideRecord{Key: k, Marker: domain.MarkerStoplist, Source: "t"}))
	return b.Build()
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"tree.json", FormatJSON, false},
		{"data/TREE.JSON", FormatJSON, false},
		{"tree.yaml", FormatYAML, false},
		{"tree.yml", FormatYAML, false},
		{"tree.toml", FormatTOML, false},
		{"tree.db", FormatBolt, false},
		{"tree.bolt", FormatBolt, false},
		{"tree.txt", "", true},
		{"tree", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if tt.err {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				assert.False(t, Supported(tt.path))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, Supported(tt.path))
		})
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ix := sampleIndex(t)
	for _, ext := range []string{".json", ".yaml", ".toml", ".db"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "tree"+ext)
			w, err := Save(path, ix, bolt.Meta{Version: 1})
			require.NoError(t, err)
			assert.Equal(t, uint64(ix.Len()), w.Entries)
			assert.Positive(t, w.Bytes)
			want, _ := FormatOf(path)
			assert.Equal(t, want, w.Format)

			got, err := Load(context.Background(), path, nil)
			require.NoError(t, err)
			assert.Equal(t, index.Encode(ix), index.Encode(got))

			m, ok := got.Match("mail.cs.stanford.edu")
			require.True(t, ok)
			assert.Equal(t, []string{"Stanford CS"}, m.Entry.Names)
		})
	}
}

func TestSave_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	_, err := Save(path, sampleIndex(t), bolt.Meta{})
	require.NoError(t, err)
	_, err = Save(path, index.Empty(), bolt.Meta{})
	require.NoError(t, err)

	got, err := Load(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files left behind")
}

func TestLoad_HandWrittenJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	body := `{"edu":{"stanford":{"_n_":["Stanford University"],"alumni":["_S_"]}},"com":{"gmail":["_A_"]}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	ix, err := Load(context.Background(), path, log.NewNoopLogger())
	require.NoError(t, err)

	m, ok := ix.Match("gmail.com")
	require.True(t, ok)
	assert.Equal(t, domain.StatusAbused, m.Result().Status)
}

func TestLoad_SkipsMalformedNodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	body := `{"edu":{"mit":["MIT"],"Bad Label":["x"],"stanford":"Stanford"}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	ix, err := Load(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Len())
	_, ok := ix.Match("mit.edu")
	assert.True(t, ok)
	_, ok = ix.Match("stanford.edu")
	assert.False(t, ok)
}

func TestLoad_HandWrittenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.yml")
	body := "edu:\n  mit:\n    - Massachusetts Institute of Technology\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	ix, err := Load(context.Background(), path, nil)
	require.NoError(t, err)
	m, ok := ix.Match("mit.edu")
	require.True(t, ok)
	assert.Equal(t, []string{"Massachusetts Institute of Technology"}, m.Entry.Names)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("{not json"), 0o644))
	newer := filepath.Join(dir, "newer.json")
	require.NoError(t, os.WriteFile(newer, []byte(`{"_v_":["2"],"edu":["x"]}`), 0o644))

	tests := []struct {
		name string
		path string
		is   error
	}{
		{"missing file", filepath.Join(dir, "missing.json"), os.ErrNotExist},
		{"missing bolt", filepath.Join(dir, "missing.db"), nil},
		{"unsupported", filepath.Join(dir, "tree.txt"), ErrUnsupportedFormat},
		{"garbage", garbage, nil},
		{"unknown version", newer, index.ErrUnsupportedVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), tt.path, nil)
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	_, err := Save(path, sampleIndex(t), bolt.Meta{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Load(ctx, path, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
