package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/edu-verify/internal/edu/common/log"
	"github.com/haukened/edu-verify/internal/edu/config"
	"github.com/haukened/edu-verify/internal/edu/domain"
	"github.com/haukened/edu-verify/internal/edu/repos/artifact"
	"github.com/haukened/edu-verify/internal/edu/repos/index"
	"github.com/haukened/edu-verify/internal/edu/repos/index/bolt"
)

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	b := index.NewBuilder(nil)
	k, err := domain.KeyFromDomain("stanford.edu")
	require.NoError(t, err)
	require.NoError(t, b.AddRecord(domain.DomainRecord{Key: k, Names: []string{"Stanford University"}, Source: "t"}))
	k, err = domain.KeyFromDomain("gmail.com")
	require.NoError(t, err)
	require.NoError(t, b.AddOverride(domain.OverrideRecord{Key: k, Marker: domain.MarkerAbused, Source: "t"}))

	cfg := config.DEFAULT_APP_CONFIG
	cfg.Index.Path = filepath.Join(t.TempDir(), "tree.json")
	_, err = artifact.Save(cfg.Index.Path, b.Build(), bolt.Meta{})
	require.NoError(t, err)
	return &cfg
}

func decode(t *testing.T, out string) []report {
	t.Helper()
	var got []report
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var r report
		require.NoError(t, json.Unmarshal([]byte(line), &r), line)
		got = append(got, r)
	}
	return got
}

func TestRun_Args(t *testing.T) {
	c := buildClassifier(testConfig(t), log.NewNoopLogger())
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), c, []string{"me@cs.stanford.edu", "x@gmail.com", "bogus"}, nil, &out))

	got := decode(t, out.String())
	require.Len(t, got, 3)
	assert.Equal(t, report{
		Email: "me@cs.stanford.edu", Valid: true, Status: domain.StatusValid,
		Domain: "stanford.edu", Names: []string{"Stanford University"}, Primary: "Stanford University",
	}, got[0])
	assert.Equal(t, report{Email: "x@gmail.com", Status: domain.StatusAbused, Domain: "gmail.com"}, got[1])
	assert.Equal(t, report{Email: "bogus", Status: domain.StatusInvalid}, got[2])
}

func TestRun_Stdin(t *testing.T) {
	c := buildClassifier(testConfig(t), log.NewNoopLogger())
	var out bytes.Buffer
	in := strings.NewReader("a@stanford.edu\n\n  b@unknown.org  \n")
	require.NoError(t, run(context.Background(), c, []string{"-"}, in, &out))

	got := decode(t, out.String())
	require.Len(t, got, 2)
	assert.True(t, got[0].Valid)
	assert.Equal(t, "b@unknown.org", got[1].Email)
	assert.Equal(t, domain.StatusInvalid, got[1].Status)
}

func TestRun_MissingIndexStillAnswers(t *testing.T) {
	cfg := config.DEFAULT_APP_CONFIG
	cfg.Index.Path = filepath.Join(t.TempDir(), "missing.json")
	c := buildClassifier(&cfg, log.NewNoopLogger())

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), c, []string{"a@stanford.edu"}, nil, &out))
	got := decode(t, out.String())
	require.Len(t, got, 1)
	assert.Equal(t, domain.StatusInvalid, got[0].Status)
}

// debugLogger keeps the fields of the last debug entry.
type debugLogger struct {
	msg    string
	fields map[string]any
}

func (l *debugLogger) Debug(fields map[string]any, msg string) { l.msg, l.fields = msg, fields }
func (l *debugLogger) Info(map[string]any, string)             {}
func (l *debugLogger) Warn(map[string]any, string)             {}
func (l *debugLogger) Error(map[string]any, string)            {}
func (l *debugLogger) Panic(map[string]any, string)            {}
func (l *debugLogger) Fatal(map[string]any, string)            {}
func (l *debugLogger) With(map[string]any) log.Logger          { return l }

func TestLogStats(t *testing.T) {
	c := buildClassifier(testConfig(t), log.NewNoopLogger())
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), c, []string{"a@stanford.edu", "b@stanford.edu"}, nil, &out))

	l := &debugLogger{}
	logStats(l, c)
	assert.Equal(t, "lookup stats", l.msg)
	assert.Equal(t, 2, l.fields["entries"])
	assert.Equal(t, uint64(1), l.fields["cache_hits"])
	assert.Equal(t, uint64(1), l.fields["cache_misses"])
}
