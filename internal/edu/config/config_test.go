package config

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "data/tree.json", cfg.Index.Path)
	assert.Equal(t, 10*time.Second, cfg.Index.LoadTimeout)
	assert.Equal(t, 1024, cfg.Lookup.CacheSize)
	assert.InDelta(t, 0.01, cfg.Lookup.BloomFP, 1e-12)
	assert.Equal(t, "swot/lib/domains", cfg.Dataset.Dir)
	assert.Equal(t, "swot/lib/domains/stoplist.txt", cfg.Dataset.Stoplist)
	assert.Equal(t, "swot/lib/domains/abused.txt", cfg.Dataset.Abused)
	assert.Equal(t, 8, cfg.Dataset.Workers)
	assert.Equal(t, []string{"data/tree.json"}, cfg.Output.Paths)
}

func TestLoad_ValidOverrides(t *testing.T) {
	t.Setenv("EDU_ENV", "dev")
	t.Setenv("EDU_LOG_LEVEL", "debug")
	t.Setenv("EDU_INDEX_PATH", "/var/lib/edu/tree.db")
	t.Setenv("EDU_INDEX_LOAD_TIMEOUT", "2s")
	t.Setenv("EDU_LOOKUP_CACHE_SIZE", "0")
	t.Setenv("EDU_LOOKUP_BLOOM_FP", "0.001")
	t.Setenv("EDU_DATASET_DIR", "/tmp/swot/lib/domains")
	t.Setenv("EDU_DATASET_STOPLIST", "/tmp/stop.txt")
	t.Setenv("EDU_DATASET_ABUSED", "/tmp/abused.txt")
	t.Setenv("EDU_DATASET_WORKERS", "32")
	t.Setenv("EDU_OUTPUT_PATHS", "out/tree.json, out/tree.yaml out/tree.db")
	t.Setenv("EDU_UNRELATED", "ignored")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/var/lib/edu/tree.db", cfg.Index.Path)
	assert.Equal(t, 2*time.Second, cfg.Index.LoadTimeout)
	assert.Equal(t, 0, cfg.Lookup.CacheSize)
	assert.InDelta(t, 0.001, cfg.Lookup.BloomFP, 1e-12)
	assert.Equal(t, "/tmp/swot/lib/domains", cfg.Dataset.Dir)
	assert.Equal(t, "/tmp/stop.txt", cfg.Dataset.Stoplist)
	assert.Equal(t, "/tmp/abused.txt", cfg.Dataset.Abused)
	assert.Equal(t, 32, cfg.Dataset.Workers)
	assert.Equal(t, []string{"out/tree.json", "out/tree.yaml", "out/tree.db"}, cfg.Output.Paths)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"env", "EDU_ENV", "staging"},
		{"log level", "EDU_LOG_LEVEL", "trace"},
		{"index extension", "EDU_INDEX_PATH", "data/tree.txt"},
		{"empty index path", "EDU_INDEX_PATH", ""},
		{"timeout not a duration", "EDU_INDEX_LOAD_TIMEOUT", "soon"},
		{"zero timeout", "EDU_INDEX_LOAD_TIMEOUT", "0s"},
		{"negative cache", "EDU_LOOKUP_CACHE_SIZE", "-1"},
		{"cache not a number", "EDU_LOOKUP_CACHE_SIZE", "lots"},
		{"bloom rate of one", "EDU_LOOKUP_BLOOM_FP", "1"},
		{"empty dataset dir", "EDU_DATASET_DIR", ""},
		{"zero workers", "EDU_DATASET_WORKERS", "0"},
		{"bad output", "EDU_OUTPUT_PATHS", "out/tree.json out/tree.csv"},
		{"no outputs", "EDU_OUTPUT_PATHS", " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestTransformEnv(t *testing.T) {
	k, v := transformEnv("EDU_LOG_LEVEL", "  warn ")
	assert.Equal(t, "log.level", k)
	assert.Equal(t, "warn", v)

	k, v = transformEnv("EDU_OUTPUT_PATHS", "a.json,b.db")
	assert.Equal(t, "output.paths", k)
	assert.Equal(t, []string{"a.json", "b.db"}, v)

	k, _ = transformEnv("EDU_NOT_A_KEY", "x")
	assert.Empty(t, k)
}

func TestValidArtifact(t *testing.T) {
	validate := validator.New()
	require.NoError(t, validate.RegisterValidation("artifact", validArtifact))

	type S struct {
		Path string `validate:"artifact"`
	}
	for path, ok := range map[string]bool{
		"tree.json":   true,
		"tree.YAML":   true,
		"tree.yml":    true,
		"tree.toml":   true,
		"a/b/tree.db": true,
		"tree.bolt":   true,
		"tree.txt":    false,
		"tree":        false,
		"":            false,
	} {
		err := validate.Struct(S{Path: path})
		if ok {
			assert.NoError(t, err, path)
		} else {
			assert.Error(t, err, path)
		}
	}
}

func TestLoad_WhenKoanfDefaultLoadFails(t *testing.T) {
	orig := defaultLoader
	t.Cleanup(func() { defaultLoader = orig })
	defaultLoader = func(*koanf.Koanf) error { return errors.New("mocked error") }

	_, err := Load()
	assert.ErrorContains(t, err, "mocked error")
}

func TestLoad_WhenKoanfEnvLoadFails(t *testing.T) {
	orig := envLoader
	t.Cleanup(func() { envLoader = orig })
	envLoader = func(*koanf.Koanf) error { return errors.New("mocked error") }

	_, err := Load()
	assert.ErrorContains(t, err, "mocked error")
}

func TestLoad_RegisterValidationFails(t *testing.T) {
	orig := registerValidation
	t.Cleanup(func() { registerValidation = orig })
	registerValidation = func(*validator.Validate) error { return errors.New("mocked validation error") }

	_, err := Load()
	assert.ErrorContains(t, err, "mocked validation error")
}

func TestDefaultLoader_InvalidDefault_ValidationFails(t *testing.T) {
	orig := DEFAULT_APP_CONFIG
	t.Cleanup(func() { DEFAULT_APP_CONFIG = orig })

	DEFAULT_APP_CONFIG.Output = OutputConfig{Paths: []string{"tree.csv"}}
	_, err := Load()
	assert.ErrorContains(t, err, "validation failed")
}
