package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/haukened/edu-verify/internal/edu/repos/artifact"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	Log     LogConfig     `koanf:"log"`
	Index   IndexConfig   `koanf:"index"`
	Lookup  LookupConfig  `koanf:"lookup"`
	Dataset DatasetConfig `koanf:"dataset"`
	Output  OutputConfig  `koanf:"output"`
}

// LogConfig controls log verbosity: "debug", "info", "warn", or "error".
type LogConfig struct {
	Level string `koanf:"level" validate:"required,oneof=debug info warn error"`
}

// IndexConfig locates the artifact the classifier loads.
type IndexConfig struct {
	Path        string        `koanf:"path" validate:"required,artifact"`
	LoadTimeout time.Duration `koanf:"load_timeout" validate:"gt=0"`
}

// LookupConfig tunes the query path. Zero disables the cache or the Bloom
// prefilter respectively.
type LookupConfig struct {
	CacheSize int     `koanf:"cache_size" validate:"gte=0"`
	BloomFP   float64 `koanf:"bloom_fp" validate:"gte=0,lt=1"`
}

// DatasetConfig locates the build inputs.
type DatasetConfig struct {
	Dir      string `koanf:"dir" validate:"required"`
	Stoplist string `koanf:"stoplist"`
	Abused   string `koanf:"abused"`
	Workers  int    `koanf:"workers" validate:"gte=1,lte=256"`
}

// OutputConfig lists the artifacts a build writes.
type OutputConfig struct {
	Paths []string `koanf:"paths" validate:"required,min=1,dive,artifact"`
}

// DEFAULT_APP_CONFIG defines the default configuration: a JSON artifact under
// data/, a small decision cache, a 1% Bloom prefilter and a swot checkout as
// the dataset.
var DEFAULT_APP_CONFIG = AppConfig{
	Env: "prod",
	Log: LogConfig{Level: "info"},
	Index: IndexConfig{
		Path:        "data/tree.json",
		LoadTimeout: 10 * time.Second,
	},
	Lookup: LookupConfig{
		CacheSize: 1024,
		BloomFP:   0.01,
	},
	Dataset: DatasetConfig{
		Dir:      "swot/lib/domains",
		Stoplist: "swot/lib/domains/stoplist.txt",
		Abused:   "swot/lib/domains/abused.txt",
		Workers:  8,
	},
	Output: OutputConfig{
		Paths: []string{"data/tree.json"},
	},
}

// envKeys maps environment variable names (without the EDU_ prefix) to
// koanf keys. Variables not listed here are ignored.
var envKeys = map[string]string{
	"ENV":                "env",
	"LOG_LEVEL":          "log.level",
	"INDEX_PATH":         "index.path",
	"INDEX_LOAD_TIMEOUT": "index.load_timeout",
	"LOOKUP_CACHE_SIZE":  "lookup.cache_size",
	"LOOKUP_BLOOM_FP":    "lookup.bloom_fp",
	"DATASET_DIR":        "dataset.dir",
	"DATASET_STOPLIST":   "dataset.stoplist",
	"DATASET_ABUSED":     "dataset.abused",
	"DATASET_WORKERS":    "dataset.workers",
	"OUTPUT_PATHS":       "output.paths",
}

// listKeys are split on spaces and commas.
var listKeys = map[string]bool{
	"output.paths": true,
}

// validArtifact reports whether the field names a path with a supported
// artifact extension.
func validArtifact(fl validator.FieldLevel) bool {
	return artifact.Supported(fl.Field().String())
}

// transformEnv maps an EDU_ variable onto its koanf key. An empty key tells
// the provider to skip the variable.
func transformEnv(key, value string) (string, any) {
	k, ok := envKeys[strings.TrimPrefix(key, "EDU_")]
	if !ok {
		return "", nil
	}
	value = strings.TrimSpace(value)
	if listKeys[k] {
		return k, strings.FieldsFunc(value, func(r rune) bool {
			return r == ' ' || r == ','
		})
	}
	return k, value
}

// envLoader loads environment variables with the prefix "EDU_" and can be
// mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix:        "EDU_",
		TransformFunc: transformEnv,
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG through the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the "artifact" tag with the provided validator.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("artifact", validArtifact)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}
	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &cfg, nil
}
