// Package artifact reads and writes the serialized index. The format is
// chosen from the file extension: JSON (canonical), YAML and TOML go
// through the koanf parsers, .db and .bolt through the bbolt store.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/haukened/edu-verify/internal/edu/common/log"
	"github.com/haukened/edu-verify/internal/edu/repos/index"
	"github.com/haukened/edu-verify/internal/edu/repos/index/bolt"
)

// ErrUnsupportedFormat is returned for paths with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported artifact format")

// Format identifies an artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatBolt Format = "bolt"
)

// FormatOf picks the format from the path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".db", ".bolt":
		return FormatBolt, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Supported reports whether path has an extension this package can handle.
func Supported(path string) bool {
	_, err := FormatOf(path)
	return err == nil
}

func parserFor(f Format) koanf.Parser {
	switch f {
	case FormatJSON:
		return json.Parser()
	case FormatYAML:
		return yaml.Parser()
	case FormatTOML:
		return toml.Parser()
	}
	return nil
}

// Load reads the artifact at path and returns the decoded index.
// ctx is checked before the read and before decoding.
func Load(ctx context.Context, path string, logger log.Logger) (*index.Index, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if f == FormatBolt {
		st, err := bolt.OpenReadOnly(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open artifact %s: %w", path, err)
		}
		defer st.Close()
		ix, err := st.Load(logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load artifact %s: %w", path, err)
		}
		return ix, nil
	}

	b, err := file.Provider(path).ReadBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := parserFor(f).Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	ix, err := index.Decode(raw, logger)
	if err != nil {
		return nil, fmt.Errorf("invalid artifact %s: %w", path, err)
	}
	logger.Debug(map[string]any{"path": path, "format": string(f), "bytes": len(b)}, "artifact_loaded")
	return ix, nil
}

// Written describes an artifact produced by Save.
type Written struct {
	Format  Format
	Entries uint64 // keys holding an entry
	Bytes   int64  // size on disk
}

// Save writes ix to path in the format its extension selects. Text formats
// are written to a temporary file in the same directory and renamed into
// place, so a concurrent reader sees either the old or the new artifact.
func Save(path string, ix *index.Index, meta bolt.Meta) (Written, error) {
	f, err := FormatOf(path)
	if err != nil {
		return Written{}, err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Written{}, fmt.Errorf("failed to create artifact directory: %w", err)
		}
	}

	if f == FormatBolt {
		return saveBolt(path, ix, meta)
	}

	b, err := parserFor(f).Marshal(index.Encode(ix))
	if err != nil {
		return Written{}, fmt.Errorf("failed to encode artifact %s: %w", path, err)
	}
	if err := writeAtomic(path, b); err != nil {
		return Written{}, err
	}
	return Written{Format: f, Entries: uint64(ix.Len()), Bytes: int64(len(b))}, nil
}

// saveBolt replaces the snapshot in the bbolt file at path and reports the
// stored entry count read back from the database.
func saveBolt(path string, ix *index.Index, meta bolt.Meta) (Written, error) {
	st, err := bolt.New(path)
	if err != nil {
		return Written{}, fmt.Errorf("failed to open artifact %s: %w", path, err)
	}
	if err := st.Save(ix, meta); err != nil {
		_ = st.Close()
		return Written{}, fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	stats := st.Stats()
	if err := st.Close(); err != nil {
		return Written{}, err
	}
	w := Written{Format: FormatBolt, Entries: stats.Entries}
	if fi, err := os.Stat(path); err == nil {
		w.Bytes = fi.Size()
	}
	return w, nil
}

func writeAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace artifact %s: %w", path, err)
	}
	return nil
}
