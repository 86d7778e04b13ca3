package dataset

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	logpkg "github.com/haukened/edu-verify/internal/edu/common/log"
	"github.com/haukened/edu-verify/internal/edu/domain"
)

// DefaultWorkers bounds concurrent file reads when the caller passes <= 0.
const DefaultWorkers = 8

// recordExtensions are the dataset file suffixes that carry a domain record.
var recordExtensions = []string{".txt", ".no-ext", ".edu"}

// KeyFromPath derives a Domain Key from a file path relative to the dataset
// root: edu/stanford.txt becomes [edu stanford]. Labels are lowercased.
func KeyFromPath(rel string) (domain.DomainKey, error) {
	rel = filepath.ToSlash(rel)
	ext := strings.ToLower(filepath.Ext(rel))
	if !slices.Contains(recordExtensions, ext) {
		return nil, fmt.Errorf("unsupported dataset file %q", rel)
	}
	rel = rel[:len(rel)-len(ext)]
	var labels []string
	for _, seg := range strings.Split(rel, "/") {
		if seg != "" {
			labels = append(labels, strings.ToLower(seg))
		}
	}
	return domain.KeyFromLabels(labels...)
}

// LoadDatasetDirectory walks dir and returns one DomainRecord per dataset
// file, sorted by Domain Key. Files are read by at most workers goroutines.
// Files directly under dir are lists, not records, and are ignored.
// Unreadable files and files whose path is not a valid Domain Key are
// skipped with a warning; only a missing or unreadable root is an error.
func LoadDatasetDirectory(ctx context.Context, dir string, logger logpkg.Logger, workers int) ([]domain.DomainRecord, error) {
	if logger == nil {
		logger = logpkg.NewNoopLogger()
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset root %s is not a directory", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			logger.Warn(map[string]any{"path": path, "error": err.Error()}, "skip_unreadable_path")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if filepath.Dir(path) == filepath.Clean(dir) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk dataset %s: %w", dir, err)
	}

	results := make([]*domain.DomainRecord, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, ok := loadRecord(dir, path, logger)
			if ok {
				results[i] = &rec
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.DomainRecord, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	slices.SortFunc(out, func(a, b domain.DomainRecord) int {
		return slices.Compare(a.Key, b.Key)
	})
	logger.Debug(map[string]any{"dir": dir, "files": len(paths), "records": len(out)}, "dataset_loaded")
	return out, nil
}

func loadRecord(root, path string, logger logpkg.Logger) (domain.DomainRecord, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		logger.Warn(map[string]any{"path": path, "error": err.Error()}, "skip_dataset_file")
		return domain.DomainRecord{}, false
	}
	key, err := KeyFromPath(rel)
	if err != nil {
		logger.Warn(map[string]any{"path": rel, "error": err.Error()}, "skip_dataset_file")
		return domain.DomainRecord{}, false
	}
	f, err := os.Open(path)
	if err != nil {
		logger.Warn(map[string]any{"path": rel, "error": err.Error()}, "skip_dataset_file")
		return domain.DomainRecord{}, false
	}
	defer f.Close()

	names, err := ExtractNames(f, rel, logger)
	if err != nil {
		logger.Warn(map[string]any{"path": rel, "error": err.Error()}, "skip_dataset_file")
		return domain.DomainRecord{}, false
	}
	rec, err := domain.NewDomainRecord(key, names, rel)
	if err != nil {
		logger.Warn(map[string]any{"path": rel, "error": err.Error()}, "skip_dataset_file")
		return domain.DomainRecord{}, false
	}
	return rec, true
}

// LoadOverrideFile opens path and parses it with ParseOverrideList.
// An empty path yields no records.
func LoadOverrideFile(path string, marker domain.Marker, logger logpkg.Logger) ([]domain.OverrideRecord, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s list: %w", marker, err)
	}
	defer f.Close()
	return ParseOverrideList(f, path, marker, logger)
}
