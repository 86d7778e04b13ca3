// Package builder runs the offline build: dataset tree and override lists in,
// one index out, written to every configured artifact path.
package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/haukened/edu-verify/internal/edu/common/clock"
	"github.com/haukened/edu-verify/internal/edu/common/log"
	"github.com/haukened/edu-verify/internal/edu/domain"
	"github.com/haukened/edu-verify/internal/edu/repos/artifact"
	"github.com/haukened/edu-verify/internal/edu/repos/dataset"
	"github.com/haukened/edu-verify/internal/edu/repos/index"
	"github.com/haukened/edu-verify/internal/edu/repos/index/bolt"
)

// ErrNoOutputs is returned by Run when no artifact path is configured.
var ErrNoOutputs = errors.New("no output paths configured")

// Options configures a build.
type Options struct {
	DatasetDir string
	Stoplist   string // optional; a missing file is logged and skipped
	Abused     string // optional; a missing file is logged and skipped
	Workers    int
	Outputs    []string
	Logger     log.Logger
	Clock      clock.Clock
}

// Summary reports what a build produced.
type Summary struct {
	Records   int
	Stoplist  int
	Abused    int
	Index     index.Stats
	Outputs   []string
	BuiltUnix int64
}

// Service builds and writes index artifacts.
type Service struct {
	opts   Options
	logger log.Logger
	clock  clock.Clock
}

// New constructs a Service. A nil Logger or Clock falls back to the noop
// logger and the real clock.
func New(opts Options) *Service {
	s := &Service{opts: opts, logger: opts.Logger, clock: opts.Clock}
	if s.logger == nil {
		s.logger = log.NewNoopLogger()
	}
	s.logger = s.logger.With(map[string]any{"component": "builder"})
	if s.clock == nil {
		s.clock = clock.RealClock{}
	}
	return s
}

// Build loads the dataset and both override lists and returns the index.
// Dataset records go in first; overrides are applied after all of them.
func (s *Service) Build(ctx context.Context) (*index.Index, Summary, error) {
	var sum Summary

	records, err := dataset.LoadDatasetDirectory(ctx, s.opts.DatasetDir, s.logger, s.opts.Workers)
	if err != nil {
		return nil, sum, fmt.Errorf("failed to load dataset: %w", err)
	}
	stop := s.loadOverrides(s.opts.Stoplist, domain.MarkerStoplist)
	abused := s.loadOverrides(s.opts.Abused, domain.MarkerAbused)

	b := index.NewBuilder(s.logger)
	for _, r := range records {
		if err := b.AddRecord(r); err != nil {
			s.logger.Warn(map[string]any{"source": r.Source, "error": err.Error()}, "skip_record")
			continue
		}
		sum.Records++
	}
	for _, o := range append(stop, abused...) {
		if err := b.AddOverride(o); err != nil {
			s.logger.Warn(map[string]any{"source": o.Source, "error": err.Error()}, "skip_override")
			continue
		}
		if o.Marker == domain.MarkerStoplist {
			sum.Stoplist++
		} else {
			sum.Abused++
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, sum, err
	}

	ix := b.Build()
	sum.Index = ix.Stats()
	sum.BuiltUnix = s.clock.Now().Unix()
	return ix, sum, nil
}

// Run builds the index and writes it to every output path. All outputs are
// attempted; the first write error is returned.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	if len(s.opts.Outputs) == 0 {
		return Summary{}, ErrNoOutputs
	}
	ix, sum, err := s.Build(ctx)
	if err != nil {
		return sum, err
	}

	meta := bolt.Meta{Version: uint64(sum.BuiltUnix), UpdatedUnix: sum.BuiltUnix}
	var firstErr error
	for _, path := range s.opts.Outputs {
		w, err := artifact.Save(path, ix, meta)
		if err != nil {
			s.logger.Error(map[string]any{"path": path, "error": err.Error()}, "artifact_write_failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		sum.Outputs = append(sum.Outputs, path)
		s.logger.Debug(map[string]any{
			"path":    path,
			"format":  string(w.Format),
			"entries": w.Entries,
			"bytes":   w.Bytes,
		}, "artifact_written")
	}

	s.logger.Info(map[string]any{
		"records":  sum.Records,
		"stoplist": sum.Stoplist,
		"abused":   sum.Abused,
		"entries":  sum.Index.Entries,
		"named":    sum.Index.Named,
		"depth":    sum.Index.MaxDepth,
		"outputs":  sum.Outputs,
	}, "build complete")
	return sum, firstErr
}

func (s *Service) loadOverrides(path string, m domain.Marker) []domain.OverrideRecord {
	recs, err := dataset.LoadOverrideFile(path, m, s.logger)
	if err != nil {
		s.logger.Warn(map[string]any{"path": path, "marker": m.String(), "error": err.Error()}, "skip_override_list")
		return nil
	}
	return recs
}
