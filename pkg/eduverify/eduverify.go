// Package eduverify classifies email addresses as belonging to educational
// institutions.
//
// The package-level functions share one Classifier configured from EDU_*
// environment variables; its index is read on first use. Use New to bind an
// independent Classifier to a specific artifact.
package eduverify

import (
	"context"
	"sync"

	"github.com/haukened/edu-verify/internal/edu/common/log"
	"github.com/haukened/edu-verify/internal/edu/config"
	"github.com/haukened/edu-verify/internal/edu/domain"
	"github.com/haukened/edu-verify/internal/edu/services/classifier"
)

// VerifyResult is the outcome of Verify.
type VerifyResult = domain.VerifyResult

// Status is one of StatusValid, StatusStoplist, StatusAbused or StatusInvalid.
type Status = domain.Status

const (
	// StatusValid is returned for a matched institutional domain.
	StatusValid = domain.StatusValid
	// StatusStoplist is returned for a domain on the stoplist.
	StatusStoplist = domain.StatusStoplist
	// StatusAbused is returned for a domain known to be abused.
	StatusAbused = domain.StatusAbused
	// StatusInvalid is returned for malformed addresses and unmatched domains.
	StatusInvalid = domain.StatusInvalid
)

// Classifier answers queries against one index artifact.
type Classifier = classifier.Classifier

// New returns a Classifier reading the artifact at path on first use, with
// the default lookup cache and Bloom settings.
func New(path string) *Classifier {
	return newClassifier(path, config.DEFAULT_APP_CONFIG, log.GetLogger())
}

func newClassifier(path string, cfg config.AppConfig, logger log.Logger) *Classifier {
	return classifier.New(classifier.Options{
		Loader:      classifier.FileLoader(path, logger),
		Logger:      logger,
		CacheSize:   cfg.Lookup.CacheSize,
		BloomFPRate: cfg.Lookup.BloomFP,
		LoadTimeout: cfg.Index.LoadTimeout,
	})
}

var defaultClassifier = sync.OnceValue(func() *Classifier {
	logger := log.GetLogger()
	cfg, err := config.Load()
	if err != nil {
		logger.Warn(map[string]any{"error": err.Error()}, "invalid configuration, using defaults")
		def := config.DEFAULT_APP_CONFIG
		cfg = &def
	}
	return newClassifier(cfg.Index.Path, *cfg, logger)
})

// Default returns the shared Classifier used by the package-level functions.
func Default() *Classifier { return defaultClassifier() }

// Warm loads the shared index now instead of on first query.
func Warm(ctx context.Context) error { return defaultClassifier().Warm(ctx) }

// Verify classifies email with the shared Classifier.
func Verify(email string) VerifyResult { return defaultClassifier().Verify(email) }

// SchoolName returns the institution names for email, or ok=false when the
// domain is unknown, nameless or flagged.
func SchoolName(email string) ([]string, bool) { return defaultClassifier().SchoolName(email) }

// SchoolNamePrimary returns the first institution name for email.
func SchoolNamePrimary(email string) (string, bool) {
	return defaultClassifier().SchoolNamePrimary(email)
}
