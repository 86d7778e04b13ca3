package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/haukened/edu-verify/internal/edu/common/log"
	"github.com/haukened/edu-verify/internal/edu/config"
	"github.com/haukened/edu-verify/internal/edu/domain"
	"github.com/haukened/edu-verify/internal/edu/services/classifier"
)

const (
	version = "0.1.0-dev"
	appName = "eduverify"
)

// report is one JSON line of output.
type report struct {
	Email   string        `json:"email"`
	Valid   bool          `json:"valid"`
	Status  domain.Status `json:"status"`
	Domain  string        `json:"domain,omitempty"`
	Names   []string      `json:"names,omitempty"`
	Primary string        `json:"primary,omitempty"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if err := log.Configure(cfg.Env, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}
	log.Debug(map[string]any{
		"version": version,
		"env":     cfg.Env,
		"index":   cfg.Index.Path,
	}, "Starting "+appName)

	c := buildClassifier(cfg, log.GetLogger())
	if err := run(context.Background(), c, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatal(map[string]any{"error": err.Error()}, "eduverify failed")
	}
}

// buildClassifier wires the classifier from configuration.
func buildClassifier(cfg *config.AppConfig, logger log.Logger) *classifier.Classifier {
	return classifier.New(classifier.Options{
		Loader:      classifier.FileLoader(cfg.Index.Path, logger),
		Logger:      logger,
		CacheSize:   cfg.Lookup.CacheSize,
		BloomFPRate: cfg.Lookup.BloomFP,
		LoadTimeout: cfg.Index.LoadTimeout,
	})
}

// run classifies each argument, or each non-blank stdin line when there are
// no arguments (or the single argument "-"), writing one JSON object per line.
func run(ctx context.Context, c *classifier.Classifier, args []string, in io.Reader, out io.Writer) error {
	if err := c.Warm(ctx); err != nil {
		log.Warn(map[string]any{"error": err.Error()}, "index unavailable, every address will be invalid")
	}
	defer logStats(log.GetLogger(), c)

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	emit := func(email string) error {
		return enc.Encode(classify(c, email))
	}

	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		for _, a := range args {
			if err := emit(a); err != nil {
				return err
			}
		}
		return nil
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := emit(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// logStats reports lookup counters at debug level once input is exhausted.
func logStats(logger log.Logger, c *classifier.Classifier) {
	st := c.Stats()
	logger.Debug(map[string]any{
		"entries":       st.Index.Entries,
		"cache_hits":    st.Hits,
		"cache_misses":  st.Misses,
		"cached":        st.Cached,
		"bloom_enabled": st.BloomEnabled,
		"bloom_rejects": st.BloomRejects,
	}, "lookup stats")
}

func classify(c *classifier.Classifier, email string) report {
	r := report{Email: email}
	m, ok := c.Lookup(email)
	if !ok {
		res := domain.InvalidResult()
		r.Valid, r.Status = res.Valid, res.Status
		return r
	}
	res := m.Result()
	r.Valid, r.Status = res.Valid, res.Status
	r.Domain = m.Key.String()
	if names, ok := m.Names(); ok {
		r.Names = names
		r.Primary = names[0]
	}
	return r
}
