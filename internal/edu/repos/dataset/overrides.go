package dataset

import (
	"bufio"
	"io"
	"strings"

	logpkg "github.com/haukened/edu-verify/internal/edu/common/log"
	"github.com/haukened/edu-verify/internal/edu/common/utils"
	"github.com/haukened/edu-verify/internal/edu/domain"
)

// ParseOverrideList parses a newline-delimited list of domains into override
// records carrying marker.
//
// Behavior:
// - Supports comments starting with '#' (inline or whole-line)
// - Lowercases, trims whitespace and trailing dots
// - Skips empty lines and names that are not valid domains
// - De-duplicates while preserving first-seen order
func ParseOverrideList(r io.Reader, source string, marker domain.Marker, logger logpkg.Logger) ([]domain.OverrideRecord, error) {
	if logger == nil {
		logger = logpkg.NewNoopLogger()
	}
	scanner := bufio.NewScanner(r)

	seen := make(map[string]struct{})
	out := make([]domain.OverrideRecord, 0, 256)
	logger.Debug(map[string]any{"source": source, "marker": marker.String()}, "parse_override_list_start")
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimPrefix(scanner.Text(), "\uFEFF")

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}

		name := utils.CanonicalDomain(line)
		key, err := domain.KeyFromDomain(name)
		if err != nil {
			logger.Debug(map[string]any{"source": source, "line": lineNum, "name": name, "error": err.Error()}, "skip_invalid_domain")
			continue
		}
		if _, ok := seen[name]; ok {
			logger.Debug(map[string]any{"source": source, "line": lineNum, "name": name}, "skip_duplicate")
			continue
		}
		rec, err := domain.NewOverrideRecord(key, marker, source)
		if err != nil {
			logger.Debug(map[string]any{"source": source, "line": lineNum, "name": name, "error": err.Error()}, "skip_constructor_error")
			continue
		}
		seen[name] = struct{}{}
		out = append(out, rec)
	}

	if err := scanner.Err(); err != nil {
		logger.Debug(map[string]any{"source": source, "error": err.Error()}, "parse_override_list_scan_error")
		return nil, err
	}
	logger.Debug(map[string]any{"source": source, "count": len(out)}, "parse_override_list_done")
	return out, nil
}
