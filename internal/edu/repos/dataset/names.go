// Package dataset reads the per-domain dataset tree and the override lists
// that feed the index builder.
package dataset

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	logpkg "github.com/haukened/edu-verify/internal/edu/common/log"
	"github.com/haukened/edu-verify/internal/edu/domain"
)

// citationPrefix matches a leading "12: " or "3 - " numbering.
var citationPrefix = regexp.MustCompile(`^\d+\s*[:-]\s*`)

// ExtractNames reads display names from one dataset file.
//
// Behavior:
// - Skips blank lines, '#' comments and bare http(s) URLs
// - Strips a leading numbered citation prefix such as "1: " or "2 - "
// - Splits comma-separated lines into independent names, trimming each
// - De-duplicates while preserving first-seen order
// - Drops names that collide with a reserved artifact token
func ExtractNames(r io.Reader, source string, logger logpkg.Logger) ([]string, error) {
	if logger == nil {
		logger = logpkg.NewNoopLogger()
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	seen := make(map[string]struct{})
	out := make([]string, 0, 2)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			logger.Debug(map[string]any{"source": source, "line": lineNum}, "skip_comment")
			continue
		}
		if isURL(trimmed) {
			logger.Debug(map[string]any{"source": source, "line": lineNum}, "skip_url")
			continue
		}

		clean := citationPrefix.ReplaceAllString(trimmed, "")
		for _, part := range strings.Split(clean, ",") {
			name := strings.TrimSpace(part)
			if name == "" {
				continue
			}
			if domain.IsReservedToken(name) {
				logger.Warn(map[string]any{"source": source, "line": lineNum, "name": name}, "skip_reserved_name")
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func isURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
