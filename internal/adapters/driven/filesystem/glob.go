package filesystem

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/yargevad/filepathx"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/logger"
)

// Expand resolves paths, directories and glob patterns (including "**")
// into PDF upload files. A directory contributes the PDFs directly inside
// it. Explicitly named files must be PDFs; files matched by a pattern or
// found in a directory are skipped when they are not.
//
// The result is de-duplicated by filename, keeping the first match.
func Expand(args []string) ([]domain.UploadFile, error) {
	var files []domain.UploadFile
	seen := make(map[string]bool)

	add := func(path string, strict bool) error {
		if !strict && !IsPDF(path) {
			return nil
		}
		f, err := Load(path)
		if err != nil {
			if strict {
				return err
			}
			logger.Warn("skipping %s: %v", path, err)
			return nil
		}
		if seen[f.Name] {
			logger.Debug("skipping duplicate %s", path)
			return nil
		}
		seen[f.Name] = true
		files = append(files, f)
		return nil
	}

	for _, arg := range args {
		if hasMeta(arg) {
			matches, err := filepathx.Glob(arg)
			if err != nil {
				return nil, fmt.Errorf("%w: pattern %q: %w", domain.ErrValidation, arg, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("%w: no files match %q", domain.ErrValidation, arg)
			}
			sort.Strings(matches)
			for _, m := range matches {
				if info, err := os.Stat(m); err != nil || info.IsDir() {
					continue
				}
				if err := add(m, false); err != nil {
					return nil, err
				}
			}
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			if err := add(arg, true); err != nil {
				return nil, err
			}
			continue
		}

		found, err := New(arg).Scan()
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if err := add(f.Path, false); err != nil {
				return nil, err
			}
		}
	}

	return files, nil
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, "*?[")
}
