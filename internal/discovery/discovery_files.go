// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover walks the root and returns every regular, non-symlinked file whose
// name ends with one of the configured extensions.
//
// Candidates are ordered by extension (in configured order) and, within an
// extension, by lexical walk order. A path is reported at most once even when
// it matches several extensions; the first configured extension wins.
//
// A missing or non-directory root is fatal. Unreadable subdirectories are
// reported as diagnostics and skipped.
func (d *Discovery) Discover(ctx context.Context) (*Result, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	walkRoot, err := d.resolveRoot()
	if err != nil {
		return nil, err
	}

	extensions := dedupe(d.extensions)
	buckets := make(map[string][]Candidate, len(extensions))
	maxDepth := d.EffectiveMaxDepth()
	result := &Result{}

	walkErr := filepath.WalkDir(walkRoot, func(path string, entry fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == walkRoot {
				return err
			}
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeDirUnreadable,
				Message:  "skipping unreadable directory",
				Path:     path,
				Cause:    err,
			})
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == walkRoot {
			return nil
		}

		rel, relErr := filepath.Rel(walkRoot, path)
		if relErr != nil {
			return relErr
		}
		slashRel := filepath.ToSlash(rel)

		if entry.Type()&fs.ModeSymlink != 0 {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Severity: SeverityInfo,
				Code:     CodeSymlinkSkipped,
				Message:  "not following symbolic link",
				Path:     filepath.Join(d.root, rel),
			})
			return nil
		}

		if entry.IsDir() {
			if d.isExcluded(slashRel) || d.isExcluded(slashRel+"/") {
				return filepath.SkipDir
			}
			if dirDepth(slashRel) > maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if !entry.Type().IsRegular() || d.isExcluded(slashRel) {
			return nil
		}

		ext, ok := matchExtension(entry.Name(), extensions)
		if !ok {
			return nil
		}
		buckets[ext] = append(buckets[ext], Candidate{
			Path:      filepath.Join(d.root, rel),
			Extension: ext,
			Depth:     strings.Count(slashRel, "/"),
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", d.root, walkErr)
	}

	for _, ext := range extensions {
		result.Candidates = append(result.Candidates, buckets[ext]...)
	}
	return result, nil
}

// resolveRoot checks that the root is an existing directory and returns the
// path to walk. A root that is itself a symlink to a directory is resolved so
// the walk can enter it; links below the root are never followed.
func (d *Discovery) resolveRoot() (string, error) {
	info, err := os.Stat(d.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrRootNotFound, d.root)
		}
		return "", fmt.Errorf("stat discovery root %s: %w", d.root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrRootNotDir, d.root)
	}

	linfo, err := os.Lstat(d.root)
	if err == nil && linfo.Mode()&fs.ModeSymlink != 0 {
		resolved, evalErr := filepath.EvalSymlinks(d.root)
		if evalErr != nil {
			return "", fmt.Errorf("resolve discovery root %s: %w", d.root, evalErr)
		}
		return resolved, nil
	}
	return d.root, nil
}

// isExcluded reports whether the slash-separated relative path matches any
// exclude pattern.
func (d *Discovery) isExcluded(rel string) bool {
	for _, pat := range d.excludes {
		if matched, matchErr := doublestar.Match(pat, rel); matchErr == nil && matched {
			return true
		}
	}
	return false
}

// dirDepth returns the depth of a directory given its slash-separated path
// relative to the root ("a" is 1, "a/b" is 2).
func dirDepth(rel string) int {
	return strings.Count(rel, "/") + 1
}

// matchExtension returns the first extension that name ends with.
func matchExtension(name string, extensions []string) (string, bool) {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return ext, true
		}
	}
	return "", false
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
