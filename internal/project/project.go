// Package project locates the MPR files a cutlist refers to inside a
// project folder.
package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MPRExtension is the file extension of machine programs.
const MPRExtension = ".mpr"

// ErrMissingMPR reports referenced MPR files that were not found.
var ErrMissingMPR = errors.New("mpr files not found")

// MissingError lists the names that could not be located.
type MissingError struct {
	Root  string
	Names []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%d mpr file(s) not found under %s: %s", len(e.Names), e.Root, strings.Join(e.Names, ", "))
}

func (e *MissingError) Unwrap() error { return ErrMissingMPR }

// Locate resolves each name to a path below root. A direct child of root
// wins; otherwise the first match of a recursive walk in lexical order is
// used. When any name is missing the returned error is a *MissingError
// together with the names that were found.
func Locate(ctx context.Context, root string, names []string) (map[string]string, error) {
	found := make(map[string]string, len(names))
	pending := map[string]struct{}{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		direct := filepath.Join(root, name)
		if info, err := os.Stat(direct); err == nil && !info.IsDir() {
			found[name] = direct
			continue
		}
		pending[filepath.Base(name)] = struct{}{}
		pending[name] = struct{}{}
	}

	if len(pending) > 0 {
		matches := map[string]string{}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			base := d.Name()
			if _, ok := pending[base]; ok {
				if _, seen := matches[base]; !seen {
					matches[base] = path
				}
			}
			return nil
		})
		if err != nil {
			return found, fmt.Errorf("search %s: %w", root, err)
		}
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, ok := found[name]; ok {
				continue
			}
			if path, ok := matches[filepath.Base(name)]; ok {
				found[name] = path
			}
		}
	}

	var missing []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := found[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		missing = compact(missing)
		return found, &MissingError{Root: root, Names: missing}
	}
	return found, nil
}

// Scan returns every MPR file below root, sorted by path.
func Scan(ctx context.Context, root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), MPRExtension) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(out)
	return out, nil
}

func compact(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
