// Package index builds the module-definition index: a mapping from Verilog
// module type names to the files that define them, collected by scanning a
// source tree. Duplicate definitions are recorded as-is and only rejected
// when a type is actually resolved, so unrelated duplicates in a large tree
// never block a run.
package index

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/obowen/fpga-wavetrace/internal/scanner"
)

var (
	// ErrUnknownModule means no registered file defines the type.
	ErrUnknownModule = errors.New("unknown module")
	// ErrAmbiguousModule means more than one registered file defines
	// the type.
	ErrAmbiguousModule = errors.New("ambiguous module")
)

// Index accumulates (module type, defining file) pairs from registered
// sources. Registration never deduplicates; Resolve validates lazily.
type Index struct {
	defs  map[string][]string
	order []string // registration order of module types, for listings
}

// Stats summarizes one Register call.
type Stats struct {
	// Files is the number of Verilog files scanned.
	Files int
	// Modules is the number of module definitions recorded.
	Modules int
	// Warnings lists files that were skipped because no module could
	// be found in them.
	Warnings []string
}

// New returns an empty index.
func New() *Index {
	return &Index{defs: make(map[string][]string)}
}

// Register scans a single Verilog file, or a directory tree of `.v`/`.sv`
// files (dotfiles skipped), and records every module definition found.
// Files in which no module can be located are skipped with a warning in the
// returned stats; an unreadable path is an error.
func (x *Index) Register(path string) (Stats, error) {
	var stats Stats

	path = expandHome(path)
	info, err := os.Stat(path)
	if err != nil {
		return stats, fmt.Errorf("invalid path or directory %q: %w", path, err)
	}

	var vfiles []string
	if !info.IsDir() {
		vfiles = append(vfiles, path)
	} else {
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") {
				return nil
			}
			if strings.HasSuffix(name, ".v") || strings.HasSuffix(name, ".sv") {
				vfiles = append(vfiles, p)
			}
			return nil
		})
		if err != nil {
			return stats, fmt.Errorf("walking source directory %q: %w", path, err)
		}
	}

	for _, fname := range vfiles {
		f, err := scanner.Load(fname)
		if err != nil {
			return stats, err
		}
		stats.Files++
		mods := f.Modules()
		if len(mods) == 0 {
			stats.Warnings = append(stats.Warnings,
				fmt.Sprintf("unable to locate verilog module in file '%s'", fname))
			continue
		}
		for _, m := range mods {
			if _, seen := x.defs[m]; !seen {
				x.order = append(x.order, m)
			}
			x.defs[m] = append(x.defs[m], fname)
			stats.Modules++
		}
	}
	return stats, nil
}

// Remove drops every module definition recorded from the given file, or
// from any file under the given directory.
func (x *Index) Remove(path string) {
	path = expandHome(path)
	prefix := strings.TrimSuffix(path, string(filepath.Separator)) + string(filepath.Separator)
	match := func(file string) bool {
		return file == path || strings.HasPrefix(file, prefix)
	}
	for name, files := range x.defs {
		kept := files[:0]
		for _, f := range files {
			if !match(f) {
				kept = append(kept, f)
			}
		}
		if len(kept) == 0 {
			delete(x.defs, name)
		} else {
			x.defs[name] = kept
		}
	}
}

// Resolve returns the one file defining the module type. It fails if the
// type is unknown, or if multiple registered files define it (all offending
// files are listed so the caller can exclude some sources).
func (x *Index) Resolve(moduleType string) (string, error) {
	files := x.defs[moduleType]
	switch len(files) {
	case 0:
		return "", fmt.Errorf("%w: '%s'", ErrUnknownModule, moduleType)
	case 1:
		return files[0], nil
	}
	return "", fmt.Errorf("%w: found multiple definitions for module '%s' in these files: %s",
		ErrAmbiguousModule, moduleType, strings.Join(files, ", "))
}

// Modules lists every known module type in registration order.
func (x *Index) Modules() []string {
	out := make([]string, 0, len(x.order))
	for _, name := range x.order {
		if _, ok := x.defs[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
