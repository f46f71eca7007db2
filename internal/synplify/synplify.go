// Package synplify rewrites a Synplify Pro project file so that a
// synthesis run picks up the generated debug sources. The added lines
// live between marker comments, which lets repeated runs replace the
// previous block instead of stacking duplicates.
package synplify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// marker delimits the region of the .prj file owned by the generator.
// Anything between two marker lines is discarded on the next run.
const marker = "#---WT_DEBUG---"

// Patch rewrites the project file at prjPath to include the capture HDL
// sources and the generated debug files. Any marker region left over
// from a previous run is stripped first. The project line referencing
// the original top-level file (<top>.v) is commented out, since the
// debug copy replaces it.
func Patch(prjPath string, captureSources, debugFiles []string, top string) error {
	data, err := os.ReadFile(prjPath)
	if err != nil {
		return fmt.Errorf("reading project file: %w", err)
	}

	var out strings.Builder
	out.WriteString(marker + "\r\n")
	for _, src := range captureSources {
		fmt.Fprintf(&out, "add_file -verilog %q\r\n", src)
	}
	for _, f := range debugFiles {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolving debug file %s: %w", f, err)
		}
		fmt.Fprintf(&out, "add_file -verilog %q\r\n", abs)
	}
	out.WriteString(marker + "\r\n")

	// Write back the original lines, dropping any stale marker region.
	inRegion := false
	for _, line := range strings.SplitAfter(string(data), "\n") {
		if line == "" {
			continue
		}
		if strings.Contains(line, "---WT_DEBUG---") {
			inRegion = !inRegion
			continue
		}
		if inRegion {
			continue
		}
		if top != "" && strings.Contains(line, top+".v") && !strings.HasPrefix(line, "#") {
			line = "#" + line
		}
		out.WriteString(line)
	}

	if err := os.WriteFile(prjPath, []byte(out.String()), 0o644); err != nil {
		return fmt.Errorf("writing project file: %w", err)
	}
	return nil
}
