package index

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRegisterAndResolve(t *testing.T) {
	dir := t.TempDir()
	top := writeFile(t, dir, "top.v", "module top (clk);\n input clk;\nendmodule\n")
	core := writeFile(t, dir, "rtl/core.v", "module core (clk);\n input clk;\nendmodule\n")

	x := New()
	stats, err := x.Register(dir)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if stats.Files != 2 || stats.Modules != 2 {
		t.Fatalf("stats = %+v, want 2 files 2 modules", stats)
	}

	got, err := x.Resolve("top")
	if err != nil {
		t.Fatalf("Resolve(top) failed: %v", err)
	}
	if got != top {
		t.Fatalf("Resolve(top) = %q, want %q", got, top)
	}
	got, err = x.Resolve("core")
	if err != nil {
		t.Fatalf("Resolve(core) failed: %v", err)
	}
	if got != core {
		t.Fatalf("Resolve(core) = %q, want %q", got, core)
	}
}

func TestRegisterSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "multi.v",
		"module a (x); input x; endmodule\nmodule b (y); input y; endmodule\n")

	x := New()
	stats, err := x.Register(path)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if stats.Modules != 2 {
		t.Fatalf("stats = %+v, want 2 modules", stats)
	}
	if got := x.Modules(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Modules() = %v, want [a b]", got)
	}
}

func TestResolveUnknown(t *testing.T) {
	x := New()
	_, err := x.Resolve("ghost")
	if !errors.Is(err, ErrUnknownModule) {
		t.Fatalf("expected ErrUnknownModule, got %v", err)
	}
}

func TestResolveAmbiguous(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a/core.v", "module core (clk); input clk;\nendmodule\n")
	b := writeFile(t, dir, "b/core.v", "module core (clk); input clk;\nendmodule\n")

	x := New()
	if _, err := x.Register(dir); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, err := x.Resolve("core")
	if !errors.Is(err, ErrAmbiguousModule) {
		t.Fatalf("expected ErrAmbiguousModule, got %v", err)
	}
	for _, f := range []string{a, b} {
		if !strings.Contains(err.Error(), f) {
			t.Fatalf("error %q does not name offending file %q", err, f)
		}
	}
}

func TestRegisterWarnsOnModulelessFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.v", "// nothing to see here\n")
	writeFile(t, dir, "core.v", "module core (clk); input clk;\nendmodule\n")

	x := New()
	stats, err := x.Register(dir)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if len(stats.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one", stats.Warnings)
	}
	if _, err := x.Resolve("core"); err != nil {
		t.Fatalf("Resolve(core) failed: %v", err)
	}
}

func TestRegisterSkipsDotfilesAndOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".hidden.v", "module hidden (x); input x; endmodule\n")
	writeFile(t, dir, "readme.txt", "module fake (x); input x; endmodule\n")
	writeFile(t, dir, "core.sv", "module core (clk); input clk;\nendmodule\n")

	x := New()
	stats, err := x.Register(dir)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if stats.Files != 1 || stats.Modules != 1 {
		t.Fatalf("stats = %+v, want 1 file 1 module", stats)
	}
	if _, err := x.Resolve("hidden"); !errors.Is(err, ErrUnknownModule) {
		t.Fatalf("expected hidden module to be skipped, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a/core.v", "module core (clk); input clk;\nendmodule\n")
	b := writeFile(t, dir, "b/core.v", "module core (clk); input clk;\nendmodule\n")

	x := New()
	if _, err := x.Register(dir); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	x.Remove(filepath.Join(dir, "a"))

	got, err := x.Resolve("core")
	if err != nil {
		t.Fatalf("Resolve after Remove failed: %v", err)
	}
	if got != b {
		t.Fatalf("Resolve(core) = %q, want %q", got, b)
	}
}
