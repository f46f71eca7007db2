// Package trace ties the pipeline together: it collects source paths and
// net selections, builds the debug hierarchy, and drives the patcher to
// emit instrumented Verilog plus the signal list.
package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/obowen/fpga-wavetrace/internal/config"
	"github.com/obowen/fpga-wavetrace/internal/hierarchy"
	"github.com/obowen/fpga-wavetrace/internal/index"
	"github.com/obowen/fpga-wavetrace/internal/netpath"
	"github.com/obowen/fpga-wavetrace/internal/patch"
)

// Setup collects everything needed for one generation run: source files,
// the top-level module, clock and reset nets, and the nets to capture.
// Methods are meant to be called in builder style, with Generate last.
type Setup struct {
	clockMHz     float64
	uartBaud     int
	preTrigDepth int
	captDepth    int

	idx       *index.Index
	top       string
	clk       string
	rst       string
	netPaths  []string
	outputDir string

	out io.Writer
}

// Result describes the artifacts produced by a Generate run.
type Result struct {
	// Files lists the generated debug Verilog files, top level first.
	Files []string
	// SignalList is the path of the written signal list file.
	SignalList string
	// DataBits is the total width of the debug vector.
	DataBits int
}

// NewSetup returns a Setup for a design clocked at clockMHz, with default
// capture parameters.
func NewSetup(clockMHz float64) *Setup {
	return &Setup{
		clockMHz:     clockMHz,
		uartBaud:     115200,
		preTrigDepth: 64,
		captDepth:    512,
		idx:          index.New(),
		outputDir:    "output",
		out:          os.Stdout,
	}
}

// FromConfig builds a Setup from a loaded configuration, registering all
// its source paths.
func FromConfig(cfg *config.Config) (*Setup, error) {
	s := NewSetup(cfg.Capture.ClockMHz)
	s.uartBaud = cfg.Capture.UartBaud
	s.preTrigDepth = cfg.Capture.PreTrigDepth
	s.captDepth = cfg.Capture.CaptDepth
	s.outputDir = cfg.OutputDir

	for _, src := range cfg.Sources {
		if err := s.AddSources(src); err != nil {
			return nil, err
		}
	}
	if err := s.Top(cfg.Top); err != nil {
		return nil, err
	}
	if err := s.Clk(cfg.Clock); err != nil {
		return nil, err
	}
	if err := s.Rst(cfg.Reset); err != nil {
		return nil, err
	}
	if err := s.Net(cfg.NetPaths()...); err != nil {
		return nil, err
	}
	return s, nil
}

// Output redirects progress and tree printout, which default to stdout.
func (s *Setup) Output(w io.Writer) { s.out = w }

// UartBaud overrides the default UART baud rate.
func (s *Setup) UartBaud(baud int) { s.uartBaud = baud }

// PreTrigDepth overrides the default pre-trigger capture depth.
func (s *Setup) PreTrigDepth(depth int) { s.preTrigDepth = depth }

// CaptDepth overrides the default post-trigger capture depth.
func (s *Setup) CaptDepth(depth int) { s.captDepth = depth }

// OutputDir overrides where generated files are written.
func (s *Setup) OutputDir(dir string) { s.outputDir = dir }

// AddSources registers a Verilog file, or every .v/.sv file under a
// directory tree, as candidate module definitions.
func (s *Setup) AddSources(path string) error {
	fmt.Fprintf(s.out, "Adding sources from '%s'...\n", path)
	stats, err := s.idx.Register(path)
	if err != nil {
		return err
	}
	for _, w := range stats.Warnings {
		fmt.Fprintf(s.out, "Warning: %s\n", w)
	}
	fmt.Fprintf(s.out, "Found %d modules in %d verilog files\n\n", stats.Modules, stats.Files)
	return nil
}

// RemoveSources drops previously registered definitions from a file or
// directory, for excluding testbenches or duplicate libraries.
func (s *Setup) RemoveSources(path string) {
	s.idx.Remove(path)
}

// Top selects the top-level module type. The module must be defined in
// exactly one registered source file.
func (s *Setup) Top(moduleType string) error {
	if _, err := s.idx.Resolve(moduleType); err != nil {
		return fmt.Errorf("cannot find top level module %q: %w", moduleType, err)
	}
	s.top = moduleType
	return nil
}

// Clk selects the capture clock. Hierarchical nets are not supported;
// the clock must be local to the top module.
func (s *Setup) Clk(net string) error {
	if strings.Contains(net, ".") {
		return fmt.Errorf("hierarchical clock nets are not supported, use a top-level clock net instead")
	}
	s.clk = net
	return nil
}

// Rst selects the reset net for the capture module. Like the clock, it
// must be local to the top module.
func (s *Setup) Rst(net string) error {
	if strings.Contains(net, ".") {
		return fmt.Errorf("hierarchical reset nets are not supported, use a top-level reset net instead")
	}
	s.rst = net
	return nil
}

// Net adds one or more debug nets by hierarchical path. Multi-bit nets
// must carry an explicit bit range, e.g. "core0.dout[7:0]".
func (s *Setup) Net(paths ...string) error {
	for _, p := range paths {
		if _, err := netpath.Parse(p); err != nil {
			return err
		}
		s.netPaths = append(s.netPaths, p)
	}
	return nil
}

// NetBase adds debug nets sharing a hierarchical base prefix.
func (s *Setup) NetBase(base string, paths ...string) error {
	for _, p := range paths {
		if err := s.Net(base + "." + p); err != nil {
			return err
		}
	}
	return nil
}

// Generate builds the debug hierarchy, prints it, and emits the
// instrumented Verilog files and the signal list into the output
// directory. Stale outputs from a previous run are removed first.
func (s *Setup) Generate() (*Result, error) {
	if s.top == "" {
		return nil, fmt.Errorf("no top-level module selected, call Top first")
	}
	if s.clk == "" {
		return nil, fmt.Errorf("no capture clock selected, call Clk first")
	}
	if s.rst == "" {
		return nil, fmt.Errorf("no reset net selected, call Rst first")
	}
	if len(s.netPaths) == 0 {
		return nil, fmt.Errorf("no debug nets selected, call Net first")
	}

	if err := clearOutputs(s.outputDir); err != nil {
		return nil, err
	}

	b := hierarchy.NewBuilder(s.idx)
	root, err := b.NewTop(s.top)
	if err != nil {
		return nil, err
	}
	for _, p := range s.netPaths {
		spec, err := netpath.Parse(p)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(s.out, "Adding debug net '%s'\n", spec.Base)
		if err := b.AddNet(root, spec); err != nil {
			return nil, err
		}
	}

	dataBits := root.SetPortWidths()
	root.SetVectorPos(0)

	fmt.Fprintf(s.out, "\nDebug Net Hierarchy\n-------------------\n")
	root.PrintTree(s.out, 0)

	fmt.Fprintf(s.out, "\nGenerating modified HDL files...\n")
	p := patch.New(s.outputDir, b.Locator)
	files, err := p.Generate(root, patch.Params{
		DataBits:     dataBits,
		PreTrigDepth: s.preTrigDepth,
		CaptDepth:    s.captDepth,
		ClockHz:      int(s.clockMHz * 1e6),
		UartBaud:     s.uartBaud,
		ClockNet:     s.clk,
		ResetNet:     s.rst,
	})
	if err != nil {
		return nil, err
	}

	sigList, err := p.WriteSignalList(root)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(s.out, "\nSee '%s/' for modified verilog files.\n", s.outputDir)

	return &Result{Files: files, SignalList: sigList, DataBits: dataBits}, nil
}

// clearOutputs removes files left behind by a previous run so that a
// renamed top or dropped net cannot leave a stale debug copy lying
// around for the synthesis tool to pick up.
func clearOutputs(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading output directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.Contains(name, "_wt") || name == "signal_list.txt" {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				return fmt.Errorf("removing stale output %s: %w", name, err)
			}
		}
	}
	return nil
}
