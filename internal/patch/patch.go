// Package patch rewrites Verilog sources to route debug nets up the
// hierarchy. For every debug instance it re-emits the defining file line by
// line into the output directory: lines carrying an anchor get generated
// text spliced in at the recorded column, framed by //---WT_DEBUG---
// marker lines; every other line is copied byte for byte. The original
// files are never modified.
package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/obowen/fpga-wavetrace/internal/hierarchy"
	"github.com/obowen/fpga-wavetrace/internal/scanner"
)

const marker = "//---WT_DEBUG---"

// Params parameterizes the capture-module instantiation emitted into the
// top-level file.
type Params struct {
	DataBits     int
	PreTrigDepth int
	CaptDepth    int
	ClockHz      int
	UartBaud     int
	ClockNet     string
	ResetNet     string
}

// Patcher emits instrumented copies of every source file involved in a
// debug hierarchy.
type Patcher struct {
	outputDir string
	locate    func(path string) (*scanner.File, error)
}

// New returns a Patcher writing into outputDir and obtaining tokenized
// sources through locate (typically the hierarchy builder's file cache).
func New(outputDir string, locate func(string) (*scanner.File, error)) *Patcher {
	return &Patcher{outputDir: outputDir, locate: locate}
}

// anchors holds every location the emitter needs for one instance. The
// insts slice is parallel to the instance's SubInstances.
type anchors struct {
	module scanner.Loc
	port   scanner.PortListLoc
	decl   scanner.Loc
	end    scanner.Loc
	insts  []scanner.InstanceLoc
}

func (p *Patcher) locateItems(inst *hierarchy.Instance) (anchors, *scanner.File, error) {
	var a anchors
	f, err := p.locate(inst.File)
	if err != nil {
		return a, nil, err
	}
	if a.module, err = f.ModuleHeader(inst.ModuleType); err != nil {
		return a, nil, err
	}
	if a.port, err = f.PortList(inst.ModuleType); err != nil {
		return a, nil, err
	}
	if a.decl, err = f.DeclarationPoint(inst.ModuleType); err != nil {
		return a, nil, err
	}
	if a.end, err = f.Endmodule(inst.ModuleType); err != nil {
		return a, nil, err
	}
	for _, sub := range inst.SubInstances {
		loc, err := f.Instance(inst.ModuleType, sub.Name)
		if err != nil {
			return a, nil, err
		}
		a.insts = append(a.insts, loc)
	}
	return a, f, nil
}

// Generate emits an instrumented file for every instance in the tree,
// top-level first, and returns the generated paths. The capture-module
// instantiation described by params is inserted into the top-level file
// only.
func (p *Patcher) Generate(root *hierarchy.Instance, params Params) ([]string, error) {
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	var files []string
	if err := p.emit(root, captureInstance(params), &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (p *Patcher) emit(inst *hierarchy.Instance, wtInstance string, files *[]string) error {
	a, f, err := p.locateItems(inst)
	if err != nil {
		return err
	}

	base := filepath.Base(inst.File)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	outPath := filepath.Join(p.outputDir, fmt.Sprintf("%s_wt%d%s", name, inst.ID, ext))

	var out strings.Builder
	lines := strings.SplitAfter(f.Source(), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	for i, line := range lines {
		lineNum := i + 1

		// sub-instance anchors: rename the instantiated type and
		// insert the debug port connection
		instMatch := false
		for j, loc := range a.insts {
			col := loc.PortLoc.Col
			foundType := false
			if lineNum == loc.TypeLoc.Line {
				sub := inst.SubInstances[j]
				idStr := fmt.Sprintf("_wt%d", sub.ID)
				// first occurrence only, so the instance name
				// is never touched
				line = strings.Replace(line, sub.ModuleType, sub.ModuleType+idStr, 1)
				col += len(idStr)
				foundType = true
			}
			if lineNum == loc.PortLoc.Line {
				content := fmt.Sprintf("    .wt_debug(%s_wt_debug),\n", inst.SubInstances[j].Name)
				writeDebugBlock(&out, line, col, content)
				instMatch = true
				break
			} else if foundType {
				out.WriteString(line)
				instMatch = true
				break
			}
		}
		if instMatch {
			continue
		}

		portCol := a.port.Col

		// module header: rename this module with its variant suffix
		// (the top level keeps its name)
		foundHeader := false
		if lineNum == a.module.Line {
			idStr := ""
			if !inst.IsTop {
				idStr = fmt.Sprintf("_wt%d", inst.ID)
			}
			line = strings.ReplaceAll(line, inst.ModuleType, inst.ModuleType+idStr)
			portCol += len(idStr)
			foundHeader = true
		}

		// port list: insert the debug output port, or the UART ports
		// at the top level; this may share a line with the header
		if lineNum == a.port.Line {
			var content string
			if a.port.Style == scanner.StyleANSI {
				if inst.IsTop {
					content = "  input  wt_uart_rx,\n  output wt_uart_tx,\n"
				} else {
					content = fmt.Sprintf("  output [%d:0] wt_debug,\n", inst.PortWidth-1)
				}
			} else {
				if inst.IsTop {
					content = "  wt_uart_rx,\n  wt_uart_tx,\n"
				} else {
					content = "  wt_debug,\n"
				}
			}
			writeDebugBlock(&out, line, portCol, content)
			continue
		} else if foundHeader {
			out.WriteString(line)
			continue
		}

		switch lineNum {
		case a.decl.Line:
			var content strings.Builder
			// legacy headers need the new ports redeclared in the body
			if a.port.Style == scanner.StyleLegacy {
				if inst.IsTop {
					content.WriteString("  input  wt_uart_rx;\n  output wt_uart_tx;\n")
				} else {
					fmt.Fprintf(&content, "  output [%d:0] wt_debug;\n", inst.PortWidth-1)
				}
			}
			if inst.IsTop {
				fmt.Fprintf(&content, "  wire [%d:0] wt_debug;\n", inst.PortWidth-1)
			}
			for _, sub := range inst.SubInstances {
				fmt.Fprintf(&content, "  wire [%d:0] %s_wt_debug;\n", sub.PortWidth-1, sub.Name)
			}
			if content.Len() > 0 {
				writeDebugBlock(&out, line, a.decl.Col, content.String())
			} else {
				out.WriteString(line)
			}

		case a.end.Line:
			content := fmt.Sprintf("  assign wt_debug = {%s};\n", assignString(inst))
			if inst.IsTop {
				content += wtInstance
			}
			writeDebugBlock(&out, line, a.end.Col-1, content)

		default:
			out.WriteString(line)
		}
	}

	if err := os.WriteFile(outPath, []byte(out.String()), 0o644); err != nil {
		return fmt.Errorf("writing debug file: %w", err)
	}
	*files = append(*files, outPath)

	for _, sub := range inst.SubInstances {
		if err := p.emit(sub, "", files); err != nil {
			return err
		}
	}
	return nil
}

// writeDebugBlock splices content into line after its first col bytes,
// framing it with marker comment lines. The remainder of the line carries
// on below the block, so the original text survives byte for byte.
func writeDebugBlock(out *strings.Builder, line string, col int, content string) {
	if col > len(line) {
		col = len(line)
	}
	rest := strings.TrimSuffix(line[col:], "\n")
	rest = strings.TrimSuffix(rest, "\r")
	out.WriteString(line[:col])
	out.WriteString("\n" + marker + "\n")
	out.WriteString(content)
	out.WriteString(marker + "\n")
	out.WriteString(rest)
	if rest != "" {
		out.WriteString("\n")
	}
}

// assignString lists this instance's debug signals for the aggregate
// assign statement: children's buses first, then local nets, each group in
// reverse append order so the most recently added signal lands in the
// least significant bits.
func assignString(inst *hierarchy.Instance) string {
	var sigs []string
	for i := len(inst.SubInstances) - 1; i >= 0; i-- {
		sigs = append(sigs, inst.SubInstances[i].Name+"_wt_debug")
	}
	for i := len(inst.LocalNets) - 1; i >= 0; i-- {
		sigs = append(sigs, inst.LocalNets[i].Name)
	}
	return strings.Join(sigs, ",\n"+strings.Repeat(" ", 21))
}

// captureInstance returns the Verilog text instantiating the wavetrace
// capture module at the top level.
func captureInstance(p Params) string {
	var sb strings.Builder
	sb.WriteString("  wavetrace #(\n")
	fmt.Fprintf(&sb, "    .DataBits    (%d),\n", p.DataBits)
	fmt.Fprintf(&sb, "    .PreTrigDepth(%d),\n", p.PreTrigDepth)
	fmt.Fprintf(&sb, "    .CaptDepth(%d),\n", p.CaptDepth)
	fmt.Fprintf(&sb, "    .ClockHz     (%d),\n", p.ClockHz)
	fmt.Fprintf(&sb, "    .UartBaud    (%d))\n", p.UartBaud)
	sb.WriteString("  wavetrace(\n")
	fmt.Fprintf(&sb, "    .clk     (%s),\n", p.ClockNet)
	fmt.Fprintf(&sb, "    .rst     (%s),\n", p.ResetNet)
	sb.WriteString("    .uart_rx (wt_uart_rx),\n")
	sb.WriteString("    .uart_tx (wt_uart_tx),\n")
	sb.WriteString("    .din_data(wt_debug));\n")
	return sb.String()
}

// WriteSignalList writes the flat depth-first listing of every captured
// net's full path, one per line, and returns the file path.
func (p *Patcher) WriteSignalList(root *hierarchy.Instance) (string, error) {
	path := filepath.Join(p.outputDir, "signal_list.txt")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("writing signal list: %w", err)
	}
	defer f.Close()
	if err := root.WriteSignals(f); err != nil {
		return "", fmt.Errorf("writing signal list: %w", err)
	}
	return path, nil
}
