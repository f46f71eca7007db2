// Package hierarchy builds and lays out the tree of debug instances: one
// node per Verilog instance a requested net passes through, each holding
// the nets captured at that level. The order in which nets and children are
// appended is a contract, not an accident: bit-vector layout and the
// generated assign concatenation both derive from it bit for bit.
package hierarchy

import (
	"fmt"
	"io"
	"strings"
)

// Net is one leaf signal to capture.
type Net struct {
	// Path is the full hierarchical path as supplied by the caller.
	Path string
	// Name is the leaf signal token including any range, e.g. "dout[7:0]".
	Name string
	// Base is the signal name without the range.
	Base string
	// Width is the number of captured bits.
	Width int
	// HasRange reports whether the path carried an explicit bit range.
	HasRange bool
	// VectorPos is the position of this net's MSB within the global
	// debug vector. Assigned once during layout; -1 until then.
	VectorPos int
}

// Instance is one node of the debug hierarchy.
type Instance struct {
	// Name is the instance name within the parent's body ("Top" for
	// the root).
	Name string
	// ModuleType is the Verilog module type of this instance.
	ModuleType string
	// File is the source file defining ModuleType.
	File string
	// LocalNets are the nets captured at this level, in append order.
	LocalNets []*Net
	// SubInstances are the child debug instances, in append order.
	SubInstances []*Instance
	// PortWidth is the total bit width of this instance's debug output
	// port: local nets plus all children. Set by SetPortWidths.
	PortWidth int
	// ID distinguishes debug instances of the same module type; each
	// gets an independently renamed "_wt<ID>" module variant.
	ID int
	// IsTop marks the root instance, whose module keeps its name and
	// carries the UART ports instead of a debug output.
	IsTop bool
}

// Sub returns the child instance with the given name, or nil.
func (inst *Instance) Sub(name string) *Instance {
	for _, s := range inst.SubInstances {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// SetPortWidths recursively computes the debug port width of this instance
// and all children, and returns this instance's width. The width at the
// root is the global debug-vector width.
func (inst *Instance) SetPortWidths() int {
	inst.PortWidth = 0
	for _, n := range inst.LocalNets {
		inst.PortWidth += n.Width
	}
	for _, s := range inst.SubInstances {
		inst.PortWidth += s.SetPortWidths()
	}
	return inst.PortWidth
}

// SetVectorPos recursively assigns the position of every net's MSB within
// the global debug vector, starting at offset, and returns the running
// offset after this subtree. Local nets come first, then children, exactly
// matching the reverse-order concatenation emitted by the patcher.
func (inst *Instance) SetVectorPos(offset int) int {
	pos := offset
	for _, n := range inst.LocalNets {
		pos += n.Width
		n.VectorPos = pos - 1
	}
	for _, s := range inst.SubInstances {
		pos = s.SetVectorPos(pos)
	}
	return pos
}

// WriteSignals writes the full path of every net in the tree, one per
// line, in the order the nets occupy the debug vector (LSB group first).
func (inst *Instance) WriteSignals(w io.Writer) error {
	for _, n := range inst.LocalNets {
		if _, err := fmt.Fprintln(w, n.Path); err != nil {
			return err
		}
	}
	for _, s := range inst.SubInstances {
		if err := s.WriteSignals(w); err != nil {
			return err
		}
	}
	return nil
}

// PrintTree writes an indented tree of this instance, its nets and all
// sub-instances.
func (inst *Instance) PrintTree(w io.Writer, offset int) {
	indent := strings.Repeat(" ", offset)
	fmt.Fprintf(w, "%s (%s)\n", inst.Name, inst.ModuleType)
	for _, n := range inst.LocalNets {
		fmt.Fprintf(w, "%s|- %s\n", indent, n.Name)
	}
	for _, s := range inst.SubInstances {
		fmt.Fprintf(w, "%s|- ", indent)
		s.PrintTree(w, offset+3)
	}
}

// Walk visits this instance and every descendant depth-first, parent
// before children.
func (inst *Instance) Walk(fn func(*Instance)) {
	fn(inst)
	for _, s := range inst.SubInstances {
		s.Walk(fn)
	}
}
