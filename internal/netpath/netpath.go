// Package netpath parses hierarchical net references of the form
// "inst_a.inst_b.signal[7:0]" into their instance segments, base signal
// name and optional bit range.
package netpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Spec is a parsed hierarchical net path. The final path token names the
// signal and may carry a single bit range ("[hi:lo]" or "[bit]"); every
// preceding token names an instance on the way down the hierarchy.
type Spec struct {
	// Path is the full hierarchical path as supplied by the caller.
	Path string

	// Segments are the instance names leading to the signal, outermost
	// first. Empty for a net in the top-level module itself.
	Segments []string

	// Leaf is the final path token, including any range suffix.
	Leaf string

	// Base is the signal name without the range suffix.
	Base string

	// HasRange reports whether an explicit "[...]" range was given.
	HasRange bool

	// High and Low are the range bounds. For a single-bit select
	// "[b]" both are b. Zero when HasRange is false.
	High, Low int
}

// Width returns the bit width selected by the path: |High-Low|+1 for a
// ranged net, 1 otherwise.
func (s Spec) Width() int {
	if !s.HasRange {
		return 1
	}
	d := s.High - s.Low
	if d < 0 {
		d = -d
	}
	return d + 1
}

// Parse splits a hierarchical net path into its instance segments and leaf
// signal. Multi-dimensional selections ("mem[3][7:0]") are rejected; only
// the leaf token may carry a range.
func Parse(path string) (Spec, error) {
	if path == "" {
		return Spec{}, fmt.Errorf("empty net path")
	}
	if strings.Count(path, "[") > 1 {
		return Spec{}, fmt.Errorf("bad net format %q (multi-dimensional arrays are not supported)", path)
	}

	parts := strings.Split(path, ".")
	for _, p := range parts {
		if p == "" {
			return Spec{}, fmt.Errorf("bad net path %q (empty hierarchy segment)", path)
		}
	}

	leaf := parts[len(parts)-1]
	segments := parts[:len(parts)-1]
	for _, seg := range segments {
		if strings.Contains(seg, "[") {
			return Spec{}, fmt.Errorf("bad net path %q (ranges are only supported on the signal itself)", path)
		}
	}

	spec := Spec{
		Path:     path,
		Segments: segments,
		Leaf:     leaf,
		Base:     Name(leaf),
	}

	if strings.Contains(leaf, "[") {
		hi, lo, err := Range(leaf)
		if err != nil {
			return Spec{}, err
		}
		spec.HasRange = true
		spec.High = hi
		spec.Low = lo
	}
	return spec, nil
}

// Name extracts the signal name from a net string such as "data[3:0]" or
// "state[0]", dropping the range part if present.
func Name(netString string) string {
	return strings.SplitN(netString, "[", 2)[0]
}

// Range extracts the bit range from a net string. A single-bit select
// "[b]" yields (b, b).
func Range(netString string) (hi, lo int, err error) {
	open := strings.Index(netString, "[")
	close := strings.Index(netString, "]")
	if open < 0 || close < open {
		return 0, 0, fmt.Errorf("no bit range in net string %q", netString)
	}
	rangeStr := netString[open+1 : close]
	nums := strings.Split(rangeStr, ":")
	switch len(nums) {
	case 1:
		b, err := strconv.Atoi(strings.TrimSpace(nums[0]))
		if err != nil {
			return 0, 0, fmt.Errorf("bad bit select in net string %q: %w", netString, err)
		}
		return b, b, nil
	case 2:
		h, err := strconv.Atoi(strings.TrimSpace(nums[0]))
		if err != nil {
			return 0, 0, fmt.Errorf("bad bit range in net string %q: %w", netString, err)
		}
		l, err := strconv.Atoi(strings.TrimSpace(nums[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("bad bit range in net string %q: %w", netString, err)
		}
		return h, l, nil
	}
	return 0, 0, fmt.Errorf("bad bit range in net string %q", netString)
}

// Width extracts the bit width from a net string: |hi-lo|+1 for a ranged
// net, 1 for a bare name or single-bit select.
func Width(netString string) int {
	hi, lo, err := Range(netString)
	if err != nil {
		return 1
	}
	d := hi - lo
	if d < 0 {
		d = -d
	}
	return d + 1
}
