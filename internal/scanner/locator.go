// Package scanner locates structural anchors in Verilog source text: module
// headers, port lists, instantiations, declaration points and endmodule
// keywords, each with an exact line and byte column. It is not a Verilog
// compiler; it lexes the file into a shallow token stream and runs a small
// matching state machine per anchor kind, which is all the source patcher
// needs to splice generated text into an otherwise untouched file.
package scanner

import (
	"fmt"
	"os"
)

// Loc is a 1-based source position. Col counts bytes from the start of the
// line, pointing at the first byte of the anchor token. A Col of zero is
// only produced by the declaration-point normalization and means "start of
// line".
type Loc struct {
	Line int
	Col  int
}

// PortStyle distinguishes the two Verilog module header flavors.
type PortStyle int

const (
	// StyleLegacy is a 1995-style header: the port list carries names
	// only and directions are declared separately in the body.
	StyleLegacy PortStyle = iota
	// StyleANSI is a 2001-style header with inline port directions.
	StyleANSI
)

// NetClass is the result of looking up a net declaration.
type NetClass int

const (
	NetNotFound NetClass = iota
	NetScalar
	NetVector
)

// AnchorError reports a structural lookup that found no match. Generation
// cannot proceed for the affected file, so callers treat it as fatal.
type AnchorError struct {
	File     string
	Module   string
	Instance string
	Op       string
}

func (e *AnchorError) Error() string {
	if e.Instance != "" {
		return fmt.Sprintf("failed to locate %s for instance '%s' of module '%s' in file '%s'",
			e.Op, e.Instance, e.Module, e.File)
	}
	return fmt.Sprintf("failed to locate %s for module '%s' in file '%s'", e.Op, e.Module, e.File)
}

// PortListLoc is the location of a module's port list opening paren along
// with the header style detected from the port tokens.
type PortListLoc struct {
	Loc
	Style PortStyle
}

// InstanceLoc describes one instantiation site inside a module body.
type InstanceLoc struct {
	// Type is the module type named at the instantiation site.
	Type string
	// TypeLoc is the position of that type token (used for renaming).
	TypeLoc Loc
	// PortLoc is the position of the opening paren of the port
	// connection list (used for inserting an extra connection).
	PortLoc Loc
}

// File is one tokenized Verilog source, ready for anchor queries.
type File struct {
	path string
	src  string
	toks []Token
}

// Load reads and tokenizes a Verilog source file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading verilog source: %w", err)
	}
	return NewFile(path, string(data)), nil
}

// NewFile tokenizes in-memory source, attributing it to path for error
// reporting.
func NewFile(path, src string) *File {
	return &File{path: path, src: src, toks: tokenize(src)}
}

// Path returns the path this file was loaded from.
func (f *File) Path() string { return f.path }

// Source returns the raw file text.
func (f *File) Source() string { return f.src }

// Modules lists every module defined in the file, in order of appearance.
func (f *File) Modules() []string {
	var names []string
	for i := 0; i+1 < len(f.toks); i++ {
		if f.toks[i].Typ == TokModule && f.toks[i+1].Typ == TokIdent {
			names = append(names, f.toks[i+1].Val)
			// skip the body so instantiations cannot look like headers
			for i++; i < len(f.toks) && f.toks[i].Typ != TokEndmodule; i++ {
			}
		}
	}
	return names
}

// moduleDef captures everything the header state machine learns about one
// module: the header token, the port list, the header style, the
// terminating semicolon, and the token index where the body begins.
type moduleDef struct {
	header   Loc
	port     Loc
	style    PortStyle
	declSemi Loc
	body     int
}

// findModuleDef matches "module <type> [#(...)] (ports) ;" anywhere in the
// token stream. A "module <type>" occurrence that does not complete the
// pattern is skipped and the search continues, mirroring the first-match
// semantics the rest of the pipeline depends on.
func (f *File) findModuleDef(moduleType string) (moduleDef, bool) {
	for i := 0; i+1 < len(f.toks); i++ {
		if f.toks[i].Typ != TokModule || f.toks[i+1].Typ != TokIdent || f.toks[i+1].Val != moduleType {
			continue
		}
		def := moduleDef{header: Loc{f.toks[i+1].Line, f.toks[i+1].Col}}
		j := i + 2

		// optional parameter declaration: # ( ... )
		if j < len(f.toks) && f.toks[j].Typ == TokHash {
			j++
			var ok bool
			if j, ok = f.skipParens(j); !ok {
				continue
			}
		}

		if j >= len(f.toks) || f.toks[j].Typ != TokLParen {
			continue
		}
		def.port = Loc{f.toks[j].Line, f.toks[j].Col}
		def.style = StyleLegacy
		depth := 0
		for ; j < len(f.toks); j++ {
			switch f.toks[j].Typ {
			case TokLParen:
				depth++
			case TokRParen:
				depth--
			case TokInput, TokOutput, TokInout:
				def.style = StyleANSI
			}
			if depth == 0 {
				break
			}
		}
		j++
		if j >= len(f.toks) || f.toks[j].Typ != TokSemi {
			continue
		}
		def.declSemi = Loc{f.toks[j].Line, f.toks[j].Col}
		def.body = j + 1
		return def, true
	}
	return moduleDef{}, false
}

// skipParens consumes a balanced paren group starting at token index j and
// returns the index just past the closing paren.
func (f *File) skipParens(j int) (int, bool) {
	if j >= len(f.toks) || f.toks[j].Typ != TokLParen {
		return j, false
	}
	depth := 0
	for ; j < len(f.toks); j++ {
		switch f.toks[j].Typ {
		case TokLParen:
			depth++
		case TokRParen:
			depth--
		}
		if depth == 0 {
			return j + 1, true
		}
	}
	return j, false
}

// ModuleHeader locates the module type token immediately after the
// "module" keyword.
func (f *File) ModuleHeader(moduleType string) (Loc, error) {
	def, ok := f.findModuleDef(moduleType)
	if !ok {
		return Loc{}, &AnchorError{File: f.path, Module: moduleType, Op: "module header"}
	}
	return def.header, nil
}

// PortList locates the opening paren of the module's port list and reports
// whether the header uses ANSI (2001-style inline directions) or legacy
// (bare name list) ports.
func (f *File) PortList(moduleType string) (PortListLoc, error) {
	def, ok := f.findModuleDef(moduleType)
	if !ok {
		return PortListLoc{}, &AnchorError{File: f.path, Module: moduleType, Op: "port list"}
	}
	return PortListLoc{Loc: def.port, Style: def.style}, nil
}

// DeclarationPoint locates the first position after the module header where
// a declaration statement may be inserted: the semicolon terminating the
// header. When that semicolon shares a line with the port list (single-line
// legacy headers), the point is normalized to the start of the following
// line so the patcher never has two insertions competing for one line.
func (f *File) DeclarationPoint(moduleType string) (Loc, error) {
	def, ok := f.findModuleDef(moduleType)
	if !ok {
		return Loc{}, &AnchorError{File: f.path, Module: moduleType, Op: "declaration point"}
	}
	if def.declSemi.Line == def.port.Line {
		return Loc{Line: def.declSemi.Line + 1, Col: 0}, nil
	}
	return def.declSemi, nil
}

// Endmodule locates the endmodule keyword closing the module's body.
func (f *File) Endmodule(moduleType string) (Loc, error) {
	def, ok := f.findModuleDef(moduleType)
	if !ok {
		return Loc{}, &AnchorError{File: f.path, Module: moduleType, Op: "endmodule"}
	}
	for j := def.body; j < len(f.toks); j++ {
		if f.toks[j].Typ == TokEndmodule {
			return Loc{f.toks[j].Line, f.toks[j].Col}, nil
		}
	}
	return Loc{}, &AnchorError{File: f.path, Module: moduleType, Op: "endmodule"}
}

// Instance locates the instantiation named instanceName within the body of
// moduleType: "<type> [#(...)] <name> ( ... )". It returns both the type
// token position (for renaming the instantiated module) and the opening
// paren of the port connections (for inserting the debug connection).
func (f *File) Instance(moduleType, instanceName string) (InstanceLoc, error) {
	def, ok := f.findModuleDef(moduleType)
	if !ok {
		return InstanceLoc{}, &AnchorError{File: f.path, Module: moduleType, Instance: instanceName, Op: "instance"}
	}
	for i := def.body; i < len(f.toks) && f.toks[i].Typ != TokEndmodule; i++ {
		if f.toks[i].Typ != TokIdent {
			continue
		}
		j := i + 1
		if j < len(f.toks) && f.toks[j].Typ == TokHash {
			j++
			var ok bool
			if j, ok = f.skipParens(j); !ok {
				continue
			}
		}
		if j+1 >= len(f.toks) || f.toks[j].Typ != TokIdent || f.toks[j].Val != instanceName {
			continue
		}
		if f.toks[j+1].Typ != TokLParen {
			continue
		}
		return InstanceLoc{
			Type:    f.toks[i].Val,
			TypeLoc: Loc{f.toks[i].Line, f.toks[i].Col},
			PortLoc: Loc{f.toks[j+1].Line, f.toks[j+1].Col},
		}, nil
	}
	return InstanceLoc{}, &AnchorError{File: f.path, Module: moduleType, Instance: instanceName, Op: "instance"}
}
