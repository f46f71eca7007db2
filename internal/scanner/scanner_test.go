package scanner

import (
	"errors"
	"testing"
)

const ansiSource = `// top-level wrapper
module top #(
  parameter WIDTH = 8
) (
  input        clk,
  input        rst,
  output [7:0] led
);

  wire [7:0] dout;
  wire       din_valid;

  core #(.WIDTH(WIDTH)) core0 (
    .clk (clk),
    .dout(dout)
  );

  core core1 (
    .clk (clk),
    .dout()
  );

endmodule
`

const legacySource = `module fifo (clk, rst, din, dout);
  input clk;
  input rst;
  input [7:0] din;
  output [7:0] dout;

  reg [7:0] mem;

endmodule
`

func TestModules(t *testing.T) {
	src := `module a (x); endmodule
// module commented_out (y); endmodule
module b (z);
  a a0 (.x(z));
endmodule
`
	f := NewFile("multi.v", src)
	got := f.Modules()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Modules() = %v, want [a b]", got)
	}
}

func TestModuleHeader(t *testing.T) {
	f := NewFile("top.v", ansiSource)
	loc, err := f.ModuleHeader("top")
	if err != nil {
		t.Fatalf("ModuleHeader failed: %v", err)
	}
	if loc.Line != 2 || loc.Col != 8 {
		t.Fatalf("ModuleHeader = %+v, want {2 8}", loc)
	}
}

func TestPortListStyles(t *testing.T) {
	f := NewFile("top.v", ansiSource)
	pl, err := f.PortList("top")
	if err != nil {
		t.Fatalf("PortList failed: %v", err)
	}
	if pl.Style != StyleANSI {
		t.Fatalf("expected ANSI style, got %v", pl.Style)
	}
	if pl.Line != 4 || pl.Col != 3 {
		t.Fatalf("PortList = %+v, want line 4 col 3", pl.Loc)
	}

	f = NewFile("fifo.v", legacySource)
	pl, err = f.PortList("fifo")
	if err != nil {
		t.Fatalf("PortList failed: %v", err)
	}
	if pl.Style != StyleLegacy {
		t.Fatalf("expected legacy style, got %v", pl.Style)
	}
	if pl.Line != 1 || pl.Col != 13 {
		t.Fatalf("PortList = %+v, want line 1 col 13", pl.Loc)
	}
}

func TestDeclarationPoint(t *testing.T) {
	f := NewFile("top.v", ansiSource)
	loc, err := f.DeclarationPoint("top")
	if err != nil {
		t.Fatalf("DeclarationPoint failed: %v", err)
	}
	// the ');' closing the multi-line port list
	if loc.Line != 8 || loc.Col != 2 {
		t.Fatalf("DeclarationPoint = %+v, want {8 2}", loc)
	}
}

func TestDeclarationPointNormalizedOnSingleLineHeader(t *testing.T) {
	// port list and terminating semicolon share line 1, so the insertion
	// point moves to the start of line 2
	f := NewFile("fifo.v", legacySource)
	loc, err := f.DeclarationPoint("fifo")
	if err != nil {
		t.Fatalf("DeclarationPoint failed: %v", err)
	}
	if loc.Line != 2 || loc.Col != 0 {
		t.Fatalf("DeclarationPoint = %+v, want {2 0}", loc)
	}
}

func TestEndmodule(t *testing.T) {
	f := NewFile("fifo.v", legacySource)
	loc, err := f.Endmodule("fifo")
	if err != nil {
		t.Fatalf("Endmodule failed: %v", err)
	}
	if loc.Line != 9 || loc.Col != 1 {
		t.Fatalf("Endmodule = %+v, want {9 1}", loc)
	}
}

func TestInstance(t *testing.T) {
	f := NewFile("top.v", ansiSource)
	inst, err := f.Instance("top", "core0")
	if err != nil {
		t.Fatalf("Instance failed: %v", err)
	}
	if inst.Type != "core" {
		t.Fatalf("instance type = %q, want core", inst.Type)
	}
	if inst.TypeLoc.Line != 13 || inst.TypeLoc.Col != 3 {
		t.Fatalf("TypeLoc = %+v, want {13 3}", inst.TypeLoc)
	}
	// port connection list opens right after the instance name
	if inst.PortLoc.Line != 13 || inst.PortLoc.Col != 31 {
		t.Fatalf("PortLoc = %+v, want {13 31}", inst.PortLoc)
	}

	inst, err = f.Instance("top", "core1")
	if err != nil {
		t.Fatalf("Instance failed: %v", err)
	}
	if inst.Type != "core" || inst.PortLoc.Line != 18 {
		t.Fatalf("unexpected core1 instance %+v", inst)
	}
}

func TestInstanceNotFound(t *testing.T) {
	f := NewFile("top.v", ansiSource)
	_, err := f.Instance("top", "nonexistent")
	if err == nil {
		t.Fatalf("expected error for missing instance")
	}
	var anchorErr *AnchorError
	if !errors.As(err, &anchorErr) {
		t.Fatalf("expected AnchorError, got %T", err)
	}
	if anchorErr.Instance != "nonexistent" || anchorErr.File != "top.v" {
		t.Fatalf("unexpected error detail %+v", anchorErr)
	}
}

func TestModuleNotFound(t *testing.T) {
	f := NewFile("top.v", ansiSource)
	if _, err := f.ModuleHeader("missing"); err == nil {
		t.Fatalf("expected error for missing module")
	}
}

func TestClassifyNet(t *testing.T) {
	f := NewFile("top.v", ansiSource)
	tests := []struct {
		net  string
		want NetClass
	}{
		{"dout", NetVector},
		{"din_valid", NetScalar},
		{"clk", NetScalar},
		{"led", NetVector},
		{"no_such_net", NetNotFound},
	}
	for _, tt := range tests {
		if got := f.ClassifyNet(tt.net); got != tt.want {
			t.Fatalf("ClassifyNet(%q) = %v, want %v", tt.net, got, tt.want)
		}
	}
}

func TestClassifyNetLegacyPorts(t *testing.T) {
	f := NewFile("fifo.v", legacySource)
	if got := f.ClassifyNet("din"); got != NetVector {
		t.Fatalf("ClassifyNet(din) = %v, want vector", got)
	}
	if got := f.ClassifyNet("rst"); got != NetScalar {
		t.Fatalf("ClassifyNet(rst) = %v, want scalar", got)
	}
	if got := f.ClassifyNet("mem"); got != NetVector {
		t.Fatalf("ClassifyNet(mem) = %v, want vector", got)
	}
}

func TestClassifyNetIgnoresComments(t *testing.T) {
	src := `module m (a);
  // wire [7:0] ghost;
  /* wire [3:0] phantom; */
  input a;
  wire real_net;
endmodule
`
	f := NewFile("m.v", src)
	if got := f.ClassifyNet("ghost"); got != NetNotFound {
		t.Fatalf("ClassifyNet(ghost) = %v, want not found", got)
	}
	if got := f.ClassifyNet("phantom"); got != NetNotFound {
		t.Fatalf("ClassifyNet(phantom) = %v, want not found", got)
	}
	if got := f.ClassifyNet("real_net"); got != NetScalar {
		t.Fatalf("ClassifyNet(real_net) = %v, want scalar", got)
	}
}

func TestCommaSeparatedWireList(t *testing.T) {
	src := `module m (a);
  input a;
  wire [3:0] x, y, z;
  wire s, t;
endmodule
`
	f := NewFile("m.v", src)
	for _, net := range []string{"x", "y", "z"} {
		if got := f.ClassifyNet(net); got != NetVector {
			t.Fatalf("ClassifyNet(%q) = %v, want vector", net, got)
		}
	}
	for _, net := range []string{"s", "t"} {
		if got := f.ClassifyNet(net); got != NetScalar {
			t.Fatalf("ClassifyNet(%q) = %v, want scalar", net, got)
		}
	}
}
