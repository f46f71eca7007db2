package scanner

// ClassifyNet reports whether the named net is declared as a scalar or a
// vector anywhere in this file. It scans every wire/reg/logic declaration
// and every port declaration with an inline direction; a declaration-level
// bit range makes every net in that declaration a vector. The first
// declaration referencing the name decides, as in:
//
//	wire [7:0] dout;     // dout is a vector
//	output valid;        // valid is a scalar
//
// A per-name range ("wire mem [3:0];") declares an array, not a vector,
// and does not affect classification.
func (f *File) ClassifyNet(base string) NetClass {
	toks := f.toks
	for i := 0; i < len(toks); i++ {
		switch toks[i].Typ {
		case TokInput, TokOutput, TokInout:
			j := i + 1
			if j < len(toks) && isNetType(toks[j].Typ) {
				j++
			}
			vector := false
			if j < len(toks) && toks[j].Typ == TokLBrack {
				j = skipBrackets(toks, j)
				vector = true
			}
			if j < len(toks) && toks[j].Typ == TokIdent && toks[j].Val == base {
				return classOf(vector)
			}
			i = j

		case TokWire, TokReg, TokLogic:
			j := i + 1
			vector := false
			for j < len(toks) && toks[j].Typ == TokLBrack {
				j = skipBrackets(toks, j)
				vector = true
			}
			matched := false
			for j < len(toks) {
				if toks[j].Typ != TokIdent {
					break
				}
				if toks[j].Val == base {
					matched = true
				}
				j++
				if j < len(toks) && toks[j].Typ == TokLBrack {
					j = skipBrackets(toks, j)
				}
				if j < len(toks) && toks[j].Typ == TokComma {
					j++
					continue
				}
				break
			}
			if matched {
				return classOf(vector)
			}
			i = j
		}
	}
	return NetNotFound
}

func isNetType(t TokenType) bool {
	return t == TokWire || t == TokReg || t == TokLogic
}

func classOf(vector bool) NetClass {
	if vector {
		return NetVector
	}
	return NetScalar
}

// skipBrackets consumes "[ ... ]" starting at token index j and returns the
// index just past the closing bracket.
func skipBrackets(toks []Token, j int) int {
	for ; j < len(toks); j++ {
		if toks[j].Typ == TokRBrack {
			return j + 1
		}
	}
	return j
}
