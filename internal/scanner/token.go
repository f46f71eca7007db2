package scanner

import "fmt"

// TokenType classifies a lexed Verilog token. The lexer is deliberately
// shallow: it only distinguishes the keywords and punctuation the anchor
// state machines care about, and lumps every other operator into TokSymbol.
type TokenType int

const (
	TokEOF TokenType = iota
	TokIdent
	TokNumber
	TokString
	TokSymbol // any operator or punctuation not listed below
	TokLParen
	TokRParen
	TokLBrack
	TokRBrack
	TokLBrace
	TokRBrace
	TokSemi
	TokComma
	TokDot
	TokColon
	TokHash
	TokModule
	TokEndmodule
	TokInput
	TokOutput
	TokInout
	TokWire
	TokReg
	TokLogic
)

// Token is one lexed item with its 1-based source position. Col is a byte
// column, which is what the patcher needs to splice text at the exact spot.
type Token struct {
	Typ  TokenType
	Val  string
	Line int
	Col  int
}

func (t Token) String() string {
	if t.Typ == TokEOF {
		return "EOF"
	}
	return fmt.Sprintf("%q", t.Val)
}

type statefn func(*lexer) statefn

// lexer walks the source byte by byte, recording the line and the byte
// offset of the current line start so token columns come out exact.
type lexer struct {
	input     string
	start     int
	pos       int
	line      int
	lineStart int
	startLine int
	startCol  int
	toks      []Token
}

// tokenize lexes an entire Verilog source into a token slice. Comments and
// strings never produce anchor keywords, so a "module" inside either cannot
// confuse the locator. Lexing is total: unknown characters become TokSymbol.
func tokenize(input string) []Token {
	l := &lexer{input: input, line: 1}
	for state := lexText; state != nil; {
		state = state(l)
	}
	return l.toks
}

func (l *lexer) emit(t TokenType) {
	l.toks = append(l.toks, Token{
		Typ:  t,
		Val:  l.input[l.start:l.pos],
		Line: l.startLine,
		Col:  l.startCol,
	})
	l.start = l.pos
}

// mark records the position of the token about to be lexed.
func (l *lexer) mark() {
	l.start = l.pos
	l.startLine = l.line
	l.startCol = l.pos - l.lineStart + 1
}

func (l *lexer) next() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	c := l.input[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.lineStart = l.pos
	}
	return c
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *lexer) acceptRun(valid func(byte) bool) {
	for l.pos < len(l.input) && valid(l.input[l.pos]) {
		l.next()
	}
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '$'
}

func isAlnum(c byte) bool {
	return isAlpha(c) || c >= '0' && c <= '9'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func lexText(l *lexer) statefn {
	for l.pos < len(l.input) {
		l.mark()
		c := l.input[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.next()

		case c == '/':
			return lexSlash

		case isAlpha(c):
			return lexId

		case c == '\\':
			return lexEscapedId

		case isDigit(c) || c == '\'':
			return lexNumber

		case c == '"':
			return lexString

		default:
			l.next()
			l.emit(punctType(c))
		}
	}
	return nil
}

func punctType(c byte) TokenType {
	switch c {
	case '(':
		return TokLParen
	case ')':
		return TokRParen
	case '[':
		return TokLBrack
	case ']':
		return TokRBrack
	case '{':
		return TokLBrace
	case '}':
		return TokRBrace
	case ';':
		return TokSemi
	case ',':
		return TokComma
	case '.':
		return TokDot
	case ':':
		return TokColon
	case '#':
		return TokHash
	}
	return TokSymbol
}

func lexSlash(l *lexer) statefn {
	l.next() // '/'
	switch l.peek() {
	case '/':
		for l.pos < len(l.input) && l.input[l.pos] != '\n' {
			l.next()
		}
	case '*':
		l.next()
		for l.pos < len(l.input) {
			if l.input[l.pos] == '*' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '/' {
				l.next()
				l.next()
				break
			}
			l.next()
		}
	default:
		l.emit(TokSymbol)
		return lexText
	}
	l.start = l.pos
	return lexText
}

func lexId(l *lexer) statefn {
	l.acceptRun(isAlnum)
	switch l.input[l.start:l.pos] {
	case "module":
		l.emit(TokModule)
	case "endmodule":
		l.emit(TokEndmodule)
	case "input":
		l.emit(TokInput)
	case "output":
		l.emit(TokOutput)
	case "inout":
		l.emit(TokInout)
	case "wire":
		l.emit(TokWire)
	case "reg":
		l.emit(TokReg)
	case "logic":
		l.emit(TokLogic)
	default:
		l.emit(TokIdent)
	}
	return lexText
}

// lexEscapedId handles "\escaped.names[0] " which run to the next whitespace.
func lexEscapedId(l *lexer) statefn {
	l.next() // '\'
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			break
		}
		l.next()
	}
	l.emit(TokIdent)
	return lexText
}

// lexNumber covers plain integers and based literals such as 8'hDE_AD or
// a bare 'b0. The exact value is irrelevant to anchoring; it only has to be
// consumed as a single token.
func lexNumber(l *lexer) statefn {
	l.acceptRun(func(c byte) bool { return isDigit(c) || c == '_' })
	if l.peek() == '\'' {
		l.next()
		if c := l.peek(); c == 's' || c == 'S' {
			l.next()
		}
		l.acceptRun(func(c byte) bool { return isAlnum(c) })
	}
	l.emit(TokNumber)
	return lexText
}

func lexString(l *lexer) statefn {
	l.next() // '"'
	for l.pos < len(l.input) {
		c := l.next()
		if c == '\\' {
			l.next()
			continue
		}
		if c == '"' {
			break
		}
	}
	l.emit(TokString)
	return lexText
}
