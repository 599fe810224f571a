package snscript

import (
	"regexp"
	"strconv"
	"unicode/utf8"
)

type TokenType int

const (
	TokenTypeEmpty TokenType = iota
	TokenLParen
	TokenRParen
	TokenLCurly
	TokenRCurly
	TokenSymbol
	TokenDecimal
	TokenEnd
)

type Token struct {
	typ  TokenType
	str  string
	num  int64
	line int
	col  int
}

func (t Token) String() string {
	switch t.typ {
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenLCurly:
		return "{"
	case TokenRCurly:
		return "}"
	case TokenEnd:
		return "<end>"
	}
	return t.str
}

var (
	DecimalRegex = regexp.MustCompile("^-?[0-9]+$")
)

// symbol characters besides ASCII letters and digits
const symbolPunct = "!@$%^&*-_=+[]:<>./?|"

func isSymbolChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r < utf8.RuneSelf:
		for i := 0; i < len(symbolPunct); i++ {
			if symbolPunct[i] == byte(r) {
				return true
			}
		}
	}
	return false
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}

// Lexer splits source into tokens, tracking 1-based line and column
// (in runes) of each token's first character.
type Lexer struct {
	src     []byte
	pos     int
	linenum int
	col     int
	peeked  *Token
}

func NewLexer(src []byte) *Lexer {
	return &Lexer{src: src, linenum: 1, col: 1}
}

func (lex *Lexer) Linenum() int { return lex.linenum }

func (lex *Lexer) peekRune() (rune, int) {
	if lex.pos >= len(lex.src) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRune(lex.src[lex.pos:])
}

func (lex *Lexer) advance(r rune, size int) {
	lex.pos += size
	if r == '\n' {
		lex.linenum++
		lex.col = 1
	} else {
		lex.col++
	}
}

func (lex *Lexer) skipSpaceAndComments() {
	for lex.pos < len(lex.src) {
		r, size := lex.peekRune()
		switch {
		case isSpace(r):
			lex.advance(r, size)
		case r == ';' && lex.pos+1 < len(lex.src) && lex.src[lex.pos+1] == ';':
			for lex.pos < len(lex.src) {
				r, size = lex.peekRune()
				if r == '\n' {
					break
				}
				lex.advance(r, size)
			}
		default:
			return
		}
	}
}

func (lex *Lexer) PeekNextToken() (Token, error) {
	if lex.peeked != nil {
		return *lex.peeked, nil
	}
	tok, err := lex.lexToken()
	if err != nil {
		return tok, err
	}
	lex.peeked = &tok
	return tok, nil
}

func (lex *Lexer) GetNextToken() (Token, error) {
	if lex.peeked != nil {
		tok := *lex.peeked
		lex.peeked = nil
		return tok, nil
	}
	return lex.lexToken()
}

func (lex *Lexer) lexToken() (Token, error) {
	lex.skipSpaceAndComments()
	tok := Token{line: lex.linenum, col: lex.col}
	if lex.pos >= len(lex.src) {
		tok.typ = TokenEnd
		return tok, nil
	}
	r, size := lex.peekRune()
	switch r {
	case '(':
		tok.typ = TokenLParen
	case ')':
		tok.typ = TokenRParen
	case '{':
		tok.typ = TokenLCurly
	case '}':
		tok.typ = TokenRCurly
	}
	if tok.typ != TokenTypeEmpty {
		lex.advance(r, size)
		return tok, nil
	}
	if !isSymbolChar(r) {
		return tok, &Error{Kind: ErrInvalidSymbolName, Line: tok.line, Col: tok.col, Sym: string(r)}
	}

	start := lex.pos
	for lex.pos < len(lex.src) {
		r, size = lex.peekRune()
		if !isSymbolChar(r) {
			break
		}
		lex.advance(r, size)
	}
	atom := string(lex.src[start:lex.pos])

	// a trailing character that is neither a delimiter nor a symbol
	// character makes the whole atom invalid
	if lex.pos < len(lex.src) {
		r, _ = lex.peekRune()
		if !isSpace(r) && r != '(' && r != ')' && r != '{' && r != '}' && r != ';' {
			return tok, &Error{Kind: ErrInvalidSymbolName, Line: lex.linenum, Col: lex.col, Sym: string(r)}
		}
	}
	return lex.DecodeAtom(tok, atom)
}

// DecodeAtom classifies a run of symbol characters. A leading digit,
// or a '-' followed by a digit, commits the atom to being an integer.
func (lex *Lexer) DecodeAtom(tok Token, atom string) (Token, error) {
	first, _ := utf8.DecodeRuneInString(atom)
	isNum := isDigit(first) || (first == '-' && len(atom) > 1 && isDigit(rune(atom[1])))
	if !isNum {
		tok.typ = TokenSymbol
		tok.str = atom
		return tok, nil
	}
	if !DecimalRegex.MatchString(atom) {
		return tok, &Error{Kind: ErrInvalidIntegerLiteral, Line: tok.line, Col: tok.col, Sym: atom}
	}
	i, err := strconv.ParseInt(atom, 10, 64)
	if err != nil {
		return tok, &Error{Kind: ErrInvalidIntegerLiteral, Line: tok.line, Col: tok.col, Sym: atom, Err: err}
	}
	tok.typ = TokenDecimal
	tok.str = atom
	tok.num = i
	return tok, nil
}
