package snscript

import (
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func lexAll(src string) ([]Token, error) {
	lex := NewLexer([]byte(src))
	var toks []Token
	for {
		tok, err := lex.GetNextToken()
		if err != nil {
			return toks, err
		}
		if tok.typ == TokenEnd {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func Test001LexerRecordsTokenPositions(t *testing.T) {

	cv.Convey(`Given source over several lines, each token should carry the 1-based line and rune column of its first character`, t, func() {

		toks, err := lexAll("(fn (main)\n  {1 + 22})")
		panicOn(err)
		cv.So(len(toks), cv.ShouldEqual, 11)

		cv.So(toks[0].typ, cv.ShouldEqual, TokenLParen)
		cv.So(toks[1].str, cv.ShouldEqual, "fn")
		cv.So(toks[1].col, cv.ShouldEqual, 2)
		cv.So(toks[3].str, cv.ShouldEqual, "main")
		cv.So(toks[3].col, cv.ShouldEqual, 6)

		cv.So(toks[5].typ, cv.ShouldEqual, TokenLCurly)
		cv.So(toks[5].line, cv.ShouldEqual, 2)
		cv.So(toks[5].col, cv.ShouldEqual, 3)
		cv.So(toks[8].typ, cv.ShouldEqual, TokenDecimal)
		cv.So(toks[8].num, cv.ShouldEqual, 22)
		cv.So(toks[8].col, cv.ShouldEqual, 8)
	})
}

func Test002LexingIntegersAndMinus(t *testing.T) {

	cv.Convey(`A '-' followed by a digit starts a negative integer, while a lone '-' or '-x' is a symbol`, t, func() {

		toks, err := lexAll("-5 - -x 0 -0")
		panicOn(err)
		cv.So(len(toks), cv.ShouldEqual, 5)
		cv.So(toks[0].typ, cv.ShouldEqual, TokenDecimal)
		cv.So(toks[0].num, cv.ShouldEqual, -5)
		cv.So(toks[1].typ, cv.ShouldEqual, TokenSymbol)
		cv.So(toks[1].str, cv.ShouldEqual, "-")
		cv.So(toks[2].typ, cv.ShouldEqual, TokenSymbol)
		cv.So(toks[2].str, cv.ShouldEqual, "-x")
		cv.So(toks[3].num, cv.ShouldEqual, 0)
		cv.So(toks[4].typ, cv.ShouldEqual, TokenDecimal)
	})

	cv.Convey(`An atom that starts like an integer but is not one, or overflows int64, is an invalid integer literal`, t, func() {

		_, err := lexAll("12abc")
		cv.So(KindOf(err), cv.ShouldEqual, ErrInvalidIntegerLiteral)

		_, err = lexAll("(x 99999999999999999999)")
		kind, line, col := errAt(err)
		cv.So(kind, cv.ShouldEqual, ErrInvalidIntegerLiteral)
		cv.So(line, cv.ShouldEqual, 1)
		cv.So(col, cv.ShouldEqual, 4)
	})
}

func Test003LexerSkipsComments(t *testing.T) {

	cv.Convey(`Double semicolon comments run to the end of the line`, t, func() {

		toks, err := lexAll(";; header\n(a) ;; (b)\n;;\nc")
		panicOn(err)
		cv.So(len(toks), cv.ShouldEqual, 4)
		cv.So(toks[1].str, cv.ShouldEqual, "a")
		cv.So(toks[3].str, cv.ShouldEqual, "c")
		cv.So(toks[3].line, cv.ShouldEqual, 4)
	})
}

func Test004LexerRejectsInvalidCharacters(t *testing.T) {

	cv.Convey(`Characters outside the symbol set are invalid, whether they start an atom or trail one`, t, func() {

		_, err := lexAll(`"hi"`)
		cv.So(KindOf(err), cv.ShouldEqual, ErrInvalidSymbolName)

		_, err = lexAll("(a#b)")
		kind, _, col := errAt(err)
		cv.So(kind, cv.ShouldEqual, ErrInvalidSymbolName)
		cv.So(col, cv.ShouldEqual, 3)

		_, err = lexAll("a;b")
		cv.So(KindOf(err), cv.ShouldEqual, ErrInvalidSymbolName)
	})

	cv.Convey(`Punctuation listed as symbol characters makes ordinary symbols`, t, func() {

		toks, err := lexAll("null? <= != && || a.b x[1] $_")
		panicOn(err)
		cv.So(len(toks), cv.ShouldEqual, 8)
		for _, tok := range toks {
			cv.So(tok.typ, cv.ShouldEqual, TokenSymbol)
		}
	})
}

func Test005PeekDoesNotConsume(t *testing.T) {

	cv.Convey(`PeekNextToken returns the token GetNextToken will return next`, t, func() {

		lex := NewLexer([]byte("a b"))
		p1, err := lex.PeekNextToken()
		panicOn(err)
		p2, err := lex.PeekNextToken()
		panicOn(err)
		g, err := lex.GetNextToken()
		panicOn(err)
		cv.So(p1.str, cv.ShouldEqual, "a")
		cv.So(p2.str, cv.ShouldEqual, "a")
		cv.So(g.str, cv.ShouldEqual, "a")
		g, err = lex.GetNextToken()
		panicOn(err)
		cv.So(g.str, cv.ShouldEqual, "b")
	})
}

func parseSource(src string) (*Tree, *SymbolTable, error) {
	tree := NewTree()
	syms := NewSymbolTable()
	_, err := NewParser(tree, syms).Parse([]byte(src))
	return tree, syms, err
}

func Test010ParserBuildsTree(t *testing.T) {

	cv.Convey(`The root is always node 0, a list whose children are the top-level forms in order`, t, func() {

		tree, syms, err := parseSource("(let x 1)\n(fn (main) x)")
		panicOn(err)
		root := tree.Root()
		cv.So(root.Type, cv.ShouldEqual, ExprList)
		cv.So(root.Kind, cv.ShouldEqual, KindProgram)
		cv.So(len(root.Children), cv.ShouldEqual, 2)

		let := tree.Node(root.Children[0])
		cv.So(let.Type, cv.ShouldEqual, ExprList)
		cv.So(len(let.Children), cv.ShouldEqual, 3)
		cv.So(tree.Node(let.Children[0]).Sym.Name(), cv.ShouldEqual, "let")
		cv.So(tree.Node(let.Children[2]).Int, cv.ShouldEqual, 1)

		fn := tree.Node(root.Children[1])
		cv.So(fn.Line, cv.ShouldEqual, 2)
		cv.So(fn.Col, cv.ShouldEqual, 1)

		// the same name is the same symbol
		x1 := tree.Node(let.Children[1]).Sym
		x2 := tree.Node(fn.Children[2]).Sym
		cv.So(x1 == x2, cv.ShouldBeTrue)
		got, ok := syms.Lookup("x")
		cv.So(ok, cv.ShouldBeTrue)
		cv.So(got == x1, cv.ShouldBeTrue)

		cv.So(tree.Node(ExprID(tree.Len())), cv.ShouldBeNil)
		cv.So(tree.Node(-1), cv.ShouldBeNil)
	})
}

func Test011InfixIsStoredPrefix(t *testing.T) {

	cv.Convey(`{a op b} is stored as (op a b), positioned at the opening brace`, t, func() {

		tree, _, err := parseSource("  {1 + {2 * 3}}")
		panicOn(err)
		x := tree.Node(tree.Root().Children[0])
		cv.So(x.Col, cv.ShouldEqual, 3)
		cv.So(len(x.Children), cv.ShouldEqual, 3)
		cv.So(tree.Node(x.Children[0]).Sym.Name(), cv.ShouldEqual, "+")
		cv.So(tree.Node(x.Children[1]).Int, cv.ShouldEqual, 1)
		inner := tree.Node(x.Children[2])
		cv.So(tree.Node(inner.Children[0]).Sym.Name(), cv.ShouldEqual, "*")
		cv.So(tree.Node(inner.Children[2]).Int, cv.ShouldEqual, 3)
	})

	cv.Convey(`An infix form without exactly three elements is rejected`, t, func() {

		_, _, err := parseSource("{1 +}")
		cv.So(KindOf(err), cv.ShouldEqual, ErrInfixExprNot3Elements)
		_, _, err = parseSource("{1 + 2 3}")
		cv.So(KindOf(err), cv.ShouldEqual, ErrInfixExprNot3Elements)
	})
}

func Test012ParseErrors(t *testing.T) {

	cv.Convey(`Unclosed lists report the position of their opener`, t, func() {

		_, _, err := parseSource("(let x 1)\n  (fn (main) 1")
		kind, line, col := errAt(err)
		cv.So(kind, cv.ShouldEqual, ErrUnexpectedEndOfInput)
		cv.So(line, cv.ShouldEqual, 2)
		cv.So(col, cv.ShouldEqual, 3)
	})

	cv.Convey(`A closer of the wrong shape is an expected-close error at the closer`, t, func() {

		_, _, err := parseSource("(fn (main) 1}")
		kind, _, col := errAt(err)
		cv.So(kind, cv.ShouldEqual, ErrExpectedExprClose)
		cv.So(col, cv.ShouldEqual, 13)

		_, _, err = parseSource("{1 + 2)")
		cv.So(KindOf(err), cv.ShouldEqual, ErrExpectedExprClose)
	})

	cv.Convey(`A closer with nothing open is extra input`, t, func() {

		_, _, err := parseSource("(a) )")
		kind, _, col := errAt(err)
		cv.So(kind, cv.ShouldEqual, ErrExtraCharsAtEndOfInput)
		cv.So(col, cv.ShouldEqual, 5)
	})

	cv.Convey(`Empty input parses to an empty program`, t, func() {

		tree, _, err := parseSource("  ;; nothing here\n")
		panicOn(err)
		cv.So(len(tree.Root().Children), cv.ShouldEqual, 0)
	})
}
