package snscript

// Parser turns source into a Tree. Symbols are interned through the
// owning program's table so the builder can compare them by identity.
type Parser struct {
	lexer   *Lexer
	tree    *Tree
	symbols *SymbolTable
}

func NewParser(tree *Tree, symbols *SymbolTable) *Parser {
	return &Parser{tree: tree, symbols: symbols}
}

// Parse reads every top-level form of src into the tree and returns
// the program root, which is always RootExpr.
func (p *Parser) Parse(src []byte) (ExprID, error) {
	p.lexer = NewLexer(src)
	root := p.tree.add(Expr{Type: ExprList, Kind: KindProgram, Line: 1, Col: 1})

	var kids []ExprID
	for {
		tok, err := p.lexer.GetNextToken()
		if err != nil {
			return root, err
		}
		switch tok.typ {
		case TokenEnd:
			p.tree.Node(root).Children = kids
			return root, nil
		case TokenRParen, TokenRCurly:
			return root, &Error{Kind: ErrExtraCharsAtEndOfInput, Line: tok.line, Col: tok.col, Sym: tok.String()}
		}
		id, err := p.ParseExpression(tok, 0)
		if err != nil {
			return root, err
		}
		kids = append(kids, id)
	}
}

func (p *Parser) ParseExpression(tok Token, depth int) (ExprID, error) {
	switch tok.typ {
	case TokenLParen:
		return p.ParseList(tok, depth+1)
	case TokenLCurly:
		return p.ParseInfix(tok, depth+1)
	case TokenDecimal:
		return p.tree.add(Expr{Type: ExprInteger, Int: tok.num, Line: tok.line, Col: tok.col}), nil
	case TokenSymbol:
		sym := p.symbols.MakeSymbol(tok.str)
		return p.tree.add(Expr{Type: ExprSymbol, Sym: sym, Line: tok.line, Col: tok.col}), nil
	case TokenEnd:
		return 0, &Error{Kind: ErrUnexpectedEndOfInput, Line: tok.line, Col: tok.col}
	}
	return 0, &Error{Kind: ErrExpectedExprClose, Line: tok.line, Col: tok.col, Sym: tok.String()}
}

func (p *Parser) parseItems(open Token, closer TokenType, depth int) ([]ExprID, error) {
	var kids []ExprID
	for {
		tok, err := p.lexer.GetNextToken()
		if err != nil {
			return nil, err
		}
		switch tok.typ {
		case closer:
			return kids, nil
		case TokenEnd:
			return nil, &Error{Kind: ErrUnexpectedEndOfInput, Line: open.line, Col: open.col, Sym: open.String()}
		case TokenRParen, TokenRCurly:
			return nil, &Error{Kind: ErrExpectedExprClose, Line: tok.line, Col: tok.col, Sym: tok.String()}
		}
		id, err := p.ParseExpression(tok, depth)
		if err != nil {
			return nil, err
		}
		kids = append(kids, id)
	}
}

func (p *Parser) ParseList(open Token, depth int) (ExprID, error) {
	id := p.tree.add(Expr{Type: ExprList, Line: open.line, Col: open.col})
	kids, err := p.parseItems(open, TokenRParen, depth)
	if err != nil {
		return id, err
	}
	p.tree.Node(id).Children = kids
	return id, nil
}

// ParseInfix reads {a op b} and stores it as (op a b).
func (p *Parser) ParseInfix(open Token, depth int) (ExprID, error) {
	id := p.tree.add(Expr{Type: ExprList, Line: open.line, Col: open.col})
	kids, err := p.parseItems(open, TokenRCurly, depth)
	if err != nil {
		return id, err
	}
	if len(kids) != 3 {
		return id, &Error{Kind: ErrInfixExprNot3Elements, Line: open.line, Col: open.col}
	}
	kids[0], kids[1] = kids[1], kids[0]
	p.tree.Node(id).Children = kids
	return id, nil
}
