package snscript

import (
	"fmt"

	"fortio.org/safecast"
)

// ExprID indexes a node in a Tree. The program root is always 0.
type ExprID int32

const RootExpr ExprID = 0

// ExprType is the syntactic shape assigned by the parser.
type ExprType uint8

const (
	ExprInvalid ExprType = iota
	ExprInteger
	ExprSymbol
	ExprList
)

func (t ExprType) String() string {
	switch t {
	case ExprInteger:
		return "integer"
	case ExprSymbol:
		return "symbol"
	case ExprList:
		return "list"
	}
	return "invalid"
}

// Kind is the meaning the builder resolves for a node.
type Kind uint8

const (
	KindUnresolved Kind = iota
	KindProgram

	// keyword markers, set on the head symbol of a special form
	KindLetKeyword
	KindFnKeyword
	KindIfKeyword
	KindDoKeyword
	KindAssignKeyword
	KindConstKeyword
	KindAndKeyword
	KindOrKeyword
	KindWhileKeyword
	KindPureKeyword

	KindLetExpr
	KindFnExpr
	KindPureExpr
	KindIfExpr
	KindDoExpr
	KindAssignExpr
	KindConstExpr
	KindAndExpr
	KindOrExpr
	KindWhileExpr

	KindVar
	KindLiteral
	KindCall
)

var kindNames = [...]string{
	KindUnresolved:    "unresolved",
	KindProgram:       "program",
	KindLetKeyword:    "let-keyword",
	KindFnKeyword:     "fn-keyword",
	KindIfKeyword:     "if-keyword",
	KindDoKeyword:     "do-keyword",
	KindAssignKeyword: "=-keyword",
	KindConstKeyword:  "const-keyword",
	KindAndKeyword:    "&&-keyword",
	KindOrKeyword:     "||-keyword",
	KindWhileKeyword:  "while-keyword",
	KindPureKeyword:   "pure-keyword",
	KindLetExpr:       "let",
	KindFnExpr:        "fn",
	KindPureExpr:      "pure",
	KindIfExpr:        "if",
	KindDoExpr:        "do",
	KindAssignExpr:    "assign",
	KindConstExpr:     "const",
	KindAndExpr:       "and",
	KindOrExpr:        "or",
	KindWhileExpr:     "while",
	KindVar:           "var",
	KindLiteral:       "literal",
	KindCall:          "call",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword reports whether k marks the head symbol of a special form.
func (k Kind) IsKeyword() bool {
	return k >= KindLetKeyword && k <= KindPureKeyword
}

// exprKind maps a keyword marker to the kind of the list it heads.
func (k Kind) exprKind() Kind {
	switch k {
	case KindLetKeyword:
		return KindLetExpr
	case KindFnKeyword:
		return KindFnExpr
	case KindIfKeyword:
		return KindIfExpr
	case KindDoKeyword:
		return KindDoExpr
	case KindAssignKeyword:
		return KindAssignExpr
	case KindConstKeyword:
		return KindConstExpr
	case KindAndKeyword:
		return KindAndExpr
	case KindOrKeyword:
		return KindOrExpr
	case KindWhileKeyword:
		return KindWhileExpr
	case KindPureKeyword:
		return KindPureExpr
	}
	return KindCall
}

type ScopeKind uint8

const (
	ScopeNone ScopeKind = iota
	ScopeGlobal
	ScopeLocal
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeLocal:
		return "local"
	}
	return "none"
}

// Reference locates a variable's storage: a global slot, or a slot in
// the locals of the running function.
type Reference struct {
	Scope ScopeKind
	Slot  int
	Const bool
}

func (r Reference) String() string {
	if r.Scope == ScopeNone {
		return "-"
	}
	s := fmt.Sprintf("%s[%d]", r.Scope, r.Slot)
	if r.Const {
		s += " const"
	}
	return s
}

// Expr is one node of the expression tree. Children of a list are
// kept in source order, except that an infix form {a op b} is stored
// as (op a b).
type Expr struct {
	Type     ExprType
	Kind     Kind
	Int      int64
	Sym      *Symbol
	Children []ExprID
	Ref      Reference
	Line     int
	Col      int
}

// Tree is the node arena for one program. Nodes never move once
// added; an ExprID stays valid for the life of the Tree.
type Tree struct {
	nodes []Expr
}

func NewTree() *Tree {
	return &Tree{}
}

func (t *Tree) add(x Expr) ExprID {
	id, err := safecast.Conv[int32](len(t.nodes))
	if err != nil {
		panic(fmt.Errorf("expression arena overflow: %w", err))
	}
	t.nodes = append(t.nodes, x)
	return ExprID(id)
}

// Node returns the node for id, or nil for an out-of-range id.
func (t *Tree) Node(id ExprID) *Expr {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) Root() *Expr { return t.Node(RootExpr) }
