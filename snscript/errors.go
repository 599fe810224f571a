package snscript

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the parser, builder and
// evaluator can report.
type ErrorKind int

const (
	ErrGeneric ErrorKind = iota

	// parse
	ErrUnexpectedEndOfInput
	ErrExpectedExprClose
	ErrInfixExprNot3Elements
	ErrExtraCharsAtEndOfInput
	ErrInvalidIntegerLiteral
	ErrInvalidSymbolName

	// build
	ErrLetExprNot3Items
	ErrConstExprNot3Items
	ErrAssignExprNot3Items
	ErrExprBadDest
	ErrFnExprTooShort
	ErrFnProtoNotList
	ErrFnProtoContainsNonSymbols
	ErrIfExprInvalidLength
	ErrDoExprTooShort
	ErrWhileExprInvalidLength
	ErrAndExprTooShort
	ErrOrExprTooShort
	ErrEmptyExpr
	ErrUnexpectedKeyword
	ErrNestedFnExpr
	ErrNestedLetExpr
	ErrExprOutsideOfFn
	ErrUndeclared
	ErrRedeclared
	ErrNotAllowedInPureFn
	ErrMissingMain
	ErrInvalidMain

	// run
	ErrCalleeNotAFn
	ErrWrongArgCountInCall
	ErrWrongValueType
	ErrInvalidParamsToFn
	ErrDivideByZero
	ErrStackExhausted
)

var errorKindText = map[ErrorKind]string{
	ErrGeneric:                   "internal error",
	ErrUnexpectedEndOfInput:      "unexpected end of input",
	ErrExpectedExprClose:         "expected expression close",
	ErrInfixExprNot3Elements:     "infix expression must have exactly 3 elements",
	ErrExtraCharsAtEndOfInput:    "extra characters at end of input",
	ErrInvalidIntegerLiteral:     "invalid integer literal",
	ErrInvalidSymbolName:         "invalid symbol name",
	ErrLetExprNot3Items:          "let expression must have 3 items",
	ErrConstExprNot3Items:        "const expression must have 3 items",
	ErrAssignExprNot3Items:       "assignment must have 3 items",
	ErrExprBadDest:               "bad destination",
	ErrFnExprTooShort:            "fn expression too short",
	ErrFnProtoNotList:            "fn prototype must be a list",
	ErrFnProtoContainsNonSymbols: "fn prototype may only contain symbols",
	ErrIfExprInvalidLength:       "if expression must have 3 or 4 items",
	ErrDoExprTooShort:            "do expression needs a body",
	ErrWhileExprInvalidLength:    "while expression must have 2 or 3 items",
	ErrAndExprTooShort:           "&& needs at least 2 operands",
	ErrOrExprTooShort:            "|| needs at least 2 operands",
	ErrEmptyExpr:                 "empty expression",
	ErrUnexpectedKeyword:         "keyword used as a value",
	ErrNestedFnExpr:              "functions may only be declared at top level",
	ErrNestedLetExpr:             "declaration not directly inside a block",
	ErrExprOutsideOfFn:           "only declarations are allowed at top level",
	ErrUndeclared:                "undeclared variable",
	ErrRedeclared:                "variable redeclared",
	ErrNotAllowedInPureFn:        "not allowed in pure function",
	ErrMissingMain:               "no main function",
	ErrInvalidMain:               "main must be a function taking at most one parameter",
	ErrCalleeNotAFn:              "callee is not a function",
	ErrWrongArgCountInCall:       "wrong number of arguments in call",
	ErrWrongValueType:            "wrong value type",
	ErrInvalidParamsToFn:         "invalid parameters to function",
	ErrDivideByZero:              "division by zero",
	ErrStackExhausted:            "stack exhausted",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindText[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the single error type surfaced by Program. Line and Col are
// 1-based; zero means no position is known. Sym is the text of the
// offending symbol, if any.
type Error struct {
	Kind ErrorKind
	Line int
	Col  int
	Sym  string
	Err  error
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Sym != "" {
		s += fmt.Sprintf(" '%s'", e.Sym)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	if e.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, s)
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or ErrGeneric when err does not
// wrap an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrGeneric
}

// sentinel errors. Builtins return the first four; the evaluator
// maps them to kinds.
var (
	ErrWrongNargs   = errors.New("wrong number of arguments")
	ErrWrongType    = errors.New("wrong argument type")
	ErrDivByZero    = errors.New("integer divide by zero")
	ErrInvalidBound = errors.New("bound must be positive")
	ErrNoSuchFunc   = errors.New("no such function")
	ErrFileExists   = errors.New("refusing to overwrite existing file")
)

func newError(kind ErrorKind, x *Expr) *Error {
	e := &Error{Kind: kind}
	if x != nil {
		e.Line = x.Line
		e.Col = x.Col
		if x.Sym != nil {
			e.Sym = x.Sym.Name()
		}
	}
	return e
}
