package snscript

import (
	"fmt"
	"io"
)

func panicOn(err error) {
	if err != nil {
		panic(err)
	}
}

// buildProgram parses and builds src with println discarded.
func buildProgram(src string) (*Program, error) {
	p, err := NewProgramWithBuiltins([]byte(src), StandardBuiltins(io.Discard))
	if err != nil {
		return nil, err
	}
	return p, p.Build()
}

// runMain builds src and runs its main with no argument.
func runMain(src string) (Value, error) {
	p, err := NewProgramWithBuiltins([]byte(src), StandardBuiltins(io.Discard))
	if err != nil {
		return Null, err
	}
	defer p.Close()
	return p.RunMain(nil)
}

func intOf(v Value) int64 {
	n, ok := v.AsInt()
	if !ok {
		panic(fmt.Sprintf("expected integer, got %s", v.Type()))
	}
	return n
}

// errAt returns the kind and position of err, or panics if err is not
// an *Error.
func errAt(err error) (ErrorKind, int, int) {
	e, ok := err.(*Error)
	if !ok {
		panic(fmt.Sprintf("expected *Error, got %T: %v", err, err))
	}
	return e.Kind, e.Line, e.Col
}
