package snscript

import (
	"fmt"
	"strconv"
)

type ValueType uint8

const (
	ValueNull ValueType = iota
	ValueInteger
	ValueBoolean
	ValueUserFn
	ValueBuiltinFn
)

func (t ValueType) String() string {
	switch t {
	case ValueNull:
		return "null"
	case ValueInteger:
		return "integer"
	case ValueBoolean:
		return "boolean"
	case ValueUserFn:
		return "fn"
	case ValueBuiltinFn:
		return "builtin"
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// Function is a user function declared with fn or pure. Its parameters
// occupy slots 0 through ParamCount-1 of its Scope.
type Function struct {
	Name       *Symbol
	ParamCount int
	Scope      ScopeID
	Body       []ExprID
	Pure       bool
	Decl       ExprID
}

// Value is a tagged runtime value. The zero Value is null.
type Value struct {
	typ     ValueType
	i       int64
	fn      *Function
	builtin *Builtin
}

var (
	Null  = Value{}
	True  = Value{typ: ValueBoolean, i: 1}
	False = Value{typ: ValueBoolean}
)

func Int(i int64) Value { return Value{typ: ValueInteger, i: i} }

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func UserFn(f *Function) Value { return Value{typ: ValueUserFn, fn: f} }

func BuiltinFn(b *Builtin) Value { return Value{typ: ValueBuiltinFn, builtin: b} }

func (v Value) Type() ValueType { return v.typ }

func (v Value) IsNull() bool { return v.typ == ValueNull }

func (v Value) IsFn() bool { return v.typ == ValueUserFn || v.typ == ValueBuiltinFn }

func (v Value) AsInt() (int64, bool) { return v.i, v.typ == ValueInteger }

func (v Value) AsBool() (bool, bool) { return v.i != 0, v.typ == ValueBoolean }

func (v Value) Function() *Function { return v.fn }

func (v Value) Builtin() *Builtin { return v.builtin }

// Equal is true for values of the same type with the same payload.
// Functions compare by identity.
func (v Value) Equal(w Value) bool {
	if v.typ != w.typ {
		return false
	}
	switch v.typ {
	case ValueNull:
		return true
	case ValueInteger, ValueBoolean:
		return v.i == w.i
	case ValueUserFn:
		return v.fn == w.fn
	case ValueBuiltinFn:
		return v.builtin == w.builtin
	}
	return false
}

// isPureFn reports whether v may be called from a pure function.
func (v Value) isPureFn() bool {
	switch v.typ {
	case ValueUserFn:
		return v.fn.Pure
	case ValueBuiltinFn:
		return v.builtin.Pure
	}
	return false
}

func (v Value) String() string {
	switch v.typ {
	case ValueNull:
		return "null"
	case ValueInteger:
		return strconv.FormatInt(v.i, 10)
	case ValueBoolean:
		if v.i != 0 {
			return "true"
		}
		return "false"
	case ValueUserFn:
		return fmt.Sprintf("<fn %s>", v.fn.Name.Name())
	case ValueBuiltinFn:
		return fmt.Sprintf("<builtin %s>", v.builtin.Name)
	}
	return "<invalid>"
}
