package snscript

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// BuiltinFunc writes its result into ret. args is only valid for the
// duration of the call.
type BuiltinFunc func(ret *Value, args []Value) error

// Builtin is a host function installed as a constant global. Pure
// builtins may be called from pure functions.
type Builtin struct {
	Name string
	Pure bool
	Fn   BuiltinFunc
}

func intArgs(args []Value) ([]int64, error) {
	out := make([]int64, len(args))
	for i, a := range args {
		n, ok := a.AsInt()
		if !ok {
			return nil, ErrWrongType
		}
		out[i] = n
	}
	return out, nil
}

func AddFunction(ret *Value, args []Value) error {
	nums, err := intArgs(args)
	if err != nil {
		return err
	}
	var sum int64
	for _, n := range nums {
		sum += n
	}
	*ret = Int(sum)
	return nil
}

func MulFunction(ret *Value, args []Value) error {
	nums, err := intArgs(args)
	if err != nil {
		return err
	}
	prod := int64(1)
	for _, n := range nums {
		prod *= n
	}
	*ret = Int(prod)
	return nil
}

// SubFunction negates one argument or subtracts the second of two.
func SubFunction(ret *Value, args []Value) error {
	if len(args) != 1 && len(args) != 2 {
		return ErrWrongNargs
	}
	nums, err := intArgs(args)
	if err != nil {
		return err
	}
	if len(nums) == 1 {
		*ret = Int(-nums[0])
		return nil
	}
	*ret = Int(nums[0] - nums[1])
	return nil
}

func BinaryIntFunction(name string) BuiltinFunc {
	return func(ret *Value, args []Value) error {
		if len(args) != 2 {
			return ErrWrongNargs
		}
		nums, err := intArgs(args)
		if err != nil {
			return err
		}
		a, b := nums[0], nums[1]
		switch name {
		case "/":
			if b == 0 {
				return ErrDivByZero
			}
			*ret = Int(a / b)
		case "%":
			if b == 0 {
				return ErrDivByZero
			}
			*ret = Int(a % b)
		case "<":
			*ret = Bool(a < b)
		case ">":
			*ret = Bool(a > b)
		case "<=":
			*ret = Bool(a <= b)
		case ">=":
			*ret = Bool(a >= b)
		default:
			return fmt.Errorf("unknown integer operator '%s'", name)
		}
		return nil
	}
}

func EqualityFunction(name string) BuiltinFunc {
	return func(ret *Value, args []Value) error {
		if len(args) != 2 {
			return ErrWrongNargs
		}
		eq := args[0].Equal(args[1])
		if name == "!=" {
			eq = !eq
		}
		*ret = Bool(eq)
		return nil
	}
}

func NotFunction(ret *Value, args []Value) error {
	if len(args) != 1 {
		return ErrWrongNargs
	}
	b, ok := args[0].AsBool()
	if !ok {
		return ErrWrongType
	}
	*ret = Bool(!b)
	return nil
}

func TypeQueryFunction(name string) BuiltinFunc {
	return func(ret *Value, args []Value) error {
		if len(args) != 1 {
			return ErrWrongNargs
		}
		var result bool
		switch name {
		case "int?":
			result = args[0].Type() == ValueInteger
		case "bool?":
			result = args[0].Type() == ValueBoolean
		case "fn?":
			result = args[0].IsFn()
		case "null?":
			result = args[0].IsNull()
		default:
			return fmt.Errorf("unknown type query '%s'", name)
		}
		*ret = Bool(result)
		return nil
	}
}

// PrintFunction returns a println that writes to w.
func PrintFunction(w io.Writer) BuiltinFunc {
	return func(ret *Value, args []Value) error {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		_, err := fmt.Fprintln(w, strings.Join(parts, " "))
		*ret = Null
		return err
	}
}

// StandardBuiltins returns the default builtin set; println writes to out.
func StandardBuiltins(out io.Writer) []*Builtin {
	if out == nil {
		out = os.Stdout
	}
	return []*Builtin{
		{Name: "+", Pure: true, Fn: AddFunction},
		{Name: "-", Pure: true, Fn: SubFunction},
		{Name: "*", Pure: true, Fn: MulFunction},
		{Name: "/", Pure: true, Fn: BinaryIntFunction("/")},
		{Name: "%", Pure: true, Fn: BinaryIntFunction("%")},
		{Name: "<", Pure: true, Fn: BinaryIntFunction("<")},
		{Name: ">", Pure: true, Fn: BinaryIntFunction(">")},
		{Name: "<=", Pure: true, Fn: BinaryIntFunction("<=")},
		{Name: ">=", Pure: true, Fn: BinaryIntFunction(">=")},
		{Name: "==", Pure: true, Fn: EqualityFunction("==")},
		{Name: "!=", Pure: true, Fn: EqualityFunction("!=")},
		{Name: "!", Pure: true, Fn: NotFunction},
		{Name: "int?", Pure: true, Fn: TypeQueryFunction("int?")},
		{Name: "bool?", Pure: true, Fn: TypeQueryFunction("bool?")},
		{Name: "fn?", Pure: true, Fn: TypeQueryFunction("fn?")},
		{Name: "null?", Pure: true, Fn: TypeQueryFunction("null?")},
		{Name: "println", Pure: false, Fn: PrintFunction(out)},
	}
}

// constants installed ahead of the builtins
var standardConstants = []struct {
	name string
	val  Value
}{
	{"null", Null},
	{"true", True},
	{"false", False},
}
