package snscript

import (
	"io"
	"math/rand"
	"time"
)

// ExtensionBuiltins returns the optional host builtins enabled with
// --ext. None of them are pure.
//
//	(random n)  a pseudo-random integer in [0, n)
//	(now)       the wall clock in unix nanoseconds
//	(elapsed t) nanoseconds since an earlier (now)
func ExtensionBuiltins(seed int64) []*Builtin {
	rng := rand.New(rand.NewSource(seed))
	return []*Builtin{
		{Name: "random", Fn: RandomFunction(rng)},
		{Name: "now", Fn: NowFunction},
		{Name: "elapsed", Fn: ElapsedFunction},
	}
}

func RandomFunction(rng *rand.Rand) BuiltinFunc {
	return func(ret *Value, args []Value) error {
		if len(args) != 1 {
			return ErrWrongNargs
		}
		n, ok := args[0].AsInt()
		if !ok {
			return ErrWrongType
		}
		if n <= 0 {
			return ErrInvalidBound
		}
		*ret = Int(rng.Int63n(n))
		return nil
	}
}

func NowFunction(ret *Value, args []Value) error {
	if len(args) != 0 {
		return ErrWrongNargs
	}
	*ret = Int(time.Now().UnixNano())
	return nil
}

func ElapsedFunction(ret *Value, args []Value) error {
	if len(args) != 1 {
		return ErrWrongNargs
	}
	start, ok := args[0].AsInt()
	if !ok {
		return ErrWrongType
	}
	*ret = Int(time.Now().UnixNano() - start)
	return nil
}

// builtinsFor is the builtin set cfg asks for, with println writing
// to out.
func builtinsFor(cfg *Config, out io.Writer) []*Builtin {
	b := StandardBuiltins(out)
	if cfg.Extensions {
		b = append(b, ExtensionBuiltins(time.Now().UnixNano())...)
	}
	return b
}
