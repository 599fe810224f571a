package snscript

import (
	"bytes"
	"strings"
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func quietConfig() *Config {
	cfg := NewConfig()
	cfg.NoLiner = true
	cfg.Quiet = true
	cfg.Color = "off"
	cfg.Prompt = "sn> "
	return cfg
}

func Test600SessionKeepsDeclarations(t *testing.T) {

	cv.Convey(`Declarations persist across inputs, and other input is evaluated against them`, t, func() {

		var out bytes.Buffer
		s := NewSession(quietConfig(), &out)

		v, err := s.Eval("(let x 5)")
		panicOn(err)
		cv.So(v.IsNull(), cv.ShouldBeTrue)

		v, err = s.Eval("(+ x 1)")
		panicOn(err)
		cv.So(intOf(v), cv.ShouldEqual, 6)

		_, err = s.Eval("(fn (sq n) (* n n))")
		panicOn(err)
		v, err = s.Eval("(sq x)")
		panicOn(err)
		cv.So(intOf(v), cv.ShouldEqual, 25)

		// several expressions: the last one is the value
		v, err = s.Eval("(println x) (sq 3)")
		panicOn(err)
		cv.So(intOf(v), cv.ShouldEqual, 9)
		cv.So(out.String(), cv.ShouldEqual, "5\n")

		cv.So(s.Declarations(), cv.ShouldResemble, []string{"(let x 5)", "(fn (sq n) (* n n))"})
		cv.So(s.Last(), cv.ShouldNotBeNil)
	})

	cv.Convey(`A declaration that fails to build is not kept`, t, func() {

		s := NewSession(quietConfig(), nil)
		_, err := s.Eval("(let x y)")
		cv.So(KindOf(err), cv.ShouldEqual, ErrUndeclared)
		cv.So(len(s.Declarations()), cv.ShouldEqual, 0)

		_, err = s.Eval("(let x 1)")
		panicOn(err)
		_, err = s.Eval("(let x 2)")
		cv.So(KindOf(err), cv.ShouldEqual, ErrRedeclared)
		cv.So(len(s.Declarations()), cv.ShouldEqual, 1)

		s.Reset()
		cv.So(len(s.Declarations()), cv.ShouldEqual, 0)
		_, err = s.Eval("(let x 2)")
		cv.So(err, cv.ShouldBeNil)
	})

	cv.Convey(`Error positions refer to the input, not the assembled session`, t, func() {

		s := NewSession(quietConfig(), nil)
		_, err := s.Eval("(let a 1)")
		panicOn(err)
		_, err = s.Eval("(let b 2)")
		panicOn(err)

		_, err = s.Eval("(+ a\n   c)")
		e := err.(*Error)
		cv.So(e.Kind, cv.ShouldEqual, ErrUndeclared)
		cv.So(e.Sym, cv.ShouldEqual, "c")
		cv.So(e.Line, cv.ShouldEqual, 2)
		cv.So(e.Col, cv.ShouldEqual, 4)

		_, err = s.Eval("(let d (/ a 0))")
		e = err.(*Error)
		cv.So(e.Kind, cv.ShouldEqual, ErrDivideByZero)
		cv.So(e.Line, cv.ShouldEqual, 1)
		cv.So(e.Col, cv.ShouldEqual, 8)
	})

	cv.Convey(`Empty input does nothing`, t, func() {

		s := NewSession(quietConfig(), nil)
		v, err := s.Eval("  ;; just a comment")
		panicOn(err)
		cv.So(v.IsNull(), cv.ShouldBeTrue)
	})
}

func Test601ShiftError(t *testing.T) {

	cv.Convey(`shiftError moves positioned errors back, and leaves others alone`, t, func() {

		e := &Error{Kind: ErrUndeclared, Line: 5, Col: 2, Sym: "q"}
		moved := shiftError(e, 3).(*Error)
		cv.So(moved.Line, cv.ShouldEqual, 2)
		cv.So(e.Line, cv.ShouldEqual, 5)

		cv.So(shiftError(e, 0), cv.ShouldEqual, e)
		cv.So(shiftError(e, 5), cv.ShouldEqual, e)
		cv.So(shiftError(nil, 2), cv.ShouldBeNil)
		cv.So(shiftError(ErrWrongType, 2), cv.ShouldEqual, ErrWrongType)
	})
}

func Test602IsBalanced(t *testing.T) {

	cv.Convey(`isBalanced tells the repl when to stop asking for more lines`, t, func() {

		cv.So(isBalanced("(+ 1 2)"), cv.ShouldBeTrue)
		cv.So(isBalanced("(fn (main)"), cv.ShouldBeFalse)
		cv.So(isBalanced("{1 + (f"), cv.ShouldBeFalse)
		cv.So(isBalanced("(a ;; ) ignored"), cv.ShouldBeFalse)
		cv.So(isBalanced("(a ;; (\n)"), cv.ShouldBeTrue)
		cv.So(isBalanced(")"), cv.ShouldBeTrue)
	})
}

func Test603ReplLoop(t *testing.T) {

	cv.Convey(`The repl reads until input balances, prints non-null values and reports errors`, t, func() {

		in := strings.NewReader("(let x 2)\n(* x\n  21)\n(println 7)\n(+ x y)\n.run\n.quit\n(+ 1 1)\n")
		var out, errOut bytes.Buffer
		err := Repl(quietConfig(), in, &out, &errOut)
		cv.So(err, cv.ShouldBeNil)

		cv.So(out.String(), cv.ShouldContainSubstring, "42\n")
		cv.So(out.String(), cv.ShouldContainSubstring, "7\n")
		cv.So(out.String(), cv.ShouldContainSubstring, "... ")
		cv.So(errOut.String(), cv.ShouldContainSubstring, "undeclared variable 'y'")
		cv.So(errOut.String(), cv.ShouldContainSubstring, "undeclared variable 'main'")
	})

	cv.Convey(`.ls lists the session's declarations and .reset forgets them`, t, func() {

		in := strings.NewReader("(let x 2)\n.ls\n.reset\n.ls\n")
		var out, errOut bytes.Buffer
		panicOn(Repl(quietConfig(), in, &out, &errOut))
		cv.So(strings.Count(out.String(), "(let x 2)\n"), cv.ShouldEqual, 1)
		cv.So(out.String(), cv.ShouldContainSubstring, "x -> global[")
		cv.So(out.String(), cv.ShouldContainSubstring, "session cleared.")
	})

	cv.Convey(`With ExitOnFailure the repl stops at the first error`, t, func() {

		cfg := quietConfig()
		cfg.ExitOnFailure = true
		in := strings.NewReader("(/ 1 0)\n(println 99)\n")
		var out, errOut bytes.Buffer
		err := Repl(cfg, in, &out, &errOut)
		cv.So(KindOf(err), cv.ShouldEqual, ErrDivideByZero)
		cv.So(out.String(), cv.ShouldNotContainSubstring, "99")
	})

	cv.Convey(`.run calls main with an optional argument`, t, func() {

		in := strings.NewReader("(fn (main n) {n * 3})\n.run 5\n")
		var out, errOut bytes.Buffer
		panicOn(Repl(quietConfig(), in, &out, &errOut))
		cv.So(out.String(), cv.ShouldContainSubstring, "15\n")
		cv.So(errOut.String(), cv.ShouldEqual, "")
	})
}
