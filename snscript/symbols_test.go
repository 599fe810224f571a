package snscript

import (
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func Test020SymbolsAreInterned(t *testing.T) {

	cv.Convey(`Interning the same name twice yields the same symbol, numbered in first-seen order`, t, func() {

		st := NewSymbolTable()
		buf := []byte("alpha")
		a := st.Intern(buf)
		buf[0] = 'X' // Intern must have copied
		b := st.MakeSymbol("beta")
		a2 := st.MakeSymbol("alpha")

		cv.So(a == a2, cv.ShouldBeTrue)
		cv.So(a.Name(), cv.ShouldEqual, "alpha")
		cv.So(a.Number(), cv.ShouldEqual, 0)
		cv.So(b.Number(), cv.ShouldEqual, 1)
		cv.So(st.Len(), cv.ShouldEqual, 2)

		_, ok := st.Lookup("gamma")
		cv.So(ok, cv.ShouldBeFalse)
		cv.So(st.Len(), cv.ShouldEqual, 2)

		all := st.All()
		cv.So(len(all), cv.ShouldEqual, 2)
		all[0] = nil
		cv.So(st.All()[0] == a, cv.ShouldBeTrue)
	})
}

func Test030ScopesDeclareAndResolve(t *testing.T) {

	cv.Convey(`Declarations take consecutive slots, resolve through parents, and refuse live duplicates`, t, func() {

		st := NewSymbolTable()
		x, y, z := st.MakeSymbol("x"), st.MakeSymbol("y"), st.MakeSymbol("z")

		s := NewScopes()
		g := s.New(NoScope, "global", true)
		f := s.New(g, "f", false)
		cv.So(s.Len(), cv.ShouldEqual, 2)
		cv.So(s.Get(NoScope), cv.ShouldBeNil)

		gx, ok := s.Declare(g, x, true)
		cv.So(ok, cv.ShouldBeTrue)
		cv.So(gx, cv.ShouldResemble, Reference{Scope: ScopeGlobal, Slot: 0, Const: true})

		fy, ok := s.Declare(f, y, false)
		cv.So(ok, cv.ShouldBeTrue)
		cv.So(fy, cv.ShouldResemble, Reference{Scope: ScopeLocal, Slot: 0})

		// a local may have the same name as a global
		fx, ok := s.Declare(f, x, false)
		cv.So(ok, cv.ShouldBeTrue)
		cv.So(fx.Slot, cv.ShouldEqual, 1)

		_, ok = s.Declare(f, y, false)
		cv.So(ok, cv.ShouldBeFalse)

		ref, owner, ok := s.Resolve(f, x)
		cv.So(ok, cv.ShouldBeTrue)
		cv.So(owner, cv.ShouldEqual, f)
		cv.So(ref, cv.ShouldResemble, fx)

		ref, owner, ok = s.Resolve(g, x)
		cv.So(ok, cv.ShouldBeTrue)
		cv.So(owner, cv.ShouldEqual, g)
		cv.So(ref, cv.ShouldResemble, gx)

		_, _, ok = s.Resolve(f, z)
		cv.So(ok, cv.ShouldBeFalse)
	})
}

func Test031BlockMarkersRetractDeclarations(t *testing.T) {

	cv.Convey(`Releasing a block marker drops its declarations but keeps MaxCount, so sibling blocks share slots`, t, func() {

		st := NewSymbolTable()
		p, a, b, c := st.MakeSymbol("p"), st.MakeSymbol("a"), st.MakeSymbol("b"), st.MakeSymbol("c")

		s := NewScopes()
		g := s.New(NoScope, "global", true)
		f := s.New(g, "f", false)
		s.Declare(f, p, false)

		m := s.Mark(f)
		ra, _ := s.Declare(f, a, false)
		rb, _ := s.Declare(f, b, false)
		cv.So(ra.Slot, cv.ShouldEqual, 1)
		cv.So(rb.Slot, cv.ShouldEqual, 2)
		s.Release(m)

		cv.So(s.Get(f).Count, cv.ShouldEqual, 1)
		cv.So(s.Get(f).MaxCount, cv.ShouldEqual, 3)
		_, _, ok := s.Resolve(f, a)
		cv.So(ok, cv.ShouldBeFalse)

		m = s.Mark(f)
		rc, _ := s.Declare(f, c, false)
		cv.So(rc.Slot, cv.ShouldEqual, 1)
		// a was released, so it may be declared again
		_, ok = s.Declare(f, a, false)
		cv.So(ok, cv.ShouldBeTrue)
		s.Release(m)
		cv.So(s.Get(f).MaxCount, cv.ShouldEqual, 3)

		decls := s.Declarations(f)
		cv.So(len(decls), cv.ShouldEqual, 1)
		cv.So(decls[0].Name, cv.ShouldEqual, "p")
	})

	cv.Convey(`The global scope never retracts`, t, func() {

		st := NewSymbolTable()
		a := st.MakeSymbol("a")
		s := NewScopes()
		g := s.New(NoScope, "global", true)
		m := s.Mark(g)
		s.Declare(g, a, false)
		s.Release(m)
		_, _, ok := s.Resolve(g, a)
		cv.So(ok, cv.ShouldBeTrue)
		cv.So(s.Get(g).Count, cv.ShouldEqual, 1)
	})
}

func Test032ConstantBindings(t *testing.T) {

	cv.Convey(`Constant bindings are recorded per slot`, t, func() {

		st := NewSymbolTable()
		s := NewScopes()
		g := s.New(NoScope, "global", true)
		ref, _ := s.Declare(g, st.MakeSymbol("k"), true)
		s.BindConstant(g, ref.Slot, Int(7))

		v, ok := s.Constant(g, ref.Slot)
		cv.So(ok, cv.ShouldBeTrue)
		cv.So(intOf(v), cv.ShouldEqual, 7)
		_, ok = s.Constant(g, ref.Slot+1)
		cv.So(ok, cv.ShouldBeFalse)
		_, ok = s.Constant(ScopeID(99), 0)
		cv.So(ok, cv.ShouldBeFalse)

		cv.So(s.Show(g), cv.ShouldContainSubstring, "k -> global[0] const")
	})
}
