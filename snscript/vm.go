package snscript

import (
	"errors"
	"fmt"
	"io"
)

func newMachine(p *Program, trace io.Writer) *machine {
	return &machine{
		prog:      p,
		tree:      p.tree,
		frames:    make([]Frame, 0, 64),
		values:    make([]Value, 0, 256),
		maxFrames: p.Limits.MaxFrames,
		maxValues: p.Limits.MaxValues,
		trace:     trace,
	}
}

// loadGlobals reserves the global slots and fills in constant bindings.
func (m *machine) loadGlobals() error {
	g := m.prog.scopes.Get(m.prog.global)
	base, err := m.alloc(g.MaxCount, RootExpr)
	if err != nil {
		return err
	}
	for slot, v := range g.constants {
		m.values[base+slot] = v
	}
	return nil
}

// eval runs id to completion, leaving its result in dst.
func (m *machine) eval(id ExprID, locals, dst int) error {
	base := len(m.frames)
	if err := m.push(id, locals, dst); err != nil {
		return err
	}
	for len(m.frames) > base {
		m.stats.Steps++
		if err := m.step(); err != nil {
			return err
		}
	}
	return nil
}

// runTopLevel executes every top-level statement in order.
func (m *machine) runTopLevel() error {
	mark := m.top
	result, err := m.alloc(1, RootExpr)
	if err != nil {
		return err
	}
	for _, id := range m.tree.Root().Children {
		if err := m.eval(id, noLocals, result); err != nil {
			return err
		}
	}
	m.top = mark
	return nil
}

// call runs fn with args after the top-level statements have run.
func (m *machine) call(fn *Function, args []Value) (Value, error) {
	mark := m.top
	result, err := m.alloc(1, fn.Decl)
	if err != nil {
		return Null, err
	}
	locals, err := m.alloc(m.prog.scopes.Get(fn.Scope).MaxCount, fn.Decl)
	if err != nil {
		return Null, err
	}
	copy(m.values[locals:locals+fn.ParamCount], args)
	for _, id := range fn.Body {
		if err := m.eval(id, locals, result); err != nil {
			return Null, err
		}
	}
	v := m.values[result]
	m.top = mark
	return v, nil
}

func (m *machine) step() error {
	f := &m.frames[len(m.frames)-1]
	x := m.tree.Node(f.Expr)
	switch x.Kind {
	case KindCall:
		return m.stepCall(f, x)
	case KindLetExpr, KindConstExpr, KindAssignExpr:
		return m.stepStore(f, x)
	case KindIfExpr:
		return m.stepIf(f, x)
	case KindDoExpr:
		return m.stepDo(f, x)
	case KindAndExpr, KindOrExpr:
		return m.stepLogic(f, x)
	case KindWhileExpr:
		return m.stepWhile(f, x)
	case KindFnExpr, KindPureExpr:
		// already bound as constants before the run started
		m.values[f.Dst] = Null
		m.pop()
		return nil
	}
	return newError(ErrGeneric, x)
}

// Every step function below finishes updating f before it calls push,
// which may move the frame array.

func (m *machine) stepCall(f *Frame, x *Expr) error {
	if f.phase == phaseStart {
		tmp, err := m.alloc(1, f.Expr)
		if err != nil {
			return err
		}
		f.tmp = tmp
		f.phase = phaseCallee
		return m.push(x.Children[0], f.Locals, tmp)
	}

	if f.phase == phaseCallee {
		callee := m.values[f.tmp]
		nargs := len(x.Children) - 1
		var size int
		switch callee.Type() {
		case ValueUserFn:
			fn := callee.Function()
			if nargs != fn.ParamCount {
				e := newError(ErrWrongArgCountInCall, x)
				e.Sym = fn.Name.Name()
				return e
			}
			size = m.prog.scopes.Get(fn.Scope).MaxCount
		case ValueBuiltinFn:
			size = nargs
		default:
			return newError(ErrCalleeNotAFn, m.tree.Node(x.Children[0]))
		}
		args, err := m.alloc(size, f.Expr)
		if err != nil {
			return err
		}
		f.callee = callee
		f.args = args
		f.nargs = nargs
		f.step = 1
		f.phase = phaseArgs
	}

	if f.phase == phaseArgs {
		if f.step <= f.nargs {
			i := f.step
			f.step++
			return m.push(x.Children[i], f.Locals, f.args+i-1)
		}
		if b := f.callee.Builtin(); b != nil {
			err := b.Fn(&m.values[f.Dst], m.values[f.args:f.args+f.nargs])
			if err != nil {
				return builtinError(err, x, b)
			}
			m.pop()
			return nil
		}
		f.phase = phaseBody
		f.step = 0
	}

	body := f.callee.Function().Body
	if f.step < len(body) {
		i := f.step
		f.step++
		dst := f.tmp
		if i == len(body)-1 {
			dst = f.Dst
		}
		return m.push(body[i], f.args, dst)
	}
	m.pop()
	return nil
}

func builtinError(err error, x *Expr, b *Builtin) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	kind := ErrInvalidParamsToFn
	switch {
	case errors.Is(err, ErrWrongType):
		kind = ErrWrongValueType
	case errors.Is(err, ErrDivByZero):
		kind = ErrDivideByZero
	}
	e = newError(kind, x)
	e.Sym = b.Name
	e.Err = err
	return e
}

func (m *machine) stepStore(f *Frame, x *Expr) error {
	switch f.phase {
	case phaseStart:
		tmp, err := m.alloc(1, f.Expr)
		if err != nil {
			return err
		}
		f.tmp = tmp
		f.phase = phaseStore
		return m.push(x.Children[2], f.Locals, tmp)
	case phaseStore:
		if x.Kind == KindAssignExpr && x.Ref.Const {
			return newError(ErrExprBadDest, m.tree.Node(x.Children[1]))
		}
		m.store(x.Ref, f.Locals, m.values[f.tmp])
		m.values[f.Dst] = Null
		m.pop()
		return nil
	}
	return newError(ErrGeneric, x)
}

func (m *machine) boolAt(slot int, from ExprID) (bool, error) {
	b, ok := m.values[slot].AsBool()
	if !ok {
		return false, newError(ErrWrongValueType, m.tree.Node(from))
	}
	return b, nil
}

func (m *machine) stepIf(f *Frame, x *Expr) error {
	switch f.phase {
	case phaseStart:
		tmp, err := m.alloc(1, f.Expr)
		if err != nil {
			return err
		}
		f.tmp = tmp
		f.phase = phaseBranch
		return m.push(x.Children[1], f.Locals, tmp)
	case phaseBranch:
		cond, err := m.boolAt(f.tmp, x.Children[1])
		if err != nil {
			return err
		}
		var arm ExprID
		switch {
		case cond:
			arm = x.Children[2]
		case len(x.Children) == 4:
			arm = x.Children[3]
		default:
			m.values[f.Dst] = Null
			m.pop()
			return nil
		}
		// the arm is in tail position: it takes over this frame's
		// destination and this frame's place on the stack
		locals, dst := f.Locals, f.Dst
		m.pop()
		return m.push(arm, locals, dst)
	}
	return newError(ErrGeneric, x)
}

func (m *machine) stepDo(f *Frame, x *Expr) error {
	if f.phase == phaseStart {
		tmp, err := m.alloc(1, f.Expr)
		if err != nil {
			return err
		}
		f.tmp = tmp
		f.step = 1
		f.phase = phaseNext
	}
	if f.step < len(x.Children) {
		i := f.step
		f.step++
		dst := f.tmp
		if i == len(x.Children)-1 {
			dst = f.Dst
		}
		return m.push(x.Children[i], f.Locals, dst)
	}
	m.pop()
	return nil
}

// stepLogic evaluates && and || left to right, stopping at the first
// operand that differs from the form's identity (true for &&, false
// for ||). The result is the last operand evaluated.
func (m *machine) stepLogic(f *Frame, x *Expr) error {
	identity := x.Kind == KindAndExpr
	if f.phase == phaseStart {
		tmp, err := m.alloc(1, f.Expr)
		if err != nil {
			return err
		}
		f.tmp = tmp
		f.step = 2
		f.phase = phaseNext
		return m.push(x.Children[1], f.Locals, tmp)
	}
	v, err := m.boolAt(f.tmp, x.Children[f.step-1])
	if err != nil {
		return err
	}
	if v != identity || f.step == len(x.Children) {
		m.values[f.Dst] = Bool(v)
		m.pop()
		return nil
	}
	i := f.step
	f.step++
	return m.push(x.Children[i], f.Locals, f.tmp)
}

func (m *machine) stepWhile(f *Frame, x *Expr) error {
	switch f.phase {
	case phaseStart:
		tmp, err := m.alloc(1, f.Expr)
		if err != nil {
			return err
		}
		f.tmp = tmp
		f.phase = phaseTest
		return m.push(x.Children[1], f.Locals, tmp)
	case phaseTest:
		cond, err := m.boolAt(f.tmp, x.Children[1])
		if err != nil {
			return err
		}
		if !cond {
			m.values[f.Dst] = Null
			m.pop()
			return nil
		}
		if len(x.Children) == 3 {
			f.phase = phaseLoop
			return m.push(x.Children[2], f.Locals, f.tmp)
		}
		return m.push(x.Children[1], f.Locals, f.tmp)
	case phaseLoop:
		f.phase = phaseTest
		return m.push(x.Children[1], f.Locals, f.tmp)
	}
	return newError(ErrGeneric, x)
}

// backtrace lists the pending frames, innermost first.
func (m *machine) backtrace() []string {
	var out []string
	for i := 0; i < m.Size(); i++ {
		f, err := m.Get(i)
		if err != nil {
			break
		}
		x := m.tree.Node(f.Expr)
		out = append(out, fmt.Sprintf("%d:%d %s", x.Line, x.Col, m.label(x)))
	}
	return out
}
