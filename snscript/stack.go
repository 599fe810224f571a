package snscript

import (
	"fmt"
	"io"
)

// phase is a frame's continuation point. Each construct uses its own
// subset; a fresh frame is always at phaseStart.
type phase uint8

const (
	phaseStart phase = iota

	// call
	phaseCallee
	phaseArgs
	phaseBody

	// let, const, =
	phaseStore

	// if
	phaseBranch

	// while
	phaseTest
	phaseLoop

	// do, &&, ||
	phaseNext
)

// noLocals is the Locals base of code running outside any function.
const noLocals = -1

// Frame is one pending evaluation. Dst is the value slot that receives
// its result. Mark is the value arena top at push time; popping the
// frame releases everything allocated above it.
type Frame struct {
	Expr   ExprID
	Locals int
	Dst    int
	Mark   int

	phase  phase
	step   int
	tmp    int
	args   int
	nargs  int
	callee Value
}

var StackUnderFlowErr = fmt.Errorf("invalid stack access: underflow")

// RunStats describes the resources used by the most recent run.
type RunStats struct {
	PeakFrames int
	PeakValues int
	Steps      int64
}

// machine owns the frame stack and value arena for one run. The value
// arena holds the globals at its base, then grows and shrinks strictly
// in step with the frames.
type machine struct {
	prog   *Program
	tree   *Tree
	frames []Frame
	values []Value
	top    int

	maxFrames int
	maxValues int
	stats     RunStats
	trace     io.Writer
}

func (m *machine) Size() int { return len(m.frames) }

func (m *machine) IsEmpty() bool { return len(m.frames) == 0 }

func (m *machine) Get(n int) (*Frame, error) {
	i := len(m.frames) - 1 - n
	if i < 0 {
		return nil, StackUnderFlowErr
	}
	return &m.frames[i], nil
}

func (m *machine) exhausted(id ExprID) error {
	return newError(ErrStackExhausted, m.tree.Node(id))
}

// alloc reserves n null-initialized value slots and returns the first.
func (m *machine) alloc(n int, at ExprID) (int, error) {
	base := m.top
	if base+n > m.maxValues {
		return 0, m.exhausted(at)
	}
	for len(m.values) < base+n {
		m.values = append(m.values, Null)
	}
	for i := base; i < base+n; i++ {
		m.values[i] = Null
	}
	m.top = base + n
	if m.top > m.stats.PeakValues {
		m.stats.PeakValues = m.top
	}
	return base, nil
}

// push starts evaluating id into dst. Literals and variable references
// complete immediately and never occupy a frame.
func (m *machine) push(id ExprID, locals, dst int) error {
	x := m.tree.Node(id)
	switch x.Kind {
	case KindLiteral:
		m.values[dst] = Int(x.Int)
		return nil
	case KindVar:
		m.values[dst] = m.load(x.Ref, locals)
		return nil
	}
	if len(m.frames) >= m.maxFrames {
		return m.exhausted(id)
	}
	m.frames = append(m.frames, Frame{Expr: id, Locals: locals, Dst: dst, Mark: m.top})
	if len(m.frames) > m.stats.PeakFrames {
		m.stats.PeakFrames = len(m.frames)
	}
	if m.trace != nil {
		m.tracef("push", x)
	}
	return nil
}

func (m *machine) pop() {
	n := len(m.frames) - 1
	if m.trace != nil {
		m.tracef("pop ", m.tree.Node(m.frames[n].Expr))
	}
	m.top = m.frames[n].Mark
	m.frames = m.frames[:n]
}

func (m *machine) load(ref Reference, locals int) Value {
	if ref.Scope == ScopeLocal {
		return m.values[locals+ref.Slot]
	}
	return m.values[ref.Slot]
}

func (m *machine) store(ref Reference, locals int, v Value) {
	if ref.Scope == ScopeLocal {
		m.values[locals+ref.Slot] = v
		return
	}
	m.values[ref.Slot] = v
}

// label names a frame's expression by kind and head symbol.
func (m *machine) label(x *Expr) string {
	label := x.Kind.String()
	if len(x.Children) > 0 {
		if head := m.tree.Node(x.Children[0]); head.Sym != nil {
			label += " " + head.Sym.Name()
		}
	}
	return label
}

func (m *machine) tracef(what string, x *Expr) {
	fmt.Fprintf(m.trace, "%s depth=%d values=%d %d:%d %s\n",
		what, len(m.frames), m.top, x.Line, x.Col, m.label(x))
}
