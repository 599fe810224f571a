package snscript

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const (
	DefaultMaxFrames = 1 << 16
	DefaultMaxValues = 1 << 20
)

// Limits bound the frame stack depth and the value arena size of a run.
// Exceeding either fails the run with ErrStackExhausted.
type Limits struct {
	MaxFrames int
	MaxValues int
}

func DefaultLimits() Limits {
	return Limits{MaxFrames: DefaultMaxFrames, MaxValues: DefaultMaxValues}
}

const mainName = "main"

var keywordTable = []struct {
	name string
	kind Kind
}{
	{"let", KindLetKeyword},
	{"fn", KindFnKeyword},
	{"if", KindIfKeyword},
	{"do", KindDoKeyword},
	{"=", KindAssignKeyword},
	{"const", KindConstKeyword},
	{"&&", KindAndKeyword},
	{"||", KindOrKeyword},
	{"while", KindWhileKeyword},
	{"pure", KindPureKeyword},
}

// Keywords lists the reserved words of the language.
func Keywords() []string {
	out := make([]string, len(keywordTable))
	for i, kw := range keywordTable {
		out[i] = kw.name
	}
	return out
}

// Program is one parsed source text together with everything derived
// from it: symbols, expression tree, scopes and functions. A Program is
// not safe for concurrent use.
type Program struct {
	Filename string
	Limits   Limits

	// MainOptional lets Build succeed without a main function.
	MainOptional bool

	src       []byte
	symbols   *SymbolTable
	keywords  map[*Symbol]Kind
	mainSym   *Symbol
	tree      *Tree
	scopes    *Scopes
	global    ScopeID
	builtins  []*Builtin
	functions []*Function
	main      *Function

	built    bool
	buildErr error

	trace     io.Writer
	stats     RunStats
	backtrace []string
	elapsed   time.Duration
}

// NewProgram parses src with the standard builtins, printing to stdout.
func NewProgram(src []byte) (*Program, error) {
	return NewProgramWithBuiltins(src, StandardBuiltins(os.Stdout))
}

// NewProgramWithBuiltins parses src; only the given builtins will be
// installed when the program is built.
func NewProgramWithBuiltins(src []byte, builtins []*Builtin) (*Program, error) {
	p := &Program{
		Limits:   DefaultLimits(),
		src:      src,
		symbols:  NewSymbolTable(),
		keywords: make(map[*Symbol]Kind),
		tree:     NewTree(),
		builtins: builtins,
	}
	for _, kw := range keywordTable {
		p.keywords[p.symbols.MakeSymbol(kw.name)] = kw.kind
	}
	p.mainSym = p.symbols.MakeSymbol(mainName)

	parser := NewParser(p.tree, p.symbols)
	if _, err := parser.Parse(src); err != nil {
		return nil, err
	}
	return p, nil
}

// Close releases the program's tree and scopes.
func (p *Program) Close() error {
	p.tree = nil
	p.scopes = nil
	p.functions = nil
	p.main = nil
	p.built = false
	return nil
}

func (p *Program) Source() []byte { return p.src }
func (p *Program) Symbols() *SymbolTable { return p.symbols }
func (p *Program) Tree() *Tree { return p.tree }
func (p *Program) Scopes() *Scopes { return p.scopes }
func (p *Program) Global() ScopeID { return p.global }
func (p *Program) Main() *Function { return p.main }
func (p *Program) Functions() []*Function {
	return append([]*Function(nil), p.functions...)
}

// Stats reports resource use of the most recent run.
func (p *Program) Stats() RunStats { return p.stats }

func (p *Program) Elapsed() time.Duration { return p.elapsed }

// SetTrace makes every later run log each frame push and pop to w.
// A nil w turns tracing off.
func (p *Program) SetTrace(w io.Writer) { p.trace = w }

// Build installs the builtins, resolves every name and checks the
// program's structure. The result is remembered; later calls return it.
func (p *Program) Build() error {
	if p.built {
		return p.buildErr
	}
	if p.tree == nil {
		return fmt.Errorf("build on closed program")
	}
	p.built = true
	p.scopes = NewScopes()
	p.global = p.scopes.New(NoScope, "global", true)

	for _, c := range standardConstants {
		p.addGlobal(c.name, c.val)
	}
	for _, b := range p.builtins {
		p.addGlobal(b.Name, BuiltinFn(b))
	}

	p.buildErr = newBuilder(p).build()
	return p.buildErr
}

// addGlobal declares a constant global bound to v.
func (p *Program) addGlobal(name string, v Value) {
	sym := p.symbols.MakeSymbol(name)
	ref, ok := p.scopes.Declare(p.global, sym, true)
	if !ok {
		return
	}
	p.scopes.BindConstant(p.global, ref.Slot, v)
}

func (p *Program) finish(m *machine, start time.Time, err error) {
	p.stats = m.stats
	p.elapsed = time.Since(start)
	p.backtrace = nil
	if err != nil {
		p.backtrace = m.backtrace()
	}
}

// Run executes the top-level statements only.
func (p *Program) Run() (Value, error) {
	if err := p.Build(); err != nil {
		return Null, err
	}
	start := time.Now()
	m := newMachine(p, p.trace)
	err := m.loadGlobals()
	if err == nil {
		err = m.runTopLevel()
	}
	p.finish(m, start, err)
	return Null, err
}

// RunMain executes the top-level statements and then main. A main that
// takes a parameter receives arg, or null when arg is nil. A main that
// takes none ignores arg.
func (p *Program) RunMain(arg *Value) (Value, error) {
	if err := p.Build(); err != nil {
		return Null, err
	}
	if p.main == nil {
		return Null, &Error{Kind: ErrMissingMain, Sym: mainName}
	}
	var args []Value
	if p.main.ParamCount == 1 {
		a := Null
		if arg != nil {
			a = *arg
		}
		args = []Value{a}
	}
	return p.invoke(p.main, args)
}

// Call executes the top-level statements and then the named global
// function with args.
func (p *Program) Call(name string, args ...Value) (Value, error) {
	if err := p.Build(); err != nil {
		return Null, err
	}
	fn := p.FindFunction(name)
	if fn == nil {
		return Null, fmt.Errorf("%w: '%s'", ErrNoSuchFunc, name)
	}
	if len(args) != fn.ParamCount {
		return Null, &Error{Kind: ErrWrongArgCountInCall, Sym: name}
	}
	return p.invoke(fn, args)
}

// FindFunction returns the top-level user function called name.
func (p *Program) FindFunction(name string) *Function {
	sym, ok := p.symbols.Lookup(name)
	if !ok || p.scopes == nil {
		return nil
	}
	ref, owner, ok := p.scopes.Resolve(p.global, sym)
	if !ok || owner != p.global || !ref.Const {
		return nil
	}
	v, ok := p.scopes.Constant(p.global, ref.Slot)
	if !ok || v.Type() != ValueUserFn {
		return nil
	}
	return v.Function()
}

func (p *Program) invoke(fn *Function, args []Value) (Value, error) {
	start := time.Now()
	m := newMachine(p, p.trace)
	err := m.loadGlobals()
	if err == nil {
		err = m.runTopLevel()
	}
	v := Null
	if err == nil {
		v, err = m.call(fn, args)
	}
	p.finish(m, start, err)
	return v, err
}

// GetStackTrace renders err followed by the frames that were pending
// when the last run failed, innermost first.
func (p *Program) GetStackTrace(err error) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %v\n", err)
	for _, f := range p.backtrace {
		fmt.Fprintf(&sb, "in %s\n", f)
	}
	return sb.String()
}
