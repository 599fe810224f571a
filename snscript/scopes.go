package snscript

import (
	"fmt"

	"fortio.org/safecast"
)

// ScopeID indexes a Scope in a Scopes arena. NoScope is never a valid scope.
type ScopeID uint32

const NoScope ScopeID = 0

type declaration struct {
	sym *Symbol
	ref Reference
}

// Scope is a declaration region: the global scope, or one per function.
// Count is the number of live slots; MaxCount the most ever live at once,
// which sizes the storage a call allocates. Blocks inside a function
// share its Scope and retract their declarations on exit, so sibling
// blocks reuse the same slots.
type Scope struct {
	ID       ScopeID
	Parent   ScopeID
	Name     string
	IsGlobal bool
	Count    int
	MaxCount int

	decls     []declaration
	live      map[*Symbol]int
	constants map[int]Value
}

// BlockMarker records a scope's state on block entry.
type BlockMarker struct {
	scope  ScopeID
	ndecls int
	count  int
}

type Scopes struct {
	data []Scope
}

func NewScopes() *Scopes {
	return &Scopes{data: make([]Scope, 1, 8)}
}

func (s *Scopes) New(parent ScopeID, name string, global bool) ScopeID {
	id, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("scopes arena overflow: %w", err))
	}
	s.data = append(s.data, Scope{
		ID:        ScopeID(id),
		Parent:    parent,
		Name:      name,
		IsGlobal:  global,
		live:      make(map[*Symbol]int),
		constants: make(map[int]Value),
	})
	return ScopeID(id)
}

func (s *Scopes) Get(id ScopeID) *Scope {
	if id == NoScope || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

func (s *Scopes) Len() int { return len(s.data) - 1 }

// Declare gives sym the next free slot of scope id. It reports false,
// and declares nothing, if sym already has a live declaration there.
func (s *Scopes) Declare(id ScopeID, sym *Symbol, isConst bool) (Reference, bool) {
	sc := s.Get(id)
	if sc == nil {
		return Reference{}, false
	}
	if _, dup := sc.live[sym]; dup {
		return Reference{}, false
	}
	ref := Reference{Scope: ScopeLocal, Slot: sc.Count, Const: isConst}
	if sc.IsGlobal {
		ref.Scope = ScopeGlobal
	}
	sc.live[sym] = len(sc.decls)
	sc.decls = append(sc.decls, declaration{sym: sym, ref: ref})
	sc.Count++
	if sc.Count > sc.MaxCount {
		sc.MaxCount = sc.Count
	}
	return ref, true
}

// Resolve searches scope id and then its ancestors for sym.
func (s *Scopes) Resolve(id ScopeID, sym *Symbol) (Reference, ScopeID, bool) {
	for sc := s.Get(id); sc != nil; sc = s.Get(sc.Parent) {
		if i, ok := sc.live[sym]; ok {
			return sc.decls[i].ref, sc.ID, true
		}
	}
	return Reference{}, NoScope, false
}

func (s *Scopes) Mark(id ScopeID) BlockMarker {
	sc := s.Get(id)
	return BlockMarker{scope: id, ndecls: len(sc.decls), count: sc.Count}
}

// Release drops every declaration made since m. MaxCount is kept.
// The global scope never retracts.
func (s *Scopes) Release(m BlockMarker) {
	sc := s.Get(m.scope)
	if sc == nil || sc.IsGlobal {
		return
	}
	for _, d := range sc.decls[m.ndecls:] {
		delete(sc.live, d.sym)
	}
	sc.decls = sc.decls[:m.ndecls]
	sc.Count = m.count
}

// BindConstant records the value a constant slot holds before any
// code runs. Builtins and top-level functions are bound this way.
func (s *Scopes) BindConstant(id ScopeID, slot int, v Value) {
	s.Get(id).constants[slot] = v
}

func (s *Scopes) Constant(id ScopeID, slot int) (Value, bool) {
	sc := s.Get(id)
	if sc == nil {
		return Null, false
	}
	v, ok := sc.constants[slot]
	return v, ok
}

// Declarations lists the live declarations of scope id in slot order.
func (s *Scopes) Declarations(id ScopeID) []Declaration {
	sc := s.Get(id)
	if sc == nil {
		return nil
	}
	out := make([]Declaration, 0, len(sc.decls))
	for _, d := range sc.decls {
		out = append(out, Declaration{Name: d.sym.Name(), Ref: d.ref})
	}
	return out
}

type Declaration struct {
	Name string
	Ref  Reference
}
