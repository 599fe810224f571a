package snscript

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shurcooL/go-goon"
)

// SlotInfo describes one declared variable for dumps.
type SlotInfo struct {
	Name  string
	Slot  int
	Const bool
	Value string `json:",omitempty"`
}

// ScopeLayout is a printable summary of one scope.
type ScopeLayout struct {
	Name     string
	Global   bool
	Pure     bool `json:",omitempty"`
	Params   int
	MaxCount int
	Slots    []SlotInfo
}

// Layout summarizes the global scope and then every function scope, in
// declaration order. Declarations inside blocks are gone once the
// block is resolved and are not listed.
func (p *Program) Layout() []ScopeLayout {
	if p.scopes == nil {
		return nil
	}
	g := p.scopes.Get(p.global)
	out := []ScopeLayout{p.scopeLayout(g)}
	for _, fn := range p.functions {
		sl := p.scopeLayout(p.scopes.Get(fn.Scope))
		sl.Pure = fn.Pure
		sl.Params = fn.ParamCount
		out = append(out, sl)
	}
	return out
}

func (p *Program) scopeLayout(sc *Scope) ScopeLayout {
	sl := ScopeLayout{Name: sc.Name, Global: sc.IsGlobal, MaxCount: sc.MaxCount}
	for _, d := range p.scopes.Declarations(sc.ID) {
		si := SlotInfo{Name: d.Name, Slot: d.Ref.Slot, Const: d.Ref.Const}
		if v, ok := p.scopes.Constant(sc.ID, d.Ref.Slot); ok {
			si.Value = v.String()
		}
		sl.Slots = append(sl.Slots, si)
	}
	sort.Slice(sl.Slots, func(i, j int) bool { return sl.Slots[i].Slot < sl.Slots[j].Slot })
	return sl
}

// DumpLayout writes the scope layout in Go syntax.
func (p *Program) DumpLayout(w io.Writer) error {
	_, err := io.WriteString(w, goon.Sdump(p.Layout()))
	return err
}

// DumpTree writes the program tree, one node per line, with each
// node's resolved kind and reference.
func (p *Program) DumpTree(w io.Writer) error {
	if p.tree == nil {
		return fmt.Errorf("dump of closed program")
	}
	return p.dumpNode(w, RootExpr, 0)
}

func (p *Program) dumpNode(w io.Writer, id ExprID, depth int) error {
	x := p.tree.Node(id)
	var desc string
	switch x.Type {
	case ExprInteger:
		desc = fmt.Sprintf("%d", x.Int)
	case ExprSymbol:
		desc = x.Sym.Name()
	default:
		desc = fmt.Sprintf("(%d)", len(x.Children))
	}
	line := fmt.Sprintf("%s%-12s %-10s %d:%d", strings.Repeat("  ", depth), desc, x.Kind, x.Line, x.Col)
	if x.Ref.Scope != ScopeNone {
		line += " " + x.Ref.String()
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	for _, k := range x.Children {
		if err := p.dumpNode(w, k, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Show renders scope id like the repl's .ls command: one symbol per
// line, sorted by name.
func (s *Scopes) Show(id ScopeID) string {
	sc := s.Get(id)
	if sc == nil {
		return ""
	}
	decls := s.Declarations(id)
	sort.Slice(decls, func(i, j int) bool { return decls[i].Name < decls[j].Name })
	var sb strings.Builder
	fmt.Fprintf(&sb, "scope %s (max %d slots)\n", sc.Name, sc.MaxCount)
	for _, d := range decls {
		fmt.Fprintf(&sb, "   %s -> %s\n", d.Name, d.Ref)
	}
	return sb.String()
}
