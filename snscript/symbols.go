package snscript

// Symbol is an interned name. Two symbols are the same name exactly
// when they are the same *Symbol, so comparisons never touch the text.
type Symbol struct {
	name   string
	number int
}

func (s *Symbol) Name() string { return s.name }

// Number is the interning order of the symbol, starting at 0.
func (s *Symbol) Number() int { return s.number }

// SymbolTable owns every interned symbol of one Program.
type SymbolTable struct {
	symtable    map[string]*Symbol
	revsymtable []*Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		symtable: make(map[string]*Symbol),
	}
}

// Intern returns the unique symbol for name, creating it on first use.
// The bytes are copied; the caller may reuse name.
func (t *SymbolTable) Intern(name []byte) *Symbol {
	// the string(name) conversion in a map index does not allocate
	if sym, ok := t.symtable[string(name)]; ok {
		return sym
	}
	return t.MakeSymbol(string(name))
}

func (t *SymbolTable) MakeSymbol(name string) *Symbol {
	sym, ok := t.symtable[name]
	if ok {
		return sym
	}
	sym = &Symbol{name: name, number: len(t.revsymtable)}
	t.symtable[name] = sym
	t.revsymtable = append(t.revsymtable, sym)
	return sym
}

// Lookup finds an existing symbol without interning.
func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, ok := t.symtable[name]
	return sym, ok
}

func (t *SymbolTable) Len() int { return len(t.revsymtable) }

func (t *SymbolTable) All() []*Symbol {
	return append([]*Symbol(nil), t.revsymtable...)
}
