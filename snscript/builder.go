package snscript

// placement says where in the program an expression sits, which
// decides whether declarations are legal there.
type placement uint8

const (
	placeTop   placement = iota // direct child of the program root
	placeBlock                  // direct child of a do or function body
	placeExpr                   // anywhere else
)

// builder resolves every name in a parsed tree to a Reference, assigns
// each node its Kind, and enforces the language's structural rules.
type builder struct {
	prog   *Program
	tree   *Tree
	scopes *Scopes
	scope  ScopeID
	fn     *Function
}

func newBuilder(p *Program) *builder {
	return &builder{
		prog:   p,
		tree:   p.tree,
		scopes: p.scopes,
		scope:  p.global,
	}
}

func (b *builder) fail(kind ErrorKind, id ExprID) error {
	return newError(kind, b.tree.Node(id))
}

func (b *builder) build() error {
	root := b.tree.Root()
	root.Kind = KindProgram
	for _, id := range root.Children {
		if err := b.resolve(id, placeTop); err != nil {
			return err
		}
	}
	if b.prog.main == nil && !b.prog.MainOptional {
		return &Error{Kind: ErrMissingMain, Sym: mainName}
	}
	return nil
}

// keywordKind is the keyword marker for a symbol node, or
// KindUnresolved if the node is not a keyword.
func (b *builder) keywordKind(id ExprID) Kind {
	x := b.tree.Node(id)
	if x.Type != ExprSymbol {
		return KindUnresolved
	}
	return b.prog.keywords[x.Sym]
}

func (b *builder) resolve(id ExprID, at placement) error {
	x := b.tree.Node(id)
	switch x.Type {
	case ExprInteger:
		if at == placeTop {
			return b.fail(ErrExprOutsideOfFn, id)
		}
		x.Kind = KindLiteral
		return nil

	case ExprSymbol:
		if at == placeTop {
			return b.fail(ErrExprOutsideOfFn, id)
		}
		if b.keywordKind(id) != KindUnresolved {
			return b.fail(ErrUnexpectedKeyword, id)
		}
		return b.resolveVar(id)

	case ExprList:
		if len(x.Children) == 0 {
			return b.fail(ErrEmptyExpr, id)
		}
	default:
		return b.fail(ErrGeneric, id)
	}

	head := x.Children[0]
	kw := b.keywordKind(head)
	kind := kw.exprKind()
	if at == placeTop {
		switch kind {
		case KindLetExpr, KindConstExpr, KindFnExpr, KindPureExpr:
		default:
			return b.fail(ErrExprOutsideOfFn, id)
		}
	}
	if kw != KindUnresolved {
		b.tree.Node(head).Kind = kw
	}

	var err error
	switch kind {
	case KindFnExpr, KindPureExpr:
		if at != placeTop {
			return b.fail(ErrNestedFnExpr, id)
		}
		err = b.resolveFn(id, kind)
	case KindLetExpr, KindConstExpr:
		if at == placeExpr {
			return b.fail(ErrNestedLetExpr, id)
		}
		err = b.resolveLet(id, kind)
	case KindAssignExpr:
		err = b.resolveAssign(id)
	case KindIfExpr:
		err = b.resolveFixed(id, 3, 4, ErrIfExprInvalidLength)
	case KindWhileExpr:
		err = b.resolveFixed(id, 2, 3, ErrWhileExprInvalidLength)
	case KindAndExpr:
		err = b.resolveFixed(id, 3, -1, ErrAndExprTooShort)
	case KindOrExpr:
		err = b.resolveFixed(id, 3, -1, ErrOrExprTooShort)
	case KindDoExpr:
		err = b.resolveDo(id)
	default:
		err = b.resolveCall(id)
	}
	if err != nil {
		return err
	}
	b.tree.Node(id).Kind = kind
	return nil
}

// resolveVar binds a symbol node to its declaration.
func (b *builder) resolveVar(id ExprID) error {
	x := b.tree.Node(id)
	ref, _, ok := b.scopes.Resolve(b.scope, x.Sym)
	if !ok {
		return b.fail(ErrUndeclared, id)
	}
	if b.fn != nil && b.fn.Pure && ref.Scope == ScopeGlobal && !ref.Const {
		return b.fail(ErrNotAllowedInPureFn, id)
	}
	x.Kind = KindVar
	x.Ref = ref
	return nil
}

// isPlainVar reports whether id can name a variable being declared or
// assigned: a symbol that is not a keyword.
func (b *builder) isPlainVar(id ExprID) bool {
	return b.tree.Node(id).Type == ExprSymbol && b.keywordKind(id) == KindUnresolved
}

// resolveFixed handles forms whose operands are all plain expressions.
// max < 0 means no upper bound.
func (b *builder) resolveFixed(id ExprID, min, max int, lengthErr ErrorKind) error {
	kids := b.tree.Node(id).Children
	if len(kids) < min || (max >= 0 && len(kids) > max) {
		return b.fail(lengthErr, id)
	}
	for _, k := range kids[1:] {
		if err := b.resolve(k, placeExpr); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) resolveDo(id ExprID) error {
	kids := b.tree.Node(id).Children
	if len(kids) < 2 {
		return b.fail(ErrDoExprTooShort, id)
	}
	mark := b.scopes.Mark(b.scope)
	for _, k := range kids[1:] {
		if err := b.resolve(k, placeBlock); err != nil {
			return err
		}
	}
	b.scopes.Release(mark)
	return nil
}

// resolveLet handles let and const. The initializer is resolved before
// the name is declared, so it sees any outer binding of the same name.
func (b *builder) resolveLet(id ExprID, kind Kind) error {
	kids := b.tree.Node(id).Children
	if len(kids) != 3 {
		if kind == KindConstExpr {
			return b.fail(ErrConstExprNot3Items, id)
		}
		return b.fail(ErrLetExprNot3Items, id)
	}
	dest := kids[1]
	if !b.isPlainVar(dest) {
		return b.fail(ErrExprBadDest, dest)
	}
	if err := b.resolve(kids[2], placeExpr); err != nil {
		return err
	}
	sym := b.tree.Node(dest).Sym
	if b.fn == nil && sym == b.prog.mainSym {
		return b.fail(ErrInvalidMain, dest)
	}
	ref, ok := b.scopes.Declare(b.scope, sym, kind == KindConstExpr)
	if !ok {
		return b.fail(ErrRedeclared, dest)
	}
	d := b.tree.Node(dest)
	d.Kind = KindVar
	d.Ref = ref
	b.tree.Node(id).Ref = ref
	return nil
}

func (b *builder) resolveAssign(id ExprID) error {
	kids := b.tree.Node(id).Children
	if len(kids) != 3 {
		return b.fail(ErrAssignExprNot3Items, id)
	}
	dest := kids[1]
	if !b.isPlainVar(dest) {
		return b.fail(ErrExprBadDest, dest)
	}
	if err := b.resolve(kids[2], placeExpr); err != nil {
		return err
	}
	if err := b.resolveVar(dest); err != nil {
		return err
	}
	ref := b.tree.Node(dest).Ref
	if ref.Const {
		return b.fail(ErrExprBadDest, dest)
	}
	b.tree.Node(id).Ref = ref
	return nil
}

// resolveFn declares the function name as a constant in the enclosing
// scope before the body is resolved, so the body may recurse.
func (b *builder) resolveFn(id ExprID, kind Kind) error {
	kids := b.tree.Node(id).Children
	if len(kids) < 3 {
		return b.fail(ErrFnExprTooShort, id)
	}
	proto := b.tree.Node(kids[1])
	if proto.Type != ExprList {
		return b.fail(ErrFnProtoNotList, kids[1])
	}
	if len(proto.Children) == 0 {
		return b.fail(ErrEmptyExpr, kids[1])
	}
	params := proto.Children
	for _, p := range params {
		if !b.isPlainVar(p) {
			return b.fail(ErrFnProtoContainsNonSymbols, p)
		}
	}

	nameID := params[0]
	name := b.tree.Node(nameID).Sym
	fn := &Function{
		Name:       name,
		ParamCount: len(params) - 1,
		Body:       kids[2:],
		Pure:       kind == KindPureExpr,
		Decl:       id,
	}
	ref, ok := b.scopes.Declare(b.scope, name, true)
	if !ok {
		return b.fail(ErrRedeclared, nameID)
	}
	b.scopes.BindConstant(b.scope, ref.Slot, UserFn(fn))
	nx := b.tree.Node(nameID)
	nx.Kind = KindVar
	nx.Ref = ref
	b.tree.Node(id).Ref = ref
	b.prog.functions = append(b.prog.functions, fn)

	if name == b.prog.mainSym {
		if fn.ParamCount > 1 {
			return b.fail(ErrInvalidMain, nameID)
		}
		b.prog.main = fn
	}

	fn.Scope = b.scopes.New(b.scope, name.Name(), false)
	for _, p := range params[1:] {
		px := b.tree.Node(p)
		pref, ok := b.scopes.Declare(fn.Scope, px.Sym, false)
		if !ok {
			return b.fail(ErrRedeclared, p)
		}
		px.Kind = KindVar
		px.Ref = pref
	}

	saveScope, saveFn := b.scope, b.fn
	b.scope, b.fn = fn.Scope, fn
	defer func() { b.scope, b.fn = saveScope, saveFn }()

	for _, k := range fn.Body {
		if err := b.resolve(k, placeBlock); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) resolveCall(id ExprID) error {
	kids := b.tree.Node(id).Children
	for _, k := range kids {
		if err := b.resolve(k, placeExpr); err != nil {
			return err
		}
	}
	if b.fn != nil && b.fn.Pure && !b.isPureCallee(kids[0]) {
		return b.fail(ErrNotAllowedInPureFn, kids[0])
	}
	return nil
}

// isPureCallee reports whether the call head is statically known to be
// a pure function: a constant global bound to a pure user function or
// a pure builtin.
func (b *builder) isPureCallee(id ExprID) bool {
	x := b.tree.Node(id)
	if x.Kind != KindVar || x.Ref.Scope != ScopeGlobal || !x.Ref.Const {
		return false
	}
	v, ok := b.scopes.Constant(b.prog.global, x.Ref.Slot)
	return ok && v.isPureFn()
}
