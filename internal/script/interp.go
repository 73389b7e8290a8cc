package script

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"martianoff/lispkg/internal/namespace"
	"martianoff/lispkg/lisperr"
)

// Values holds the results of an operation that returns more than one value.
type Values []any

// Interpreter evaluates forms against a registry. It keeps a current
// package, which unqualified symbols are interned in and which operations
// default to when their package argument is omitted.
type Interpreter struct {
	reg     *namespace.Registry
	current *namespace.Package
	out     io.Writer
	logger  *log.Logger
}

// New creates an interpreter whose current package is USER, or LISP when the
// registry was created without USER. Results are printed to out.
func New(reg *namespace.Registry, out io.Writer, logger *log.Logger) *Interpreter {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	current := reg.User()
	if current == nil {
		current = reg.Lisp()
	}
	return &Interpreter{reg: reg, current: current, out: out, logger: logger}
}

// Current returns the current package.
func (in *Interpreter) Current() *namespace.Package {
	return in.current
}

// SetOutput redirects printed results to w.
func (in *Interpreter) SetOutput(w io.Writer) {
	in.out = w
}

// Run parses src and evaluates its forms in order, printing each result.
// It stops at the first error.
func (in *Interpreter) Run(name, src string) error {
	s, err := Parse(name, src)
	if err != nil {
		return err
	}
	for _, f := range s.Forms {
		v, err := in.Eval(f)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Pos, err)
		}
		if _, err := fmt.Fprintln(in.out, Format(v)); err != nil {
			return err
		}
	}
	return nil
}

// Eval evaluates a single form.
func (in *Interpreter) Eval(f *Form) (any, error) {
	op, ok := operators[strings.ToLower(f.Op)]
	if !ok {
		return nil, fmt.Errorf("unknown operator %s", f.Op)
	}
	if len(f.Args) < op.min || (op.max >= 0 && len(f.Args) > op.max) {
		return nil, fmt.Errorf("%s: wrong number of arguments: %d", f.Op, len(f.Args))
	}
	in.logger.Debug("eval", "op", f.Op, "package", in.current.Name())
	return op.fn(in, f.Args)
}

// value evaluates an argument. Reading a qualified or bare symbol interns
// it, as a reader would.
func (in *Interpreter) value(e *Expr) (any, error) {
	switch {
	case e.String != nil:
		return *e.String, nil
	case e.Int != nil:
		return *e.Int, nil
	case e.Keyword != nil:
		s, _, err := in.reg.Intern(readName((*e.Keyword)[1:]), in.reg.Keyword())
		return s, err
	case e.Uninterned != nil:
		return namespace.MakeSymbol(readName((*e.Uninterned)[2:])), nil
	case e.Qualified != nil:
		return in.qualified(*e.Qualified)
	case e.Symbol != nil:
		name := readName(*e.Symbol)
		switch name {
		case "NIL":
			return nil, nil
		case "T":
			return true, nil
		}
		s, _, err := in.reg.Intern(name, in.current)
		return s, err
	case e.List != nil:
		items := make([]any, 0, len(e.List.Items))
		for _, item := range e.List.Items {
			v, err := in.value(item)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	}
	return nil, nil
}

// qualified reads PKG::NAME, which interns, or PKG:NAME, which requires an
// external symbol.
func (in *Interpreter) qualified(text string) (any, error) {
	pkgName, name, internal := strings.Cut(text, "::")
	if !internal {
		pkgName, name, _ = strings.Cut(text, ":")
	}
	p, err := in.reg.Coerce(readName(pkgName))
	if err != nil {
		return nil, err
	}
	name = readName(name)
	if internal {
		s, _, err := in.reg.Intern(name, p)
		return s, err
	}
	s, vis, err := in.reg.FindSymbol(name, p)
	if err != nil {
		return nil, err
	}
	if vis != namespace.External {
		return nil, lisperr.NewNotAccessible(p.Name(), name, "")
	}
	return s, nil
}

// designator evaluates a string designator argument. Symbols and keywords
// stand for their names and are not interned.
func (in *Interpreter) designator(e *Expr) (any, error) {
	switch {
	case e.Symbol != nil:
		return readName(*e.Symbol), nil
	case e.Keyword != nil:
		return readName((*e.Keyword)[1:]), nil
	case e.Uninterned != nil:
		return readName((*e.Uninterned)[2:]), nil
	}
	return in.value(e)
}

func (in *Interpreter) name(e *Expr) (string, error) {
	d, err := in.designator(e)
	if err != nil {
		return "", err
	}
	return namespace.StringDesignator(d)
}

// names evaluates a designator or a list of designators.
func (in *Interpreter) names(e *Expr) ([]string, error) {
	if e.List == nil {
		n, err := in.name(e)
		if err != nil {
			return nil, err
		}
		return []string{n}, nil
	}
	names := make([]string, 0, len(e.List.Items))
	for _, item := range e.List.Items {
		n, err := in.name(item)
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, nil
}

func (in *Interpreter) pkg(e *Expr) (*namespace.Package, error) {
	d, err := in.designator(e)
	if err != nil {
		return nil, err
	}
	return in.reg.Coerce(d)
}

// pkgArg returns the package designated by args[i], or the current package
// when the argument is omitted.
func (in *Interpreter) pkgArg(args []*Expr, i int) (*namespace.Package, error) {
	if i < len(args) {
		return in.pkg(args[i])
	}
	return in.current, nil
}

// packages evaluates a package designator or a list of them.
func (in *Interpreter) packages(e *Expr) ([]*namespace.Package, error) {
	if e.List == nil {
		p, err := in.pkg(e)
		if err != nil {
			return nil, err
		}
		return []*namespace.Package{p}, nil
	}
	pkgs := make([]*namespace.Package, 0, len(e.List.Items))
	for _, item := range e.List.Items {
		p, err := in.pkg(item)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, nil
}

// symbols evaluates a symbol or a list of symbols.
func (in *Interpreter) symbols(e *Expr) ([]*namespace.Symbol, error) {
	v, err := in.value(e)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		items = []any{v}
	}
	syms := make([]*namespace.Symbol, 0, len(items))
	for _, item := range items {
		s, ok := item.(*namespace.Symbol)
		if !ok {
			return nil, lisperr.NewTypeError(Format(item), "symbol")
		}
		syms = append(syms, s)
	}
	return syms, nil
}

func (in *Interpreter) symbol(e *Expr) (*namespace.Symbol, error) {
	v, err := in.value(e)
	if err != nil {
		return nil, err
	}
	s, ok := v.(*namespace.Symbol)
	if !ok {
		return nil, lisperr.NewTypeError(Format(v), "symbol")
	}
	return s, nil
}

// readName applies the reader's case convention to an unquoted token.
func readName(token string) string {
	return strings.ToUpper(token)
}
