package script

import (
	"fmt"
	"strings"

	"martianoff/lispkg/internal/namespace"
)

type operator struct {
	min, max int // max < 0 means no limit
	fn       func(in *Interpreter, args []*Expr) (any, error)
}

var operators map[string]operator

func init() {
	operators = map[string]operator{
		"make-package":    {1, -1, opMakePackage},
		"declare-package": {1, 1, opDeclarePackage},
		"find-package":    {1, 1, opFindPackage},
		"rename-package":  {2, 3, opRenamePackage},
		"delete-package":  {1, 1, opDeletePackage},
		"in-package":      {1, 1, opInPackage},

		"intern":         {1, 2, opIntern},
		"find-symbol":    {1, 2, opFindSymbol},
		"unintern":       {1, 2, opUnintern},
		"make-symbol":    {1, 1, opMakeSymbol},
		"symbol-name":    {1, 1, opSymbolName},
		"symbol-package": {1, 1, opSymbolPackage},

		"export":           {1, 2, symbolsOp((*namespace.Registry).Export)},
		"unexport":         {1, 2, symbolsOp((*namespace.Registry).Unexport)},
		"import":           {1, 2, symbolsOp((*namespace.Registry).Import)},
		"shadowing-import": {1, 2, symbolsOp((*namespace.Registry).ShadowingImport)},
		"shadow":           {1, 2, opShadow},

		"use-package":   {1, 2, packagesOp((*namespace.Registry).UsePackage)},
		"unuse-package": {1, 2, packagesOp((*namespace.Registry).UnusePackage)},

		"list-all-packages":         {0, 0, opListAllPackages},
		"packages-in-waiting":       {0, 0, opPackagesInWaiting},
		"package-name":              {1, 1, opPackageName},
		"package-nicknames":         {1, 1, opPackageNicknames},
		"package-use-list":          {1, 1, opPackageUseList},
		"package-used-by-list":      {1, 1, opPackageUsedByList},
		"package-shadowing-symbols": {1, 1, opPackageShadowingSymbols},
		"package-hash-tables":       {1, 1, opPackageHashTables},
		"close-package":             {1, 1, opClosePackage},
		"reopen-package":            {1, 1, opReopenPackage},
		"package-closed-p":          {1, 1, opPackageClosedP},
		"check":                     {0, 0, opCheck},
	}
}

// makeArgs are the keyword arguments of make-package.
type makeArgs struct {
	opts   namespace.MakeOptions
	hasUse bool
}

func (in *Interpreter) makeArgs(args []*Expr) (makeArgs, error) {
	var m makeArgs
	if len(args)%2 != 0 {
		return m, fmt.Errorf("odd number of keyword arguments")
	}
	for i := 0; i < len(args); i += 2 {
		key, val := args[i], args[i+1]
		if key.Keyword == nil {
			return m, fmt.Errorf("expected a keyword argument, got %s", exprText(key))
		}
		switch strings.ToLower(*key.Keyword) {
		case ":nicknames":
			names, err := in.names(val)
			if err != nil {
				return m, err
			}
			m.opts.Nicknames = names
		case ":use":
			m.hasUse = true
			if val.Symbol != nil && readName(*val.Symbol) == "NIL" {
				continue
			}
			names, err := in.names(val)
			if err != nil {
				return m, err
			}
			for _, n := range names {
				m.opts.Use = append(m.opts.Use, n)
			}
		case ":external-size":
			if val.Int == nil {
				return m, fmt.Errorf(":external-size expects an integer")
			}
			m.opts.ExternalSize = *val.Int
		case ":internal-size":
			if val.Int == nil {
				return m, fmt.Errorf(":internal-size expects an integer")
			}
			m.opts.InternalSize = *val.Int
		default:
			return m, fmt.Errorf("unknown keyword argument %s", *key.Keyword)
		}
	}
	return m, nil
}

// opMakePackage uses LISP when no :use argument is given.
func opMakePackage(in *Interpreter, args []*Expr) (any, error) {
	name, err := in.name(args[0])
	if err != nil {
		return nil, err
	}
	m, err := in.makeArgs(args[1:])
	if err != nil {
		return nil, err
	}
	if !m.hasUse {
		m.opts.Use = []any{namespace.LispPackage}
	}
	return in.reg.MakePackage(name, m.opts)
}

func opDeclarePackage(in *Interpreter, args []*Expr) (any, error) {
	name, err := in.name(args[0])
	if err != nil {
		return nil, err
	}
	return in.reg.Declare(name)
}

func opFindPackage(in *Interpreter, args []*Expr) (any, error) {
	d, err := in.designator(args[0])
	if err != nil {
		return nil, err
	}
	p, err := in.reg.Find(d)
	if err != nil || p == nil {
		return nil, err
	}
	return p, nil
}

func opRenamePackage(in *Interpreter, args []*Expr) (any, error) {
	p, err := in.pkg(args[0])
	if err != nil {
		return nil, err
	}
	newName, err := in.name(args[1])
	if err != nil {
		return nil, err
	}
	var nicknames []string
	if len(args) > 2 && !isNil(args[2]) {
		if nicknames, err = in.names(args[2]); err != nil {
			return nil, err
		}
	}
	return in.reg.RenamePackage(p, newName, nicknames)
}

func opDeletePackage(in *Interpreter, args []*Expr) (any, error) {
	d, err := in.designator(args[0])
	if err != nil {
		return nil, err
	}
	return in.reg.DeletePackage(d)
}

func opInPackage(in *Interpreter, args []*Expr) (any, error) {
	p, err := in.pkg(args[0])
	if err != nil {
		return nil, err
	}
	in.current = p
	return p, nil
}

func opIntern(in *Interpreter, args []*Expr) (any, error) {
	name, err := in.name(args[0])
	if err != nil {
		return nil, err
	}
	p, err := in.pkgArg(args, 1)
	if err != nil {
		return nil, err
	}
	s, vis, err := in.reg.Intern(name, p)
	if err != nil {
		return nil, err
	}
	return Values{s, vis}, nil
}

func opFindSymbol(in *Interpreter, args []*Expr) (any, error) {
	name, err := in.name(args[0])
	if err != nil {
		return nil, err
	}
	p, err := in.pkgArg(args, 1)
	if err != nil {
		return nil, err
	}
	s, vis, err := in.reg.FindSymbol(name, p)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return Values{nil, vis}, nil
	}
	return Values{s, vis}, nil
}

func opUnintern(in *Interpreter, args []*Expr) (any, error) {
	s, err := in.symbol(args[0])
	if err != nil {
		return nil, err
	}
	p, err := in.pkgArg(args, 1)
	if err != nil {
		return nil, err
	}
	return in.reg.Unintern(s, p)
}

func opMakeSymbol(in *Interpreter, args []*Expr) (any, error) {
	name, err := in.name(args[0])
	if err != nil {
		return nil, err
	}
	return namespace.MakeSymbol(name), nil
}

func opSymbolName(in *Interpreter, args []*Expr) (any, error) {
	s, err := in.symbol(args[0])
	if err != nil {
		return nil, err
	}
	return s.Name(), nil
}

func opSymbolPackage(in *Interpreter, args []*Expr) (any, error) {
	s, err := in.symbol(args[0])
	if err != nil {
		return nil, err
	}
	if p := s.Package(); p != nil {
		return p, nil
	}
	return nil, nil
}

func symbolsOp(fn func(*namespace.Registry, *namespace.Package, ...*namespace.Symbol) error) func(*Interpreter, []*Expr) (any, error) {
	return func(in *Interpreter, args []*Expr) (any, error) {
		syms, err := in.symbols(args[0])
		if err != nil {
			return nil, err
		}
		p, err := in.pkgArg(args, 1)
		if err != nil {
			return nil, err
		}
		if err := fn(in.reg, p, syms...); err != nil {
			return nil, err
		}
		return true, nil
	}
}

func opShadow(in *Interpreter, args []*Expr) (any, error) {
	names, err := in.names(args[0])
	if err != nil {
		return nil, err
	}
	p, err := in.pkgArg(args, 1)
	if err != nil {
		return nil, err
	}
	if err := in.reg.Shadow(p, names...); err != nil {
		return nil, err
	}
	return true, nil
}

func packagesOp(fn func(*namespace.Registry, *namespace.Package, ...*namespace.Package) error) func(*Interpreter, []*Expr) (any, error) {
	return func(in *Interpreter, args []*Expr) (any, error) {
		used, err := in.packages(args[0])
		if err != nil {
			return nil, err
		}
		p, err := in.pkgArg(args, 1)
		if err != nil {
			return nil, err
		}
		if err := fn(in.reg, p, used...); err != nil {
			return nil, err
		}
		return true, nil
	}
}

func opListAllPackages(in *Interpreter, _ []*Expr) (any, error) {
	return toList(in.reg.ListAllPackages()), nil
}

func opPackagesInWaiting(in *Interpreter, _ []*Expr) (any, error) {
	var names []any
	for _, e := range in.reg.PackagesInWaiting() {
		names = append(names, e.Name)
	}
	return names, nil
}

func opPackageName(in *Interpreter, args []*Expr) (any, error) {
	d, err := in.designator(args[0])
	if err != nil {
		return nil, err
	}
	p, err := in.reg.Find(d)
	if err != nil || p == nil || p.Deleted() {
		return nil, err
	}
	return p.Name(), nil
}

func opPackageNicknames(in *Interpreter, args []*Expr) (any, error) {
	p, err := in.pkg(args[0])
	if err != nil {
		return nil, err
	}
	return toList(p.Nicknames()), nil
}

func opPackageUseList(in *Interpreter, args []*Expr) (any, error) {
	p, err := in.pkg(args[0])
	if err != nil {
		return nil, err
	}
	return toList(p.UseList()), nil
}

func opPackageUsedByList(in *Interpreter, args []*Expr) (any, error) {
	p, err := in.pkg(args[0])
	if err != nil {
		return nil, err
	}
	return toList(p.UsedByList()), nil
}

func opPackageShadowingSymbols(in *Interpreter, args []*Expr) (any, error) {
	p, err := in.pkg(args[0])
	if err != nil {
		return nil, err
	}
	return toList(p.ShadowingSymbols()), nil
}

// opPackageHashTables returns the external symbols, the internal symbols
// and the use-list, each sorted as the package reports them.
func opPackageHashTables(in *Interpreter, args []*Expr) (any, error) {
	p, err := in.pkg(args[0])
	if err != nil {
		return nil, err
	}
	_, _, uses := p.HashTables()
	return Values{toList(p.ExternalSymbols()), toList(p.InternalSymbols()), toList(uses)}, nil
}

func opClosePackage(in *Interpreter, args []*Expr) (any, error) {
	p, err := in.pkg(args[0])
	if err != nil {
		return nil, err
	}
	return p.Close(), nil
}

func opReopenPackage(in *Interpreter, args []*Expr) (any, error) {
	p, err := in.pkg(args[0])
	if err != nil {
		return nil, err
	}
	return p.Reopen(), nil
}

func opPackageClosedP(in *Interpreter, args []*Expr) (any, error) {
	p, err := in.pkg(args[0])
	if err != nil {
		return nil, err
	}
	return p.Closed(), nil
}

func opCheck(in *Interpreter, _ []*Expr) (any, error) {
	if err := in.reg.Check(); err != nil {
		return nil, err
	}
	return true, nil
}

func toList[T any](xs []T) []any {
	items := make([]any, len(xs))
	for i, x := range xs {
		items[i] = x
	}
	return items
}

func isNil(e *Expr) bool {
	return (e.Symbol != nil && readName(*e.Symbol) == "NIL") || (e.List != nil && len(e.List.Items) == 0)
}
