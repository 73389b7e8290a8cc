package namespace

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"
)

// Visibility describes how a name is accessible in a package.
type Visibility int

const (
	// None means the name is not accessible. Intern reports None for a
	// symbol it has just created.
	None Visibility = iota
	Internal
	External
	Inherited
)

func (v Visibility) String() string {
	switch v {
	case Internal:
		return "internal"
	case External:
		return "external"
	case Inherited:
		return "inherited"
	default:
		return "none"
	}
}

// Package is a named namespace with external and internal symbol tables.
//
// The package lock guards the tables, the relational lists and the closed
// flag as a unit. The relational lists are copy-on-write, so they can be
// read without the lock. Name and nicknames are written under the registry
// lock.
type Package struct {
	id        uint64 // creation order; the lock-ordering key
	keyword   bool
	protected bool

	mu       sync.Mutex
	external *table
	internal *table
	uses     list[*Package]
	usedBy   list[*Package]
	shadows  list[*Symbol]
	closed   atomic.Bool

	name      atomic.Pointer[string] // nil once deleted
	nicknames list[string]
}

func newPackage(id uint64, name string, externalSize, internalSize int) *Package {
	p := &Package{
		id:       id,
		external: newTable(externalSize),
		internal: newTable(internalSize),
	}
	p.name.Store(&name)
	return p
}

// Name returns the package name, or "" if the package has been deleted.
func (p *Package) Name() string {
	if n := p.name.Load(); n != nil {
		return *n
	}
	return ""
}

// Deleted reports whether the package has been deleted.
func (p *Package) Deleted() bool {
	return p.name.Load() == nil
}

// IsKeyword reports whether p is the keyword package.
func (p *Package) IsKeyword() bool {
	return p.keyword
}

func (p *Package) String() string {
	if p.Deleted() {
		return "#<deleted package>"
	}
	return "#<PACKAGE " + p.Name() + ">"
}

// matches reports whether name is the package name or one of its nicknames.
func (p *Package) matches(name string) bool {
	if n := p.name.Load(); n != nil && *n == name {
		return true
	}
	return p.nicknames.contains(name)
}

// findSymbolNoLock resolves name in p: own external table, own internal
// table (never for the keyword package), then the external tables of the
// used packages in use-list order. The caller holds p's lock.
func (p *Package) findSymbolNoLock(name string) (*Symbol, Visibility) {
	if s, ok := p.external.get(name); ok {
		return s, External
	}
	if p.keyword {
		return nil, None
	}
	if s, ok := p.internal.get(name); ok {
		return s, Internal
	}
	for _, u := range p.uses.load() {
		if s, ok := u.external.get(name); ok {
			return s, Inherited
		}
	}
	return nil, None
}

// lockPackages acquires the locks of pkgs in creation order and returns a
// function that releases them. A package listed twice is locked once.
func lockPackages(pkgs ...*Package) func() {
	ordered := slices.Clone(pkgs)
	slices.SortFunc(ordered, func(a, b *Package) int { return cmp.Compare(a.id, b.id) })
	ordered = slices.Compact(ordered)
	for _, p := range ordered {
		p.mu.Lock()
	}
	return func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			ordered[i].mu.Unlock()
		}
	}
}

// lockWithDependents locks p together with every package that uses it. The
// used-by list only changes under p's lock, so once it is unchanged after
// locking, the locked set is complete.
func lockWithDependents(p *Package) func() {
	for {
		deps := p.usedBy.load()
		unlock := lockPackages(append([]*Package{p}, deps...)...)
		if slices.Equal(deps, p.usedBy.load()) {
			return unlock
		}
		unlock()
	}
}

func packageNames(pkgs []*Package) []string {
	names := make([]string, len(pkgs))
	for i, p := range pkgs {
		names[i] = p.Name()
	}
	return names
}
