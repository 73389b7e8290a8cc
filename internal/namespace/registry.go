// Package namespace implements the package system of the Lisp runtime: the
// registry of named packages, symbol resolution and interning, the
// export/import/shadow family of visibility mutators and the use graph.
//
// Locking follows two tiers. The registry lock guards only the package list
// and the pending-creation list. Each package has its own lock guarding its
// tables and relational lists. Operations touching two or more packages lock
// them in creation order, so concurrent use-package calls in opposite
// directions cannot deadlock. Continuable errors are signalled to the
// configured Handler only after every lock has been released.
package namespace

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"martianoff/lispkg/lisperr"
)

// PendingEntry is a package that has been referred to before being created.
type PendingEntry struct {
	Name    string
	Package *Package
}

// Registry is the set of live packages.
//
// Thread-safe: all methods can be called concurrently.
type Registry struct {
	mu       sync.Mutex
	packages list[*Package] // copy-on-write, written under mu
	pending  []PendingEntry // guarded by mu

	seq    atomic.Uint64
	opts   Options
	logger *log.Logger

	keyword *Package
	lisp    *Package
	user    *Package
}

// NewRegistry creates a registry holding the bootstrap packages: KEYWORD,
// LISP (nickname CL) and, if opts.UserPackage is set, USER (nickname
// CL-USER) which uses LISP.
func NewRegistry(opts Options) *Registry {
	opts = opts.withDefaults()
	r := &Registry{
		opts:   opts,
		logger: opts.Logger,
	}

	r.keyword = r.alloc(KeywordPackage, 0, 0)
	r.keyword.keyword = true
	r.keyword.protected = true

	r.lisp = r.alloc(LispPackage, 0, 0)
	r.lisp.nicknames.store([]string{"CL"})
	r.lisp.protected = true

	boot := []*Package{r.keyword, r.lisp}
	if opts.UserPackage {
		r.user = r.alloc(UserPackage, 0, 0)
		r.user.nicknames.store([]string{"CL-USER"})
		r.user.uses.add(r.lisp)
		r.lisp.usedBy.add(r.user)
		boot = append(boot, r.user)
	}
	r.packages.store(boot)
	return r
}

// Keyword returns the keyword package.
func (r *Registry) Keyword() *Package { return r.keyword }

// Lisp returns the root package.
func (r *Registry) Lisp() *Package { return r.lisp }

// User returns the USER package, or nil if it was not bootstrapped.
func (r *Registry) User() *Package { return r.user }

func (r *Registry) alloc(name string, externalSize, internalSize int) *Package {
	if externalSize <= 0 {
		externalSize = r.opts.ExternalSize
	}
	if internalSize <= 0 {
		internalSize = r.opts.InternalSize
	}
	return newPackage(r.seq.Add(1), name, externalSize, internalSize)
}

// Find returns the package designated by designator: a *Package is returned
// as is, anything else is coerced to a name and matched against the names
// and nicknames of the live packages. Find returns nil if no package
// matches. The package list is copy-on-write, so no lock is taken.
func (r *Registry) Find(designator any) (*Package, error) {
	if p, ok := designator.(*Package); ok {
		return p, nil
	}
	name, err := StringDesignator(designator)
	if err != nil {
		return nil, lisperr.NewTypeError(fmt.Sprintf("%v", designator), "package designator")
	}
	return r.findNamed(name), nil
}

// Coerce is Find, failing with a NotFoundError when no package matches.
func (r *Registry) Coerce(designator any) (*Package, error) {
	p, err := r.Find(designator)
	if err != nil {
		return nil, err
	}
	if p == nil {
		name, _ := StringDesignator(designator)
		return nil, lisperr.NewNotFound(name, "")
	}
	return p, nil
}

func (r *Registry) findNamed(name string) *Package {
	for _, p := range r.packages.load() {
		if p.matches(name) {
			return p
		}
	}
	return nil
}

// findPendingLocked returns the index of the pending entry named name or
// one of nicknames. The caller holds r.mu.
func (r *Registry) findPendingLocked(name string, nicknames []string) int {
	return slices.IndexFunc(r.pending, func(e PendingEntry) bool {
		return e.Name == name || slices.Contains(nicknames, e.Name)
	})
}

// Declare returns the package named name, creating a not-yet-finalized
// stand-in on the pending-creation list if no live or pending package has
// that name. A later MakePackage with that name or nickname adopts the
// stand-in, along with any use edges already pointing at it.
func (r *Registry) Declare(name string) (*Package, error) {
	name, err := StringDesignator(name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p := r.findNamed(name); p != nil {
		return p, nil
	}
	if i := r.findPendingLocked(name, nil); i >= 0 {
		return r.pending[i].Package, nil
	}
	p := r.alloc(name, 0, 0)
	r.pending = append(r.pending, PendingEntry{Name: name, Package: p})
	r.logger.Debug("package declared", "name", name)
	return p, nil
}

// MakeOptions are the optional arguments of MakePackage.
type MakeOptions struct {
	Nicknames    []string
	Use          []any // Package designators
	ExternalSize int   // 0 means the registry default
	InternalSize int
}

// MakePackage creates and registers a package.
//
// A pending stand-in whose name matches name or one of the nicknames is
// adopted instead of allocating a fresh package. A use-list entry that names
// no package signals a continuable NotFoundError whose recovery declares it.
// A name or nickname already owned by a live package signals a continuable
// AlreadyExistsError whose recovery returns the existing package.
func (r *Registry) MakePackage(name string, opts MakeOptions) (*Package, error) {
	name, err := StringDesignator(name)
	if err != nil {
		return nil, err
	}
	nicknames := normalizeNames(opts.Nicknames)

	uses, err := r.resolveUseList(opts.Use)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	var x *Package
	pending := r.findPendingLocked(name, nicknames)
	var collision *lisperr.AlreadyExistsError
	if other := r.findNamed(name); other != nil {
		collision = lisperr.NewAlreadyExists(name, other.Name(), "Return existing package")
	}
	if collision == nil {
		for _, nick := range nicknames {
			if other := r.findNamed(nick); other != nil {
				collision = lisperr.NewAlreadyExists(nick, other.Name(), "Return existing package")
				break
			}
		}
	}
	if collision == nil {
		var standIn *Package
		if pending >= 0 {
			standIn = r.pending[pending].Package
		}
		if err := checkUseListConflicts(name, standIn, uses); err != nil {
			r.mu.Unlock()
			return nil, err
		}
		if standIn != nil {
			x = standIn
			r.pending = slices.Delete(r.pending, pending, pending+1)
			x.name.Store(&name)
		} else {
			x = r.alloc(name, opts.ExternalSize, opts.InternalSize)
		}
		x.nicknames.store(slices.DeleteFunc(nicknames, func(n string) bool { return n == name }))
		r.packages.add(x)
	}
	r.mu.Unlock()

	if collision != nil {
		if err := r.signal(collision); err != nil {
			return nil, err
		}
		return r.findNamed(collision.Name), nil
	}

	r.logger.Debug("package created", "name", name, "nicknames", nicknames, "adopted", pending >= 0)

	for _, u := range uses {
		if err := r.use(u, x); err != nil {
			return x, err
		}
	}
	return x, nil
}

// resolveUseList coerces the use-list designators, declaring unknown names
// if the handler allows it.
func (r *Registry) resolveUseList(designators []any) ([]*Package, error) {
	uses := make([]*Package, 0, len(designators))
	for _, d := range designators {
		p, err := r.Find(d)
		if err != nil {
			return nil, err
		}
		if p == nil {
			name, _ := StringDesignator(d)
			r.mu.Lock()
			if i := r.findPendingLocked(name, nil); i >= 0 {
				p = r.pending[i].Package
			}
			r.mu.Unlock()
			if p == nil {
				if err := r.signal(lisperr.NewNotFound(name, "Declare the package and proceed")); err != nil {
					return nil, err
				}
				if p, err = r.Declare(name); err != nil {
					return nil, err
				}
			}
		}
		if p.keyword {
			return nil, lisperr.NewProtectedPackage(p.Name(), "cannot use keyword package")
		}
		if !slices.Contains(uses, p) {
			uses = append(uses, p)
		}
	}
	return uses, nil
}

// checkUseListConflicts rejects a use-list whose packages export different
// symbols under the same name. An adopted stand-in may already hold symbols,
// so its own resolution is checked against the new uses too. The stand-in's
// tables are read without its lock; use re-checks under it.
func checkUseListConflicts(pkgName string, standIn *Package, uses []*Package) error {
	seen := make(map[string]*Symbol)
	owner := make(map[string]*Package)
	for _, u := range uses {
		for name, s := range u.external.snapshot() {
			if prev, ok := seen[name]; ok && prev != s {
				return lisperr.NewNameConflict(u.Name(), "cannot use "+u.Name()+" together with "+owner[name].Name(),
					name, s.String(), prev.String(), "the new package")
			}
			seen[name] = s
			owner[name] = u
		}
	}
	if standIn == nil {
		return nil
	}
	for n, s := range seen {
		if standIn.uses.contains(owner[n]) {
			continue
		}
		there, vis := standIn.findSymbolNoLock(n)
		if vis != None && there != s && !standIn.shadows.contains(there) {
			return lisperr.NewNameConflict(pkgName, "cannot use "+owner[n].Name()+" from "+pkgName,
				n, s.String(), there.String(), pkgName)
		}
	}
	return nil
}

// RenamePackage replaces the name and nicknames of p. The old name and
// nicknames may be kept as nicknames; duplicates and the new name itself are
// dropped from the nickname list. A name or nickname owned by another live or
// pending package signals a continuable AlreadyExistsError whose recovery
// leaves p unchanged.
func (r *Registry) RenamePackage(p *Package, newName string, nicknames []string) (*Package, error) {
	newName, err := StringDesignator(newName)
	if err != nil {
		return nil, err
	}
	if p.Deleted() {
		return nil, lisperr.NewNotFound(newName, "")
	}
	if err := r.checkOpen(p, "rename", ""); err != nil {
		return nil, err
	}

	r.mu.Lock()
	collision := r.renameCollisionLocked(p, newName)
	var kept []string
	for _, nick := range normalizeNames(nicknames) {
		if collision != nil {
			break
		}
		if nick == newName || slices.Contains(kept, nick) {
			continue
		}
		if collision = r.renameCollisionLocked(p, nick); collision == nil {
			kept = append(kept, nick)
		}
	}
	old := p.Name()
	if collision == nil {
		p.name.Store(&newName)
		p.nicknames.store(kept)
	}
	r.mu.Unlock()

	if collision != nil {
		if err := r.signal(collision); err != nil {
			return p, err
		}
		return p, nil
	}
	r.logger.Debug("package renamed", "from", old, "to", newName, "nicknames", kept)
	return p, nil
}

// renameCollisionLocked reports name as taken if a live package other than p
// owns it, or if it is reserved by a pending stand-in. The caller holds r.mu.
func (r *Registry) renameCollisionLocked(p *Package, name string) *lisperr.AlreadyExistsError {
	if other := r.findNamed(name); other != nil && other != p {
		return lisperr.NewAlreadyExists(name, other.Name(), "Keep the current name")
	}
	if i := r.findPendingLocked(name, nil); i >= 0 && r.pending[i].Package != p {
		return lisperr.NewAlreadyExists(name, r.pending[i].Name, "Keep the current name")
	}
	return nil
}

// DeletePackage removes the designated package from the registry. It unuses
// every package p uses; if other packages use p, a continuable UsedByError
// is signalled whose recovery unuses p from each of them. The package's name
// is cleared and a pending stand-in is withdrawn from the pending list, so a
// later MakePackage allocates a fresh package. It returns whether a package
// was deleted.
func (r *Registry) DeletePackage(designator any) (bool, error) {
	p, err := r.Find(designator)
	if err != nil {
		return false, err
	}
	if p == nil {
		name, _ := StringDesignator(designator)
		return false, r.signal(lisperr.NewNotFound(name, "Ignore error and continue"))
	}
	if err := r.checkOpen(p, "delete", ""); err != nil {
		return false, err
	}
	if p.protected {
		return false, lisperr.NewProtectedPackage(p.Name(), "cannot delete package "+p.Name())
	}
	if p.Deleted() {
		return false, nil
	}

	for _, u := range p.uses.load() {
		if err := r.unuse(u, p); err != nil {
			return false, err
		}
	}
	if deps := p.usedBy.load(); len(deps) > 0 {
		if err := r.signal(lisperr.NewUsedBy(p.Name(), packageNames(deps))); err != nil {
			return false, err
		}
		for _, d := range deps {
			if err := r.unuse(p, d); err != nil {
				return false, err
			}
		}
	}

	r.mu.Lock()
	name := p.Name()
	r.packages.remove(p)
	r.pending = slices.DeleteFunc(r.pending, func(e PendingEntry) bool { return e.Package == p })
	p.name.Store(nil)
	r.mu.Unlock()

	r.logger.Debug("package deleted", "name", name)
	return true, nil
}

// ListAllPackages returns a snapshot of the live packages in creation order.
func (r *Registry) ListAllPackages() []*Package {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.packages.copy()
}

// PackagesInWaiting returns a snapshot of the pending-creation list.
func (r *Registry) PackagesInWaiting() []PendingEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.pending)
}
