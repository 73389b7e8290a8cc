package namespace

import (
	"martianoff/lispkg/lisperr"
)

// FindSymbol resolves name in p without creating anything. It returns the
// symbol and how it is visible, or nil and None.
func (r *Registry) FindSymbol(name string, p *Package) (*Symbol, Visibility, error) {
	name, err := StringDesignator(name)
	if err != nil {
		return nil, None, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	s, vis := p.findSymbolNoLock(name)
	return s, vis, nil
}

// Intern returns the symbol named name in p, creating it if it is not
// accessible. A created symbol is homed in p and reported with visibility
// None; keyword symbols are created external and constant, all others
// internal.
//
// Creating a symbol in a closed package signals a continuable
// ClosedPackageError. After recovery the lookup is retried with the closed
// check waived, since the handler may have changed the package meanwhile.
func (r *Registry) Intern(name string, p *Package) (*Symbol, Visibility, error) {
	name, err := StringDesignator(name)
	if err != nil {
		return nil, None, err
	}

	var (
		sym    *Symbol
		vis    Visibility
		waived bool
	)
	err = r.retry(func() (lisperr.PackageError, error) {
		p.mu.Lock()
		defer p.mu.Unlock()

		if s, v := p.findSymbolNoLock(name); v != None {
			sym, vis = s, v
			return nil, nil
		}
		if p.closed.Load() && !waived {
			return lisperr.NewClosedPackage(p.Name(), "intern", name), nil
		}
		s := &Symbol{name: name}
		s.home.Store(p)
		if p.keyword {
			s.constant.Store(true)
			p.external.set(name, s)
		} else {
			p.internal.set(name, s)
		}
		sym, vis = s, None
		return nil, nil
	}, func(lisperr.PackageError) error {
		waived = true
		return nil
	})
	if err != nil {
		return nil, None, err
	}
	return sym, vis, nil
}

// Unintern removes s from p's tables and reports whether it was present. A
// shadowing symbol can only be removed if at most one distinct symbol of
// the same name is inherited afterwards.
func (r *Registry) Unintern(s *Symbol, p *Package) (bool, error) {
	name := s.name
	var (
		removed bool
		waived  bool
	)
	err := r.retry(func() (lisperr.PackageError, error) {
		p.mu.Lock()
		defer p.mu.Unlock()

		var tab *table
		if x, ok := p.internal.get(name); ok && x == s {
			tab = p.internal
		} else if x, ok := p.external.get(name); ok && x == s {
			tab = p.external
		} else {
			return nil, nil
		}
		if p.closed.Load() && !waived {
			return lisperr.NewClosedPackage(p.Name(), "unintern", s.String()), nil
		}

		if p.shadows.contains(s) {
			var first *Symbol
			for _, u := range p.uses.load() {
				y, ok := u.external.get(name)
				if !ok {
					continue
				}
				if first == nil {
					first = y
				} else if first != y {
					return nil, lisperr.NewNameConflict(p.Name(),
						"cannot unintern the shadowing symbol "+s.String(),
						name, first.String(), y.String(), p.Name())
				}
			}
			p.shadows.remove(s)
		}
		tab.remove(name)
		s.makeHomeless(p)
		removed = true
		return nil, nil
	}, func(lisperr.PackageError) error {
		waived = true
		return nil
	})
	return removed, err
}
