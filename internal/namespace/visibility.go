package namespace

import (
	"martianoff/lispkg/lisperr"
)

// Export makes each symbol external in p. Symbols are exported one at a
// time; the first failure stops the batch.
func (r *Registry) Export(p *Package, syms ...*Symbol) error {
	for _, s := range syms {
		if err := r.export(s, p); err != nil {
			return err
		}
	}
	return nil
}

// export makes s external in p. Every package using p is checked for a
// conflicting symbol of the same name before anything changes.
func (r *Registry) export(s *Symbol, p *Package) error {
	if err := r.checkOpen(p, "export", s.String()); err != nil {
		return err
	}
	name := s.name
	return r.retry(func() (lisperr.PackageError, error) {
		unlock := lockWithDependents(p)
		defer unlock()

		x, vis := p.findSymbolNoLock(name)
		if vis == None {
			return lisperr.NewNotAccessible(p.Name(), s.String(), "Import the symbol and proceed"), nil
		}
		if x != s {
			return nil, lisperr.NewNameConflict(p.Name(),
				"cannot export "+s.String()+" because another symbol with the same name is accessible",
				name, s.String(), x.String(), p.Name())
		}
		if vis == External {
			return nil, nil
		}
		for _, d := range p.usedBy.load() {
			y, v := d.findSymbolNoLock(name)
			if v != None && y != s && !d.shadows.contains(y) {
				return nil, lisperr.NewNameConflict(p.Name(),
					"cannot export "+s.String()+" from "+p.Name(),
					name, s.String(), y.String(), d.Name())
			}
		}
		if vis == Internal {
			p.internal.remove(name)
		}
		p.external.set(name, s)
		return nil, nil
	}, func(lisperr.PackageError) error {
		return r.importSymbol(s, p)
	})
}

// Unexport makes each external symbol of p internal. Symbols that are
// accessible but not external are left alone.
func (r *Registry) Unexport(p *Package, syms ...*Symbol) error {
	for _, s := range syms {
		if err := r.unexport(s, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) unexport(s *Symbol, p *Package) error {
	if p.keyword {
		return lisperr.NewProtectedPackage(p.Name(), "cannot unexport a symbol from the keyword package")
	}
	if err := r.checkOpen(p, "unexport", s.String()); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	x, vis := p.findSymbolNoLock(s.name)
	if vis == None || x != s {
		return lisperr.NewNotAccessible(p.Name(), s.String(), "")
	}
	if vis != External {
		return nil
	}
	p.external.remove(s.name)
	p.internal.set(s.name, s)
	return nil
}

// Import makes each symbol present in p. A different symbol already
// accessible under the same name signals a continuable NameConflictError;
// its recovery leaves p unchanged.
func (r *Registry) Import(p *Package, syms ...*Symbol) error {
	for _, s := range syms {
		if err := r.importSymbol(s, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) importSymbol(s *Symbol, p *Package) error {
	if p.keyword {
		return lisperr.NewProtectedPackage(p.Name(), "cannot import into the keyword package")
	}
	if err := r.checkOpen(p, "import", s.String()); err != nil {
		return err
	}

	var conflict *lisperr.NameConflictError
	func() {
		p.mu.Lock()
		defer p.mu.Unlock()

		x, vis := p.findSymbolNoLock(s.name)
		if vis != None && x != s {
			conflict = lisperr.NewNameConflict(p.Name(),
				"cannot import "+s.String()+" because another symbol with the same name is accessible",
				s.name, s.String(), x.String(), p.Name())
			conflict.Recover = "Ignore conflict and proceed"
			return
		}
		if vis == Internal || vis == External {
			return
		}
		p.internal.set(s.name, s)
		s.adopt(p)
	}()

	if conflict != nil {
		return r.signal(conflict)
	}
	return nil
}

// ShadowingImport imports each symbol into p and marks it as shadowing. A
// different symbol present in p under the same name is uninterned first.
func (r *Registry) ShadowingImport(p *Package, syms ...*Symbol) error {
	for _, s := range syms {
		if err := r.shadowingImport(s, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) shadowingImport(s *Symbol, p *Package) error {
	if p.keyword {
		return lisperr.NewProtectedPackage(p.Name(), "cannot shadowing-import into the keyword package")
	}
	if err := r.checkOpen(p, "shadowing-import", s.String()); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	x, vis := p.findSymbolNoLock(s.name)
	if vis == Internal || vis == External {
		if x == s {
			p.shadows.add(s)
			return nil
		}
		p.shadows.remove(x)
		if vis == Internal {
			p.internal.remove(s.name)
		} else {
			p.external.remove(s.name)
		}
		x.makeHomeless(p)
	}
	p.shadows.add(s)
	p.internal.set(s.name, s)
	s.adopt(p)
	return nil
}

// Shadow makes sure a symbol of each name is present in p and marks it as
// shadowing, creating an internal symbol when none is present.
func (r *Registry) Shadow(p *Package, names ...string) error {
	for _, n := range names {
		name, err := StringDesignator(n)
		if err != nil {
			return err
		}
		if err := r.shadow(name, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) shadow(name string, p *Package) error {
	if p.keyword {
		return lisperr.NewProtectedPackage(p.Name(), "cannot shadow in the keyword package")
	}
	if err := r.checkOpen(p, "shadow", name); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	x, vis := p.findSymbolNoLock(name)
	if vis != Internal && vis != External {
		x = &Symbol{name: name}
		x.home.Store(p)
		p.internal.set(name, x)
	}
	p.shadows.add(x)
	return nil
}
