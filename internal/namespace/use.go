package namespace

import (
	"martianoff/lispkg/lisperr"
)

// UsePackage makes p inherit the external symbols of each package in used.
func (r *Registry) UsePackage(p *Package, used ...*Package) error {
	for _, u := range used {
		if err := r.use(u, p); err != nil {
			return err
		}
	}
	return nil
}

// UnusePackage removes each package in used from p's use-list.
func (r *Registry) UnusePackage(p *Package, used ...*Package) error {
	for _, u := range used {
		if err := r.unuse(u, p); err != nil {
			return err
		}
	}
	return nil
}

// use adds u to p's use-list. Every external symbol of u is resolved in p
// first; a different, unshadowed symbol under the same name aborts the call
// before any edge is recorded.
func (r *Registry) use(u, p *Package) error {
	if u.keyword {
		return lisperr.NewProtectedPackage(u.Name(), "cannot use keyword package")
	}
	if u.Deleted() {
		return lisperr.NewNotFound(u.String(), "")
	}
	if err := r.checkOpen(p, "use", u.Name()); err != nil {
		return err
	}
	if p.keyword {
		return lisperr.NewProtectedPackage(p.Name(), "cannot use in keyword package")
	}
	if u == p || p.uses.contains(u) {
		return nil
	}

	unlock := lockPackages(u, p)
	defer unlock()

	if p.uses.contains(u) {
		return nil
	}
	for name, here := range u.external.snapshot() {
		there, vis := p.findSymbolNoLock(name)
		if vis != None && here != there && !p.shadows.contains(there) {
			return lisperr.NewNameConflict(p.Name(),
				"cannot use "+u.Name()+" from "+p.Name(),
				name, here.String(), there.String(), p.Name())
		}
	}
	p.uses.add(u)
	u.usedBy.add(p)
	r.logger.Debug("package used", "package", p.Name(), "uses", u.Name())
	return nil
}

// unuse removes the edge between p and u in both directions.
func (r *Registry) unuse(u, p *Package) error {
	if err := r.checkOpen(p, "unuse", u.Name()); err != nil {
		return err
	}

	unlock := lockPackages(u, p)
	defer unlock()

	p.uses.remove(u)
	u.usedBy.remove(p)
	r.logger.Debug("package unused", "package", p.Name(), "unuses", u.Name())
	return nil
}
