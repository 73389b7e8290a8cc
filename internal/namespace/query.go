package namespace

// Nicknames returns a copy of the package's nicknames.
func (p *Package) Nicknames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nicknames.copy()
}

// UseList returns a copy of the packages p uses, in use-list order.
func (p *Package) UseList() []*Package {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uses.copy()
}

// UsedByList returns a copy of the packages that use p.
func (p *Package) UsedByList() []*Package {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.usedBy.copy()
}

// ShadowingSymbols returns a copy of p's shadowing symbols.
func (p *Package) ShadowingSymbols() []*Symbol {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shadows.copy()
}

// Closed reports whether p rejects mutation.
func (p *Package) Closed() bool {
	return p.closed.Load()
}

// Close makes p reject mutation until it is reopened.
func (p *Package) Close() *Package {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed.Store(true)
	return p
}

// Reopen makes a closed package mutable again.
func (p *Package) Reopen() *Package {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed.Store(false)
	return p
}

// HashTables returns copies of p's external and internal tables and of its
// use-list, taken together under p's lock.
func (p *Package) HashTables() (external, internal map[string]*Symbol, uses []*Package) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.external.snapshot(), p.internal.snapshot(), p.uses.copy()
}

// ExternalSymbols returns p's external symbols ordered by name.
func (p *Package) ExternalSymbols() []*Symbol {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.external.symbols()
}

// InternalSymbols returns p's internal symbols ordered by name.
func (p *Package) InternalSymbols() []*Symbol {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.internal.symbols()
}
