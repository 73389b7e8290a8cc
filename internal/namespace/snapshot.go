package namespace

import (
	"maps"
	"slices"
)

// Snapshot is a plain description of the registry.
type Snapshot struct {
	Packages []PackageSnapshot `toml:"package"`
	Pending  []string          `toml:"pending,omitempty"`
}

// PackageSnapshot describes one package. Table symbols are listed by name,
// shadowing symbols in printed form.
type PackageSnapshot struct {
	Name      string   `toml:"name"`
	Nicknames []string `toml:"nicknames,omitempty"`
	Uses      []string `toml:"uses,omitempty"`
	UsedBy    []string `toml:"used_by,omitempty"`
	Shadows   []string `toml:"shadows,omitempty"`
	Closed    bool     `toml:"closed,omitempty"`
	External  []string `toml:"external,omitempty"`
	Internal  []string `toml:"internal,omitempty"`
}

// Snapshot describes every live package in creation order. Each package is
// copied under its own lock.
func (r *Registry) Snapshot() Snapshot {
	var snap Snapshot
	for _, p := range r.ListAllPackages() {
		snap.Packages = append(snap.Packages, p.snapshot())
	}
	for _, e := range r.PackagesInWaiting() {
		snap.Pending = append(snap.Pending, e.Name)
	}
	return snap
}

func (p *Package) snapshot() PackageSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	shadows := symbolNames(p.shadows.load())
	slices.Sort(shadows)

	return PackageSnapshot{
		Name:      p.Name(),
		Nicknames: nilIfEmpty(p.nicknames.copy()),
		Uses:      nilIfEmpty(packageNames(p.uses.load())),
		UsedBy:    nilIfEmpty(packageNames(p.usedBy.load())),
		Shadows:   nilIfEmpty(shadows),
		Closed:    p.closed.Load(),
		External:  slices.Sorted(maps.Keys(p.external.snapshot())),
		Internal:  slices.Sorted(maps.Keys(p.internal.snapshot())),
	}
}

// nilIfEmpty keeps empty lists out of the encoded snapshot.
func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
