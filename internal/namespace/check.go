package namespace

import (
	"fmt"

	"martianoff/lispkg/lisperr"
)

// Check verifies the registry invariants and returns every violation found
// as a *lisperr.MultiError, or nil:
//   - no name is both external and internal in one package
//   - a symbol whose home is a live package is present in that package
//   - P uses Q exactly when Q is used by P
//   - the keyword package has no internal symbols and no use edges
//   - no two live packages share a name or nickname
//
// Packages are locked one at a time, so a registry under concurrent
// mutation may report transient violations.
func (r *Registry) Check() error {
	var errs lisperr.MultiError
	owners := make(map[string]*Package)

	for _, p := range r.ListAllPackages() {
		ext, in, uses := p.HashTables()
		usedBy := p.UsedByList()

		for name := range ext {
			if _, ok := in[name]; ok {
				errs.Errors = append(errs.Errors, fmt.Errorf("%s: %q is both external and internal", p.Name(), name))
			}
		}
		for _, tab := range []map[string]*Symbol{ext, in} {
			for name, s := range tab {
				home := s.Package()
				if home == nil || home.Deleted() {
					continue
				}
				x, okExt := home.external.get(name)
				y, okIn := home.internal.get(name)
				if !(okExt && x == s) && !(okIn && y == s) {
					errs.Errors = append(errs.Errors, fmt.Errorf("%s: home of %s is %s but it is not present there", p.Name(), name, home.Name()))
				}
			}
		}
		for _, u := range uses {
			if !u.usedBy.contains(p) {
				errs.Errors = append(errs.Errors, fmt.Errorf("%s uses %s but is missing from its used-by list", p.Name(), u.Name()))
			}
		}
		for _, d := range usedBy {
			if !d.uses.contains(p) {
				errs.Errors = append(errs.Errors, fmt.Errorf("%s lists %s as a user but %s does not use it", p.Name(), d.Name(), d.Name()))
			}
		}
		if p.keyword && (len(in) > 0 || len(uses) > 0 || len(usedBy) > 0) {
			errs.Errors = append(errs.Errors, fmt.Errorf("%s: keyword package has internal symbols or use edges", p.Name()))
		}

		for _, n := range append([]string{p.Name()}, p.Nicknames()...) {
			if other, ok := owners[n]; ok && other != p {
				errs.Errors = append(errs.Errors, fmt.Errorf("%s and %s share the name %q", other.Name(), p.Name(), n))
			}
			owners[n] = p
		}
	}
	return errs.ErrorOrNil()
}
