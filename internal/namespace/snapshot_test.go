package namespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	rc := &recorder{decision: Continue}
	opts := DefaultOptions()
	opts.Handler = rc.handle
	opts.UserPackage = false
	r := NewRegistry(opts)

	u := mustMake(t, r, "U")
	a, _, _ := r.Intern("A", u)
	r.Intern("B", u)
	require.NoError(t, r.Export(u, a))

	p, err := r.MakePackage("P", MakeOptions{Nicknames: []string{"PP"}, Use: []any{u, "LATER"}})
	require.NoError(t, err)
	require.NoError(t, r.Shadow(p, "A"))
	p.Close()

	snap := r.Snapshot()
	require.Len(t, snap.Packages, 4)
	assert.Equal(t, []string{"KEYWORD", "LISP", "U", "P"}, []string{
		snap.Packages[0].Name, snap.Packages[1].Name, snap.Packages[2].Name, snap.Packages[3].Name,
	})
	assert.Equal(t, []string{"LATER"}, snap.Pending)

	assert.Equal(t, PackageSnapshot{
		Name:     "U",
		UsedBy:   []string{"P"},
		External: []string{"A"},
		Internal: []string{"B"},
	}, snap.Packages[2])
	assert.Equal(t, PackageSnapshot{
		Name:      "P",
		Nicknames: []string{"PP"},
		Uses:      []string{"U", "LATER"},
		Shadows:   []string{"P::A"},
		Closed:    true,
		Internal:  []string{"A"},
	}, snap.Packages[3])
}
