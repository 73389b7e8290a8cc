package namespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/lispkg/lisperr"
)

func TestCheckHealthyRegistry(t *testing.T) {
	r := newTestRegistry(t, nil)
	p := mustMake(t, r, "P", "LISP")
	x, _, _ := r.Intern("X", p)
	require.NoError(t, r.Export(p, x))
	r.Intern("K", r.Keyword())

	assert.NoError(t, r.Check())
}

func TestCheckReportsViolations(t *testing.T) {
	r := newTestRegistry(t, nil)
	p := mustMake(t, r, "P")
	q := mustMake(t, r, "Q")
	x, _, _ := r.Intern("X", p)

	p.external.set("X", x)
	q.uses.add(p)
	stray := MakeSymbol("STRAY")
	stray.adopt(q)
	p.internal.set("STRAY", stray)
	r.Keyword().internal.set("BAD", MakeSymbol("BAD"))
	q.nicknames.add("P")

	err := r.Check()
	var multi *lisperr.MultiError
	require.ErrorAs(t, err, &multi)
	assert.Len(t, multi.Errors, 5)
	assert.Contains(t, err.Error(), `P: "X" is both external and internal`)
	assert.Contains(t, err.Error(), "Q uses P but is missing from its used-by list")
	assert.Contains(t, err.Error(), "home of STRAY is Q")
	assert.Contains(t, err.Error(), "keyword package")
	assert.Contains(t, err.Error(), `share the name "P"`)
}
