package namespace

import (
	"sync/atomic"

	"golang.org/x/text/unicode/norm"
)

// Symbol is a unique, name-bearing identity. Two symbols never compare
// equal unless they are the same pointer, whatever their names.
//
// The home package is a weak back-reference: it is set by the mutator that
// makes the symbol resident somewhere and cleared when residency in that
// package ends.
type Symbol struct {
	name     string
	home     atomic.Pointer[Package]
	constant atomic.Bool
}

// MakeSymbol creates a fresh homeless symbol.
func MakeSymbol(name string) *Symbol {
	return &Symbol{name: norm.NFC.String(name)}
}

// Name returns the symbol's name.
func (s *Symbol) Name() string {
	return s.name
}

// Package returns the symbol's home package, or nil if it is homeless.
func (s *Symbol) Package() *Package {
	return s.home.Load()
}

// Constant reports whether the symbol is a constant. Keywords are constants
// whose value is the keyword itself.
func (s *Symbol) Constant() bool {
	return s.constant.Load()
}

// String prints the symbol qualified by its home package.
func (s *Symbol) String() string {
	home := s.home.Load()
	if home == nil {
		return "#:" + s.name
	}
	if home.keyword {
		return ":" + s.name
	}
	if x, ok := home.external.get(s.name); ok && x == s {
		return home.Name() + ":" + s.name
	}
	return home.Name() + "::" + s.name
}

// adopt sets the home package if the symbol is homeless.
func (s *Symbol) adopt(p *Package) {
	s.home.CompareAndSwap(nil, p)
}

// makeHomeless clears the home package if it is p.
func (s *Symbol) makeHomeless(p *Package) {
	s.home.CompareAndSwap(p, nil)
}

func symbolNames(syms []*Symbol) []string {
	names := make([]string, len(syms))
	for i, s := range syms {
		names[i] = s.String()
	}
	return names
}
