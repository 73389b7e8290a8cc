package namespace

import (
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"

	"martianoff/lispkg/lisperr"
)

// StringDesignator coerces a string designator (string, rune or symbol) to
// a name. Names are normalized to Unicode NFC so that canonically equivalent
// spellings designate the same symbol or package.
func StringDesignator(x any) (string, error) {
	switch v := x.(type) {
	case string:
		return norm.NFC.String(v), nil
	case rune:
		return norm.NFC.String(string(v)), nil
	case *Symbol:
		if v != nil {
			return v.name, nil
		}
	}
	return "", lisperr.NewTypeError(fmt.Sprintf("%v", x), "string designator")
}

func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = norm.NFC.String(n)
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
