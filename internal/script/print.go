package script

import (
	"fmt"
	"strconv"
	"strings"

	"martianoff/lispkg/internal/namespace"
)

// Format prints a value the way the REPL shows it.
func Format(v any) string {
	switch v := v.(type) {
	case nil:
		return "NIL"
	case bool:
		if v {
			return "T"
		}
		return "NIL"
	case string:
		return strconv.Quote(v)
	case int:
		return strconv.Itoa(v)
	case *namespace.Package:
		return v.String()
	case *namespace.Symbol:
		return v.String()
	case namespace.Visibility:
		if v == namespace.None {
			return "NIL"
		}
		return ":" + strings.ToUpper(v.String())
	case []any:
		if len(v) == 0 {
			return "NIL"
		}
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = Format(item)
		}
		return "(" + strings.Join(parts, " ") + ")"
	case Values:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = Format(item)
		}
		return strings.Join(parts, "\n")
	}
	return fmt.Sprint(v)
}

// exprText reproduces an argument for error messages.
func exprText(e *Expr) string {
	switch {
	case e.String != nil:
		return strconv.Quote(*e.String)
	case e.Int != nil:
		return strconv.Itoa(*e.Int)
	case e.Uninterned != nil:
		return *e.Uninterned
	case e.Keyword != nil:
		return *e.Keyword
	case e.Qualified != nil:
		return *e.Qualified
	case e.Symbol != nil:
		return *e.Symbol
	case e.List != nil:
		parts := make([]string, len(e.List.Items))
		for i, item := range e.List.Items {
			parts[i] = exprText(item)
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return ""
}
