// Package script reads and runs lpkg command scripts: parenthesized,
// Lisp-style forms that drive a namespace.Registry.
package script

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `;[^\n]*`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Uninterned", Pattern: `#:[^\s()";:]+`},
	{Name: "Keyword", Pattern: `:[^\s()";:]+`},
	{Name: "Qualified", Pattern: `[^\s()";:#]+::?[^\s()";:]+`},
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Symbol", Pattern: `[^\s()";:#]+`},
	{Name: "Punct", Pattern: `[()]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var parser = participle.MustBuild[Script](
	participle.Lexer(scriptLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
)

// Script is a sequence of top-level forms.
type Script struct {
	Forms []*Form `parser:"@@*"`
}

// Form is an operator applied to arguments.
type Form struct {
	Pos  lexer.Position
	Op   string  `parser:"'(' @Symbol"`
	Args []*Expr `parser:"@@* ')'"`
}

// Expr is a single argument. Nested parentheses are list literals; they are
// never evaluated as forms.
type Expr struct {
	Pos        lexer.Position
	String     *string `parser:"  @String"`
	Uninterned *string `parser:"| @Uninterned"`
	Keyword    *string `parser:"| @Keyword"`
	Qualified  *string `parser:"| @Qualified"`
	Int        *int    `parser:"| @Int"`
	Symbol     *string `parser:"| @Symbol"`
	List       *List   `parser:"| @@"`
}

// List is a parenthesized list of expressions.
type List struct {
	Items []*Expr `parser:"'(' @@* ')'"`
}

// Parse reads a script. name is only used in positions.
func Parse(name, src string) (*Script, error) {
	return parser.ParseString(name, src)
}

// Incomplete reports whether src ends inside an open form or string, so a
// line-oriented reader should ask for more input.
func Incomplete(src string) bool {
	depth := 0
	inString, escaped, inComment := false, false, false
	for _, r := range src {
		switch {
		case inComment:
			inComment = r != '\n'
		case inString:
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
		case r == ';':
			inComment = true
		case r == '"':
			inString = true
		case r == '(':
			depth++
		case r == ')':
			depth--
		}
	}
	return inString || depth > 0
}
