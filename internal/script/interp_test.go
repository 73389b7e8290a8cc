package script

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/lispkg/internal/namespace"
	"martianoff/lispkg/lisperr"
)

func newInterpreter(t *testing.T, handler namespace.Handler) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	opts := namespace.DefaultOptions()
	opts.Handler = handler
	var out bytes.Buffer
	return New(namespace.NewRegistry(opts), &out, nil), &out
}

func lines(out *bytes.Buffer) []string {
	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func TestParse(t *testing.T) {
	s, err := Parse("test", `; comment
(export (foo p::bar q:baz :key #:gensym "str" 42) "P")`)
	require.NoError(t, err)
	require.Len(t, s.Forms, 1)

	f := s.Forms[0]
	assert.Equal(t, "export", f.Op)
	require.Len(t, f.Args, 2)
	assert.Equal(t, "P", *f.Args[1].String)

	items := f.Args[0].List.Items
	require.Len(t, items, 7)
	assert.Equal(t, "foo", *items[0].Symbol)
	assert.Equal(t, "p::bar", *items[1].Qualified)
	assert.Equal(t, "q:baz", *items[2].Qualified)
	assert.Equal(t, ":key", *items[3].Keyword)
	assert.Equal(t, "#:gensym", *items[4].Uninterned)
	assert.Equal(t, "str", *items[5].String)
	assert.Equal(t, 42, *items[6].Int)
}

func TestParseError(t *testing.T) {
	_, err := Parse("test", "(intern \"X\"")
	assert.Error(t, err)
}

func TestRunInternThenExport(t *testing.T) {
	in, out := newInterpreter(t, nil)

	err := in.Run("test", `
(make-package "FOO" :use ("LISP"))
(in-package "FOO")
(intern "BAR")
(export foo::bar)
(find-symbol "BAR" "FOO")
(symbol-package foo:bar)`)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"#<PACKAGE FOO>",
		"#<PACKAGE FOO>",
		"FOO::BAR", "NIL",
		"T",
		"FOO:BAR", ":EXTERNAL",
		"#<PACKAGE FOO>",
	}, lines(out))
	assert.Equal(t, "FOO", in.Current().Name())
}

func TestRunMakePackageDefaults(t *testing.T) {
	in, out := newInterpreter(t, nil)

	require.NoError(t, in.Run("test", `
(make-package :app :nicknames (a1 "a2") :external-size 8)
(package-use-list :app)
(package-nicknames "A1")
(make-package :bare :use nil)
(package-use-list :bare)`))

	assert.Equal(t, []string{
		"#<PACKAGE APP>",
		"(#<PACKAGE LISP>)",
		`("A1" "a2")`,
		"#<PACKAGE BARE>",
		"NIL",
	}, lines(out))
}

func TestRunSymbols(t *testing.T) {
	in, out := newInterpreter(t, nil)

	require.NoError(t, in.Run("test", `
(symbol-name :key)
(symbol-package :key)
(symbol-package #:loose)
(make-symbol "gensym")
(symbol-name foo)
(find-symbol "FOO")
(find-symbol "NOPE")`))

	assert.Equal(t, []string{
		`"KEY"`,
		"#<PACKAGE KEYWORD>",
		"NIL",
		"#:gensym",
		`"FOO"`,
		"USER::FOO", ":INTERNAL",
		"NIL", "NIL",
	}, lines(out))
}

func TestRunVisibilityOperators(t *testing.T) {
	in, out := newInterpreter(t, nil)

	require.NoError(t, in.Run("test", `
(make-package "U")
(export (u::x u::y) "U")
(make-package "P" :use ("U"))
(shadow ("X") "P")
(package-shadowing-symbols "P")
(find-symbol "Y" "P")
(unexport u:y "U")
(find-symbol "Y" "P")
(import u::y "P")
(find-symbol "Y" "P")
(shadowing-import #:z "P")
(package-hash-tables "U")
(unintern u::y "U")
(check)`))

	assert.Equal(t, []string{
		"#<PACKAGE U>",
		"T",
		"#<PACKAGE P>",
		"T",
		"(P::X)",
		"U:Y", ":INHERITED",
		"T",
		"NIL", "NIL",
		"T",
		"U::Y", ":INTERNAL",
		"T",
		"(U:X)", "(U::Y)", "(#<PACKAGE LISP>)",
		"T",
		"T",
	}, lines(out))
}

func TestRunLifecycle(t *testing.T) {
	in, out := newInterpreter(t, nil)

	require.NoError(t, in.Run("test", `
(make-package "A" :use ("LATER"))
(packages-in-waiting)
(make-package "LATER")
(packages-in-waiting)
(package-used-by-list "LATER")
(rename-package "A" "B" ("BB"))
(package-name "BB")
(close-package "B")
(package-closed-p "B")
(reopen-package "B")
(delete-package "B")
(find-package "B")
(package-name "B")`))

	assert.Equal(t, []string{
		"#<PACKAGE A>",
		`("LATER")`,
		"#<PACKAGE LATER>",
		"NIL",
		"(#<PACKAGE A>)",
		"#<PACKAGE B>",
		`"B"`,
		"#<PACKAGE B>",
		"T",
		"#<PACKAGE B>",
		"T",
		"NIL",
		"NIL",
	}, lines(out))
}

func TestRunUseAndUnuse(t *testing.T) {
	in, out := newInterpreter(t, nil)

	require.NoError(t, in.Run("test", `
(make-package "A" :use nil)
(make-package "B" :use nil)
(use-package ("A" "LISP") "B")
(package-use-list "B")
(unuse-package "A" "B")
(package-use-list "B")
(list-all-packages)`))

	assert.Equal(t, []string{
		"#<PACKAGE A>",
		"#<PACKAGE B>",
		"T",
		"(#<PACKAGE A> #<PACKAGE LISP>)",
		"T",
		"(#<PACKAGE LISP>)",
		"(#<PACKAGE KEYWORD> #<PACKAGE LISP> #<PACKAGE USER> #<PACKAGE A> #<PACKAGE B>)",
	}, lines(out))
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
		target  any
	}{
		{"unknown operator", "(frobnicate)", "test:1:1: unknown operator frobnicate", nil},
		{"arity", "(intern)", "wrong number of arguments", nil},
		{"keyword arguments", `(make-package "P" :nicknames)`, "odd number of keyword arguments", nil},
		{"unknown keyword", `(make-package "P" :colour 1)`, "unknown keyword argument :colour", nil},
		{"not a symbol", `(export "X")`, "is not a symbol", new(*lisperr.TypeError)},
		{"not external", `(make-package "P") (intern "X" "P") (export p:x "P")`, "test:1:37", new(*lisperr.NotAccessibleError)},
		{"no such package", `(in-package "NOWHERE")`, "NOWHERE", new(*lisperr.NotFoundError)},
		{"conflict", `(make-package "P") (intern "X" "P") (import #:x "P")`, "NameConflict", new(*lisperr.NameConflictError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, _ := newInterpreter(t, namespace.AbortHandler)
			err := in.Run("test", tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.target != nil {
				assert.ErrorAs(t, err, tt.target)
			}
		})
	}
}

func TestRunStopsAtFirstError(t *testing.T) {
	in, out := newInterpreter(t, nil)

	err := in.Run("test", `(make-package "A") (frobnicate) (make-package "B")`)
	require.Error(t, err)
	assert.Equal(t, []string{"#<PACKAGE A>"}, lines(out))

	p, err := in.reg.Find("B")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "NIL", Format(nil))
	assert.Equal(t, "NIL", Format(false))
	assert.Equal(t, "T", Format(true))
	assert.Equal(t, "7", Format(7))
	assert.Equal(t, `"x"`, Format("x"))
	assert.Equal(t, ":INHERITED", Format(namespace.Inherited))
	assert.Equal(t, "NIL", Format(namespace.None))
	assert.Equal(t, `(1 ("a") NIL)`, Format([]any{1, []any{"a"}, nil}))
	assert.Equal(t, "#:X\nT", Format(Values{namespace.MakeSymbol("X"), true}))
}

func TestIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{`(intern "X")`, false},
		{`(make-package "P"`, true},
		{`(intern "(")`, false},
		{`(intern "X`, true},
		{`(intern "a\"b")`, false},
		{"(intern ; (\n \"X\")", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Incomplete(tt.src), tt.src)
	}
}
