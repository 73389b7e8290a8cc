package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/lispkg/internal/namespace"
)

func writeScript(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestSessionRunFiles(t *testing.T) {
	dir := t.TempDir()
	base := writeScript(t, dir, "base.lisp", `(make-package "BASE") (export base::x "BASE")`)
	app := writeScript(t, dir, "app.lisp", `(make-package "APP" :use ("BASE")) (find-symbol "X" "APP")`)

	var out bytes.Buffer
	s, err := newSession(&out)
	require.NoError(t, err)
	require.NoError(t, s.runFiles([]string{base, app}))

	assert.Equal(t, "#<PACKAGE BASE>\nT\n#<PACKAGE APP>\nBASE:X\n:INHERITED\n", out.String())
	assert.NoError(t, s.reg.Check())
}

func TestSessionRunParallel(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for i := range 8 {
		files = append(files, writeScript(t, dir, fmt.Sprintf("p%d.lisp", i), fmt.Sprintf(`
(make-package "SHARED")
(make-package "P%d" :use ("SHARED"))
(export shared::s%d "SHARED")
(find-symbol "S%d" "P%d")`, i, i, i, i)))
	}

	var out bytes.Buffer
	s, err := newSession(&out)
	require.NoError(t, err)
	require.NoError(t, s.runParallel(files))

	shared, err := s.reg.Find("SHARED")
	require.NoError(t, err)
	assert.Len(t, shared.ExternalSymbols(), 8)
	assert.Len(t, shared.UsedByList(), 8)
	assert.Contains(t, out.String(), "SHARED:S7\n:INHERITED\n")
	assert.NoError(t, s.reg.Check())
}

func TestSessionRunFilesStopsAtError(t *testing.T) {
	dir := t.TempDir()
	bad := writeScript(t, dir, "bad.lisp", `(in-package "NOWHERE")`)

	s, err := newSession(&bytes.Buffer{})
	require.NoError(t, err)
	err = s.runFiles([]string{bad, filepath.Join(dir, "missing.lisp")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.lisp:1:1")
}

func TestSnapshotEncoding(t *testing.T) {
	dir := t.TempDir()
	src := writeScript(t, dir, "s.lisp", `(make-package "APP" :nicknames ("A")) (intern "MAIN" "APP")`)

	s, err := newSession(&bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, s.runFiles([]string{src}))

	data, err := toml.Marshal(s.reg.Snapshot())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[[package]]")

	var decoded namespace.Snapshot
	require.NoError(t, toml.Unmarshal(data, &decoded))
	require.Len(t, decoded.Packages, 4)
	assert.Equal(t, "APP", decoded.Packages[3].Name)
	assert.Equal(t, []string{"A"}, decoded.Packages[3].Nicknames)
	assert.Equal(t, []string{"MAIN"}, decoded.Packages[3].Internal)
}
