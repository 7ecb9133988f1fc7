package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "acme.conf")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestValidateCommandValidDocument(t *testing.T) {
	path := writeDoc(t, "[ui]\ntheme = \"dark\"\n")

	var out bytes.Buffer
	err := runValidate(&out, []string{"-file", path})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "is valid")
}

func TestValidateCommandInvalidDocument(t *testing.T) {
	path := writeDoc(t, "[ui]\ntheme = \"purple\"\n")

	var out bytes.Buffer
	err := runValidate(&out, []string{"-file", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation errors")
	assert.Contains(t, out.String(), "line 2")
}

func TestValidateCommandPrintsWarnings(t *testing.T) {
	path := writeDoc(t, "[ui]\nfont = \"comic sans\"\n")

	var out bytes.Buffer
	err := runValidate(&out, []string{"-file", path})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "warning")
}

func TestValidateCommandRequiresFile(t *testing.T) {
	var out bytes.Buffer
	err := runValidate(&out, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-file is required")
}

func TestValidateCommandMissingFile(t *testing.T) {
	var out bytes.Buffer
	err := runValidate(&out, []string{"-file", "/nonexistent/acme.conf"})
	require.Error(t, err)
}
