package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFilename(t *testing.T) {
	name, err := readFilename(strings.NewReader("access_log_Jul95.txt\r\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "access_log_Jul95.txt", name)

	name, err = readFilename(strings.NewReader(" spaced name.txt \n"))
	require.NoError(t, err)
	assert.Equal(t, " spaced name.txt ", name, "surrounding spaces belong to the name")

	_, err = readFilename(strings.NewReader(""))
	assert.Error(t, err)

	_, err = readFilename(strings.NewReader("\n"))
	assert.Error(t, err)
}

func TestResolveInputs(t *testing.T) {
	files, err := resolveInputs(nil, strings.NewReader("from_stdin.txt\n"), "gifs_")
	require.NoError(t, err)
	assert.Equal(t, []string{"from_stdin.txt"}, files)

	files, err = resolveInputs([]string{"a.txt", "./a.txt", "logs/b.txt", "logs//b.txt", " "}, strings.NewReader("unused"), "gifs_")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "logs/b.txt"}, files)

	_, err = resolveInputs([]string{""}, strings.NewReader(""), "gifs_")
	assert.Error(t, err)
}

func TestResolveInputsCollapsesAbsoluteTwin(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0644))

	files, err := resolveInputs([]string{"a.txt", filepath.Join(dir, "a.txt")}, strings.NewReader(""), "gifs_")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, files)
}

func TestResolveInputsCollapsesSymlink(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	require.NoError(t, os.Mkdir(real, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(real, "a.txt"), nil, 0644))
	link := filepath.Join(dir, "link")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	files, err := resolveInputs([]string{filepath.Join(real, "a.txt"), filepath.Join(link, "a.txt")}, strings.NewReader(""), "gifs_")
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestResolveInputsRejectsOutputOfAnotherInput(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	for _, args := range [][]string{
		{"a.txt", "gifs_a.txt"},
		{"gifs_a.txt", "a.txt"},
		{"a.txt", filepath.Join(dir, "gifs_a.txt")},
	} {
		_, err := resolveInputs(args, strings.NewReader(""), "gifs_")
		assert.Error(t, err, "args %v", args)
	}

	files, err := resolveInputs([]string{"a.txt", "gifs_a.txt"}, strings.NewReader(""), "png_")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
