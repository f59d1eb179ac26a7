package dedup

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_file.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func sortedLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.SplitAfter(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	sort.Strings(lines)
	return lines
}

func TestRemoveDuplicates(t *testing.T) {
	path := writeFile(t, `livevideo.GIF
livevideo.GIF
count.gif
NASA-logosmall.gif
KSC-logosmall.gif
count.gif
count.GIF
NASA-logosmall.gif
NASA-logosmall.gif
sahara.gif
`)

	stats, err := RemoveDuplicates(path)
	require.NoError(t, err)
	assert.Equal(t, Stats{Before: 10, After: 6}, stats)

	want := []string{
		"KSC-logosmall.gif\n",
		"NASA-logosmall.gif\n",
		"count.GIF\n",
		"count.gif\n",
		"livevideo.GIF\n",
		"sahara.gif\n",
	}
	assert.Equal(t, want, sortedLines(t, path))
}

func TestRemoveDuplicatesSmallSet(t *testing.T) {
	path := writeFile(t, "A\nA\nB\nC\nB\n")

	stats, err := RemoveDuplicates(path)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.After)
	assert.Equal(t, []string{"A\n", "B\n", "C\n"}, sortedLines(t, path))
}

func TestRemoveDuplicatesIdempotent(t *testing.T) {
	path := writeFile(t, "x\ny\nx\nz\ny\n")

	_, err := RemoveDuplicates(path)
	require.NoError(t, err)
	first := sortedLines(t, path)

	stats, err := RemoveDuplicates(path)
	require.NoError(t, err)
	assert.Equal(t, first, sortedLines(t, path))
	assert.Equal(t, stats.Before, stats.After)
}

func TestRemoveDuplicatesMissingTrailingNewline(t *testing.T) {
	path := writeFile(t, "a.gif\nb.gif\na.gif")

	stats, err := RemoveDuplicates(path)
	require.NoError(t, err)
	// "a.gif" without a newline does not merge with "a.gif\n".
	assert.Equal(t, 3, stats.After)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, len("a.gif\nb.gif\na.gif"))
}

func TestRemoveDuplicatesEmptyFile(t *testing.T) {
	path := writeFile(t, "")

	stats, err := RemoveDuplicates(path)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestRemoveDuplicatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.txt")

	_, err := RemoveDuplicates(path)
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "a missing file must not be created")
}
