package difftool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDiffLines(t *testing.T) {
	tests := []struct {
		name          string
		a, b          []string
		added, remove int
	}{
		{"identical", []string{"x\n", "y\n"}, []string{"x\n", "y\n"}, 0, 0},
		{"append", []string{"x\n"}, []string{"x\n", "y\n", "z\n"}, 2, 0},
		{"delete", []string{"x\n", "y\n", "z\n"}, []string{"x\n"}, 0, 2},
		{"replace", []string{"x\n", "y\n", "z\n"}, []string{"x\n", "Y\n", "z\n"}, 1, 1},
		{"from empty", nil, []string{"a\n", "b\n"}, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, removed := DiffLines(tt.a, tt.b)
			assert.Equal(t, tt.added, added)
			assert.Equal(t, tt.remove, removed)
		})
	}
}

func TestDiffFiles(t *testing.T) {
	dir := t.TempDir()
	older := write(t, dir, "old.py", "import os\n\ndef main():\n    pass\n")
	newer := write(t, dir, "new.py", "import os\nimport sys\n\ndef main():\n    run()\n")

	added, removed, err := New().DiffFiles(older, newer)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, removed)

	_, _, err = New().DiffFiles(filepath.Join(dir, "missing"), newer)
	assert.Error(t, err)
}

func TestCountLines(t *testing.T) {
	dir := t.TempDir()
	tool := New()

	for content, want := range map[string]int{
		"":            0,
		"one":         1,
		"one\n":       1,
		"one\ntwo":    2,
		"a\nb\nc\n\n": 4,
	} {
		n, err := tool.CountLines(write(t, dir, "f.txt", content))
		require.NoError(t, err)
		assert.Equal(t, want, n, "%q", content)
	}
}
