// Package difftool counts line-level differences between two revisions of
// a file using difflib's sequence matcher.
package difftool

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Tool implements the file based counting used by the repair pass.
type Tool struct{}

func New() *Tool {
	return &Tool{}
}

// DiffFiles returns how many lines newer adds and removes relative to older.
func (t *Tool) DiffFiles(olderPath, newerPath string) (added, removed int, err error) {
	older, err := os.ReadFile(olderPath)
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", olderPath, err)
	}
	newer, err := os.ReadFile(newerPath)
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", newerPath, err)
	}

	added, removed = DiffLines(splitLines(string(older)), splitLines(string(newer)))
	return added, removed, nil
}

// CountLines counts lines the way a line reader does: a trailing fragment
// without a newline is a line.
func (t *Tool) CountLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return countLines(data), nil
}

func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte("\n"))
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}

// DiffLines counts inserted and deleted lines from the matcher opcodes. A
// replace block counts on both sides.
func DiffLines(a, b []string) (added, removed int) {
	m := difflib.NewMatcher(a, b)
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'i':
			added += op.J2 - op.J1
		case 'd':
			removed += op.I2 - op.I1
		case 'r':
			removed += op.I2 - op.I1
			added += op.J2 - op.J1
		}
	}
	return added, removed
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
