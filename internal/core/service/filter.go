package service

import "strings"

// DefaultExcludingPatterns match the leftovers of merge tools.
var DefaultExcludingPatterns = []string{"_BASE_", "_REMOTE_", "_LOCAL_", "_BACKUP_"}

// FileFilter decides which file modifications count towards a service.
type FileFilter struct {
	extensions map[string]struct{}
	including  []string
	excluding  []string
}

// NewFileFilter builds a filter. An empty extension list admits every
// extension. When including is non-empty a filename must contain one of its
// substrings; it must contain none of excluding or the default patterns.
func NewFileFilter(extensions, including, excluding []string) FileFilter {
	f := FileFilter{
		including: including,
		excluding: append(append([]string{}, DefaultExcludingPatterns...), excluding...),
	}
	if len(extensions) > 0 {
		f.extensions = make(map[string]struct{}, len(extensions))
		for _, ext := range extensions {
			f.extensions[strings.TrimPrefix(ext, ".")] = struct{}{}
		}
	}
	return f
}

func (f FileFilter) Allow(filename string) bool {
	if f.extensions != nil {
		if _, ok := f.extensions[extension(filename)]; !ok {
			return false
		}
	}

	for _, pattern := range f.excluding {
		if strings.Contains(filename, pattern) {
			return false
		}
	}

	if len(f.including) == 0 {
		return true
	}
	for _, pattern := range f.including {
		if strings.Contains(filename, pattern) {
			return true
		}
	}
	return false
}

// extension is the text after the last dot, or the whole name without one.
func extension(filename string) string {
	return filename[strings.LastIndex(filename, ".")+1:]
}
