package service

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"gopkg.in/yaml.v3"
)

var languageExtensions = map[string][]string{
	"c":          {"c", "h"},
	"c++":        {"cpp", "cc", "cxx", "hpp", "h"},
	"c#":         {"cs"},
	"go":         {"go"},
	"java":       {"java"},
	"javascript": {"js", "jsx", "mjs"},
	"kotlin":     {"kt"},
	"php":        {"php"},
	"python":     {"py"},
	"ruby":       {"rb"},
	"rust":       {"rs"},
	"scala":      {"scala"},
	"shell":      {"sh"},
	"typescript": {"ts", "tsx"},
}

type RepositoryTarget struct {
	Name       string   `yaml:"name" json:"name"`
	StartDate  string   `yaml:"start_date" json:"start_date"`
	EndDate    string   `yaml:"end_date" json:"end_date"`
	InitialLOC *int     `yaml:"initial_loc" json:"initial_loc"`
	Including  []string `yaml:"including" json:"including"`
	Excluding  []string `yaml:"excluding" json:"excluding"`
}

// ServiceTarget describes a service to mine and the repositories it is made of.
type ServiceTarget struct {
	Name         string             `yaml:"name" json:"name"`
	StartDate    string             `yaml:"start_date" json:"start_date"`
	EndDate      string             `yaml:"end_date" json:"end_date"`
	Languages    []string           `yaml:"languages" json:"languages"`
	Extensions   []string           `yaml:"extensions" json:"extensions"`
	Repositories []RepositoryTarget `yaml:"repositories" json:"repositories"`
}

type targetsFile struct {
	Services []ServiceTarget `yaml:"services"`
}

// LoadTargets reads a YAML (or JSON) targets file.
func LoadTargets(path string) ([]ServiceTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}

	var f targetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse targets %s: %w", path, err)
	}
	for _, t := range f.Services {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Services, nil
}

func (t ServiceTarget) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("target without service name")
	}
	if _, err := ParseDate(t.StartDate); err != nil {
		return fmt.Errorf("service %s: %w", t.Name, err)
	}
	if _, err := ParseDate(t.EndDate); err != nil {
		return fmt.Errorf("service %s: %w", t.Name, err)
	}
	for _, r := range t.Repositories {
		if _, _, err := entities.ParseFullName(r.Name); err != nil {
			return fmt.Errorf("service %s repository %q: %w", t.Name, r.Name, err)
		}
		if _, err := ParseDate(r.StartDate); err != nil {
			return fmt.Errorf("repository %s: %w", r.Name, err)
		}
		if _, err := ParseDate(r.EndDate); err != nil {
			return fmt.Errorf("repository %s: %w", r.Name, err)
		}
	}
	return nil
}

// ResolvedExtensions merges explicit extensions with those of the listed
// languages, without duplicates.
func (t ServiceTarget) ResolvedExtensions() []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(ext string) {
		ext = strings.TrimPrefix(ext, ".")
		if _, ok := seen[ext]; ok || ext == "" {
			return
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}

	for _, ext := range t.Extensions {
		add(ext)
	}
	for _, lang := range t.Languages {
		for _, ext := range languageExtensions[strings.ToLower(lang)] {
			add(ext)
		}
	}
	return out
}

// ParseDate accepts YYYY-MM-DD or RFC 3339. An empty string is no date.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			u := t.UTC()
			return &u, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
}
