package locators

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Table is the locator set for one page, keyed by locator name.
type Table struct {
	Page    string
	entries map[string]Locator
}

// NewTable builds a table from statically declared entries.
func NewTable(page string, entries ...Locator) *Table {
	t := &Table{Page: page, entries: make(map[string]Locator, len(entries))}
	for _, e := range entries {
		t.entries[e.Name] = e
	}
	return t
}

// Get returns the named locator.
func (t *Table) Get(name string) (Locator, error) {
	l, ok := t.entries[name]
	if !ok {
		return Locator{}, fmt.Errorf("page %q has no locator %q", t.Page, name)
	}
	return l, nil
}

// Resolve looks up and normalizes the named locator in one step.
func (t *Table) Resolve(name string) (Normalized, error) {
	l, err := t.Get(name)
	if err != nil {
		return Normalized{}, err
	}
	return l.Normalize()
}

// overrideFile is the YAML shape of one per-page override file.
type overrideFile struct {
	Page     string    `yaml:"page"`
	Locators []Locator `yaml:"locators"`
}

// ApplyOverrides loads <dir>/<page>.yaml, if present, and replaces or adds the
// locators it declares. Missing file is not an error; a malformed file is.
// Overrides exist so selector churn in the target org can be absorbed without
// a rebuild.
func (t *Table) ApplyOverrides(dir string) error {
	if dir == "" {
		return nil
	}

	path := filepath.Join(dir, t.Page+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read locator overrides %s: %w", path, err)
	}

	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse locator overrides %s: %w", path, err)
	}

	for _, l := range file.Locators {
		if _, err := l.Normalize(); err != nil {
			return fmt.Errorf("invalid override in %s: %w", path, err)
		}
		t.entries[l.Name] = l
	}

	return nil
}
