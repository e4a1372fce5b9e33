package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Category groups related error classes.
type Category struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Classes     []string `yaml:"classes"`
}

// Taxonomy is the set of error classes a classifier may answer with.
type Taxonomy struct {
	Name       string     `yaml:"name"`
	Categories []Category `yaml:"categories"`

	index map[string]string
}

// Parse decodes a YAML taxonomy. Class names must be unique ignoring case.
func Parse(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse taxonomy yaml: %w", err)
	}
	if err := t.build(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Load reads a YAML taxonomy from fs.
func Load(fs afero.Fs, path string) (*Taxonomy, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in clinical information extraction taxonomy.
func Default() *Taxonomy {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy is invalid: %v", err))
	}
	return t
}

func (t *Taxonomy) build() error {
	t.index = make(map[string]string)
	for _, c := range t.Categories {
		for _, class := range c.Classes {
			key := normalize(class)
			if key == "" {
				return errors.New("taxonomy contains an empty class name")
			}
			if _, dup := t.index[key]; dup {
				return fmt.Errorf("duplicate class %q in taxonomy", class)
			}
			t.index[key] = c.Name
		}
	}
	if len(t.index) == 0 {
		return errors.New("taxonomy defines no classes")
	}
	return nil
}

// Labels returns every class name in declaration order.
func (t *Taxonomy) Labels() []string {
	var out []string
	for _, c := range t.Categories {
		out = append(out, c.Classes...)
	}
	return out
}

// Contains reports whether label names a class, ignoring case and surrounding space.
func (t *Taxonomy) Contains(label string) bool {
	_, ok := t.index[normalize(label)]
	return ok
}

// CategoryOf returns the category holding label.
func (t *Taxonomy) CategoryOf(label string) (string, bool) {
	c, ok := t.index[normalize(label)]
	return c, ok
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
