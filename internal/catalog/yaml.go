package catalog

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rutaguard/rutaguard/internal/rules"
)

// Parse decodes a YAML catalogue document. Unknown keys are rejected so a
// typo in a rule file surfaces at load time instead of silently producing
// an always-true condition.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("could not decode catalogue: %w", err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported catalogue version %d", f.Version)
	}
	return &f, nil
}

// Load reads a YAML catalogue from disk and builds a validated registry.
func Load(path string) (*rules.Registry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open catalogue %q: %w", path, err)
	}
	defer fh.Close()

	f, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("catalogue %q: %w", path, err)
	}
	return f.Registry()
}
