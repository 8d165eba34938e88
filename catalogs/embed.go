// Package catalogs embeds the default incidence catalogue so the binary
// validates dispatch sheets without any external rule file.
package catalogs

import (
	"bytes"
	_ "embed"

	"github.com/rutaguard/rutaguard/internal/catalog"
	"github.com/rutaguard/rutaguard/internal/rules"
)

//go:embed incidencias.yaml
var incidencias []byte

// Default parses the embedded incidence catalogue into a validated registry.
func Default() (*rules.Registry, error) {
	f, err := catalog.Parse(bytes.NewReader(incidencias))
	if err != nil {
		return nil, err
	}
	return f.Registry()
}

// DefaultFile returns the embedded catalogue document, for import into a
// catalogue database.
func DefaultFile() (*catalog.File, error) {
	return catalog.Parse(bytes.NewReader(incidencias))
}
