// internal/device/s7/defs.go
package s7

import (
	"fmt"
	"os"

	gojson "github.com/goccy/go-json"
)

// LoadDefs reads a data-block definition table from a JSON file.
func LoadDefs(path string) (DefTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("s7 defs: %w", err)
	}
	var defs DefTable
	if err := gojson.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("s7 defs %s: %w", path, err)
	}
	for name, d := range defs {
		if _, err := d.byteCount(); err != nil {
			return nil, fmt.Errorf("s7 defs %s: register %q: %w", path, name, err)
		}
	}
	return defs, nil
}
