// internal/device/modbus/defs.go
package modbus

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	gojson "github.com/goccy/go-json"

	"github.com/tamzrod/telemetry-bridge/internal/register"
)

// Def describes one named register in a definition table.
type Def struct {
	Address uint16 `json:"address"`
	Type    string `json:"type"`
	Length  uint16 `json:"length,omitempty"` // word count, "bytes" type only
}

// DefTable maps register name to its definition.
type DefTable map[string]Def

// LoadDefs reads a register definition table from a JSON file.
func LoadDefs(path string) (DefTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("modbus defs: %w", err)
	}
	var defs DefTable
	if err := gojson.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("modbus defs %s: %w", path, err)
	}
	for name, d := range defs {
		if _, err := d.wordCount(); err != nil {
			return nil, fmt.Errorf("modbus defs %s: register %q: %w", path, name, err)
		}
	}
	return defs, nil
}

// wordCount returns how many 16-bit registers the definition spans.
func (d Def) wordCount() (uint16, error) {
	switch d.Type {
	case "u16", "s16", "bool", "enum16":
		return 1, nil
	case "u32", "s32", "f32":
		return 2, nil
	case "u64", "s64":
		return 4, nil
	case "bytes":
		if d.Length == 0 {
			return 0, fmt.Errorf("bytes register needs a length")
		}
		return d.Length, nil
	default:
		return 0, fmt.Errorf("unknown register type %q", d.Type)
	}
}

// decode converts the big-endian payload of one read into a Value.
// Word order is big-endian across registers, matching the wire order
// Modbus delivers multi-register quantities in.
func (d Def) decode(raw []byte) (register.Value, error) {
	words, err := d.wordCount()
	if err != nil {
		return register.Value{}, err
	}
	if len(raw) < int(words)*2 {
		return register.Value{}, fmt.Errorf("short payload: got %d bytes, want %d", len(raw), words*2)
	}

	switch d.Type {
	case "u16":
		return register.U16(binary.BigEndian.Uint16(raw)), nil
	case "s16":
		return register.S16(int16(binary.BigEndian.Uint16(raw))), nil
	case "enum16":
		return register.Enum16(binary.BigEndian.Uint16(raw)), nil
	case "bool":
		return register.Bool(binary.BigEndian.Uint16(raw) != 0), nil
	case "u32":
		return register.U32(binary.BigEndian.Uint32(raw)), nil
	case "s32":
		return register.S32(int32(binary.BigEndian.Uint32(raw))), nil
	case "f32":
		return register.Float32(math.Float32frombits(binary.BigEndian.Uint32(raw))), nil
	case "u64":
		return register.U64(binary.BigEndian.Uint64(raw)), nil
	case "s64":
		return register.S64(int64(binary.BigEndian.Uint64(raw))), nil
	case "bytes":
		blob := make([]byte, int(words)*2)
		copy(blob, raw)
		return register.Bytes(blob), nil
	default:
		return register.Value{}, fmt.Errorf("unknown register type %q", d.Type)
	}
}
