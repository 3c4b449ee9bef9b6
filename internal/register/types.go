// internal/register/types.go
package register

// Kind identifies the shape a register value holds.
type Kind uint8

const (
	KindU16 Kind = iota
	KindU32
	KindU64
	KindS16
	KindS32
	KindS64
	KindFloat32
	KindBool
	KindBytes
	KindEnum16
)

// Value is the uniform representation of one device register.
// Exactly one payload field is meaningful, selected by Kind.
// A Value is immutable once produced.
type Value struct {
	Kind Kind

	Uint uint64  // KindU16, KindU32, KindU64, KindEnum16
	Int  int64   // KindS16, KindS32, KindS64
	Real float32 // KindFloat32; NaN means "unavailable"
	Bit  bool    // KindBool
	Blob []byte  // KindBytes
}

// ---- constructors ----

func U16(v uint16) Value      { return Value{Kind: KindU16, Uint: uint64(v)} }
func U32(v uint32) Value      { return Value{Kind: KindU32, Uint: uint64(v)} }
func U64(v uint64) Value      { return Value{Kind: KindU64, Uint: v} }
func S16(v int16) Value       { return Value{Kind: KindS16, Int: int64(v)} }
func S32(v int32) Value       { return Value{Kind: KindS32, Int: int64(v)} }
func S64(v int64) Value       { return Value{Kind: KindS64, Int: v} }
func Float32(v float32) Value { return Value{Kind: KindFloat32, Real: v} }
func Bool(v bool) Value       { return Value{Kind: KindBool, Bit: v} }
func Bytes(v []byte) Value    { return Value{Kind: KindBytes, Blob: v} }
func Enum16(v uint16) Value   { return Value{Kind: KindEnum16, Uint: uint64(v)} }
