// internal/register/convert.go
package register

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Float64 converts the value to a backend numeric type.
// The policy is total and locked for interoperability:
//   - numeric variants widen without loss
//   - Float32 NaN maps to the sentinel -1.0
//   - booleans map to 1 (true) and 2 (false)
//   - opaque byte blobs map to 0.0
func (v Value) Float64() float64 {
	switch v.Kind {
	case KindU16, KindU32, KindU64, KindEnum16:
		return float64(v.Uint)
	case KindS16, KindS32, KindS64:
		return float64(v.Int)
	case KindFloat32:
		if math.IsNaN(float64(v.Real)) {
			return -1.0
		}
		return float64(v.Real)
	case KindBool:
		if v.Bit {
			return 1
		}
		return 2
	case KindBytes:
		return 0.0
	default:
		return 0.0
	}
}

// String converts the value to its display form.
// Booleans encode as "1" (true) and "2" (false).
// Byte blobs render as a lowercase hex debug string.
func (v Value) String() string {
	switch v.Kind {
	case KindU16, KindU32, KindU64, KindEnum16:
		return strconv.FormatUint(v.Uint, 10)
	case KindS16, KindS32, KindS64:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat32:
		return strconv.FormatFloat(float64(v.Real), 'g', -1, 32)
	case KindBool:
		if v.Bit {
			return "1"
		}
		return "2"
	case KindBytes:
		return hexDebug(v.Blob)
	default:
		return ""
	}
}

// Scalar converts the value to the closest backend-native scalar.
// Sinks that accept typed fields (InfluxDB) use this; sinks that only
// accept floats use Float64.
func (v Value) Scalar() interface{} {
	switch v.Kind {
	case KindU16, KindU32, KindU64, KindEnum16:
		return v.Uint
	case KindS16, KindS32, KindS64:
		return v.Int
	case KindFloat32:
		if math.IsNaN(float64(v.Real)) {
			return -1.0
		}
		return float64(v.Real)
	case KindBool:
		return v.Bit
	case KindBytes:
		return hexDebug(v.Blob)
	default:
		return nil
	}
}

func hexDebug(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%x", c)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
