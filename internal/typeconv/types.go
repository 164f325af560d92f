package typeconv

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Normalize converts driver-specific scan results into plain Go values.
// Text columns come back from several drivers as []byte; they are copied
// into strings so rows stay valid after the cursor moves on.
func Normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	default:
		return v
	}
}

// ToInt64 casts an identity value to int64. SQL Server returns
// SCOPE_IDENTITY() as a numeric, which arrives as []byte or string.
func ToInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("identity %d overflows int64", x)
		}
		return int64(x), nil
	case float64:
		return int64(x), nil
	case []byte:
		return parseInt(string(x))
	case string:
		return parseInt(x)
	default:
		return 0, fmt.Errorf("cannot convert %T to int64", v)
	}
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	// numeric(38,0) may be rendered with a fractional part
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse identity %q: %w", s, err)
	}
	return n, nil
}

// Literal renders a value the way it appears when interpolated into SQL text.
func Literal(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		if x {
			return "1"
		}
		return ""
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}
