package sql

import (
	"cmp"
	"fmt"
	"strconv"
	"time"
)

// Text renders v the way a CAST(... AS <text type>) would: the form used for
// substring search over non-text columns. NULL renders as "".
func (v Value) Text() string {
	switch v.Type {
	case TypeInt:
		return strconv.FormatInt(v.I64, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.F64, 'f', -1, 64)
	case TypeString:
		return v.S
	case TypeBool:
		if v.B {
			return "true"
		}
		return "false"
	case TypeTime:
		return v.T.Format(time.RFC3339)
	default:
		return ""
	}
}

// Interface returns the Go value to serialize for v, nil for NULL.
func (v Value) Interface() any {
	switch v.Type {
	case TypeInt:
		return v.I64
	case TypeFloat:
		return v.F64
	case TypeString:
		return v.S
	case TypeBool:
		return v.B
	case TypeTime:
		return v.T
	default:
		return nil
	}
}

// FromAny converts a driver or decoded value into a Value.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint32:
		return Int(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return String(t), nil
	case []byte:
		return String(string(t)), nil
	case bool:
		return Bool(t), nil
	case time.Time:
		return Time(t), nil
	case fmt.Stringer:
		return String(t.String()), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", x)
	}
}

// Compare orders two values. NULL sorts before everything else; ints and
// floats compare numerically; otherwise differing types compare by type and
// equal types by their natural order.
func Compare(a, b Value) int {
	if a.Type == TypeNull || b.Type == TypeNull {
		return cmp.Compare(nullRank(a), nullRank(b))
	}
	if isNumeric(a) && isNumeric(b) {
		if a.Type == TypeInt && b.Type == TypeInt {
			return cmp.Compare(a.I64, b.I64)
		}
		return cmp.Compare(asFloat(a), asFloat(b))
	}
	if a.Type != b.Type {
		return cmp.Compare(a.Type, b.Type)
	}
	switch a.Type {
	case TypeString:
		return cmp.Compare(a.S, b.S)
	case TypeBool:
		return cmp.Compare(boolRank(a.B), boolRank(b.B))
	case TypeTime:
		return a.T.Compare(b.T)
	}
	return 0
}

func nullRank(v Value) int {
	if v.Type == TypeNull {
		return 0
	}
	return 1
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isNumeric(v Value) bool { return v.Type == TypeInt || v.Type == TypeFloat }

func asFloat(v Value) float64 {
	if v.Type == TypeInt {
		return float64(v.I64)
	}
	return v.F64
}
