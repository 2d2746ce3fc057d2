package sql

import (
	"fmt"
	"strings"
	"time"
)

// DataType represents the logical type of a value in a column.
type DataType int

const (
	TypeNull DataType = iota
	TypeInt
	TypeFloat
	TypeString
	TypeBool
	TypeTime
)

func (t DataType) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeFloat:
		return "FLOAT"
	case TypeString:
		return "STRING"
	case TypeBool:
		return "BOOL"
	case TypeTime:
		return "TIME"
	default:
		return "NULL"
	}
}

// ParseDataType maps a type name (case-insensitive, with the common aliases
// integer, text, boolean and timestamp) to a DataType.
func ParseDataType(s string) (DataType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INT", "INTEGER":
		return TypeInt, nil
	case "FLOAT", "REAL", "DOUBLE":
		return TypeFloat, nil
	case "STRING", "TEXT":
		return TypeString, nil
	case "BOOL", "BOOLEAN":
		return TypeBool, nil
	case "TIME", "TIMESTAMP":
		return TypeTime, nil
	}
	return TypeNull, fmt.Errorf("unknown column type %q", s)
}

// Coerce converts v to type t where the conversion is lossless: int to
// float, and RFC 3339 strings to time. NULL is kept as is.
func Coerce(v Value, t DataType) (Value, error) {
	if v.Type == t || v.Type == TypeNull {
		return v, nil
	}
	switch {
	case v.Type == TypeInt && t == TypeFloat:
		return Float(float64(v.I64)), nil
	case v.Type == TypeString && t == TypeTime:
		ts, err := time.Parse(time.RFC3339, v.S)
		if err != nil {
			return Value{}, err
		}
		return Time(ts), nil
	}
	return Value{}, fmt.Errorf("cannot use %v as %v", v.Type, t)
}

// Value represents a single cell in a table (one column in one row).
// Only the field matching Type should be read; other fields remain at their
// zero values to keep the struct compact and easy to inspect while debugging.
type Value struct {
	Type DataType

	I64 int64     // for TypeInt
	F64 float64   // for TypeFloat
	S   string    // for TypeString
	B   bool      // for TypeBool
	T   time.Time // for TypeTime
}

// Row represents one record in a table: a slice of Values, one per column.
type Row []Value

// Column describes metadata for a single column in a table.
type Column struct {
	Name string
	Type DataType
}

// Int, Float, String, Bool and Time build typed values.
func Int(i int64) Value      { return Value{Type: TypeInt, I64: i} }
func Float(f float64) Value  { return Value{Type: TypeFloat, F64: f} }
func String(s string) Value  { return Value{Type: TypeString, S: s} }
func Bool(b bool) Value      { return Value{Type: TypeBool, B: b} }
func Time(t time.Time) Value { return Value{Type: TypeTime, T: t} }
func Null() Value            { return Value{} }
