package attribute

import (
	"fmt"
	"strings"
)

// Format is the value shape of an attribute.
type Format int

const (
	Undefined Format = iota
	Long
	Double
	String
	LongArray
	DoubleArray
)

var formatNames = [...]string{
	Undefined:   "undefined",
	Long:        "long",
	Double:      "double",
	String:      "string",
	LongArray:   "long_array",
	DoubleArray: "double_array",
}

// IsArray reports whether f is one of the array formats.
func (f Format) IsArray() bool {
	return f == LongArray || f == DoubleArray
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// ParseFormat is the inverse of Format.String. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(f), nil
		}
	}
	return Undefined, fmt.Errorf("unknown attribute format %q", s)
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
