// Package dtype describes the logical element type of an array.
package dtype

import "fmt"

// DType identifies the logical dtype of an array: the physical element kind,
// its byte width, and any attached metadata such as a timezone or unit.
// Two arrays are concat-compatible only when their DTypes are equal,
// metadata included.
type DType struct {
	Name  string // logical family name, e.g. "timestamp", "codes", "float64"
	Width int    // physical element width in bytes
	Meta  string // attached metadata, e.g. "ns,UTC" for timestamps; empty if none
}

// Equal reports whether two dtypes are identical, including metadata
func (d DType) Equal(other DType) bool {
	return d == other
}

// String renders the dtype for diagnostics, e.g. "timestamp[ns,UTC]"
func (d DType) String() string {
	if d.Meta != "" {
		return fmt.Sprintf("%s[%s]", d.Name, d.Meta)
	}
	return d.Name
}

// Common dtype constructors

// Timestamp returns the dtype of a 64-bit timestamp family with the given unit and tz
func Timestamp(unit, tz string) DType {
	meta := unit
	if tz != "" {
		meta = unit + "," + tz
	}
	return DType{Name: "timestamp", Width: 8, Meta: meta}
}

// Codes returns the dtype of an enumerated-code family of the given byte width
func Codes(width int) DType {
	return DType{Name: fmt.Sprintf("int%d", width*8), Width: width, Meta: "codes"}
}

// Float64 returns the dtype of the 64-bit float family
func Float64() DType {
	return DType{Name: "float64", Width: 8}
}

// Int64 returns the dtype of the plain 64-bit integer family
func Int64() DType {
	return DType{Name: "int64", Width: 8}
}
