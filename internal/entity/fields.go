package entity

import (
	"strconv"

	"github.com/joseph-ayodele/docextract/constants"
)

type valueKind uint8

const (
	kindString valueKind = iota + 1
	kindNumber
)

// RawValue is an untyped scalar produced by extraction: either a string or a float.
// The zero value is not a valid value; absent fields are simply missing from a RawFieldMap.
type RawValue struct {
	kind valueKind
	s    string
	f    float64
}

func StringValue(s string) RawValue  { return RawValue{kind: kindString, s: s} }
func NumberValue(f float64) RawValue { return RawValue{kind: kindNumber, f: f} }

// Str returns the string payload; ok is false for numbers.
func (v RawValue) Str() (string, bool) { return v.s, v.kind == kindString }

// Num returns the numeric payload; ok is false for strings.
func (v RawValue) Num() (float64, bool) { return v.f, v.kind == kindNumber }

// String renders numbers with the shortest exact decimal (952 for 952.0).
func (v RawValue) String() string {
	switch v.kind {
	case kindString:
		return v.s
	case kindNumber:
		return FormatAmount(v.f)
	default:
		return ""
	}
}

// RawFieldMap is the extractor's output: one entry per field that was found.
type RawFieldMap map[constants.Field]RawValue

// FormatAmount is the canonical text form of an amount used in messages and fingerprints.
func FormatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
