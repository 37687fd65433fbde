package resolver

import (
	"strconv"
	"strings"

	"raptodb/internal/object"
)

// formatValue renders a Field the way GET reports it: a bare integer, a
// decimal forced to show at least one fractional digit, or a quoted string.
func formatValue(f object.Field) string {
	switch f.Tag {
	case object.TagInteger:
		return strconv.FormatInt(f.Integer, 10)
	case object.TagDecimal:
		s := strconv.FormatFloat(f.Decimal, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case object.TagString:
		return `"` + string(f.Str) + `"`
	default:
		return ""
	}
}

// sizeReport computes the SIZE command's byte count: 56 plus the key
// length plus the value payload length (8 for integer/decimal, the string
// length otherwise). This is a coarser, larger figure than object.Size -
// spec.md §4.5 states it literally as "56 + key_len + (string_len or 8)",
// distinct from the snapshot/capacity accounting formula.
func sizeReport(key []byte, f object.Field) uint64 {
	const overhead = 56

	payload := uint64(8)
	if f.Tag == object.TagString {
		payload = uint64(len(f.Str))
	}

	return overhead + uint64(len(key)) + payload
}
