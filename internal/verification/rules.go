package verification

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"deedgate/internal/records/models"
	strs "deedgate/pkg/string"
)

var decimalLiteral = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// CoerceNumber converts a form value to a number with the same rules browsers apply to
// Number(value): surrounding whitespace is ignored, the empty string is 0, decimal and
// exponent forms parse, 0x/0o/0b prefixes denote unsigned integers, and "Infinity" may be
// signed. Anything else is NaN.
func CoerceNumber(value string) float64 {
	s := strs.TrimSpace(value)
	if s == "" {
		return 0
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		if base := radixFor(s[1]); base != 0 {
			return parseRadix(s[2:], base)
		}
	}

	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	// Out-of-range literals come back as ±Inf or 0, which is what Number() yields.
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func radixFor(prefix byte) int {
	switch prefix {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	}
	return 0
}

func parseRadix(digits string, base int) float64 {
	for _, r := range digits {
		if !isDigitIn(r, base) {
			return math.NaN()
		}
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return math.NaN()
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f
}

func isDigitIn(r rune, base int) bool {
	switch {
	case r >= '0' && r <= '9':
		return int(r-'0') < base
	case r >= 'a' && r <= 'f':
		return base == 16
	case r >= 'A' && r <= 'F':
		return base == 16
	}
	return false
}

// NumberOrZero is CoerceNumber with NaN and infinities mapped to 0, used for display fields.
func NumberOrZero(value string) float64 {
	f := CoerceNumber(value)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// MatchIdentity reports whether a declaration matches the registered one.
// Names and location compare case-insensitively after trimming; the national id, title,
// property type and year must be identical; size, beds and baths compare as numbers.
func MatchIdentity(declared, registered models.Declaration) bool {
	return foldEqual(declared.OwnerFirst, registered.OwnerFirst) &&
		foldEqual(declared.OwnerLast, registered.OwnerLast) &&
		declared.OwnerID == registered.OwnerID &&
		declared.PropertyTitle == registered.PropertyTitle &&
		declared.PropertyType == registered.PropertyType &&
		foldEqual(declared.Location, registered.Location) &&
		numberEqual(declared.Size, registered.Size) &&
		numberEqual(declared.Beds, registered.Beds) &&
		numberEqual(declared.Baths, registered.Baths) &&
		declared.Year == registered.Year
}

func foldEqual(a, b string) bool {
	return strings.ToLower(strs.TrimSpace(a)) == strings.ToLower(strs.TrimSpace(b))
}

// numberEqual is false whenever either side is NaN.
func numberEqual(a, b string) bool {
	return CoerceNumber(a) == CoerceNumber(b)
}
