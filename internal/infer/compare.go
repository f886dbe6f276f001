package infer

import "strings"

// CompareValues imposes a total order over heterogeneous raw values, for
// stable sorting of mixed-type columns: blanks first, then numbers, then
// anything date-parseable on the shared timestamp timeline, then text.
// Returns -1, 0, or 1.
func CompareValues(a, b interface{}) int {
	aBlank, bBlank := IsBlank(a), IsBlank(b)
	switch {
	case aBlank && bBlank:
		return 0
	case aBlank:
		return -1
	case bBlank:
		return 1
	}

	if IsNumericLike(a) && IsNumericLike(b) {
		af, _ := ToFloat(a)
		bf, _ := ToFloat(b)
		return compareFloats(af, bf)
	}

	at, aOK := ParseDate(a)
	bt, bOK := ParseDate(b)
	switch {
	case aOK && bOK:
		return compareFloats(at, bt)
	case aOK:
		return -1
	case bOK:
		return 1
	}

	as, bs := Stringify(a), Stringify(b)
	if c := strings.Compare(strings.ToLower(as), strings.ToLower(bs)); c != 0 {
		return c
	}
	return strings.Compare(as, bs)
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
