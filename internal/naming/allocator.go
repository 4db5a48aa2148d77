// Package naming finds names that do not collide with the entries of a directory.
//
// Candidates are derived one from the other: a trailing run of one to four ASCII
// digits is incremented ("draft9" -> "draft10"), otherwise " 2" is appended
// ("draft" -> "draft 2"). The digit run is parsed as a number, so leading zeros
// are not reproduced ("take007" -> "take8"). Past 9999 only the last four digits
// keep matching, so the leading "1" of "n10000" becomes part of the stem and the
// sequence continues "n9999" -> "n10000" -> "n11" -> "n12".
package naming

import (
	"strconv"
	"strings"
)

const maxSuffixDigits = 4

// NextCandidate returns the name that follows stem in the disambiguation sequence.
// It never fails.
func NextCandidate(stem string) string {
	start := len(stem)
	for start > 0 && len(stem)-start < maxSuffixDigits && isASCIIDigit(stem[start-1]) {
		start--
	}
	if start == len(stem) {
		return stem + " 2"
	}
	// At most four digits, so this cannot overflow.
	n, _ := strconv.ParseUint(stem[start:], 10, 32)
	return stem[:start] + strconv.FormatUint(n+1, 10)
}

func isASCIIDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// SplitExt splits name into stem and extension, the extension including its dot.
// A name whose only dot is the leading one (".profile") has no extension, and
// "..txt" splits into "." and ".txt".
func SplitExt(name string) (stem, ext string) {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return name, ""
	}
	// "..", "..." and friends are all stem.
	if idx == len(name)-1 && strings.Trim(name, ".") == "" {
		return name, ""
	}
	return name[:idx], name[idx:]
}
