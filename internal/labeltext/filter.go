// Package labeltext prepares label strings for the rendering engine: it
// restricts them to an explicit code-point allow-list and measures their
// extent.
//
// The allow-list exists because third-party text measurement code has been
// observed to loop forever on unbounded code points. Input is normalised to
// NFC first so that decomposed Latin-1 letters (e + U+0301) survive as their
// precomposed form instead of losing the accent.
package labeltext

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Range is an inclusive range of code points.
type Range struct {
	Start rune
	End   rune
}

// Contains reports whether the rune is in the range.
func (r Range) Contains(c rune) bool {
	return c >= r.Start && c <= r.End
}

// Allowed code points: printable ASCII and the printable part of the
// Latin-1 supplement, plus newline for multi-line labels.
var (
	RangePrintableASCII = Range{0x0020, 0x007E}
	RangeLatin1         = Range{0x00A0, 0x00FF}
	RangeNewline        = Range{'\n', '\n'}
)

// DefaultAllowList is the allow-list applied by Filter.
var DefaultAllowList = []Range{RangeNewline, RangePrintableASCII, RangeLatin1}

// Filter normalises s to NFC and drops every rune outside DefaultAllowList.
func Filter(s string) string {
	return FilterRanges(s, DefaultAllowList)
}

// FilterRanges is Filter with an explicit allow-list. An empty list allows
// nothing.
func FilterRanges(s string, allow []Range) string {
	s = norm.NFC.String(s)
	clean := true
	for _, r := range s {
		if !inRanges(r, allow) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if inRanges(r, allow) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func inRanges(r rune, allow []Range) bool {
	for _, ur := range allow {
		if ur.Contains(r) {
			return true
		}
	}
	return false
}
