package bible

import (
	"strconv"
	"strings"
)

// VerseNumber represents a verse's printed label. A label is a single
// integer ("4"), a merged range ("2-3"), or absent entirely for descriptive
// lines such as section headings. A merged range resolves to a primary and
// a secondary bound; single labels carry only the primary bound.
type VerseNumber struct {
	// Label is the printed label. Empty for descriptive lines. Labels
	// written with a chapter-verse separator ("2:3") are rewritten to the
	// range form ("2-3") so downstream consumers see one representation.
	Label string

	first  int
	second int

	present   bool
	hasSecond bool
}

const (
	rangeSep        = "-"
	chapterVerseSep = ":"
)

// ParseVerseNumber parses a printed verse label. Labels that carry no
// leading number at all come back as an absent VerseNumber, which never
// matches any range query.
func ParseVerseNumber(label string) VerseNumber {
	label = strings.TrimSpace(label)
	if label == "" {
		return VerseNumber{}
	}

	sep := ""
	switch {
	case strings.Contains(label, rangeSep):
		sep = rangeSep
	case strings.Contains(label, chapterVerseSep):
		// Some sources print merged verses with the chapter-verse separator.
		// Normalize the stored label to the range form.
		sep = chapterVerseSep
	}

	if sep != "" {
		left, right, _ := strings.Cut(label, sep)
		first, err1 := strconv.Atoi(strings.TrimSpace(left))
		second, err2 := strconv.Atoi(strings.TrimSpace(right))
		if err1 != nil || err2 != nil {
			return VerseNumber{Label: label}
		}
		return VerseNumber{
			Label:     strconv.Itoa(first) + rangeSep + strconv.Itoa(second),
			first:     first,
			second:    second,
			present:   true,
			hasSecond: true,
		}
	}

	n, err := strconv.Atoi(label)
	if err != nil {
		return VerseNumber{Label: label}
	}
	return VerseNumber{Label: label, first: n, present: true}
}

// Present reports whether the label carries a number at all.
func (v VerseNumber) Present() bool {
	return v.present
}

// Merged reports whether the label covers a closed range of verse numbers.
func (v VerseNumber) Merged() bool {
	return v.hasSecond
}

// Bounds returns the primary bound and, for merged labels, the secondary
// bound. The second return value is 0 for single labels.
func (v VerseNumber) Bounds() (int, int) {
	if !v.hasSecond {
		return v.first, 0
	}
	return v.first, v.second
}

// InRange reports whether the label falls within a query range. high is 0
// for single-value queries. An absent label never matches.
//
// The merged-label vs. range-query case is deliberately an asymmetric
// short-circuit, not a symmetric overlap test: when the label starts below
// the query it is judged by its upper bound only, otherwise by its lower
// bound only.
func (v VerseNumber) InRange(low, high int) bool {
	if !v.present {
		return false
	}

	if v.hasSecond {
		if high != 0 {
			if v.first < low {
				return v.second >= low
			}
			return v.first <= high
		}
		return v.first <= low && low <= v.second
	}

	if high != 0 {
		return low <= v.first && v.first <= high
	}
	return v.first == low
}

// MaxBound returns the label's highest covered number: the secondary bound
// for merged labels, the single bound otherwise, and 0 when the label is
// absent. Used to find a chapter's highest verse number without counting
// descriptive lines.
func (v VerseNumber) MaxBound() int {
	if !v.present {
		return 0
	}
	if v.hasSecond {
		return v.second
	}
	return v.first
}

// String returns the normalized printed label.
func (v VerseNumber) String() string {
	return v.Label
}
