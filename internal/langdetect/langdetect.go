// Package langdetect guesses a corpus language from verse text. Backends
// that do not declare a language probe the first book's first verse through
// a Detector once, at open time.
package langdetect

import (
	"unicode"

	"golang.org/x/text/language"
)

// Detector derives an ISO 639-1 language code from sample text. An empty
// result means the detector could not decide.
type Detector interface {
	Detect(sample string) string
}

// Script detects by dominant Unicode script. It cannot tell Latin-script
// languages apart and reports those as English, which matches the flat-file
// format's default.
type Script struct{}

var scripts = []struct {
	table *unicode.RangeTable
	code  string
}{
	{unicode.Hebrew, "he"},
	{unicode.Greek, "el"},
	{unicode.Cyrillic, "ru"},
	{unicode.Arabic, "ar"},
	{unicode.Han, "zh"},
	{unicode.Hangul, "ko"},
	{unicode.Hiragana, "ja"},
	{unicode.Katakana, "ja"},
	{unicode.Devanagari, "hi"},
	{unicode.Latin, "en"},
}

// Detect implements Detector.
func (Script) Detect(sample string) string {
	counts := make(map[string]int, len(scripts))
	for _, r := range sample {
		for _, s := range scripts {
			if unicode.Is(s.table, r) {
				counts[s.code]++
				break
			}
		}
	}

	best, bestCount := "", 0
	for code, n := range counts {
		if n > bestCount {
			best, bestCount = code, n
		}
	}
	return best
}

// Canonical normalizes a detected or declared code to a canonical BCP-47
// base tag. Unparseable input comes back unchanged.
func Canonical(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	base, conf := tag.Base()
	if conf == language.No {
		return code
	}
	return base.String()
}
