// Package reference parses free-text scripture references such as
// "Genesis 1:1-2:3" into structured references.
//
// The grammar is <book> <chapter>:<verse>[-[<chapter>:]<verse>]. The token
// spellings are locale-dependent: a Locale supplies the book-name pattern
// and the separator patterns, and a parser is compiled per locale. Parsing
// tries the locale's compiled grammar first and, when that grammar differs
// from the base one and fails, retries the base grammar.
package reference

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/VerseKit/core/cache"
	verrors "github.com/FocuswithJustin/VerseKit/core/errors"
)

// Locale carries the locale-specific token patterns for the reference
// grammar. Empty fields fall back to the base locale's patterns.
type Locale struct {
	// Tag is the BCP-47 language tag this locale serves.
	Tag string

	// BookPattern matches the book-name text, including numbered books
	// ("1 John") and multi-word names ("Song of Solomon").
	BookPattern string

	// ChapterVerseSep matches the separator between chapter and verse.
	ChapterVerseSep string

	// RangeSep matches the separator between the two ends of a range.
	RangeSep string
}

// BaseLocale returns the untranslated grammar patterns.
func BaseLocale() Locale {
	return Locale{
		Tag:             "en",
		BookPattern:     `(?:\d\s*)?\p{L}+(?:\s+(?:of\s+)?\p{L}+)*\.?`,
		ChapterVerseSep: `:`,
		RangeSep:        `-`,
	}
}

func (l Locale) withDefaults() Locale {
	base := BaseLocale()
	if l.Tag == "" {
		l.Tag = base.Tag
	}
	if l.BookPattern == "" {
		l.BookPattern = base.BookPattern
	}
	if l.ChapterVerseSep == "" {
		l.ChapterVerseSep = base.ChapterVerseSep
	}
	if l.RangeSep == "" {
		l.RangeSep = base.RangeSep
	}
	return l
}

// isBase reports whether the locale's patterns equal the base patterns.
// The tag is ignored: a locale that translates nothing needs no fallback.
func (l Locale) isBase() bool {
	base := BaseLocale()
	return l.BookPattern == base.BookPattern &&
		l.ChapterVerseSep == base.ChapterVerseSep &&
		l.RangeSep == base.RangeSep
}

// LocaleSource supplies locale grammars by language tag. It is an injected
// strategy; there is no global translation registry.
type LocaleSource interface {
	Locale(tag string) (Locale, bool)
}

// Locales is a static LocaleSource.
type Locales map[string]Locale

// Locale implements LocaleSource.
func (m Locales) Locale(tag string) (Locale, bool) {
	l, ok := m[tag]
	return l, ok
}

// Reference is a parsed scripture reference. ChapterEnd is set only when
// the range restates a chapter before the second verse; otherwise a range
// is understood as same-chapter and only VerseEnd is set. Zero means
// absent.
type Reference struct {
	Book       string
	Chapter    int
	Verse      int
	ChapterEnd int
	VerseEnd   int
}

// String returns the canonical text form of the reference.
func (r *Reference) String() string {
	var sb strings.Builder
	sb.WriteString(r.Book)
	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa(r.Chapter))
	sb.WriteString(":")
	sb.WriteString(strconv.Itoa(r.Verse))
	if r.ChapterEnd != 0 {
		fmt.Fprintf(&sb, "-%d:%d", r.ChapterEnd, r.VerseEnd)
	} else if r.VerseEnd != 0 {
		fmt.Fprintf(&sb, "-%d", r.VerseEnd)
	}
	return sb.String()
}

// GrammarError reports reference text that matches no known pattern.
type GrammarError struct {
	Text string
	Err  error
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("reference %q matches no known pattern", e.Text)
}

func (e *GrammarError) Unwrap() error {
	return verrors.ErrInvalidInput
}

// RangeOrderError reports a parsed reference whose start comes strictly
// after its end.
type RangeOrderError struct {
	Text     string
	Chapter1 int
	Verse1   int
	Chapter2 int
	Verse2   int
}

func (e *RangeOrderError) Error() string {
	return fmt.Sprintf("reference %q is out of order: %d:%d is after %d:%d",
		e.Text, e.Chapter1, e.Verse1, e.Chapter2, e.Verse2)
}

func (e *RangeOrderError) Unwrap() error {
	return verrors.ErrInvalidInput
}

// node is the participle grammar. A single number after the range
// separator lexes into Chapter2; parse fix-up decides whether it was
// actually a same-chapter verse end (see Parse).
//
type node struct {
	Book     string `parser:"@Book"`
	Chapter1 int    `parser:"@Number"`
	Verse1   int    `parser:"CVSep @Number"`
	Chapter2 *int   `parser:"( RangeSep @Number"`
	Verse2   *int   `parser:"  ( CVSep @Number )? )?"`
}

func buildEngine(loc Locale) (*participle.Parser[node], error) {
	lex, err := lexer.NewSimple([]lexer.SimpleRule{
		{Name: "Book", Pattern: loc.BookPattern},
		{Name: "Number", Pattern: `\d+`},
		{Name: "CVSep", Pattern: loc.ChapterVerseSep},
		{Name: "RangeSep", Pattern: loc.RangeSep},
		{Name: "Whitespace", Pattern: `\s+`},
	})
	if err != nil {
		return nil, verrors.Wrapf(err, "building lexer for locale %q", loc.Tag)
	}
	return participle.Build[node](
		participle.Lexer(lex),
		participle.Elide("Whitespace"),
	)
}

// Parser parses references with one locale's grammar, falling back to the
// base grammar when the locale's differs and fails to match. Successful
// parses are memoized per parser; references repeat heavily in practice.
type Parser struct {
	locale   Locale
	engine   *participle.Parser[node]
	fallback *participle.Parser[node]
	parsed   cache.Cache[string, Reference]
}

var baseEngine = participle.MustBuild[node](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Book", Pattern: BaseLocale().BookPattern},
		{Name: "Number", Pattern: `\d+`},
		{Name: "CVSep", Pattern: BaseLocale().ChapterVerseSep},
		{Name: "RangeSep", Pattern: BaseLocale().RangeSep},
		{Name: "Whitespace", Pattern: `\s+`},
	})),
	participle.Elide("Whitespace"),
)

var baseParser = &Parser{
	locale: BaseLocale(),
	engine: baseEngine,
	parsed: cache.NewLRU[string, Reference](cache.DefaultConfig()),
}

// BaseParser returns the shared base-locale parser.
func BaseParser() *Parser {
	return baseParser
}

// NewParser compiles a parser for the given locale.
func NewParser(loc Locale) (*Parser, error) {
	loc = loc.withDefaults()
	parsed := cache.NewLRU[string, Reference](cache.DefaultConfig())
	if loc.isBase() {
		return &Parser{locale: loc, engine: baseEngine, parsed: parsed}, nil
	}
	engine, err := buildEngine(loc)
	if err != nil {
		return nil, err
	}
	return &Parser{locale: loc, engine: engine, fallback: baseEngine, parsed: parsed}, nil
}

// ParserFor resolves a parser for a language tag through a LocaleSource.
// A nil source, or a tag the source does not know, yields the base parser.
func ParserFor(src LocaleSource, tag string) (*Parser, error) {
	if src != nil {
		if loc, ok := src.Locale(tag); ok {
			return NewParser(loc)
		}
	}
	return BaseParser(), nil
}

// Locale returns the locale the parser was compiled for.
func (p *Parser) Locale() Locale {
	return p.locale
}

// Parse parses reference text. It returns a *GrammarError when no pattern
// matches and a *RangeOrderError when the parsed range starts after it
// ends.
func (p *Parser) Parse(text string) (*Reference, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &GrammarError{Text: text}
	}

	if cached, ok := p.parsed.Get(trimmed); ok {
		ref := cached
		return &ref, nil
	}

	n, err := p.engine.ParseString("", trimmed)
	if err != nil && p.fallback != nil {
		n, err = p.fallback.ParseString("", trimmed)
	}
	if err != nil {
		return nil, &GrammarError{Text: trimmed, Err: err}
	}

	ref := &Reference{
		Book:    strings.TrimSpace(strings.TrimSuffix(n.Book, ".")),
		Chapter: n.Chapter1,
		Verse:   n.Verse1,
	}

	// "Genesis 1:1-5" lexes the 5 into Chapter2. A bare number after the
	// range separator is a same-chapter verse end, not a chapter.
	if n.Chapter2 != nil {
		if n.Verse2 != nil {
			ref.ChapterEnd = *n.Chapter2
			ref.VerseEnd = *n.Verse2
		} else {
			ref.VerseEnd = *n.Chapter2
		}
	}

	if err := validateOrder(trimmed, ref); err != nil {
		return nil, err
	}
	p.parsed.Put(trimmed, *ref)
	return ref, nil
}

// validateOrder rejects ranges whose start is strictly after their end. A
// same-chapter range is ordered on verses alone.
func validateOrder(text string, ref *Reference) error {
	if ref.ChapterEnd != 0 {
		if ref.Chapter > ref.ChapterEnd ||
			(ref.Chapter == ref.ChapterEnd && ref.Verse > ref.VerseEnd) {
			return &RangeOrderError{
				Text:     text,
				Chapter1: ref.Chapter,
				Verse1:   ref.Verse,
				Chapter2: ref.ChapterEnd,
				Verse2:   ref.VerseEnd,
			}
		}
		return nil
	}
	if ref.VerseEnd != 0 && ref.Verse > ref.VerseEnd {
		return &RangeOrderError{
			Text:     text,
			Chapter1: ref.Chapter,
			Verse1:   ref.Verse,
			Chapter2: ref.Chapter,
			Verse2:   ref.VerseEnd,
		}
	}
	return nil
}

// Parse parses reference text with the base-locale grammar.
func Parse(text string) (*Reference, error) {
	return baseParser.Parse(text)
}
