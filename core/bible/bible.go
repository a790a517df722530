// Package bible models a Bible corpus as an aggregate of books, chapters,
// and verses, with book content populated on demand by a storage Reader.
//
// The aggregate is the single entry point for reference queries: parse a
// free-text reference against the corpus's book names, then extract the
// verses the reference denotes. Population is monotonic. Once a book is
// loaded it stays loaded for the lifetime of the Bible.
package bible

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/VerseKit/core/canon"
	verrors "github.com/FocuswithJustin/VerseKit/core/errors"
	"github.com/FocuswithJustin/VerseKit/core/reference"
)

// Verse is a single verse: its printed number and its text. ChapterRef and
// BookRef are back-references stamped onto verses returned by an extraction
// query; they are never used for ownership.
type Verse struct {
	Number VerseNumber
	Text   string

	ChapterRef *Chapter
	BookRef    *Book
}

// Chapter is a chapter number (1-based, ascending within a book) and its
// verses in file order.
type Chapter struct {
	Number int
	Verses []*Verse
}

// AddVerse appends a verse with the given printed label and text.
func (c *Chapter) AddVerse(label, text string) *Verse {
	v := &Verse{Number: ParseVerseNumber(label), Text: text}
	c.Verses = append(c.Verses, v)
	return v
}

// MaxVerseNumber returns the highest MaxBound over the chapter's verses.
// Descriptive lines carry no number and do not contribute.
func (c *Chapter) MaxVerseNumber() int {
	max := 0
	for _, v := range c.Verses {
		if n := v.Number.MaxBound(); n > max {
			max = n
		}
	}
	return max
}

// Book is one book of the corpus. Chapters start empty and are populated
// exactly once by the active Reader; there is no eviction.
type Book struct {
	Name      string
	ShortName string
	Testament canon.Testament

	Chapters []*Chapter
}

// Loaded reports whether the book's content has been populated.
func (b *Book) Loaded() bool {
	return len(b.Chapters) > 0
}

// AddChapter appends an empty chapter with the given 1-based number.
func (b *Book) AddChapter(number int) *Chapter {
	c := &Chapter{Number: number}
	b.Chapters = append(b.Chapters, c)
	return c
}

// Chapter returns the chapter with the given number, or nil.
func (b *Book) Chapter(number int) *Chapter {
	for _, c := range b.Chapters {
		if c.Number == number {
			return c
		}
	}
	return nil
}

// Reader is the lazy-load contract a storage backend implements: populate
// the given empty Book in place by appending complete chapters and verses
// in ascending chapter order. The backend sources the content however it
// wishes (flat file, database query, XML subtree walk).
type Reader interface {
	ReadBook(b *Book, bookIndex int) error
}

// Bible is the aggregate root. It exclusively owns its Books; the Reader
// is borrowed, held only when loading is lazy, and absent when the whole
// corpus was loaded eagerly.
type Bible struct {
	// Language is the corpus language as an ISO 639-1 code.
	Language string

	// Name is the version display name (e.g. "King James Version").
	Name string

	// SourceHash is the BLAKE3 hex digest of the backend's identifying
	// bytes, set by the opener. Empty for in-memory corpora.
	SourceHash string

	// InstanceID correlates log lines across queries on one open corpus.
	InstanceID string

	// Books in canonical file order.
	Books []*Book

	reader Reader

	mu        sync.Mutex
	indexOnce sync.Once
	nameIndex map[string]int

	parser *reference.Parser
}

// Option configures a Bible at construction time.
type Option func(*Bible)

// WithParser sets the reference parser used by Resolve. Without it the
// base-locale parser is used.
func WithParser(p *reference.Parser) Option {
	return func(b *Bible) { b.parser = p }
}

// WithSourceHash records the backend's content hash on the aggregate.
func WithSourceHash(hash string) Option {
	return func(b *Bible) { b.SourceHash = hash }
}

// New creates a Bible over the given books. rdr may be nil when every book
// was populated eagerly at construction time.
func New(name, language string, books []*Book, rdr Reader, opts ...Option) *Bible {
	b := &Bible{
		Name:       name,
		Language:   language,
		Books:      books,
		reader:     rdr,
		InstanceID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.parser == nil {
		b.parser = reference.BaseParser()
	}
	return b
}

// Lazy reports whether the Bible still holds a Reader for on-demand loads.
func (b *Bible) Lazy() bool {
	return b.reader != nil
}

// EnsureLoaded populates the book at the given index if it is not already
// populated. Idempotent: a loaded book is never re-read, and the Reader is
// called at most once per book. Population is serialized so concurrent
// callers cannot double-populate a book.
func (b *Bible) EnsureLoaded(bookIndex int) error {
	if bookIndex < 0 || bookIndex >= len(b.Books) {
		return verrors.NewNotFound("book index", "")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	book := b.Books[bookIndex]
	if book.Loaded() {
		return nil
	}
	if b.reader == nil {
		return verrors.NewNotFound("book content", book.Name)
	}
	if err := b.reader.ReadBook(book, bookIndex); err != nil {
		return verrors.Wrapf(err, "loading book %q", book.Name)
	}
	return nil
}

// BookIndex resolves a long or short book name, in whichever language the
// corpus was loaded in, to a book index. The mapping is built once, on the
// first lookup; names are fixed after construction.
func (b *Bible) BookIndex(name string) (int, bool) {
	b.indexOnce.Do(func() {
		b.nameIndex = make(map[string]int, 2*len(b.Books))
		for i, book := range b.Books {
			b.nameIndex[normalizeName(book.Name)] = i
			if book.ShortName != "" {
				b.nameIndex[normalizeName(book.ShortName)] = i
			}
		}
	})
	i, ok := b.nameIndex[normalizeName(name)]
	return i, ok
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Query is a reference resolved against this Bible's book order. Chapter2
// and Verse2 are 0 when the reference does not carry them.
type Query struct {
	Book     int
	Chapter1 int
	Verse1   int
	Chapter2 int
	Verse2   int
}

// SingleChapter reports whether the query stays within one chapter.
func (q Query) SingleChapter() bool {
	return q.Chapter2 == 0
}

// Resolve runs the reference grammar on text and resolves the parsed book
// name through the name mapping. A grammar or range-order failure is
// returned as an error; an unknown book name is a normal outcome reported
// by found == false.
func (b *Bible) Resolve(text string) (q Query, found bool, err error) {
	ref, err := b.parser.Parse(text)
	if err != nil {
		return Query{}, false, err
	}
	idx, ok := b.BookIndex(ref.Book)
	if !ok {
		return Query{Book: -1}, false, nil
	}
	return Query{
		Book:     idx,
		Chapter1: ref.Chapter,
		Verse1:   ref.Verse,
		Chapter2: ref.ChapterEnd,
		Verse2:   ref.VerseEnd,
	}, true, nil
}
