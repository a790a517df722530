// Package flatfile reads the index-plus-book-files Bible format.
//
// A corpus is a directory holding an index file named "index" and one text
// file per book, named by 1-based book position ("1", "2", ...). A book
// file may instead be stored xz-compressed under "<n>.xz".
//
// Index file layout (text, optionally BOM-prefixed):
//
//	INDEX FILE
//	NAME=<version display name>
//	BOOKCOUNT=<integer>
//	LANGUAGE=<ISO 639-1 code>        (optional; absent means English)
//	BOOK=<long name>[,<short name>]  (BOOKCOUNT repetitions of this
//	CHAPTERS=<hex byte offsets>       pair of lines)
//
// When the LANGUAGE line is absent its position is reinterpreted as the
// first book entry. Book files separate chapters with blank lines; a line
// starting with a verse label ("3" or "2-3") is a verse, any other line is
// descriptive text with an absent label.
package flatfile

import (
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
	"golang.org/x/text/encoding"

	"github.com/FocuswithJustin/VerseKit/core/bible"
	"github.com/FocuswithJustin/VerseKit/core/canon"
	verrors "github.com/FocuswithJustin/VerseKit/core/errors"
	"github.com/FocuswithJustin/VerseKit/internal/langdetect"
	"github.com/FocuswithJustin/VerseKit/internal/logging"
)

const (
	formatName    = "flatfile"
	indexFileName = "index"
	indexHeader   = "INDEX FILE"
)

// Options configures corpus opening.
type Options struct {
	// DefaultEncoding decodes files that carry no byte-order mark. Nil
	// means the bytes are taken as UTF-8.
	DefaultEncoding encoding.Encoding

	// Detector derives the corpus language from the first book's first
	// verse when the index declares none. Nil skips detection and the
	// language defaults to English.
	Detector langdetect.Detector

	// Eager populates every book at open time; the returned Bible then
	// holds no Reader.
	Eager bool
}

// Reader populates books from the corpus directory on demand. It is
// borrowed by the Bible it was opened with.
type Reader struct {
	dir      string
	def      encoding.Encoding
	chapters [][]int64 // declared per-chapter byte offsets, per book
	names    []string
}

// Open opens a flat-file corpus directory. A directory that does not hold
// this format returns (nil, nil) so callers can try the next candidate
// format; only real I/O failures are errors.
func Open(dir string, opts Options) (*bible.Bible, error) {
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		if err != nil && !os.IsNotExist(err) {
			return nil, verrors.NewIO("stat", dir, err)
		}
		logging.FormatRejected(formatName, dir, "not a directory")
		return nil, nil
	}

	indexPath := filepath.Join(dir, indexFileName)
	raw, err := os.ReadFile(indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			logging.FormatRejected(formatName, dir, "no index file")
			return nil, nil
		}
		return nil, verrors.NewIO("read", indexPath, err)
	}

	text, err := decodeText(raw, opts.DefaultEncoding)
	if err != nil {
		return nil, verrors.NewIO("decode", indexPath, err)
	}

	idx, ok := parseIndex(text)
	if !ok {
		logging.FormatRejected(formatName, indexPath, "index shape mismatch")
		return nil, nil
	}

	books := make([]*bible.Book, len(idx.books))
	offsets := make([][]int64, len(idx.books))
	names := make([]string, len(idx.books))
	for i, entry := range idx.books {
		books[i] = &bible.Book{
			Name:      entry.long,
			ShortName: entry.short,
			Testament: canon.TestamentAt(i),
		}
		offsets[i] = entry.offsets
		names[i] = entry.long
	}

	rdr := &Reader{
		dir:      dir,
		def:      opts.DefaultEncoding,
		chapters: offsets,
		names:    names,
	}

	language := idx.language
	if language == "" {
		language = "en"
		if opts.Detector != nil && len(books) > 0 {
			if err := rdr.ReadBook(books[0], 0); err != nil {
				return nil, err
			}
			if code := opts.Detector.Detect(firstVerseText(books[0])); code != "" {
				language = code
			}
		}
	}
	language = langdetect.Canonical(language)

	var borrowed bible.Reader = rdr
	if opts.Eager {
		for i, b := range books {
			if b.Loaded() {
				continue
			}
			if err := rdr.ReadBook(b, i); err != nil {
				return nil, err
			}
		}
		borrowed = nil
	}

	sum := blake3.Sum256(raw)
	b := bible.New(idx.name, language, books, borrowed,
		bible.WithSourceHash(hex.EncodeToString(sum[:])))

	logging.CorpusOpened(formatName, b.Name, b.Language, len(books),
		"corpus_id", b.InstanceID)
	return b, nil
}

type indexBook struct {
	long    string
	short   string
	offsets []int64
}

type indexFile struct {
	name     string
	language string
	books    []indexBook
}

// parseIndex parses decoded index text. ok is false on any shape mismatch.
func parseIndex(text string) (indexFile, bool) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	pos := 0
	next := func() (string, bool) {
		if pos >= len(lines) {
			return "", false
		}
		line := lines[pos]
		pos++
		return line, true
	}

	var idx indexFile

	line, ok := next()
	if !ok || strings.TrimSpace(line) != indexHeader {
		return indexFile{}, false
	}

	line, ok = next()
	if !ok || !strings.HasPrefix(line, "NAME=") {
		return indexFile{}, false
	}
	idx.name = strings.TrimSpace(strings.TrimPrefix(line, "NAME="))

	line, ok = next()
	if !ok || !strings.HasPrefix(line, "BOOKCOUNT=") {
		return indexFile{}, false
	}
	count, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "BOOKCOUNT=")))
	if err != nil || count < 0 {
		return indexFile{}, false
	}

	// The LANGUAGE line is optional. When absent, this position already
	// holds the first BOOK entry and is pushed back for the loop below.
	line, ok = next()
	if ok && strings.HasPrefix(line, "LANGUAGE=") {
		idx.language = strings.TrimSpace(strings.TrimPrefix(line, "LANGUAGE="))
	} else if ok {
		pos--
	}

	for i := 0; i < count; i++ {
		line, ok = next()
		if !ok || !strings.HasPrefix(line, "BOOK=") {
			return indexFile{}, false
		}
		long, short, _ := strings.Cut(strings.TrimPrefix(line, "BOOK="), ",")
		entry := indexBook{
			long:  strings.TrimSpace(long),
			short: strings.TrimSpace(short),
		}

		line, ok = next()
		if !ok || !strings.HasPrefix(line, "CHAPTERS=") {
			return indexFile{}, false
		}
		for _, field := range strings.Fields(strings.TrimPrefix(line, "CHAPTERS=")) {
			off, err := strconv.ParseInt(field, 16, 64)
			if err != nil {
				return indexFile{}, false
			}
			entry.offsets = append(entry.offsets, off)
		}

		idx.books = append(idx.books, entry)
	}

	return idx, true
}

// verseLabelRe matches a printed verse label at the start of a line.
var verseLabelRe = regexp.MustCompile(`^(\d+)(-\d+)?`)

// ReadBook implements bible.Reader: parse the 1-based book file into
// chapters and verses, appending them in file order.
func (r *Reader) ReadBook(b *bible.Book, bookIndex int) error {
	start := time.Now()

	raw, err := r.readBookFile(bookIndex + 1)
	if err != nil {
		return err
	}
	text, err := decodeText(raw, r.def)
	if err != nil {
		return verrors.NewIO("decode", r.bookPath(bookIndex+1), err)
	}

	var current *bible.Chapter
	chapterCount := 0
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			current = nil
			continue
		}
		if current == nil {
			chapterCount++
			current = b.AddChapter(chapterCount)
		}
		label, verseText := splitVerseLine(line)
		current.AddVerse(label, verseText)
	}

	if declared := len(r.chapters[bookIndex]); declared != 0 && declared != chapterCount {
		logging.Warn("chapter count mismatch",
			"book", b.Name, "declared", declared, "found", chapterCount)
	}

	logging.BookLoaded(b.Name, bookIndex, chapterCount, time.Since(start))
	return nil
}

func (r *Reader) bookPath(n int) string {
	return filepath.Join(r.dir, strconv.Itoa(n))
}

// readBookFile reads book file n, transparently decompressing "<n>.xz"
// when the plain file is absent.
func (r *Reader) readBookFile(n int) ([]byte, error) {
	path := r.bookPath(n)
	raw, err := os.ReadFile(path)
	if err == nil {
		return raw, nil
	}
	if !os.IsNotExist(err) {
		return nil, verrors.NewIO("read", path, err)
	}

	xzPath := path + ".xz"
	f, ferr := os.Open(xzPath)
	if ferr != nil {
		if os.IsNotExist(ferr) {
			return nil, verrors.NewNotFound("book file", path)
		}
		return nil, verrors.NewIO("open", xzPath, ferr)
	}
	defer f.Close()

	zr, zerr := xz.NewReader(f)
	if zerr != nil {
		return nil, verrors.NewIO("decompress", xzPath, zerr)
	}
	raw, rerr := io.ReadAll(zr)
	if rerr != nil {
		return nil, verrors.NewIO("decompress", xzPath, rerr)
	}
	return raw, nil
}

// splitVerseLine splits a book-file line into its printed label and text.
// A line with no leading label is descriptive: all text, absent label.
func splitVerseLine(line string) (label, text string) {
	label = verseLabelRe.FindString(line)
	if label == "" {
		return "", strings.TrimSpace(line)
	}
	rest := strings.TrimLeft(line[len(label):], ".:")
	return label, strings.TrimSpace(rest)
}

// firstVerseText returns the first verse text of a populated book.
func firstVerseText(b *bible.Book) string {
	for _, ch := range b.Chapters {
		for _, v := range ch.Verses {
			if v.Text != "" {
				return v.Text
			}
		}
	}
	return ""
}
