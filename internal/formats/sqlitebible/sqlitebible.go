// Package sqlitebible reads Bible corpora stored as a SQLite database.
//
// The expected schema is a flat verses table plus optional metadata:
//
//	verses(book_number INTEGER, chapter INTEGER, verse INTEGER, text TEXT)
//	info(name TEXT, value TEXT)        -- "description", "language"
//	books(book_number INTEGER, long_name TEXT, short_name TEXT)
//
// The verses table is indexed only by number, so the true book and chapter
// extent is not statically known. Both are derived by probing outward from
// the canonical counts: existence of the next-higher unit is tested until
// absence is found, or downward from an absent canonical count until
// presence is found.
package sqlitebible

import (
	"database/sql"
	"encoding/hex"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/VerseKit/core/bible"
	"github.com/FocuswithJustin/VerseKit/core/canon"
	verrors "github.com/FocuswithJustin/VerseKit/core/errors"
	"github.com/FocuswithJustin/VerseKit/core/sqlite"
	"github.com/FocuswithJustin/VerseKit/internal/langdetect"
	"github.com/FocuswithJustin/VerseKit/internal/logging"
)

const formatName = "sqlitebible"

// Options configures corpus opening.
type Options struct {
	// Detector derives the corpus language from the first book's first
	// verse when the info table declares none. Nil skips detection and
	// the language defaults to English.
	Detector langdetect.Detector

	// Eager populates every book at open time. The database handle is
	// still retained until Close.
	Eager bool
}

// Reader populates books from the verses table on demand.
type Reader struct {
	db *sql.DB
}

// Open opens a SQLite corpus file. A file that is missing, unreadable
// as SQLite, or without a verses table is not this format: Open returns (nil, nil) so
// callers can try the next candidate format.
func Open(path string, opts Options) (*bible.Bible, error) {
	if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		if err != nil && !os.IsNotExist(err) {
			return nil, verrors.NewIO("stat", path, err)
		}
		logging.FormatRejected(formatName, path, "not a file")
		return nil, nil
	}

	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, verrors.NewIO("open", path, err)
	}

	ok, err := hasTable(db, "verses")
	if err != nil {
		db.Close()
		logging.FormatRejected(formatName, path, "not a sqlite database")
		return nil, nil
	}
	if !ok {
		db.Close()
		logging.FormatRejected(formatName, path, "no verses table")
		return nil, nil
	}

	bookCount, err := probeExtent(canon.BookCount(), func(n int) (bool, error) {
		return rowExists(db, `SELECT 1 FROM verses WHERE book_number = ? LIMIT 1`, n)
	})
	if err != nil {
		db.Close()
		return nil, verrors.Wrap(err, "probe book extent")
	}

	names, err := bookNames(db, bookCount)
	if err != nil {
		db.Close()
		return nil, err
	}

	books := make([]*bible.Book, bookCount)
	for i := range books {
		books[i] = &bible.Book{
			Name:      names[i].long,
			ShortName: names[i].short,
			Testament: canon.TestamentAt(i),
		}
	}

	rdr := &Reader{db: db}

	meta, err := readInfo(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	name := meta["description"]
	if name == "" {
		name = meta["name"]
	}

	language := meta["language"]
	if language == "" {
		language = "en"
		if opts.Detector != nil && len(books) > 0 {
			if err := rdr.ReadBook(books[0], 0); err != nil {
				db.Close()
				return nil, err
			}
			if code := opts.Detector.Detect(firstVerseText(books[0])); code != "" {
				language = code
			}
		}
	}
	language = langdetect.Canonical(language)

	if opts.Eager {
		for i, b := range books {
			if b.Loaded() {
				continue
			}
			if err := rdr.ReadBook(b, i); err != nil {
				db.Close()
				return nil, err
			}
		}
	}

	hash, err := hashFile(path)
	if err != nil {
		db.Close()
		return nil, err
	}

	var borrowed bible.Reader = rdr
	if opts.Eager {
		borrowed = nil
	}
	b := bible.New(name, language, books, borrowed, bible.WithSourceHash(hash))

	logging.CorpusOpened(formatName, b.Name, b.Language, len(books),
		"corpus_id", b.InstanceID)
	return b, nil
}

// Close releases the database handle. The Bible it was opened with must
// not be queried for unloaded books afterward.
func (r *Reader) Close() error {
	return r.db.Close()
}

// ReadBook implements bible.Reader. The book's chapter extent is probed
// from the canonical count before the chapters are read in order.
func (r *Reader) ReadBook(b *bible.Book, bookIndex int) error {
	start := time.Now()
	bookNumber := bookIndex + 1

	canonical := 1
	if bookIndex < canon.BookCount() {
		canonical = canon.ChapterCount(bookIndex)
	}
	chapters, err := probeExtent(canonical, func(n int) (bool, error) {
		return rowExists(r.db,
			`SELECT 1 FROM verses WHERE book_number = ? AND chapter = ? LIMIT 1`,
			bookNumber, n)
	})
	if err != nil {
		return verrors.Wrap(err, "probe chapter extent")
	}

	for ch := 1; ch <= chapters; ch++ {
		rows, err := r.db.Query(
			`SELECT verse, text FROM verses WHERE book_number = ? AND chapter = ? ORDER BY verse`,
			bookNumber, ch)
		if err != nil {
			return verrors.Wrap(err, "query chapter")
		}

		chapter := b.AddChapter(ch)
		for rows.Next() {
			var verse int
			var text string
			if err := rows.Scan(&verse, &text); err != nil {
				rows.Close()
				return verrors.Wrap(err, "scan verse")
			}
			label := ""
			if verse > 0 {
				label = strconv.Itoa(verse)
			}
			chapter.AddVerse(label, text)
		}
		if err := rows.Close(); err != nil {
			return verrors.Wrap(err, "read chapter")
		}
		if err := rows.Err(); err != nil {
			return verrors.Wrap(err, "read chapter")
		}
	}

	logging.BookLoaded(b.Name, bookIndex, chapters, time.Since(start))
	return nil
}

// probeExtent discovers a backend's true unit count around a canonical
// prior. If the canonical unit is present, the count grows while the next
// unit exists; if it is absent, the count shrinks until a present unit is
// found. Zero means nothing is present at all.
func probeExtent(canonical int, present func(n int) (bool, error)) (int, error) {
	if canonical < 1 {
		canonical = 1
	}
	ok, err := present(canonical)
	if err != nil {
		return 0, err
	}
	if ok {
		n := canonical
		for {
			more, err := present(n + 1)
			if err != nil {
				return 0, err
			}
			if !more {
				return n, nil
			}
			n++
		}
	}
	for n := canonical - 1; n > 0; n-- {
		ok, err := present(n)
		if err != nil {
			return 0, err
		}
		if ok {
			return n, nil
		}
	}
	return 0, nil
}

func hasTable(db *sql.DB, name string) (bool, error) {
	return rowExists(db,
		`SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?`, name)
}

func rowExists(db *sql.DB, query string, args ...any) (bool, error) {
	var one int
	err := db.QueryRow(query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// readInfo reads the optional info metadata table into a map. A corpus
// without one yields an empty map.
func readInfo(db *sql.DB) (map[string]string, error) {
	meta := map[string]string{}
	ok, err := hasTable(db, "info")
	if err != nil || !ok {
		return meta, err
	}

	rows, err := db.Query(`SELECT name, value FROM info`)
	if err != nil {
		return nil, verrors.Wrap(err, "query info")
	}
	defer rows.Close()
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, verrors.Wrap(err, "scan info")
		}
		meta[name] = value
	}
	return meta, rows.Err()
}

type bookName struct {
	long  string
	short string
}

// bookNames resolves display names from the optional books table, falling
// back to the canon for positions it does not cover.
func bookNames(db *sql.DB, count int) ([]bookName, error) {
	names := make([]bookName, count)
	for i := range names {
		if entry, ok := canon.Book(i); ok {
			names[i] = bookName{long: entry.Name, short: entry.ID}
		} else {
			names[i] = bookName{long: "Book " + strconv.Itoa(i+1)}
		}
	}

	ok, err := hasTable(db, "books")
	if err != nil || !ok {
		return names, err
	}

	rows, err := db.Query(`SELECT book_number, long_name, short_name FROM books`)
	if err != nil {
		return nil, verrors.Wrap(err, "query books")
	}
	defer rows.Close()
	for rows.Next() {
		var number int
		var long, short string
		if err := rows.Scan(&number, &long, &short); err != nil {
			return nil, verrors.Wrap(err, "scan books")
		}
		if number < 1 || number > count {
			continue
		}
		if long != "" {
			names[number-1].long = long
		}
		if short != "" {
			names[number-1].short = short
		}
	}
	return names, rows.Err()
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", verrors.NewIO("open", path, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", verrors.NewIO("hash", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

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
