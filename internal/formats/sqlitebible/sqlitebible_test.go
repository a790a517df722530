package sqlitebible

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/FocuswithJustin/VerseKit/core/canon"
	"github.com/FocuswithJustin/VerseKit/core/sqlite"
	"github.com/FocuswithJustin/VerseKit/internal/langdetect"
)

type verseRow struct {
	book, chapter, verse int
	text                 string
}

func createCorpus(t *testing.T, info map[string]string, rows []verseRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.sqlite")

	db, err := sqlite.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mustExec(t, db, `CREATE TABLE verses (
		book_number INTEGER, chapter INTEGER, verse INTEGER, text TEXT)`)
	for _, r := range rows {
		mustExec(t, db,
			`INSERT INTO verses (book_number, chapter, verse, text) VALUES (?, ?, ?, ?)`,
			r.book, r.chapter, r.verse, r.text)
	}

	if info != nil {
		mustExec(t, db, `CREATE TABLE info (name TEXT, value TEXT)`)
		for k, v := range info {
			mustExec(t, db, `INSERT INTO info (name, value) VALUES (?, ?)`, k, v)
		}
	}
	return path
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func genesisRows() []verseRow {
	return []verseRow{
		{1, 1, 1, "In the beginning God created the heaven and the earth."},
		{1, 1, 2, "And the earth was without form, and void."},
		{1, 1, 3, "And God said, Let there be light."},
		{1, 2, 0, "The Second Chapter"},
		{1, 2, 1, "Thus the heavens and the earth were finished."},
		{1, 2, 2, "And on the seventh day God ended his work."},
	}
}

func TestOpenProbesBookCountDown(t *testing.T) {
	path := createCorpus(t, map[string]string{
		"description": "Test Version",
		"language":    "en",
	}, genesisRows())

	b, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b == nil {
		t.Fatal("valid corpus rejected")
	}

	if b.Name != "Test Version" {
		t.Errorf("Name = %q, want Test Version", b.Name)
	}
	if b.Language != "en" {
		t.Errorf("Language = %q, want en", b.Language)
	}
	// Only book 1 holds verses; probing walks down from the canonical 66.
	if len(b.Books) != 1 {
		t.Fatalf("got %d books, want 1", len(b.Books))
	}
	if !b.Lazy() {
		t.Error("corpus should be lazy by default")
	}
	if b.Books[0].Name != "Genesis" {
		t.Errorf("book name = %q, want Genesis", b.Books[0].Name)
	}
	if b.SourceHash == "" {
		t.Error("SourceHash is empty")
	}
}

func TestOpenProbesBookCountUp(t *testing.T) {
	var rows []verseRow
	for i := 1; i <= canon.BookCount()+1; i++ {
		rows = append(rows, verseRow{i, 1, 1, "text"})
	}
	path := createCorpus(t, nil, rows)

	b, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got, want := len(b.Books), canon.BookCount()+1; got != want {
		t.Fatalf("got %d books, want %d", got, want)
	}
	if got := b.Books[len(b.Books)-1].Name; got != "Book 67" {
		t.Errorf("extra-canonical book name = %q, want Book 67", got)
	}
}

func TestExtractEndToEnd(t *testing.T) {
	path := createCorpus(t, map[string]string{"description": "Test Version"}, genesisRows())

	b, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	verses, found, err := b.Extract("Genesis 1:1-2:1")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !found {
		t.Fatal("Genesis not found in corpus")
	}
	// Chapter 1 verses 1-3, then chapter 2 verse 1. The verse-0 heading
	// row carries an absent label and never matches a range.
	if len(verses) != 4 {
		t.Fatalf("got %d verses, want 4", len(verses))
	}
	last := verses[len(verses)-1]
	if last.Text != "Thus the heavens and the earth were finished." {
		t.Errorf("last verse = %q", last.Text)
	}
	if !last.Number.Present() || last.Number.Label != "1" {
		t.Errorf("last verse label = %q, want 1", last.Number.Label)
	}
}

func TestReadBookChapterProbe(t *testing.T) {
	// Genesis canonically has 50 chapters; the fixture holds 2. The
	// chapter probe must settle on 2 rather than trusting the canon.
	path := createCorpus(t, nil, genesisRows())

	b, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := b.EnsureLoaded(0); err != nil {
		t.Fatalf("EnsureLoaded: %v", err)
	}
	if got := len(b.Books[0].Chapters); got != 2 {
		t.Errorf("got %d chapters, want 2", got)
	}
}

func TestBooksTableOverridesNames(t *testing.T) {
	path := createCorpus(t, nil, genesisRows())

	db, err := sqlite.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	mustExec(t, db, `CREATE TABLE books (book_number INTEGER, long_name TEXT, short_name TEXT)`)
	mustExec(t, db, `INSERT INTO books VALUES (1, '1. Mose', 'Mose1')`)
	db.Close()

	b, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b.Books[0].Name != "1. Mose" || b.Books[0].ShortName != "Mose1" {
		t.Errorf("book names = %q/%q, want 1. Mose/Mose1",
			b.Books[0].Name, b.Books[0].ShortName)
	}
}

func TestOpenLanguageDetected(t *testing.T) {
	rows := []verseRow{{1, 1, 1, "Εν αρχη"}}
	path := createCorpus(t, nil, rows)

	b, err := Open(path, Options{Detector: &langdetect.Script{}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b.Language != "el" {
		t.Errorf("Language = %q, want el", b.Language)
	}
}

func TestOpenEager(t *testing.T) {
	path := createCorpus(t, nil, genesisRows())

	b, err := Open(path, Options{Eager: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b.Lazy() {
		t.Error("eager corpus should not hold a reader")
	}
	if !b.Books[0].Loaded() {
		t.Error("book not loaded in eager mode")
	}
}

func TestOpenNotThisFormat(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		b, err := Open(filepath.Join(t.TempDir(), "nope.sqlite"), Options{})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if b != nil {
			t.Error("missing file should be rejected with (nil, nil)")
		}
	})

	t.Run("not sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "junk")
		if err := os.WriteFile(path, []byte("INDEX FILE\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		b, err := Open(path, Options{})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if b != nil {
			t.Error("non-sqlite file should be rejected with (nil, nil)")
		}
	})

	t.Run("no verses table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "other.sqlite")
		db, err := sqlite.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		mustExec(t, db, `CREATE TABLE notes (id INTEGER, body TEXT)`)
		db.Close()

		b, err := Open(path, Options{})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if b != nil {
			t.Error("foreign schema should be rejected with (nil, nil)")
		}
	})
}

func TestProbeExtent(t *testing.T) {
	presentSet := func(ns ...int) func(int) (bool, error) {
		set := map[int]bool{}
		for _, n := range ns {
			set[n] = true
		}
		return func(n int) (bool, error) { return set[n], nil }
	}

	cases := []struct {
		name      string
		canonical int
		present   func(int) (bool, error)
		want      int
	}{
		{"exact", 3, presentSet(1, 2, 3), 3},
		{"grow", 3, presentSet(1, 2, 3, 4, 5), 5},
		{"shrink", 5, presentSet(1, 2), 2},
		{"empty", 5, presentSet(), 0},
		{"zero canonical", 0, presentSet(1, 2), 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := probeExtent(tc.canonical, tc.present)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("probeExtent = %d, want %d", got, tc.want)
			}
		})
	}
}
