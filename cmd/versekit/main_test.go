package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/VerseKit/core/bible"
	"github.com/FocuswithJustin/VerseKit/core/sqlite"
	"github.com/FocuswithJustin/VerseKit/internal/logging"
)

func setFormat(t *testing.T, format string) {
	t.Helper()
	old := CLI.Format
	CLI.Format = format
	t.Cleanup(func() { CLI.Format = old })
}

func writeFlatCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	index := "INDEX FILE\nNAME=Flat Version\nBOOKCOUNT=1\nBOOK=Genesis,Gen\nCHAPTERS=0\n"
	book := "1 In the beginning God created the heaven and the earth.\n" +
		"2 And the earth was without form, and void.\n"
	if err := os.WriteFile(filepath.Join(dir, "index"), []byte(index), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "1"), []byte(book), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func writeSQLiteCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.sqlite")
	db, err := sqlite.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE verses (book_number INTEGER, chapter INTEGER, verse INTEGER, text TEXT)`,
		`INSERT INTO verses VALUES (1, 1, 1, 'In the beginning')`,
		`CREATE TABLE info (name TEXT, value TEXT)`,
		`INSERT INTO info VALUES ('description', 'DB Version')`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func writeZefaniaCorpus(t *testing.T) string {
	t.Helper()
	doc := `<XMLBIBLE biblename="XML Version">
  <BIBLEBOOK bnumber="1" bname="Genesis">
    <CHAPTER cnumber="1"><VERS vnumber="1">In the beginning</VERS></CHAPTER>
  </BIBLEBOOK>
</XMLBIBLE>`
	path := filepath.Join(t.TempDir(), "bible.xml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenCorpusAuto(t *testing.T) {
	setFormat(t, "auto")

	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"flatfile dir", writeFlatCorpus(t), "Flat Version"},
		{"sqlite file", writeSQLiteCorpus(t), "DB Version"},
		{"zefania file", writeZefaniaCorpus(t), "XML Version"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := openCorpus(tc.source)
			if err != nil {
				t.Fatalf("openCorpus: %v", err)
			}
			if b.Name != tc.want {
				t.Errorf("Name = %q, want %q", b.Name, tc.want)
			}
		})
	}
}

func TestOpenCorpusExplicitFormatMismatch(t *testing.T) {
	setFormat(t, "zefania")
	if _, err := openCorpus(writeFlatCorpus(t)); err == nil {
		t.Error("zefania backend should not accept a flat-file directory")
	}
}

func TestOpenCorpusNothingAccepts(t *testing.T) {
	setFormat(t, "auto")
	junk := filepath.Join(t.TempDir(), "junk.bin")
	if err := os.WriteFile(junk, []byte{0x00, 0x01, 0x02}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := openCorpus(junk); err == nil {
		t.Error("unrecognized source should fail to open")
	}
}

func TestLookupRun(t *testing.T) {
	setFormat(t, "auto")
	cmd := &LookupCmd{Source: writeFlatCorpus(t), Reference: "Genesis 1:1-2"}
	if err := cmd.Run(); err != nil {
		t.Fatalf("lookup: %v", err)
	}
}

func TestLookupRunBadReference(t *testing.T) {
	setFormat(t, "auto")
	src := writeFlatCorpus(t)

	cmd := &LookupCmd{Source: src, Reference: ":::"}
	if err := cmd.Run(); err == nil || !strings.Contains(err.Error(), "cannot parse") {
		t.Errorf("want grammar failure, got %v", err)
	}

	cmd = &LookupCmd{Source: src, Reference: "Genesis 2:5-1:1"}
	if err := cmd.Run(); err == nil || !strings.Contains(err.Error(), "backwards") {
		t.Errorf("want range-order failure, got %v", err)
	}

	cmd = &LookupCmd{Source: src, Reference: "Atlantis 1:1"}
	if err := cmd.Run(); err == nil || !strings.Contains(err.Error(), "no book") {
		t.Errorf("want unknown-book failure, got %v", err)
	}
}

func TestPrintVerses(t *testing.T) {
	book := &bible.Book{Name: "Genesis"}
	ch := book.AddChapter(1)
	v := ch.AddVerse("1", "In the beginning")
	v.BookRef = book
	v.ChapterRef = ch

	var sb strings.Builder
	printVerses(&sb, []*bible.Verse{v})
	got := sb.String()
	if !strings.Contains(got, "Genesis 1:1") || !strings.Contains(got, "In the beginning") {
		t.Errorf("output = %q", got)
	}
}

func TestLogLevel(t *testing.T) {
	if logLevel("debug") != logging.LevelDebug {
		t.Error("debug level mismatch")
	}
	if logLevel("bogus") != logging.LevelInfo {
		t.Error("unknown level should default to info")
	}
}
