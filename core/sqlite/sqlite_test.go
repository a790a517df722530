package sqlite

import (
	"path/filepath"
	"testing"
)

func TestDriverInfo(t *testing.T) {
	name := DriverName()
	if name != "sqlite" && name != "sqlite3" {
		t.Errorf("DriverName() = %q", name)
	}
	typ := DriverType()
	if typ != "purego" && typ != "cgo" {
		t.Errorf("DriverType() = %q", typ)
	}
	if IsCGO() != (typ == "cgo") {
		t.Error("IsCGO() disagrees with DriverType()")
	}
}

func TestOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE verses (book_number INTEGER, chapter INTEGER, verse TEXT, text TEXT)"); err != nil {
		t.Fatalf("CREATE TABLE failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO verses VALUES (1, 1, '1', 'In the beginning')"); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}

	var text string
	if err := db.QueryRow("SELECT text FROM verses WHERE book_number = 1").Scan(&text); err != nil {
		t.Fatalf("SELECT failed: %v", err)
	}
	if text != "In the beginning" {
		t.Errorf("text = %q", text)
	}
}

func TestOpenReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.db")

	db := MustOpen(path)
	if _, err := db.Exec("CREATE TABLE info (name TEXT, value TEXT)"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	ro, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly() error: %v", err)
	}
	defer ro.Close()

	var count int
	if err := ro.QueryRow("SELECT COUNT(*) FROM info").Scan(&count); err != nil {
		t.Fatalf("SELECT through read-only handle failed: %v", err)
	}
	if _, err := ro.Exec("INSERT INTO info VALUES ('a', 'b')"); err == nil {
		t.Error("INSERT on read-only database succeeded, want failure")
	}
}
