// Package canon provides the fixed 66-book Protestant canon table.
// The table is a structural prior: storage backends whose true extent is
// not self-describing probe outward from these counts.
package canon

// Testament identifies which testament a book belongs to.
type Testament int

// Testament constants.
const (
	OldTestament Testament = iota
	NewTestament
)

// String returns the testament name.
func (t Testament) String() string {
	if t == NewTestament {
		return "New Testament"
	}
	return "Old Testament"
}

// oldTestamentBooks is the number of books before the testament boundary.
const oldTestamentBooks = 39

// Entry describes one canonical book.
type Entry struct {
	// Index is the zero-based position within the canon.
	Index int

	// ID is the OSIS book identifier (e.g. "Gen", "Matt", "1John").
	ID string

	// Name is the English long name.
	Name string

	// Chapters is the canonical chapter count.
	Chapters int
}

// Testament returns the testament the entry falls in (Index < 39 means old).
func (e Entry) Testament() Testament {
	if e.Index < oldTestamentBooks {
		return OldTestament
	}
	return NewTestament
}

// books is the process-wide canon table. Initialized once, never mutated.
var books = []Entry{
	{0, "Gen", "Genesis", 50},
	{1, "Exod", "Exodus", 40},
	{2, "Lev", "Leviticus", 27},
	{3, "Num", "Numbers", 36},
	{4, "Deut", "Deuteronomy", 34},
	{5, "Josh", "Joshua", 24},
	{6, "Judg", "Judges", 21},
	{7, "Ruth", "Ruth", 4},
	{8, "1Sam", "1 Samuel", 31},
	{9, "2Sam", "2 Samuel", 24},
	{10, "1Kgs", "1 Kings", 22},
	{11, "2Kgs", "2 Kings", 25},
	{12, "1Chr", "1 Chronicles", 29},
	{13, "2Chr", "2 Chronicles", 36},
	{14, "Ezra", "Ezra", 10},
	{15, "Neh", "Nehemiah", 13},
	{16, "Esth", "Esther", 10},
	{17, "Job", "Job", 42},
	{18, "Ps", "Psalms", 150},
	{19, "Prov", "Proverbs", 31},
	{20, "Eccl", "Ecclesiastes", 12},
	{21, "Song", "Song of Solomon", 8},
	{22, "Isa", "Isaiah", 66},
	{23, "Jer", "Jeremiah", 52},
	{24, "Lam", "Lamentations", 5},
	{25, "Ezek", "Ezekiel", 48},
	{26, "Dan", "Daniel", 12},
	{27, "Hos", "Hosea", 14},
	{28, "Joel", "Joel", 3},
	{29, "Amos", "Amos", 9},
	{30, "Obad", "Obadiah", 1},
	{31, "Jonah", "Jonah", 4},
	{32, "Mic", "Micah", 7},
	{33, "Nah", "Nahum", 3},
	{34, "Hab", "Habakkuk", 3},
	{35, "Zeph", "Zephaniah", 3},
	{36, "Hag", "Haggai", 2},
	{37, "Zech", "Zechariah", 14},
	{38, "Mal", "Malachi", 4},
	{39, "Matt", "Matthew", 28},
	{40, "Mark", "Mark", 16},
	{41, "Luke", "Luke", 24},
	{42, "John", "John", 21},
	{43, "Acts", "Acts", 28},
	{44, "Rom", "Romans", 16},
	{45, "1Cor", "1 Corinthians", 16},
	{46, "2Cor", "2 Corinthians", 13},
	{47, "Gal", "Galatians", 6},
	{48, "Eph", "Ephesians", 6},
	{49, "Phil", "Philippians", 4},
	{50, "Col", "Colossians", 4},
	{51, "1Thess", "1 Thessalonians", 5},
	{52, "2Thess", "2 Thessalonians", 3},
	{53, "1Tim", "1 Timothy", 6},
	{54, "2Tim", "2 Timothy", 4},
	{55, "Titus", "Titus", 3},
	{56, "Phlm", "Philemon", 1},
	{57, "Heb", "Hebrews", 13},
	{58, "Jas", "James", 5},
	{59, "1Pet", "1 Peter", 5},
	{60, "2Pet", "2 Peter", 3},
	{61, "1John", "1 John", 5},
	{62, "2John", "2 John", 1},
	{63, "3John", "3 John", 1},
	{64, "Jude", "Jude", 1},
	{65, "Rev", "Revelation", 22},
}

// TestamentAt returns the testament for a zero-based book position. It
// also serves positions beyond the table, which extent-probing backends
// can produce: anything past the canon falls in the New Testament.
func TestamentAt(index int) Testament {
	if index < oldTestamentBooks {
		return OldTestament
	}
	return NewTestament
}

// BookCount returns the number of books in the canon.
func BookCount() int {
	return len(books)
}

// Book returns the entry at the given zero-based index.
func Book(index int) (Entry, bool) {
	if index < 0 || index >= len(books) {
		return Entry{}, false
	}
	return books[index], true
}

// ChapterCount returns the canonical chapter count for a book index,
// or 0 when the index is out of range.
func ChapterCount(index int) int {
	e, ok := Book(index)
	if !ok {
		return 0
	}
	return e.Chapters
}

// All returns a copy of the canon table in canonical order.
func All() []Entry {
	out := make([]Entry, len(books))
	copy(out, books)
	return out
}

// ByID returns the entry with the given OSIS ID.
func ByID(id string) (Entry, bool) {
	for _, e := range books {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}
