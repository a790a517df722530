// Package zefania reads Bible corpora in the Zefania XML dialect.
//
// A corpus is a single XML file rooted at XMLBIBLE, holding one BIBLEBOOK
// element per book with CHAPTER and VERS children. The whole document tree
// is parsed once at open time, but books are converted into the aggregate
// model lazily, one BIBLEBOOK subtree per read.
package zefania

import (
	"bytes"
	"encoding/hex"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/VerseKit/core/bible"
	"github.com/FocuswithJustin/VerseKit/core/canon"
	verrors "github.com/FocuswithJustin/VerseKit/core/errors"
	"github.com/FocuswithJustin/VerseKit/core/xml"
	"github.com/FocuswithJustin/VerseKit/internal/langdetect"
	"github.com/FocuswithJustin/VerseKit/internal/logging"
)

const formatName = "zefania"

// Options configures corpus opening.
type Options struct {
	// Detector derives the corpus language from the first book's first
	// verse when the document declares none. Nil skips detection and the
	// language defaults to English.
	Detector langdetect.Detector

	// Eager converts every book at open time; the returned Bible then
	// holds no Reader.
	Eager bool
}

// Reader converts BIBLEBOOK subtrees into the aggregate model on demand.
type Reader struct {
	doc      *xml.Document
	bnumbers []int // document-order book index to bnumber attribute
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Open opens a Zefania XML corpus file. A file that is missing, not XML,
// or not rooted at XMLBIBLE is not this format: Open returns (nil, nil) so
// callers can try the next candidate format.
func Open(path string, opts Options) (*bible.Bible, error) {
	if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		if err != nil && !os.IsNotExist(err) {
			return nil, verrors.NewIO("stat", path, err)
		}
		logging.FormatRejected(formatName, path, "not a file")
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, verrors.NewIO("read", path, err)
	}

	doc, err := xml.Parse(bytes.TrimPrefix(raw, utf8BOM))
	if err != nil {
		logging.FormatRejected(formatName, path, "not well-formed xml")
		return nil, nil
	}
	root := doc.Root()
	if root == nil || root.Name() != "XMLBIBLE" {
		logging.FormatRejected(formatName, path, "root is not XMLBIBLE")
		return nil, nil
	}

	bookNodes, err := doc.XPath("//XMLBIBLE/BIBLEBOOK")
	if err != nil {
		return nil, verrors.NewParse(formatName, path, err.Error())
	}

	books := make([]*bible.Book, 0, len(bookNodes))
	bnumbers := make([]int, 0, len(bookNodes))
	for _, node := range bookNodes {
		bnumber, err := strconv.Atoi(node.Attr("bnumber"))
		if err != nil {
			logging.FormatRejected(formatName, path, "BIBLEBOOK without a numeric bnumber")
			return nil, nil
		}
		name := node.Attr("bname")
		short := node.Attr("bsname")
		if name == "" {
			if entry, ok := canon.Book(bnumber - 1); ok {
				name = entry.Name
				if short == "" {
					short = entry.ID
				}
			}
		}
		books = append(books, &bible.Book{
			Name:      name,
			ShortName: short,
			Testament: canon.TestamentAt(bnumber - 1),
		})
		bnumbers = append(bnumbers, bnumber)
	}

	rdr := &Reader{doc: doc, bnumbers: bnumbers}

	name := root.Attr("biblename")
	if name == "" {
		if title, _ := doc.XPathFirst("//XMLBIBLE/INFORMATION/title"); title != nil {
			name = strings.TrimSpace(title.InnerText())
		}
	}

	language := ""
	if lang, _ := doc.XPathFirst("//XMLBIBLE/INFORMATION/language"); lang != nil {
		language = strings.ToLower(strings.TrimSpace(lang.InnerText()))
	}
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
	b := bible.New(name, language, books, borrowed,
		bible.WithSourceHash(hex.EncodeToString(sum[:])))

	logging.CorpusOpened(formatName, b.Name, b.Language, len(books),
		"corpus_id", b.InstanceID)
	return b, nil
}

// ReadBook implements bible.Reader: walk the book's BIBLEBOOK subtree and
// append its chapters in ascending cnumber order. VERS children become
// numbered verses; CAPTION children become descriptive lines with an
// absent label.
func (r *Reader) ReadBook(b *bible.Book, bookIndex int) error {
	start := time.Now()
	if bookIndex < 0 || bookIndex >= len(r.bnumbers) {
		return verrors.NewNotFound("book", strconv.Itoa(bookIndex))
	}
	bnumber := r.bnumbers[bookIndex]

	node, err := r.doc.XPathFirst(
		"//XMLBIBLE/BIBLEBOOK[@bnumber='" + strconv.Itoa(bnumber) + "']")
	if err != nil {
		return verrors.Wrap(err, "query book")
	}
	if node == nil {
		return verrors.NewNotFound("book", strconv.Itoa(bnumber))
	}

	type numbered struct {
		number int
		node   *xml.Node
	}
	var chapters []numbered
	for _, ch := range node.Children() {
		if ch.Name() != "CHAPTER" {
			continue
		}
		cnumber, err := strconv.Atoi(ch.Attr("cnumber"))
		if err != nil {
			return verrors.NewParse(formatName, b.Name, "CHAPTER without a numeric cnumber")
		}
		chapters = append(chapters, numbered{cnumber, ch})
	}
	sort.Slice(chapters, func(i, j int) bool {
		return chapters[i].number < chapters[j].number
	})

	for _, ch := range chapters {
		chapter := b.AddChapter(ch.number)
		for _, child := range ch.node.Children() {
			switch child.Name() {
			case "VERS":
				chapter.AddVerse(child.Attr("vnumber"), strings.TrimSpace(child.InnerText()))
			case "CAPTION":
				chapter.AddVerse("", strings.TrimSpace(child.InnerText()))
			}
		}
	}

	logging.BookLoaded(b.Name, bookIndex, len(chapters), time.Since(start))
	return nil
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
