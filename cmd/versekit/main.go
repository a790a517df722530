// Command versekit resolves scripture references against Bible corpora.
// It opens a corpus in any supported storage format, parses a free-text
// reference, and prints the verses the reference denotes.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/VerseKit/core/bible"
	verrors "github.com/FocuswithJustin/VerseKit/core/errors"
	"github.com/FocuswithJustin/VerseKit/core/reference"
	"github.com/FocuswithJustin/VerseKit/internal/formats/flatfile"
	"github.com/FocuswithJustin/VerseKit/internal/formats/sqlitebible"
	"github.com/FocuswithJustin/VerseKit/internal/formats/zefania"
	"github.com/FocuswithJustin/VerseKit/internal/langdetect"
	"github.com/FocuswithJustin/VerseKit/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for versekit.
var CLI struct {
	Format   string `name:"format" short:"f" default:"auto" enum:"auto,flatfile,sqlite,zefania" help:"Corpus storage format (auto, flatfile, sqlite, zefania)"`
	Eager    bool   `name:"eager" help:"Load every book at open time instead of on demand"`
	LogLevel string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log verbosity"`

	Lookup  LookupCmd  `cmd:"" help:"Resolve a reference and print its verses"`
	Info    InfoCmd    `cmd:"" help:"Print corpus metadata"`
	Books   BooksCmd   `cmd:"" help:"List the corpus's books"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// openCorpus opens source with the selected format, or tries every format
// in order under auto. Each backend rejects foreign sources with (nil, nil),
// so auto simply takes the first backend that accepts.
func openCorpus(source string) (*bible.Bible, error) {
	detector := &langdetect.Script{}

	type opener struct {
		name string
		open func() (*bible.Bible, error)
	}
	openers := []opener{
		{"flatfile", func() (*bible.Bible, error) {
			return flatfile.Open(source, flatfile.Options{Detector: detector, Eager: CLI.Eager})
		}},
		{"sqlite", func() (*bible.Bible, error) {
			return sqlitebible.Open(source, sqlitebible.Options{Detector: detector, Eager: CLI.Eager})
		}},
		{"zefania", func() (*bible.Bible, error) {
			return zefania.Open(source, zefania.Options{Detector: detector, Eager: CLI.Eager})
		}},
	}

	for _, o := range openers {
		if CLI.Format != "auto" && CLI.Format != o.name {
			continue
		}
		b, err := o.open()
		if err != nil {
			return nil, err
		}
		if b != nil {
			return b, nil
		}
	}
	return nil, verrors.NewFormat(CLI.Format, source, "no storage backend accepted this source")
}

// LookupCmd resolves a reference against a corpus and prints each verse.
type LookupCmd struct {
	Source    string `arg:"" help:"Corpus path (directory or file)" type:"path"`
	Reference string `arg:"" help:"Scripture reference, e.g. \"Genesis 1:1-2:3\""`
}

func (c *LookupCmd) Run() error {
	b, err := openCorpus(c.Source)
	if err != nil {
		return err
	}

	verses, found, err := b.Extract(c.Reference)
	if err != nil {
		var gerr *reference.GrammarError
		if errors.As(err, &gerr) {
			return fmt.Errorf("cannot parse %q as a scripture reference", c.Reference)
		}
		var rerr *reference.RangeOrderError
		if errors.As(err, &rerr) {
			return fmt.Errorf("reference %q runs backwards", c.Reference)
		}
		return err
	}
	if !found {
		return fmt.Errorf("no book in %s matches %q", b.Name, c.Reference)
	}
	if len(verses) == 0 {
		fmt.Println("no verses matched")
		return nil
	}

	printVerses(os.Stdout, verses)
	return nil
}

func printVerses(w io.Writer, verses []*bible.Verse) {
	for _, v := range verses {
		ref := ""
		if v.BookRef != nil && v.ChapterRef != nil {
			ref = fmt.Sprintf("%s %d", v.BookRef.Name, v.ChapterRef.Number)
			if label := v.Number.String(); label != "" {
				ref += ":" + label
			}
		}
		fmt.Fprintf(w, "%-20s %s\n", ref, v.Text)
	}
}

// InfoCmd prints corpus metadata.
type InfoCmd struct {
	Source string `arg:"" help:"Corpus path (directory or file)" type:"path"`
}

func (c *InfoCmd) Run() error {
	b, err := openCorpus(c.Source)
	if err != nil {
		return err
	}

	fmt.Printf("Name:      %s\n", b.Name)
	fmt.Printf("Language:  %s\n", b.Language)
	fmt.Printf("Books:     %d\n", len(b.Books))
	if b.SourceHash != "" {
		fmt.Printf("Source:    blake3:%s\n", b.SourceHash)
	}
	mode := "eager"
	if b.Lazy() {
		mode = "lazy"
	}
	fmt.Printf("Loading:   %s\n", mode)
	return nil
}

// BooksCmd lists the corpus's books with their loaded chapter counts.
type BooksCmd struct {
	Source string `arg:"" help:"Corpus path (directory or file)" type:"path"`
	Load   bool   `name:"load" help:"Load each book to report its chapter count"`
}

func (c *BooksCmd) Run() error {
	b, err := openCorpus(c.Source)
	if err != nil {
		return err
	}

	for i, book := range b.Books {
		if c.Load {
			if err := b.EnsureLoaded(i); err != nil {
				return err
			}
		}
		line := fmt.Sprintf("%3d  %-30s %s", i+1, book.Name, book.Testament)
		if book.Loaded() {
			line += fmt.Sprintf("  (%d chapters)", len(book.Chapters))
		}
		fmt.Println(line)
	}
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("versekit version %s\n", version)
	return nil
}

func logLevel(name string) logging.Level {
	switch name {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	}
	return logging.LevelInfo
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("versekit"),
		kong.Description("VerseKit - scripture reference resolution over Bible corpora"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	logging.InitLogger(logLevel(CLI.LogLevel), logging.FormatText)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
