package bible

// ExtractTexts returns the verses a resolved query denotes, in original
// chapter order. Three policies share one scan:
//
//   - single verse and sub-range queries process only the first chapter;
//   - cross-chapter queries take the tail of the first chapter (from
//     Verse1 to the chapter's highest verse number), every complete
//     intermediate chapter, and the head of the last chapter (up to
//     Verse2).
//
// An empty result is not an error: a well-formed reference that resolves
// to zero verses is indistinguishable from a typo at this layer, and
// callers decide how to surface it. Returned verses carry chapter and book
// back-references.
func (b *Bible) ExtractTexts(q Query) ([]*Verse, error) {
	if q.Book < 0 || q.Book >= len(b.Books) {
		return nil, nil
	}
	if err := b.EnsureLoaded(q.Book); err != nil {
		return nil, err
	}

	book := b.Books[q.Book]
	var out []*Verse

	for _, ch := range book.Chapters {
		if ch.Number < q.Chapter1 {
			continue
		}

		if q.SingleChapter() {
			if ch.Number != q.Chapter1 {
				continue
			}
			out = append(out, collect(ch, book, q.Verse1, q.Verse2)...)
			break
		}

		if ch.Number > q.Chapter2 {
			break
		}

		switch {
		case ch.Number == q.Chapter2:
			out = append(out, collect(ch, book, 1, q.Verse2)...)
		case ch.Number == q.Chapter1:
			out = append(out, collect(ch, book, q.Verse1, ch.MaxVerseNumber())...)
		default:
			out = append(out, collect(ch, book, 1, ch.MaxVerseNumber())...)
		}
	}

	return out, nil
}

// collect gathers the chapter's verses matching [low, high] and stamps
// their back-references.
func collect(ch *Chapter, book *Book, low, high int) []*Verse {
	var out []*Verse
	for _, v := range ch.Verses {
		if v.Number.InRange(low, high) {
			v.ChapterRef = ch
			v.BookRef = book
			out = append(out, v)
		}
	}
	return out
}

// Extract resolves a free-text reference and extracts its verses in one
// call. found is false when the book name is unknown to this corpus.
func (b *Bible) Extract(text string) (verses []*Verse, found bool, err error) {
	q, found, err := b.Resolve(text)
	if err != nil || !found {
		return nil, found, err
	}
	verses, err = b.ExtractTexts(q)
	return verses, true, err
}
