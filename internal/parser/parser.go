// Package parser implements the lexical normalization FSM: it reads the
// Corpus's original buffer once and produces a processed byte stream plus
// the Bookmarks the Finder will sort and compare. In code mode comments,
// whitespace and skipped directive lines (`#...`, `import`, `using`) are
// dropped, while string/char literals are kept, so that byte-for-byte
// comparison of the processed stream is meaningful for duplicate detection.
package parser

import (
	"github.com/standardbeagle/dupfind/internal/bookmark"
	"github.com/standardbeagle/dupfind/internal/corpus"
)

// Parser runs the normalization FSM over a Corpus and owns the resulting
// processed buffer. A Parser is used once per Parse call; construct a new
// one per corpus.
type Parser struct {
	wordMode        bool
	processed       []byte
	bookmarks       []bookmark.Bookmark
	pendingBookmark bool
}

// New creates a Parser. wordMode selects prose normalization (whitespace
// collapsing, word-start bookmarks) instead of code normalization.
func New(wordMode bool) *Parser {
	return &Parser{wordMode: wordMode}
}

// Parse runs the FSM over c's original buffer and returns the processed
// buffer and the bookmarks emitted while producing it. State resets to its
// initial value at each file boundary (the SPECIAL_EOF sentinel forces
// this), so language dispatch never leaks across files.
func (p *Parser) Parse(c *corpus.Corpus) ([]byte, []bookmark.Bookmark) {
	p.processed = make([]byte, 0, c.TotalLength())
	p.bookmarks = nil
	p.pendingBookmark = true

	original := c.Original()
	start := 0
	for _, f := range c.Files() {
		if f.Name == "" {
			// The bounds-stop record added by AddSentinelRecord; no bytes
			// belong to it.
			continue
		}
		end := f.EndOffset
		lang := LangAll
		if !p.wordMode {
			lang = LanguageForFile(f.Name)
		}

		st := p.initialState()
		for i := start; i < end; i++ {
			b := original[i]
			switch {
			case b == 0x00:
				continue
			case b == corpus.SpecialEOF:
				p.appendRaw(b)
				st = p.initialState()
				p.armBookmark()
			case p.wordMode:
				st = p.stepWord(st, b, i)
			default:
				st = p.step(lang, st, original, i, end)
			}
		}
		start = end
	}

	p.processed = append(p.processed, 0x00)
	return p.processed, p.bookmarks
}

// initialState is always stNormal, in word mode too: a file (or the text
// following a SPECIAL_EOF) doesn't start with an implied leading space just
// because word mode collapses whitespace runs once one is actually seen.
func (p *Parser) initialState() state {
	return stNormal
}

func (p *Parser) armBookmark() { p.pendingBookmark = true }

func (p *Parser) appendRaw(b byte) { p.processed = append(p.processed, b) }

// emit appends b to the processed buffer at logical original position
// origIdx. If a bookmark is pending (armed by a previous ADD_BOOKMARK, by
// construction start, or by a file boundary) it is created here, pointing at
// the position b is about to occupy, and the pending flag is cleared: a
// bookmark always lands on the first emitted character following the event
// that armed it.
func (p *Parser) emit(origIdx int, b byte) {
	if p.pendingBookmark {
		p.bookmarks = append(p.bookmarks, bookmark.New(origIdx, len(p.processed)))
		p.pendingBookmark = false
	}
	p.processed = append(p.processed, b)
}

// emitNoBookmark appends b without consuming a pending bookmark. Used only
// for the '}' special case in normalSpecialCase, which never starts a
// bookmark even when one is pending.
func (p *Parser) emitNoBookmark(b byte) {
	p.processed = append(p.processed, b)
}

// step advances the code-mode FSM by one byte at original[i], returning the
// next state. end bounds the current file's region, for the keyword
// lookahead in normalSpecialCase.
func (p *Parser) step(lang Language, st state, original []byte, i, end int) state {
	b := original[i]
	switch st {
	case stNormal:
		return p.stepNormal(lang, original, i, end)

	case stCommentStart:
		switch b {
		case '*':
			return stCComment
		case '/':
			return stSkipToEOL
		default:
			// ADD_SLASH_AND_CHAR: the '/' that opened COMMENT_START was
			// never emitted; emit it now at its own position, then the
			// current byte if it isn't whitespace.
			p.emit(i-1, '/')
			if !isLineWhitespace(b) {
				p.emit(i, b)
			}
			return stNormal
		}

	case stCComment:
		if b == '*' {
			return stCCommentEnd
		}
		return stCComment
	case stCCommentEnd:
		switch b {
		case '/':
			return stNormal
		case '*':
			return stCCommentEnd
		default:
			return stCComment
		}

	case stDoubleQuote:
		switch b {
		case '\\':
			p.emit(i, b)
			return stEscapeDouble
		case '"':
			p.emit(i, b)
			return stNormal
		case '\n':
			// An unterminated literal: treat the bare newline as ending it
			// rather than folding it into the string body.
			p.armBookmark()
			return stNormal
		default:
			p.emit(i, b)
			return stDoubleQuote
		}
	case stEscapeDouble:
		p.emit(i, b)
		return stDoubleQuote

	case stSingleQuote:
		switch b {
		case '\\':
			p.emit(i, b)
			return stEscapeSingle
		case '\'':
			p.emit(i, b)
			return stNormal
		case '\n':
			p.armBookmark()
			return stNormal
		default:
			p.emit(i, b)
			return stSingleQuote
		}
	case stEscapeSingle:
		p.emit(i, b)
		return stSingleQuote

	case stSkipToEOL:
		if b == '\n' {
			p.armBookmark()
			return stNormal
		}
		return stSkipToEOL

	case stRegexp:
		switch b {
		case '/':
			return stSkipToEOL
		case '*':
			return stCComment
		case '\n':
			p.emit(i, b)
			return stNormal
		default:
			p.emit(i, b)
			return stRegexp
		}

	case stDoubleQuote1:
		switch b {
		case '"':
			return stDoubleQuote2
		case '\\':
			p.emit(i, b)
			return stEscapeDouble
		case '\n':
			p.armBookmark()
			return stNormal
		default:
			p.emit(i, b)
			return stDoubleQuote
		}
	case stDoubleQuote2:
		if b == '"' {
			return stDoubleQuote3
		}
		// Two quotes in a row closed an ordinary empty string; this byte
		// resumes normal code scanning.
		return p.stepNormal(lang, original, i, end)
	case stDoubleQuote3:
		if b == '"' {
			return stDoubleQuote4
		}
		return stDoubleQuote3
	case stDoubleQuote4:
		if b == '"' {
			return stDoubleQuote5
		}
		return stDoubleQuote3
	case stDoubleQuote5:
		if b == '"' {
			return stNormal
		}
		return stDoubleQuote3

	case stSingleQuote1:
		switch b {
		case '\'':
			return stSingleQuote2
		case '\\':
			p.emit(i, b)
			return stEscapeSingle
		case '\n':
			p.armBookmark()
			return stNormal
		default:
			p.emit(i, b)
			return stSingleQuote
		}
	case stSingleQuote2:
		if b == '\'' {
			return stSingleQuote3
		}
		return p.stepNormal(lang, original, i, end)
	case stSingleQuote3:
		if b == '\'' {
			return stSingleQuote4
		}
		return stSingleQuote3
	case stSingleQuote4:
		if b == '\'' {
			return stSingleQuote5
		}
		return stSingleQuote3
	case stSingleQuote5:
		if b == '\'' {
			return stNormal
		}
		return stSingleQuote3
	}
	return stNormal
}

// stepNormal applies the language-dispatch rules for state NORMAL, falling
// through to normalSpecialCase when nothing language-specific matches.
func (p *Parser) stepNormal(lang Language, original []byte, i, end int) state {
	b := original[i]
	switch b {
	case '\n':
		p.armBookmark()
		return stNormal
	case '/':
		if lang == LangScript {
			p.emit(i, b)
			return stRegexp
		}
		return stCommentStart
	case '"':
		if lang == LangPython {
			return stDoubleQuote1
		}
		p.emit(i, b)
		return stDoubleQuote
	case '\'':
		if lang == LangPython {
			return stSingleQuote1
		}
		p.emit(i, b)
		return stSingleQuote
	case '%':
		if lang == LangErlang {
			return stSkipToEOL
		}
	case '#':
		if lang == LangErlang {
			p.emit(i, b)
			return stNormal
		}
	}
	return p.normalSpecialCase(original, i, end)
}

// normalSpecialCase is the NORMAL-state fallback: it decides whether a
// non-whitespace byte starts a new bookmark, is a preprocessor/import-style
// line to skip, or is plain content.
func (p *Parser) normalSpecialCase(original []byte, i, end int) state {
	b := original[i]
	if isWhitespace(b) {
		return stNormal
	}
	if b == '}' {
		p.emitNoBookmark(b)
		return stNormal
	}
	if p.pendingBookmark {
		if b == '#' || matchesKeyword(original, i, end, "import") || matchesKeyword(original, i, end, "using") {
			return stSkipToEOL
		}
	}
	p.emit(i, b)
	return stNormal
}

// stepWord advances the word-mode FSM: whitespace collapses to a single
// space, and every new word starts a bookmark at its first byte.
func (p *Parser) stepWord(st state, b byte, i int) state {
	if isLineWhitespace(b) {
		p.armBookmark()
		return stSpace
	}
	if st == stSpace {
		p.appendRaw(' ')
	}
	p.emit(i, b)
	return stNormal
}

// matchesKeyword reports whether original[i:i+len(kw)] equals kw, without
// reading past end (the current file's region).
func matchesKeyword(original []byte, i, end int, kw string) bool {
	if i+len(kw) > end {
		return false
	}
	for k := 0; k < len(kw); k++ {
		if original[i+k] != kw[k] {
			return false
		}
	}
	return true
}
