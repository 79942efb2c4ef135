// Package dictionary implements the Z-machine dictionary: parsing the
// story's word list and tokenizing player input against it (spec.md S4.4).
package dictionary

import (
	"bytes"
	"unicode"

	"github.com/oliverhutch/goz/zcore"
	"github.com/oliverhutch/goz/zstring"
)

// Entry is one decoded dictionary word.
type Entry struct {
	Address     uint32
	EncodedWord []byte
	Text        string
	Data        []byte
}

// Dictionary is the parsed word list plus its separator set.
type Dictionary struct {
	Separators  []byte
	EntryLength uint8
	Entries     []Entry
}

// Load parses the dictionary at m.DictionaryBase (spec.md S4.4
// "Dictionary layout").
func Load(m *zcore.Memory, alphabets *zstring.Alphabets) *Dictionary {
	return LoadAt(m, alphabets, m.DictionaryBase)
}

// LoadAt parses a dictionary at an arbitrary address, used by the
// `tokenise` opcode's optional alternate-dictionary operand.
func LoadAt(m *zcore.Memory, alphabets *zstring.Alphabets, base uint32) *Dictionary {
	numSeparators := m.ReadByte(base)
	separators := make([]byte, numSeparators)
	for i := range separators {
		separators[i] = m.ReadByte(base + 1 + uint32(i))
	}

	entryLength := m.ReadByte(base + 1 + uint32(numSeparators))
	count := int16(m.ReadWord(base + 2 + uint32(numSeparators)))

	encodedWordLength := uint32(4)
	if m.Version > 3 {
		encodedWordLength = 6
	}

	entryPtr := base + 4 + uint32(numSeparators)
	entries := make([]Entry, 0, count)
	for i := int16(0); i < count; i++ {
		encoded := m.ReadSlice(entryPtr, entryPtr+encodedWordLength)
		text, _, _ := zstring.Decode(m, entryPtr, alphabets)
		entries = append(entries, Entry{
			Address:     entryPtr,
			EncodedWord: append([]byte(nil), encoded...),
			Text:        text,
			Data:        m.ReadSlice(entryPtr+encodedWordLength, entryPtr+uint32(entryLength)),
		})
		entryPtr += uint32(entryLength)
	}

	return &Dictionary{Separators: separators, EntryLength: entryLength, Entries: entries}
}

// Find returns the address of the entry whose encoded word matches
// exactly, or 0 if the word isn't in the dictionary.
func (d *Dictionary) Find(encoded []byte) uint32 {
	for _, e := range d.Entries {
		if bytes.Equal(e.EncodedWord, encoded) {
			return e.Address
		}
	}
	return 0
}

// Lookup encodes word the way the dictionary encodes its own entries and
// looks it up, matching the run-time behaviour of `sread`/`tokenise`.
func (d *Dictionary) Lookup(word string, m *zcore.Memory, alphabets *zstring.Alphabets) uint32 {
	return d.Find(zstring.Encode([]rune(word), m, alphabets))
}

// Token is one word of tokenized input: its text and its position (byte
// offset and length) within the original input buffer.
type Token struct {
	Text   string
	Start  int
	Length int
}

// Tokenize splits text into words on whitespace and the dictionary's
// separator characters, each separator itself forming its own
// single-character token (spec.md S4.4 "Tokenising").
func Tokenize(text string, separators []byte) []Token {
	isSeparator := func(r rune) bool {
		for _, s := range separators {
			if rune(s) == r {
				return true
			}
		}
		return false
	}

	var tokens []Token
	wordStart := -1
	flush := func(end int) {
		if wordStart >= 0 {
			tokens = append(tokens, Token{Text: text[wordStart:end], Start: wordStart, Length: end - wordStart})
			wordStart = -1
		}
	}

	for i, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush(i)
		case isSeparator(r):
			flush(i)
			tokens = append(tokens, Token{Text: string(r), Start: i, Length: len(string(r))})
		default:
			if wordStart < 0 {
				wordStart = i
			}
		}
	}
	flush(len(text))

	return tokens
}
