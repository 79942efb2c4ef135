package dictionary

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oliverhutch/goz/zcore"
	"github.com/oliverhutch/goz/zstring"
)

func minimalStory() *zcore.Memory {
	buf := make([]uint8, 256)
	buf[0x00] = 3
	binary.BigEndian.PutUint16(buf[0x0e:0x10], 0x80)
	binary.BigEndian.PutUint16(buf[0x04:0x06], 0xc0)
	binary.BigEndian.PutUint16(buf[0x06:0x08], 0xc0)
	binary.BigEndian.PutUint16(buf[0x08:0x0a], 0x40) // dictionary base
	m, err := zcore.Load(buf)
	if err != nil {
		panic(err)
	}
	return m
}

// writeDictionary lays out a v3 dictionary at base: separators, entry
// length, entry count, then count*entryLength bytes of entry data.
func writeDictionary(m *zcore.Memory, base uint32, separators []byte, entryLength uint8, entries [][]byte) {
	_ = m.WriteByte(base, uint8(len(separators)))
	for i, s := range separators {
		_ = m.WriteByte(base+1+uint32(i), s)
	}
	_ = m.WriteByte(base+1+uint32(len(separators)), entryLength)
	_ = m.WriteWord(base+2+uint32(len(separators)), uint16(len(entries)))

	ptr := base + 4 + uint32(len(separators))
	for _, e := range entries {
		for i := uint8(0); i < entryLength; i++ {
			var b uint8
			if int(i) < len(e) {
				b = e[i]
			}
			_ = m.WriteByte(ptr+uint32(i), b)
		}
		ptr += uint32(entryLength)
	}
}

func TestLoadParsesEntries(t *testing.T) {
	m := minimalStory()
	alphabets := zstring.Load(m)

	cat := zstring.Encode([]rune("cat"), m, alphabets)
	dog := zstring.Encode([]rune("dog"), m, alphabets)
	entries := [][]byte{
		append(append([]byte(nil), cat...), 0xaa),
		append(append([]byte(nil), dog...), 0xbb),
	}
	writeDictionary(m, 0x40, []byte(".,"), 5, entries)

	d := Load(m, alphabets)

	require.Equal(t, []byte(".,"), d.Separators)
	require.EqualValues(t, 5, d.EntryLength)
	require.Len(t, d.Entries, 2)
	require.Equal(t, "cat", d.Entries[0].Text)
	require.Equal(t, "dog", d.Entries[1].Text)
	require.EqualValues(t, 0xaa, d.Entries[0].Data[0])
	require.EqualValues(t, 0xbb, d.Entries[1].Data[0])
}

func TestFindAndLookup(t *testing.T) {
	m := minimalStory()
	alphabets := zstring.Load(m)

	cat := zstring.Encode([]rune("cat"), m, alphabets)
	writeDictionary(m, 0x40, []byte("."), 5, [][]byte{cat})

	d := Load(m, alphabets)

	require.Equal(t, d.Entries[0].Address, d.Find(cat))
	require.Zero(t, d.Find([]byte{0, 0, 0, 0}))

	require.Equal(t, d.Entries[0].Address, d.Lookup("cat", m, alphabets))
	require.Zero(t, d.Lookup("zzz", m, alphabets))
}

func TestLoadAtAlternateBase(t *testing.T) {
	m := minimalStory()
	alphabets := zstring.Load(m)

	cat := zstring.Encode([]rune("cat"), m, alphabets)
	writeDictionary(m, 0x60, nil, 4, [][]byte{cat})

	d := LoadAt(m, alphabets, 0x60)
	require.Len(t, d.Entries, 1)
	require.Equal(t, "cat", d.Entries[0].Text)
}

func TestTokenizeSplitsOnWhitespaceAndSeparators(t *testing.T) {
	tokens := Tokenize("take the red, apple.", []byte(",."))

	want := []Token{
		{Text: "take", Start: 0, Length: 4},
		{Text: "the", Start: 5, Length: 3},
		{Text: "red", Start: 9, Length: 3},
		{Text: ",", Start: 12, Length: 1},
		{Text: "apple", Start: 14, Length: 5},
		{Text: ".", Start: 19, Length: 1},
	}

	require.Equal(t, want, tokens)
}

func TestTokenizeIgnoresLeadingAndTrailingSpace(t *testing.T) {
	tokens := Tokenize("  go north  ", nil)
	want := []Token{
		{Text: "go", Start: 2, Length: 2},
		{Text: "north", Start: 5, Length: 5},
	}
	require.Equal(t, want, tokens)
}
