package zstring

import "github.com/oliverhutch/goz/zcore"

// Alphabet identifies one of the three 26-entry Z-character tables.
type Alphabet int

const (
	A0 Alphabet = 0 // lowercase a-z
	A1 Alphabet = 1 // uppercase A-Z
	A2 Alphabet = 2 // digits and punctuation
)

var a0Default = [26]byte{'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm', 'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z'}
var a1Default = [26]byte{'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z'}

// a2V1 is the version-1-specific A2 table (10.5 is a v1-only special case:
// no newline slot, shifted punctuation set). Index 0 is the escape
// placeholder, as in a2Default.
var a2V1 = [26]byte{' ', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '.', ',', '!', '?', '_', '#', '\'', '"', '/', '\\', '<', '-', ':', '(', ')'}

// a2Default is the v2+ A2 table. Index 0 (z-character 6) is a placeholder
// for the "read 10-bit ZSCII literal" escape in every version; index 1
// (z-character 7) is a newline in v2+ (v1 has no such slot, see a2V1).
var a2Default = [26]byte{' ', '\n', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '.', ',', '!', '?', '_', '#', '\'', '"', '/', '\\', '-', ':', '(', ')'}

// Alphabets holds the three active 26-character tables for a loaded story,
// which are either the built-in defaults or a header-specified custom set
// (v5+, S3 "Alphabet").
type Alphabets struct {
	version uint8
	a0      [26]byte
	a1      [26]byte
	a2      [26]byte
}

// Load builds the Alphabets for a story, reading the header's custom
// alphabet table when the version supports it and one is present.
func Load(m *zcore.Memory) *Alphabets {
	a := &Alphabets{version: m.Version, a0: a0Default, a1: a1Default}

	if m.Version == 1 {
		a.a2 = a2V1
	} else {
		a.a2 = a2Default
	}

	if m.Version >= 5 && m.AlphabetTableBase != 0 {
		base := m.AlphabetTableBase
		for i := 0; i < 26; i++ {
			a.a0[i] = m.ReadByte(base + uint32(i))
			a.a1[i] = m.ReadByte(base + 26 + uint32(i))
			a.a2[i] = m.ReadByte(base + 52 + uint32(i))
		}
		// Slot 6 of A2 stays reserved for the 10-bit ZSCII escape even
		// when the table is overridden - a custom table that wrote
		// something there is a story-file error, not ours to second-guess.
	}

	return a
}

// char returns the raw byte stored in a custom/default table for a given
// alphabet and zero-based slot.
func (a *Alphabets) char(alphabet Alphabet, slot int) byte {
	switch alphabet {
	case A0:
		return a.a0[slot]
	case A1:
		return a.a1[slot]
	default:
		return a.a2[slot]
	}
}
