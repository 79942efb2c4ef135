// Package zstring implements the Z-machine text codec: ZSCII encode/decode
// and packed Z-character string decoding with alphabet shifts,
// abbreviations, and 10-bit literals (spec.md S4.2).
package zstring

import (
	"strings"

	"github.com/oliverhutch/goz/zcore"
	"github.com/oliverhutch/goz/zerrors"
)

// Decode reads a Z-string starting at addr and returns the decoded text
// plus the number of bytes consumed (always 2 * the number of 16-bit
// words read, regardless of how much text abbreviations expanded it to).
func Decode(m *zcore.Memory, addr uint32, alphabets *Alphabets) (string, uint32, error) {
	return decode(m, addr, alphabets, true)
}

func decode(m *zcore.Memory, addr uint32, alphabets *Alphabets, allowAbbreviations bool) (string, uint32, error) {
	var zchars []uint8
	ptr := addr
	var wordsRead uint32

	for {
		word := m.ReadWord(ptr)
		ptr += 2
		wordsRead++
		zchars = append(zchars, uint8((word>>10)&0x1f), uint8((word>>5)&0x1f), uint8(word&0x1f))
		if word&0x8000 != 0 {
			break
		}
	}
	bytesConsumed := wordsRead * 2

	version := alphabets.version
	var sb strings.Builder
	base := A0
	var oneShot *Alphabet

	i := 0
	for i < len(zchars) {
		c := zchars[i]
		current := base
		if oneShot != nil {
			current = *oneShot
		}

		switch {
		case c == 0:
			sb.WriteByte(' ')
			oneShot = nil
			i++

		case c == 1:
			if version == 1 {
				sb.WriteByte('\n')
				oneShot = nil
				i++
				break
			}
			if !allowAbbreviations {
				return "", 0, zerrors.InvalidOperation("nested abbreviation reference")
			}
			if i+1 >= len(zchars) {
				return "", 0, zerrors.InvalidOperation("truncated abbreviation reference")
			}
			str, err := decodeAbbreviation(m, alphabets, 1, zchars[i+1])
			if err != nil {
				return "", 0, err
			}
			sb.WriteString(str)
			oneShot = nil
			i += 2

		case c == 2 || c == 3:
			if version <= 2 {
				delta := Alphabet(1)
				if c == 3 {
					delta = 2
				}
				a := Alphabet((int(base) + int(delta)) % 3)
				oneShot = &a
				i++
				break
			}
			if !allowAbbreviations {
				return "", 0, zerrors.InvalidOperation("nested abbreviation reference")
			}
			if i+1 >= len(zchars) {
				return "", 0, zerrors.InvalidOperation("truncated abbreviation reference")
			}
			table := 2
			if c == 3 {
				table = 3
			}
			str, err := decodeAbbreviation(m, alphabets, table, zchars[i+1])
			if err != nil {
				return "", 0, err
			}
			sb.WriteString(str)
			oneShot = nil
			i += 2

		case c == 4 || c == 5:
			delta := Alphabet(1)
			if c == 5 {
				delta = 2
			}
			if version <= 2 {
				base = Alphabet((int(base) + int(delta)) % 3)
				oneShot = nil
			} else {
				a := Alphabet((int(base) + int(delta)) % 3)
				oneShot = &a
			}
			i++

		default:
			if current == A2 && c == 6 {
				if i+2 >= len(zchars) {
					return "", 0, zerrors.InvalidOperation("truncated 10-bit ZSCII literal")
				}
				zsc := (zchars[i+1] << 5) | zchars[i+2]
				r, err := zsciiToRune(zsc, m)
				if err != nil {
					return "", 0, err
				}
				sb.WriteRune(r)
				oneShot = nil
				i += 3
			} else if current == A2 && c == 7 && version >= 2 {
				sb.WriteByte('\n')
				oneShot = nil
				i++
			} else if int(c) >= 6 && int(c)-6 < 26 {
				sb.WriteByte(alphabets.char(current, int(c)-6))
				oneShot = nil
				i++
			} else {
				return "", 0, zerrors.InvalidOperation("Z-character %d out of range for alphabet", c)
			}
		}
	}

	return sb.String(), bytesConsumed, nil
}

// decodeAbbreviation resolves a (table, index) abbreviation reference
// (spec.md S4.2 "Abbreviation table entry") and decodes the string it
// points to, disallowing further nested abbreviations.
func decodeAbbreviation(m *zcore.Memory, alphabets *Alphabets, table int, index uint8) (string, error) {
	if m.AbbreviationTableBase == 0 {
		return "", zerrors.InvalidOperation("abbreviation reference with no abbreviation table present")
	}
	entryAddr := m.AbbreviationTableBase + 2*uint32(32*(table-1)+int(index))
	strAddr := uint32(m.ReadWord(entryAddr)) * 2
	str, _, err := decode(m, strAddr, alphabets, false)
	return str, err
}

// zsciiToRune resolves a ZSCII byte (spec.md S3 "ZSCII") to the rune it
// represents for display purposes.
func zsciiToRune(code uint8, m *zcore.Memory) (rune, error) {
	switch {
	case code == 13:
		return '\n', nil
	case code >= 32 && code <= 126:
		return rune(code), nil
	case code >= 155 && code <= 223:
		if r, ok := zsciiToUnicode(code, m); ok {
			return r, nil
		}
		return 0, zerrors.InvalidOperation("unmapped extended ZSCII code %d", code)
	default:
		return 0, zerrors.InvalidOperation("invalid ZSCII code %d", code)
	}
}

// EncodeZSCII converts a single input rune to its ZSCII code (spec.md S4.2
// "Encoding a character to ZSCII").
func EncodeZSCII(r rune, m *zcore.Memory) (uint8, error) {
	switch {
	case r == '\n':
		return 13, nil
	case r >= 32 && r <= 126:
		return uint8(r), nil
	default:
		if code, ok := unicodeToZscii(r, m); ok {
			return code, nil
		}
		return 0, zerrors.InvalidOperation("Invalid input character")
	}
}

// Encode packs a word into the fixed-width Z-character encoding used for
// dictionary entries: 2 words (4 bytes, 6 z-characters) for v1-3, 3 words
// (6 bytes, 9 z-characters) for v4+. Characters with no direct alphabet
// slot fall back to the A2 10-bit ZSCII literal escape. The z-character
// stream is padded with 5 (the standard's pad character) and truncated to
// fit, matching how a real dictionary truncates over-long input words.
func Encode(word []rune, m *zcore.Memory, alphabets *Alphabets) []byte {
	zchrLen := 6
	if m.Version > 3 {
		zchrLen = 9
	}

	var zchars []uint8
	for _, r := range word {
		if len(zchars) >= zchrLen {
			break
		}
		zchars = append(zchars, encodeRune(r, alphabets)...)
	}
	if len(zchars) > zchrLen {
		zchars = zchars[:zchrLen]
	}
	for len(zchars) < zchrLen {
		zchars = append(zchars, 5)
	}

	out := make([]byte, 0, zchrLen/3*2)
	for i := 0; i < len(zchars); i += 3 {
		word := uint16(zchars[i])<<10 | uint16(zchars[i+1])<<5 | uint16(zchars[i+2])
		if i+3 >= len(zchars) {
			word |= 0x8000
		}
		out = append(out, byte(word>>8), byte(word))
	}
	return out
}

// encodeRune finds the shortest z-character sequence representing r: a
// direct A0 slot, a one-shot-shifted A1/A2 slot, or (failing both) the A2
// 10-bit ZSCII literal escape.
func encodeRune(r rune, alphabets *Alphabets) []uint8 {
	b := byte(r)
	if r < 128 {
		for i, ch := range alphabets.a0 {
			if ch == b {
				return []uint8{uint8(i + 6)}
			}
		}
		for i, ch := range alphabets.a1 {
			if ch == b {
				return []uint8{4, uint8(i + 6)}
			}
		}
		for i, ch := range alphabets.a2 {
			if ch == b && i != 0 {
				return []uint8{5, uint8(i + 6)}
			}
		}
	}

	zsc := uint8(r)
	if r > 255 || r < 0 {
		zsc = '?'
	}
	return []uint8{5, 6, zsc >> 5, zsc & 0x1f}
}
