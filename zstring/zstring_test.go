package zstring

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oliverhutch/goz/zcore"
)

func minimalStory(version uint8, size int) *zcore.Memory {
	buf := make([]uint8, size)
	buf[0x00] = version
	binary.BigEndian.PutUint16(buf[0x0e:0x10], 0x80)
	binary.BigEndian.PutUint16(buf[0x04:0x06], 0xc0)
	binary.BigEndian.PutUint16(buf[0x06:0x08], 0xc0)
	m, err := zcore.Load(buf)
	if err != nil {
		panic(err)
	}
	return m
}

func writeZWord(m *zcore.Memory, addr uint32, z1, z2, z3 uint8, last bool) {
	word := uint16(z1&0x1f)<<10 | uint16(z2&0x1f)<<5 | uint16(z3&0x1f)
	if last {
		word |= 0x8000
	}
	_ = m.WriteWord(addr, word)
}

func TestDecodeLowercaseWord(t *testing.T) {
	m := minimalStory(3, 256)
	alphabets := Load(m)

	// "cab" -> a0 slots: c=2+6=8, a=0+6=6, b=1+6=7
	writeZWord(m, 0x40, 8, 6, 7, true)

	text, consumed, err := Decode(m, 0x40, alphabets)
	require.NoError(t, err)
	require.Equal(t, "cab", text)
	require.EqualValues(t, 2, consumed)
}

func TestDecodeShiftToAlphabetA1(t *testing.T) {
	m := minimalStory(3, 256)
	alphabets := Load(m)

	// shift-to-A1 (4), then 'A' (0+6=6), then space (0)
	writeZWord(m, 0x40, 4, 6, 0, true)

	text, _, err := Decode(m, 0x40, alphabets)
	require.NoError(t, err)
	require.Equal(t, "A ", text)
}

func TestDecodeMultiWordTerminatesOnHighBit(t *testing.T) {
	m := minimalStory(3, 256)
	alphabets := Load(m)

	writeZWord(m, 0x40, 6, 6, 6, false) // "aaa", not terminal
	writeZWord(m, 0x42, 6, 5, 5, true)  // "a", then two pads

	text, consumed, err := Decode(m, 0x40, alphabets)
	require.NoError(t, err)
	require.Equal(t, "aaaa", text)
	require.EqualValues(t, 4, consumed)
}

func TestDecodeAbbreviation(t *testing.T) {
	buf := make([]uint8, 256)
	buf[0x00] = 3
	binary.BigEndian.PutUint16(buf[0x0e:0x10], 0x80)
	binary.BigEndian.PutUint16(buf[0x04:0x06], 0xc0)
	binary.BigEndian.PutUint16(buf[0x06:0x08], 0xc0)
	binary.BigEndian.PutUint16(buf[0x18:0x1a], 0x50)
	m2, err := zcore.Load(buf)
	require.NoError(t, err)
	alphabets := Load(m2)

	// abbreviation table entry (table 1, index 0) word address -> string at byte 0x70
	_ = m2.WriteWord(0x50, 0x70/2)
	writeZWord(m2, 0x70, 6+2, 6+0, 6+19, true) // "cat"

	writeZWord(m2, 0x60, 1, 0, 5, true) // abbreviation ref (table 1, index 0), then pad

	text, _, err := Decode(m2, 0x60, alphabets)
	require.NoError(t, err)
	require.Equal(t, "cat", text)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := minimalStory(3, 256)
	alphabets := Load(m)

	encoded := Encode([]rune("cab"), m, alphabets)
	for i, b := range encoded {
		_ = m.WriteByte(0x40+uint32(i), b)
	}

	text, _, err := Decode(m, 0x40, alphabets)
	require.NoError(t, err)
	// The trailing pad character (5) is a shift code, not a printable
	// character, so it adds no visible output to the decoded text.
	require.Equal(t, "cab", text)
}

func TestEncodeZSCII(t *testing.T) {
	m := minimalStory(3, 256)
	code, err := EncodeZSCII('a', m)
	require.NoError(t, err)
	require.EqualValues(t, 'a', code)

	_, err = EncodeZSCII(rune(0x00), m)
	require.Error(t, err)
}
