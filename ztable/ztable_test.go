package ztable

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oliverhutch/goz/zcore"
)

func minimalStory() *zcore.Memory {
	buf := make([]uint8, 256)
	buf[0x00] = 3
	binary.BigEndian.PutUint16(buf[0x0e:0x10], 0x80)
	binary.BigEndian.PutUint16(buf[0x04:0x06], 0xc0)
	binary.BigEndian.PutUint16(buf[0x06:0x08], 0xc0)
	m, err := zcore.Load(buf)
	if err != nil {
		panic(err)
	}
	return m
}

func TestScanBytes(t *testing.T) {
	m := minimalStory()
	for i, b := range []uint8{1, 2, 3, 4, 5} {
		_ = m.WriteByte(0x40+uint32(i), b)
	}

	require.EqualValues(t, 0x43, Scan(m, 4, 0x40, 5, 1))
	require.Zero(t, Scan(m, 9, 0x40, 5, 1))
}

func TestScanWords(t *testing.T) {
	m := minimalStory()
	_ = m.WriteWord(0x40, 0x0102)
	_ = m.WriteWord(0x42, 0x0304)
	_ = m.WriteWord(0x44, 0x0506)

	require.EqualValues(t, 0x42, Scan(m, 0x0304, 0x40, 3, 0x82))
}

func TestScanByteFieldNeverMatchesMultiByteTest(t *testing.T) {
	m := minimalStory()
	_ = m.WriteByte(0x40, 0x04)

	require.Zero(t, Scan(m, 0x0104, 0x40, 1, 1), "zero-extended byte field should never match a wide test value")
}

func TestCopyDisjointRanges(t *testing.T) {
	m := minimalStory()
	for i, b := range []uint8{10, 20, 30} {
		_ = m.WriteByte(0x40+uint32(i), b)
	}

	Copy(m, 0x40, 0x50, 3)

	for i, want := range []uint8{10, 20, 30} {
		require.EqualValues(t, want, m.ReadByte(0x50+uint32(i)))
	}
}

func TestCopyZeroesWhenSecondIsZero(t *testing.T) {
	m := minimalStory()
	_ = m.WriteByte(0x40, 0xff)
	_ = m.WriteByte(0x41, 0xff)

	Copy(m, 0x40, 0, 2)

	require.Zero(t, m.ReadByte(0x40))
	require.Zero(t, m.ReadByte(0x41))
}

func TestCopyOverlappingBackwardShift(t *testing.T) {
	m := minimalStory()
	for i, b := range []uint8{1, 2, 3, 4} {
		_ = m.WriteByte(0x41+uint32(i), b)
	}

	// negative size with second < first: shift the range left by one byte
	// in place, ascending copy order reads each source byte before the
	// following iteration overwrites it
	Copy(m, 0x41, 0x40, -4)

	want := []uint8{1, 2, 3, 4}
	for i, w := range want {
		require.EqualValues(t, w, m.ReadByte(0x40+uint32(i)))
	}
}

func TestPrintRectangle(t *testing.T) {
	m := minimalStory()
	// 2x2 rectangle with a 1-byte stride gap between rows
	_ = m.WriteByte(0x40, 'a')
	_ = m.WriteByte(0x41, 'b')
	_ = m.WriteByte(0x42, '!')
	_ = m.WriteByte(0x43, 'c')
	_ = m.WriteByte(0x44, 'd')

	var out []byte
	var rows int
	Print(m, 0x40, 2, 2, 1,
		func(b byte) { out = append(out, b) },
		func() { rows++ },
	)

	require.Equal(t, "abcd", string(out))
	require.Equal(t, 1, rows)
}

func TestPrintDefaultsHeightToOne(t *testing.T) {
	m := minimalStory()
	_ = m.WriteByte(0x40, 'x')

	var out []byte
	var rows int
	Print(m, 0x40, 1, 0, 0,
		func(b byte) { out = append(out, b) },
		func() { rows++ },
	)

	require.Equal(t, "x", string(out))
	require.Zero(t, rows)
}
