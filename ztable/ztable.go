// Package ztable implements the VAR opcodes that operate directly on raw
// memory ranges rather than the structured object/property model:
// scan_table, copy_table, and print_table (spec.md S4.5).
package ztable

import "github.com/oliverhutch/goz/zcore"

// Scan searches length fields starting at addr for one equal to test.
// form's low 7 bits give the field size in bytes; bit 7 set means compare
// as a 16-bit word, clear means compare as a byte (zero-extended, so a
// multi-byte test value never matches a byte field). Returns the address
// of the first matching field, or 0 if none is found.
func Scan(m *zcore.Memory, test uint16, addr uint32, length uint16, form uint16) uint32 {
	fieldSize := form & 0b0111_1111
	asWord := form&0b1000_0000 != 0
	if fieldSize == 0 {
		return 0
	}

	ptr := addr
	for i := uint16(0); i < length; i++ {
		var value uint16
		if asWord {
			value = m.ReadWord(ptr)
		} else {
			value = uint16(m.ReadByte(ptr))
		}
		if value == test {
			return ptr
		}
		ptr += uint32(fieldSize)
	}
	return 0
}

// Copy copies |size| bytes from first to second, or zeroes |size| bytes at
// first when second is 0. A non-negative size copies via an intermediate
// buffer so overlapping source/destination ranges read as if they were
// disjoint; a negative size copies byte-by-byte in ascending order,
// permitting the in-place shift that a negative size exists to request.
func Copy(m *zcore.Memory, first, second uint32, size int16) {
	sizeAbs := uint16(size)
	if size < 0 {
		sizeAbs = uint16(-size)
	}

	switch {
	case second == 0:
		for i := uint16(0); i < sizeAbs; i++ {
			_ = m.WriteByte(first+uint32(i), 0)
		}

	case size >= 0:
		tmp := make([]uint8, sizeAbs)
		copy(tmp, m.ReadSlice(first, first+uint32(sizeAbs)))
		for i, b := range tmp {
			_ = m.WriteByte(second+uint32(i), b)
		}

	default:
		for i := uint16(0); i < sizeAbs; i++ {
			_ = m.WriteByte(second+uint32(i), m.ReadByte(first+uint32(i)))
		}
	}
}

// Print renders the width-by-height character rectangle at addr as text,
// skip bytes of stride padding beyond width on every row; emit receives
// each character in turn and newline is called between rows.
func Print(m *zcore.Memory, addr uint32, width, height, skip uint16, emit func(byte), newline func()) {
	if height == 0 {
		height = 1
	}
	stride := uint32(width) + uint32(skip)
	for row := uint16(0); row < height; row++ {
		if row > 0 {
			newline()
		}
		rowAddr := addr + uint32(row)*stride
		for col := uint16(0); col < width; col++ {
			emit(m.ReadByte(rowAddr + uint32(col)))
		}
	}
}
