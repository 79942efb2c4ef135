// Package zcore owns the mutable byte image of a loaded story file: typed
// byte/word accessors, header field decode, address unpacking, the
// checksum, and the three memory regions (dynamic, static, high).
package zcore

import (
	"encoding/binary"

	"github.com/oliverhutch/goz/zerrors"
)

// Maximum story file sizes per version, per spec.md S6.
const (
	maxSizeV1to3 = 128 * 1024
	maxSizeV4to5 = 256 * 1024
	maxSizeV6to7 = 576 * 1024
	maxSizeV8    = 512 * 1024
)

// Memory is the single owner of the story file's byte image. It is passed
// by pointer to every component that needs it rather than being wrapped in
// a cursor object - the decoder and opcode implementations each take
// (memory, &position) at the call site instead of holding a back-reference.
type Memory struct {
	bytes []uint8

	Version uint8

	FlagByte1          uint8
	StatusBarTimeBased bool
	ReleaseNumber      uint16

	HighMemoryBase   uint32
	InitialPC        uint32
	DictionaryBase   uint32
	ObjectTableBase  uint32
	GlobalVarBase    uint32
	StaticMemoryBase uint32

	AbbreviationTableBase uint32
	FileChecksum          uint16

	TerminatingCharTableBase uint32
	AlphabetTableBase        uint32 // v5+ "header extension"/custom alphabet table
	ExtensionTableBase       uint32

	RoutinesOffset uint32 // v7 only: routine packed-address offset, in 8-byte units
	StringOffset   uint32 // v7 only: string packed-address offset, in 8-byte units

	checksumValid bool
}

// Load validates the header (spec.md S4.1) and returns a ready Memory, or
// an InvalidFile/VersionSix error.
func Load(storyFile []uint8) (*Memory, error) {
	if len(storyFile) < 64 {
		return nil, zerrors.InvalidFile("story file too short (%d bytes, need at least 64 for the header)", len(storyFile))
	}

	bytes := make([]uint8, len(storyFile))
	copy(bytes, storyFile)

	version := bytes[0x00]
	switch version {
	case 1, 2, 3, 4, 5, 7, 8:
		// supported
	case 6:
		return nil, zerrors.VersionSix()
	default:
		return nil, zerrors.InvalidFile("unrecognized version byte %d", version)
	}

	var maxSize int
	switch {
	case version <= 3:
		maxSize = maxSizeV1to3
	case version <= 5:
		maxSize = maxSizeV4to5
	case version == 8:
		maxSize = maxSizeV8
	default: // 7
		maxSize = maxSizeV6to7
	}
	if len(bytes) > maxSize {
		return nil, zerrors.InvalidFile("file size %d exceeds version %d maximum of %d", len(bytes), version, maxSize)
	}

	highBase := uint32(binary.BigEndian.Uint16(bytes[0x04:0x06]))
	initialPC := uint32(binary.BigEndian.Uint16(bytes[0x06:0x08]))
	staticBase := uint32(binary.BigEndian.Uint16(bytes[0x0e:0x10]))

	if staticBase < 64 || int(staticBase) >= len(bytes) {
		return nil, zerrors.InvalidFile("static memory base 0x%04x out of range", staticBase)
	}
	if highBase <= staticBase || int(highBase) >= len(bytes) {
		return nil, zerrors.InvalidFile("high memory base 0x%04x out of range (static base 0x%04x)", highBase, staticBase)
	}
	if initialPC < highBase {
		return nil, zerrors.InvalidFile("initial PC 0x%04x below high memory base 0x%04x", initialPC, highBase)
	}

	m := &Memory{
		bytes:                 bytes,
		Version:               version,
		FlagByte1:             bytes[0x01],
		StatusBarTimeBased:    bytes[0x01]&0b0000_0010 != 0,
		ReleaseNumber:         binary.BigEndian.Uint16(bytes[0x02:0x04]),
		HighMemoryBase:        highBase,
		InitialPC:             initialPC,
		DictionaryBase:        uint32(binary.BigEndian.Uint16(bytes[0x08:0x0a])),
		ObjectTableBase:       uint32(binary.BigEndian.Uint16(bytes[0x0a:0x0c])),
		GlobalVarBase:         uint32(binary.BigEndian.Uint16(bytes[0x0c:0x0e])),
		StaticMemoryBase:      staticBase,
		AbbreviationTableBase: uint32(binary.BigEndian.Uint16(bytes[0x18:0x1a])),
		FileChecksum:          binary.BigEndian.Uint16(bytes[0x1c:0x1e]),
	}

	if version >= 5 {
		m.TerminatingCharTableBase = uint32(binary.BigEndian.Uint16(bytes[0x2e:0x30]))
		m.AlphabetTableBase = uint32(binary.BigEndian.Uint16(bytes[0x34:0x36]))
		m.ExtensionTableBase = uint32(binary.BigEndian.Uint16(bytes[0x36:0x38]))
	}
	if version == 7 {
		m.RoutinesOffset = uint32(binary.BigEndian.Uint16(bytes[0x28:0x2a]))
		m.StringOffset = uint32(binary.BigEndian.Uint16(bytes[0x2a:0x2c]))
	}

	m.stampInterpreterFlags()
	m.checksumValid = m.computeChecksum() == m.FileChecksum

	return m, nil
}

// stampInterpreterFlags writes the interpreter-identity and capability
// fields a story file expects to find at load time (S6: interpreter
// number/version, screen geometry, claimed standard revision, and the
// capability flags for split screen / colour / styles).
func (m *Memory) stampInterpreterFlags() {
	m.bytes[0x1e] = 6 // Interpreter number: "IBM PC", closest match to a terminal
	m.bytes[0x1f] = 1 // Interpreter version

	m.bytes[0x20] = 25 // Screen height, lines
	m.bytes[0x21] = 80 // Screen width, characters
	binary.BigEndian.PutUint16(m.bytes[0x22:0x24], 80)
	binary.BigEndian.PutUint16(m.bytes[0x24:0x26], 25)
	m.bytes[0x26] = 1 // Font height, units
	m.bytes[0x27] = 1 // Font width, units

	m.bytes[0x32] = 1 // Standard revision claimed: 1.2
	m.bytes[0x33] = 2

	if m.Version <= 3 {
		m.bytes[0x01] |= 0b0010_0000 // split screen available
	} else {
		// colours(0x01) + bold(0x04) + italic(0x08) + split screen(0x20)
		m.bytes[0x01] |= 0b0010_1101
	}
	m.FlagByte1 = m.bytes[0x01]
}

// FileLength returns the declared length of the story file in bytes, per
// the version-dependent scaling of the header's length word (spec.md S4.1).
// A stated length of zero is treated as "use the actual file length".
func (m *Memory) FileLength() uint32 {
	var scale uint32
	switch {
	case m.Version <= 3:
		scale = 2
	case m.Version <= 5:
		scale = 4
	default:
		scale = 8
	}
	stated := uint32(binary.BigEndian.Uint16(m.bytes[0x1a:0x1c])) * scale
	if stated == 0 {
		return uint32(len(m.bytes))
	}
	return stated
}

func (m *Memory) computeChecksum() uint16 {
	length := m.FileLength()
	if length > uint32(len(m.bytes)) {
		length = uint32(len(m.bytes))
	}
	var sum uint16
	for ix := uint32(0x40); ix < length; ix++ {
		sum += uint16(m.bytes[ix])
	}
	return sum
}

// Verify reports whether the header checksum matches the computed sum of
// bytes 0x40..file_length, mod 65536. Computed once at load time since the
// dynamic-memory region that would affect the sum only grows via writes
// the interpreter itself performs after loading; Verify answers "does this
// loaded image match the file as shipped", which is the question the
// `verify` opcode exists to ask.
func (m *Memory) Verify() bool {
	return m.checksumValid
}

func (m *Memory) Length() uint32 {
	return uint32(len(m.bytes))
}

// --- region classification (spec.md S3 "Invariants") ---

func (m *Memory) isWritable(addr uint32) bool {
	return addr < m.StaticMemoryBase
}

// --- typed accessors ---

func (m *Memory) ReadByte(addr uint32) uint8 {
	return m.bytes[addr]
}

func (m *Memory) ReadWord(addr uint32) uint16 {
	return binary.BigEndian.Uint16(m.bytes[addr : addr+2])
}

func (m *Memory) ReadSlice(start, end uint32) []uint8 {
	return m.bytes[start:end]
}

// WriteByte writes a single byte. Writes that target static or high memory
// are rejected with InvalidOperation per spec.md S3's memory-region
// invariant; reads are always permitted.
func (m *Memory) WriteByte(addr uint32, value uint8) error {
	if !m.isWritable(addr) {
		return zerrors.InvalidOperation("invalid memory write at 0x%04x (static memory begins at 0x%04x)", addr, m.StaticMemoryBase)
	}
	m.bytes[addr] = value
	return nil
}

func (m *Memory) WriteWord(addr uint32, value uint16) error {
	if !m.isWritable(addr) {
		return zerrors.InvalidOperation("invalid memory write at 0x%04x (static memory begins at 0x%04x)", addr, m.StaticMemoryBase)
	}
	binary.BigEndian.PutUint16(m.bytes[addr:addr+2], value)
	return nil
}

// RestoreImage resets the byte image to original except for bits 0
// (transcript) and 1 (fixed-pitch) of the flags byte at 0x10, as required
// by the `restart` opcode (spec.md S4.7).
func (m *Memory) RestoreImage(original []uint8) {
	preservedFlags := m.bytes[0x10] & 0b0000_0011
	copy(m.bytes, original)
	m.bytes[0x10] = (m.bytes[0x10] &^ 0b0000_0011) | preservedFlags
	m.stampInterpreterFlags()
}

// Snapshot returns a copy of the dynamic memory region (everything below
// static_base), for save_undo.
func (m *Memory) Snapshot() []uint8 {
	out := make([]uint8, m.StaticMemoryBase)
	copy(out, m.bytes[:m.StaticMemoryBase])
	return out
}

// Restore overwrites the dynamic memory region from a prior Snapshot.
func (m *Memory) Restore(dynamic []uint8) {
	copy(m.bytes[:m.StaticMemoryBase], dynamic)
}

// UnpackRoutine expands a packed routine address to a byte address
// (spec.md S3 "Address packing").
func (m *Memory) UnpackRoutine(packed uint32) uint32 {
	return m.unpack(packed, m.RoutinesOffset)
}

// UnpackString expands a packed string address to a byte address.
func (m *Memory) UnpackString(packed uint32) uint32 {
	return m.unpack(packed, m.StringOffset)
}

func (m *Memory) unpack(packed uint32, v7offset uint32) uint32 {
	switch {
	case m.Version < 4:
		return 2 * packed
	case m.Version < 6:
		return 4 * packed
	case m.Version < 8:
		return 4*packed + 8*v7offset
	default: // 8
		return 8 * packed
	}
}
