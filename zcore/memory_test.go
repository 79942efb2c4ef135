package zcore

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// minimalStory builds a byte image large enough to pass header validation:
// static memory base and high memory base placed with enough room between
// them for tests to read/write dynamic memory freely.
func minimalStory(version uint8, size int) []uint8 {
	buf := make([]uint8, size)
	buf[0x00] = version
	binary.BigEndian.PutUint16(buf[0x0e:0x10], 0x80) // static base
	binary.BigEndian.PutUint16(buf[0x04:0x06], 0xc0) // high mem base
	binary.BigEndian.PutUint16(buf[0x06:0x08], 0xc0) // initial PC
	return buf
}

func TestLoadRejectsShortFiles(t *testing.T) {
	_, err := Load(make([]uint8, 10))
	require.Error(t, err)
}

func TestLoadRejectsVersionSix(t *testing.T) {
	buf := minimalStory(6, 256)
	_, err := Load(buf)
	require.Error(t, err)
}

func TestLoadRejectsOversizedFile(t *testing.T) {
	buf := minimalStory(3, maxSizeV1to3+1024)
	_, err := Load(buf)
	require.Error(t, err)
}

func TestLoadRejectsBadMemoryLayout(t *testing.T) {
	buf := minimalStory(3, 256)
	binary.BigEndian.PutUint16(buf[0x04:0x06], 0x20) // high base below static base
	_, err := Load(buf)
	require.Error(t, err)
}

func TestLoadStampsInterpreterFlags(t *testing.T) {
	buf := minimalStory(3, 256)
	m, err := Load(buf)
	require.NoError(t, err)

	require.EqualValues(t, 6, m.ReadByte(0x1e))
	require.EqualValues(t, 1, m.ReadByte(0x1f))
	require.NotZero(t, m.FlagByte1&0b0010_0000, "split-screen flag not set for v3")
}

func TestWriteProtectsStaticAndHighMemory(t *testing.T) {
	buf := minimalStory(3, 256)
	m, err := Load(buf)
	require.NoError(t, err)

	require.NoError(t, m.WriteByte(0x10, 1))
	require.Error(t, m.WriteByte(m.StaticMemoryBase, 1))
}

func TestVerifyChecksum(t *testing.T) {
	buf := minimalStory(3, 256)
	binary.BigEndian.PutUint16(buf[0x1a:0x1c], uint16(len(buf)/2))
	var sum uint16
	for i := 0x40; i < len(buf); i++ {
		sum += uint16(buf[i])
	}
	binary.BigEndian.PutUint16(buf[0x1c:0x1e], sum)

	m, err := Load(buf)
	require.NoError(t, err)
	require.True(t, m.Verify())
}

func TestVerifyDetectsMismatch(t *testing.T) {
	buf := minimalStory(3, 256)
	binary.BigEndian.PutUint16(buf[0x1c:0x1e], 0xffff)
	m, err := Load(buf)
	require.NoError(t, err)
	require.False(t, m.Verify())
}

func TestUnpackAddressScaling(t *testing.T) {
	buf := minimalStory(3, 256)
	m, err := Load(buf)
	require.NoError(t, err)
	require.EqualValues(t, 0x20, m.UnpackRoutine(0x10))

	buf5 := minimalStory(5, 512)
	m5, err := Load(buf5)
	require.NoError(t, err)
	require.EqualValues(t, 0x40, m5.UnpackRoutine(0x10))
}

func TestUnpackAddressV7Offset(t *testing.T) {
	buf := minimalStory(7, 512)
	binary.BigEndian.PutUint16(buf[0x28:0x2a], 4) // routines offset, 8-byte units
	m, err := Load(buf)
	require.NoError(t, err)

	want := uint32(4*0x10 + 8*4)
	require.Equal(t, want, m.UnpackRoutine(0x10))
}

func TestSnapshotRestore(t *testing.T) {
	buf := minimalStory(3, 256)
	m, err := Load(buf)
	require.NoError(t, err)

	require.NoError(t, m.WriteByte(0x10, 0xaa))
	snap := m.Snapshot()
	require.NoError(t, m.WriteByte(0x10, 0xbb))
	m.Restore(snap)
	require.EqualValues(t, 0xaa, m.ReadByte(0x10))
}

func TestRestoreImagePreservesFlagBits(t *testing.T) {
	buf := minimalStory(3, 256)
	m, err := Load(buf)
	require.NoError(t, err)

	original := make([]uint8, len(buf))
	copy(original, buf)

	require.NoError(t, m.WriteByte(0x10, 0b0000_0011)) // transcript + fixed-pitch bits
	require.NoError(t, m.WriteByte(0x11, 0xff))        // unrelated dynamic byte, should reset
	m.RestoreImage(original)

	require.EqualValues(t, 0b0000_0011, m.ReadByte(0x10)&0b0000_0011, "transcript/fixed-pitch flag bits should survive restart")
	require.NotEqualValues(t, 0xff, m.ReadByte(0x11), "unrelated dynamic memory should have reset to the original image")
}
