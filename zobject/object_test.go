package zobject

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oliverhutch/goz/zcore"
	"github.com/oliverhutch/goz/zstring"
)

func minimalV3Story() *zcore.Memory {
	buf := make([]uint8, 512)
	buf[0x00] = 3
	binary.BigEndian.PutUint16(buf[0x0e:0x10], 0x100) // static base
	binary.BigEndian.PutUint16(buf[0x04:0x06], 0x140) // high mem base
	binary.BigEndian.PutUint16(buf[0x06:0x08], 0x140) // initial PC
	binary.BigEndian.PutUint16(buf[0x0a:0x0c], 0x40)  // object table base
	m, err := zcore.Load(buf)
	if err != nil {
		panic(err)
	}
	return m
}

// v3 object entries start after a 31-word (62-byte) default property
// table, 9 bytes each: 4 attribute bytes, parent, sibling, child, 2-byte
// property pointer.
func v3EntryAddr(base uint32, o uint16) uint32 {
	return base + 31*2 + uint32(o-1)*9
}

func TestObjectZeroWarnsInsteadOfPanicking(t *testing.T) {
	m := minimalV3Story()
	table := New(m, zstring.Load(m))

	var warned []string
	table.Warn = func(format string, args ...any) { warned = append(warned, format) }

	require.Zero(t, table.Parent(0))
	require.Len(t, warned, 1)
}

func TestParentSiblingChildV3(t *testing.T) {
	m := minimalV3Story()
	table := New(m, zstring.Load(m))

	addr := v3EntryAddr(m.ObjectTableBase, 5)
	_ = m.WriteByte(addr+4, 2) // parent
	_ = m.WriteByte(addr+5, 7) // sibling
	_ = m.WriteByte(addr+6, 9) // child

	require.EqualValues(t, 2, table.Parent(5))
	require.EqualValues(t, 7, table.Sibling(5))
	require.EqualValues(t, 9, table.Child(5))
}

func TestAttributeBitOrdering(t *testing.T) {
	m := minimalV3Story()
	table := New(m, zstring.Load(m))

	table.SetAttribute(1, 0, true) // highest-order bit of the first byte
	require.True(t, table.Attribute(1, 0))
	require.False(t, table.Attribute(1, 1))

	table.SetAttribute(1, 0, false)
	require.False(t, table.Attribute(1, 0))
}

func TestDetachAndInsert(t *testing.T) {
	m := minimalV3Story()
	table := New(m, zstring.Load(m))

	// dest(1) has children 2 -> 3 -> 4 (sibling chain)
	table.SetChild(1, 2)
	table.SetSibling(2, 3)
	table.SetSibling(3, 4)
	table.SetParent(2, 1)
	table.SetParent(3, 1)
	table.SetParent(4, 1)

	table.Detach(3)
	require.EqualValues(t, 4, table.Sibling(2), "expected object 2's sibling to skip detached 3")
	require.Zero(t, table.Parent(3), "expected detached object's parent to be cleared")

	table.Insert(3, 5)
	require.EqualValues(t, 5, table.Parent(3))
	require.EqualValues(t, 3, table.Child(5))
}

func TestPropertyReadAndSetV3(t *testing.T) {
	m := minimalV3Story()
	alphabets := zstring.Load(m)
	table := New(m, alphabets)

	const propsAddr = 0xc0
	addr := v3EntryAddr(m.ObjectTableBase, 1)
	_ = m.WriteWord(addr+7, propsAddr)

	_ = m.WriteByte(propsAddr, 0) // empty short name
	// property 6, length 1 (size byte = (length-1)<<5 | number)
	_ = m.WriteByte(propsAddr+1, (0<<5)|6)
	_ = m.WriteByte(propsAddr+2, 0x85)
	// property 3, length 2
	_ = m.WriteByte(propsAddr+3, (1<<5)|3)
	_ = m.WriteByte(propsAddr+4, 0x01)
	_ = m.WriteByte(propsAddr+5, 0x02)
	_ = m.WriteByte(propsAddr+6, 0) // terminator

	data, _, found := table.Property(1, 6)
	require.True(t, found)
	require.Equal(t, []uint8{0x85}, data)

	_, _, found = table.Property(1, 9)
	require.False(t, found)

	table.SetProperty(1, 3, 0x0304)
	data, _, _ = table.Property(1, 3)
	require.Equal(t, []uint8{0x03, 0x04}, data)

	require.EqualValues(t, 6, table.FollowingProperty(1, 0), "expected first property to be 6")
	require.EqualValues(t, 3, table.FollowingProperty(1, 6), "expected property after 6 to be 3")
	require.Zero(t, table.FollowingProperty(1, 3), "expected property after the last one to be 0")
}

func TestPropertyLengthAtDataAddress(t *testing.T) {
	m := minimalV3Story()
	table := New(m, zstring.Load(m))

	_ = m.WriteByte(0xe0, (2<<5)|4) // length 3, number 4
	require.EqualValues(t, 3, table.PropertyLengthAtDataAddress(0xe1))
}
