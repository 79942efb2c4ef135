// Package zobject implements the object tree: parent/sibling/child links,
// attribute bits, and property lists, in both the v1-3 and v4+ layouts
// (spec.md S4.3).
package zobject

import (
	"github.com/oliverhutch/goz/zcore"
	"github.com/oliverhutch/goz/zstring"
)

// Table is a thin, stateless view over the object table region of Memory;
// it holds no cached per-object state, matching the "no cyclic
// back-references, pass memory by reference" guidance for this interpreter.
type Table struct {
	mem       *zcore.Memory
	alphabets *zstring.Alphabets
	// Warn is called for operations on the reserved object 0, and for any
	// other anomaly that spec.md S7 classes as a warning rather than a
	// fatal error. Defaults to a no-op if left nil.
	Warn func(format string, args ...any)
}

func New(mem *zcore.Memory, alphabets *zstring.Alphabets) *Table {
	return &Table{mem: mem, alphabets: alphabets}
}

func (t *Table) warn(format string, args ...any) {
	if t.Warn != nil {
		t.Warn(format, args...)
	}
}

func (t *Table) isV4Plus() bool {
	return t.mem.Version >= 4
}

// entryAddress returns the base address of object o's fixed-size entry,
// skipping the default-property table that precedes all entries.
func (t *Table) entryAddress(o uint16) uint32 {
	base := t.mem.ObjectTableBase
	if t.isV4Plus() {
		return base + 63*2 + uint32(o-1)*14
	}
	return base + 31*2 + uint32(o-1)*9
}

func (t *Table) attributeCount() uint16 {
	if t.isV4Plus() {
		return 48
	}
	return 32
}

func (t *Table) Parent(o uint16) uint16 {
	if o == 0 {
		t.warn("Parent() called on object 0")
		return 0
	}
	addr := t.entryAddress(o)
	if t.isV4Plus() {
		return t.mem.ReadWord(addr + 6)
	}
	return uint16(t.mem.ReadByte(addr + 4))
}

func (t *Table) Sibling(o uint16) uint16 {
	if o == 0 {
		t.warn("Sibling() called on object 0")
		return 0
	}
	addr := t.entryAddress(o)
	if t.isV4Plus() {
		return t.mem.ReadWord(addr + 8)
	}
	return uint16(t.mem.ReadByte(addr + 5))
}

func (t *Table) Child(o uint16) uint16 {
	if o == 0 {
		t.warn("Child() called on object 0")
		return 0
	}
	addr := t.entryAddress(o)
	if t.isV4Plus() {
		return t.mem.ReadWord(addr + 10)
	}
	return uint16(t.mem.ReadByte(addr + 6))
}

func (t *Table) SetParent(o, v uint16) {
	if o == 0 {
		t.warn("SetParent() called on object 0")
		return
	}
	addr := t.entryAddress(o)
	if t.isV4Plus() {
		_ = t.mem.WriteWord(addr+6, v)
	} else {
		_ = t.mem.WriteByte(addr+4, uint8(v))
	}
}

func (t *Table) SetSibling(o, v uint16) {
	if o == 0 {
		t.warn("SetSibling() called on object 0")
		return
	}
	addr := t.entryAddress(o)
	if t.isV4Plus() {
		_ = t.mem.WriteWord(addr+8, v)
	} else {
		_ = t.mem.WriteByte(addr+5, uint8(v))
	}
}

func (t *Table) SetChild(o, v uint16) {
	if o == 0 {
		t.warn("SetChild() called on object 0")
		return
	}
	addr := t.entryAddress(o)
	if t.isV4Plus() {
		_ = t.mem.WriteWord(addr+10, v)
	} else {
		_ = t.mem.WriteByte(addr+6, uint8(v))
	}
}

// Attribute reports whether attribute bit is set on o. Bit 0 is the
// highest-order bit of the flag field, matching the Z-machine's
// left-to-right attribute numbering.
func (t *Table) Attribute(o uint16, bit uint16) bool {
	if o == 0 {
		t.warn("Attribute() called on object 0")
		return false
	}
	if bit >= t.attributeCount() {
		return false
	}
	addr := t.entryAddress(o)
	byteIx := bit / 8
	mask := uint8(0x80 >> (bit % 8))
	return t.mem.ReadByte(addr+uint32(byteIx))&mask != 0
}

func (t *Table) SetAttribute(o uint16, bit uint16, on bool) {
	if o == 0 {
		t.warn("SetAttribute() called on object 0")
		return
	}
	if bit >= t.attributeCount() {
		return
	}
	addr := t.entryAddress(o)
	byteIx := bit / 8
	mask := uint8(0x80 >> (bit % 8))
	cur := t.mem.ReadByte(addr + uint32(byteIx))
	if on {
		cur |= mask
	} else {
		cur &^= mask
	}
	_ = t.mem.WriteByte(addr+uint32(byteIx), cur)
}

func (t *Table) propertyPointer(o uint16) uint32 {
	addr := t.entryAddress(o)
	if t.isV4Plus() {
		return uint32(t.mem.ReadWord(addr + 12))
	}
	return uint32(t.mem.ReadWord(addr + 7))
}

// ShortName decodes the object's short name, the Z-string that heads its
// property list.
func (t *Table) ShortName(o uint16) string {
	if o == 0 {
		t.warn("ShortName() called on object 0")
		return ""
	}
	ptr := t.propertyPointer(o)
	nameLen := t.mem.ReadByte(ptr)
	if nameLen == 0 {
		return ""
	}
	name, _, err := zstring.Decode(t.mem, ptr+1, t.alphabets)
	if err != nil {
		return ""
	}
	return name
}

// Detach unlinks o from its current parent's child/sibling chain and
// clears its parent, per spec.md S4.3.
func (t *Table) Detach(o uint16) {
	parent := t.Parent(o)
	if parent == 0 {
		return
	}

	if t.Child(parent) == o {
		t.SetChild(parent, t.Sibling(o))
	} else {
		cur := t.Child(parent)
		seen := map[uint16]bool{}
		for cur != 0 && !seen[cur] {
			seen[cur] = true
			if t.Sibling(cur) == o {
				t.SetSibling(cur, t.Sibling(o))
				break
			}
			cur = t.Sibling(cur)
		}
	}

	t.SetParent(o, 0)
	t.SetSibling(o, 0)
}

// Insert moves o to become dest's first child, per spec.md S4.3:
// detach; set parent = dest; set sibling = old child of dest; set child
// of dest = o.
func (t *Table) Insert(o, dest uint16) {
	t.Detach(o)
	t.SetSibling(o, t.Child(dest))
	t.SetParent(o, dest)
	t.SetChild(dest, o)
}
