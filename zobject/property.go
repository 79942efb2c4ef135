package zobject

// propEntry describes one decoded property-list entry: its number, the
// address of its data (not its size byte/bytes), and the entry's data
// length in bytes.
type propEntry struct {
	number uint8
	addr   uint32
	length uint8
}

// firstPropertyAddress returns the address of the first property entry's
// size byte, skipping the short name that heads every object's property
// list.
func (t *Table) firstPropertyAddress(o uint16) uint32 {
	ptr := t.propertyPointer(o)
	nameLen := t.mem.ReadByte(ptr)
	return ptr + 1 + uint32(nameLen)*2
}

// readPropEntry decodes the property entry whose size byte(s) start at
// addr, returning the entry and the address immediately following its
// data (i.e. where the next entry's size byte would begin).
func (t *Table) readPropEntry(addr uint32) (propEntry, uint32) {
	first := t.mem.ReadByte(addr)

	if !t.isV4Plus() {
		length := uint8(first>>5) + 1
		number := first & 0x1f
		dataAddr := addr + 1
		return propEntry{number: number, addr: dataAddr, length: length}, dataAddr + uint32(length)
	}

	number := first & 0x3f
	if first&0x80 != 0 {
		second := t.mem.ReadByte(addr + 1)
		length := second & 0x3f
		if length == 0 {
			length = 64
		}
		dataAddr := addr + 2
		return propEntry{number: number, addr: dataAddr, length: length}, dataAddr + uint32(length)
	}

	length := uint8(1)
	if first&0x40 != 0 {
		length = 2
	}
	dataAddr := addr + 1
	return propEntry{number: number, addr: dataAddr, length: length}, dataAddr + uint32(length)
}

// properties walks o's property list in descending-number order, as
// stored, until the terminating zero size byte.
func (t *Table) properties(o uint16) []propEntry {
	var entries []propEntry
	addr := t.firstPropertyAddress(o)
	for {
		if t.mem.ReadByte(addr) == 0 {
			break
		}
		entry, next := t.readPropEntry(addr)
		entries = append(entries, entry)
		addr = next
	}
	return entries
}

// Property returns the data bytes and address of object o's property n, if
// present.
func (t *Table) Property(o uint16, n uint8) (data []uint8, addr uint32, found bool) {
	if o == 0 {
		t.warn("Property() called on object 0")
		return nil, 0, false
	}
	for _, e := range t.properties(o) {
		if e.number == n {
			return t.mem.ReadSlice(e.addr, e.addr+uint32(e.length)), e.addr, true
		}
	}
	return nil, 0, false
}

// FollowingProperty returns the property number that follows n in o's
// property list, per spec.md S4.3's get_next_prop semantics: n == 0 means
// "the first property"; if n is the last property present, the result is
// 0.
func (t *Table) FollowingProperty(o uint16, n uint8) uint8 {
	if o == 0 {
		t.warn("FollowingProperty() called on object 0")
		return 0
	}
	entries := t.properties(o)
	if n == 0 {
		if len(entries) == 0 {
			return 0
		}
		return entries[0].number
	}
	for i, e := range entries {
		if e.number == n {
			if i+1 < len(entries) {
				return entries[i+1].number
			}
			return 0
		}
	}
	t.warn("FollowingProperty(): object %d has no property %d", o, n)
	return 0
}

// PropertyLengthAtDataAddress implements get_prop_len: given the address
// of a property's data (not its entry), it looks at the byte immediately
// before it to recover the property's length, without needing to know
// which object or property number it belongs to.
func (t *Table) PropertyLengthAtDataAddress(addr uint32) uint8 {
	p := t.mem.ReadByte(addr - 1)
	if !t.isV4Plus() {
		return uint8(p>>5) + 1
	}
	if p&0x80 != 0 {
		size := p & 0x3f
		if size == 0 {
			return 64
		}
		return size
	}
	return uint8(p>>6)&1 + 1
}

// DefaultProperty returns the header default-property-table entry for
// property n (1-based), used when an object doesn't define n itself.
func (t *Table) DefaultProperty(n uint8) uint16 {
	if n == 0 {
		return 0
	}
	return t.mem.ReadWord(t.mem.ObjectTableBase + uint32(n-1)*2)
}

// SetProperty overwrites object o's property n with value, truncated or
// zero-extended to the property's declared size (1 or 2 bytes), matching
// the `put_prop` opcode's behaviour of operating on whatever size the
// story already declared.
func (t *Table) SetProperty(o uint16, n uint8, value uint16) {
	if o == 0 {
		t.warn("SetProperty() called on object 0")
		return
	}
	for _, e := range t.properties(o) {
		if e.number != n {
			continue
		}
		if e.length == 1 {
			_ = t.mem.WriteByte(e.addr, uint8(value))
		} else {
			_ = t.mem.WriteWord(e.addr, value)
		}
		return
	}
	t.warn("SetProperty(): object %d has no property %d", o, n)
}
