package fineoffset

import "fmt"

// Ring describes a circular area of equally sized slots.
type Ring struct {
	Base     int // address of slot 0
	Capacity int // number of slots
	Stride   int // bytes per slot
}

// HistoryRing is the station's record ring.
var HistoryRing = Ring{Base: HistoryStart, Capacity: HistoryMax, Stride: ChunkSize}

// End returns the first address past the ring.
func (r Ring) End() int {
	return r.Base + r.Capacity*r.Stride
}

// Cursor is a position inside a Ring.
type Cursor struct {
	ring Ring
	slot int
}

// CursorAt returns the cursor for addr, which must lie inside the ring on a
// slot boundary.
func (r Ring) CursorAt(addr int) (Cursor, error) {
	if addr < r.Base || addr >= r.End() || (addr-r.Base)%r.Stride != 0 {
		return Cursor{}, fmt.Errorf("%w: 0x%04X", ErrAddressOutOfRange, addr)
	}
	return Cursor{ring: r, slot: (addr - r.Base) / r.Stride}, nil
}

// Address returns the byte address of the slot.
func (c Cursor) Address() int {
	return c.ring.Base + c.slot*c.ring.Stride
}

// Slot returns the zero-based slot number.
func (c Cursor) Slot() int {
	return c.slot
}

// Backward returns the previous slot, wrapping from the first slot to the last.
func (c Cursor) Backward() Cursor {
	c.slot = (c.slot - 1 + c.ring.Capacity) % c.ring.Capacity
	return c
}

// Position is one history slot selected for reading.
type Position struct {
	Index   int // 1..HistoryMax, oldest stored record has the lowest index
	Address int
}

// AddressesFor lists the slots to read for the most recent count records,
// newest first, starting at currentPos. The list holds
// min(count, dataCount, HistoryMax) positions. While the ring is filling
// indices grow with the address; once dataCount reaches HistoryMax the ring
// has wrapped and the oldest record sits right after currentPos.
func AddressesFor(currentPos, dataCount, count int) ([]Position, error) {
	return HistoryRing.Positions(currentPos, dataCount, count)
}

// Positions is AddressesFor for an arbitrary ring.
func (r Ring) Positions(currentPos, dataCount, count int) ([]Position, error) {
	cur, err := r.CursorAt(currentPos)
	if err != nil {
		return nil, err
	}

	n := min(count, dataCount, r.Capacity)
	if n <= 0 {
		return []Position{}, nil
	}

	full := dataCount >= r.Capacity
	// slot of the oldest stored record when the ring has wrapped
	begin := (cur.Slot() + 1) % r.Capacity

	out := make([]Position, 0, n)
	for range n {
		idx := cur.Slot() + 1
		if full {
			idx = (cur.Slot()-begin+r.Capacity)%r.Capacity + 1
		}
		out = append(out, Position{Index: idx, Address: cur.Address()})
		cur = cur.Backward()
	}
	return out, nil
}
