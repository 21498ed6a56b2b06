package snake

import (
	"github.com/vovakirdan/snake-env/internal/core"
)

// Path is the snake body kept as a ring of the most recent head positions.
//
// The ring holds one slot per board cell. head counts every placed segment
// and only grows; the live segments are the slots head, head-1, ...,
// head-length+1 taken modulo the capacity. A slot that falls out of the body
// is overwritten with core.NoPosition right away so stale entries are never
// read back after the counter wraps.
type Path struct {
	slots  []core.Position
	head   int
	length int
}

// NewPath allocates a ring with room for capacity segments.
func NewPath(capacity int) *Path {
	p := &Path{slots: make([]core.Position, capacity)}
	p.clear()
	return p
}

func (p *Path) clear() {
	for i := range p.slots {
		p.slots[i] = core.NoPosition
	}
	p.head = 0
	p.length = 0
}

func (p *Path) slot(i int) int {
	n := len(p.slots)
	return ((i % n) + n) % n
}

// Reset empties the ring and starts a length-1 body at initial.
func (p *Path) Reset(initial core.Position) {
	p.clear()
	p.slots[0] = initial
	p.length = 1
}

// Advance records newHead as the head. When grew is false the oldest segment
// is dropped and returned with ok set; when grew is true the body gets one
// segment longer and nothing is retracted.
func (p *Path) Advance(newHead core.Position, grew bool) (retracted core.Position, ok bool) {
	if grew && p.length == len(p.slots) {
		panic("snake: path is already at full capacity")
	}

	p.head++

	if grew {
		p.slots[p.slot(p.head)] = newHead
		p.length++
		return core.NoPosition, false
	}

	// The vacated slot is read before the write: on a full ring it is the
	// same slot the new head lands in.
	tail := p.slot(p.head - p.length)
	retracted = p.slots[tail]
	p.slots[tail] = core.NoPosition
	p.slots[p.slot(p.head)] = newHead
	return retracted, true
}

// Head returns the most recently placed segment.
func (p *Path) Head() core.Position {
	return p.slots[p.slot(p.head)]
}

// Neck returns the segment right behind the head, if the body has one.
func (p *Path) Neck() (core.Position, bool) {
	if p.length < 2 {
		return core.NoPosition, false
	}
	return p.slots[p.slot(p.head-1)], true
}

// Tail returns the oldest live segment.
func (p *Path) Tail() core.Position {
	return p.slots[p.slot(p.head-p.length+1)]
}

// Segment returns the i-th segment counted from the head (0 is the head).
// Out-of-range i yields core.NoPosition.
func (p *Path) Segment(i int) core.Position {
	if i < 0 || i >= p.length {
		return core.NoPosition
	}
	return p.slots[p.slot(p.head-i)]
}

// Segments appends the body from head to tail to dst.
func (p *Path) Segments(dst []core.Position) []core.Position {
	for i := 0; i < p.length; i++ {
		dst = append(dst, p.slots[p.slot(p.head-i)])
	}
	return dst
}

// Len returns the current body length.
func (p *Path) Len() int {
	return p.length
}

// Cap returns the ring capacity (N² for an N×N board).
func (p *Path) Cap() int {
	return len(p.slots)
}

// HeadIndex returns the monotonically increasing head counter.
func (p *Path) HeadIndex() int {
	return p.head
}

// Full reports whether the body covers every slot.
func (p *Path) Full() bool {
	return p.length == len(p.slots)
}
