package datastructure

import (
	"fmt"

	"github.com/lintang-b-s/Partitionx/pkg/util"
)

/*
GainBucket. bucket list of cells keyed by integer gain in [-pmax, pmax].

slot g is a doubly linked list threaded through next/prev (indexed by cell id), its head is
slots[g+pmax]. maxGain points at the highest nonempty slot, or the floor -pmax when empty.
insert, remove and popMax are O(1) except for the downward decay of maxGain, which is
amortized against the insertions that raised it.

cells sharing the max gain are popped LIFO: the most recently inserted cell comes out first.
*/
type GainBucket struct {
	pmax    int
	slots   []Index
	next    []Index
	prev    []Index
	gains   []int
	present []bool
	maxGain int
	count   int
}

func NewGainBucket(numCells, pmax int) *GainBucket {
	b := &GainBucket{
		pmax:    pmax,
		slots:   make([]Index, 2*pmax+1),
		next:    make([]Index, numCells),
		prev:    make([]Index, numCells),
		gains:   make([]int, numCells),
		present: make([]bool, numCells),
	}
	b.Reset()
	return b
}

// Reset empties every slot and moves the max pointer to the floor.
func (b *GainBucket) Reset() {
	for i := range b.slots {
		b.slots[i] = INVALID_INDEX
	}
	for i := range b.present {
		b.present[i] = false
	}
	b.maxGain = -b.pmax
	b.count = 0
}

func (b *GainBucket) slot(gain int) int {
	util.AssertPanic(gain >= -b.pmax && gain <= b.pmax,
		fmt.Sprintf("gain %d outside bucket range [%d,%d]", gain, -b.pmax, b.pmax))
	return gain + b.pmax
}

func (b *GainBucket) Insert(cell Index, gain int) {
	util.AssertPanic(!b.present[cell], fmt.Sprintf("cell %d already in bucket", cell))
	s := b.slot(gain)

	head := b.slots[s]
	b.next[cell] = head
	b.prev[cell] = INVALID_INDEX
	if head != INVALID_INDEX {
		b.prev[head] = cell
	}
	b.slots[s] = cell
	b.gains[cell] = gain
	b.present[cell] = true
	b.count++

	if gain > b.maxGain {
		b.maxGain = gain
	}
}

// Remove deletes cell from slot gain. gain must be the key the cell was inserted with.
func (b *GainBucket) Remove(cell Index, gain int) {
	util.AssertPanic(b.present[cell], fmt.Sprintf("cell %d not in bucket", cell))
	util.AssertPanic(b.gains[cell] == gain,
		fmt.Sprintf("cell %d stored with gain %d, removed with gain %d", cell, b.gains[cell], gain))
	b.unlink(cell)
	b.decayMaxGain()
}

// PopMax removes and returns a cell of the highest nonempty slot.
func (b *GainBucket) PopMax() Index {
	util.AssertPanic(b.count > 0, "pop from empty gain bucket")
	cell := b.slots[b.maxGain+b.pmax]
	b.unlink(cell)
	b.decayMaxGain()
	return cell
}

// PeekMax returns the highest gain present. ok is false when the bucket is empty, gain is then the floor -pmax.
func (b *GainBucket) PeekMax() (gain int, ok bool) {
	return b.maxGain, b.count > 0
}

func (b *GainBucket) IsEmpty() bool {
	return b.count == 0
}

func (b *GainBucket) Len() int {
	return b.count
}

func (b *GainBucket) Contains(cell Index) bool {
	return b.present[cell]
}

// GainOf returns the key cell is stored under.
func (b *GainBucket) GainOf(cell Index) (int, bool) {
	if !b.present[cell] {
		return 0, false
	}
	return b.gains[cell], true
}

// ForEachInSlot visits the cells of slot gain in pop order.
func (b *GainBucket) ForEachInSlot(gain int, handle func(cell Index)) {
	for c := b.slots[b.slot(gain)]; c != INVALID_INDEX; c = b.next[c] {
		handle(c)
	}
}

func (b *GainBucket) unlink(cell Index) {
	s := b.gains[cell] + b.pmax
	prev, next := b.prev[cell], b.next[cell]
	if prev != INVALID_INDEX {
		b.next[prev] = next
	} else {
		b.slots[s] = next
	}
	if next != INVALID_INDEX {
		b.prev[next] = prev
	}
	b.present[cell] = false
	b.count--
}

func (b *GainBucket) decayMaxGain() {
	for b.maxGain > -b.pmax && b.slots[b.maxGain+b.pmax] == INVALID_INDEX {
		b.maxGain--
	}
}
