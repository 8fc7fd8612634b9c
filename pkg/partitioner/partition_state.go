package partitioner

import (
	"fmt"

	da "github.com/lintang-b-s/Partitionx/pkg/datastructure"
	"github.com/lintang-b-s/Partitionx/pkg/util"
)

/*
PartitionState. everything that changes while partitioning one candidate bisection.

invariants kept after every move:
  - an unlocked cell sits in buckets[blockOf[c]] under key gain[c]; a locked cell is in no bucket.
  - netDist[n][0] + netDist[n][1] == |n|.
  - cutsize == number of nets with both counts positive.
  - gain[c] of an unlocked cell is +1 per net where c is alone in its block and -1 per net with
    no cell in the other block.
*/
type PartitionState struct {
	hg *da.Hypergraph

	blockOf   []Block
	locked    []bool
	gain      []int
	netDist   [][2]int
	buckets   [2]*da.GainBucket
	blockSize [2]int

	cutsize    int
	best       []Block // balanced assignment with the lowest cutsize seen in the current pass
	mincut     int
	prevMincut int
	iteration  int

	rng RandomSource
}

// NewPartitionState builds the state for assignment, or for a random balanced assignment when assignment is nil.
func NewPartitionState(hg *da.Hypergraph, assignment []Block, rng RandomSource) *PartitionState {
	n := hg.NumberOfCells()
	pmax := hg.GetPmax()

	ps := &PartitionState{
		hg:      hg,
		blockOf: make([]Block, n),
		locked:  make([]bool, n),
		gain:    make([]int, n),
		netDist: make([][2]int, hg.NumberOfNets()),
		buckets: [2]*da.GainBucket{da.NewGainBucket(n, pmax), da.NewGainBucket(n, pmax)},
		best:    make([]Block, n),
		rng:     rng,
	}

	if assignment == nil {
		ps.randomAssignment()
	} else {
		util.AssertPanic(len(assignment) == n,
			fmt.Sprintf("assignment has %d entries, hypergraph has %d cells", len(assignment), n))
		for c, b := range assignment {
			util.AssertPanic(b == BLOCK_ZERO || b == BLOCK_ONE, fmt.Sprintf("cell %d assigned to block %d", c, b))
		}
		util.AssertPanic(CheckBalance(assignment) == nil,
			fmt.Sprintf("assignment imbalance %d exceeds %d", assignmentImbalance(assignment), n%2))
		copy(ps.blockOf, assignment)
	}
	ps.countBlockSizes()

	ps.computeDistribution()
	ps.computeGains()
	ps.cutsize = ps.computeCutsize()

	ps.storeBestCut()
	ps.prevMincut = ps.mincut
	ps.iteration = 1
	return ps
}

// blockDiff returns size1 - size0.
func blockDiff(assignment []Block) int {
	diff := 0
	for _, b := range assignment {
		if b == BLOCK_ONE {
			diff++
		} else {
			diff--
		}
	}
	return diff
}

func assignmentImbalance(assignment []Block) int {
	return util.Abs(blockDiff(assignment))
}

// CheckBalance rejects a starting assignment whose block sizes differ by more than n%2.
// the pass best is only replaced by balanced assignments, so an unbalanced start would be returned as is.
func CheckBalance(assignment []Block) error {
	if d := assignmentImbalance(assignment); d > len(assignment)%2 {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "block sizes of the assignment differ by %d, at most %d allowed",
			d, len(assignment)%2)
	}
	return nil
}

// randomAssignment puts cells at even ranks of a random permutation in block 0 and odd ranks in block 1.
func (ps *PartitionState) randomAssignment() {
	for rank, c := range ps.rng.Perm(len(ps.blockOf)) {
		ps.blockOf[c] = Block(rank % 2)
	}
}

func (ps *PartitionState) countBlockSizes() {
	ps.blockSize = [2]int{}
	for _, b := range ps.blockOf {
		ps.blockSize[b]++
	}
}

func (ps *PartitionState) computeDistribution() {
	for n := range ps.netDist {
		ps.netDist[n] = [2]int{}
		ps.hg.ForCellsOfNet(da.Index(n), func(c da.Index) {
			ps.netDist[n][ps.blockOf[c]]++
		})
	}
}

// computeGains unlocks every cell, recomputes its gain from netDist and refills both buckets.
func (ps *PartitionState) computeGains() {
	ps.buckets[BLOCK_ZERO].Reset()
	ps.buckets[BLOCK_ONE].Reset()

	for c := range ps.blockOf {
		cell := da.Index(c)
		ps.locked[c] = false
		from := ps.blockOf[c]
		to := from.Other()

		g := 0
		for _, n := range ps.hg.GetNetsOfCell(cell) {
			if ps.netDist[n][from] == 1 {
				g++
			}
			if ps.netDist[n][to] == 0 {
				g--
			}
		}
		ps.gain[c] = g
		ps.buckets[from].Insert(cell, g)
	}
}

func (ps *PartitionState) computeCutsize() int {
	cut := 0
	for _, d := range ps.netDist {
		if d[0] > 0 && d[1] > 0 {
			cut++
		}
	}
	return cut
}

func (ps *PartitionState) storeBestCut() {
	copy(ps.best, ps.blockOf)
	ps.mincut = ps.cutsize
}

func (ps *PartitionState) restoreBestCut() {
	copy(ps.blockOf, ps.best)
	ps.countBlockSizes()
}

// resetPass ends a pass: back to the best cut of the pass with fresh distribution and gains.
func (ps *PartitionState) resetPass() {
	ps.restoreBestCut()
	ps.computeDistribution()
	ps.computeGains()
	ps.cutsize = ps.mincut
}

// isBalanced reports whether the block sizes differ by at most one. only balanced cuts become the pass best.
func (ps *PartitionState) isBalanced() bool {
	return util.Abs(ps.blockSize[BLOCK_ZERO]-ps.blockSize[BLOCK_ONE]) <= 1
}

func (ps *PartitionState) hasUnlockedNodes() bool {
	return !ps.buckets[BLOCK_ZERO].IsEmpty() || !ps.buckets[BLOCK_ONE].IsEmpty()
}

// updateNodeGain moves an unlocked cell to the bucket slot of its adjusted gain.
func (ps *PartitionState) updateNodeGain(c da.Index, delta int) {
	bucket := ps.buckets[ps.blockOf[c]]
	bucket.Remove(c, ps.gain[c])
	ps.gain[c] += delta
	bucket.Insert(c, ps.gain[c])
}

func (ps *PartitionState) GetAssignment() []Block {
	assignment := make([]Block, len(ps.blockOf))
	copy(assignment, ps.blockOf)
	return assignment
}

func (ps *PartitionState) GetBestAssignment() []Block {
	best := make([]Block, len(ps.best))
	copy(best, ps.best)
	return best
}

func (ps *PartitionState) Snapshot(event Event) Snapshot {
	locked := make([]bool, len(ps.locked))
	copy(locked, ps.locked)
	return Snapshot{
		Event:      event,
		Assignment: ps.GetAssignment(),
		Locked:     locked,
		Cutsize:    ps.cutsize,
		Mincut:     ps.mincut,
		Iteration:  ps.iteration,
		MovedCell:  da.INVALID_INDEX,
	}
}

// CheckInvariants recomputes distribution, cutsize, gains and bucket membership from scratch
// and compares them with the incrementally maintained values.
func (ps *PartitionState) CheckInvariants() error {
	sizes := [2]int{}
	for _, b := range ps.blockOf {
		sizes[b]++
	}
	if sizes != ps.blockSize {
		return fmt.Errorf("block sizes %v, counted %v", ps.blockSize, sizes)
	}

	cut := 0
	for n := range ps.netDist {
		d := [2]int{}
		for _, c := range ps.hg.GetCellsOfNet(da.Index(n)) {
			d[ps.blockOf[c]]++
		}
		if d != ps.netDist[n] {
			return fmt.Errorf("net %d distribution %v, counted %v", n, ps.netDist[n], d)
		}
		if d[0] > 0 && d[1] > 0 {
			cut++
		}
	}
	if cut != ps.cutsize {
		return fmt.Errorf("cutsize %d, counted %d", ps.cutsize, cut)
	}

	for c := range ps.blockOf {
		cell := da.Index(c)
		from := ps.blockOf[c]
		if ps.locked[c] {
			if ps.buckets[0].Contains(cell) || ps.buckets[1].Contains(cell) {
				return fmt.Errorf("locked cell %d still in a bucket", c)
			}
			continue
		}

		g := 0
		ps.hg.ForNetsOfCell(cell, func(n da.Index) {
			if ps.netDist[n][from] == 1 {
				g++
			}
			if ps.netDist[n][from.Other()] == 0 {
				g--
			}
		})
		if g != ps.gain[c] {
			return fmt.Errorf("cell %d gain %d, formula gives %d", c, ps.gain[c], g)
		}
		if ps.buckets[from.Other()].Contains(cell) {
			return fmt.Errorf("cell %d of block %d found in bucket %d", c, from, from.Other())
		}
		stored, ok := ps.buckets[from].GainOf(cell)
		if !ok || stored != g {
			return fmt.Errorf("cell %d bucket key (%d,%t), want %d", c, stored, ok, g)
		}
	}

	unlocked := 0
	for _, l := range ps.locked {
		if !l {
			unlocked++
		}
	}
	if got := ps.buckets[0].Len() + ps.buckets[1].Len(); got != unlocked {
		return fmt.Errorf("buckets hold %d cells, %d are unlocked", got, unlocked)
	}

	pmax := ps.hg.GetPmax()
	for b, bucket := range ps.buckets {
		var err error
		for g := -pmax; g <= pmax && err == nil; g++ {
			bucket.ForEachInSlot(g, func(c da.Index) {
				if err == nil && (ps.locked[c] || ps.blockOf[c] != Block(b) || ps.gain[c] != g) {
					err = fmt.Errorf("bucket %d slot %d holds cell %d (block %d, gain %d, locked %t)",
						b, g, c, ps.blockOf[c], ps.gain[c], ps.locked[c])
				}
			})
		}
		if err != nil {
			return err
		}
	}
	return nil
}
