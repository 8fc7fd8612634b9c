package partitioner

import (
	"fmt"

	"github.com/lintang-b-s/Partitionx/pkg"
	da "github.com/lintang-b-s/Partitionx/pkg/datastructure"
	"github.com/lintang-b-s/Partitionx/pkg/util"
)

/*
selectMaxGainNode. pops the next cell to move.
the larger block gives up a cell. with equal sizes the block with the higher max gain does,
equal gains are broken by a coin flip. an empty bucket is never chosen.
*/
func (ps *PartitionState) selectMaxGainNode() da.Index {
	util.AssertPanic(ps.hasUnlockedNodes(), "select from a pass without unlocked cells")

	var from Block
	switch {
	case ps.blockSize[BLOCK_ZERO] > ps.blockSize[BLOCK_ONE]:
		from = BLOCK_ZERO
	case ps.blockSize[BLOCK_ZERO] < ps.blockSize[BLOCK_ONE]:
		from = BLOCK_ONE
	default:
		g0, ok0 := ps.buckets[BLOCK_ZERO].PeekMax()
		g1, ok1 := ps.buckets[BLOCK_ONE].PeekMax()
		switch {
		case !ok1 || (ok0 && g0 > g1):
			from = BLOCK_ZERO
		case !ok0 || g0 < g1:
			from = BLOCK_ONE
		default:
			from = Block(ps.rng.Intn(2))
		}
	}

	if ps.buckets[from].IsEmpty() {
		from = from.Other()
	}
	return ps.buckets[from].PopMax()
}

/*
moveNodeAnotherBlock. moves cell c from its block F to T, locks it and updates the gains of its
unlocked neighbours. per net the neighbour updates look at the distribution before and after
the move, so the order (before pass, distribution update, after pass) matters.
*/
func (ps *PartitionState) moveNodeAnotherBlock(c da.Index) {
	util.AssertPanic(!ps.locked[c], fmt.Sprintf("cell %d is already locked", c))

	from := ps.blockOf[c]
	to := from.Other()
	cellGain := ps.gain[c]

	if ps.buckets[from].Contains(c) {
		ps.buckets[from].Remove(c, cellGain)
	}
	ps.locked[c] = true
	ps.blockOf[c] = to
	ps.blockSize[from]--
	ps.blockSize[to]++

	for _, n := range ps.hg.GetNetsOfCell(c) {
		cells := ps.hg.GetCellsOfNet(n)

		switch ps.netDist[n][to] {
		case 0:
			for _, nei := range cells {
				if !ps.locked[nei] {
					ps.updateNodeGain(nei, 1)
				}
			}
		case 1:
			for _, nei := range cells {
				if !ps.locked[nei] && ps.blockOf[nei] == to {
					ps.updateNodeGain(nei, -1)
				}
			}
		}

		ps.netDist[n][from]--
		ps.netDist[n][to]++

		switch ps.netDist[n][from] {
		case 0:
			for _, nei := range cells {
				if !ps.locked[nei] {
					ps.updateNodeGain(nei, -1)
				}
			}
		case 1:
			for _, nei := range cells {
				if !ps.locked[nei] && ps.blockOf[nei] == from {
					ps.updateNodeGain(nei, 1)
				}
			}
		}
	}

	ps.cutsize -= cellGain
	if ps.cutsize < ps.mincut && ps.isBalanced() {
		ps.storeBestCut()
	}

	if pkg.DEBUG {
		if err := ps.CheckInvariants(); err != nil {
			panic(err)
		}
	}
}
