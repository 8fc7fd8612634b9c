package partitioner

import (
	"testing"

	da "github.com/lintang-b-s/Partitionx/pkg/datastructure"
	"github.com/stretchr/testify/require"
)

func cycleHypergraph(t *testing.T) *da.Hypergraph {
	t.Helper()
	hg, err := da.NewHypergraph(4, [][]da.Index{{0, 1}, {1, 2}, {2, 3}, {0, 3}})
	require.NoError(t, err)
	return hg
}

// randomHypergraph builds numNets nets of 1..maxNetSize distinct cells drawn with seed.
func randomHypergraph(t *testing.T, numCells, numNets, maxNetSize int, seed uint64) *da.Hypergraph {
	t.Helper()
	rng := NewRandomSource(seed)
	nets := make([][]da.Index, numNets)
	for i := range nets {
		k := 1 + rng.Intn(maxNetSize)
		for _, c := range rng.Perm(numCells)[:k] {
			nets[i] = append(nets[i], da.Index(c))
		}
	}
	hg, err := da.NewHypergraph(numCells, nets)
	require.NoError(t, err)
	return hg
}

func cutOf(hg *da.Hypergraph, assignment []Block) int {
	cut := 0
	for n := 0; n < hg.NumberOfNets(); n++ {
		seen := [2]bool{}
		for _, c := range hg.GetCellsOfNet(da.Index(n)) {
			seen[assignment[c]] = true
		}
		if seen[0] && seen[1] {
			cut++
		}
	}
	return cut
}

func imbalance(assignment []Block) int {
	diff := 0
	for _, b := range assignment {
		if b == BLOCK_ONE {
			diff++
		} else {
			diff--
		}
	}
	if diff < 0 {
		return -diff
	}
	return diff
}

// scriptedRandom replays fixed draws. Perm is the identity.
type scriptedRandom struct {
	ints   []int
	floats []float64
}

func (r *scriptedRandom) Intn(n int) int {
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRandom) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

func (r *scriptedRandom) Float64() float64 {
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRandom) Uint64() uint64 {
	return 0
}
