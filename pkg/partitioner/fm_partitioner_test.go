package partitioner

import (
	"math"
	"testing"

	"github.com/lintang-b-s/Partitionx/pkg"
	da "github.com/lintang-b-s/Partitionx/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFMPassProperties(t *testing.T) {
	testCases := []struct {
		name          string
		numCells      int
		numNets       int
		maxNetSize    int
		maxIterations int
	}{
		{name: "graph like", numCells: 30, numNets: 50, maxNetSize: 2, maxIterations: pkg.DEFAULT_MAX_ITERATIONS},
		{name: "small nets", numCells: 41, numNets: 60, maxNetSize: 4, maxIterations: pkg.DEFAULT_MAX_ITERATIONS},
		{name: "large nets", numCells: 64, numNets: 40, maxNetSize: 12, maxIterations: 3},
		{name: "single pass", numCells: 25, numNets: 40, maxNetSize: 5, maxIterations: 1},
	}

	for _, tt := range testCases {
		for seed := uint64(1); seed <= 4; seed++ {
			t.Run(tt.name, func(t *testing.T) {
				hg := randomHypergraph(t, tt.numCells, tt.numNets, tt.maxNetSize, seed)
				initial := NewPartitionState(hg, nil, NewRandomSource(seed)).cutsize

				fm := NewFMPartitioner(hg, tt.maxIterations, NewRandomSource(seed), nil)
				lastMincut := math.MaxInt
				passes, moves := 0, 0
				fm.SetStepHook(func(s Snapshot) {
					require.NoError(t, fm.state.CheckInvariants())
					assert.Equal(t, cutOf(hg, s.Assignment), s.Cutsize)
					assert.LessOrEqual(t, s.Mincut, lastMincut, "mincut never increases")
					lastMincut = s.Mincut

					switch s.Event {
					case MOVE_EVENT:
						moves++
						assert.True(t, s.Locked[s.MovedCell])
					case PASS_EVENT:
						passes++
						assert.Equal(t, s.Mincut, s.Cutsize)
						assert.LessOrEqual(t, imbalance(s.Assignment), 1)
						assert.Equal(t, passes, s.Iteration)
					}
				})

				result := fm.Run()

				assert.Equal(t, tt.numCells*passes, moves, "every pass moves every cell once")
				assert.LessOrEqual(t, passes, tt.maxIterations)
				assert.Equal(t, passes, result.Iterations)
				assert.Equal(t, cutOf(hg, result.Assignment), result.Cutsize)
				assert.LessOrEqual(t, result.Cutsize, initial)
				assert.LessOrEqual(t, imbalance(result.Assignment), 1)
			})
		}
	}
}

func TestFMCycle(t *testing.T) {
	hg := cycleHypergraph(t)
	for seed := uint64(1); seed <= 10; seed++ {
		result := NewFMPartitioner(hg, pkg.DEFAULT_MAX_ITERATIONS, NewRandomSource(seed), nil).Run()
		assert.Equal(t, 2, result.Cutsize, "seed %d", seed)
		assert.Equal(t, 0, imbalance(result.Assignment))
	}

	fm := NewFMPartitioner(hg, pkg.DEFAULT_MAX_ITERATIONS, NewRandomSource(1), nil)
	result := fm.RunFrom([]Block{0, 1, 0, 1})
	assert.Equal(t, 2, result.Cutsize)
	assert.Equal(t, 2, result.Iterations, "second pass finds no improvement")
}

func TestFMRunFromUnbalancedStart(t *testing.T) {
	hg := cycleHypergraph(t)
	fm := NewFMPartitioner(hg, pkg.DEFAULT_MAX_ITERATIONS, NewRandomSource(1), nil)

	// every cell in block 0 has cut 0, no balanced cut can replace it as the pass best
	assert.Panics(t, func() { fm.RunFrom([]Block{0, 0, 0, 0}) })
	assert.Panics(t, func() { fm.RunFrom([]Block{1, 0, 1, 1}) })

	result := fm.RunFrom([]Block{1, 1, 0, 0})
	assert.Equal(t, 2, result.Cutsize)
	assert.Equal(t, 0, imbalance(result.Assignment))
}

func TestFMSingleNetSpanningEveryCell(t *testing.T) {
	testCases := []struct {
		name     string
		numCells int
		want     int
	}{
		{name: "single cell", numCells: 1, want: 0},
		{name: "two cells", numCells: 2, want: 1},
		{name: "odd", numCells: 7, want: 1},
		{name: "even", numCells: 12, want: 1},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			net := make([]da.Index, tt.numCells)
			for c := range net {
				net[c] = da.Index(c)
			}
			hg, err := da.NewHypergraph(tt.numCells, [][]da.Index{net})
			require.NoError(t, err)
			require.Equal(t, 1, hg.GetPmax())

			result := NewFMPartitioner(hg, pkg.DEFAULT_MAX_ITERATIONS, NewRandomSource(3), nil).Run()
			assert.Equal(t, tt.want, result.Cutsize)
			assert.LessOrEqual(t, imbalance(result.Assignment), 1)
		})
	}
}

func TestFMIsReproducible(t *testing.T) {
	hg := randomHypergraph(t, 50, 80, 4, 11)

	first := NewFMPartitioner(hg, pkg.DEFAULT_MAX_ITERATIONS, NewRandomSource(99), nil).Run()
	second := NewFMPartitioner(hg, pkg.DEFAULT_MAX_ITERATIONS, NewRandomSource(99), nil).Run()
	assert.Equal(t, first, second)

	hooked := NewFMPartitioner(hg, pkg.DEFAULT_MAX_ITERATIONS, NewRandomSource(99), nil)
	hooked.SetStepHook(func(Snapshot) {})
	assert.Equal(t, first, hooked.Run(), "hook does not change the result")
}

func TestFMPartitionerCurrentState(t *testing.T) {
	hg := cycleHypergraph(t)
	fm := NewFMPartitioner(hg, 2, NewRandomSource(5), nil)

	before := fm.CurrentState()
	assert.Nil(t, before.Assignment)
	assert.Equal(t, da.INVALID_INDEX, before.MovedCell)

	result := fm.Run()
	after := fm.CurrentState()
	assert.Equal(t, result.Assignment, after.Assignment)
	assert.Equal(t, result.Cutsize, after.Mincut)
	assert.Len(t, after.Locked, 4)

	assert.Panics(t, func() { NewFMPartitioner(hg, 0, NewRandomSource(1), nil) })
}

func TestFinalResultBlocks(t *testing.T) {
	result := &FinalResult{Assignment: []Block{0, 1, 1, 0, 1}}
	block0, block1 := result.Blocks()
	assert.Equal(t, []da.Index{0, 3}, block0)
	assert.Equal(t, []da.Index{1, 2, 4}, block1)
}
