package partitioner

import (
	da "github.com/lintang-b-s/Partitionx/pkg/datastructure"
	"golang.org/x/exp/rand"
)

type Block uint8

const (
	BLOCK_ZERO Block = 0
	BLOCK_ONE  Block = 1
)

func (b Block) Other() Block {
	return 1 - b
}

// RandomSource is the single source of randomness of a run. *rand.Rand from golang.org/x/exp/rand satisfies it.
type RandomSource interface {
	Intn(n int) int
	Perm(n int) []int
	Float64() float64
	Uint64() uint64
}

func NewRandomSource(seed uint64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// deriveRandomSource seeds an independent generator from parent, used to give every chromosome its own stream.
func deriveRandomSource(parent RandomSource) RandomSource {
	return NewRandomSource(parent.Uint64())
}

type Event uint8

const (
	MOVE_EVENT Event = iota
	PASS_EVENT
	GENERATION_EVENT
)

func (e Event) String() string {
	switch e {
	case MOVE_EVENT:
		return "move"
	case PASS_EVENT:
		return "pass"
	case GENERATION_EVENT:
		return "generation"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only copy of a partition state handed to presentation code.
type Snapshot struct {
	Event      Event
	Assignment []Block
	Locked     []bool
	Cutsize    int
	Mincut     int
	Iteration  int
	Generation int
	MovedCell  da.Index // INVALID_INDEX unless Event == MOVE_EVENT
}

// StepHook is called synchronously after every move, pass and generation. it must not retain the
// partitioner and has no influence on the result.
type StepHook func(Snapshot)

type FinalResult struct {
	Assignment  []Block
	Cutsize     int
	Iterations  int
	Generations int
}

// Blocks splits the assignment into the cell ids of block 0 and block 1.
func (r *FinalResult) Blocks() ([]da.Index, []da.Index) {
	block0 := make([]da.Index, 0, len(r.Assignment)/2+1)
	block1 := make([]da.Index, 0, len(r.Assignment)/2+1)
	for c, b := range r.Assignment {
		if b == BLOCK_ZERO {
			block0 = append(block0, da.Index(c))
		} else {
			block1 = append(block1, da.Index(c))
		}
	}
	return block0, block1
}

type passPhase uint8

const (
	RUNNING_PASS passPhase = iota
	PASS_DONE
	CONVERGED
)
