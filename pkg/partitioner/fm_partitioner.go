package partitioner

import (
	"context"
	"fmt"

	da "github.com/lintang-b-s/Partitionx/pkg/datastructure"
	"github.com/lintang-b-s/Partitionx/pkg/util"
	"go.uber.org/zap"
)

type FMPartitioner struct {
	hg            *da.Hypergraph
	maxIterations int
	rng           RandomSource
	logger        *zap.Logger
	hook          StepHook
	state         *PartitionState
}

func NewFMPartitioner(hg *da.Hypergraph, maxIterations int, rng RandomSource, logger *zap.Logger) *FMPartitioner {
	util.AssertPanic(maxIterations >= 1, fmt.Sprintf("maxIterations must be at least 1, got %d", maxIterations))
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FMPartitioner{
		hg:            hg,
		maxIterations: maxIterations,
		rng:           rng,
		logger:        logger,
	}
}

func (fm *FMPartitioner) SetStepHook(hook StepHook) {
	fm.hook = hook
}

// Run partitions from a random balanced assignment.
func (fm *FMPartitioner) Run() *FinalResult {
	return fm.RunFrom(nil)
}

// RunFrom partitions starting from assignment (nil for a random one) and returns the best cut found.
func (fm *FMPartitioner) RunFrom(assignment []Block) *FinalResult {
	result, _ := fm.RunFromContext(context.Background(), assignment)
	return result
}

// RunFromContext is RunFrom that stops before the next pass once ctx is done.
func (fm *FMPartitioner) RunFromContext(ctx context.Context, assignment []Block) (*FinalResult, error) {
	fm.state = NewPartitionState(fm.hg, assignment, fm.rng)
	fm.logger.Info("initial cutsize", zap.Int("cutsize", fm.state.cutsize),
		zap.Int("cells", fm.hg.NumberOfCells()), zap.Int("nets", fm.hg.NumberOfNets()))

	if err := runPasses(ctx, fm.state, fm.maxIterations, false, fm.hook, fm.logger); err != nil {
		return nil, err
	}

	return &FinalResult{
		Assignment: fm.state.GetBestAssignment(),
		Cutsize:    fm.state.mincut,
		Iterations: fm.state.iteration,
	}, nil
}

// CurrentState returns a snapshot of the running (or last) partition, the zero Snapshot before Run.
func (fm *FMPartitioner) CurrentState() Snapshot {
	if fm.state == nil {
		return Snapshot{MovedCell: da.INVALID_INDEX}
	}
	return fm.state.Snapshot(PASS_EVENT)
}

/*
runPasses. the kl/fm driver.

	RUNNING_PASS: move the selected max gain cell until every cell is locked.
	PASS_DONE:    go back to the best cut of the pass and recompute distribution and gains.
	              stop after maxIterations passes or when the pass did not improve mincut.
	CONVERGED:    ps holds the best cut, cutsize == mincut.

genetic runs exactly one pass, it is the local improvement step of the genetic layer.
ctx is checked before every pass.
*/
func runPasses(ctx context.Context, ps *PartitionState, maxIterations int, genetic bool, hook StepHook,
	logger *zap.Logger) error {
	phase := RUNNING_PASS
	for phase != CONVERGED {
		switch phase {
		case RUNNING_PASS:
			if err := ctx.Err(); err != nil {
				return err
			}
			for ps.hasUnlockedNodes() {
				c := ps.selectMaxGainNode()
				ps.moveNodeAnotherBlock(c)
				if hook != nil {
					snap := ps.Snapshot(MOVE_EVENT)
					snap.MovedCell = c
					hook(snap)
				}
			}
			phase = PASS_DONE

		case PASS_DONE:
			ps.resetPass()
			if hook != nil {
				hook(ps.Snapshot(PASS_EVENT))
			}
			if genetic {
				phase = CONVERGED
				continue
			}

			logger.Info("pass finished", zap.Int("iteration", ps.iteration), zap.Int("mincut", ps.mincut))
			if ps.iteration >= maxIterations || ps.mincut == ps.prevMincut {
				phase = CONVERGED
				continue
			}
			ps.prevMincut = ps.mincut
			ps.iteration++
			phase = RUNNING_PASS
		}
	}
	return nil
}
