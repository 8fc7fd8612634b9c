package partitioner

import (
	"context"

	"github.com/lintang-b-s/Partitionx/pkg"
	da "github.com/lintang-b-s/Partitionx/pkg/datastructure"
	"github.com/lintang-b-s/Partitionx/pkg/util"
	"go.uber.org/zap"
)

// Partition runs the requested algorithm on hg. hook may be nil. a done ctx stops the run between
// passes or generations and its error is returned.
func Partition(ctx context.Context, hg *da.Hypergraph, algorithm pkg.Algorithm, cfg util.PartitionConfig, rng RandomSource,
	logger *zap.Logger, hook StepHook) (*FinalResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch algorithm {
	case pkg.ALGORITHM_FM, "":
		fm := NewFMPartitioner(hg, cfg.MaxIterations, rng, logger)
		fm.SetStepHook(hook)
		return fm.RunFromContext(ctx, nil)
	case pkg.ALGORITHM_GENETIC:
		gp, err := NewGeneticPartitioner(hg, cfg, rng, logger)
		if err != nil {
			return nil, err
		}
		gp.SetStepHook(hook)
		return gp.RunContext(ctx)
	default:
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "unknown algorithm %q, want %q or %q",
			algorithm, pkg.ALGORITHM_FM, pkg.ALGORITHM_GENETIC)
	}
}

// PartitionFrom runs fm starting from initial instead of a random bisection.
func PartitionFrom(ctx context.Context, hg *da.Hypergraph, initial []Block, cfg util.PartitionConfig, rng RandomSource,
	logger *zap.Logger, hook StepHook) (*FinalResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(initial) != hg.NumberOfCells() {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "initial partition has %d cells, netlist has %d",
			len(initial), hg.NumberOfCells())
	}
	if err := CheckBalance(initial); err != nil {
		return nil, err
	}

	fm := NewFMPartitioner(hg, cfg.MaxIterations, rng, logger)
	fm.SetStepHook(hook)
	return fm.RunFromContext(ctx, initial)
}
