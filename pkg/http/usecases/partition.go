package usecases

import (
	"context"
	"time"

	"github.com/lintang-b-s/Partitionx/pkg"
	da "github.com/lintang-b-s/Partitionx/pkg/datastructure"
	"github.com/lintang-b-s/Partitionx/pkg/partitioner"
	"github.com/lintang-b-s/Partitionx/pkg/storage"
	"github.com/lintang-b-s/Partitionx/pkg/util"
	"go.uber.org/zap"
)

type PartitionService struct {
	log    *zap.Logger
	store  ResultStore
	cfg    util.PartitionConfig
	limits util.ServiceLimits
}

// NewPartitionService caps cfg.MaxGenerations at limits.MaxGenerations, an api request never runs the
// genetic loop without a generation bound.
func NewPartitionService(log *zap.Logger, store ResultStore, cfg util.PartitionConfig,
	limits util.ServiceLimits) *PartitionService {
	if limits.MaxGenerations > 0 && (cfg.MaxGenerations == 0 || cfg.MaxGenerations > limits.MaxGenerations) {
		cfg.MaxGenerations = limits.MaxGenerations
	}
	return &PartitionService{
		log:    log,
		store:  store,
		cfg:    cfg,
		limits: limits,
	}
}

// Partition bisects the netlist, stores the result and returns the stored record.
// seed 0 picks a time based seed, the seed used is part of the record.
func (ps *PartitionService) Partition(ctx context.Context, numCells int, nets [][]da.Index,
	algorithm pkg.Algorithm, seed uint64, hook partitioner.StepHook) (*storage.PartitionRecord, error) {
	if err := ps.checkLimits(numCells, nets); err != nil {
		return nil, err
	}
	hg, err := da.NewHypergraph(numCells, nets)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "invalid netlist")
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	if algorithm == "" {
		algorithm = pkg.ALGORITHM_FM
	}

	start := time.Now()
	result, err := partitioner.Partition(ctx, hg, algorithm, ps.cfg, partitioner.NewRandomSource(seed), ps.log, hook)
	if ctx.Err() != nil {
		ps.log.Info("partition canceled", zap.String("algorithm", string(algorithm)),
			zap.Int("cells", numCells), zap.Duration("after", time.Since(start)))
		return nil, util.WrapErrorf(ctx.Err(), util.ErrInternalServerError, "request canceled")
	}
	if err != nil {
		return nil, err
	}
	ps.log.Info("partition computed", zap.String("algorithm", string(algorithm)),
		zap.Int("cells", numCells), zap.Int("cutsize", result.Cutsize),
		zap.Duration("took", time.Since(start)))

	block0, block1 := result.Blocks()
	rec := &storage.PartitionRecord{
		Algorithm:   string(algorithm),
		Seed:        seed,
		NumCells:    numCells,
		NumNets:     hg.NumberOfNets(),
		Cutsize:     result.Cutsize,
		Block0:      block0,
		Block1:      block1,
		Iterations:  result.Iterations,
		Generations: result.Generations,
	}
	if _, err := ps.store.Put(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (ps *PartitionService) checkLimits(numCells int, nets [][]da.Index) error {
	if numCells > ps.limits.MaxCells {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "num_cells %d exceeds the limit of %d", numCells, ps.limits.MaxCells)
	}
	pins := 0
	for _, cells := range nets {
		pins += len(cells)
	}
	if pins > ps.limits.MaxPins {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "netlist has %d pins, the limit is %d", pins, ps.limits.MaxPins)
	}
	return nil
}

func (ps *PartitionService) GetPartition(id string) (*storage.PartitionRecord, error) {
	return ps.store.Get(id)
}
