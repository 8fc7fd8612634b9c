package usecases

import (
	"context"
	"testing"

	"github.com/lintang-b-s/Partitionx/pkg"
	da "github.com/lintang-b-s/Partitionx/pkg/datastructure"
	"github.com/lintang-b-s/Partitionx/pkg/partitioner"
	"github.com/lintang-b-s/Partitionx/pkg/storage"
	"github.com/lintang-b-s/Partitionx/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testLimits = util.ServiceLimits{MaxCells: 64, MaxPins: 128, MaxGenerations: 10}

func newTestServiceWith(t *testing.T, cfg util.PartitionConfig, limits util.ServiceLimits) *PartitionService {
	t.Helper()
	store, err := storage.OpenResultStore("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewPartitionService(zap.NewNop(), store, cfg, limits)
}

func newTestService(t *testing.T) *PartitionService {
	t.Helper()
	cfg := util.DefaultPartitionConfig()
	cfg.PopulationSize = 6
	cfg.Workers = 2
	return newTestServiceWith(t, cfg, testLimits)
}

func spanningNet(numCells int) []da.Index {
	net := make([]da.Index, numCells)
	for c := range net {
		net[c] = da.Index(c)
	}
	return net
}

var cycleNets = [][]da.Index{{0, 1}, {1, 2}, {2, 3}, {0, 3}}

func TestPartitionServiceStoresResult(t *testing.T) {
	svc := newTestService(t)

	for _, algorithm := range []pkg.Algorithm{pkg.ALGORITHM_FM, pkg.ALGORITHM_GENETIC, ""} {
		t.Run(string(algorithm), func(t *testing.T) {
			passes := 0
			rec, err := svc.Partition(context.Background(), 4, cycleNets, algorithm, 3, func(s partitioner.Snapshot) {
				passes++
			})
			require.NoError(t, err)

			assert.Equal(t, 2, rec.Cutsize)
			assert.Len(t, rec.Block0, 2)
			assert.Len(t, rec.Block1, 2)
			assert.Equal(t, uint64(3), rec.Seed)
			assert.Equal(t, 4, rec.NumNets)
			assert.Positive(t, passes)

			stored, err := svc.GetPartition(rec.ID)
			require.NoError(t, err)
			assert.Equal(t, rec.Cutsize, stored.Cutsize)
			assert.Equal(t, rec.Block0, stored.Block0)
		})
	}
}

func TestPartitionServiceBadInput(t *testing.T) {
	svc := newTestService(t)

	testCases := []struct {
		name      string
		numCells  int
		nets      [][]da.Index
		algorithm pkg.Algorithm
	}{
		{name: "cell out of range", numCells: 2, nets: cycleNets, algorithm: pkg.ALGORITHM_FM},
		{name: "empty net", numCells: 4, nets: [][]da.Index{{}}, algorithm: pkg.ALGORITHM_FM},
		{name: "unknown algorithm", numCells: 4, nets: cycleNets, algorithm: "annealing"},
		{name: "more cells than allowed", numCells: 1 << 40, nets: [][]da.Index{{0}}, algorithm: pkg.ALGORITHM_FM},
		{name: "more pins than allowed", numCells: 64, nets: [][]da.Index{spanningNet(64), spanningNet(64), spanningNet(64)},
			algorithm: pkg.ALGORITHM_GENETIC},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Partition(context.Background(), tt.numCells, tt.nets, tt.algorithm, 1, nil)
			require.Error(t, err)
			assert.Equal(t, util.ErrBadParamInput, util.ErrorCode(err))
		})
	}
}

func TestPartitionServiceNotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.GetPartition("nope")
	assert.Equal(t, util.ErrNotFound, util.ErrorCode(err))
}

func TestPartitionServiceCapsGenerations(t *testing.T) {
	testCases := []struct {
		name           string
		cfgGenerations int
		want           int
	}{
		{name: "unlimited config is capped", cfgGenerations: 0, want: 3},
		{name: "larger config is capped", cfgGenerations: 50, want: 3},
		{name: "smaller config is kept", cfgGenerations: 2, want: 2},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			cfg := util.DefaultPartitionConfig()
			cfg.PopulationSize = 6
			cfg.Workers = 2
			cfg.MaxGenerations = tt.cfgGenerations
			svc := newTestServiceWith(t, cfg, util.ServiceLimits{MaxCells: 64, MaxPins: 128, MaxGenerations: 3})
			assert.Equal(t, tt.want, svc.cfg.MaxGenerations)
		})
	}
}

func TestPartitionServiceCanceled(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, algorithm := range []pkg.Algorithm{pkg.ALGORITHM_FM, pkg.ALGORITHM_GENETIC} {
		t.Run(string(algorithm), func(t *testing.T) {
			_, err := svc.Partition(ctx, 4, cycleNets, algorithm, 1, nil)
			require.Error(t, err)
			assert.Equal(t, util.ErrInternalServerError, util.ErrorCode(err))
		})
	}
}
