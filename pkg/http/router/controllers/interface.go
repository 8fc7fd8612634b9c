package controllers

import (
	"context"

	"github.com/lintang-b-s/Partitionx/pkg"
	da "github.com/lintang-b-s/Partitionx/pkg/datastructure"
	"github.com/lintang-b-s/Partitionx/pkg/partitioner"
	"github.com/lintang-b-s/Partitionx/pkg/storage"
)

type PartitionService interface {
	Partition(ctx context.Context, numCells int, nets [][]da.Index, algorithm pkg.Algorithm,
		seed uint64, hook partitioner.StepHook) (*storage.PartitionRecord, error)
	GetPartition(id string) (*storage.PartitionRecord, error)
}
