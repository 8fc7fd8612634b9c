package usecases

import "github.com/lintang-b-s/Partitionx/pkg/storage"

type ResultStore interface {
	Put(rec *storage.PartitionRecord) (string, error)
	Get(id string) (*storage.PartitionRecord, error)
}
