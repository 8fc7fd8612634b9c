package storage

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	da "github.com/lintang-b-s/Partitionx/pkg/datastructure"
	"github.com/lintang-b-s/Partitionx/pkg/util"
	"go.uber.org/zap"
)

var partitionKeyPrefix = []byte("partition/")

// PartitionRecord is one finished partitioning run as served by the api.
type PartitionRecord struct {
	ID          string     `json:"id"`
	Algorithm   string     `json:"algorithm"`
	Seed        uint64     `json:"seed"`
	NumCells    int        `json:"num_cells"`
	NumNets     int        `json:"num_nets"`
	Cutsize     int        `json:"cutsize"`
	Block0      []da.Index `json:"block0"`
	Block1      []da.Index `json:"block1"`
	Iterations  int        `json:"iterations"`
	Generations int        `json:"generations"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ResultStore keeps partition records in badger, keyed by uuid.
type ResultStore struct {
	db  *badger.DB
	log *zap.Logger
}

// OpenResultStore opens the badger database at path. an empty path keeps everything in memory.
func OpenResultStore(path string, log *zap.Logger) (*ResultStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.DetectConflicts = false
	if path == "" {
		opts.InMemory = true
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "open result store %q", path)
	}
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("result store opened", zap.String("path", path), zap.Bool("in_memory", opts.InMemory))
	return &ResultStore{db: db, log: log}, nil
}

func partitionKey(id string) []byte {
	return append(append([]byte{}, partitionKeyPrefix...), id...)
}

// Put stores rec and returns its id. a record without id gets a fresh uuid.
func (s *ResultStore) Put(rec *PartitionRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	val, err := json.Marshal(rec)
	if err != nil {
		return "", util.WrapErrorf(err, util.ErrInternalServerError, "encode partition %s", rec.ID)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(partitionKey(rec.ID), val)
	})
	if err != nil {
		return "", util.WrapErrorf(err, util.ErrInternalServerError, "store partition %s", rec.ID)
	}
	s.log.Debug("partition stored", zap.String("id", rec.ID), zap.Int("cutsize", rec.Cutsize))
	return rec.ID, nil
}

func (s *ResultStore) Get(id string) (*PartitionRecord, error) {
	rec := &PartitionRecord{}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(partitionKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, util.WrapErrorf(err, util.ErrNotFound, "partition %s not found", id)
	}
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "load partition %s", id)
	}
	return rec, nil
}

// Count returns the number of stored records.
func (s *ResultStore) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = partitionKeyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func (s *ResultStore) Close() error {
	return s.db.Close()
}
