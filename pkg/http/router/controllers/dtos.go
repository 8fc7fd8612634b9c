package controllers

import (
	"github.com/lintang-b-s/Partitionx/pkg"
	da "github.com/lintang-b-s/Partitionx/pkg/datastructure"
	"github.com/lintang-b-s/Partitionx/pkg/partitioner"
	"github.com/lintang-b-s/Partitionx/pkg/storage"
)

type partitionRequest struct {
	NumCells    int          `json:"num_cells" validate:"required,min=1,maxcells"`
	Nets        [][]da.Index `json:"nets" validate:"required,dive,min=1"`
	Algorithm   string       `json:"algorithm" validate:"omitempty,oneof=fm genetic"`
	Seed        uint64       `json:"seed"`
	StreamMoves bool         `json:"stream_moves"`
}

func (r partitionRequest) algorithm() pkg.Algorithm {
	return pkg.Algorithm(r.Algorithm)
}

type partitionResponse struct {
	ID          string     `json:"id"`
	Algorithm   string     `json:"algorithm"`
	Seed        uint64     `json:"seed"`
	Cutsize     int        `json:"cutsize"`
	Block0      []da.Index `json:"block0"`
	Block1      []da.Index `json:"block1"`
	Iterations  int        `json:"iterations"`
	Generations int        `json:"generations"`
}

func NewPartitionResponse(rec *storage.PartitionRecord) partitionResponse {
	return partitionResponse{
		ID:          rec.ID,
		Algorithm:   rec.Algorithm,
		Seed:        rec.Seed,
		Cutsize:     rec.Cutsize,
		Block0:      rec.Block0,
		Block1:      rec.Block1,
		Iterations:  rec.Iterations,
		Generations: rec.Generations,
	}
}

// snapshotResponse is one websocket progress message.
type snapshotResponse struct {
	Event      string    `json:"event"`
	Cutsize    int       `json:"cutsize"`
	Mincut     int       `json:"mincut"`
	Iteration  int       `json:"iteration"`
	Generation int       `json:"generation,omitempty"`
	MovedCell  *da.Index `json:"moved_cell,omitempty"`
	Assignment []int     `json:"assignment"`
}

func NewSnapshotResponse(s partitioner.Snapshot) snapshotResponse {
	assignment := make([]int, len(s.Assignment))
	for c, b := range s.Assignment {
		assignment[c] = int(b)
	}
	resp := snapshotResponse{
		Event:      s.Event.String(),
		Cutsize:    s.Cutsize,
		Mincut:     s.Mincut,
		Iteration:  s.Iteration,
		Generation: s.Generation,
		Assignment: assignment,
	}
	if s.Event == partitioner.MOVE_EVENT {
		moved := s.MovedCell
		resp.MovedCell = &moved
	}
	return resp
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
