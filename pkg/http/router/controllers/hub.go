package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/lintang-b-s/Partitionx/pkg/partitioner"
	"go.uber.org/zap"
)

type User struct {
	io   sync.Mutex
	conn io.ReadWriteCloser

	id     uint
	hub    *Hub
	ctx    context.Context
	cancel context.CancelFunc
}

func (u *User) readRequest() (*partitionRequest, error) {
	u.io.Lock()
	defer u.io.Unlock()

	h, r, err := wsutil.NextReader(u.conn, ws.StateServerSide)
	if err != nil {
		return nil, err
	}
	if h.OpCode.IsControl() {
		return nil, wsutil.ControlFrameHandler(u.conn, ws.StateServerSide)(h, r)
	}

	req := &partitionRequest{}
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(req); err != nil {
		return nil, err
	}
	return req, nil
}

/*
StreamPartition. reads one partition request from the connection, runs it and streams a
"snapshot" message per pass or generation (and per move when stream_moves is set),
followed by a "data" message with the stored result or an "error" message.
*/
func (u *User) StreamPartition() error {
	req, err := u.readRequest()
	if err != nil {
		u.conn.Close()
		return err
	}

	if req == nil {
		return nil
	}

	if err := validateRequest(req); err != nil {
		return u.writeError(http.StatusBadRequest, err.Error())
	}

	var writeErr error
	hook := func(s partitioner.Snapshot) {
		if s.Event == partitioner.MOVE_EVENT && !req.StreamMoves {
			return
		}
		if writeErr != nil || u.ctx.Err() != nil {
			return
		}
		writeErr = u.write(envelope{"snapshot": NewSnapshotResponse(s)})
	}

	rec, err := u.hub.partitionService.Partition(u.ctx, req.NumCells, req.Nets, req.algorithm(), req.Seed, hook)
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		status := statusCode(err)
		if status == http.StatusInternalServerError {
			u.hub.log.Error("websocket partition failed", zap.Error(err))
		}
		return u.writeError(status, err.Error())
	}

	return u.write(envelope{"data": NewPartitionResponse(rec)})
}

func (u *User) writeError(status int, message string) error {
	return u.write(envelope{"error": map[string]string{
		"code":    http.StatusText(status),
		"message": message,
	}})
}

func (u *User) write(x interface{}) error {
	w := wsutil.NewWriter(u.conn, ws.StateServerSide, ws.OpText)
	encoder := json.NewEncoder(w)

	u.io.Lock()
	defer u.io.Unlock()

	if err := encoder.Encode(x); err != nil {
		return err
	}

	return w.Flush()
}

// Hub tracks the open websocket connections.
type Hub struct {
	mu  sync.RWMutex
	seq uint
	us  []*User
	ns  map[uint]*User

	partitionService PartitionService
	log              *zap.Logger
}

func NewHub(partitionService PartitionService, log *zap.Logger) *Hub {
	return &Hub{
		ns:               make(map[uint]*User),
		us:               make([]*User, 0),
		partitionService: partitionService,
		log:              log,
	}
}

// Register adds conn to the hub. the user's context is canceled when it is removed.
func (h *Hub) Register(ctx context.Context, conn io.ReadWriteCloser) *User {
	userCtx, cancel := context.WithCancel(ctx)
	user := &User{
		hub:    h,
		conn:   conn,
		ctx:    userCtx,
		cancel: cancel,
	}

	h.mu.Lock()
	user.id = h.seq
	h.ns[user.id] = user
	h.us = append(h.us, user)

	h.seq++
	h.mu.Unlock()

	return user
}

// Remove cancels the user's running request and closes its connection.
func (h *Hub) Remove(user *User) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.ns[user.id]; !ok {
		return
	}
	delete(h.ns, user.id)

	i := sort.Search(len(h.us), func(i int) bool {
		return h.us[i].id >= user.id
	})

	newUs := make([]*User, len(h.us)-1)
	copy(newUs[:i], h.us[:i])
	copy(newUs[i:], h.us[i+1:])
	h.us = newUs

	user.cancel()
	user.conn.Close()
}

func (h *Hub) RemoveAllUser() {
	h.mu.RLock()
	users := make([]*User, len(h.us))
	copy(users, h.us)
	h.mu.RUnlock()

	for _, user := range users {
		h.Remove(user)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.us)
}
