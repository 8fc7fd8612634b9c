package controllers

import (
	"context"
	"encoding/json"
	"net"
	"testing"

	"github.com/gobwas/ws/wsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// readMessages reads server messages until a "data" or "error" message arrives.
func readMessages(t *testing.T, conn net.Conn) ([]snapshotResponse, map[string]json.RawMessage) {
	t.Helper()
	var snapshots []snapshotResponse
	for {
		msg, err := wsutil.ReadServerText(conn)
		require.NoError(t, err)

		env := map[string]json.RawMessage{}
		require.NoError(t, json.Unmarshal(msg, &env))
		raw, ok := env["snapshot"]
		if !ok {
			return snapshots, env
		}
		var s snapshotResponse
		require.NoError(t, json.Unmarshal(raw, &s))
		snapshots = append(snapshots, s)
	}
}

func TestUserStreamPartition(t *testing.T) {
	testCases := []struct {
		name      string
		payload   string
		wantMoves bool
		wantEvent string
	}{
		{
			name:      "fm with moves",
			payload:   `{"num_cells":4,"nets":[[0,1],[1,2],[2,3],[0,3]],"algorithm":"fm","seed":3,"stream_moves":true}`,
			wantMoves: true,
			wantEvent: "pass",
		},
		{
			name:      "fm passes only",
			payload:   `{"num_cells":4,"nets":[[0,1],[1,2],[2,3],[0,3]],"seed":3}`,
			wantEvent: "pass",
		},
		{
			name:      "genetic",
			payload:   `{"num_cells":4,"nets":[[0,1],[1,2],[2,3],[0,3]],"algorithm":"genetic","seed":3}`,
			wantEvent: "generation",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			server, client := net.Pipe()
			defer client.Close()

			hub := NewHub(newTestService(t), zap.NewNop())
			user := hub.Register(context.Background(), server)
			require.Equal(t, 1, hub.Len())

			done := make(chan error, 1)
			go func() { done <- user.StreamPartition() }()

			require.NoError(t, wsutil.WriteClientText(client, []byte(tt.payload)))
			snapshots, final := readMessages(t, client)
			require.NoError(t, <-done)

			raw, ok := final["data"]
			require.True(t, ok, "final message %v", final)
			var result partitionResponse
			require.NoError(t, json.Unmarshal(raw, &result))
			assert.Equal(t, 2, result.Cutsize)

			moves, progress := 0, 0
			for _, s := range snapshots {
				assert.Len(t, s.Assignment, 4)
				switch s.Event {
				case "move":
					moves++
					require.NotNil(t, s.MovedCell)
				case tt.wantEvent:
					progress++
					assert.Nil(t, s.MovedCell)
				default:
					t.Fatalf("unexpected event %q", s.Event)
				}
			}
			assert.Positive(t, progress)
			if tt.wantMoves {
				assert.Equal(t, 4*progress, moves)
			} else {
				assert.Zero(t, moves)
			}

			hub.Remove(user)
			assert.Equal(t, 0, hub.Len())
		})
	}
}

func TestUserStreamPartitionRejectsInvalidRequest(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	hub := NewHub(newTestService(t), zap.NewNop())
	user := hub.Register(context.Background(), server)

	done := make(chan error, 1)
	go func() { done <- user.StreamPartition() }()

	require.NoError(t, wsutil.WriteClientText(client, []byte(`{"num_cells":0,"nets":[]}`)))
	snapshots, final := readMessages(t, client)
	require.NoError(t, <-done)

	assert.Empty(t, snapshots)
	raw, ok := final["error"]
	require.True(t, ok)
	var e struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(raw, &e))
	assert.Equal(t, "Bad Request", e.Code)
	assert.Contains(t, e.Message, "validation error")
}

func TestHubRemoveAllUser(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())
	var users []*User
	for i := 0; i < 3; i++ {
		server, client := net.Pipe()
		defer client.Close()
		users = append(users, hub.Register(context.Background(), server))
	}
	require.Equal(t, 3, hub.Len())

	hub.Remove(users[1])
	hub.Remove(users[1])
	assert.Equal(t, 2, hub.Len())
	assert.Error(t, users[1].ctx.Err())

	hub.RemoveAllUser()
	assert.Equal(t, 0, hub.Len())
	for _, u := range users {
		assert.Error(t, u.ctx.Err())
	}
}
