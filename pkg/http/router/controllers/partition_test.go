package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	da "github.com/lintang-b-s/Partitionx/pkg/datastructure"
	helper "github.com/lintang-b-s/Partitionx/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/Partitionx/pkg/http/usecases"
	"github.com/lintang-b-s/Partitionx/pkg/storage"
	"github.com/lintang-b-s/Partitionx/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const cycleRequest = `{"num_cells":4,"nets":[[0,1],[1,2],[2,3],[0,3]],"algorithm":"fm","seed":3}`

func newTestService(t *testing.T) *usecases.PartitionService {
	t.Helper()
	store, err := storage.OpenResultStore("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := util.DefaultPartitionConfig()
	cfg.PopulationSize = 6
	cfg.Workers = 2
	return usecases.NewPartitionService(zap.NewNop(), store, cfg,
		util.ServiceLimits{MaxCells: 1000, MaxPins: 10000, MaxGenerations: 10})
}

func newTestRouter(t *testing.T) *httprouter.Router {
	t.Helper()
	router := httprouter.New()
	New(newTestService(t), zap.NewNop()).Routes(helper.NewRouteGroup(router, "/api"))
	return router
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) partitionResponse {
	t.Helper()
	var body struct {
		Data partitionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func TestCreateAndGetPartition(t *testing.T) {
	router := newTestRouter(t)

	for _, algorithm := range []string{"fm", "genetic"} {
		t.Run(algorithm, func(t *testing.T) {
			payload := strings.Replace(cycleRequest, `"fm"`, `"`+algorithm+`"`, 1)
			req := httptest.NewRequest(http.MethodPost, "/api/partitions", strings.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			created := decodeData(t, rec)
			assert.NotEmpty(t, created.ID)
			assert.Equal(t, "/api/partitions/"+created.ID, rec.Header().Get("Location"))
			assert.Equal(t, algorithm, created.Algorithm)
			assert.Equal(t, 2, created.Cutsize)
			assert.Len(t, created.Block0, 2)
			assert.Len(t, created.Block1, 2)

			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/partitions/"+created.ID, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, created, decodeData(t, rec))
		})
	}
}

func TestCreatePartitionBadRequest(t *testing.T) {
	router := newTestRouter(t)

	testCases := []struct {
		name    string
		payload string
	}{
		{name: "malformed json", payload: `{"num_cells":`},
		{name: "missing cells", payload: `{"num_cells":0,"nets":[[0]]}`},
		{name: "missing nets", payload: `{"num_cells":3}`},
		{name: "empty net", payload: `{"num_cells":3,"nets":[[0,1],[]]}`},
		{name: "unknown algorithm", payload: `{"num_cells":2,"nets":[[0,1]],"algorithm":"annealing"}`},
		{name: "cell out of range", payload: `{"num_cells":2,"nets":[[0,2]]}`},
		{name: "cell listed twice", payload: `{"num_cells":2,"nets":[[0,1,0]]}`},
		{name: "more cells than allowed", payload: `{"num_cells":1099511627776,"nets":[[0]]}`},
		{name: "more cells than the service allows", payload: `{"num_cells":5000,"nets":[[0]]}`},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/partitions", strings.NewReader(tt.payload))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, http.StatusText(http.StatusBadRequest), body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestGetPartitionNotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/partitions/unknown", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusText(http.StatusNotFound), body.Error.Code)
}

func TestValidateRequestLimitsCells(t *testing.T) {
	testCases := []struct {
		name     string
		numCells int
		wantErr  string
	}{
		{name: "within limit", numCells: 4},
		{name: "at the limit", numCells: util.DefaultServiceLimits().MaxCells},
		{name: "beyond 32 bit ids", numCells: 1 << 40, wantErr: "NumCells must be at most"},
		{name: "one over the limit", numCells: util.DefaultServiceLimits().MaxCells + 1, wantErr: "NumCells must be at most"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(partitionRequest{NumCells: tt.numCells, Nets: [][]da.Index{{0}}})
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
