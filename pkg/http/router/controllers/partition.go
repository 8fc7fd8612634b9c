package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/Partitionx/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type partitionAPI struct {
	partitionService PartitionService
	log              *zap.Logger
}

func New(partitionService PartitionService, log *zap.Logger) *partitionAPI {
	return &partitionAPI{
		partitionService: partitionService,
		log:              log,
	}
}

func (api *partitionAPI) Routes(group *helper.RouteGroup) {
	group.POST("/partitions", api.createPartition)
	group.GET("/partitions/:id", api.getPartition)
}

// createPartition godoc
//
//	@Summary		bisect a netlist
//	@Description	runs fm or the genetic partitioner on the posted netlist and stores the result
//	@Tags			partitions
//	@Accept			json
//	@Produce		json
//	@Param			body	body		partitionRequest	true	"netlist"
//	@Success		201		{object}	partitionResponse
//	@Failure		400		{object}	errorResponse
//	@Failure		500		{object}	errorResponse
//	@Router			/partitions [post]
func (api *partitionAPI) createPartition(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request partitionRequest
		err     error
	)
	err = json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		api.BadRequestResponse(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	if err := validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	rec, err := api.partitionService.Partition(r.Context(), request.NumCells, request.Nets,
		request.algorithm(), request.Seed, nil)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/api/partitions/%s", rec.ID))

	if err := api.writeJSON(w, http.StatusCreated, envelope{"data": NewPartitionResponse(rec)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

// getPartition godoc
//
//	@Summary	stored partition
//	@Tags		partitions
//	@Produce	json
//	@Param		id	path		string	true	"partition id"
//	@Success	200	{object}	partitionResponse
//	@Failure	404	{object}	errorResponse
//	@Router		/partitions/{id} [get]
func (api *partitionAPI) getPartition(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	rec, err := api.partitionService.GetPartition(p.ByName("id"))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewPartitionResponse(rec)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
