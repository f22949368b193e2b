package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ragforge/pdfrag/repository"
	"github.com/ragforge/pdfrag/types"
)

type IngestHandler struct {
	registry repository.IngestRepo
}

func NewIngestHandler(registry repository.IngestRepo) *IngestHandler {
	return &IngestHandler{
		registry: registry,
	}
}

// HandleListIngests lists past pipeline runs, most recent first.
func (h *IngestHandler) HandleListIngests(c *gin.Context) {
	collectionName := c.Query("collection")
	limit, _ := strconv.Atoi(c.Query("limit"))

	records, err := h.registry.ListIngests(c.Request.Context(), collectionName, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  types.StatusFail,
			Message: err.Error(),
		})
		return
	}
	if records == nil {
		records = []*types.IngestRecord{}
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: types.StatusSuccess,
		Data:   records,
	})
}
