package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ragforge/pdfrag/database"
	"github.com/ragforge/pdfrag/service"
	"github.com/ragforge/pdfrag/types"
)

type SearchHandler struct {
	vectorDB          database.VectorStore
	defaultCollection string
	defaultTopK       int
}

func NewSearchHandler(vectorDB database.VectorStore, defaultCollection string, defaultTopK int) *SearchHandler {
	if defaultCollection == "" {
		defaultCollection = service.DefaultCollectionName
	}
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &SearchHandler{
		vectorDB:          vectorDB,
		defaultCollection: defaultCollection,
		defaultTopK:       defaultTopK,
	}
}

func (h *SearchHandler) HandleSearch(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  types.StatusFail,
			Message: "Invalid request body",
		})
		return
	}
	if req.CollectionName == "" {
		req.CollectionName = h.defaultCollection
	}
	if req.K <= 0 {
		req.K = h.defaultTopK
	}

	results, err := h.vectorDB.Search(c.Request.Context(), req.CollectionName, req.Query, req.K)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, types.ErrCollectionNotFound):
			status = http.StatusNotFound
		case errors.Is(err, types.ErrEmptyQuery):
			status = http.StatusBadRequest
		}
		c.JSON(status, types.DataResponse{
			Status:  types.StatusFail,
			Message: err.Error(),
		})
		return
	}

	if results == nil {
		results = []types.SearchResult{}
	}
	c.JSON(http.StatusOK, types.SearchResponse{
		Status:      types.StatusSuccess,
		Results:     results,
		ResultCount: len(results),
	})
}
