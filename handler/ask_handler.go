package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ragforge/pdfrag/database"
	"github.com/ragforge/pdfrag/service"
	"github.com/ragforge/pdfrag/types"
)

type AskHandler struct {
	vectorDB          database.VectorStore
	aiService         service.AIService
	defaultCollection string
	defaultTopK       int
}

func NewAskHandler(vectorDB database.VectorStore, aiService service.AIService, defaultCollection string, defaultTopK int) *AskHandler {
	if defaultCollection == "" {
		defaultCollection = service.DefaultCollectionName
	}
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &AskHandler{
		vectorDB:          vectorDB,
		aiService:         aiService,
		defaultCollection: defaultCollection,
		defaultTopK:       defaultTopK,
	}
}

// HandleAsk answers a question with retrieval-augmented generation: the top
// matching chunks are stuffed into the prompt and returned alongside the
// answer as sources.
func (h *AskHandler) HandleAsk(c *gin.Context) {
	var req types.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  types.StatusFail,
			Message: "Invalid request body",
		})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  types.StatusFail,
			Message: "question is required",
		})
		return
	}
	if req.CollectionName == "" {
		req.CollectionName = h.defaultCollection
	}
	if req.K <= 0 {
		req.K = h.defaultTopK
	}

	sources, err := h.vectorDB.Search(c.Request.Context(), req.CollectionName, req.Question, req.K)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, types.ErrCollectionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, types.DataResponse{
			Status:  types.StatusFail,
			Message: err.Error(),
		})
		return
	}

	prompt := buildAskPrompt(req.Question, sources)
	response, err := h.aiService.Chat(c.Request.Context(), []types.Message{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  types.StatusFail,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: types.StatusSuccess,
		Data: types.AskResponse{
			Answer:  response.Content,
			Sources: sources,
		},
	})
}

func buildAskPrompt(question string, sources []types.SearchResult) string {
	var sb strings.Builder
	sb.WriteString("Answer the question using only the context below. If the context does not contain the answer, say so.\n\nContext:\n")
	for i, src := range sources {
		sb.WriteString(fmt.Sprintf("[%d] (source: %s, page %d)\n%s\n\n", i+1, src.Metadata.Source, src.Metadata.Page, src.Content))
	}
	sb.WriteString("Question: ")
	sb.WriteString(question)
	return sb.String()
}
