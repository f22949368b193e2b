package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ragforge/pdfrag/service"
	"github.com/ragforge/pdfrag/types"
)

type ChatHandler struct {
	aiService service.AIService
	wsService *service.WebSocketService
}

func NewChatHandler(aiService service.AIService, wsService *service.WebSocketService) *ChatHandler {
	return &ChatHandler{
		aiService: aiService,
		wsService: wsService,
	}
}

func (h *ChatHandler) HandleChat(c *gin.Context) {
	var chatRequest types.ChatRequest
	if err := c.ShouldBindJSON(&chatRequest); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  types.StatusFail,
			Message: "Invalid request body",
		})
		return
	}

	response, err := h.aiService.Chat(c.Request.Context(), chatRequest.Messages)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  types.StatusFail,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: types.StatusSuccess,
		Data: types.ChatResponse{
			ChatId:  chatRequest.ChatId,
			Message: response,
		},
	})
}

// HandleChatWS upgrades to a websocket and streams chat responses.
func (h *ChatHandler) HandleChatWS(c *gin.Context) {
	h.wsService.HandleChat(c.Writer, c.Request)
}
