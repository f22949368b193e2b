package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ragforge/pdfrag/service"
	"github.com/ragforge/pdfrag/types"
)

type ValidateHandler struct {
	validator *service.ValidatorService
}

func NewValidateHandler(validator *service.ValidatorService) *ValidateHandler {
	return &ValidateHandler{
		validator: validator,
	}
}

// HandleValidate runs the validation gate against a file already on the
// server and returns the full report without ingesting anything.
func (h *ValidateHandler) HandleValidate(c *gin.Context) {
	var req types.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  types.StatusFail,
			Message: "Invalid request body",
		})
		return
	}
	if req.FilePath == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  types.StatusFail,
			Message: "file_path is required",
		})
		return
	}

	report, err := h.validator.Validate(req.FilePath)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, types.ErrFileNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, types.DataResponse{
			Status:  types.StatusFail,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: types.StatusSuccess,
		Data:   report,
	})
}
