package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ragforge/pdfrag/service"
	"github.com/ragforge/pdfrag/types"
)

type UploadHandler struct {
	fileService *service.FileService
}

func NewUploadHandler(fileService *service.FileService) *UploadHandler {
	return &UploadHandler{
		fileService: fileService,
	}
}

// UploadDocumentHandler accepts a multipart PDF upload and streams pipeline
// progress back as SSE messages, finishing with the terminal pipeline state.
func (h *UploadHandler) UploadDocumentHandler(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  types.StatusFail,
			Message: "Invalid file",
		})
		return
	}
	defer file.Close()

	var req types.UploadRequest
	if metadata := c.Request.FormValue("metadata"); metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &req); err != nil {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  types.StatusFail,
				Message: "Invalid metadata",
			})
			return
		}
	}

	const maxSize = 10 << 20
	if header.Size > maxSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  types.StatusFail,
			Message: "File too large",
		})
		return
	}

	statusChan := make(chan types.ProcessingDocumentStatus)
	type uploadResult struct {
		state *types.PipelineState
		err   error
	}
	resultChan := make(chan uploadResult, 1)
	go func() {
		defer close(statusChan)
		state, err := h.fileService.UploadFile(c.Request.Context(), req, header, func(status types.ProcessingDocumentStatus) {
			statusChan <- status
		})
		resultChan <- uploadResult{state: state, err: err}
	}()

	clientGone := c.Writer.CloseNotify()
	for {
		select {
		case <-clientGone:
			return // Client disconnected
		case status, ok := <-statusChan:
			if !ok {
				statusChan = nil
				continue
			}
			jsonStatus, err := json.Marshal(status)
			if err != nil {
				continue
			}
			c.SSEvent("message", string(jsonStatus))
			c.Writer.Flush()
		case result := <-resultChan:
			if result.err != nil {
				c.JSON(http.StatusBadRequest, types.DataResponse{
					Status:  types.StatusFail,
					Message: result.err.Error(),
				})
				return
			}
			status := types.StatusSuccess
			httpStatus := http.StatusOK
			if result.state.Failed() {
				status = types.StatusFail
				httpStatus = http.StatusUnprocessableEntity
			}
			c.JSON(httpStatus, types.DataResponse{
				Status: status,
				Data: types.UploadResponse{
					OriginalName: result.state.FileName,
					Pipeline:     result.state,
				},
			})
			return
		}
	}
}
