package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hireme-ai/internal/dtos"
	"github.com/justsurfingit/hireme-ai/internal/services"
	"github.com/justsurfingit/hireme-ai/internal/validation"
)

type JobHandler struct {
	LLMService *services.LLMService
	Validator  *validation.Validator
}

// NewJobHandler creates the handler with dependencies
func NewJobHandler(llm *services.LLMService, v *validation.Validator) *JobHandler {
	return &JobHandler{LLMService: llm, Validator: v}
}

// ParseJob is the POST /jobs/extract endpoint
func (h *JobHandler) ParseJob(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if err := h.Validator.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	job, err := h.LLMService.ExtractJobDetails(c.Request.Context(), req.RawHTML)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dtos.JobExtractionResponse{
		Success: true,
		Data:    job,
	})
}
