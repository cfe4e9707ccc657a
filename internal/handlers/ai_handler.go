package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hireme-ai/internal/auth"
	"github.com/justsurfingit/hireme-ai/internal/dtos"
	"github.com/justsurfingit/hireme-ai/internal/services"
	"github.com/justsurfingit/hireme-ai/internal/validation"
)

type AIHandler struct {
	LLMService *services.LLMService
	Validator  *validation.Validator
}

func NewAIHandler(llm *services.LLMService, v *validation.Validator) *AIHandler {
	return &AIHandler{LLMService: llm, Validator: v}
}

// Analyze is the POST /analyze endpoint
func (h *AIHandler) Analyze(c *gin.Context) {
	var req dtos.AnalyzeRequest
	if err := h.Validator.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.LLMService.AnalyzeJobDescription(c.Request.Context(), req.JobDescription, req.UserSkills)
	if err != nil {
		_ = c.Error(err)
		return
	}

	skills := make([]string, 0, len(result.Skills))
	for _, s := range result.Skills {
		skills = append(skills, s.Name)
	}
	c.JSON(http.StatusOK, dtos.AnalyzeResponse{
		Skills:     skills,
		MatchScore: result.MatchScore,
		Summary:    result.Summary,
	})
}

// CoverLetter is the POST /cover-letter endpoint
func (h *AIHandler) CoverLetter(c *gin.Context) {
	var req dtos.CoverLetterRequest
	if err := h.Validator.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	name := strings.TrimSpace(req.UserName)
	if name == "" {
		if claims, ok := auth.ClaimsFrom(c); ok {
			name = claims.DisplayName()
		}
	}

	letter, err := h.LLMService.GenerateCoverLetter(c.Request.Context(), services.CoverLetterInput{
		JobTitle:       req.JobTitle,
		Company:        req.Company,
		JobDescription: req.JobDescription,
		UserSkills:     req.UserSkills,
		UserName:       name,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dtos.CoverLetterResponse{CoverLetter: letter})
}
