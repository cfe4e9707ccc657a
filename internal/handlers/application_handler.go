package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hireme-ai/internal/auth"
	"github.com/justsurfingit/hireme-ai/internal/dtos"
	"github.com/justsurfingit/hireme-ai/internal/models"
	"github.com/justsurfingit/hireme-ai/internal/services"
	"github.com/justsurfingit/hireme-ai/internal/validation"
)

// ApplicationHandler serves the signed-in user's saved applications.
type ApplicationHandler struct {
	Applications *services.ApplicationService
	Validator    *validation.Validator
}

func NewApplicationHandler(apps *services.ApplicationService, v *validation.Validator) *ApplicationHandler {
	return &ApplicationHandler{Applications: apps, Validator: v}
}

func (h *ApplicationHandler) Create(c *gin.Context) {
	userID, err := auth.UserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dtos.ApplicationCreateRequest
	if err := h.Validator.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	app, err := h.Applications.Create(c.Request.Context(), userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (h *ApplicationHandler) List(c *gin.Context) {
	userID, err := auth.UserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	apps, err := h.Applications.List(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}
	c.JSON(http.StatusOK, apps)
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	userID, err := auth.UserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dtos.ApplicationStatusRequest
	if err := h.Validator.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	app, err := h.Applications.UpdateStatus(c.Request.Context(), userID, c.Param("id"), models.ApplicationStatus(req.Status))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) Delete(c *gin.Context) {
	userID, err := auth.UserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.Applications.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ApplicationHandler) Events(c *gin.Context) {
	userID, err := auth.UserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	events, err := h.Applications.Events(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if events == nil {
		events = []models.ApplicationEvent{}
	}
	c.JSON(http.StatusOK, events)
}

func (h *ApplicationHandler) Stats(c *gin.Context) {
	userID, err := auth.UserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	stats, err := h.Applications.Stats(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Export streams the applications as a CSV download. The file is built in
// memory so a failed query still gets a JSON error.
func (h *ApplicationHandler) Export(c *gin.Context) {
	userID, err := auth.UserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var buf bytes.Buffer
	if err := h.Applications.ExportCSV(c.Request.Context(), userID, &buf); err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+services.ExportFilename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
