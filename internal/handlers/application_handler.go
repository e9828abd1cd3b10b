package handlers

import (
	"net/http"

	"japa_backend/internal/middleware"
	"japa_backend/internal/services"
	"japa_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	*BaseHandler
	applications *services.ApplicationService
}

func NewApplicationHandler(base *BaseHandler, applications *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:  base,
		applications: applications,
	}
}

func (h *ApplicationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	apps := rg.Group("/applications", middleware.AuthMiddleware())
	{
		apps.POST("", h.Submit)
		apps.GET("", h.List)
		apps.GET("/:id", h.Get)
		apps.PATCH("/:id/status", middleware.AdminMiddleware(), h.Review)
	}
}

func (h *ApplicationHandler) Submit(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitApplicationRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.applications.SubmitApplication(h.GetDB(c), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ApplicationHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var query dto.ApplicationListQuery
	if !h.BindAndValidateQuery(c, &query) {
		return
	}

	resp, err := h.applications.ListApplications(h.GetDB(c), userID, middleware.GetRole(c), query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.applications.GetApplication(h.GetDB(c), c.Param("id"), userID, middleware.GetRole(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Review is the admin status change.
func (h *ApplicationHandler) Review(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ReviewApplicationRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	if err := h.applications.ReviewApplication(h.GetDB(c), c.Param("id"), adminID, req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
