package handlers

import (
	"net/http"

	"japa_backend/internal/middleware"
	"japa_backend/internal/services"
	"japa_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ModuleHandler struct {
	*BaseHandler
	modules *services.ModuleService
}

func NewModuleHandler(base *BaseHandler, modules *services.ModuleService) *ModuleHandler {
	return &ModuleHandler{
		BaseHandler: base,
		modules:     modules,
	}
}

func (h *ModuleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	modules := rg.Group("/modules")
	{
		modules.GET("", h.List)
		modules.GET("/:id", h.Get)
		modules.POST("", middleware.AuthMiddleware(), middleware.AdminMiddleware(), h.Create)
	}
}

func (h *ModuleHandler) List(c *gin.Context) {
	resp, err := h.modules.ListModules(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"modules": resp})
}

// Create adds a catalog entry. Admin only.
func (h *ModuleHandler) Create(c *gin.Context) {
	var req dto.CreateModuleRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.modules.CreateModule(h.GetDB(c), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ModuleHandler) Get(c *gin.Context) {
	id, err := ParseParamInt(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	resp, err := h.modules.GetModule(h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
