package handlers

import (
	"net/http"

	"japa_backend/internal/middleware"
	"japa_backend/internal/services"
	"japa_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type EnglishTestHandler struct {
	*BaseHandler
	tests *services.EnglishTestService
}

func NewEnglishTestHandler(base *BaseHandler, tests *services.EnglishTestService) *EnglishTestHandler {
	return &EnglishTestHandler{
		BaseHandler: base,
		tests:       tests,
	}
}

func (h *EnglishTestHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tests := rg.Group("/english-test", middleware.AuthMiddleware())
	{
		tests.POST("", h.Submit)
		tests.GET("", h.Get)
	}
}

func (h *EnglishTestHandler) Submit(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.EnglishTestRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.tests.Submit(h.GetDB(c), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *EnglishTestHandler) Get(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.tests.Get(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
