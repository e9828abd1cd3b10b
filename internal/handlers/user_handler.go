package handlers

import (
	"net/http"

	"japa_backend/internal/middleware"
	"japa_backend/internal/models"
	"japa_backend/internal/services"
	"japa_backend/internal/services/dto"
	"japa_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	users    *services.UserService
	payments *services.PaymentService
}

func NewUserHandler(base *BaseHandler, users *services.UserService, payments *services.PaymentService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		users:       users,
		payments:    payments,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users", middleware.AuthMiddleware())
	{
		users.GET("/:id", h.Get)
		users.PATCH("/:id", h.Update)
		users.GET("/:id/payments", h.Payments)
	}
}

// authorize allows the owner or an admin.
func (h *UserHandler) authorize(c *gin.Context, targetID string) bool {
	callerID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return false
	}
	if callerID != targetID && middleware.GetRole(c) != models.UserRoleAdmin {
		apperrors.HandleError(c, apperrors.ErrForbidden)
		return false
	}
	return true
}

func (h *UserHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !h.authorize(c, id) {
		return
	}

	resp, err := h.users.GetUser(h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if !h.authorize(c, id) {
		return
	}

	var req dto.UpdateUserRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.users.UpdateUser(h.GetDB(c), id, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Payments(c *gin.Context) {
	id := c.Param("id")
	if !h.authorize(c, id) {
		return
	}

	resp, err := h.payments.ListUserPayments(h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": resp})
}
