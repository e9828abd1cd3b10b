package handlers

import (
	"io"
	"net/http"

	"japa_backend/internal/logger"
	"japa_backend/internal/services"
	"japa_backend/internal/services/dto"
	"japa_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	*BaseHandler
	payments     *services.PaymentService
	applications *services.ApplicationService
}

func NewPaymentHandler(base *BaseHandler, payments *services.PaymentService, applications *services.ApplicationService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:  base,
		payments:     payments,
		applications: applications,
	}
}

func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("/checkout", h.CreateCheckout)
		payments.POST("/verify-session", h.VerifySession)
		payments.POST("/webhook", h.Webhook)
		payments.POST("/complete-application", h.CompleteApplication)
	}
}

// CreateCheckout opens a hosted checkout session for the registration fee.
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.payments.CreateCheckoutSession(h.GetDB(c), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// VerifySession confirms payment state after the checkout redirect.
func (h *PaymentHandler) VerifySession(c *gin.Context) {
	var req dto.VerifySessionRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.payments.VerifySession(h.GetDB(c), req.SessionID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Webhook receives provider events. The signature is checked against the
// raw body; after a valid signature the endpoint always acknowledges.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "failed to read webhook body", err)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Unable to read request body"))
		return
	}

	signature := c.GetHeader("Stripe-Signature")

	if err := h.payments.ProcessWebhookEvent(h.GetDB(c), payload, signature); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// CompleteApplication finalizes a paid registration into a user account and
// an application record.
func (h *PaymentHandler) CompleteApplication(c *gin.Context) {
	var req dto.CompleteApplicationRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.applications.CompleteApplication(h.GetDB(c), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
