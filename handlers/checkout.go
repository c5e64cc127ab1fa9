package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharevault/sharevault-backend/checkout"
)

// SessionCreator is the slice of the checkout client this handler needs.
type SessionCreator interface {
	CreateSession(ctx context.Context, planID string, amountCents int64, email string) (string, error)
}

// CheckoutHandler forwards checkout requests to the payment processor. The
// route is browser-called from arbitrary origins, so it carries its own open
// CORS headers instead of the API's origin policy.
type CheckoutHandler struct {
	Checkout SessionCreator
}

func NewCheckoutHandler(client SessionCreator) *CheckoutHandler {
	return &CheckoutHandler{Checkout: client}
}

type checkoutRequest struct {
	PlanID string `json:"plan_id"`
	Amount int64  `json:"amount"`
	Email  string `json:"email"`
}

func (h *CheckoutHandler) Create(c *gin.Context) {
	setCheckoutCORS(c)

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.PlanID == "" || req.Amount == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plan_id and amount are required"})
		return
	}

	url, err := h.Checkout.CreateSession(c.Request.Context(), req.PlanID, req.Amount, req.Email)
	if err != nil {
		if errors.Is(err, checkout.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("Create checkout error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *CheckoutHandler) Preflight(c *gin.Context) {
	setCheckoutCORS(c)
	c.Status(http.StatusOK)
}

func setCheckoutCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
}
