package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sharevault/sharevault-backend/auth/middleware"
	"github.com/sharevault/sharevault-backend/plans"
)

// PlanHandler serves the read-only plan and subscription endpoints.
type PlanHandler struct {
	Plans *plans.Service
}

func NewPlanHandler(plans *plans.Service) *PlanHandler {
	return &PlanHandler{Plans: plans}
}

func (h *PlanHandler) List(c *gin.Context) {
	result, err := h.Plans.Plans(c.Request.Context())
	if err != nil {
		log.Printf("Plan lookup failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch plans"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": result})
}

func (h *PlanHandler) Subscription(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	sub, err := h.Plans.Subscription(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Subscription lookup failed for %s: %v", userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch subscription"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}
