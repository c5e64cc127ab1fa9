package plans

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sharevault/sharevault-backend/models"
)

// ErrLookupFailed wraps any plan or subscription read failure. No fallback
// plan is synthesized.
var ErrLookupFailed = errors.New("plan lookup failed")

// Service is a read-only projection over the plans and user_subscriptions
// tables.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Plans returns all plans, cheapest first.
func (s *Service) Plans(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	if err := s.db.WithContext(ctx).Order("price_cents asc").Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	return plans, nil
}

// Subscription returns the user's active subscription with its plan
// resolved, or nil when the user has none.
func (s *Service) Subscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).
		Preload("Plan").
		Where("user_id = ?", userID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	return &sub, nil
}
