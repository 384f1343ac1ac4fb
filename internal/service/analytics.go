package service

import (
	"context"
	"log/slog"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/errors"
	"github.com/mailib/mailib-server/internal/store"
)

// AnalyticsService reports owned and read counts per family member.
type AnalyticsService struct {
	store  store.Store
	logger *slog.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(store store.Store, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{store: store, logger: logger}
}

// Family returns one entry per family member, ordered by name.
func (s *AnalyticsService) Family(ctx context.Context, userID string) ([]domain.MemberAnalytics, error) {
	stats, err := s.store.FamilyAnalytics(ctx, userID)
	if err != nil {
		return nil, errors.Persistence(err, "load analytics")
	}
	return stats, nil
}

// User returns the acting user's own entry.
func (s *AnalyticsService) User(ctx context.Context, userID string) (*domain.MemberAnalytics, error) {
	stats, err := s.Family(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range stats {
		if stats[i].MemberID == userID {
			return &stats[i], nil
		}
	}
	return nil, errors.NotFound("user not found")
}
