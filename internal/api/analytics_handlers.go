package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mailib/mailib-server/internal/domain"
)

func (s *Server) registerAnalyticsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "familyAnalytics",
		Method:      http.MethodGet,
		Path:        "/analytics/family",
		Summary:     "Family analytics",
		Description: "Owned and read counts for every family member",
		Tags:        []string{"Analytics"},
		Security:    bearer,
	}, s.handleFamilyAnalytics)

	huma.Register(s.api, huma.Operation{
		OperationID: "userAnalytics",
		Method:      http.MethodGet,
		Path:        "/analytics/user",
		Summary:     "User analytics",
		Description: "Owned and read counts for the authenticated user",
		Tags:        []string{"Analytics"},
		Security:    bearer,
	}, s.handleUserAnalytics)
}

// FamilyAnalyticsOutput lists per-member analytics.
type FamilyAnalyticsOutput struct {
	Body []domain.MemberAnalytics
}

// UserAnalyticsOutput is the caller's analytics.
type UserAnalyticsOutput struct {
	Body *domain.MemberAnalytics
}

func (s *Server) handleFamilyAnalytics(ctx context.Context, _ *struct{}) (*FamilyAnalyticsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	members, err := s.services.Analytics.Family(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &FamilyAnalyticsOutput{Body: members}, nil
}

func (s *Server) handleUserAnalytics(ctx context.Context, _ *struct{}) (*UserAnalyticsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	me, err := s.services.Analytics.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserAnalyticsOutput{Body: me}, nil
}
