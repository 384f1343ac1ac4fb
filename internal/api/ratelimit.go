package api

import (
	domainerrors "github.com/mailib/mailib-server/internal/errors"
)

// allowSearch spends one token from the user's search bucket.
func (s *Server) allowSearch(userID string) error {
	if !s.searchLimiter.Allow(userID) {
		s.logger.Warn("search rate limit exceeded", "user_id", userID)
		return domainerrors.RateLimited("Too many search requests, please slow down")
	}
	return nil
}
