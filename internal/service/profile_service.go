package service

import (
	"context"
	"fmt"

	"storefront-backend/internal/authorization"
	"storefront-backend/internal/backend"
	"storefront-backend/internal/models"
	"storefront-backend/pkg/cache"
	"storefront-backend/pkg/validator"
)

// ProfileService reads and writes the caller's display profile and resolves
// the caller's role for the session payload.
type ProfileService struct {
	backend backend.Backend
	cache   *cache.Cache
}

func NewProfileService(b backend.Backend, cacheService *cache.Cache) *ProfileService {
	return &ProfileService{backend: b, cache: cacheService}
}

// Profile returns the caller's profile, or nil when none was saved yet.
func (s *ProfileService) Profile(ctx context.Context, principal string) (*models.UserProfile, error) {
	if s.cache != nil && principal != "" {
		var profile models.UserProfile
		if err := s.cache.GetCachedProfile(principal, &profile); err == nil {
			return &profile, nil
		}
	}

	profile, err := s.backend.GetCallerUserProfile(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && principal != "" && profile != nil {
		s.cache.CacheProfile(principal, profile)
	}
	return profile, nil
}

// Save stores the caller's display name.
func (s *ProfileService) Save(ctx context.Context, principal string, req models.SaveProfileRequest) (*models.UserProfile, error) {
	name := validator.TrimSpaces(validator.SanitizeString(validator.NormalizeSpaces(req.Name)))
	if name == "" {
		return nil, validationErrorf("name is required")
	}

	profile := models.UserProfile{Name: name}
	if err := s.backend.SaveCallerUserProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	if s.cache != nil && principal != "" {
		s.cache.InvalidateProfile(principal)
	}
	return &profile, nil
}

// Role resolves the caller's role; anonymous callers are guests.
func (s *ProfileService) Role(ctx context.Context, principal string) authorization.UserRole {
	if principal == "" {
		return authorization.RoleGuest
	}

	role, err := s.backend.GetCallerUserRole(ctx)
	if err != nil {
		return authorization.RoleGuest
	}
	return role
}
