package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/repository"
	"github.com/petrodesk/petrodesk/utils"
	"github.com/redis/go-redis/v9"
)

// ErrUserNotFound is returned when permission resolution targets a missing or inactive user
var ErrUserNotFound = errors.New("user not found")

// PermissionSet is the resolved authorization context of one user
type PermissionSet struct {
	UserID            uint                 `json:"user_id"`
	ProfileName       string               `json:"profile_name"`
	StationID         *uint                `json:"station_id,omitempty"`
	Capabilities      []models.Capability  `json:"capabilities"`
	MaxApprovalMargin *float64             `json:"max_approval_margin,omitempty"`
	capabilitySet     models.CapabilitySet `json:"-"`
}

// Has reports whether the set includes a capability
func (p *PermissionSet) Has(capability models.Capability) bool {
	if p.capabilitySet == nil {
		p.capabilitySet = make(models.CapabilitySet, len(p.Capabilities))
		for _, c := range p.Capabilities {
			p.capabilitySet[c] = true
		}
	}
	return p.capabilitySet.Has(capability)
}

// PermissionService resolves user capabilities from profile flags
type PermissionService interface {
	Resolve(ctx context.Context, userID uint) (*PermissionSet, error)
	Invalidate(ctx context.Context, userID uint) error
}

// PermissionServiceImpl implements PermissionService with a Redis read-through cache
type PermissionServiceImpl struct {
	userRepo repository.UserRepository
	rc       *redis.Client
	cacheTTL time.Duration
}

// NewPermissionService creates a new permission service
func NewPermissionService(userRepo repository.UserRepository, rc *redis.Client, cacheTTL time.Duration) PermissionService {
	if cacheTTL == 0 {
		cacheTTL = utils.PermissionCacheTTL
	}
	return &PermissionServiceImpl{
		userRepo: userRepo,
		rc:       rc,
		cacheTTL: cacheTTL,
	}
}

// Resolve returns the capability set of one user, from cache when possible
func (s *PermissionServiceImpl) Resolve(ctx context.Context, userID uint) (*PermissionSet, error) {
	cacheKey := fmt.Sprintf(utils.PermissionCacheKeyFmt, userID)

	if s.rc != nil {
		if bs, err := s.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached PermissionSet
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	user, err := s.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user for permission resolution: %w", err)
	}
	if user == nil || !utils.IsTrue(user.IsActive) {
		return nil, ErrUserNotFound
	}
	if user.Profile == nil {
		return nil, fmt.Errorf("user %d has no profile assigned", userID)
	}

	capabilitySet := user.Profile.Capabilities()
	capabilities := make([]models.Capability, 0, len(capabilitySet))
	for c, enabled := range capabilitySet {
		if enabled {
			capabilities = append(capabilities, c)
		}
	}

	set := &PermissionSet{
		UserID:            user.ID,
		ProfileName:       user.Profile.Name,
		StationID:         user.StationID,
		Capabilities:      capabilities,
		MaxApprovalMargin: user.Profile.MaxApprovalMargin,
		capabilitySet:     capabilitySet,
	}

	if s.rc != nil {
		if bs, err := json.Marshal(set); err == nil {
			_ = s.rc.Set(ctx, cacheKey, bs, s.cacheTTL).Err()
		}
	}

	return set, nil
}

// Invalidate drops the cached permission set of one user
func (s *PermissionServiceImpl) Invalidate(ctx context.Context, userID uint) error {
	if s.rc == nil {
		return nil
	}
	cacheKey := fmt.Sprintf(utils.PermissionCacheKeyFmt, userID)
	if err := s.rc.Del(ctx, cacheKey).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to invalidate permission cache: %w", err)
	}
	return nil
}
