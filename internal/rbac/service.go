package rbac

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const permCacheTTL = 30 * time.Second

// Service is the permission gate. Decisions are pure set membership over the
// principal's role permissions; the only state it keeps is a short-lived
// Redis cache in front of the role store.
type Service struct {
	repo   Repository
	cache  *redis.Client
	logger *slog.Logger
}

// NewService constructs a Service. cache may be nil, in which case every
// check hits the store.
func NewService(repo Repository, cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// EffectivePermissions returns the permission strings granted to a user.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	if perms, ok := s.cached(ctx, userID); ok {
		return perms, nil
	}
	perms, err := s.repo.UserPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, userID, perms)
	return perms, nil
}

// Authorize reports whether the user holds the required capability. An empty
// permission set denies every gated action.
func (s *Service) Authorize(ctx context.Context, userID int64, capability string) (bool, error) {
	if capability == "" {
		return false, nil
	}
	perms, err := s.EffectivePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p == capability {
			return true, nil
		}
	}
	return false, nil
}

// GetRole returns a single role with its permission set.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	return s.repo.GetRole(ctx, id)
}

// ListRoles returns all roles with their permission sets.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// InvalidateUser drops the cached permissions for a user after a role change.
func (s *Service) InvalidateUser(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, permCacheKey(userID)).Err(); err != nil {
		s.warn("invalidate permission cache", err)
	}
}

func (s *Service) cached(ctx context.Context, userID int64) ([]string, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, err := s.cache.Get(ctx, permCacheKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.warn("read permission cache", err)
		}
		return nil, false
	}
	var perms []string
	if err := json.Unmarshal(payload, &perms); err != nil {
		return nil, false
	}
	return perms, true
}

func (s *Service) store(ctx context.Context, userID int64, perms []string) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(perms)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, permCacheKey(userID), payload, permCacheTTL).Err(); err != nil {
		s.warn("write permission cache", err)
	}
}

func (s *Service) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, slog.Any("error", err))
	}
}

func permCacheKey(userID int64) string {
	return fmt.Sprintf("rbac:perms:%d", userID)
}
