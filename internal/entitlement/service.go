package entitlement

import (
	"context"
	"time"

	"tradejournal-billing/internal/domain/access"
	"tradejournal-billing/internal/domain/billing"
)

type SubscriptionReader interface {
	LatestForUser(ctx context.Context, userID string) (*billing.Subscription, error)
}

type DecisionCache interface {
	Get(ctx context.Context, userID string) (access.Decision, bool)
	Set(ctx context.Context, userID string, d access.Decision)
}

// Service computes access decisions from the latest subscription row.
type Service struct {
	subs  SubscriptionReader
	cache DecisionCache
	now   func() time.Time
}

// NewService accepts a nil cache; every lookup is then fresh.
func NewService(subs SubscriptionReader, cache DecisionCache) *Service {
	return &Service{subs: subs, cache: cache, now: time.Now}
}

// Fresh reads the repository, decides, and refreshes the cache.
func (s *Service) Fresh(ctx context.Context, userID string) (access.Decision, error) {
	latest, err := s.subs.LatestForUser(ctx, userID)
	if err != nil {
		return access.Decision{}, err
	}
	d := access.Decide(latest, s.now())
	if s.cache != nil {
		s.cache.Set(ctx, userID, d)
	}
	return d, nil
}

// Cached returns the cached decision if present, otherwise a fresh one.
func (s *Service) Cached(ctx context.Context, userID string) (access.Decision, error) {
	if s.cache != nil {
		if d, ok := s.cache.Get(ctx, userID); ok {
			return d, nil
		}
	}
	return s.Fresh(ctx, userID)
}
