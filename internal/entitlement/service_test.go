package entitlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradejournal-billing/internal/domain/access"
	"tradejournal-billing/internal/domain/billing"
)

type stubSubs struct {
	sub   *billing.Subscription
	err   error
	calls int
}

func (s *stubSubs) LatestForUser(context.Context, string) (*billing.Subscription, error) {
	s.calls++
	return s.sub, s.err
}

type mapCache map[string]access.Decision

func (m mapCache) Get(_ context.Context, userID string) (access.Decision, bool) {
	d, ok := m[userID]
	return d, ok
}

func (m mapCache) Set(_ context.Context, userID string, d access.Decision) { m[userID] = d }

func TestService_FreshWritesCache(t *testing.T) {
	end := time.Now().Add(time.Hour)
	subs := &stubSubs{sub: &billing.Subscription{Status: billing.StatusActive, CurrentPeriodEnd: &end}}
	cache := mapCache{}
	svc := NewService(subs, cache)

	d, err := svc.Fresh(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, access.LevelFull, d.Access)
	assert.Equal(t, d, cache["user-1"])
}

func TestService_CachedHitSkipsRepository(t *testing.T) {
	subs := &stubSubs{}
	cache := mapCache{"user-1": {Access: access.LevelLimited, HasHistory: true}}
	svc := NewService(subs, cache)

	d, err := svc.Cached(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, access.LevelLimited, d.Access)
	assert.Zero(t, subs.calls)

	d, err = svc.Cached(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Equal(t, access.LevelNone, d.Access)
	assert.Equal(t, 1, subs.calls)
}

func TestService_RepositoryError(t *testing.T) {
	svc := NewService(&stubSubs{err: errors.New("db down")}, nil)
	_, err := svc.Fresh(context.Background(), "user-1")
	assert.Error(t, err)
}
