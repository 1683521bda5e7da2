package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tradejournal-billing/internal/domain/billing"
)

func ptr(t time.Time) *time.Time { return &t }

func TestDecide_NeverSubscribed(t *testing.T) {
	d := Decide(nil, time.Now())

	assert.False(t, d.HasHistory)
	assert.False(t, d.IsActive)
	assert.Equal(t, LevelNone, d.Access)
	assert.Equal(t, ReasonNoHistory, d.Reason)
	assert.Equal(t, RouteSubscribe, d.Route)
	assert.Nil(t, d.Status)
}

func TestDecide_CanceledAndEnded(t *testing.T) {
	now := time.Now()
	sub := &billing.Subscription{
		Status:           billing.StatusCanceled,
		CurrentPeriodEnd: ptr(now.Add(-24 * time.Hour)),
		EndedAt:          ptr(now.Add(-time.Hour)),
	}

	d := Decide(sub, now)

	assert.True(t, d.HasHistory)
	assert.False(t, d.IsActive)
	assert.Equal(t, LevelLimited, d.Access)
	assert.Equal(t, ReasonInactive, d.Reason)
	assert.Equal(t, RouteDashboard, d.Route)
	if assert.NotNil(t, d.Status) {
		assert.Equal(t, "canceled", *d.Status)
	}
}

func TestDecide_CanceledWithinPaidPeriod(t *testing.T) {
	now := time.Now()
	sub := &billing.Subscription{
		Status:            billing.StatusCanceled,
		CancelAtPeriodEnd: true,
		CancelAt:          ptr(now.Add(-time.Hour)),
		CanceledAt:        ptr(now.Add(-time.Hour)),
		CurrentPeriodEnd:  ptr(now.Add(5 * 24 * time.Hour)),
	}

	d := Decide(sub, now)

	assert.True(t, d.IsActive)
	assert.Equal(t, LevelFull, d.Access)
	assert.Equal(t, ReasonActive, d.Reason)
}

func TestIsActive_PeriodEndBoundary(t *testing.T) {
	periodEnd := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	sub := &billing.Subscription{
		Status:           billing.StatusActive,
		CurrentPeriodEnd: ptr(periodEnd),
	}

	assert.True(t, IsActive(sub, periodEnd.Add(-time.Second)))
	assert.False(t, IsActive(sub, periodEnd))
	assert.False(t, IsActive(sub, periodEnd.Add(time.Second)))
}

func TestIsActive(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	future := ptr(now.Add(72 * time.Hour))
	past := ptr(now.Add(-72 * time.Hour))

	tests := []struct {
		name string
		sub  *billing.Subscription
		want bool
	}{
		{"nil", nil, false},
		{"active open period", &billing.Subscription{Status: billing.StatusActive, CurrentPeriodEnd: future}, true},
		{"active without period end", &billing.Subscription{Status: billing.StatusActive}, true},
		{"trialing", &billing.Subscription{Status: billing.StatusTrialing, CurrentPeriodEnd: future}, true},
		{"status is normalized", &billing.Subscription{Status: " Active ", CurrentPeriodEnd: future}, true},
		{"active period over", &billing.Subscription{Status: billing.StatusActive, CurrentPeriodEnd: past}, false},
		{"active but ended", &billing.Subscription{Status: billing.StatusActive, CurrentPeriodEnd: future, EndedAt: past}, false},
		{"active scheduled cancel ahead", &billing.Subscription{Status: billing.StatusActive, CurrentPeriodEnd: future, CancelAt: future}, true},
		{"active scheduled cancel passed", &billing.Subscription{Status: billing.StatusActive, CurrentPeriodEnd: future, CancelAt: past}, false},
		{"canceled without period end", &billing.Subscription{Status: billing.StatusCanceled}, false},
		{"past_due", &billing.Subscription{Status: billing.StatusPastDue, CurrentPeriodEnd: future}, false},
		{"unpaid", &billing.Subscription{Status: billing.StatusUnpaid, CurrentPeriodEnd: future}, false},
		{"paused", &billing.Subscription{Status: billing.StatusPaused, CurrentPeriodEnd: future}, false},
		{"incomplete", &billing.Subscription{Status: billing.StatusIncomplete, CurrentPeriodEnd: future}, false},
		{"trial end does not extend", &billing.Subscription{Status: billing.StatusPastDue, TrialEnd: future, CurrentPeriodEnd: future}, false},
		{"unknown status", &billing.Subscription{Status: "something_new", CurrentPeriodEnd: future}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsActive(tt.sub, now))
		})
	}
}
