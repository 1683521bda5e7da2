package access

import (
	"time"

	"tradejournal-billing/internal/domain/billing"
)

// IsActive reports whether sub entitles its owner to full access at now.
//
// A subscription is active while it has not ended, its paid period is still
// open, and either the provider says active/trialing (and no scheduled
// cancellation has passed) or it was canceled but the paid period it covers
// has not run out yet. Trial end never extends access on its own.
func IsActive(sub *billing.Subscription, now time.Time) bool {
	if sub == nil || sub.EndedAt != nil {
		return false
	}
	if sub.CurrentPeriodEnd != nil && !sub.CurrentPeriodEnd.After(now) {
		return false
	}

	status := billing.NormalizeStatus(string(sub.Status))
	switch {
	case status.Entitling():
		return sub.CancelAt == nil || sub.CancelAt.After(now)
	case status == billing.StatusCanceled:
		// paid-through grace needs a known period end
		return sub.CurrentPeriodEnd != nil
	default:
		return false
	}
}

// Decide maps the user's latest subscription row (nil if they never
// subscribed) to a route and access level.
func Decide(latest *billing.Subscription, now time.Time) Decision {
	if latest == nil {
		return Decision{
			Route:  RouteSubscribe,
			Access: LevelNone,
			Reason: ReasonNoHistory,
		}
	}

	status := string(latest.Status)
	d := Decision{
		HasHistory: true,
		Route:      RouteDashboard,
		Status:     &status,
	}
	if IsActive(latest, now) {
		d.IsActive = true
		d.Access = LevelFull
		d.Reason = ReasonActive
	} else {
		d.Access = LevelLimited
		d.Reason = ReasonInactive
	}
	return d
}
