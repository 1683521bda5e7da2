package access

// Level is the feature-access tier gating routes and UI.
type Level string

const (
	LevelNone    Level = "none"
	LevelLimited Level = "limited"
	LevelFull    Level = "full"
)

type Reason string

const (
	ReasonNoHistory Reason = "no_history"
	ReasonActive    Reason = "active"
	ReasonInactive  Reason = "inactive"
)

// Route is where a user lands after sign-in.
type Route string

const (
	RouteSubscribe Route = "/subscribe"
	RouteDashboard Route = "/dashboard"
	RouteBilling   Route = "/settings/billing"
)

type Decision struct {
	HasHistory bool    `json:"hasHistory"`
	IsActive   bool    `json:"isActive"`
	Route      Route   `json:"route"`
	Access     Level   `json:"access"`
	Reason     Reason  `json:"reason"`
	Status     *string `json:"status"`
}
