package access

const (
	CapTradesRead    = "trades.read"
	CapTradesWrite   = "trades.write"
	CapBillingManage = "billing.manage"
	CapSubscribe     = "billing.subscribe"
)

// CapabilitiesFor lists what the UI may enable for a level.
func CapabilitiesFor(level Level) []string {
	switch level {
	case LevelFull:
		return []string{CapTradesRead, CapTradesWrite, CapBillingManage}
	case LevelLimited:
		return []string{CapBillingManage, CapSubscribe}
	default:
		return []string{CapSubscribe}
	}
}
