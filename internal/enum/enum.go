package enum

// ── Order lifecycle (CHECK constrained in DB) ──

const (
	OrderStatusPlaced    = "PLACED"
	OrderStatusReady     = "READY"
	OrderStatusCompleted = "COMPLETED"
)

// ── Offers (CHECK constrained in DB) ──

const (
	DiscountTypePercentage = "PERCENTAGE"
	DiscountTypeFixed      = "FIXED"
)

// DayCodes are the weekday codes an offer window may name, in week order.
var DayCodes = []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

// ── Roles (CHECK constrained in DB) ──

const (
	RoleStudent   = "Student"
	RoleAttendant = "Attendant"
	RoleManager   = "Manager"
)
