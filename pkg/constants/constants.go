package constants

//============== DEVICE STATES ==============

// Device lifecycle states. "loaned" is set only by the loan engine;
// "maintenance" and "retired" only by an administrative override.
const (
	DeviceStateAvailable   = "available"
	DeviceStateLoaned      = "loaned"
	DeviceStateMaintenance = "maintenance"
	DeviceStateRetired     = "retired"
)

// ValidDeviceStates lists every state an administrator may set explicitly.
var ValidDeviceStates = []string{
	DeviceStateAvailable,
	DeviceStateLoaned,
	DeviceStateMaintenance,
	DeviceStateRetired,
}

func IsValidDeviceState(state string) bool {
	for _, s := range ValidDeviceStates {
		if s == state {
			return true
		}
	}
	return false
}

//============== STUDENT STATUSES ==============

const (
	StudentStatusActive   = "active"
	StudentStatusInactive = "inactive"
)

//============== ADMINISTRATOR ROLES ==============

const (
	RoleAdministrator = "administrator"
	RoleViewer        = "viewer"
)

//============== CACHE KEYS ==============

const (
	// Aggregated loan statistics, invalidated on every loan open/close.
	CacheKeyLoanStats = "stats:loans"

	// Dashboard counters (devices, students, active loans).
	CacheKeyDashboardStats = "stats:dashboard"
)

//============== PASSWORD POLICY ==============

const MinPasswordLength = 6
