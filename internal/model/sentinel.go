package model

import "github.com/authcore/authcore/pkg/kernel"

// Sentinel identifiers fixed by spec.md §6. The system user, the global
// Settings singleton, and the Admin role all share one UUID by design; the
// Default role carries the next one.
const (
	SystemUserIDStr = "00000000-0000-0000-0000-000000000000"
	SettingsIDStr   = "00000000-0000-0000-0000-000000000000"
	AdminRoleIDStr  = "00000000-0000-0000-0000-000000000000"
	DefaultRoleIDStr = "00000000-0000-0000-0000-000000000001"
)

var (
	SystemUserID = kernel.NewUserID(SystemUserIDStr)
	AdminRoleID  = kernel.NewRoleID(AdminRoleIDStr)
	DefaultRoleID = kernel.NewRoleID(DefaultRoleIDStr)
)

// IsSystemUser reports whether id is the sentinel system-user id.
func IsSystemUser(id kernel.UserID) bool {
	return id == SystemUserID
}
