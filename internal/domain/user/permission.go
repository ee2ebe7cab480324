package user

type Permission string

const (
	// Attendance freeze
	PermissionFreezeView     Permission = "payroll.freeze.view"
	PermissionFreezeFinalize Permission = "payroll.freeze.finalize"
	PermissionFreezeUnfreeze Permission = "payroll.freeze.unfreeze"

	// Snapshots
	PermissionSnapshotView Permission = "payroll.snapshot.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		// Owner can reopen a frozen period
		PermissionFreezeView,
		PermissionFreezeFinalize,
		PermissionFreezeUnfreeze,
		PermissionSnapshotView,
	},
	RoleManager: {
		PermissionFreezeView,
		PermissionFreezeFinalize,
		PermissionSnapshotView,
	},
	RoleEmployee: {
		// Employee has no payroll access
	},
	RolePending: {
		// Pending role has no permissions
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
