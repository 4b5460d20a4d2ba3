// Package domain holds the role vocabulary shared by every module that gates
// or routes on the caller's role.
package domain

import "github.com/google/uuid"

const (
	RoleUser       = "user"
	RoleStaff      = "staff"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Seeded role ids. Migrations insert the same values.
var (
	RoleUserID       = uuid.MustParse("550e8400-e29b-41d4-a716-446655440001")
	RoleStaffID      = uuid.MustParse("550e8400-e29b-41d4-a716-446655440002")
	RoleAdminID      = uuid.MustParse("550e8400-e29b-41d4-a716-446655440003")
	RoleSuperAdminID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440004")
)

// StaffCapableRoles may hold tasks and reach staff routes.
var StaffCapableRoles = []string{RoleStaff, RoleAdmin, RoleSuperAdmin}

// AdminRoles reach admin routes.
var AdminRoles = []string{RoleAdmin, RoleSuperAdmin}

// IsStaffCapable reports whether role may be assigned a task.
func IsStaffCapable(role string) bool {
	for _, r := range StaffCapableRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsKnownRole reports whether role names one of the seeded roles.
func IsKnownRole(role string) bool {
	switch role {
	case RoleUser, RoleStaff, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// RoleIDByName maps a seeded role name to its fixed id.
func RoleIDByName(role string) (uuid.UUID, bool) {
	switch role {
	case RoleUser:
		return RoleUserID, true
	case RoleStaff:
		return RoleStaffID, true
	case RoleAdmin:
		return RoleAdminID, true
	case RoleSuperAdmin:
		return RoleSuperAdminID, true
	}
	return uuid.Nil, false
}
