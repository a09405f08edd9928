package auth

import "github.com/upskillpro/backend/domain"

// HasPrivilegedRead reports whether the role may use the admin read surface.
// admin and super_admin share it.
func HasPrivilegedRead(r domain.Role) bool {
	return r == domain.RoleAdmin || r == domain.RoleSuperAdmin
}

// CanMutatePlatform reports whether the role may mutate other admins,
// system settings, or any other platform-level state.
func CanMutatePlatform(r domain.Role) bool {
	return r == domain.RoleSuperAdmin
}

// CanCreateCourses reports whether the role may create and manage courses.
func CanCreateCourses(r domain.Role) bool {
	return r == domain.RoleInstructor
}

// CanEnroll reports whether the role may enroll in courses.
func CanEnroll(r domain.Role) bool {
	return r == domain.RoleStudent
}
