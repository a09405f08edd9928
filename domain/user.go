// Package domain holds the entity types persisted in the LearningPlatform
// table. Items are tagged unions discriminated by entityType; each repository
// parses its own variant, so these are plain structs with dynamodbav tags.
package domain

// Role is the user's role. admin and super_admin share privileged reads;
// only super_admin may mutate other admins or system settings.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ValidRole reports whether r is one of the four known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// AccountStatus is the user's suspension state.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
)

// User is the profile item at USER#<id>/PROFILE. Users are never hard
// deleted; suspension toggles AccountStatus.
type User struct {
	ID            string        `json:"id" dynamodbav:"id"`
	Name          string        `json:"name" dynamodbav:"name"`
	Email         string        `json:"email" dynamodbav:"email"`
	PasswordHash  string        `json:"-" dynamodbav:"passwordHash"`
	Role          Role          `json:"role" dynamodbav:"role"`
	AccountStatus AccountStatus `json:"accountStatus" dynamodbav:"accountStatus"`

	LastLoginAt         string `json:"lastLoginAt,omitempty" dynamodbav:"lastLoginAt,omitempty"`
	LoginCount          int    `json:"loginCount" dynamodbav:"loginCount"`
	FailedLoginAttempts int    `json:"-" dynamodbav:"failedLoginAttempts"`

	SuspendedBy      string `json:"suspendedBy,omitempty" dynamodbav:"suspendedBy,omitempty"`
	SuspendedAt      string `json:"suspendedAt,omitempty" dynamodbav:"suspendedAt,omitempty"`
	SuspensionReason string `json:"suspensionReason,omitempty" dynamodbav:"suspensionReason,omitempty"`

	CreatedAt string `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt string `json:"updatedAt" dynamodbav:"updatedAt"`
}

// IsSuspended reports whether the account is suspended.
func (u *User) IsSuspended() bool {
	return u.AccountStatus == AccountSuspended
}
