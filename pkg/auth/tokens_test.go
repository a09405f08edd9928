package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upskillpro/backend/domain"
)

func TestIssueAndVerify(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", "upskillpro", time.Hour)
	require.NoError(t, err)

	user := &domain.User{ID: "u1", Email: "a@b.com", Role: domain.RoleInstructor}
	token, err := issuer.Issue(user)
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, domain.RoleInstructor, claims.Role)
}

func TestVerifyRejectsTampering(t *testing.T) {
	issuer, _ := NewTokenIssuer("test-secret", "upskillpro", time.Hour)
	other, _ := NewTokenIssuer("other-secret", "upskillpro", time.Hour)

	token, err := other.Issue(&domain.User{ID: "u1", Role: domain.RoleStudent})
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.Error(t, err)

	_, err = issuer.Verify("not.a.token")
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer, _ := NewTokenIssuer("test-secret", "upskillpro", time.Nanosecond)
	token, err := issuer.Issue(&domain.User{ID: "u1", Role: domain.RoleStudent})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestRolePredicates(t *testing.T) {
	assert.True(t, HasPrivilegedRead(domain.RoleAdmin))
	assert.True(t, HasPrivilegedRead(domain.RoleSuperAdmin))
	assert.False(t, HasPrivilegedRead(domain.RoleInstructor))

	assert.True(t, CanMutatePlatform(domain.RoleSuperAdmin))
	assert.False(t, CanMutatePlatform(domain.RoleAdmin))

	assert.True(t, CanCreateCourses(domain.RoleInstructor))
	assert.False(t, CanCreateCourses(domain.RoleStudent))
	assert.True(t, CanEnroll(domain.RoleStudent))
}
