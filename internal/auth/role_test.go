package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRole(t *testing.T) {
	cases := []struct {
		email string
		role  Role
		ok    bool
	}{
		{"x@svkmmumbai.onmicrosoft.com", RoleStudent, true},
		{"prof@svkm.ac.in", RoleFaculty, true},
		{"admin@svkm.ac.in", RoleAdmin, true},
		{"x@gmail.com", "", false},
		{"Admin@svkm.ac.in", RoleFaculty, true},
		{"admin@svkm.ac.in.evil.com", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.email, func(t *testing.T) {
			role, ok := ResolveRole(tc.email)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.role, role)
		})
	}
}

func TestResolveRoleIsStable(t *testing.T) {
	for i := 0; i < 50; i++ {
		role, ok := ResolveRole("admin@svkm.ac.in")
		assert.True(t, ok)
		assert.Equal(t, RoleAdmin, role)
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleStudent.Valid())
	assert.True(t, RoleFaculty.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("guest").Valid())
}
