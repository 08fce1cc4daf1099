package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilityResolution(t *testing.T) {
	p := New([]string{"admin-1", "admin-2"}, []string{"mgr-1"}, nil)

	tests := []struct {
		name    string
		roleIDs []string
		want    Capability
	}{
		{"no roles", nil, None},
		{"unrelated roles", []string{"member", "booster"}, None},
		{"manager role", []string{"mgr-1"}, CitizenshipManager},
		{"admin role", []string{"admin-2"}, Admin},
		{"admin wins over manager", []string{"mgr-1", "admin-1"}, Admin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Capability(tt.roleIDs))
		})
	}
}

func TestAuthorizeThreshold(t *testing.T) {
	p := New([]string{"admin-1"}, []string{"mgr-1"}, nil)

	assert.NoError(t, p.Authorize(Admin, CitizenshipManager))
	assert.NoError(t, p.Authorize(CitizenshipManager, CitizenshipManager))

	var denied *DeniedError
	err := p.Authorize(None, CitizenshipManager)
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, CitizenshipManager, denied.Need)
}

func TestAuthorizeBanIsAdminOnly(t *testing.T) {
	p := New([]string{"admin-1"}, []string{"mgr-1"}, nil)

	assert.NoError(t, p.AuthorizeBan(Admin))

	var denied *DeniedError
	err := p.AuthorizeBan(CitizenshipManager)
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, Admin, denied.Need)

	assert.Error(t, p.AuthorizeBan(None))
}

func TestUnconfiguredPolicyAllowsEveryone(t *testing.T) {
	p := New(nil, nil, nil)

	assert.Equal(t, Admin, p.Capability(nil))
	assert.NoError(t, p.Authorize(p.Capability(nil), CitizenshipManager))
	assert.NoError(t, p.AuthorizeBan(p.Capability(nil)))
}

func TestEmptyRoleIDsAreIgnored(t *testing.T) {
	// Lists holding only empty strings must not trigger allow-all by accident,
	// and must not match an actor with an empty role ID either.
	p := New([]string{""}, []string{"mgr-1"}, nil)

	assert.Equal(t, None, p.Capability([]string{""}))
	assert.Equal(t, CitizenshipManager, p.Capability([]string{"mgr-1"}))
}

func TestDeniedErrorMessageNamesCapability(t *testing.T) {
	err := &DeniedError{Need: Admin}
	assert.Contains(t, err.Error(), "admin")
}
