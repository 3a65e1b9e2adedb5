package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Role
		wantErr  bool
	}{
		{"viewer", "viewer", RoleViewer, false},
		{"editor", "editor", RoleEditor, false},
		{"admin", "admin", RoleAdmin, false},
		{"owner", "owner", RoleOwner, false},
		{"unknown role", "superuser", "", true},
		{"empty string", "", "", true},
		{"case sensitive", "Admin", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := ParseRole(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, role)
		})
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleViewer.Valid())
	assert.True(t, RoleOwner.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestRole_AtLeast(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		other    Role
		expected bool
	}{
		{"owner at least admin", RoleOwner, RoleAdmin, true},
		{"admin at least admin", RoleAdmin, RoleAdmin, true},
		{"admin at least editor", RoleAdmin, RoleEditor, true},
		{"editor not at least admin", RoleEditor, RoleAdmin, false},
		{"viewer not at least editor", RoleViewer, RoleEditor, false},
		{"viewer at least viewer", RoleViewer, RoleViewer, true},
		{"invalid role never qualifies", Role("superuser"), RoleViewer, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.role.AtLeast(tt.other))
		})
	}
}

func TestRole_StrictlyBelow(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		other    Role
		expected bool
	}{
		{"viewer below editor", RoleViewer, RoleEditor, true},
		{"editor below admin", RoleEditor, RoleAdmin, true},
		{"admin below owner", RoleAdmin, RoleOwner, true},
		{"admin not below admin", RoleAdmin, RoleAdmin, false},
		{"owner not below admin", RoleOwner, RoleAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.role.StrictlyBelow(tt.other))
		})
	}
}
