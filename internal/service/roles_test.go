package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleTable_Evaluate(t *testing.T) {
	roles := NewRoleTable(nil)

	tests := []struct {
		name   string
		direct int
		team   int
		want   string
	}{
		{"zero counters", 0, 0, RoleMember},
		{"below first threshold", 4, 24, RoleMember},
		{"organizer exact", 5, 25, RoleOrganizer},
		{"direct met but team short", 10, 50, RoleOrganizer},
		{"team met but direct short", 9, 100000, RoleOrganizer},
		{"community leader", 10, 100, RoleCommunityLeader},
		{"district coordinator", 25, 500, RoleDistrictCoordinator},
		{"state coordinator", 50, 2500, RoleStateCoordinator},
		{"national coordinator", 100, 10000, RoleNationalCoordinator},
		{"far above top", 1000, 1000000, RoleNationalCoordinator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roles.Evaluate(tt.direct, tt.team))
		})
	}
}

func TestRoleTable_EvaluateIsPure(t *testing.T) {
	roles := NewRoleTable(nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, RoleCommunityLeader, roles.Evaluate(10, 100))
	}
}

func TestRoleTable_RankOrdering(t *testing.T) {
	roles := NewRoleTable(nil)

	ladder := []string{
		RoleMember,
		RoleOrganizer,
		RoleCommunityLeader,
		RoleDistrictCoordinator,
		RoleStateCoordinator,
		RoleNationalCoordinator,
	}
	for i := 1; i < len(ladder); i++ {
		assert.Greater(t, roles.Rank(ladder[i]), roles.Rank(ladder[i-1]),
			"%s should outrank %s", ladder[i], ladder[i-1])
	}

	assert.Equal(t, 0, roles.Rank("not_a_role"))
}

func TestRoleTable_CustomThresholds(t *testing.T) {
	roles := NewRoleTable([]RoleThreshold{
		{Role: "captain", MinDirect: 3, MinTeam: 10},
	})

	assert.Equal(t, RoleMember, roles.Evaluate(2, 100))
	assert.Equal(t, "captain", roles.Evaluate(3, 10))
	assert.Greater(t, roles.Rank("captain"), roles.Rank(RoleMember))
}
