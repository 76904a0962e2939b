package service

// RoleMember is the base role every user starts with.
const RoleMember = "member"

const (
	RoleOrganizer           = "organizer"
	RoleCommunityLeader     = "community_leader"
	RoleDistrictCoordinator = "district_coordinator"
	RoleStateCoordinator    = "state_coordinator"
	RoleNationalCoordinator = "national_coordinator"
)

// RoleThreshold names a role and the minimums that earn it. Both minimums
// must be met.
type RoleThreshold struct {
	Role      string
	MinDirect int
	MinTeam   int
}

// DefaultRoleThresholds is the progression ladder, highest rank first.
var DefaultRoleThresholds = []RoleThreshold{
	{Role: RoleNationalCoordinator, MinDirect: 100, MinTeam: 10000},
	{Role: RoleStateCoordinator, MinDirect: 50, MinTeam: 2500},
	{Role: RoleDistrictCoordinator, MinDirect: 25, MinTeam: 500},
	{Role: RoleCommunityLeader, MinDirect: 10, MinTeam: 100},
	{Role: RoleOrganizer, MinDirect: 5, MinTeam: 25},
}

// RoleTable evaluates roles against an ordered threshold list. It is pure:
// the same counters always produce the same role.
type RoleTable struct {
	thresholds []RoleThreshold
}

func NewRoleTable(thresholds []RoleThreshold) *RoleTable {
	if len(thresholds) == 0 {
		thresholds = DefaultRoleThresholds
	}
	return &RoleTable{thresholds: thresholds}
}

// Evaluate returns the highest role whose direct and team minimums are
// both met, falling back to the base role.
func (t *RoleTable) Evaluate(directReferrals, teamSize int) string {
	for _, th := range t.thresholds {
		if directReferrals >= th.MinDirect && teamSize >= th.MinTeam {
			return th.Role
		}
	}
	return RoleMember
}

// Rank orders roles for the monotonicity guard: a stored role is only ever
// replaced by one of strictly higher rank. Unknown roles rank as base.
func (t *RoleTable) Rank(role string) int {
	for i, th := range t.thresholds {
		if th.Role == role {
			return len(t.thresholds) - i
		}
	}
	return 0
}
