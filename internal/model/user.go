package model

import "time"

type MembershipStatus string

const (
	StatusPendingPayment MembershipStatus = "pending_payment"
	StatusActive         MembershipStatus = "active"
)

// User is a member of the referral network. ReferralCode is minted at
// registration and never changes. ProvisionalRef holds the code captured
// before payment; ReferredBy and ReferralChain are fixed at activation and
// immutable afterwards. The counters and CurrentRole only ever grow.
type User struct {
	ID             string
	Phone          string
	FullName       string
	ReferralCode   string
	ProvisionalRef string
	ReferredBy     *string
	ReferralChain  []string

	DirectReferralCount int
	TotalTeamSize       int
	CurrentRole         string

	Status         MembershipStatus
	MembershipPaid bool
	PaidAt         *time.Time
	PaymentRef     *string

	RegisteredAt time.Time
}
