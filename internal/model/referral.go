package model

import "time"

// ReferralCodeEntry is a row in the code registry. A code belongs to
// exactly one owner; reservation of a code is atomic. Inactive codes still
// exist but never accept new attachments.
type ReferralCodeEntry struct {
	Code            string
	OwnerUserID     string
	Active          bool
	ClickCount      int
	ConversionCount int
	CreatedAt       time.Time
}

type PaymentOutcome string

const (
	PaymentSettled PaymentOutcome = "settled"
	PaymentFailed  PaymentOutcome = "failed"
)

// PaymentEvent is what the payment collaborator delivers, at least once.
// It is decoded straight off the webhook body.
type PaymentEvent struct {
	UserID     string         `json:"user_id"`
	PaymentRef string         `json:"payment_ref"`
	Outcome    PaymentOutcome `json:"outcome"`
	Amount     int64          `json:"amount"`
	Currency   string         `json:"currency"`
}

// ActivationResult reports the state after an activation attempt.
// AlreadyActive is true when the idempotency guard short-circuited a
// replayed delivery; no propagation happened in that case.
type ActivationResult struct {
	User          *User
	AlreadyActive bool
	Attached      bool
}

type LeaderboardEntry struct {
	UserID              string
	FullName            string
	ReferralCode        string
	CurrentRole         string
	DirectReferralCount int
	TotalTeamSize       int
}

// NetworkSummary is the admin-facing aggregate over the whole network.
type NetworkSummary struct {
	TotalUsers    int
	ActiveUsers   int
	PendingUsers  int
	TotalReferred int
}
