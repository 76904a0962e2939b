package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/talowa-org/talowa-backend/internal/model"
	"github.com/talowa-org/talowa-backend/internal/repository"
	"github.com/talowa-org/talowa-backend/pkg/deeplink"
	"github.com/talowa-org/talowa-backend/pkg/refcode"

	"github.com/google/uuid"
)

// maxCodeAttempts bounds reservation retries. The code space holds about
// 1.07e9 values, so more than a couple of collisions in a row means
// something is wrong with the registry.
const maxCodeAttempts = 10

type RegistrationInput struct {
	UserID       string
	Phone        string
	FullName     string
	ReferralCode string
}

type RegistrationService struct {
	repo    RegistrationRepository
	pending deeplink.PendingStore
}

func NewRegistrationService(repo RegistrationRepository, pending deeplink.PendingStore) *RegistrationService {
	return &RegistrationService{
		repo:    repo,
		pending: pending,
	}
}

// Register creates a provisional user with a freshly minted referral code.
// The referrer code is captured as-is into ProvisionalRef; validation of
// its owner is deferred to activation. A missing or malformed code falls
// back to the admin code instead of failing: a bad referral link must
// never block someone from registering.
func (s *RegistrationService) Register(ctx context.Context, input RegistrationInput) (*model.User, error) {
	effectiveRef := input.ReferralCode
	if effectiveRef == "" {
		effectiveRef = s.pending.Consume()
	}
	if !refcode.Valid(effectiveRef) {
		effectiveRef = refcode.AdminCode
	}

	userID := input.UserID
	if userID == "" {
		userID = uuid.NewString()
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := refcode.New()
		if err != nil {
			return nil, fmt.Errorf("failed to generate referral code: %w", err)
		}

		user := &model.User{
			ID:             userID,
			Phone:          input.Phone,
			FullName:       input.FullName,
			ReferralCode:   code,
			ProvisionalRef: effectiveRef,
			CurrentRole:    RoleMember,
			Status:         model.StatusPendingPayment,
			MembershipPaid: false,
			RegisteredAt:   time.Now().UTC(),
		}

		err = s.repo.CreateUser(ctx, user)
		if errors.Is(err, repository.ErrCodeTaken) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		return user, nil
	}

	return nil, ErrCodeGenerationExhausted
}

func (s *RegistrationService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
