package service

import (
	"context"
	"testing"
	"time"

	"github.com/talowa-org/talowa-backend/internal/model"
	"github.com/talowa-org/talowa-backend/internal/repository"
	"github.com/talowa-org/talowa-backend/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func pendingUser(id, code, provisionalRef string) *model.User {
	return &model.User{
		ID:             id,
		ReferralCode:   code,
		ProvisionalRef: provisionalRef,
		CurrentRole:    RoleMember,
		Status:         model.StatusPendingPayment,
		RegisteredAt:   time.Now().UTC(),
	}
}

func activeUser(id, code string) *model.User {
	paidAt := time.Now().UTC()
	ref := "pay-1"
	return &model.User{
		ID:             id,
		ReferralCode:   code,
		ProvisionalRef: "TALADMIN",
		CurrentRole:    RoleMember,
		Status:         model.StatusActive,
		MembershipPaid: true,
		PaidAt:         &paidAt,
		PaymentRef:     &ref,
	}
}

func TestActivationService_Activate_AttachesAndPropagates(t *testing.T) {
	mockRepo := &mocks.MockActivationRepository{}
	svc := NewActivationService(mockRepo, NewRoleTable(nil))

	// A (root) referred B, B referred C, C's code referred the new user N.
	newUser := pendingUser("N", "TALNNNNNN", "TALCCCCCC")
	referrer := &model.User{
		ID:            "C",
		ReferralCode:  "TALCCCCCC",
		ReferralChain: []string{"A", "B"},
		CurrentRole:   RoleMember,
		Status:        model.StatusActive,
	}

	mockRepo.On("GetUser", mock.Anything, "N").Return(newUser, nil).Once()
	mockRepo.On("ResolveCode", mock.Anything, "TALCCCCCC").Return("C", nil)
	mockRepo.On("GetUser", mock.Anything, "C").Return(referrer, nil).Once()

	mockRepo.On("ActivateUser", mock.Anything, mock.MatchedBy(func(p repository.ActivateParams) bool {
		return p.UserID == "N" &&
			p.PaymentRef == "pay-77" &&
			p.ReferredBy != nil && *p.ReferredBy == "TALCCCCCC" &&
			assert.ObjectsAreEqual([]string{"A", "B", "C"}, p.Chain)
	})).Return(nil)

	// Team size grows for every ancestor; only C gets a direct referral.
	mockRepo.On("IncrementAncestorCounters", mock.Anything, "A", false).Return(0, 4, RoleMember, nil)
	mockRepo.On("IncrementAncestorCounters", mock.Anything, "B", false).Return(2, 3, RoleMember, nil)
	mockRepo.On("IncrementAncestorCounters", mock.Anything, "C", true).Return(1, 1, RoleMember, nil)

	activated := activeUser("N", "TALNNNNNN")
	mockRepo.On("GetUser", mock.Anything, "N").Return(activated, nil).Once()

	result, err := svc.Activate(context.Background(), "N", "pay-77")

	assert.NoError(t, err)
	assert.False(t, result.AlreadyActive)
	assert.True(t, result.Attached)
	assert.Equal(t, model.StatusActive, result.User.Status)
	mockRepo.AssertExpectations(t)
	// Counters below every role threshold: no role writes at all.
	mockRepo.AssertNotCalled(t, "UpdateUserRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestActivationService_Activate_Idempotent(t *testing.T) {
	mockRepo := &mocks.MockActivationRepository{}
	svc := NewActivationService(mockRepo, NewRoleTable(nil))

	already := activeUser("N", "TALNNNNNN")
	mockRepo.On("GetUser", mock.Anything, "N").Return(already, nil)

	result, err := svc.Activate(context.Background(), "N", "pay-1")

	assert.NoError(t, err)
	assert.True(t, result.AlreadyActive)
	mockRepo.AssertNotCalled(t, "ActivateUser", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "IncrementAncestorCounters", mock.Anything, mock.Anything, mock.Anything)
}

func TestActivationService_Activate_DuplicateDeliveryRace(t *testing.T) {
	mockRepo := &mocks.MockActivationRepository{}
	svc := NewActivationService(mockRepo, NewRoleTable(nil))

	// Status still reads pending, but the concurrent delivery wins the CAS.
	newUser := pendingUser("N", "TALNNNNNN", "TALADMIN")
	mockRepo.On("GetUser", mock.Anything, "N").Return(newUser, nil).Once()
	mockRepo.On("ResolveCode", mock.Anything, "TALADMIN").Return("", repository.ErrNotFound)
	mockRepo.On("ActivateUser", mock.Anything, mock.Anything).Return(repository.ErrAlreadyActive)
	mockRepo.On("GetUser", mock.Anything, "N").Return(activeUser("N", "TALNNNNNN"), nil).Once()

	result, err := svc.Activate(context.Background(), "N", "pay-1")

	assert.NoError(t, err)
	assert.True(t, result.AlreadyActive)
	mockRepo.AssertNotCalled(t, "IncrementAncestorCounters", mock.Anything, mock.Anything, mock.Anything)
}

func TestActivationService_Activate_UnresolvedReferrer(t *testing.T) {
	tests := []struct {
		name      string
		setupCode func(m *mocks.MockActivationRepository)
	}{
		{
			name: "unknown or deactivated code",
			setupCode: func(m *mocks.MockActivationRepository) {
				m.On("ResolveCode", mock.Anything, "TALGGGGGG").Return("", repository.ErrNotFound)
			},
		},
		{
			name: "code resolves to the user itself",
			setupCode: func(m *mocks.MockActivationRepository) {
				m.On("ResolveCode", mock.Anything, "TALGGGGGG").Return("N", nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockActivationRepository{}
			svc := NewActivationService(mockRepo, NewRoleTable(nil))

			newUser := pendingUser("N", "TALNNNNNN", "TALGGGGGG")
			mockRepo.On("GetUser", mock.Anything, "N").Return(newUser, nil).Once()
			tt.setupCode(mockRepo)

			mockRepo.On("ActivateUser", mock.Anything, mock.MatchedBy(func(p repository.ActivateParams) bool {
				return p.ReferredBy == nil && len(p.Chain) == 0
			})).Return(nil)
			mockRepo.On("GetUser", mock.Anything, "N").Return(activeUser("N", "TALNNNNNN"), nil).Once()

			result, err := svc.Activate(context.Background(), "N", "pay-1")

			assert.NoError(t, err)
			assert.False(t, result.AlreadyActive)
			assert.False(t, result.Attached)
			mockRepo.AssertNotCalled(t, "IncrementAncestorCounters", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestActivationService_Activate_RoleAdvances(t *testing.T) {
	mockRepo := &mocks.MockActivationRepository{}
	svc := NewActivationService(mockRepo, NewRoleTable(nil))

	newUser := pendingUser("N", "TALNNNNNN", "TALCCCCCC")
	referrer := &model.User{
		ID:           "C",
		ReferralCode: "TALCCCCCC",
		CurrentRole:  RoleMember,
		Status:       model.StatusActive,
	}

	mockRepo.On("GetUser", mock.Anything, "N").Return(newUser, nil).Once()
	mockRepo.On("ResolveCode", mock.Anything, "TALCCCCCC").Return("C", nil)
	mockRepo.On("GetUser", mock.Anything, "C").Return(referrer, nil).Once()
	mockRepo.On("ActivateUser", mock.Anything, mock.Anything).Return(nil)

	// This activation pushes C over the organizer thresholds.
	mockRepo.On("IncrementAncestorCounters", mock.Anything, "C", true).Return(5, 25, RoleMember, nil)
	mockRepo.On("UpdateUserRole", mock.Anything, "C", RoleMember, RoleOrganizer).Return(nil)

	mockRepo.On("GetUser", mock.Anything, "N").Return(activeUser("N", "TALNNNNNN"), nil).Once()

	_, err := svc.Activate(context.Background(), "N", "pay-9")

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestActivationService_Activate_RoleNeverLowered(t *testing.T) {
	mockRepo := &mocks.MockActivationRepository{}
	svc := NewActivationService(mockRepo, NewRoleTable(nil))

	newUser := pendingUser("N", "TALNNNNNN", "TALCCCCCC")
	referrer := &model.User{
		ID:           "C",
		ReferralCode: "TALCCCCCC",
		CurrentRole:  RoleStateCoordinator,
		Status:       model.StatusActive,
	}

	mockRepo.On("GetUser", mock.Anything, "N").Return(newUser, nil).Once()
	mockRepo.On("ResolveCode", mock.Anything, "TALCCCCCC").Return("C", nil)
	mockRepo.On("GetUser", mock.Anything, "C").Return(referrer, nil).Once()
	mockRepo.On("ActivateUser", mock.Anything, mock.Anything).Return(nil)

	// Counters evaluate to organizer, but C already holds a higher role.
	mockRepo.On("IncrementAncestorCounters", mock.Anything, "C", true).
		Return(6, 30, RoleStateCoordinator, nil)

	mockRepo.On("GetUser", mock.Anything, "N").Return(activeUser("N", "TALNNNNNN"), nil).Once()

	_, err := svc.Activate(context.Background(), "N", "pay-9")

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "UpdateUserRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestActivationService_Activate_RoleConflictRetries(t *testing.T) {
	mockRepo := &mocks.MockActivationRepository{}
	svc := NewActivationService(mockRepo, NewRoleTable(nil))

	newUser := pendingUser("N", "TALNNNNNN", "TALCCCCCC")
	referrer := &model.User{ID: "C", ReferralCode: "TALCCCCCC", CurrentRole: RoleMember, Status: model.StatusActive}

	mockRepo.On("GetUser", mock.Anything, "N").Return(newUser, nil).Once()
	mockRepo.On("ResolveCode", mock.Anything, "TALCCCCCC").Return("C", nil)
	mockRepo.On("GetUser", mock.Anything, "C").Return(referrer, nil).Once()
	mockRepo.On("ActivateUser", mock.Anything, mock.Anything).Return(nil)

	mockRepo.On("IncrementAncestorCounters", mock.Anything, "C", true).Return(5, 25, RoleMember, nil)

	// First conditional write loses to a concurrent propagation that
	// already advanced C; the retry re-reads and finds nothing left to do.
	mockRepo.On("UpdateUserRole", mock.Anything, "C", RoleMember, RoleOrganizer).
		Return(repository.ErrRoleConflict).Once()
	mockRepo.On("GetUser", mock.Anything, "C").Return(&model.User{
		ID:                  "C",
		ReferralCode:        "TALCCCCCC",
		DirectReferralCount: 5,
		TotalTeamSize:       25,
		CurrentRole:         RoleOrganizer,
		Status:              model.StatusActive,
	}, nil).Once()

	mockRepo.On("GetUser", mock.Anything, "N").Return(activeUser("N", "TALNNNNNN"), nil).Once()

	_, err := svc.Activate(context.Background(), "N", "pay-9")

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestActivationService_Activate_UserNotFound(t *testing.T) {
	mockRepo := &mocks.MockActivationRepository{}
	svc := NewActivationService(mockRepo, NewRoleTable(nil))

	mockRepo.On("GetUser", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	result, err := svc.Activate(context.Background(), "ghost", "pay-1")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestActivationService_RecordFailure_ChangesNothing(t *testing.T) {
	mockRepo := &mocks.MockActivationRepository{}
	svc := NewActivationService(mockRepo, NewRoleTable(nil))

	user := pendingUser("N", "TALNNNNNN", "TALCCCCCC")
	mockRepo.On("GetUser", mock.Anything, "N").Return(user, nil)

	err := svc.RecordFailure(context.Background(), "N", "pay-failed")

	assert.NoError(t, err)
	// Payment failure must not touch the user: still provisional, code intact.
	assert.Equal(t, model.StatusPendingPayment, user.Status)
	assert.False(t, user.MembershipPaid)
	assert.Equal(t, "TALNNNNNN", user.ReferralCode)
	mockRepo.AssertNotCalled(t, "ActivateUser", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "IncrementAncestorCounters", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "UpdateUserRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
