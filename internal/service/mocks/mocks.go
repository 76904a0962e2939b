// Package mocks provides testify mocks for the repository interfaces the
// services depend on.
package mocks

import (
	"context"

	"github.com/talowa-org/talowa-backend/internal/model"
	"github.com/talowa-org/talowa-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRegistrationRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockActivationRepository struct {
	mock.Mock
}

func (m *MockActivationRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockActivationRepository) ActivateUser(ctx context.Context, p repository.ActivateParams) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockActivationRepository) ResolveCode(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *MockActivationRepository) IncrementAncestorCounters(ctx context.Context, ancestorID string, direct bool) (int, int, string, error) {
	args := m.Called(ctx, ancestorID, direct)
	return args.Int(0), args.Int(1), args.String(2), args.Error(3)
}

func (m *MockActivationRepository) UpdateUserRole(ctx context.Context, userID, oldRole, newRole string) error {
	args := m.Called(ctx, userID, oldRole, newRole)
	return args.Error(0)
}

type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockLinkRepository) IncrementClickCount(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

type MockCodeRepository struct {
	mock.Mock
}

func (m *MockCodeRepository) GetCode(ctx context.Context, code string) (*model.ReferralCodeEntry, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReferralCodeEntry), args.Error(1)
}

func (m *MockCodeRepository) DeactivateCode(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAnalyticsRepository) GetTopUsers(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LeaderboardEntry), args.Error(1)
}

func (m *MockAnalyticsRepository) GetDirectReferrals(ctx context.Context, referralCode string) ([]*model.User, error) {
	args := m.Called(ctx, referralCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockAnalyticsRepository) GetNetworkSummary(ctx context.Context) (*model.NetworkSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NetworkSummary), args.Error(1)
}
