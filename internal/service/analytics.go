package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/talowa-org/talowa-backend/internal/model"
	"github.com/talowa-org/talowa-backend/internal/repository"
)

const leaderboardLimit = 100

// TeamStats aggregates a user's position in the network: own counters
// plus the directly attached referrals.
type TeamStats struct {
	UserID              string
	CurrentRole         string
	DirectReferralCount int
	TotalTeamSize       int
	DirectReferrals     []*model.User
}

type AnalyticsService struct {
	repo AnalyticsRepository
}

func NewAnalyticsService(repo AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

func (s *AnalyticsService) Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	if limit <= 0 || limit > leaderboardLimit {
		limit = leaderboardLimit
	}
	entries, err := s.repo.GetTopUsers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	return entries, nil
}

func (s *AnalyticsService) TeamStats(ctx context.Context, userID string) (*TeamStats, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	referrals, err := s.repo.GetDirectReferrals(ctx, user.ReferralCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get direct referrals: %w", err)
	}

	return &TeamStats{
		UserID:              user.ID,
		CurrentRole:         user.CurrentRole,
		DirectReferralCount: user.DirectReferralCount,
		TotalTeamSize:       user.TotalTeamSize,
		DirectReferrals:     referrals,
	}, nil
}

func (s *AnalyticsService) NetworkSummary(ctx context.Context) (*model.NetworkSummary, error) {
	summary, err := s.repo.GetNetworkSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get network summary: %w", err)
	}
	return summary, nil
}
