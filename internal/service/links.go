package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/talowa-org/talowa-backend/internal/repository"
	"github.com/talowa-org/talowa-backend/pkg/deeplink"
	"github.com/talowa-org/talowa-backend/pkg/logger"

	"go.uber.org/zap"
)

type LinkService struct {
	repo    LinkRepository
	pending deeplink.PendingStore
}

func NewLinkService(repo LinkRepository, pending deeplink.PendingStore) *LinkService {
	return &LinkService{
		repo:    repo,
		pending: pending,
	}
}

// CaptureLink processes a deep link opened on a device: the code is
// parsed, stored for the upcoming registration to consume, and counted as
// a click on the owning registry entry. Unknown codes still go pending —
// the activation step decides whether they resolve.
func (s *LinkService) CaptureLink(ctx context.Context, url string) (string, error) {
	code := deeplink.Parse(url)
	if code == "" {
		return "", ErrNotReferralLink
	}

	s.pending.Set(code)

	if err := s.repo.IncrementClickCount(ctx, code); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Logger().Error("failed to count link click", zap.String("code", code), zap.Error(err))
		}
	}

	return code, nil
}

func (s *LinkService) IsReferralLink(url string) bool {
	return deeplink.IsReferralLink(url)
}

// BuildLink returns the canonical share link for a user's own code.
func (s *LinkService) BuildLink(ctx context.Context, userID string) (string, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	return deeplink.Build(user.ReferralCode), nil
}

func (s *LinkService) SetPending(code string) {
	s.pending.Set(code)
}

func (s *LinkService) ConsumePending() string {
	return s.pending.Consume()
}
