package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/talowa-org/talowa-backend/internal/model"
	"github.com/talowa-org/talowa-backend/internal/repository"
)

// CodeService exposes the registry to the admin surface: inspecting a
// code's counters and deactivating it. Deactivation only stops future
// attachments; links already recorded under the code stay as they are.
type CodeService struct {
	repo CodeRepository
}

func NewCodeService(repo CodeRepository) *CodeService {
	return &CodeService{repo: repo}
}

func (s *CodeService) GetCode(ctx context.Context, code string) (*model.ReferralCodeEntry, error) {
	entry, err := s.repo.GetCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to get code: %w", err)
	}
	return entry, nil
}

func (s *CodeService) DeactivateCode(ctx context.Context, code string) error {
	err := s.repo.DeactivateCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCodeNotFound
		}
		return fmt.Errorf("failed to deactivate code: %w", err)
	}
	return nil
}
