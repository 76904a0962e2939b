package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/talowa-org/talowa-backend/internal/model"
	"github.com/talowa-org/talowa-backend/internal/repository"
	"github.com/talowa-org/talowa-backend/pkg/logger"

	"go.uber.org/zap"
)

// roleWriteAttempts bounds the optimistic retry when a concurrent
// propagation moved an ancestor's role between read and write.
const roleWriteAttempts = 3

type ActivationService struct {
	repo  ActivationRepository
	roles *RoleTable
}

func NewActivationService(repo ActivationRepository, roles *RoleTable) *ActivationService {
	return &ActivationService{
		repo:  repo,
		roles: roles,
	}
}

// Activate handles a settled payment for a user. It is idempotent: the
// repository's status compare-and-set admits exactly one caller per user,
// so a redelivered webhook observes the already-active state and triggers
// no second propagation.
func (s *ActivationService) Activate(ctx context.Context, userID, paymentRef string) (*model.ActivationResult, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.Status == model.StatusActive {
		return &model.ActivationResult{User: user, AlreadyActive: true}, nil
	}

	referredBy, chain, err := s.resolveAttachment(ctx, user)
	if err != nil {
		return nil, err
	}

	err = s.repo.ActivateUser(ctx, repository.ActivateParams{
		UserID:     userID,
		PaymentRef: paymentRef,
		PaidAt:     time.Now().UTC(),
		ReferredBy: referredBy,
		Chain:      chain,
	})
	if errors.Is(err, repository.ErrAlreadyActive) {
		// Lost the race against a duplicate delivery; report its outcome.
		current, getErr := s.repo.GetUser(ctx, userID)
		if getErr != nil {
			return nil, fmt.Errorf("failed to reload user: %w", getErr)
		}
		return &model.ActivationResult{User: current, AlreadyActive: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to activate user: %w", err)
	}

	s.propagate(ctx, userID, chain)

	activated, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	return &model.ActivationResult{
		User:     activated,
		Attached: referredBy != nil,
	}, nil
}

// RecordFailure observes a failed payment. Nothing changes: the user keeps
// full app access in pending_payment and may be retried by the payment
// system at any time.
func (s *ActivationService) RecordFailure(ctx context.Context, userID, paymentRef string) error {
	_, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	logger.Logger().Info("payment failed, user remains provisional",
		zap.String("user_id", userID),
		zap.String("payment_ref", paymentRef),
	)
	return nil
}

// resolveAttachment validates the provisional referrer. An unknown,
// deactivated, or self-referential code is not an error: the user simply
// activates without attaching to the tree.
func (s *ActivationService) resolveAttachment(ctx context.Context, user *model.User) (*string, []string, error) {
	ownerID, err := s.repo.ResolveCode(ctx, user.ProvisionalRef)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to resolve referrer code: %w", err)
	}
	if ownerID == user.ID {
		return nil, nil, nil
	}

	owner, err := s.repo.GetUser(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to load referrer: %w", err)
	}

	ref := user.ProvisionalRef
	chain := make([]string, 0, len(owner.ReferralChain)+1)
	chain = append(chain, owner.ReferralChain...)
	chain = append(chain, owner.ID)

	return &ref, chain, nil
}

// propagate walks the ancestor chain root-first and applies this one
// activation to every ancestor: team size for all of them, direct count
// for the last (the direct referrer), and a monotone role recompute after
// each increment. Each ancestor update stands alone; a failure on one is
// logged and the walk continues, since the activation guard already
// ensures this chain is only ever walked once per descendant.
func (s *ActivationService) propagate(ctx context.Context, newUserID string, chain []string) {
	log := logger.Logger()

	for i, ancestorID := range chain {
		direct := i == len(chain)-1

		directCount, teamSize, currentRole, err := s.repo.IncrementAncestorCounters(ctx, ancestorID, direct)
		if err != nil {
			log.Error("failed to update ancestor counters",
				zap.String("ancestor_id", ancestorID),
				zap.String("new_user_id", newUserID),
				zap.Error(err),
			)
			continue
		}

		s.recomputeRole(ctx, ancestorID, directCount, teamSize, currentRole)
	}
}

func (s *ActivationService) recomputeRole(ctx context.Context, userID string, directCount, teamSize int, currentRole string) {
	log := logger.Logger()

	for attempt := 0; attempt < roleWriteAttempts; attempt++ {
		newRole := s.roles.Evaluate(directCount, teamSize)
		if s.roles.Rank(newRole) <= s.roles.Rank(currentRole) {
			return
		}

		err := s.repo.UpdateUserRole(ctx, userID, currentRole, newRole)
		if err == nil {
			log.Info("role advanced",
				zap.String("user_id", userID),
				zap.String("from", currentRole),
				zap.String("to", newRole),
			)
			return
		}
		if !errors.Is(err, repository.ErrRoleConflict) {
			log.Error("failed to update role", zap.String("user_id", userID), zap.Error(err))
			return
		}

		user, err := s.repo.GetUser(ctx, userID)
		if err != nil {
			log.Error("failed to reload user for role retry", zap.String("user_id", userID), zap.Error(err))
			return
		}
		directCount = user.DirectReferralCount
		teamSize = user.TotalTeamSize
		currentRole = user.CurrentRole
	}
}
