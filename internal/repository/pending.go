package repository

import (
	"context"
	"errors"
	"time"

	"github.com/talowa-org/talowa-backend/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	pendingLinkKey = "talowa:pending_referral_link"
	pendingLinkTTL = 24 * time.Hour
)

// PendingLinkStore is the redis-backed pending referral code slot for
// multi-instance deployments. SET overwrites, GETDEL consumes: the
// exactly-once read the registration flow relies on.
type PendingLinkStore struct {
	rdb *redis.Client
}

func NewPendingLinkStore(rdb *redis.Client) *PendingLinkStore {
	return &PendingLinkStore{rdb: rdb}
}

func (s *PendingLinkStore) Set(code string) {
	err := s.rdb.Set(context.Background(), pendingLinkKey, code, pendingLinkTTL).Err()
	if err != nil {
		logger.Logger().Error("failed to store pending referral code", zap.Error(err))
	}
}

func (s *PendingLinkStore) Consume() string {
	code, err := s.rdb.GetDel(context.Background(), pendingLinkKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Logger().Error("failed to consume pending referral code", zap.Error(err))
		}
		return ""
	}
	return code
}
