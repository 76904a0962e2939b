package service

import (
	"context"
	"errors"

	"github.com/talowa-org/talowa-backend/internal/model"
	"github.com/talowa-org/talowa-backend/internal/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrCodeNotFound = errors.New("referral code not found")

	// ErrCodeGenerationExhausted means repeated reservation attempts all
	// collided. With a 32^6 code space this indicates a configuration or
	// storage problem, not bad luck.
	ErrCodeGenerationExhausted = errors.New("referral code generation exhausted")

	ErrNotReferralLink = errors.New("url is not a referral link")
)

type Service struct {
	*RegistrationService
	*ActivationService
	*LinkService
	*CodeService
	*AnalyticsService
}

func NewService(
	registration *RegistrationService,
	activation *ActivationService,
	links *LinkService,
	codes *CodeService,
	analytics *AnalyticsService,
) *Service {
	return &Service{
		RegistrationService: registration,
		ActivationService:   activation,
		LinkService:         links,
		CodeService:         codes,
		AnalyticsService:    analytics,
	}
}

type RegistrationServiceI interface {
	Register(ctx context.Context, input RegistrationInput) (*model.User, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

type RegistrationRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
}

type ActivationServiceI interface {
	Activate(ctx context.Context, userID, paymentRef string) (*model.ActivationResult, error)
	RecordFailure(ctx context.Context, userID, paymentRef string) error
}

type ActivationRepository interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	ActivateUser(ctx context.Context, p repository.ActivateParams) error
	ResolveCode(ctx context.Context, code string) (string, error)
	IncrementAncestorCounters(ctx context.Context, ancestorID string, direct bool) (directCount, teamSize int, currentRole string, err error)
	UpdateUserRole(ctx context.Context, userID, oldRole, newRole string) error
}

type LinkServiceI interface {
	CaptureLink(ctx context.Context, url string) (string, error)
	IsReferralLink(url string) bool
	BuildLink(ctx context.Context, userID string) (string, error)
	SetPending(code string)
	ConsumePending() string
}

type LinkRepository interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	IncrementClickCount(ctx context.Context, code string) error
}

type CodeServiceI interface {
	GetCode(ctx context.Context, code string) (*model.ReferralCodeEntry, error)
	DeactivateCode(ctx context.Context, code string) error
}

type CodeRepository interface {
	GetCode(ctx context.Context, code string) (*model.ReferralCodeEntry, error)
	DeactivateCode(ctx context.Context, code string) error
}

type AnalyticsServiceI interface {
	Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
	TeamStats(ctx context.Context, userID string) (*TeamStats, error)
	NetworkSummary(ctx context.Context) (*model.NetworkSummary, error)
}

type AnalyticsRepository interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetTopUsers(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
	GetDirectReferrals(ctx context.Context, referralCode string) ([]*model.User, error)
	GetNetworkSummary(ctx context.Context) (*model.NetworkSummary, error)
}
