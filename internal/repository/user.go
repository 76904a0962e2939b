package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/talowa-org/talowa-backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrRoleConflict = errors.New("role update conflict")

type User struct {
	ID                  string         `db:"id"`
	Phone               string         `db:"phone"`
	FullName            string         `db:"full_name"`
	ReferralCode        string         `db:"referral_code"`
	ProvisionalRef      string         `db:"provisional_ref"`
	ReferredBy          *string        `db:"referred_by"`
	ReferralChain       pq.StringArray `db:"referral_chain"`
	DirectReferralCount int            `db:"direct_referral_count"`
	TotalTeamSize       int            `db:"total_team_size"`
	CurrentRole         string         `db:"current_role"`
	Status              string         `db:"status"`
	MembershipPaid      bool           `db:"membership_paid"`
	PaidAt              *time.Time     `db:"paid_at"`
	PaymentRef          *string        `db:"payment_ref"`
	RegisteredAt        time.Time      `db:"registered_at"`
}

func (u *User) toModel() *model.User {
	return &model.User{
		ID:                  u.ID,
		Phone:               u.Phone,
		FullName:            u.FullName,
		ReferralCode:        u.ReferralCode,
		ProvisionalRef:      u.ProvisionalRef,
		ReferredBy:          u.ReferredBy,
		ReferralChain:       []string(u.ReferralChain),
		DirectReferralCount: u.DirectReferralCount,
		TotalTeamSize:       u.TotalTeamSize,
		CurrentRole:         u.CurrentRole,
		Status:              model.MembershipStatus(u.Status),
		MembershipPaid:      u.MembershipPaid,
		PaidAt:              u.PaidAt,
		PaymentRef:          u.PaymentRef,
		RegisteredAt:        u.RegisteredAt,
	}
}

// CreateUser inserts the user together with the reservation of its freshly
// minted referral code. The reservation is an ON CONFLICT DO NOTHING
// insert on the code primary key; losing the race surfaces as ErrCodeTaken
// and the caller retries with a new code. Both writes share one
// transaction so a failed registration leaves no orphaned code.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	// A nil chain must still write as '{}': the column is NOT NULL.
	chain := user.ReferralChain
	if chain == nil {
		chain = []string{}
	}

	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := reserveCode(ctx, tx, user.ReferralCode, user.ID); err != nil {
			return err
		}

		query, args, err := squirrel.
			Insert("users").
			SetMap(map[string]interface{}{
				"id":                    user.ID,
				"phone":                 user.Phone,
				"full_name":             user.FullName,
				"referral_code":         user.ReferralCode,
				"provisional_ref":       user.ProvisionalRef,
				"referred_by":           user.ReferredBy,
				"referral_chain":        pq.Array(chain),
				"direct_referral_count": user.DirectReferralCount,
				"total_team_size":       user.TotalTeamSize,
				"current_role":          user.CurrentRole,
				"status":                string(user.Status),
				"membership_paid":       user.MembershipPaid,
				"registered_at":         user.RegisteredAt,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build user insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}

		return nil
	})
}

func (r *Repository) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user User
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel(), nil
}

type ActivateParams struct {
	UserID     string
	PaymentRef string
	PaidAt     time.Time

	// ReferredBy and Chain are set when the provisional code resolved to
	// an active owner; both stay empty otherwise.
	ReferredBy *string
	Chain      []string
}

// ActivateUser performs the one-way pending_payment -> active transition.
// The WHERE clause on status is the idempotency guard: a replayed webhook
// matches zero rows and gets ErrAlreadyActive without touching anything.
// The conversion counter of the referrer's code is bumped in the same
// transaction so a crash cannot count a conversion twice.
func (r *Repository) ActivateUser(ctx context.Context, p ActivateParams) error {
	chain := p.Chain
	if chain == nil {
		chain = []string{}
	}

	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Update("users").
			SetMap(map[string]interface{}{
				"status":          string(model.StatusActive),
				"membership_paid": true,
				"paid_at":         p.PaidAt,
				"payment_ref":     p.PaymentRef,
				"referred_by":     p.ReferredBy,
				"referral_chain":  pq.Array(chain),
			}).
			Where(squirrel.Eq{
				"id":     p.UserID,
				"status": string(model.StatusPendingPayment),
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build activation query: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to activate user: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read activation result: %w", err)
		}
		if affected == 0 {
			return ErrAlreadyActive
		}

		if p.ReferredBy != nil {
			if err := incrementCodeCounter(ctx, tx, *p.ReferredBy, "conversion_count"); err != nil {
				return fmt.Errorf("failed to update conversion count: %w", err)
			}
		}

		return nil
	})
}

// IncrementAncestorCounters applies one descendant activation to a single
// ancestor: team size always grows by one, the direct count only for the
// direct referrer. The server-side addition makes concurrent activations
// of different descendants safe; the returned counters and role feed the
// role recompute.
func (r *Repository) IncrementAncestorCounters(ctx context.Context, ancestorID string, direct bool) (directCount, teamSize int, currentRole string, err error) {
	builder := squirrel.
		Update("users").
		Set("total_team_size", squirrel.Expr("total_team_size + 1")).
		Where(squirrel.Eq{"id": ancestorID}).
		Suffix("RETURNING direct_referral_count, total_team_size, current_role").
		PlaceholderFormat(squirrel.Dollar)

	if direct {
		builder = builder.Set("direct_referral_count", squirrel.Expr("direct_referral_count + 1"))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, 0, "", fmt.Errorf("failed to build counter update query: %w", err)
	}

	row := r.db.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&directCount, &teamSize, &currentRole); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, "", ErrNotFound
		}
		return 0, 0, "", fmt.Errorf("failed to update ancestor counters: %w", err)
	}

	return directCount, teamSize, currentRole, nil
}

// UpdateUserRole writes newRole only if the stored role still equals
// oldRole. A miss means a concurrent propagation got there first; the
// caller re-reads and re-evaluates.
func (r *Repository) UpdateUserRole(ctx context.Context, userID, oldRole, newRole string) error {
	query, args, err := squirrel.
		Update("users").
		Set("current_role", newRole).
		Where(squirrel.Eq{
			"id":           userID,
			"current_role": oldRole,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build role update query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read role update result: %w", err)
	}
	if affected == 0 {
		return ErrRoleConflict
	}

	return nil
}

func (r *Repository) GetTopUsers(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	query, args, err := squirrel.
		Select("id", "full_name", "referral_code", "current_role", "direct_referral_count", "total_team_size").
		From("users").
		OrderBy("total_team_size DESC", "direct_referral_count DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var users []User
	err = r.db.SelectContext(ctx, &users, query, args...)
	if err != nil {
		return nil, err
	}

	entries := make([]*model.LeaderboardEntry, len(users))
	for i, user := range users {
		entries[i] = &model.LeaderboardEntry{
			UserID:              user.ID,
			FullName:            user.FullName,
			ReferralCode:        user.ReferralCode,
			CurrentRole:         user.CurrentRole,
			DirectReferralCount: user.DirectReferralCount,
			TotalTeamSize:       user.TotalTeamSize,
		}
	}

	return entries, nil
}

// GetDirectReferrals lists the users attached directly under the given
// code. Only activated users appear; provisional registrations are not
// part of the tree yet.
func (r *Repository) GetDirectReferrals(ctx context.Context, referralCode string) ([]*model.User, error) {
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"referred_by": referralCode}).
		OrderBy("total_team_size DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var users []User
	err = r.db.SelectContext(ctx, &users, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get direct referrals: %w", err)
	}

	out := make([]*model.User, len(users))
	for i := range users {
		out[i] = users[i].toModel()
	}

	return out, nil
}

func (r *Repository) GetNetworkSummary(ctx context.Context) (*model.NetworkSummary, error) {
	query, args, err := squirrel.
		Select(
			"COUNT(*) AS total",
			fmt.Sprintf("COUNT(*) FILTER (WHERE status = '%s') AS active", model.StatusActive),
			fmt.Sprintf("COUNT(*) FILTER (WHERE status = '%s') AS pending", model.StatusPendingPayment),
			"COUNT(referred_by) AS referred",
		).
		From("users").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row struct {
		Total    int `db:"total"`
		Active   int `db:"active"`
		Pending  int `db:"pending"`
		Referred int `db:"referred"`
	}
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		return nil, err
	}

	return &model.NetworkSummary{
		TotalUsers:    row.Total,
		ActiveUsers:   row.Active,
		PendingUsers:  row.Pending,
		TotalReferred: row.Referred,
	}, nil
}
