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
)

type referralCode struct {
	Code            string    `db:"code"`
	OwnerUserID     string    `db:"owner_user_id"`
	Active          bool      `db:"active"`
	ClickCount      int       `db:"click_count"`
	ConversionCount int       `db:"conversion_count"`
	CreatedAt       time.Time `db:"created_at"`
}

// reserveCode atomically claims a code for an owner. The unique primary
// key makes concurrent reservations of the same string linearizable; the
// loser observes ErrCodeTaken. Callers run it inside the transaction
// that creates the owning user.
func reserveCode(ctx context.Context, db sqlx.ExtContext, code, ownerUserID string) error {
	query, args, err := squirrel.
		Insert("referral_codes").
		SetMap(map[string]interface{}{
			"code":             code,
			"owner_user_id":    ownerUserID,
			"active":           true,
			"click_count":      0,
			"conversion_count": 0,
			"created_at":       time.Now().UTC(),
		}).
		Suffix("ON CONFLICT (code) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build reservation query: %w", err)
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to reserve code: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read reservation result: %w", err)
	}
	if affected == 0 {
		return ErrCodeTaken
	}

	return nil
}

// ResolveCode returns the owner of an active code. Inactive and unknown
// codes both resolve to ErrNotFound; a deactivated referrer must never
// accept new attachments.
func (r *Repository) ResolveCode(ctx context.Context, code string) (string, error) {
	query, args, err := squirrel.
		Select("owner_user_id").
		From("referral_codes").
		Where(squirrel.Eq{"code": code, "active": true}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return "", err
	}

	var ownerID string
	err = r.db.GetContext(ctx, &ownerID, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}

	return ownerID, nil
}

func (r *Repository) GetCode(ctx context.Context, code string) (*model.ReferralCodeEntry, error) {
	query, args, err := squirrel.
		Select("*").
		From("referral_codes").
		Where(squirrel.Eq{"code": code}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rc referralCode
	err = r.db.GetContext(ctx, &rc, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.ReferralCodeEntry{
		Code:            rc.Code,
		OwnerUserID:     rc.OwnerUserID,
		Active:          rc.Active,
		ClickCount:      rc.ClickCount,
		ConversionCount: rc.ConversionCount,
		CreatedAt:       rc.CreatedAt,
	}, nil
}

func (r *Repository) IncrementClickCount(ctx context.Context, code string) error {
	return incrementCodeCounter(ctx, r.db, code, "click_count")
}

// incrementCodeCounter bumps one counter column server-side so concurrent
// bumps never lose an increment. ActivateUser calls it with its own
// transaction to keep the conversion bump atomic with the activation.
func incrementCodeCounter(ctx context.Context, db sqlx.ExtContext, code, column string) error {
	query, args, err := squirrel.
		Update("referral_codes").
		Set(column, squirrel.Expr(column+" + 1")).
		Where(squirrel.Eq{"code": code}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeactivateCode stops a code from accepting new attachments. Existing
// referred_by links keep pointing at it.
func (r *Repository) DeactivateCode(ctx context.Context, code string) error {
	query, args, err := squirrel.
		Update("referral_codes").
		Set("active", false).
		Where(squirrel.Eq{"code": code}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to deactivate code: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
