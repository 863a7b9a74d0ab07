// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateSubscription(ctx context.Context, id string, sub *Subscription) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	ListAll(ctx context.Context) ([]User, error)
	ListAffiliates(ctx context.Context, search string) ([]User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByAffiliateCode(ctx context.Context, code string) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// row mirrors the users table. Affiliate columns are folded into
// User.Affiliate on the way out.
type row struct {
	ID                string              `db:"id"`
	Name              string              `db:"name"`
	Email             string              `db:"email"`
	CPF               string              `db:"cpf"`
	Phone             string              `db:"phone"`
	Role              string              `db:"role"`
	PasswordHash      string              `db:"password_hash"`
	TokenVersion      int                 `db:"token_version"`
	Subscription      *Subscription       `db:"subscription"`
	BankDetails       *BankDetails        `db:"bank_details"`
	IsAffiliate       bool                `db:"is_affiliate"`
	AffiliateStatus   sql.NullString      `db:"affiliate_status"`
	AffiliateCode     sql.NullString      `db:"affiliate_code"`
	AffiliateOverride decimal.NullDecimal `db:"affiliate_commission_override"`
	CreatedAt         time.Time           `db:"created_at"`
	UpdatedAt         time.Time           `db:"updated_at"`
	DeletedAt         *time.Time          `db:"deleted_at"`
}

func (r row) toUser() User {
	u := User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		CPF:          r.CPF,
		Phone:        r.Phone,
		Role:         r.Role,
		PasswordHash: r.PasswordHash,
		TokenVersion: r.TokenVersion,
		Subscription: r.Subscription,
		BankDetails:  r.BankDetails,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		DeletedAt:    r.DeletedAt,
	}

	if r.IsAffiliate {
		u.Affiliate = &AffiliateProfile{
			Code:               r.AffiliateCode.String,
			Status:             r.AffiliateStatus.String,
			CommissionOverride: r.AffiliateOverride,
		}
	}

	return u
}

func affiliateColumns(u *User) (bool, sql.NullString, sql.NullString, decimal.NullDecimal) {
	if u.Affiliate == nil {
		return false, sql.NullString{}, sql.NullString{}, decimal.NullDecimal{}
	}
	return true,
		sql.NullString{String: u.Affiliate.Status, Valid: u.Affiliate.Status != ""},
		sql.NullString{String: u.Affiliate.Code, Valid: u.Affiliate.Code != ""},
		u.Affiliate.CommissionOverride
}

const userColumns = `
	id, name, email, cpf, phone, role, password_hash, token_version,
	subscription, bank_details, is_affiliate, affiliate_status,
	affiliate_code, affiliate_commission_override,
	created_at, updated_at, deleted_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, cpf, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at, token_version`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.CPF,
		user.Phone,
		user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt, &user.TokenVersion)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) getOne(
	ctx context.Context,
	op, where string,
	arg any,
) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where +
		` AND deleted_at IS NULL`

	var rw row
	err := r.db.GetContext(ctx, &rw, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u := rw.toUser()
	return &u, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, "get user", "id = $1", id)
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	return r.getOne(ctx, "get user by email", "email = $1", email)
}

// updateUserQuery leaves subscription alone; UpdateSubscription owns it.
const updateUserQuery = `
	UPDATE users
	SET name = $2, phone = $3, role = $4, bank_details = $5,
	    is_affiliate = $6, affiliate_status = $7, affiliate_code = $8,
	    affiliate_commission_override = $9, updated_at = NOW()
	WHERE id = $1 AND deleted_at IS NULL
	RETURNING updated_at`

func (r *repository) Update(ctx context.Context, user *User) error {
	isAffiliate, status, code, override := affiliateColumns(user)

	err := r.db.GetContext(ctx, &user.UpdatedAt, updateUserQuery,
		user.ID,
		user.Name,
		user.Phone,
		user.Role,
		user.BankDetails,
		isAffiliate,
		status,
		code,
		override,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

func (r *repository) UpdateSubscription(
	ctx context.Context,
	id string,
	sub *Subscription,
) error {
	return r.execOne(ctx, "update subscription", `
		UPDATE users
		SET subscription = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id, sub)
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	return r.execOne(ctx, "update password", `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id, passwordHash)
}

func (r *repository) IncrementTokenVersion(
	ctx context.Context,
	id string,
) error {
	return r.execOne(ctx, "increment token version", `
		UPDATE users
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	return r.execOne(ctx, "delete user", `
		UPDATE users
		SET deleted_at = NOW(), updated_at = NOW(),
		    affiliate_code = NULL
		WHERE id = $1 AND deleted_at IS NULL`, id)
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Page = params.Page.Clamp()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR name ILIKE $%d OR cpf ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	switch params.Subscription {
	case SubscriptionFilterActive:
		conditions = append(conditions,
			"(subscription->>'active')::boolean IS TRUE")
	case SubscriptionFilterInactive:
		conditions = append(conditions,
			"(subscription IS NULL OR (subscription->>'active')::boolean IS NOT TRUE)")
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.Size, params.Offset())

	users, err := r.selectUsers(ctx, "list users", query, args...)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *repository) ListAll(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at ASC`

	return r.selectUsers(ctx, "list all users", query)
}

func (r *repository) ListAffiliates(
	ctx context.Context,
	search string,
) ([]User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE deleted_at IS NULL AND is_affiliate = true`
	var args []any

	if search != "" {
		query += ` AND (name ILIKE $1 OR email ILIKE $1 OR affiliate_code ILIKE $1)`
		args = append(args, "%"+escapeLike(search)+"%")
	}
	query += ` ORDER BY name ASC`

	return r.selectUsers(ctx, "list affiliates", query, args...)
}

func (r *repository) selectUsers(
	ctx context.Context,
	op, query string,
	args ...any,
) ([]User, error) {
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users := make([]User, 0, len(rows))
	for _, rw := range rows {
		users = append(users, rw.toUser())
	}

	return users, nil
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND deleted_at IS NULL)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}

func (r *repository) ExistsByAffiliateCode(
	ctx context.Context,
	code string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE UPPER(affiliate_code) = UPPER($1))`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		return false, fmt.Errorf("check affiliate code exists: %w", err)
	}

	return exists, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
