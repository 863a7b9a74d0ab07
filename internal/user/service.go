// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/facilitypass/internal/auth"
	"github.com/carterperez-dev/facilitypass/internal/core"
)

var (
	ErrUserNotFound = core.NewDomainError(
		core.ErrNotFound,
		"USER_NOT_FOUND",
		"user not found",
	)
	ErrNoSubscription = core.NewDomainError(
		core.ErrInvalidInput,
		"NO_SUBSCRIPTION",
		"member has no subscription",
	)
	ErrDeleteSelf = core.NewDomainError(
		core.ErrForbidden,
		"CANNOT_DELETE_SELF",
		"you cannot delete your own account",
	)
	ErrDeleteAdmin = core.NewDomainError(
		core.ErrForbidden,
		"CANNOT_DELETE_ADMIN",
		"admin accounts cannot be deleted",
	)
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// Create registers a new client account. Admin accounts are only created by
// promoting an existing member.
func (s *Service) Create(
	ctx context.Context,
	account auth.NewAccount,
) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(account.Email),
		PasswordHash: account.PasswordHash,
		Name:         account.Name,
		CPF:          account.CPF,
		Phone:        account.Phone,
		Role:         RoleClient,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAsDomain(err)
	}
	return user, nil
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		if *req.Role != RoleAdmin && *req.Role != RoleClient {
			return nil, fmt.Errorf(
				"update user: invalid role %q: %w",
				*req.Role,
				core.ErrInvalidInput,
			)
		}
		user.Role = *req.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, notFoundAsDomain(err)
	}

	return user, nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.GetUser(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateMeRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	return s.UpdateUser(ctx, userID, UpdateUserRequest{
		Name:  req.Name,
		Phone: req.Phone,
	})
}

// UpdateBankDetails replaces the payout destination an affiliate is paid to.
func (s *Service) UpdateBankDetails(
	ctx context.Context,
	userID string,
	req UpdateBankDetailsRequest,
) (*User, error) {
	user, err := s.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.BankDetails = &BankDetails{
		PixKey:   strings.TrimSpace(req.PixKey),
		PixType:  req.PixType,
		BankName: req.BankName,
		Agency:   req.Agency,
		Account:  req.Account,
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, notFoundAsDomain(err)
	}

	return user, nil
}

// ToggleSubscription flips the active flag of a member's current
// subscription without touching its dates.
func (s *Service) ToggleSubscription(
	ctx context.Context,
	userID string,
) (*User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Subscription == nil {
		return nil, ErrNoSubscription
	}

	sub := *user.Subscription
	sub.Active = !sub.Active

	if err := s.repo.UpdateSubscription(ctx, user.ID, &sub); err != nil {
		return nil, notFoundAsDomain(err)
	}
	user.Subscription = &sub

	slog.InfoContext(ctx, "subscription toggled",
		"user_id", user.ID,
		"plan_id", sub.PlanID,
		"active", sub.Active,
	)

	return user, nil
}

func (s *Service) RemoveSubscription(
	ctx context.Context,
	userID string,
) (*User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateSubscription(ctx, user.ID, nil); err != nil {
		return nil, notFoundAsDomain(err)
	}
	user.Subscription = nil

	slog.InfoContext(ctx, "subscription removed", "user_id", user.ID)

	return user, nil
}

// DeleteMember soft deletes a client account. Admin accounts, the
// requester's own included, cannot be deleted here.
func (s *Service) DeleteMember(ctx context.Context, requesterID, targetID string) error {
	if requesterID == targetID {
		return ErrDeleteSelf
	}

	target, err := s.GetUser(ctx, targetID)
	if err != nil {
		return err
	}
	if target.IsAdmin() {
		return ErrDeleteAdmin
	}

	return notFoundAsDomain(s.repo.SoftDelete(ctx, targetID))
}

func notFoundAsDomain(err error) error {
	if err != nil && core.IsNotFound(err) {
		return ErrUserNotFound
	}
	return err
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		CPF:          u.CPF,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		TokenVersion: u.TokenVersion,
	}
}

var _ auth.UserProvider = (*Service)(nil)
