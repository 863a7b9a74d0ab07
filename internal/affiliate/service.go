// AngelaMos | 2026
// service.go

package affiliate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/facilitypass/internal/commission"
	"github.com/carterperez-dev/facilitypass/internal/core"
	"github.com/carterperez-dev/facilitypass/internal/ledger"
	"github.com/carterperez-dev/facilitypass/internal/payout"
	"github.com/carterperez-dev/facilitypass/internal/plan"
	"github.com/carterperez-dev/facilitypass/internal/sale"
	"github.com/carterperez-dev/facilitypass/internal/user"
)

const (
	codeSuffixRange = 1000
	maxCodeAttempts = 20
	fallbackCodeTag = "MEMBRO"
)

var (
	ErrNotAffiliate = core.NewDomainError(
		core.ErrNotFound,
		"AFFILIATE_NOT_FOUND",
		"user is not part of the affiliate program",
	)
	ErrAlreadyAffiliate = core.NewDomainError(
		core.ErrDuplicateKey,
		"ALREADY_AFFILIATE",
		"user already joined the affiliate program",
	)
	ErrInvalidOverride = core.NewDomainError(
		core.ErrInvalidInput,
		"INVALID_COMMISSION_OVERRIDE",
		"commission override must be between 0 and 100",
	)
	ErrInvalidStatus = core.NewDomainError(
		core.ErrInvalidInput,
		"INVALID_AFFILIATE_STATUS",
		"status must be ACTIVE or BLOCKED",
	)
)

var hundred = decimal.NewFromInt(100)

type UserStore interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
	ListAffiliates(ctx context.Context, search string) ([]user.User, error)
	ExistsByAffiliateCode(ctx context.Context, code string) (bool, error)
}

type PlanSource interface {
	List(ctx context.Context, activeOnly bool) ([]plan.Plan, error)
}

type Service struct {
	users    UserStore
	plans    PlanSource
	sales    sale.Repository
	payouts  payout.Repository
	tx       TxRunner
	linkBase string
	now      func() time.Time
	suffix   func() (int64, error)
}

func NewService(
	users UserStore,
	plans PlanSource,
	sales sale.Repository,
	payouts payout.Repository,
	tx TxRunner,
	linkBase string,
) *Service {
	return &Service{
		users:    users,
		plans:    plans,
		sales:    sales,
		payouts:  payouts,
		tx:       tx,
		linkBase: strings.TrimRight(linkBase, "/"),
		now:      time.Now,
		suffix:   func() (int64, error) { return core.GenerateCode(codeSuffixRange) },
	}
}

// Join enrolls userID with a fresh referral code. The code is the upper-case
// first name followed by a number below 1000, retried until unused.
func (s *Service) Join(ctx context.Context, userID string) (*user.User, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Affiliate != nil {
		return nil, ErrAlreadyAffiliate
	}

	for range maxCodeAttempts {
		code, err := s.candidateCode(ctx, u.Name)
		if err != nil {
			return nil, err
		}
		if code == "" {
			continue
		}

		u.Affiliate = &user.AffiliateProfile{Code: code, Status: user.AffiliateActive}
		err = s.users.Update(ctx, u)
		if errors.Is(err, core.ErrDuplicateKey) {
			continue
		}
		if err != nil {
			return nil, err
		}

		slog.InfoContext(ctx, "affiliate joined", "user_id", u.ID, "code", code)
		return u, nil
	}

	return nil, fmt.Errorf("generate affiliate code for %s: attempts exhausted", userID)
}

func (s *Service) candidateCode(ctx context.Context, name string) (string, error) {
	n, err := s.suffix()
	if err != nil {
		return "", err
	}

	code := codePrefix(name) + strconv.FormatInt(n, 10)
	taken, err := s.users.ExistsByAffiliateCode(ctx, code)
	if err != nil {
		return "", err
	}
	if taken {
		return "", nil
	}
	return code, nil
}

func codePrefix(name string) string {
	prefix := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return -1
	}, user.FirstName(name))

	if prefix == "" {
		return fallbackCodeTag
	}
	return prefix
}

// Leave drops the affiliate profile. Sales and payouts already recorded
// stay in the ledger.
func (s *Service) Leave(ctx context.Context, userID string) (*user.User, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Affiliate == nil {
		return nil, ErrNotAffiliate
	}

	u.Affiliate = nil
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "affiliate left", "user_id", u.ID)
	return u, nil
}

func (s *Service) Link(a user.Affiliate) string {
	return s.linkBase + "/?ref=" + url.QueryEscape(a.Code())
}

// Dashboard is what an affiliate sees in the client area.
func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	a, err := s.getAffiliate(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary, payouts, err := s.summarize(ctx, a.ID())
	if err != nil {
		return nil, err
	}

	plans, err := s.plans.List(ctx, true)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Affiliate:   a,
		Link:        s.Link(a),
		Summary:     summary,
		Payouts:     payouts,
		Commissions: CommissionTable(a, plans),
	}, nil
}

// CommissionTable prices the commission a on each affiliate-enabled active
// plan.
func CommissionTable(a user.Affiliate, plans []plan.Plan) []PlanCommission {
	out := make([]PlanCommission, 0, len(plans))
	for i := range plans {
		p := &plans[i]
		if !p.Active || !p.AffiliateEnabled {
			continue
		}
		percent := commission.Percent(a, p)
		out = append(out, PlanCommission{
			PlanID:     p.ID,
			PlanName:   p.Name,
			Price:      p.Price,
			Percent:    percent,
			Commission: commission.Amount(p.Price, percent),
		})
	}
	return out
}

// List returns every affiliate matching search with its ledger totals.
func (s *Service) List(ctx context.Context, search string) ([]Stats, error) {
	users, err := s.users.ListAffiliates(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}

	sales, err := s.sales.ListAttributed(ctx)
	if err != nil {
		return nil, err
	}

	payouts, err := s.payouts.List(ctx)
	if err != nil {
		return nil, err
	}

	affiliates := user.Affiliates(users)
	out := make([]Stats, 0, len(affiliates))
	for _, a := range affiliates {
		out = append(out, Stats{
			Affiliate: a,
			Summary:   ledger.Summarize(a.ID(), sales, payouts),
		})
	}

	return out, nil
}

func (s *Service) TotalPaid(ctx context.Context) (decimal.Decimal, error) {
	return s.payouts.TotalPaid(ctx)
}

// Finance is the admin drill-down for one affiliate.
func (s *Service) Finance(ctx context.Context, affiliateID string) (*Finance, error) {
	a, err := s.getAffiliate(ctx, affiliateID)
	if err != nil {
		return nil, err
	}

	sales, err := s.sales.ListByAffiliate(ctx, a.ID())
	if err != nil {
		return nil, err
	}

	payouts, err := s.payouts.ListByAffiliate(ctx, a.ID())
	if err != nil {
		return nil, err
	}

	return &Finance{
		Affiliate: a,
		Link:      s.Link(a),
		Summary:   ledger.Summarize(a.ID(), sales, payouts),
		Sales:     sales,
		Payouts:   payouts,
	}, nil
}

func (s *Service) SetStatus(ctx context.Context, affiliateID, status string) (*user.User, error) {
	if status != user.AffiliateActive && status != user.AffiliateBlocked {
		return nil, ErrInvalidStatus
	}

	return s.updateProfile(ctx, affiliateID, func(p *user.AffiliateProfile) {
		p.Status = status
	})
}

// SetOverride sets the affiliate's own commission percent. A nil percent
// clears it and the plan's percent applies again.
func (s *Service) SetOverride(
	ctx context.Context,
	affiliateID string,
	percent *decimal.Decimal,
) (*user.User, error) {
	override := decimal.NullDecimal{}
	if percent != nil {
		if percent.IsNegative() || percent.GreaterThan(hundred) {
			return nil, ErrInvalidOverride
		}
		override = decimal.NewNullDecimal(*percent)
	}

	return s.updateProfile(ctx, affiliateID, func(p *user.AffiliateProfile) {
		p.CommissionOverride = override
	})
}

// Remove takes an affiliate out of the program on an admin's behalf.
func (s *Service) Remove(ctx context.Context, affiliateID string) error {
	_, err := s.Leave(ctx, affiliateID)
	return err
}

// RecordPayout pays affiliateID out of their current balance. Concurrent
// payouts for the same affiliate are serialized so the balance check holds.
func (s *Service) RecordPayout(
	ctx context.Context,
	affiliateID string,
	req payout.Request,
) (*payout.Payout, error) {
	ctx, span := core.StartSpan(ctx, "affiliate.record_payout",
		attribute.String("affiliate.id", affiliateID),
	)
	defer span.End()

	a, err := s.getAffiliate(ctx, affiliateID)
	if err != nil {
		return nil, err
	}

	var recorded *payout.Payout
	err = s.tx.WithinAffiliateLock(ctx, a.ID(), func(store LedgerStore) error {
		sales, err := store.Sales().ListByAffiliate(ctx, a.ID())
		if err != nil {
			return err
		}
		payouts, err := store.Payouts().ListByAffiliate(ctx, a.ID())
		if err != nil {
			return err
		}

		balance := ledger.Summarize(a.ID(), sales, payouts).Balance

		p, err := payout.Record(a, req, balance, s.now().UTC())
		if err != nil {
			return err
		}
		if err := store.Payouts().Create(ctx, p); err != nil {
			return err
		}

		recorded = p
		return nil
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	core.AddSpanEvent(ctx, "payout.recorded",
		attribute.String("payout.id", recorded.ID),
	)
	slog.InfoContext(ctx, "payout recorded",
		"payout_id", recorded.ID,
		"affiliate_id", a.ID(),
		"amount", recorded.Amount.StringFixed(2),
	)

	return recorded, nil
}

func (s *Service) summarize(
	ctx context.Context,
	affiliateID string,
) (ledger.Summary, []payout.Payout, error) {
	sales, err := s.sales.ListByAffiliate(ctx, affiliateID)
	if err != nil {
		return ledger.Summary{}, nil, err
	}

	payouts, err := s.payouts.ListByAffiliate(ctx, affiliateID)
	if err != nil {
		return ledger.Summary{}, nil, err
	}

	return ledger.Summarize(affiliateID, sales, payouts), payouts, nil
}

func (s *Service) updateProfile(
	ctx context.Context,
	affiliateID string,
	mutate func(p *user.AffiliateProfile),
) (*user.User, error) {
	u, err := s.getUser(ctx, affiliateID)
	if err != nil {
		return nil, err
	}
	if u.Affiliate == nil {
		return nil, ErrNotAffiliate
	}

	mutate(u.Affiliate)
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "affiliate updated",
		"user_id", u.ID,
		"status", u.Affiliate.Status,
		"override_set", u.Affiliate.CommissionOverride.Valid,
	)
	return u, nil
}

func (s *Service) getUser(ctx context.Context, id string) (*user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) getAffiliate(ctx context.Context, id string) (user.Affiliate, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return user.Affiliate{}, ErrNotAffiliate
		}
		return user.Affiliate{}, err
	}

	a, ok := u.AsAffiliate()
	if !ok {
		return user.Affiliate{}, ErrNotAffiliate
	}
	return a, nil
}
