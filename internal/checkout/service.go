// AngelaMos | 2026
// service.go

package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/facilitypass/internal/commission"
	"github.com/carterperez-dev/facilitypass/internal/core"
	"github.com/carterperez-dev/facilitypass/internal/gateway"
	"github.com/carterperez-dev/facilitypass/internal/pix"
	"github.com/carterperez-dev/facilitypass/internal/plan"
	"github.com/carterperez-dev/facilitypass/internal/sale"
	"github.com/carterperez-dev/facilitypass/internal/subscription"
	"github.com/carterperez-dev/facilitypass/internal/user"
)

var (
	ErrMethodUnavailable = core.NewDomainError(
		core.ErrInvalidInput,
		"METHOD_UNAVAILABLE",
		"payment method is not offered by any enabled gateway",
	)
	ErrMethodUnsupported = core.NewDomainError(
		core.ErrInvalidInput,
		"METHOD_UNSUPPORTED",
		"payment method is not supported yet",
	)
	ErrGatewayNotConfigured = core.NewDomainError(
		core.ErrExternalService,
		"GATEWAY_NOT_CONFIGURED",
		"payment gateway is missing an access token",
	)
	ErrCheckoutNotFound = core.NewDomainError(
		core.ErrNotFound,
		"CHECKOUT_NOT_FOUND",
		"checkout not found or expired",
	)
	ErrCheckoutForbidden = core.NewDomainError(
		core.ErrForbidden,
		"CHECKOUT_FORBIDDEN",
		"checkout belongs to another user",
	)
)

type PlanSource interface {
	Get(ctx context.Context, id string) (*plan.Plan, error)
}

type UserSource interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	ListAll(ctx context.Context) ([]user.User, error)
}

type GatewaySource interface {
	Get(ctx context.Context, id string) (*gateway.Gateway, error)
	EnabledMethods(ctx context.Context) ([]string, error)
	FindEnabled(ctx context.Context, provider, method string) (*gateway.Gateway, bool, error)
}

type TokenSource interface {
	FallbackAccessToken(ctx context.Context) (string, error)
}

type Processor interface {
	CreatePayment(ctx context.Context, accessToken string, req pix.PaymentRequest) (*pix.Payment, error)
	GetPayment(ctx context.Context, accessToken, paymentID string) (*pix.Payment, error)
}

type Deps struct {
	Plans     PlanSource
	Users     UserSource
	Gateways  GatewaySource
	Tokens    TokenSource
	Processor Processor
	Pending   PendingStore
	Purchases PurchaseStore
}

type Service struct {
	Deps
	now func() time.Time
}

func NewService(deps Deps) *Service {
	return &Service{Deps: deps, now: time.Now}
}

func (s *Service) Options(ctx context.Context) ([]string, error) {
	return s.Gateways.EnabledMethods(ctx)
}

// Ready reports whether clients can pay for anything right now.
func (s *Service) Ready(ctx context.Context) error {
	methods, err := s.Options(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(methods, gateway.MethodPix) {
		return errors.New("no enabled gateway offers PIX")
	}
	return nil
}

// Start opens a payment with the processor for userID buying req.PlanID.
// Nothing is written to the store until the payment is verified.
func (s *Service) Start(
	ctx context.Context,
	userID string,
	req StartRequest,
) (*StartResult, error) {
	ctx, span := core.StartSpan(ctx, "checkout.start",
		attribute.String("checkout.plan_id", req.PlanID),
		attribute.String("checkout.method", req.Method),
	)
	defer span.End()

	p, err := s.Plans.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if _, err := subscription.Activate(p, s.now().UTC(), subscription.ClientPurchase); err != nil {
		return nil, err
	}

	methods, err := s.Gateways.EnabledMethods(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(methods, req.Method) {
		return nil, ErrMethodUnavailable
	}
	if req.Method != gateway.MethodPix {
		return nil, ErrMethodUnsupported
	}

	gw, ok, err := s.Gateways.FindEnabled(ctx, gateway.ProviderMercadoPago, gateway.MethodPix)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMethodUnsupported
	}

	token, err := s.accessToken(ctx, gw)
	if err != nil {
		return nil, err
	}

	buyer, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	payment, err := s.Processor.CreatePayment(ctx, token, pix.PaymentRequest{
		Amount:         p.Price,
		Description:    p.Name,
		PayerEmail:     buyer.Email,
		PayerName:      user.FirstName(buyer.Name),
		PayerCPF:       digits(buyer.CPF),
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}

	pending := &Pending{
		PaymentID:    payment.ID,
		UserID:       buyer.ID,
		PlanID:       p.ID,
		GatewayID:    gw.ID,
		Method:       req.Method,
		Amount:       p.Price,
		ReferralCode: strings.TrimSpace(req.ReferralCode),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.Pending.Save(ctx, pending); err != nil {
		return nil, err
	}

	core.AddSpanEvent(ctx, "checkout.started",
		attribute.String("checkout.payment_id", payment.ID),
	)
	slog.InfoContext(ctx, "checkout started",
		"payment_id", payment.ID,
		"user_id", buyer.ID,
		"plan_id", p.ID,
		"referred", pending.ReferralCode != "",
	)

	return &StartResult{
		PaymentID:    payment.ID,
		Status:       payment.Status,
		Method:       req.Method,
		PlanID:       p.ID,
		Amount:       p.Price,
		QRCode:       payment.QRCode,
		QRCodeBase64: payment.QRCodeBase64,
	}, nil
}

// Verify asks the processor for the payment status and completes the
// purchase the first time it reports approved. Later calls return the
// recorded sale.
func (s *Service) Verify(
	ctx context.Context,
	userID, paymentID string,
) (*VerifyResult, error) {
	ctx, span := core.StartSpan(ctx, "checkout.verify",
		attribute.String("checkout.payment_id", paymentID),
	)
	defer span.End()

	pending, ok, err := s.Pending.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.completed(ctx, userID, paymentID)
	}
	if pending.UserID != userID {
		return nil, ErrCheckoutForbidden
	}

	gw, err := s.Gateways.Get(ctx, pending.GatewayID)
	if err != nil {
		return nil, err
	}
	token, err := s.accessToken(ctx, gw)
	if err != nil {
		return nil, err
	}

	payment, err := s.Processor.GetPayment(ctx, token, paymentID)
	if err != nil {
		return nil, err
	}

	switch payment.Status {
	case pix.StatusApproved:
		return s.complete(ctx, pending)
	case pix.StatusRejected, pix.StatusCancelled:
		if err := s.Pending.Delete(ctx, paymentID); err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "checkout closed",
			"payment_id", paymentID,
			"status", payment.Status,
		)
	}

	return &VerifyResult{PaymentID: paymentID, Status: payment.Status}, nil
}

func (s *Service) complete(ctx context.Context, pending *Pending) (*VerifyResult, error) {
	p, err := s.Plans.Get(ctx, pending.PlanID)
	if err != nil {
		return nil, err
	}

	buyer, err := s.Users.GetByID(ctx, pending.UserID)
	if err != nil {
		return nil, err
	}

	roster, err := s.Users.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sub, err := subscription.Activate(p, now, subscription.SettledPayment)
	if err != nil {
		return nil, err
	}

	// commission follows the amount actually charged
	charged := *p
	charged.Price = pending.Amount
	attribution := commission.Calculate(pending.ReferralCode, buyer, &charged, roster)

	ref := pending.PaymentID
	record := &sale.Sale{
		ID:               uuid.NewString(),
		Date:             now,
		Amount:           pending.Amount,
		PlanID:           p.ID,
		PlanName:         p.Name,
		BuyerID:          buyer.ID,
		AffiliateID:      attribution.AffiliateID,
		CommissionAmount: attribution.Amount,
		PaymentRef:       &ref,
	}

	if err := s.Purchases.Record(ctx, buyer.ID, &sub, record); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return s.completed(ctx, pending.UserID, pending.PaymentID)
		}
		return nil, fmt.Errorf("record purchase %s: %w", pending.PaymentID, err)
	}

	if err := s.Pending.Delete(ctx, pending.PaymentID); err != nil {
		slog.WarnContext(ctx, "pending checkout not cleared",
			"payment_id", pending.PaymentID,
			"error", err,
		)
	}

	core.AddSpanEvent(ctx, "checkout.completed",
		attribute.String("checkout.sale_id", record.ID),
		attribute.Bool("checkout.attributed", attribution.Attributed()),
	)
	slog.InfoContext(ctx, "purchase completed",
		"payment_id", pending.PaymentID,
		"sale_id", record.ID,
		"buyer_id", buyer.ID,
		"plan_id", p.ID,
		"amount", record.Amount.StringFixed(2),
		"commission", record.CommissionAmount.StringFixed(2),
	)

	return &VerifyResult{
		PaymentID:    pending.PaymentID,
		Status:       pix.StatusApproved,
		Completed:    true,
		Sale:         record,
		Subscription: &sub,
	}, nil
}

// completed looks up an already recorded purchase for a payment whose
// pending entry is gone.
func (s *Service) completed(
	ctx context.Context,
	userID, paymentID string,
) (*VerifyResult, error) {
	recorded, err := s.Purchases.FindByPaymentRef(ctx, paymentID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, ErrCheckoutNotFound
		}
		return nil, err
	}
	if recorded.BuyerID != userID {
		return nil, ErrCheckoutForbidden
	}

	result := &VerifyResult{
		PaymentID: paymentID,
		Status:    pix.StatusApproved,
		Completed: true,
		Sale:      recorded,
	}

	buyer, err := s.Users.GetByID(ctx, userID)
	if err == nil && buyer.Subscription != nil {
		result.Subscription = buyer.Subscription
	}

	return result, nil
}

func (s *Service) accessToken(ctx context.Context, gw *gateway.Gateway) (string, error) {
	if token := gw.Credentials[gateway.CredentialAccessToken]; token != "" {
		return token, nil
	}

	token, err := s.Tokens.FallbackAccessToken(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrGatewayNotConfigured
	}
	return token, nil
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
