// AngelaMos | 2026
// client.go

package pix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/facilitypass/internal/config"
	"github.com/carterperez-dev/facilitypass/internal/core"
)

const (
	StatusApproved   = "approved"
	StatusPending    = "pending"
	StatusInProcess  = "in_process"
	StatusRejected   = "rejected"
	StatusCancelled  = "cancelled"
	maxErrorBodySize = 4 << 10
)

var ErrProcessor = core.NewDomainError(
	core.ErrExternalService,
	"PAYMENT_PROVIDER_ERROR",
	"the payment provider could not process the request, try again shortly",
)

type PaymentRequest struct {
	Amount         decimal.Decimal
	Description    string
	PayerEmail     string
	PayerName      string
	PayerCPF       string
	IdempotencyKey string
}

type Payment struct {
	ID           string
	Status       string
	QRCode       string
	QRCodeBase64 string
}

// Client talks to the Mercado Pago payments API. The access token is passed
// per call because it belongs to whichever gateway is enabled at the time.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	notificationURL string
	expiration      time.Duration
	now             func() time.Time
}

func NewClient(cfg config.PixConfig) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		notificationURL: cfg.NotificationURL,
		expiration:      cfg.Expiration,
		now:             time.Now,
	}
}

type identification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type payer struct {
	Email          string         `json:"email"`
	FirstName      string         `json:"first_name,omitempty"`
	Identification identification `json:"identification"`
}

type createPaymentBody struct {
	TransactionAmount json.Number `json:"transaction_amount"`
	Description       string      `json:"description"`
	PaymentMethodID   string      `json:"payment_method_id"`
	Payer             payer       `json:"payer"`
	NotificationURL   string      `json:"notification_url,omitempty"`
	DateOfExpiration  string      `json:"date_of_expiration,omitempty"`
}

type paymentResult struct {
	ID                 json.Number `json:"id"`
	Status             string      `json:"status"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

func (c *Client) CreatePayment(
	ctx context.Context,
	accessToken string,
	req PaymentRequest,
) (*Payment, error) {
	ctx, span := core.StartSpan(ctx, "pix.create_payment",
		attribute.String("pix.amount", req.Amount.StringFixed(2)),
	)
	defer span.End()

	body := createPaymentBody{
		TransactionAmount: json.Number(req.Amount.StringFixed(2)),
		Description:       req.Description,
		PaymentMethodID:   "pix",
		Payer: payer{
			Email:     req.PayerEmail,
			FirstName: req.PayerName,
			Identification: identification{
				Type:   "CPF",
				Number: req.PayerCPF,
			},
		},
		NotificationURL: c.notificationURL,
	}
	if c.expiration > 0 {
		body.DateOfExpiration = c.now().Add(c.expiration).Format("2006-01-02T15:04:05.000-07:00")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal pix payment: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v1/payments",
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("new pix request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("X-Idempotency-Key", req.IdempotencyKey)
	}

	result, err := c.do(httpReq, accessToken)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("create pix payment: %w", err)
	}

	qr := result.PointOfInteraction.TransactionData
	if qr.QRCode == "" {
		err := fmt.Errorf("create pix payment %s: missing qr code: %w", result.ID, ErrProcessor)
		core.SetSpanError(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("pix.payment_id", result.ID.String()))

	return &Payment{
		ID:           result.ID.String(),
		Status:       result.Status,
		QRCode:       qr.QRCode,
		QRCodeBase64: qr.QRCodeBase64,
	}, nil
}

func (c *Client) GetPayment(
	ctx context.Context,
	accessToken, paymentID string,
) (*Payment, error) {
	ctx, span := core.StartSpan(ctx, "pix.get_payment",
		attribute.String("pix.payment_id", paymentID),
	)
	defer span.End()

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+"/v1/payments/"+url.PathEscape(paymentID),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("new pix request: %w", err)
	}

	result, err := c.do(httpReq, accessToken)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("get pix payment %s: %w", paymentID, err)
	}

	return &Payment{
		ID:     result.ID.String(),
		Status: result.Status,
	}, nil
}

func (c *Client) do(req *http.Request, accessToken string) (*paymentResult, error) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessor, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		//nolint:errcheck // best-effort error detail
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf(
			"provider status %d: %s: %w",
			resp.StatusCode,
			strings.TrimSpace(string(b)),
			ErrProcessor,
		)
	}

	var result paymentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode provider response: %w: %w", ErrProcessor, err)
	}

	if result.ID == "" || result.Status == "" {
		return nil, fmt.Errorf("provider response missing id or status: %w", ErrProcessor)
	}

	return &result, nil
}
