// AngelaMos | 2026
// dto.go

package affiliate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/facilitypass/internal/ledger"
	"github.com/carterperez-dev/facilitypass/internal/payout"
	"github.com/carterperez-dev/facilitypass/internal/sale"
	"github.com/carterperez-dev/facilitypass/internal/user"
)

type PlanCommission struct {
	PlanID     string
	PlanName   string
	Price      decimal.Decimal
	Percent    decimal.Decimal
	Commission decimal.Decimal
}

type Dashboard struct {
	Affiliate   user.Affiliate
	Link        string
	Summary     ledger.Summary
	Payouts     []payout.Payout
	Commissions []PlanCommission
}

type Stats struct {
	Affiliate user.Affiliate
	Summary   ledger.Summary
}

type Finance struct {
	Affiliate user.Affiliate
	Link      string
	Summary   ledger.Summary
	Sales     []sale.Sale
	Payouts   []payout.Payout
}

type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE BLOCKED"`
}

// SetOverrideRequest clears the override when commission_percent is null.
type SetOverrideRequest struct {
	CommissionPercent *decimal.Decimal `json:"commission_percent"`
}

type RecordPayoutRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	ReceiptURL string          `json:"receipt_url" validate:"omitempty,max=2048"`
	Notes      string          `json:"notes"       validate:"omitempty,max=1000"`
}

type ProfileResponse struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	Code               string  `json:"code"`
	Status             string  `json:"status"`
	CommissionOverride *string `json:"commission_override"`
}

type MonthResponse struct {
	Month      string `json:"month"`
	SalesCount int    `json:"sales_count"`
	Commission string `json:"commission"`
}

type SummaryResponse struct {
	TotalSales      int             `json:"total_sales"`
	TotalRevenue    string          `json:"total_revenue"`
	TotalCommission string          `json:"total_commission"`
	TotalPaid       string          `json:"total_paid"`
	Balance         string          `json:"balance"`
	Monthly         []MonthResponse `json:"monthly"`
}

type PayoutResponse struct {
	ID         string    `json:"id"`
	Amount     string    `json:"amount"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
	ReceiptURL *string   `json:"receipt_url"`
	Notes      *string   `json:"notes"`
}

type SaleResponse struct {
	ID               string    `json:"id"`
	Date             time.Time `json:"date"`
	PlanName         string    `json:"plan_name"`
	Amount           string    `json:"amount"`
	CommissionAmount string    `json:"commission_amount"`
}

type PlanCommissionResponse struct {
	PlanID     string `json:"plan_id"`
	PlanName   string `json:"plan_name"`
	Price      string `json:"price"`
	Percent    string `json:"percent"`
	Commission string `json:"commission"`
}

type DashboardResponse struct {
	Profile     ProfileResponse          `json:"profile"`
	Link        string                   `json:"link"`
	Summary     SummaryResponse          `json:"summary"`
	Payouts     []PayoutResponse         `json:"payouts"`
	Commissions []PlanCommissionResponse `json:"commissions"`
}

type StatsResponse struct {
	Profile ProfileResponse `json:"profile"`
	Summary SummaryResponse `json:"summary"`
}

type FinanceResponse struct {
	Profile ProfileResponse  `json:"profile"`
	Link    string           `json:"link"`
	Summary SummaryResponse  `json:"summary"`
	Sales   []SaleResponse   `json:"sales"`
	Payouts []PayoutResponse `json:"payouts"`
}

type TotalPaidResponse struct {
	TotalPaid string `json:"total_paid"`
}

func ToProfileResponse(a user.Affiliate) ProfileResponse {
	resp := ProfileResponse{
		ID:     a.ID(),
		Name:   a.Name(),
		Email:  a.Email(),
		Code:   a.Code(),
		Status: a.Status(),
	}
	if o, ok := a.Override(); ok {
		v := o.String()
		resp.CommissionOverride = &v
	}
	return resp
}

func ToSummaryResponse(s ledger.Summary) SummaryResponse {
	months := s.Months()
	monthly := make([]MonthResponse, 0, len(months))
	for _, m := range months {
		monthly = append(monthly, MonthResponse{
			Month:      m.Month,
			SalesCount: m.SalesCount,
			Commission: m.Commission.StringFixed(2),
		})
	}

	return SummaryResponse{
		TotalSales:      s.TotalSales,
		TotalRevenue:    s.TotalRevenue.StringFixed(2),
		TotalCommission: s.TotalCommission.StringFixed(2),
		TotalPaid:       s.TotalPaid.StringFixed(2),
		Balance:         s.Balance.StringFixed(2),
		Monthly:         monthly,
	}
}

func ToPayoutResponse(p *payout.Payout) PayoutResponse {
	return PayoutResponse{
		ID:         p.ID,
		Amount:     p.Amount.StringFixed(2),
		Date:       p.Date,
		Status:     p.Status,
		ReceiptURL: p.ReceiptURL,
		Notes:      p.Notes,
	}
}

func ToPayoutResponseList(payouts []payout.Payout) []PayoutResponse {
	out := make([]PayoutResponse, len(payouts))
	for i := range payouts {
		out[i] = ToPayoutResponse(&payouts[i])
	}
	return out
}

func toSaleResponseList(sales []sale.Sale) []SaleResponse {
	out := make([]SaleResponse, len(sales))
	for i, s := range sales {
		out[i] = SaleResponse{
			ID:               s.ID,
			Date:             s.Date,
			PlanName:         s.PlanName,
			Amount:           s.Amount.StringFixed(2),
			CommissionAmount: s.CommissionAmount.StringFixed(2),
		}
	}
	return out
}

func ToDashboardResponse(d *Dashboard) DashboardResponse {
	commissions := make([]PlanCommissionResponse, len(d.Commissions))
	for i, c := range d.Commissions {
		commissions[i] = PlanCommissionResponse{
			PlanID:     c.PlanID,
			PlanName:   c.PlanName,
			Price:      c.Price.StringFixed(2),
			Percent:    c.Percent.String(),
			Commission: c.Commission.StringFixed(2),
		}
	}

	return DashboardResponse{
		Profile:     ToProfileResponse(d.Affiliate),
		Link:        d.Link,
		Summary:     ToSummaryResponse(d.Summary),
		Payouts:     ToPayoutResponseList(d.Payouts),
		Commissions: commissions,
	}
}

func ToStatsResponseList(stats []Stats) []StatsResponse {
	out := make([]StatsResponse, len(stats))
	for i, s := range stats {
		out[i] = StatsResponse{
			Profile: ToProfileResponse(s.Affiliate),
			Summary: ToSummaryResponse(s.Summary),
		}
	}
	return out
}

func ToFinanceResponse(f *Finance) FinanceResponse {
	return FinanceResponse{
		Profile: ToProfileResponse(f.Affiliate),
		Link:    f.Link,
		Summary: ToSummaryResponse(f.Summary),
		Sales:   toSaleResponseList(f.Sales),
		Payouts: ToPayoutResponseList(f.Payouts),
	}
}
