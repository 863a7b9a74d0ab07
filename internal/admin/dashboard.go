// AngelaMos | 2026
// dashboard.go

package admin

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/facilitypass/internal/sale"
	"github.com/carterperez-dev/facilitypass/internal/user"
)

type UserLister interface {
	ListAll(ctx context.Context) ([]user.User, error)
}

type SaleLister interface {
	List(ctx context.Context) ([]sale.Sale, error)
}

type PlanSales struct {
	PlanID  string
	Name    string
	Count   int
	Revenue decimal.Decimal
}

// KPIs are the storefront's headline numbers. Only CLIENT accounts count as
// clients; admins are left out.
type KPIs struct {
	TotalRevenue    decimal.Decimal
	TotalSales      int
	ActiveClients   int
	InactiveClients int
	SalesPerPlan    []PlanSales
}

func ComputeKPIs(users []user.User, sales []sale.Sale) KPIs {
	k := KPIs{TotalRevenue: decimal.Zero}

	for i := range users {
		if users[i].Role != user.RoleClient {
			continue
		}
		if users[i].HasActiveSubscription() {
			k.ActiveClients++
		} else {
			k.InactiveClients++
		}
	}

	byPlan := map[string]*PlanSales{}
	for i := range sales {
		s := &sales[i]
		k.TotalSales++
		k.TotalRevenue = k.TotalRevenue.Add(s.Amount)

		ps, ok := byPlan[s.PlanID]
		if !ok {
			ps = &PlanSales{PlanID: s.PlanID, Name: s.PlanName, Revenue: decimal.Zero}
			byPlan[s.PlanID] = ps
		}
		ps.Count++
		ps.Revenue = ps.Revenue.Add(s.Amount)
	}

	k.SalesPerPlan = make([]PlanSales, 0, len(byPlan))
	for _, ps := range byPlan {
		k.SalesPerPlan = append(k.SalesPerPlan, *ps)
	}
	sort.Slice(k.SalesPerPlan, func(i, j int) bool {
		a, b := k.SalesPerPlan[i], k.SalesPerPlan[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})

	return k
}

type PlanSalesResponse struct {
	PlanID  string `json:"plan_id"`
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Revenue string `json:"revenue"`
}

type DashboardResponse struct {
	TotalRevenue    string              `json:"total_revenue"`
	TotalSales      int                 `json:"total_sales"`
	ActiveClients   int                 `json:"active_clients"`
	InactiveClients int                 `json:"inactive_clients"`
	SalesPerPlan    []PlanSalesResponse `json:"sales_per_plan"`
}

func ToDashboardResponse(k KPIs) DashboardResponse {
	perPlan := make([]PlanSalesResponse, len(k.SalesPerPlan))
	for i, ps := range k.SalesPerPlan {
		perPlan[i] = PlanSalesResponse{
			PlanID:  ps.PlanID,
			Name:    ps.Name,
			Count:   ps.Count,
			Revenue: ps.Revenue.StringFixed(2),
		}
	}

	return DashboardResponse{
		TotalRevenue:    k.TotalRevenue.StringFixed(2),
		TotalSales:      k.TotalSales,
		ActiveClients:   k.ActiveClients,
		InactiveClients: k.InactiveClients,
		SalesPerPlan:    perPlan,
	}
}
