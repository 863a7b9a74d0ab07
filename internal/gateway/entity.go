// AngelaMos | 2026
// entity.go

package gateway

import (
	"database/sql/driver"
	"slices"
	"time"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

const (
	ProviderMercadoPago = "MERCADOPAGO"
	ProviderPagarme     = "PAGARME"
	ProviderStripe      = "STRIPE"
	ProviderOxapay      = "OXAPAY"
)

const (
	MethodPix        = "PIX"
	MethodCreditCard = "CREDIT_CARD"
	MethodCrypto     = "CRYPTO"
)

// CredentialAccessToken is the credentials key a Mercado Pago gateway keeps
// its API token under.
const CredentialAccessToken = "access_token"

type Gateway struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Provider    string      `db:"provider"`
	IsEnabled   bool        `db:"is_enabled"`
	Methods     Methods     `db:"methods"`
	Credentials Credentials `db:"credentials"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (g *Gateway) Supports(method string) bool {
	return slices.Contains(g.Methods, method)
}

type Methods []string

func (m Methods) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	return core.JSONValue([]string(m))
}

func (m *Methods) Scan(src any) error {
	var out []string
	if _, err := core.ScanJSON(src, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

// Credentials is provider specific and passed through untouched.
type Credentials map[string]string

func (c Credentials) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	return core.JSONValue(map[string]string(c))
}

func (c *Credentials) Scan(src any) error {
	out := map[string]string{}
	if _, err := core.ScanJSON(src, &out); err != nil {
		return err
	}
	*c = out
	return nil
}
