// AngelaMos | 2026
// entity.go

package user

import (
	"database/sql/driver"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

const (
	RoleAdmin  = "ADMIN"
	RoleClient = "CLIENT"
)

const (
	AffiliateActive  = "ACTIVE"
	AffiliateBlocked = "BLOCKED"
)

const (
	PixTypeCPF    = "CPF"
	PixTypeCNPJ   = "CNPJ"
	PixTypeEmail  = "EMAIL"
	PixTypePhone  = "PHONE"
	PixTypeRandom = "RANDOM"
)

type User struct {
	ID           string
	Name         string
	Email        string
	CPF          string
	Phone        string
	Role         string
	PasswordHash string
	TokenVersion int
	Subscription *Subscription
	BankDetails  *BankDetails
	Affiliate    *AffiliateProfile
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) HasActiveSubscription() bool {
	return u.Subscription != nil && u.Subscription.Active
}

// AsAffiliate narrows the user to an affiliate. It fails for users that never
// joined the program or have left it.
func (u *User) AsAffiliate() (Affiliate, bool) {
	if u == nil || u.Affiliate == nil {
		return Affiliate{}, false
	}
	return Affiliate{user: u}, true
}

// Subscription is a snapshot of the plan a user bought. It is replaced
// wholesale on every activation.
type Subscription struct {
	PlanID    string    `json:"plan_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Active    bool      `json:"active"`
}

func (s Subscription) Value() (driver.Value, error) {
	return core.JSONValue(s)
}

func (s *Subscription) Scan(src any) error {
	_, err := core.ScanJSON(src, s)
	return err
}

type BankDetails struct {
	PixKey   string `json:"pix_key"`
	PixType  string `json:"pix_type"`
	BankName string `json:"bank_name,omitempty"`
	Agency   string `json:"agency,omitempty"`
	Account  string `json:"account,omitempty"`
}

func (b BankDetails) Value() (driver.Value, error) {
	return core.JSONValue(b)
}

func (b *BankDetails) Scan(src any) error {
	_, err := core.ScanJSON(src, b)
	return err
}

type AffiliateProfile struct {
	Code               string
	Status             string
	CommissionOverride decimal.NullDecimal
}

// Affiliate is a user that is known to carry an affiliate profile.
type Affiliate struct {
	user *User
}

func (a Affiliate) User() *User {
	return a.user
}

func (a Affiliate) ID() string {
	return a.user.ID
}

func (a Affiliate) Name() string {
	return a.user.Name
}

func (a Affiliate) Email() string {
	return a.user.Email
}

func (a Affiliate) Code() string {
	return a.user.Affiliate.Code
}

func (a Affiliate) Status() string {
	return a.user.Affiliate.Status
}

func (a Affiliate) IsBlocked() bool {
	return a.user.Affiliate.Status == AffiliateBlocked
}

// Override returns the affiliate's own commission percent, if one is set.
func (a Affiliate) Override() (decimal.Decimal, bool) {
	o := a.user.Affiliate.CommissionOverride
	return o.Decimal, o.Valid
}

// MatchesCode compares referral codes case-insensitively.
func (a Affiliate) MatchesCode(code string) bool {
	return code != "" && strings.EqualFold(a.user.Affiliate.Code, code)
}

// Affiliates narrows a roster to its affiliate members.
func Affiliates(users []User) []Affiliate {
	out := make([]Affiliate, 0)
	for i := range users {
		if a, ok := users[i].AsAffiliate(); ok {
			out = append(out, a)
		}
	}
	return out
}

// FirstName is the first word of the user's name.
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
