// AngelaMos | 2026
// guard.go

package gateway

import (
	"fmt"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

const DefaultLimit = 3

var ErrGatewayLimitExceeded = limitError(DefaultLimit)

func limitError(limit int) *core.DomainError {
	return core.NewDomainError(
		core.ErrLimitExceeded,
		"GATEWAY_LIMIT_EXCEEDED",
		fmt.Sprintf(
			"at most %d payment gateways can be enabled at once; disable one first",
			limit,
		),
	)
}

// Guard caps the number of simultaneously enabled gateways. Every path that
// sets is_enabled to true goes through CheckActivation.
type Guard struct {
	Limit int
}

func NewGuard(limit int) Guard {
	if limit < 1 {
		limit = DefaultLimit
	}
	return Guard{Limit: limit}
}

// CheckActivation decides whether one more gateway may be enabled, given how
// many others (excluding the target) are enabled right now.
func (g Guard) CheckActivation(enabledOthers int) error {
	if enabledOthers < g.Limit {
		return nil
	}
	return limitError(g.Limit)
}
