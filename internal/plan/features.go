// AngelaMos | 2026
// features.go

package plan

import (
	"database/sql/driver"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

// Features is an ordered list of selling points stored as a jsonb array.
type Features []string

func (f Features) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	return core.JSONValue([]string(f))
}

func (f *Features) Scan(src any) error {
	var out []string
	if _, err := core.ScanJSON(src, &out); err != nil {
		return err
	}
	if out == nil {
		out = []string{}
	}
	*f = out
	return nil
}
