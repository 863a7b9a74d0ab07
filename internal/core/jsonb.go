// AngelaMos | 2026
// jsonb.go

package core

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONValue encodes v for a jsonb column.
func JSONValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal jsonb: %w", err)
	}
	return string(b), nil
}

// ScanJSON decodes a jsonb column into dest. It reports whether the column
// held a value; NULL leaves dest untouched.
func ScanJSON(src, dest any) (bool, error) {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return false, nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return false, fmt.Errorf("scan jsonb: unsupported type %T", src)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("scan jsonb: %w", err)
	}
	return true, nil
}
