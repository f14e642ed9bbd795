// internal/adapters/out/firestore/helpers_fs.go
package firestore

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Defensive readers for raw snapshot data. Documents written by older
// storefront versions (or edited by hand in the console) carry numbers as
// int64/float64/string interchangeably; a malformed value must degrade to a
// zero value, never abort the read.

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asTime(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}

// asDecimal coerces numbers and numeric strings; anything non-numeric or
// blank becomes zero so a bad price contributes 0 to totals instead of
// breaking them.
func asDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case float64:
		return decimal.NewFromFloat(n)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	}
	return decimal.Zero
}

func asStringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s := strings.TrimSpace(asString(e)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asMapSlice(v any) []map[string]any {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
