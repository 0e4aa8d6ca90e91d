package table

import (
	"fmt"
	"strconv"

	headlessadmin "github.com/Priya-159/headless-admin"
)

// EmptyPolicy decides what an absent-looking value renders as.
type EmptyPolicy int

const (
	// DashWhenFalsy renders nil, empty string, false and numeric zero as a
	// dash. This is the console's historical behavior: a zero count shows
	// as "-".
	DashWhenFalsy EmptyPolicy = iota

	// DashWhenMissing only dashes values that are genuinely absent, so a
	// numeric zero renders as "0".
	DashWhenMissing
)

// Column describes one table column. Render, when set, owns the cell
// entirely; otherwise the accessor's value is formatted under the column's
// empty policy.
type Column struct {
	Header   string
	Accessor string
	Render   func(headlessadmin.Row) string
	Empty    EmptyPolicy
}

const dash = "-"

// Cell formats the column's value for one row.
func (c Column) Cell(row headlessadmin.Row) string {
	if c.Render != nil {
		return c.Render(row)
	}

	v, ok := row[c.Accessor]
	switch c.Empty {
	case DashWhenMissing:
		if !ok || v == nil || v == "" {
			return dash
		}
	default:
		if isFalsy(v) {
			return dash
		}
	}
	return formatValue(v)
}

func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case float32:
		return x == 0
	case int:
		return x == 0
	case int64:
		return x == 0
	}
	return false
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		// JSON numbers decode as float64; keep integral values clean.
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}
