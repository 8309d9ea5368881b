package state

import (
	"github.com/shopspring/decimal"
)

// ItemID identifies a menu item. The menu service may send it as a JSON number
// or string; it is kept as the literal text either way.
type ItemID string

// MenuItem is one dish from the catalog. Values are treated as immutable for
// the lifetime of a session.
type MenuItem struct {
	ID          ItemID          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
}

func cloneItems(items []MenuItem) []MenuItem {
	if items == nil {
		return nil
	}
	out := make([]MenuItem, len(items))
	copy(out, items)
	return out
}
