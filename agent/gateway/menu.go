package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	contractx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/state"
)

// FetchCatalog loads the full menu.
func (c *Client) FetchCatalog(ctx context.Context) ([]statex.MenuItem, error) {
	var items []statex.MenuItem
	err := c.call(ctx, contractx.GatewayCatalog, http.MethodGet, pathMenu, nil, func(raw []byte) error {
		decoded, err := decodeMenuItems(raw)
		if err != nil {
			return err
		}
		items = decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Recommend returns the menu subset relevant to text.
func (c *Client) Recommend(ctx context.Context, text string) ([]statex.MenuItem, error) {
	var items []statex.MenuItem
	req := contractx.PromptRequest{Prompt: text}
	err := c.call(ctx, contractx.GatewayRecommendation, http.MethodPost, pathRecommend, req, func(raw []byte) error {
		decoded, err := decodeMenuItems(raw)
		if err != nil {
			return err
		}
		items = decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

type menuItemRecord struct {
	ID          json.RawMessage `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       json.RawMessage `json:"price"`
}

var (
	errNotArray     = errors.New("menu payload is not a JSON array")
	errMissingID    = errors.New("id is missing")
	errMissingName  = errors.New("name is missing")
	errMissingPrice = errors.New("price is missing")
)

// decodeMenuItems parses a JSON array of menu records. One bad record rejects
// the whole payload.
func decodeMenuItems(raw []byte) ([]statex.MenuItem, error) {
	var records []menuItemRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode menu items: %w", err)
	}
	if records == nil {
		return nil, errNotArray
	}

	items := make([]statex.MenuItem, 0, len(records))
	for i, rec := range records {
		item, err := rec.toMenuItem()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", contractx.ErrMalformedItem, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (r menuItemRecord) toMenuItem() (statex.MenuItem, error) {
	id, err := parseItemID(r.ID)
	if err != nil {
		return statex.MenuItem{}, err
	}

	name := strings.TrimSpace(r.Name)
	if name == "" {
		return statex.MenuItem{}, fmt.Errorf("id=%s: %w", id, errMissingName)
	}

	price, err := parsePrice(r.Price)
	if err != nil {
		return statex.MenuItem{}, fmt.Errorf("id=%s: %w", id, err)
	}

	return statex.MenuItem{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(r.Description),
		Category:    strings.TrimSpace(r.Category),
		Price:       price,
	}, nil
}

func parseItemID(raw json.RawMessage) (statex.ItemID, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errMissingID
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("id: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return "", errMissingID
		}
		return statex.ItemID(s), nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id must be a string or number: %w", err)
	}
	return statex.ItemID(n.String()), nil
}

// parsePrice accepts a JSON number or a numeric string.
func parsePrice(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, errMissingPrice
	}

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, fmt.Errorf("price: %w", err)
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return decimal.Zero, errMissingPrice
		}
	}

	price, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price %q: %w", text, err)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("price %s is negative", price)
	}
	return price, nil
}
