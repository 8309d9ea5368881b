package state

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is a menu item copied into the cart at add time. The same item added
// twice produces two lines with distinct LineIDs.
type CartLine struct {
	LineID string `json:"line_id"`
	MenuItem
}

// Cart keeps Total equal to the sum of line prices. Total is only ever written
// by recompute.
type Cart struct {
	Lines []CartLine      `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Add appends a line for item and recomputes the total.
func (c *Cart) Add(item MenuItem) CartLine {
	line := CartLine{
		LineID:   uuid.Must(uuid.NewV7()).String(),
		MenuItem: item,
	}
	c.Lines = append(c.Lines, line)
	c.recompute()
	return line
}

func (c *Cart) Clear() {
	c.Lines = nil
	c.recompute()
}

// Names returns the line names joined with ", " in cart order.
func (c Cart) Names() string {
	return LineNames(c.Lines)
}

func LineNames(lines []CartLine) string {
	names := make([]string, 0, len(lines))
	for _, line := range lines {
		names = append(names, line.Name)
	}
	return strings.Join(names, ", ")
}

func (c *Cart) recompute() {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Price)
	}
	c.Total = total
}

func (c *Cart) Validate() error {
	want := decimal.Zero
	for _, line := range c.Lines {
		if line.Price.IsNegative() {
			return fmt.Errorf("%w: line %s has negative price %s", ErrInvalidCart, line.LineID, line.Price)
		}
		want = want.Add(line.Price)
	}
	if !want.Equal(c.Total) {
		return fmt.Errorf("%w: total=%s sum=%s", ErrInvalidCart, c.Total, want)
	}
	return nil
}

func (c Cart) clone() Cart {
	out := Cart{Total: c.Total}
	if c.Lines != nil {
		out.Lines = make([]CartLine, len(c.Lines))
		copy(out.Lines, c.Lines)
	}
	return out
}
