package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChecklistItem is one product line the driver must collect.
type ChecklistItem struct {
	ProductID   string          `json:"product_id"`
	Title       string          `json:"title"`
	ArabicTitle string          `json:"arabic_title,omitempty"`
	Image       string          `json:"image"`
	Images      []string        `json:"images,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	Barcode     string          `json:"barcode,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	UnitName    string          `json:"unit_name"`
	PackQty     int             `json:"pack_qty"`
	Collected   bool            `json:"collected"`
	CollectedAt *time.Time      `json:"collected_at,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// MarkCollected sets the collected flag and keeps CollectedAt consistent with it.
func (i *ChecklistItem) MarkCollected(collected bool, at time.Time) {
	i.Collected = collected
	if collected {
		t := at
		i.CollectedAt = &t
		return
	}
	i.CollectedAt = nil
}

// Checklist is the ordered set of items for one order.
type Checklist []ChecklistItem

// Index returns the position of productID, or -1.
func (c Checklist) Index(productID string) int {
	for i := range c {
		if c[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Lines returns the positions of every line of productID. A product can appear on
// several lines, e.g. in different units.
func (c Checklist) Lines(productID string) []int {
	var out []int
	for i := range c {
		if c[i].ProductID == productID {
			out = append(out, i)
		}
	}
	return out
}

// Clone returns a deep copy.
func (c Checklist) Clone() Checklist {
	if c == nil {
		return nil
	}
	out := make(Checklist, len(c))
	for i, it := range c {
		if it.CollectedAt != nil {
			t := *it.CollectedAt
			it.CollectedAt = &t
		}
		if it.Images != nil {
			it.Images = append([]string(nil), it.Images...)
		}
		out[i] = it
	}
	return out
}

// CollectedCount returns the number of collected items.
func (c Checklist) CollectedCount() int {
	n := 0
	for _, it := range c {
		if it.Collected {
			n++
		}
	}
	return n
}

// Progress summarizes checklist completion.
type Progress struct {
	Collected int `json:"collected"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// Complete reports whether every item is collected. An empty checklist is never complete.
func (p Progress) Complete() bool {
	return p.Total > 0 && p.Collected == p.Total
}
