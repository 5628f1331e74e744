package workflow

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"driver-companion/internal/domain"
	"driver-companion/internal/jsonx"
)

// PlaceholderImage is shown for items without a usable image.
const PlaceholderImage = "https://via.placeholder.com/100x100?text=No+Image"

const (
	defaultTitle    = "Unknown Product"
	defaultUnitName = "Unit"
)

var checklistPaths = []string{
	"deliveryInfo.productChecklist",
	"delivery.productChecklist",
	"productChecklist",
}

// DeriveChecklist builds the item checklist of an order.
// An embedded checklist wins, enriched from the product list; otherwise cart lines are
// turned into uncollected items; otherwise the checklist is empty.
func (e *Engine) DeriveChecklist(order domain.Order) domain.Checklist {
	root := gjson.ParseBytes(order.Payload)
	cat := newCatalog(root)

	for _, p := range checklistPaths {
		if entries := root.Get(p).Array(); len(entries) > 0 {
			return e.fromEntries(entries, cat, order)
		}
	}
	if lines := root.Get("cart").Array(); len(lines) > 0 {
		return e.fromCart(lines, cat)
	}
	return domain.Checklist{}
}

// ParseChecklist derives items from a checklist document returned by the backend,
// enriched from the order's product list.
func (e *Engine) ParseChecklist(order domain.Order, raw json.RawMessage) (domain.Checklist, bool) {
	entries := gjson.ParseBytes(raw).Array()
	if len(entries) == 0 {
		return nil, false
	}
	cat := newCatalog(gjson.ParseBytes(order.Payload))
	return e.fromEntries(entries, cat, order), true
}

func (e *Engine) fromEntries(entries []gjson.Result, cat catalog, order domain.Order) domain.Checklist {
	items := make(domain.Checklist, 0, len(entries))
	for i, entry := range entries {
		pid, ok := firstID(entry, "productId", "_id", "id")
		if !ok {
			pid = fmt.Sprintf("checklist_item_%d", i)
		}
		detail := cat.lookup(pid)
		if populated := entry.Get("productId"); populated.IsObject() {
			detail = populated
		}

		item := e.baseItem(pid, entry, detail)
		if collected, ok := jsonx.Bool(entry, "collected", "isCollected"); ok && collected {
			at, ok := jsonx.Time(entry, "collectedAt")
			if !ok {
				at = e.collectedFallback(order)
			}
			item.MarkCollected(true, at)
		}
		item.Notes = stringOr("", entry, "notes")
		items = append(items, item)
	}
	return items
}

func (e *Engine) fromCart(lines []gjson.Result, cat catalog) domain.Checklist {
	items := make(domain.Checklist, 0, len(lines))
	for i, line := range lines {
		pid, ok := firstID(line, "productId", "id", "_id")
		if !ok {
			pid = fmt.Sprintf("cart_item_%d", i)
		}
		detail := cat.lookup(pid)
		if populated := line.Get("productId"); populated.IsObject() {
			detail = populated
		}
		items = append(items, e.baseItem(pid, line, detail))
	}
	return items
}

// baseItem merges an entry with its product detail; entry fields win.
func (e *Engine) baseItem(pid string, entry, detail gjson.Result) domain.ChecklistItem {
	title, ok := firstLocalized(entry, "title", "productName", "name")
	if !ok {
		title, ok = firstLocalized(detail, "title", "name")
	}
	if !ok {
		title = defaultTitle
	}

	arabic, ok := jsonx.String(entry, "arabicTitle")
	if !ok {
		arabic, _ = jsonx.String(detail, "arabicTitle", "title.ar")
	}

	refs := imageRefs(entry.Get("image"))
	refs = append(refs, imageRefs(entry.Get("images"))...)
	if len(refs) == 0 {
		refs = append(imageRefs(detail.Get("image")), imageRefs(detail.Get("images"))...)
	}
	var images []string
	for _, ref := range refs {
		images = append(images, e.resolveImage(ref))
	}
	image := PlaceholderImage
	if len(images) > 0 {
		image = images[0]
	}

	qty, ok := jsonx.PositiveInt(entry, "quantity", "qty")
	if !ok {
		qty = 1
	}
	packQty, ok := jsonx.PositiveInt(entry, "packQty")
	if !ok {
		packQty, ok = jsonx.PositiveInt(detail, "packQty")
	}
	if !ok {
		packQty = 1
	}

	unitPrice, ok := jsonx.Decimal(entry, "price", "unitPrice")
	if !ok {
		unitPrice, _ = jsonx.Decimal(detail, "price", "unitPrice")
	}
	total, ok := jsonx.Decimal(entry, "totalPrice")
	if !ok {
		total = unitPrice.Mul(decimal.NewFromInt(int64(qty)))
	}

	unitName, ok := jsonx.String(entry, "unitName", "unit")
	if !ok {
		unitName = stringOr(defaultUnitName, detail, "unitName", "unit.name", "unit")
	}

	return domain.ChecklistItem{
		ProductID:   pid,
		Title:       title,
		ArabicTitle: arabic,
		Image:       image,
		Images:      images,
		SKU:         pickString(entry, detail, "sku"),
		Barcode:     pickString(entry, detail, "barcode"),
		Quantity:    qty,
		UnitPrice:   unitPrice,
		TotalPrice:  total,
		UnitName:    unitName,
		PackQty:     packQty,
	}
}

func pickString(entry, detail gjson.Result, path string) string {
	if s, ok := jsonx.String(entry, path); ok {
		return s
	}
	return stringOr("", detail, path)
}

// collectedFallback stamps items reported as collected without a timestamp.
func (e *Engine) collectedFallback(order domain.Order) time.Time {
	if !order.UpdatedAt.IsZero() {
		return order.UpdatedAt
	}
	return e.now()
}

// resolveImage turns an image reference into a displayable URL.
func (e *Engine) resolveImage(ref string) string {
	s := strings.TrimSpace(ref)
	lower := strings.ToLower(s)
	switch {
	case s == "":
		return PlaceholderImage
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return s
	case strings.HasPrefix(s, "//"):
		return "https:" + s
	case e.imageBaseURL != "":
		return strings.TrimRight(e.imageBaseURL, "/") + "/" + strings.TrimLeft(s, "/")
	default:
		return PlaceholderImage
	}
}

// catalog indexes the order's products and cart lines by every id they carry.
type catalog map[string]gjson.Result

func newCatalog(root gjson.Result) catalog {
	c := catalog{}
	index := func(list []gjson.Result) {
		for _, p := range list {
			for _, path := range []string{"_id", "productId", "id"} {
				if id, ok := idOf(p.Get(path)); ok {
					if _, seen := c[id]; !seen {
						c[id] = p
					}
				}
			}
		}
	}
	index(root.Get("products").Array())
	index(root.Get("cart").Array())
	return c
}

func (c catalog) lookup(id string) gjson.Result {
	return c[id]
}
