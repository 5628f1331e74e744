package workflow

import (
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"driver-companion/internal/domain"
	"driver-companion/internal/jsonx"
)

const (
	defaultPaymentMethod   = "Unknown"
	defaultCurrency        = "﷼"
	defaultCustomerName    = "Unknown Customer"
	defaultCustomerPhone   = "N/A"
	defaultCustomerAddress = "Address not available"
	unknownOrderID         = "unknown"
	shortIDLength          = 6
)

// Normalize converts a raw backend order document into domain.Order.
// Each field is read from the current schema first, then legacy and flat locations, then a default.
func (e *Engine) Normalize(payload []byte) domain.Order {
	root := gjson.ParseBytes(payload)

	id := stringOr(unknownOrderID, root, "_id", "id")
	rawStatus, _ := jsonx.String(root, "status")
	status := domain.ParseStatus(rawStatus)

	order := domain.Order{
		ID:        id,
		Invoice:   stringOr(shortID(id), root, "invoice", "orderNumber"),
		Status:    status,
		RawStatus: rawStatus,
		Customer: domain.Customer{
			Name:    stringOr(defaultCustomerName, root, "customer.name", "customerName", "user_info.name", "user.name"),
			Phone:   stringOr(defaultCustomerPhone, root, "customer.phone", "customer.contact", "user.phone", "user_info.contact"),
			Address: stringOr(defaultCustomerAddress, root, "customer.address", "shippingAddress", "user_info.address"),
		},
		Financial: domain.Financial{
			Total:         decimalOrZero(root, "financial.total", "orderSummary.total", "total"),
			SubTotal:      decimalOrZero(root, "financial.subTotal", "orderSummary.subTotal", "subTotal"),
			ShippingCost:  decimalOrZero(root, "financial.shippingCost", "orderSummary.shippingCost", "shippingCost"),
			Discount:      decimalOrZero(root, "financial.discount", "orderSummary.discount", "discount"),
			PaymentMethod: stringOr(defaultPaymentMethod, root, "financial.paymentMethod", "orderSummary.paymentMethod", "paymentMethod"),
			Currency:      stringOr(defaultCurrency, root, "financial.currency", "orderSummary.currency", "currency"),
		},
		Assignment: resolveAssignment(root, status),
		Notes:      stringOr("", root, "deliveryNotes", "delivery.notes", "notes"),
		Payload:    append([]byte(nil), payload...),
	}
	order.CreatedAt, _ = jsonx.Time(root, "createdAt", "timestamps.orderPlaced")
	order.UpdatedAt, _ = jsonx.Time(root, "updatedAt", "timestamps.lastUpdated")
	order.DeliveredAt, _ = jsonx.Time(root, "delivery.deliveredAt", "deliveryInfo.deliveredAt", "deliveredAt", "timestamps.delivered")

	return order
}

func resolveAssignment(root gjson.Result, status domain.OrderStatus) domain.Assignment {
	var a domain.Assignment
	a.AssignedToMe, _ = jsonx.Bool(root, "delivery.isAssignedToMe", "deliveryInfo.isAssignedToMe", "isAssignedToMe")
	a.DriverID, _ = firstID(root, "delivery.assignedDriverId", "delivery.assignedDriver", "deliveryInfo.assignedDriverId", "deliveryInfo.assignedDriver")
	a.DriverName, _ = jsonx.String(root,
		"delivery.assignedDriverName", "deliveryInfo.assignedDriverName",
		"delivery.assignedDriver.name", "deliveryInfo.assignedDriver.name")

	if assigned, ok := jsonx.Bool(root, "delivery.isAssigned", "deliveryInfo.isAssigned", "isAssigned"); ok {
		a.Assigned = assigned
	} else {
		a.Assigned = a.AssignedToMe || a.DriverID != ""
	}
	if a.AssignedToMe {
		a.Assigned = true
	}

	if req, ok := jsonx.Bool(root, "delivery.requiresAcceptance", "deliveryInfo.requiresAcceptance", "requiresAcceptance"); ok {
		a.RequiresAcceptance = req
	} else {
		a.RequiresAcceptance = !a.Assigned && status == domain.StatusReceived
	}
	return a
}

func decimalOrZero(r gjson.Result, paths ...string) decimal.Decimal {
	d, _ := jsonx.Decimal(r, paths...)
	return d
}

func shortID(id string) string {
	if id == unknownOrderID || len(id) <= shortIDLength {
		return id
	}
	return id[len(id)-shortIDLength:]
}
