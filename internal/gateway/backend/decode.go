package backend

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"driver-companion/internal/domain"
	"driver-companion/internal/jsonx"
)

func firstString(r gjson.Result, paths ...string) string {
	s, _ := jsonx.String(r, paths...)
	return s
}

func firstDecimal(r gjson.Result, paths ...string) decimal.Decimal {
	d, _ := jsonx.Decimal(r, paths...)
	return d
}

func firstInt(r gjson.Result, paths ...string) int {
	n, _ := jsonx.Int(r, paths...)
	return n
}

func firstTime(r gjson.Result, paths ...string) *time.Time {
	if t, ok := jsonx.Time(r, paths...); ok {
		return &t
	}
	return nil
}

// payload returns the document under data, or the envelope itself for unwrapped answers.
func payload(env gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := env.Get(k); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return env
}

func rawList(v gjson.Result) []json.RawMessage {
	if !v.IsArray() {
		return []json.RawMessage{}
	}
	items := v.Array()
	out := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		if it.IsObject() {
			out = append(out, json.RawMessage(it.Raw))
		}
	}
	return out
}

// driverName accepts a plain string, a {firstName,lastName} pair or a localized map.
func driverName(v gjson.Result) string {
	switch {
	case v.Type == gjson.String:
		return strings.TrimSpace(v.Str)
	case v.IsObject():
		first := firstString(v, "firstName")
		last := firstString(v, "lastName")
		if full := strings.TrimSpace(first + " " + last); full != "" {
			return full
		}
		if en := firstString(v, "en"); en != "" {
			return en
		}
		name := ""
		v.ForEach(func(_, val gjson.Result) bool {
			if val.Type == gjson.String && strings.TrimSpace(val.Str) != "" {
				name = strings.TrimSpace(val.Str)
				return false
			}
			return true
		})
		return name
	default:
		return ""
	}
}

// ParseDriver reads a stored driver document. An empty document yields the "Driver" placeholder.
func ParseDriver(raw []byte) domain.Driver {
	return parseDriver(gjson.ParseBytes(raw))
}

func parseDriver(v gjson.Result) domain.Driver {
	info := v.Get("deliveryInfo")
	d := domain.Driver{
		ID:               firstString(v, "_id", "id"),
		Name:             driverName(v.Get("name")),
		Email:            firstString(v, "email"),
		Phone:            firstString(v, "phone"),
		Role:             firstString(v, "role"),
		VehicleType:      firstString(v, "vehicleType", "deliveryInfo.vehicleType"),
		VehicleNumber:    firstString(v, "vehicleNumber", "deliveryInfo.vehicleNumber"),
		LicenseNumber:    firstString(v, "licenseNumber", "deliveryInfo.licenseNumber"),
		EmergencyContact: firstString(v, "emergencyContact", "deliveryInfo.emergencyContact"),
		Duty: domain.Duty{
			OnDuty:       info.Get("isOnDuty").Bool(),
			OnBreak:      info.Get("isOnBreak").Bool(),
			Availability: strings.ToLower(firstString(info, "availability")),
			ClockInTime:  firstTime(info, "clockInTime"),
		},
	}
	if d.Name == "" {
		d.Name = "Driver"
	}
	if loc := info.Get("currentLocation"); loc.IsObject() {
		d.CurrentLocation = &domain.Location{
			Latitude:  loc.Get("latitude").Float(),
			Longitude: loc.Get("longitude").Float(),
			Address:   firstString(loc, "address"),
		}
	}
	return d
}

func parseEarnings(v gjson.Result) domain.Earnings {
	e := domain.Earnings{
		TodayEarnings:   firstDecimal(v, "todayEarnings", "today"),
		TodayDeliveries: firstInt(v, "todayDeliveries", "deliveries.today"),
		WeekEarnings:    firstDecimal(v, "weekEarnings", "thisWeek"),
		WeekDeliveries:  firstInt(v, "weekDeliveries", "deliveries.thisWeek"),
		MonthEarnings:   firstDecimal(v, "monthEarnings", "thisMonth"),
		MonthDeliveries: firstInt(v, "monthDeliveries", "deliveries.thisMonth"),
		AvgPerDelivery:  firstDecimal(v, "averagePerDelivery", "avgPerDelivery"),
	}
	if e.AvgPerDelivery.IsZero() && e.TodayDeliveries > 0 {
		e.AvgPerDelivery = e.TodayEarnings.Div(decimal.NewFromInt(int64(e.TodayDeliveries))).Round(2)
	}
	return e
}

func parsePayment(v gjson.Result) domain.Payment {
	p := domain.Payment{
		ID:      firstString(v, "_id", "id"),
		OrderID: firstString(v, "orderId", "order._id", "order"),
		Amount:  firstDecimal(v, "amount", "total"),
		Status:  firstString(v, "status"),
		Method:  firstString(v, "method", "paymentMethod"),
	}
	if t := firstTime(v, "paidAt", "createdAt", "date"); t != nil {
		p.PaidAt = *t
	}
	return p
}
