package logx

import (
	"strings"
	"time"
)

// Field is one key-value pair of a log entry.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field          { return Field{Key: key, Value: value} }
func Int(key string, value int) Field         { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field     { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field       { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err creates an "err" field. A nil error yields an empty string value.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "err", Value: ""}
	}
	return Field{Key: "err", Value: err.Error()}
}

// Identifiers shared by the workflow, the HTTP layer and the journal.
func OrderID(id string) Field   { return Field{Key: "order_id", Value: id} }
func DriverID(id string) Field  { return Field{Key: "driver_id", Value: id} }
func EventID(id string) Field   { return Field{Key: "event_id", Value: id} }
func RequestID(id string) Field { return Field{Key: "request_id", Value: id} }

// Email logs an address with the local part hidden: "jane@example.com" becomes "j***@example.com".
func Email(key, addr string) Field {
	addr = strings.TrimSpace(addr)
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 {
		return Field{Key: key, Value: "***"}
	}
	return Field{Key: key, Value: addr[:1] + "***" + addr[at:]}
}
