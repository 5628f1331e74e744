package jsonx

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestString(t *testing.T) {
	t.Parallel()

	doc := gjson.Parse(`{"blank":"  ","id":42,"name":" Ann "}`)

	s, ok := String(doc, "missing", "blank", "id")
	require.True(t, ok)
	assert.Equal(t, "42", s)

	s, ok = String(doc, "name")
	require.True(t, ok)
	assert.Equal(t, "Ann", s)

	_, ok = String(doc, "blank")
	assert.False(t, ok)
}

func TestDecimalAndInt(t *testing.T) {
	t.Parallel()

	doc := gjson.Parse(`{"a":"abc","b":" 12.50 ","c":3.9,"d":-2}`)

	d, ok := Decimal(doc, "a", "b")
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("12.5").Equal(d))

	n, ok := Int(doc, "c")
	require.True(t, ok)
	assert.Equal(t, 3, n)

	n, ok = PositiveInt(doc, "d", "c")
	require.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = PositiveInt(doc, "d")
	assert.False(t, ok)
}

func TestBool(t *testing.T) {
	t.Parallel()

	doc := gjson.Parse(`{"a":"yes","b":"true","c":false}`)

	b, ok := Bool(doc, "a", "b")
	require.True(t, ok)
	assert.True(t, b)

	b, ok = Bool(doc, "c")
	require.True(t, ok)
	assert.False(t, b)
}

func TestTime(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		doc  string
		want time.Time
		ok   bool
	}{
		{name: "rfc3339 with offset", doc: `{"t":"2025-03-01T10:30:00+02:00"}`, want: want, ok: true},
		{name: "millis suffix", doc: `{"t":"2025-03-01T08:30:00.000Z"}`, want: want, ok: true},
		{name: "no zone", doc: `{"t":"2025-03-01T08:30:00"}`, want: want, ok: true},
		{name: "space separated", doc: `{"t":"2025-03-01 08:30:00"}`, want: want, ok: true},
		{name: "date only", doc: `{"t":"2025-03-01"}`, want: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "epoch millis", doc: `{"t":1740817800000}`, want: want, ok: true},
		{name: "epoch seconds", doc: `{"t":1740817800}`, want: want, ok: true},
		{name: "garbage", doc: `{"t":"yesterday"}`},
		{name: "zero", doc: `{"t":0}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Time(gjson.Parse(tt.doc), "t")
			require.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}
