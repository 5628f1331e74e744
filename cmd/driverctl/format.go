package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type formatter struct {
	p   *message.Printer
	cur currency.Unit
}

func newFormatter(lang, cur string) (*formatter, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("invalid --lang %q: %w", lang, err)
	}
	unit, err := currency.ParseISO(cur)
	if err != nil {
		return nil, fmt.Errorf("invalid --currency %q: %w", cur, err)
	}
	return &formatter{p: message.NewPrinter(tag), cur: unit}, nil
}

// money renders a decimal amount as sent by the API, e.g. "12.5" -> "USD 12.50".
func (f *formatter) money(v gjson.Result) string {
	d, err := decimal.NewFromString(strings.TrimSpace(v.String()))
	if err != nil {
		d = decimal.Zero
	}
	return f.p.Sprintf("%s %.2f", f.cur, d.Round(2).InexactFloat64())
}

func (f *formatter) count(n int64) string {
	return f.p.Sprintf("%d", n)
}

func (f *formatter) orderLine(w io.Writer, view gjson.Result) {
	o := view.Get("order")
	fmt.Fprintf(w, "%-26s %-18s %-24s %s\n",
		o.Get("id").String(),
		o.Get("status").String(),
		view.Get("next_action.label").String(),
		f.money(o.Get("financial.total")),
	)
}

func (f *formatter) orderView(w io.Writer, view gjson.Result) {
	o := view.Get("order")
	fmt.Fprintf(w, "Order %s  [%s]\n", o.Get("id").String(), o.Get("status").String())
	if name := o.Get("customer.name").String(); name != "" {
		fmt.Fprintf(w, "Customer: %s  %s\n", name, o.Get("customer.phone").String())
	}
	if addr := o.Get("customer.address").String(); addr != "" {
		fmt.Fprintf(w, "Address:  %s\n", addr)
	}
	fmt.Fprintf(w, "Total:    %s\n", f.money(o.Get("financial.total")))

	items := view.Get("checklist").Array()
	if len(items) > 0 {
		fmt.Fprintln(w)
		for _, it := range items {
			mark := " "
			if it.Get("collected").Bool() {
				mark = "x"
			}
			fmt.Fprintf(w, "  [%s] %-12s %s x%d\n", mark, it.Get("product_id").String(), it.Get("title").String(), it.Get("quantity").Int())
		}
		p := view.Get("progress")
		fmt.Fprintf(w, "\nCollected %d/%d (%d%%)\n", p.Get("collected").Int(), p.Get("total").Int(), p.Get("percent").Int())
	}

	act := view.Get("next_action")
	state := "enabled"
	if !act.Get("enabled").Bool() {
		state = "disabled"
	}
	fmt.Fprintf(w, "Next:     %s (%s)\n", act.Get("label").String(), state)
}
