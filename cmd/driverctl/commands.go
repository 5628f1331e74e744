package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/pflag"
)

var errUsage = errors.New("usage")

type env struct {
	api *apiClient
	fmt *formatter
	out io.Writer
}

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, e *env, args []string) error
}

var commands = []command{
	{"login", "login --email EMAIL [--password PASSWORD]", cmdLogin},
	{"logout", "logout", cmdLogout},
	{"status", "status", cmdStatus},
	{"clock-in", "clock-in", simplePost("clock-in", "/driver/clock-in", "clocked in")},
	{"clock-out", "clock-out", simplePost("clock-out", "/driver/clock-out", "clocked out")},
	{"orders", "orders [--scope all|relevant|mine]", cmdOrders},
	{"show", "show ORDER_ID", cmdShow},
	{"accept", "accept ORDER_ID", cmdAccept},
	{"collect", "collect ORDER_ID PRODUCT_ID [--undo]", cmdCollect},
	{"dispatch", "dispatch ORDER_ID", cmdDispatch},
	{"complete", "complete ORDER_ID CODE", cmdComplete},
	{"earnings", "earnings", cmdEarnings},
}

func findCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: driverctl [--addr URL] [--lang TAG] [--currency ISO] COMMAND [ARGS]")
	fmt.Fprintln(w, "\ncommands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %s\n", c.usage)
	}
}

func flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// positional parses args with fs, or with an empty flag set when fs is nil,
// and checks that exactly n arguments remain.
func positional(name string, fs *pflag.FlagSet, args []string, n int) ([]string, error) {
	if fs == nil {
		fs = flagSet(name)
	}
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != n {
		return nil, fmt.Errorf("%w: %s expects %d argument(s)", errUsage, name, n)
	}
	return fs.Args(), nil
}

func orderPath(id string, rest string) string {
	return "/orders/" + url.PathEscape(id) + rest
}

func cmdLogin(ctx context.Context, e *env, args []string) error {
	fs := flagSet("login")
	email := fs.String("email", "", "driver email")
	password := fs.String("password", os.Getenv("DRIVERCTL_PASSWORD"), "password (defaults to $DRIVERCTL_PASSWORD)")
	if _, err := positional("login", fs, args, 0); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("%w: login needs --email and a password", errUsage)
	}
	res, err := e.api.do(ctx, http.MethodPost, "/auth/login", map[string]string{"email": *email, "password": *password})
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "logged in as %s\n", res.Get("name").String())
	return nil
}

func cmdLogout(ctx context.Context, e *env, args []string) error {
	if _, err := positional("logout", nil, args, 0); err != nil {
		return err
	}
	if _, err := e.api.do(ctx, http.MethodPost, "/auth/logout", nil); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "logged out")
	return nil
}

func cmdStatus(ctx context.Context, e *env, args []string) error {
	if _, err := positional("status", nil, args, 0); err != nil {
		return err
	}
	res, err := e.api.do(ctx, http.MethodGet, "/auth/status", nil)
	if err != nil {
		return err
	}
	if !res.Get("authenticated").Bool() {
		fmt.Fprintln(e.out, "not logged in")
		return nil
	}
	d := res.Get("driver")
	fmt.Fprintf(e.out, "%s <%s>  %s\n", d.Get("name").String(), d.Get("email").String(), d.Get("duty.availability").String())
	return nil
}

func simplePost(name, path, done string) func(context.Context, *env, []string) error {
	return func(ctx context.Context, e *env, args []string) error {
		if _, err := positional(name, nil, args, 0); err != nil {
			return err
		}
		if _, err := e.api.do(ctx, http.MethodPost, path, nil); err != nil {
			return err
		}
		fmt.Fprintln(e.out, done)
		return nil
	}
}

func cmdOrders(ctx context.Context, e *env, args []string) error {
	fs := flagSet("orders")
	scope := fs.String("scope", "relevant", "all, relevant or mine")
	if _, err := positional("orders", fs, args, 0); err != nil {
		return err
	}
	res, err := e.api.do(ctx, http.MethodGet, "/orders?scope="+url.QueryEscape(*scope), nil)
	if err != nil {
		return err
	}
	list := res.Get("orders").Array()
	if len(list) == 0 {
		fmt.Fprintln(e.out, "no orders")
		return nil
	}
	for _, v := range list {
		e.fmt.orderLine(e.out, v)
	}
	fmt.Fprintf(e.out, "%s order(s)\n", e.fmt.count(int64(len(list))))
	return nil
}

func cmdShow(ctx context.Context, e *env, args []string) error {
	pos, err := positional("show", nil, args, 1)
	if err != nil {
		return err
	}
	res, err := e.api.do(ctx, http.MethodGet, orderPath(pos[0], ""), nil)
	if err != nil {
		return err
	}
	e.fmt.orderView(e.out, res)
	return nil
}

func cmdAccept(ctx context.Context, e *env, args []string) error {
	pos, err := positional("accept", nil, args, 1)
	if err != nil {
		return err
	}
	res, err := e.api.do(ctx, http.MethodPost, orderPath(pos[0], "/accept"), nil)
	if err != nil {
		return err
	}
	switch {
	case res.Get("already_assigned").Bool():
		fmt.Fprintln(e.out, "order is already yours")
	case res.Get("message").String() != "":
		fmt.Fprintln(e.out, res.Get("message").String())
	default:
		fmt.Fprintln(e.out, "order accepted")
	}
	e.fmt.orderView(e.out, res.Get("view"))
	return nil
}

func cmdCollect(ctx context.Context, e *env, args []string) error {
	fs := flagSet("collect")
	undo := fs.Bool("undo", false, "mark the product as not collected")
	pos, err := positional("collect", fs, args, 2)
	if err != nil {
		return err
	}
	path := orderPath(pos[0], "/products/"+url.PathEscape(pos[1]))
	res, err := e.api.do(ctx, http.MethodPut, path, map[string]bool{"collected": !*undo})
	if err != nil {
		return err
	}
	p := res.Get("progress")
	fmt.Fprintf(e.out, "collected %d/%d, next: %s\n", p.Get("collected").Int(), p.Get("total").Int(), res.Get("next_action.label").String())
	return nil
}

func cmdDispatch(ctx context.Context, e *env, args []string) error {
	pos, err := positional("dispatch", nil, args, 1)
	if err != nil {
		return err
	}
	res, err := e.api.do(ctx, http.MethodPost, orderPath(pos[0], "/out-for-delivery"), nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "order %s is %s\n", pos[0], res.Get("order.status").String())
	return nil
}

func cmdComplete(ctx context.Context, e *env, args []string) error {
	pos, err := positional("complete", nil, args, 2)
	if err != nil {
		return err
	}
	res, err := e.api.do(ctx, http.MethodPost, orderPath(pos[0], "/complete"), map[string]string{"code": pos[1]})
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "order %s is %s\n", pos[0], res.Get("order.status").String())
	return nil
}

func cmdEarnings(ctx context.Context, e *env, args []string) error {
	if _, err := positional("earnings", nil, args, 0); err != nil {
		return err
	}
	res, err := e.api.do(ctx, http.MethodGet, "/earnings", nil)
	if err != nil {
		return err
	}
	for _, p := range []string{"today", "week", "month"} {
		fmt.Fprintf(e.out, "%-6s %14s  %s deliveries\n", p,
			e.fmt.money(res.Get(p+"_earnings")),
			e.fmt.count(res.Get(p+"_deliveries").Int()),
		)
	}
	fmt.Fprintf(e.out, "avg    %14s  per delivery\n", e.fmt.money(res.Get("avg_per_delivery")))
	return nil
}
