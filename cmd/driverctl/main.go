// Command driverctl drives a running companion from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("driverctl", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	addr := fs.String("addr", envOr("DRIVERCTL_ADDR", "http://localhost:8080"), "companion base URL")
	timeout := fs.Duration("timeout", 30*time.Second, "request timeout")
	lang := fs.String("lang", envOr("DRIVERCTL_LANG", "en"), "language tag for number formatting")
	cur := fs.String("currency", envOr("DRIVERCTL_CURRENCY", "USD"), "ISO currency code")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "driverctl: %v\n", err)
		usage(stderr)
		return 2
	}
	if fs.NArg() == 0 {
		usage(stderr)
		return 2
	}

	cmd, ok := findCommand(fs.Arg(0))
	if !ok {
		fmt.Fprintf(stderr, "driverctl: unknown command %q\n", fs.Arg(0))
		usage(stderr)
		return 2
	}

	f, err := newFormatter(*lang, *cur)
	if err != nil {
		fmt.Fprintf(stderr, "driverctl: %v\n", err)
		return 2
	}
	e := &env{
		api: newAPIClient(*addr, &http.Client{Timeout: *timeout}),
		fmt: f,
		out: stdout,
	}

	if err := cmd.run(ctx, e, fs.Args()[1:]); err != nil {
		fmt.Fprintf(stderr, "driverctl %s: %v\n", cmd.name, err)
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "usage: driverctl %s\n", cmd.usage)
			return 2
		}
		return 1
	}
	return 0
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
