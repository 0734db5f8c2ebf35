package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bobmcallan/tradedesk/internal/app"
	"github.com/bobmcallan/tradedesk/internal/common"
)

const usage = `tradedesk - terminal client for the trading platform

Usage:
  tradedesk <command> [arguments]

Account:
  login <email>                 authenticate and store the session
  signup                        create an account (interactive)
  logout                        clear the stored session

Portfolio:
  holdings                      open positions with P&L
  orders                        order history grouped by status
  buy <symbol> <qty> [price]    place a buy order (market unless price given)
  sell <symbol> <qty> [price]   place a sell order

Funds:
  funds                         funds summary and statement
  deposit <amount>              add funds to the wallet
  withdraw <amount>             withdraw funds

Market:
  quote <symbol>                real-time quote
  detail <symbol>               full quote with 30-day history
  chart <symbol> [hourly] [out.png]
                                render a price chart (daily unless "hourly")
  watchlist [add|rm <symbol>]   show or edit the watchlist
  ipos                          live IPO listings

Security:
  security                      2FA status, sessions, recent activity
  2fa <enable|verify <code>|disable>
  password                      change password (interactive)
  settings <phone|privacy> <value>
                                update an account setting
  account <logout-all|deactivate|delete>
                                session and account management
  support <subject> <message>   file a support ticket

Other:
  dashboard                     equity overview
  watch                         poll continuously, re-rendering the dashboard
  version                       print version
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	if cmd == "version" {
		fmt.Println(common.GetFullVersion())
		return
	}

	a, err := app.NewApp("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	common.PrintBanner()

	ctx, cancel := signalContext()
	defer cancel()

	if err := dispatch(ctx, a, cmd, args); err != nil {
		a.Logger.Error().Err(err).Str("command", cmd).Msg("Command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}
