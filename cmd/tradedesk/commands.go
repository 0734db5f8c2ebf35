package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/tradedesk/internal/app"
	"github.com/bobmcallan/tradedesk/internal/clients/backend"
	"github.com/bobmcallan/tradedesk/internal/models"
	"github.com/bobmcallan/tradedesk/internal/services/portfolio"
)

// amountPattern matches the digits-and-one-dot form accepted for fund
// amounts.
var amountPattern = regexp.MustCompile(`^\d*\.?\d*$`)

func parseAmount(s string) (float64, error) {
	if !amountPattern.MatchString(s) || s == "" || s == "." {
		return 0, fmt.Errorf("invalid amount %q: use digits with an optional decimal point", s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("amount must be a positive number")
	}
	return v, nil
}

func dispatch(ctx context.Context, a *app.App, cmd string, args []string) error {
	switch cmd {
	case "login":
		return cmdLogin(ctx, a, args)
	case "signup":
		return cmdSignup(ctx, a)
	case "logout":
		return a.Logout()
	case "holdings":
		return cmdHoldings(ctx, a)
	case "orders":
		return cmdOrders(ctx, a)
	case "buy":
		return cmdPlaceOrder(ctx, a, models.OrderSideBuy, args)
	case "sell":
		return cmdPlaceOrder(ctx, a, models.OrderSideSell, args)
	case "funds":
		return cmdFunds(ctx, a)
	case "deposit":
		return cmdTransferFunds(ctx, a, models.FundsDeposit, args)
	case "withdraw":
		return cmdTransferFunds(ctx, a, models.FundsWithdraw, args)
	case "quote":
		return cmdQuote(ctx, a, args)
	case "detail":
		return cmdDetail(ctx, a, args)
	case "chart":
		return cmdChart(ctx, a, args)
	case "watchlist":
		return cmdWatchlist(ctx, a, args)
	case "ipos":
		return cmdIPOs(ctx, a)
	case "security":
		return cmdSecurity(ctx, a)
	case "2fa":
		return cmdTwoFA(ctx, a, args)
	case "password":
		return cmdChangePassword(ctx, a)
	case "settings":
		return cmdSettings(ctx, a, args)
	case "account":
		return cmdAccount(ctx, a, args)
	case "support":
		return cmdSupport(ctx, a, args)
	case "dashboard":
		return cmdDashboard(ctx, a)
	case "watch":
		return cmdWatch(ctx, a)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// requireAuth resumes the stored session or fails with a login hint.
func requireAuth(ctx context.Context, a *app.App) (context.Context, error) {
	authed, ok := a.ResumeSession(ctx)
	if !ok {
		return ctx, errors.New("not logged in: run 'tradedesk login <email>' first")
	}
	return authed, nil
}

func prompt(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func cmdLogin(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: tradedesk login <email>")
	}
	password, err := prompt("Password")
	if err != nil {
		return err
	}

	if _, err := a.Login(ctx, args[0], password); err != nil {
		if errors.Is(err, backend.ErrUnauthenticated) {
			return errors.New("invalid email or password")
		}
		return err
	}

	fmt.Printf("Logged in as %s\n", args[0])
	return nil
}

func cmdSignup(ctx context.Context, a *app.App) error {
	req := &models.SignupRequest{}
	fields := []struct {
		label string
		dst   *string
	}{
		{"Name", &req.Name},
		{"Email", &req.Email},
		{"Password", &req.Password},
		{"Birth date (YYYY-MM-DD)", &req.BirthDate},
		{"Mobile number", &req.MobileNumber},
	}
	for _, f := range fields {
		v, err := prompt(f.label)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if err := a.Backend.Signup(ctx, req); err != nil {
		return err
	}
	fmt.Println("Account created. Run 'tradedesk login' to sign in.")
	return nil
}

func cmdHoldings(ctx context.Context, a *app.App) error {
	ctx, err := requireAuth(ctx, a)
	if err != nil {
		return err
	}

	entries, err := a.Backend.Holdings(ctx)
	if err != nil {
		return err
	}
	orders, err := a.Backend.Orders(ctx)
	if err != nil {
		return err
	}

	holdings, totals := a.Portfolio.Snapshot(ctx, entries, orders)
	fmt.Print(formatHoldings(holdings, totals))
	return nil
}

func cmdOrders(ctx context.Context, a *app.App) error {
	ctx, err := requireAuth(ctx, a)
	if err != nil {
		return err
	}
	orders, err := a.Backend.Orders(ctx)
	if err != nil {
		return err
	}
	fmt.Print(formatOrders(orders))
	return nil
}

func cmdPlaceOrder(ctx context.Context, a *app.App, side string, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("usage: tradedesk %s <symbol> <qty> [price]", side)
	}
	ctx, err := requireAuth(ctx, a)
	if err != nil {
		return err
	}

	symbol := strings.ToUpper(args[0])
	qty, err := strconv.ParseFloat(args[1], 64)
	if err != nil || qty <= 0 {
		return errors.New("quantity must be a positive number")
	}

	req := &models.OrderRequest{
		Stock:     symbol,
		Quantity:  qty,
		Side:      side,
		OrderType: models.OrderTypeMarket,
		ClientRef: uuid.NewString(),
	}

	if len(args) == 3 {
		price, err := strconv.ParseFloat(args[2], 64)
		if err != nil || price <= 0 {
			return errors.New("limit price must be a positive number")
		}
		req.Price = price
		req.OrderType = models.OrderTypeLimit
	} else {
		quote, err := a.MarketData.Quote(ctx, symbol)
		if err != nil {
			return fmt.Errorf("failed to price market order: %w", err)
		}
		req.Price = quote.Price
	}

	if err := a.Backend.PlaceOrder(ctx, req); err != nil {
		return err
	}
	fmt.Printf("%s order placed: %g %s @ %s (%s)\n",
		strings.ToUpper(side), qty, symbol, formatPrice(req.Price), req.OrderType)
	return nil
}

func cmdFunds(ctx context.Context, a *app.App) error {
	ctx, err := requireAuth(ctx, a)
	if err != nil {
		return err
	}

	wallet, err := a.Backend.Wallet(ctx)
	if err != nil {
		return err
	}
	txns, err := a.Backend.FundsTransactions(ctx)
	if err != nil {
		return err
	}
	entries, err := a.Backend.Holdings(ctx)
	if err != nil {
		return err
	}

	summary := portfolio.ComputeFundsSummary(wallet.WalletBalance, txns, entries)
	fmt.Print(formatFunds(summary, txns))
	return nil
}

func cmdTransferFunds(ctx context.Context, a *app.App, kind string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: tradedesk %s <amount>", kind)
	}
	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	ctx, err = requireAuth(ctx, a)
	if err != nil {
		return err
	}

	if kind == models.FundsDeposit {
		err = a.Backend.Deposit(ctx, amount)
	} else {
		err = a.Backend.Withdraw(ctx, amount)
	}
	if err != nil {
		return err
	}
	label := "Deposit"
	if kind == models.FundsWithdraw {
		label = "Withdrawal"
	}
	fmt.Printf("%s of %s complete\n", label, formatPrice(amount))
	return nil
}

func cmdQuote(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: tradedesk quote <symbol>")
	}
	quote, err := a.MarketData.Quote(ctx, strings.ToUpper(args[0]))
	if err != nil {
		return err
	}
	fmt.Print(formatQuote(quote))
	return nil
}

func cmdDetail(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: tradedesk detail <symbol>")
	}
	symbol := strings.ToUpper(args[0])

	quote, err := a.MarketData.Quote(ctx, symbol)
	if err != nil {
		return err
	}
	history, err := a.MarketData.DailyHistory(ctx, symbol)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("History fetch failed; rendering quote only")
		history = nil
	}

	var watched bool
	if authed, ok := a.ResumeSession(ctx); ok {
		if symbols, err := a.Backend.Watchlist(authed); err == nil {
			for _, s := range symbols {
				if s == symbol {
					watched = true
					break
				}
			}
		}
	}

	fmt.Print(formatStockDetail(quote, recentBars(history, 30), watched))
	return nil
}

// recentBars returns the last n bars, oldest first.
func recentBars(history *models.PriceHistory, n int) []models.Bar {
	if history == nil {
		return nil
	}
	bars := history.Bars
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return bars
}

func cmdChart(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: tradedesk chart <symbol> [hourly] [out.png]")
	}
	symbol := strings.ToUpper(args[0])
	hourly := false
	out := symbol + ".png"
	for _, arg := range args[1:] {
		if arg == "hourly" {
			hourly = true
		} else {
			out = arg
		}
	}

	var history *models.PriceHistory
	var err error
	if hourly {
		history, err = a.MarketData.IntradayChart(ctx, "1hour", symbol)
	} else {
		history, err = a.MarketData.DailyHistory(ctx, symbol)
		if err == nil {
			history.Bars = recentBars(history, 30)
		}
	}
	if err != nil {
		return err
	}

	png, err := portfolio.RenderPriceChart(history)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, png, 0o644); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	fmt.Printf("Chart written to %s (%d bars)\n", out, len(history.Bars))
	return nil
}

func cmdWatchlist(ctx context.Context, a *app.App, args []string) error {
	ctx, err := requireAuth(ctx, a)
	if err != nil {
		return err
	}

	if len(args) == 2 {
		symbol := strings.ToUpper(args[1])
		switch args[0] {
		case "add":
			if err := a.Backend.AddToWatchlist(ctx, symbol); err != nil {
				return err
			}
			fmt.Printf("%s added to watchlist\n", symbol)
			return nil
		case "rm", "remove":
			if err := a.Backend.RemoveFromWatchlist(ctx, symbol); err != nil {
				return err
			}
			fmt.Printf("%s removed from watchlist\n", symbol)
			return nil
		}
	}
	if len(args) != 0 {
		return errors.New("usage: tradedesk watchlist [add|rm <symbol>]")
	}

	symbols, err := a.Backend.Watchlist(ctx)
	if err != nil {
		return err
	}
	quotes, err := a.MarketData.BatchQuotes(ctx, symbols)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Watchlist quotes unavailable")
		quotes = nil
	}
	fmt.Print(formatWatchlist(symbols, quotes))
	return nil
}

func cmdIPOs(ctx context.Context, a *app.App) error {
	ctx, err := requireAuth(ctx, a)
	if err != nil {
		return err
	}
	bids, err := a.Backend.LiveIPOs(ctx)
	if err != nil {
		return err
	}
	fmt.Print(formatIPOs(bids))
	return nil
}

func cmdSecurity(ctx context.Context, a *app.App) error {
	ctx, err := requireAuth(ctx, a)
	if err != nil {
		return err
	}

	enabled, err := a.Backend.TwoFAStatus(ctx)
	if err != nil {
		return err
	}
	activity, err := a.Backend.RecentActivity(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Activity fetch failed")
	}
	sessions, err := a.Backend.ActiveSessions(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Sessions fetch failed")
	}

	fmt.Print(formatSecurity(models.SecuritySettings{
		TwoFAEnabled:   enabled,
		RecentActivity: activity,
		ActiveSessions: sessions,
	}))
	return nil
}

func cmdTwoFA(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: tradedesk 2fa <enable|verify <code>|disable>")
	}
	ctx, err := requireAuth(ctx, a)
	if err != nil {
		return err
	}

	switch args[0] {
	case "enable":
		url, err := a.Backend.GenerateTwoFA(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Scan this provisioning URL in your authenticator app:\n\n  %s\n\nThen run: tradedesk 2fa verify <code>\n", url)
		return nil
	case "verify":
		if len(args) != 2 {
			return errors.New("usage: tradedesk 2fa verify <code>")
		}
		ok, err := a.Backend.VerifyTwoFA(ctx, args[1])
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("verification code rejected")
		}
		fmt.Println("Two-factor authentication enabled")
		return nil
	case "disable":
		if err := a.Backend.DisableTwoFA(ctx); err != nil {
			return err
		}
		fmt.Println("Two-factor authentication disabled")
		return nil
	}
	return fmt.Errorf("unknown 2fa action %q", args[0])
}

func cmdChangePassword(ctx context.Context, a *app.App) error {
	ctx, err := requireAuth(ctx, a)
	if err != nil {
		return err
	}

	current, err := prompt("Current password")
	if err != nil {
		return err
	}
	updated, err := prompt("New password")
	if err != nil {
		return err
	}

	if err := a.Backend.ChangePassword(ctx, current, updated); err != nil {
		return err
	}
	fmt.Println("Password changed")
	return nil
}

func cmdSettings(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: tradedesk settings <phone|privacy> <value>")
	}
	ctx, err := requireAuth(ctx, a)
	if err != nil {
		return err
	}

	update := &models.SettingsUpdate{}
	switch args[0] {
	case "phone":
		update.Phone = args[1]
	case "privacy":
		update.Privacy = args[1]
	default:
		return fmt.Errorf("unknown setting %q", args[0])
	}

	if err := a.Backend.UpdateSettings(ctx, update); err != nil {
		return err
	}
	fmt.Printf("Setting %s updated\n", args[0])
	return nil
}

func cmdAccount(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: tradedesk account <logout-all|deactivate|delete>")
	}
	ctx, err := requireAuth(ctx, a)
	if err != nil {
		return err
	}

	switch args[0] {
	case "logout-all":
		if err := a.Backend.LogoutAllSessions(ctx); err != nil {
			return err
		}
		fmt.Println("All other sessions logged out")
		return nil
	case "deactivate", "delete":
		confirm, err := prompt(fmt.Sprintf("Type %q to confirm", args[0]))
		if err != nil {
			return err
		}
		if confirm != args[0] {
			return errors.New("aborted")
		}
		if args[0] == "deactivate" {
			err = a.Backend.DeactivateAccount(ctx)
		} else {
			err = a.Backend.DeleteAccount(ctx)
		}
		if err != nil {
			return err
		}
		if err := a.Sessions.Clear(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to clear local session")
		}
		fmt.Printf("Account %sd\n", args[0])
		return nil
	}
	return fmt.Errorf("unknown account action %q", args[0])
}

func cmdSupport(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: tradedesk support <subject> <message>")
	}
	ctx, err := requireAuth(ctx, a)
	if err != nil {
		return err
	}

	ticket := &models.SupportTicket{
		Subject: args[0],
		Message: strings.Join(args[1:], " "),
	}
	if err := a.Backend.SubmitSupportTicket(ctx, ticket); err != nil {
		return err
	}
	fmt.Println("Support ticket submitted")
	return nil
}

func cmdDashboard(ctx context.Context, a *app.App) error {
	ctx, err := requireAuth(ctx, a)
	if err != nil {
		return err
	}

	entries, err := a.Backend.Holdings(ctx)
	if err != nil {
		return err
	}
	orders, err := a.Backend.Orders(ctx)
	if err != nil {
		return err
	}
	wallet, err := a.Backend.Wallet(ctx)
	if err != nil {
		return err
	}
	txns, err := a.Backend.FundsTransactions(ctx)
	if err != nil {
		return err
	}

	holdings, totals := a.Portfolio.Snapshot(ctx, entries, orders)
	funds := portfolio.ComputeFundsSummary(wallet.WalletBalance, txns, entries)
	fmt.Print(formatDashboard(holdings, totals, funds))
	return nil
}

// cmdWatch runs the pollers and re-renders the dashboard on every
// quote interval until interrupted.
func cmdWatch(ctx context.Context, a *app.App) error {
	ctx, err := requireAuth(ctx, a)
	if err != nil {
		return err
	}

	a.Poller.Start(ctx)
	defer a.Poller.Stop()

	ticker := time.NewTicker(a.Config.Polling.QuoteInterval())
	defer ticker.Stop()

	render := func() {
		snap := a.State.Snapshot()
		if snap.QuotesUpdated.IsZero() {
			return
		}
		fmt.Print("\033[H\033[2J") // clear screen
		fmt.Print(formatDashboard(snap.Holdings, snap.Totals, snap.Funds))
		fmt.Printf("\n%s. Ctrl-C to exit\n", formatFeedStatus(snap))
	}

	// First paint as soon as the immediate fetches land
	first := time.NewTimer(2 * time.Second)
	defer first.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nStopped")
			return nil
		case <-first.C:
			render()
		case <-ticker.C:
			render()
		}
	}
}
