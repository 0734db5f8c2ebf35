// Package app wires configuration, clients, services, and the poller
// into a single client runtime.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/tradedesk/internal/clients/backend"
	"github.com/bobmcallan/tradedesk/internal/clients/marketdata"
	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/interfaces"
	"github.com/bobmcallan/tradedesk/internal/models"
	"github.com/bobmcallan/tradedesk/internal/services/portfolio"
	"github.com/bobmcallan/tradedesk/internal/services/session"
)

// App holds all initialized services and clients.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Sessions    interfaces.SessionStore
	Backend     interfaces.BackendClient
	MarketData  interfaces.MarketDataClient
	Portfolio   *portfolio.Service
	State       *State
	Poller      *Poller
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, logging, clients, and services.
// configPath may be empty, in which case the default resolution logic
// is used.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Config resolution: explicit path, TRADEDESK_CONFIG, binary dir,
	// then the development fallback
	if configPath == "" {
		configPath = os.Getenv("TRADEDESK_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "tradedesk.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/tradedesk.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative session paths to the binary directory
	if config.Session.Path != "" && !filepath.IsAbs(config.Session.Path) {
		config.Session.Path = filepath.Join(binDir, config.Session.Path)
	}
	if config.Session.KeyPath != "" && !filepath.IsAbs(config.Session.KeyPath) {
		config.Session.KeyPath = filepath.Join(binDir, config.Session.KeyPath)
	}

	logger := common.NewLogger(config.Logging.Level)

	// Missing settings surface once at startup instead of as opaque
	// per-request provider errors. Not fatal: commands that only talk
	// to the backend still work without a market data key.
	if err := config.ValidateRequired(); err != nil {
		logger.Warn().Err(err).Msg("Configuration incomplete; market data commands may fail")
	}

	backendClient := backend.NewClient(
		backend.WithBaseURL(config.Clients.Backend.BaseURL),
		backend.WithTimeout(config.Clients.Backend.GetTimeout()),
		backend.WithLogger(logger.WithComponent("backend")),
	)

	marketClient := marketdata.NewClient(
		config.Clients.MarketData.APIKey,
		marketdata.WithBaseURL(config.Clients.MarketData.BaseURL),
		marketdata.WithRateLimit(config.Clients.MarketData.RateLimit),
		marketdata.WithTimeout(config.Clients.MarketData.GetTimeout()),
		marketdata.WithLogger(logger.WithComponent("marketdata")),
	)

	sessions := session.NewStore(config.Session.Path, config.Session.KeyPath, logger.WithComponent("session"))
	portfolioService := portfolio.NewService(marketClient, logger.WithComponent("portfolio"))
	state := NewState()

	a := &App{
		Config:      config,
		Logger:      logger,
		Sessions:    sessions,
		Backend:     backendClient,
		MarketData:  marketClient,
		Portfolio:   portfolioService,
		State:       state,
		Poller:      NewPoller(backendClient, portfolioService, state, config, logger.WithComponent("poller")),
		StartupTime: time.Now(),
	}
	return a, nil
}

// ResumeSession loads the stored session and attaches it to the
// context. ok is false when no usable session exists.
func (a *App) ResumeSession(ctx context.Context) (context.Context, bool) {
	stored, ok, err := a.Sessions.Load()
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to load stored session")
		return ctx, false
	}
	if !ok {
		return ctx, false
	}
	if !a.Sessions.Valid(stored, time.Now()) {
		a.Logger.Info().Str("email", stored.Email).Msg("Stored session expired")
		_ = a.Sessions.Clear()
		return ctx, false
	}
	return common.WithSession(ctx, &common.AuthSession{
		Token:    stored.Token,
		Email:    stored.Email,
		DeviceID: stored.DeviceID,
	}), true
}

// Login authenticates with the backend, persists the session, and
// returns a context carrying it.
func (a *App) Login(ctx context.Context, email, password string) (context.Context, error) {
	token, err := a.Backend.Login(ctx, email, password)
	if err != nil {
		return ctx, err
	}

	stored := &models.StoredSession{Token: token, Email: email}
	if err := a.Sessions.Save(stored); err != nil {
		a.Logger.Warn().Err(err).Msg("Session persist failed; continuing with in-memory session")
	}

	return common.WithSession(ctx, &common.AuthSession{
		Token:    token,
		Email:    email,
		DeviceID: stored.DeviceID,
	}), nil
}

// Logout clears the stored session.
func (a *App) Logout() error {
	return a.Sessions.Clear()
}
