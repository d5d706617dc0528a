// Package app wires configuration into the renderer, the scheduler and the
// selected account backend. Both the long-running command and the Lambda
// entry point build their cycle here.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/christophergentle/avatarclock/internal/cache"
	"github.com/christophergentle/avatarclock/internal/client"
	"github.com/christophergentle/avatarclock/internal/config"
	"github.com/christophergentle/avatarclock/internal/publisher"
	"github.com/christophergentle/avatarclock/internal/render"
	"github.com/christophergentle/avatarclock/internal/scheduler"
)

// Composer builds the renderer for the configured mode and paths.
func Composer(cfg *config.Config, logger *zap.Logger) *render.Composer {
	composerConfig := render.DefaultConfig()
	composerConfig.AssetsDir = cfg.Settings.AssetsDir
	composerConfig.OutputPath = cfg.Settings.OutputFile
	composerConfig.FontFile = cfg.Settings.FontFile

	return render.NewComposer(composerConfig, cfg.RenderMode(), logger.Named("render"))
}

// Policy returns the refresh schedule for the configured mode. Countdown
// hours from the settings replace the defaults.
func Policy(cfg *config.Config) scheduler.Policy {
	if cfg.RenderMode() == render.ModeCountdown && len(cfg.Settings.CountdownHours) > 0 {
		return scheduler.NewCountdownPolicy(cfg.Settings.CountdownHours...)
	}
	return scheduler.PolicyFor(cfg.RenderMode())
}

// Clock reads time in the configured timezone.
func Clock(cfg *config.Config) (scheduler.Clock, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}
	return scheduler.SystemClock{Location: loc}, nil
}

// WithAccount connects the configured backend and calls fn with it. For
// Telegram the connection stays open until fn returns.
func WithAccount(ctx context.Context, cfg *config.Config, store *cache.Store, creds client.CredentialProvider, logger *zap.Logger, fn func(ctx context.Context, account publisher.Account) error) error {
	switch cfg.Settings.Backend {
	case config.BackendTelegram:
		telegramConfig := client.TelegramConfig{
			AppID:             cfg.Telegram.AppID,
			AppHash:           cfg.Telegram.AppHash,
			ConnectionRetries: cfg.Telegram.ConnectionRetries,
		}
		return client.RunTelegram(ctx, telegramConfig, store, creds, logger, func(ctx context.Context, account *client.TelegramAccount) error {
			return fn(ctx, account)
		})

	case config.BackendBluesky:
		account, err := client.ConnectBluesky(ctx, client.BlueskyConfig{
			Host:     cfg.Bluesky.Host,
			Handle:   cfg.Bluesky.Handle,
			Password: cfg.Bluesky.Password,
		}, logger)
		if err != nil {
			return err
		}
		return fn(ctx, account)

	default:
		return &config.ConfigError{Message: "unknown backend", Details: []string{cfg.Settings.Backend}}
	}
}

// Cycle bundles what one avatar update needs once an account is connected.
type Cycle struct {
	Composer *render.Composer
	Policy   scheduler.Policy
	Clock    scheduler.Clock
	Store    *cache.Store
	Logger   *zap.Logger
}

// NewCycle builds the renderer, schedule and clock from cfg.
func NewCycle(cfg *config.Config, store *cache.Store, logger *zap.Logger) (*Cycle, error) {
	clock, err := Clock(cfg)
	if err != nil {
		return nil, err
	}
	return &Cycle{
		Composer: Composer(cfg, logger),
		Policy:   Policy(cfg),
		Clock:    clock,
		Store:    store,
		Logger:   logger,
	}, nil
}

// Scheduler returns a scheduler publishing to account.
func (c *Cycle) Scheduler(account publisher.Account) *scheduler.Scheduler {
	pub := publisher.New(account, c.Store, c.Logger.Named("publisher"))
	return scheduler.New(c.Composer, pub, c.Policy, c.Clock, c.Logger.Named("scheduler"))
}

// Now is the current time in the configured timezone.
func (c *Cycle) Now() time.Time {
	return c.Clock.Now()
}
