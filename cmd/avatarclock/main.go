package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/christophergentle/avatarclock/internal/app"
	"github.com/christophergentle/avatarclock/internal/cache"
	"github.com/christophergentle/avatarclock/internal/config"
	lambdapkg "github.com/christophergentle/avatarclock/internal/lambda"
	"github.com/christophergentle/avatarclock/internal/logging"
	"github.com/christophergentle/avatarclock/internal/prompt"
	"github.com/christophergentle/avatarclock/internal/publisher"
)

var CLI struct {
	Config     string `short:"c" help:"Configuration file path" default:"config.yaml"`
	EnvFile    string `help:"Dotenv file loaded before the environment is read" default:".env"`
	Mode       string `short:"m" help:"Avatar mode (clock or countdown), overrides the configuration"`
	Backend    string `short:"b" help:"Account backend (telegram or bluesky), overrides the configuration"`
	CacheTable string `help:"DynamoDB table to keep the session and last avatar ID in instead of the cache file"`
	Verbose    bool   `short:"v" help:"Enable verbose logging"`

	Run struct{} `cmd:"" default:"1" help:"Keep the avatar updated until interrupted"`

	Login struct{} `cmd:"" help:"Log in interactively and store the session without changing the avatar"`

	Render struct {
		At string `help:"Render for this RFC 3339 time instead of now"`
	} `cmd:"" help:"Render the avatar once to the output file without publishing it"`

	Invoke struct {
		Function string `short:"f" help:"Name of the deployed update function" default:"avatarclock"`
	} `cmd:"" help:"Trigger one update on the deployed Lambda function"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("avatarclock"),
		kong.Description("Keeps a profile photo showing the current time or a New Year countdown."))

	logger, err := logging.New(CLI.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if kctx.Command() == "invoke" {
		err = runInvoke(ctx, CLI.Invoke.Function, logger)
	} else {
		cfg, loadErr := loadConfig()
		if loadErr != nil {
			logger.Fatal("Failed to load configuration", zap.Error(loadErr))
		}

		switch kctx.Command() {
		case "run":
			err = runLoop(ctx, cfg, logger)
		case "login":
			err = runLogin(ctx, cfg, logger)
		case "render":
			err = runRender(cfg, CLI.Render.At, logger)
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Command failed", zap.String("command", kctx.Command()), zap.Error(err))
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config, CLI.EnvFile)
	if err != nil {
		return nil, err
	}
	if CLI.Mode != "" {
		cfg.Settings.Mode = CLI.Mode
	}
	if CLI.Backend != "" {
		cfg.Settings.Backend = CLI.Backend
	}
	if CLI.CacheTable != "" {
		cfg.Settings.CacheTable = CLI.CacheTable
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*cache.Store, error) {
	var backend cache.Backend = cache.NewFileBackend(cfg.Settings.CacheFile)
	if cfg.Settings.CacheTable != "" {
		dynamo, err := cache.NewDynamoDBBackend(ctx, cfg.Settings.CacheTable)
		if err != nil {
			return nil, err
		}
		backend = dynamo
	}
	return cache.Open(ctx, backend, logger.Named("cache")), nil
}

// runLoop logs in once and then updates the avatar on schedule. A login
// failure ends the process; failures after that are retried next cycle.
func runLoop(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	cycle, err := app.NewCycle(cfg, store, logger)
	if err != nil {
		return err
	}

	logger.Info("Starting avatar updates",
		zap.String("mode", cfg.Settings.Mode),
		zap.String("backend", cfg.Settings.Backend),
		zap.String("policy", cycle.Policy.Name()))

	return app.WithAccount(ctx, cfg, store, prompt.NewTerminal(), logger, func(ctx context.Context, account publisher.Account) error {
		return cycle.Scheduler(account).Start(ctx)
	})
}

func runLogin(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Settings.Backend != config.BackendTelegram {
		logger.Info("Backend keeps no session, nothing to store", zap.String("backend", cfg.Settings.Backend))
		return nil
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	return app.WithAccount(ctx, cfg, store, prompt.NewTerminal(), logger, func(context.Context, publisher.Account) error {
		logger.Info("Session stored")
		return nil
	})
}

func runRender(cfg *config.Config, at string, logger *zap.Logger) error {
	clock, err := app.Clock(cfg)
	if err != nil {
		return err
	}

	now := clock.Now()
	if at != "" {
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return fmt.Errorf("failed to parse --at: %w", err)
		}
		now = parsed.In(now.Location())
	}

	path, err := app.Composer(cfg, logger).Render(now)
	if err != nil {
		return err
	}
	logger.Info("Avatar written", zap.String("path", path))
	return nil
}

func runInvoke(ctx context.Context, function string, logger *zap.Logger) error {
	invoker, err := lambdapkg.NewInvoker(ctx, function)
	if err != nil {
		return err
	}

	resp, err := invoker.Invoke(ctx, time.Now())
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("update failed: %s", resp.Body)
	}

	logger.Info("Remote update completed", zap.String("function", function), zap.String("avatar_id", resp.AvatarID))
	return nil
}
