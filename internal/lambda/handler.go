package lambda

import (
	"context"

	"go.uber.org/zap"

	"github.com/christophergentle/avatarclock/internal/app"
	"github.com/christophergentle/avatarclock/internal/cache"
	"github.com/christophergentle/avatarclock/internal/client"
	"github.com/christophergentle/avatarclock/internal/config"
	"github.com/christophergentle/avatarclock/internal/publisher"
)

// Event represents the EventBridge event structure
type Event struct {
	Source string `json:"source"`
	Time   string `json:"time"`
}

// Response represents the Lambda response
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
	AvatarID   string `json:"avatarId,omitempty"`
}

// ConfigLoader loads the configuration for one invocation.
type ConfigLoader interface {
	LoadConfig(ctx context.Context) (*config.Config, error)
}

// CycleFunc performs one avatar update and returns the stored avatar ID.
type CycleFunc func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (string, error)

// Handler runs a single avatar update per scheduled invocation. The
// EventBridge rule replaces the in-process scheduler loop.
type Handler struct {
	loader ConfigLoader
	cycle  CycleFunc
	logger *zap.Logger
}

// NewHandler creates a handler. A nil cycle uses RunCycle.
func NewHandler(loader ConfigLoader, cycle CycleFunc, logger *zap.Logger) *Handler {
	if cycle == nil {
		cycle = RunCycle
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{loader: loader, cycle: cycle, logger: logger}
}

// Handle is the Lambda entry point. Failures are reported in the response
// rather than as errors so EventBridge does not retry a cycle that is already stale.
func (h *Handler) Handle(ctx context.Context, event Event) (Response, error) {
	h.logger.Info("Received event", zap.String("source", event.Source), zap.String("time", event.Time))

	cfg, err := h.loader.LoadConfig(ctx)
	if err != nil {
		h.logger.Error("Failed to load configuration", zap.Error(err))
		return Response{
			StatusCode: 500,
			Body:       "Failed to load configuration from SSM",
		}, nil
	}

	avatarID, err := h.cycle(ctx, cfg, h.logger)
	if err != nil {
		h.logger.Error("Avatar update failed", zap.Error(err))
		return Response{
			StatusCode: 500,
			Body:       "Avatar update failed: " + err.Error(),
		}, nil
	}

	h.logger.Info("Avatar update completed", zap.String("avatar_id", avatarID))
	return Response{
		StatusCode: 200,
		Body:       "Avatar updated successfully",
		AvatarID:   avatarID,
	}, nil
}

// RunCycle renders and publishes one avatar using the DynamoDB cache. The
// Telegram session must already be stored there; Lambda cannot prompt.
func RunCycle(ctx context.Context, cfg *config.Config, logger *zap.Logger) (string, error) {
	backend, err := cache.NewDynamoDBBackend(ctx, cfg.Settings.CacheTable)
	if err != nil {
		return "", err
	}
	store := cache.Open(ctx, backend, logger.Named("cache"))

	cycle, err := app.NewCycle(cfg, store, logger)
	if err != nil {
		return "", err
	}

	err = app.WithAccount(ctx, cfg, store, client.NoPrompt{}, logger, func(ctx context.Context, account publisher.Account) error {
		return cycle.Scheduler(account).RunOnce(ctx, cycle.Now())
	})
	if err != nil {
		return "", err
	}

	return store.Get(cache.FieldLastUploadedAvatarID), nil
}
