package lambda

import (
	"context"
	"strconv"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/christophergentle/avatarclock/internal/config"
)

const (
	paramAppID          = "/avatarclock/telegram/app_id"
	paramAppHash        = "/avatarclock/telegram/app_hash"
	paramHandle         = "/avatarclock/bluesky/handle"
	paramPassword       = "/avatarclock/bluesky/password"
	paramBackend        = "/avatarclock/settings/backend"
	paramMode           = "/avatarclock/settings/mode"
	paramTimezone       = "/avatarclock/settings/timezone"
	paramCacheTable     = "/avatarclock/settings/cache_table"
	paramCountdownHours = "/avatarclock/settings/countdown_hours"
)

// lambdaOutputFile is the only writable location in the Lambda runtime.
const lambdaOutputFile = "/tmp/upload.png"

// SSMAPI is the subset of the SSM client the loader uses.
type SSMAPI interface {
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

// SSMConfigLoader handles loading configuration from SSM Parameter Store
type SSMConfigLoader struct {
	client SSMAPI
}

// NewSSMConfigLoader creates a new SSM configuration loader
func NewSSMConfigLoader(ctx context.Context) (*SSMConfigLoader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	return NewSSMConfigLoaderWithClient(ssm.NewFromConfig(cfg)), nil
}

// NewSSMConfigLoaderWithClient creates a loader around an existing client
func NewSSMConfigLoaderWithClient(client SSMAPI) *SSMConfigLoader {
	return &SSMConfigLoader{client: client}
}

// LoadConfig loads configuration from SSM Parameter Store. Parameters that do
// not exist are treated as unset; Validate decides which of them are required.
func (s *SSMConfigLoader) LoadConfig(ctx context.Context) (*config.Config, error) {
	parameterNames := []string{
		paramAppID,
		paramAppHash,
		paramHandle,
		paramPassword,
		paramBackend,
		paramMode,
		paramTimezone,
		paramCacheTable,
		paramCountdownHours,
	}

	result, err := s.client.GetParameters(ctx, &ssm.GetParametersInput{
		Names:          parameterNames,
		WithDecryption: true,
	})
	if err != nil {
		return nil, err
	}

	params := make(map[string]string)
	for _, param := range result.Parameters {
		if param.Name != nil && param.Value != nil {
			params[*param.Name] = *param.Value
		}
	}

	hours, err := parseHours(params[paramCountdownHours])
	if err != nil {
		return nil, err
	}

	cfg := &config.Config{
		Telegram: config.TelegramConfig{
			AppID:   parseIntWithDefault(params[paramAppID], 0),
			AppHash: params[paramAppHash],
		},
		Bluesky: config.BlueskyConfig{
			Handle:   params[paramHandle],
			Password: params[paramPassword],
		},
		Settings: config.SettingsConfig{
			Backend:        params[paramBackend],
			Mode:           params[paramMode],
			Timezone:       params[paramTimezone],
			CacheTable:     params[paramCacheTable],
			OutputFile:     lambdaOutputFile,
			CountdownHours: hours,
		},
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		if len(result.InvalidParameters) > 0 {
			return nil, &config.ConfigError{
				Message: err.Error() + "; parameters not found",
				Details: result.InvalidParameters,
			}
		}
		return nil, err
	}

	if cfg.Settings.CacheTable == "" {
		return nil, &config.ConfigError{
			Message: "Missing required parameter: " + paramCacheTable,
		}
	}

	return cfg, nil
}

// parseIntWithDefault parses an integer with a default value
func parseIntWithDefault(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}

	return parsed
}

// parseHours reads a comma separated hour list such as "0,9,17,21".
func parseHours(value string) ([]int, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	var hours []int
	for _, field := range strings.Split(value, ",") {
		hour, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, &config.ConfigError{
				Message: "Invalid parameter: " + paramCountdownHours,
				Details: []string{value},
			}
		}
		hours = append(hours, hour)
	}
	return hours, nil
}
