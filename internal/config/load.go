package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix namespaces all environment variables read by Load, e.g.
// MUSE_SERVER_PORT or MUSE_PROVIDER_GEMINI_API_KEY.
const envPrefix = "MUSE"

// Load configuration from environment variables and optionally a config
// file. Environment variables take precedence over values from config
// files. Returns a populated Config struct or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults must be bound explicitly, or Unmarshal will
	// not see their environment-only values.
	for _, key := range []string{
		"database.url",
		"auth.jwt_secret",
		"provider.gemini_api_key",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment key %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; the environment can carry the
		// whole configuration.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("auth.token_lifetime_hours", 24)

	v.SetDefault("provider.text_model", "gemini-2.5-flash")
	v.SetDefault("provider.image_model", "imagen-3.0-generate-002")
	v.SetDefault("provider.image_edit_model", "gemini-2.0-flash-preview-image-generation")
	v.SetDefault("provider.video_model", "veo-2.0-generate-001")
	v.SetDefault("provider.poll_interval_seconds", 10)
	v.SetDefault("provider.max_poll_attempts", 90)

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
}
