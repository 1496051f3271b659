package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Provider ProviderConfig `mapstructure:"provider" validate:"required"`
	Task     TaskConfig     `mapstructure:"task"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains authentication and authorization settings.
type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt_secret"           validate:"required,min=32"`
	TokenLifetimeHours int    `mapstructure:"token_lifetime_hours" validate:"gte=0"`
}

// ProviderConfig contains the generative-provider integration settings.
// The API key is the opaque credential injected at process start.
type ProviderConfig struct {
	GeminiAPIKey   string `mapstructure:"gemini_api_key"   validate:"required"`
	TextModel      string `mapstructure:"text_model"       validate:"required"`
	ImageModel     string `mapstructure:"image_model"      validate:"required"`
	ImageEditModel string `mapstructure:"image_edit_model" validate:"required"`
	VideoModel     string `mapstructure:"video_model"      validate:"required"`

	// PollIntervalSeconds is the spacing between long-running operation
	// polls. Zero selects the built-in default.
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds" validate:"gte=0"`

	// MaxPollAttempts bounds polling of a single operation. Zero selects
	// the built-in default.
	MaxPollAttempts int `mapstructure:"max_poll_attempts" validate:"gte=0"`
}

// TaskConfig tunes the background generation runner.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gte=0"`
	QueueSize   int `mapstructure:"queue_size"   validate:"gte=0"`
}
