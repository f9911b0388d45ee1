package config

import "time"

// Config holds all application configuration.
// It is built once at startup by Load and passed by pointer to the
// components that need it; nothing mutates it afterwards.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Quiz     QuizConfig     `mapstructure:"quiz" validate:"required"`
	TTS      TTSConfig      `mapstructure:"tts" validate:"required"`
	Image    ImageConfig    `mapstructure:"image" validate:"required"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port        int      `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel    string   `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig selects the storage backend.
// URL is a pgx connection string for postgres and a file path or DSN for sqlite.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL    string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gtfield=TokenLifetimeMinutes"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost" validate:"required,gte=4,lte=31"`
	ResetTokenLifetimeMinutes   int    `mapstructure:"reset_token_lifetime_minutes" validate:"required,gt=0"`
	// ExposeResetToken returns password reset tokens in the API response.
	// Only meant for development setups without an outbound mailer.
	ExposeResetToken bool `mapstructure:"expose_reset_token"`
}

// QuizConfig holds quiz session policy.
type QuizConfig struct {
	// HintForfeitThreshold is the number of hints at which an answer
	// is scored as incorrect regardless of its content.
	HintForfeitThreshold int `mapstructure:"hint_forfeit_threshold" validate:"required,gte=1"`
}

// TTSConfig configures the ElevenLabs text-to-speech generator.
// An empty API key leaves the generator unconfigured; requests then fail
// with a configuration error instead of failing startup.
type TTSConfig struct {
	ElevenLabsAPIKey string `mapstructure:"elevenlabs_api_key"`
	VoiceID          string `mapstructure:"voice_id" validate:"required"`
	ModelID          string `mapstructure:"model_id" validate:"required"`
	BaseURL          string `mapstructure:"base_url" validate:"required,url"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxTextLength    int    `mapstructure:"max_text_length" validate:"required,gt=0"`
}

// Timeout returns the generator deadline as a duration.
func (c TTSConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ImageConfig configures the association image generator.
type ImageConfig struct {
	Provider           string `mapstructure:"provider" validate:"required,oneof=huggingface gemini"`
	HuggingFaceAPIKey  string `mapstructure:"huggingface_api_key"`
	HuggingFaceModel   string `mapstructure:"huggingface_model" validate:"required"`
	HuggingFaceBaseURL string `mapstructure:"huggingface_base_url" validate:"required,url"`
	GeminiAPIKey       string `mapstructure:"gemini_api_key"`
	GeminiModel        string `mapstructure:"gemini_model" validate:"required"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxWordLength      int    `mapstructure:"max_word_length" validate:"required,gt=0"`
}

// Timeout returns the generator deadline as a duration.
func (c ImageConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GitHubConfig configures publishing of generated images to a repository.
type GitHubConfig struct {
	Token                string `mapstructure:"token"`
	Owner                string `mapstructure:"owner" validate:"required_with=Token"`
	Repo                 string `mapstructure:"repo" validate:"required_with=Token"`
	Branch               string `mapstructure:"branch"`
	ImageDir             string `mapstructure:"image_dir"`
	BaseURL              string `mapstructure:"base_url" validate:"omitempty,url"`
	AutoPublish          bool   `mapstructure:"auto_publish"`
	SweepIntervalMinutes int    `mapstructure:"sweep_interval_minutes" validate:"gte=0"`
}

// Enabled reports whether a GitHub token has been configured.
func (c GitHubConfig) Enabled() bool {
	return c.Token != ""
}

// TaskConfig sizes the background task runner.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize   int `mapstructure:"queue_size" validate:"required,gt=0"`
}
