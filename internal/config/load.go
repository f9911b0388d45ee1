package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. VOCA_SERVER_PORT or VOCA_DATABASE_URL.
const EnvPrefix = "VOCA"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// A .env file in the working directory is loaded first when present; it
// never overrides variables already set in the process environment.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate runs struct validation over a loaded configuration.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// setDefaults registers every key with viper. AutomaticEnv only resolves
// keys viper already knows about, so optional keys get empty defaults too.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "voca.db")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.reset_token_lifetime_minutes", 60)
	v.SetDefault("auth.expose_reset_token", false)

	v.SetDefault("quiz.hint_forfeit_threshold", 2)

	v.SetDefault("tts.elevenlabs_api_key", "")
	v.SetDefault("tts.voice_id", "JBFqnCBsd6RMkjVDRZzb")
	v.SetDefault("tts.model_id", "eleven_multilingual_v2")
	v.SetDefault("tts.base_url", "https://api.elevenlabs.io")
	v.SetDefault("tts.timeout_seconds", 8)
	v.SetDefault("tts.max_text_length", 100)

	v.SetDefault("image.provider", "huggingface")
	v.SetDefault("image.huggingface_api_key", "")
	v.SetDefault("image.huggingface_model", "runwayml/stable-diffusion-v1-5")
	v.SetDefault("image.huggingface_base_url", "https://router.huggingface.co")
	v.SetDefault("image.gemini_api_key", "")
	v.SetDefault("image.gemini_model", "imagen-3.0-generate-002")
	v.SetDefault("image.timeout_seconds", 30)
	v.SetDefault("image.max_word_length", 50)

	v.SetDefault("github.token", "")
	v.SetDefault("github.owner", "")
	v.SetDefault("github.repo", "")
	v.SetDefault("github.branch", "main")
	v.SetDefault("github.image_dir", "docs/images")
	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("github.auto_publish", false)
	v.SetDefault("github.sweep_interval_minutes", 30)

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
}
