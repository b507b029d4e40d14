package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server settings
	ServerPort   string        `json:"server_port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Debug        bool          `json:"debug"`

	// Application paths
	LogDir   string `json:"log_dir"`
	AudioDir string `json:"audio_dir"`

	// Rate Limiting (HTTP)
	RateLimit RateLimitConfig `json:"rate_limit"`

	// Database settings
	Database DatabaseConfig `json:"database"`

	// Pipeline settings
	Pipeline PipelineConfig `json:"pipeline"`

	// Distribution settings
	Distribution DistributionConfig `json:"distribution"`

	// External providers
	OpenAI   OpenAIConfig   `json:"openai"`
	Telegram TelegramConfig `json:"telegram"`
	Scripts  ScriptsConfig  `json:"scripts"`

	// Application version
	Version string `json:"version"`

	// Request and shutdown timeouts
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path               string        `json:"path"`
	MaxConnections     int           `json:"max_connections"`
	MaxIdleConnections int           `json:"max_idle_connections"`
	ConnMaxLifetime    time.Duration `json:"conn_max_lifetime"`
}

type PipelineConfig struct {
	// MaxDuration is the duration-guard threshold; videos longer than this
	// are skipped before any stage runs.
	MaxDuration    time.Duration `json:"max_duration"`
	ProcessTimeout time.Duration `json:"process_timeout"`
	WhisperModel   string        `json:"whisper_model"`
}

type DistributionConfig struct {
	// SendDelay is the minimum pause between successive recipient sends.
	SendDelay   time.Duration `json:"send_delay"`
	SendTimeout time.Duration `json:"send_timeout"`
}

type OpenAIConfig struct {
	APIKey string `json:"-"`
	Model  string `json:"model"`
}

type TelegramConfig struct {
	BotToken string `json:"-"`
	APIBase  string `json:"api_base"`
}

type ScriptsConfig struct {
	PythonPath  string `json:"python_path"`
	ScriptsPath string `json:"scripts_path"`
}

type RateLimitConfig struct {
	Enabled           bool `json:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute"`
	BurstSize         int  `json:"burst_size"`
}

// Load reads configuration from environment variables. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		Debug:        getEnvAsBool("DEBUG", false),

		LogDir:   getEnv("LOG_DIR", "/var/log/tubebrief"),
		AudioDir: getEnv("AUDIO_DIR", "/tmp/tubebrief/audio"),

		Version: getEnv("VERSION", "1.0.0"),

		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 60),
			BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 10),
		},

		Database: DatabaseConfig{
			Path:               getEnv("DB_PATH", "/var/lib/tubebrief/data.db"),
			MaxConnections:     getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},

		Pipeline: PipelineConfig{
			MaxDuration:    getEnvAsDuration("VIDEO_MAX_DURATION", time.Hour),
			ProcessTimeout: getEnvAsDuration("VIDEO_PROCESS_TIMEOUT", 30*time.Minute),
			WhisperModel:   getEnv("WHISPER_MODEL", "base.en"),
		},

		Distribution: DistributionConfig{
			SendDelay:   getEnvAsDuration("SEND_DELAY", 100*time.Millisecond),
			SendTimeout: getEnvAsDuration("SEND_TIMEOUT", 30*time.Second),
		},

		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},

		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			APIBase:  getEnv("TELEGRAM_API_BASE", "https://api.telegram.org"),
		},

		Scripts: ScriptsConfig{
			PythonPath:  getEnv("PYTHON_PATH", "python3"),
			ScriptsPath: getEnv("SCRIPTS_PATH", "./scripts/py"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validatePaths(c); err != nil {
		return err
	}
	if err := validateTimeouts(c); err != nil {
		return err
	}
	if err := validateServices(c); err != nil {
		return err
	}
	return nil
}

func validatePaths(c *Config) error {
	paths := []struct {
		path string
		name string
	}{
		{c.LogDir, "log directory"},
		{c.AudioDir, "audio directory"},
		{filepath.Dir(c.Database.Path), "database directory"},
	}

	for _, p := range paths {
		if err := os.MkdirAll(p.path, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", p.name, err)
		}
	}

	return nil
}

func validateTimeouts(c *Config) error {
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	return nil
}

func validateServices(c *Config) error {
	if c.Pipeline.MaxDuration <= 0 {
		return fmt.Errorf("max video duration must be positive")
	}
	if c.Distribution.SendDelay < 0 {
		return fmt.Errorf("send delay must not be negative")
	}
	return nil
}

// Helper functions for reading environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		if value = strings.TrimSpace(value); value != "" {
			return strings.Split(value, ",")
		}
	}
	return defaultValue
}
