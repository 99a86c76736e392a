package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultAppVersion          = "1.0.0"
	DefaultModel               = "gpt-4o-mini"
	DefaultTemperature         = 0.2
	DefaultTimeoutSeconds      = 20.0
	DefaultMaxRetries          = 1
	DefaultServerAddr          = ":8000"
	DefaultGinMode             = "release"
	DefaultLogLevel            = "info"
	DefaultHealthCheckInterval = 15 * time.Second
)

// ConfigurationError reports settings that keep the service from becoming ready.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Key, e.Reason)
}

// ErrMissingAPIKey is returned when online mode is selected without a credential.
var ErrMissingAPIKey = &ConfigurationError{
	Key:    "OPENAI_API_KEY",
	Reason: "not set; add it to the env file or the environment, or enable OPENAI_OFFLINE_MODE",
}

// Settings is read once at process start and passed explicitly to the
// components that need it.
type Settings struct {
	AppVersion string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string
	Temperature   float64
	Timeout       time.Duration

	// MaxRetries is the number of repair attempts after a parse or schema
	// failure. Upstream failures never consume it.
	MaxRetries  int
	OfflineMode bool

	LexicalSignals bool

	ServerAddr          string
	GinMode             string
	LogLevel            string
	HealthCheckInterval time.Duration
}

// Load reads Settings from the environment. Unparsable values are errors.
func Load() (Settings, error) {
	s := Settings{
		AppVersion:    getEnv("APP_VERSION", DefaultAppVersion),
		OpenAIAPIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		Model:         strings.TrimSpace(getEnv("OPENAI_MODEL", DefaultModel)),
		ServerAddr:    getEnv("SERVER_ADDR", DefaultServerAddr),
		GinMode:       getEnv("GIN_MODE", DefaultGinMode),
		LogLevel:      getEnv("LOG_LEVEL", DefaultLogLevel),
	}

	var errs []error
	var err error

	if s.Temperature, err = getFloat("OPENAI_TEMPERATURE", DefaultTemperature); err != nil {
		errs = append(errs, err)
	}
	timeoutSeconds, err := getFloat("OPENAI_TIMEOUT_SECONDS", DefaultTimeoutSeconds)
	if err != nil {
		errs = append(errs, err)
	}
	s.Timeout = time.Duration(timeoutSeconds * float64(time.Second))
	if s.MaxRetries, err = getInt("MAX_RETRIES", DefaultMaxRetries); err != nil {
		errs = append(errs, err)
	}
	if s.OfflineMode, err = getBool("OPENAI_OFFLINE_MODE", false); err != nil {
		errs = append(errs, err)
	}
	if s.LexicalSignals, err = getBool("JUDGE_LEXICAL_SIGNALS", false); err != nil {
		errs = append(errs, err)
	}
	intervalSeconds, err := getInt("HEALTHCHECK_INTERVAL_SECONDS", int(DefaultHealthCheckInterval/time.Second))
	if err != nil {
		errs = append(errs, err)
	}
	s.HealthCheckInterval = time.Duration(intervalSeconds) * time.Second

	if len(errs) > 0 {
		return Settings{}, errors.Join(errs...)
	}
	return s, nil
}

// RequireAPIKey only enforces the credential when a network call is intended.
func (s Settings) RequireAPIKey() error {
	if !s.OfflineMode && s.OpenAIAPIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ConfigurationError{Key: key, Reason: fmt.Sprintf("invalid number %q", raw)}
	}
	return v, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ConfigurationError{Key: key, Reason: fmt.Sprintf("invalid integer %q", raw)}
	}
	return v, nil
}

// getBool accepts only true/false (any case); anything else is an error.
func getBool(key string, defaultValue bool) (bool, error) {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch raw {
	case "":
		return defaultValue, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, &ConfigurationError{Key: key, Reason: fmt.Sprintf("invalid boolean %q", raw)}
	}
}
