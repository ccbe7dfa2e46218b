// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Metadata MetadataConfig
	Server   ServerConfig
	Auth     AuthConfig
	Limits   LimitsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// MetadataConfig holds the on-disk locations used by the server.
type MetadataConfig struct {
	// BasePath holds the database, the session key and the search index.
	BasePath string
}

// DatabasePath returns the sqlite database file location.
func (m MetadataConfig) DatabasePath() string {
	return filepath.Join(m.BasePath, "larder.db")
}

// SearchIndexPath returns the bleve index directory.
func (m MetadataConfig) SearchIndexPath() string {
	return filepath.Join(m.BasePath, "search")
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Name           string
	Port           string        // Server port (default: 8080)
	ReadTimeout    time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout   time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout    time.Duration // HTTP idle timeout (default: 60s)
	AllowedOrigins []string      // CORS origins (default: none)
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for session cookies (32 bytes)
	SessionKey []byte
	// SessionDuration is how long a session cookie stays valid.
	SessionDuration time.Duration
	// SecureCookies marks the session cookie Secure (HTTPS only).
	SecureCookies bool
	// LoginRate is the allowed login/register attempts per second per client.
	LoginRate float64
	// LoginBurst is the burst size for LoginRate.
	LoginBurst int
}

// LimitsConfig holds content limits enforced by the services.
type LimitsConfig struct {
	PageSize          int
	ReviewPageSize    int
	MaxImageSize      int64
	AllowedImageTypes []string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	metadataPath := flag.String("metadata-path", "", "Base path for database, keys and index")
	serverName := flag.String("server-name", "", "Name for the server")

	sessionDuration := flag.String("session-duration", "", "Session lifetime (e.g., 168h)")
	secureCookies := flag.String("secure-cookies", "", "Mark session cookies Secure (default: false)")

	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := flag.String("allowed-origins", "", "Comma separated CORS origins")

	pageSize := flag.String("page-size", "", "Recipes per listing page (default: 20)")
	maxImageSize := flag.String("max-image-size", "", "Maximum image upload in bytes (default: 2097152)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Metadata: MetadataConfig{
			BasePath: getConfigValue(*metadataPath, "METADATA_PATH", ""),
		},
		Server: ServerConfig{
			Name:           getConfigValue(*serverName, "SERVER_NAME", "Larder"),
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", "")),
		},
		Auth: AuthConfig{
			SessionKey:    nil, // Will be set by auth.LoadOrGenerateKey in the providers
			SecureCookies: getBoolConfigValue(*secureCookies, "SECURE_COOKIES", false),
			LoginRate:     0.2,
			LoginBurst:    getIntConfigValue("", "LOGIN_BURST", 10),
		},
		Limits: LimitsConfig{
			PageSize:          getIntConfigValue(*pageSize, "PAGE_SIZE", 20),
			ReviewPageSize:    getIntConfigValue("", "REVIEW_PAGE_SIZE", 10),
			MaxImageSize:      int64(getIntConfigValue(*maxImageSize, "MAX_IMAGE_SIZE", 2*1024*1024)),
			AllowedImageTypes: splitList(getConfigValue("", "ALLOWED_IMAGE_TYPES", "png,jpg,jpeg,gif,webp")),
		},
	}

	sessionDurationStr := getConfigValue(*sessionDuration, "SESSION_DURATION", "168h")
	d, err := time.ParseDuration(sessionDurationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid session duration %q: %w", sessionDurationStr, err)
	}
	cfg.Auth.SessionDuration = d

	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}

	if err := cfg.expandMetadataPath(); err != nil {
		return nil, fmt.Errorf("invalid metadata path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Metadata.BasePath == "" {
		return errors.New("metadata base path cannot be empty after expansion")
	}

	if c.Limits.PageSize < 1 || c.Limits.ReviewPageSize < 1 {
		return fmt.Errorf("page sizes must be positive (got %d and %d)", c.Limits.PageSize, c.Limits.ReviewPageSize)
	}

	if c.Limits.MaxImageSize <= 0 {
		return fmt.Errorf("max image size must be positive (got %d)", c.Limits.MaxImageSize)
	}

	if len(c.Limits.AllowedImageTypes) == 0 {
		return errors.New("at least one image type must be allowed")
	}

	return nil
}

// Defaults returns a configuration with every limit at its default value.
// Useful for tests and tools that do not parse flags.
func Defaults(basePath string) *Config {
	return &Config{
		App:      AppConfig{Environment: "development"},
		Logger:   LoggerConfig{Level: "info"},
		Metadata: MetadataConfig{BasePath: basePath},
		Server: ServerConfig{
			Name:         "Larder",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Auth: AuthConfig{
			SessionDuration: 168 * time.Hour,
			LoginRate:       0.2,
			LoginBurst:      10,
		},
		Limits: LimitsConfig{
			PageSize:          20,
			ReviewPageSize:    10,
			MaxImageSize:      2 * 1024 * 1024,
			AllowedImageTypes: []string{"png", "jpg", "jpeg", "gif", "webp"},
		},
	}
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandMetadataPath expands ~ and makes the path absolute.
func (c *Config) expandMetadataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Larder", "data")

	expanded, err := expandPath(c.Metadata.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Metadata.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	s := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, err)
	}
	return d, nil
}

// splitList splits a comma separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
