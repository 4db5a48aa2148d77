package config

import (
	"fmt"
	"os"
	"time"

	"file-utils-server/internal/hashing"

	"gopkg.in/yaml.v3"
)

// Config holds all configurable values for the server.
type Config struct {
	// WorkingDirectory confines every path the server touches.
	WorkingDirectory string `yaml:"working_directory"`

	// Transport is http or stdio.
	Transport string `yaml:"transport"`

	// Port for the HTTP transport.
	Port int `yaml:"port"`

	// MaxNameAttempts caps existence probes per name resolution (0 = unbounded).
	MaxNameAttempts int `yaml:"max_name_attempts"`

	// DetectCycles turns on symlink cycle detection for recursive listings.
	DetectCycles bool `yaml:"detect_cycles"`

	// DefaultHashAlgorithm is used when a request names none.
	DefaultHashAlgorithm string `yaml:"default_hash_algorithm"`

	// LockDir holds directory lock files. Empty selects a directory under the system temp dir.
	LockDir string `yaml:"lock_dir"`

	// LockTimeout bounds how long a directory lock is waited for.
	LockTimeout time.Duration `yaml:"lock_timeout"`

	// OperationTimeout bounds a single request.
	OperationTimeout time.Duration `yaml:"operation_timeout"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// DefaultConfig returns a Config with the server defaults.
func DefaultConfig() *Config {
	return &Config{
		Transport:            "http",
		Port:                 8080,
		MaxNameAttempts:      10000,
		DetectCycles:         false,
		DefaultHashAlgorithm: string(hashing.Default),
		LockTimeout:          5 * time.Second,
		OperationTimeout:     30 * time.Second,
		LogLevel:             "info",
		LogFormat:            "json",
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. A missing file yields the
// defaults; a malformed one is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations are strings in the file ("5s", "1m").
	type yamlConfig struct {
		WorkingDirectory     string `yaml:"working_directory"`
		Transport            string `yaml:"transport"`
		Port                 *int   `yaml:"port"`
		MaxNameAttempts      *int   `yaml:"max_name_attempts"`
		DetectCycles         *bool  `yaml:"detect_cycles"`
		DefaultHashAlgorithm string `yaml:"default_hash_algorithm"`
		LockDir              string `yaml:"lock_dir"`
		LockTimeout          string `yaml:"lock_timeout"`
		OperationTimeout     string `yaml:"operation_timeout"`
		LogLevel             string `yaml:"log_level"`
		LogFormat            string `yaml:"log_format"`
	}

	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if y.WorkingDirectory != "" {
		cfg.WorkingDirectory = y.WorkingDirectory
	}
	if y.Transport != "" {
		cfg.Transport = y.Transport
	}
	if y.Port != nil {
		cfg.Port = *y.Port
	}
	if y.MaxNameAttempts != nil {
		cfg.MaxNameAttempts = *y.MaxNameAttempts
	}
	if y.DetectCycles != nil {
		cfg.DetectCycles = *y.DetectCycles
	}
	if y.DefaultHashAlgorithm != "" {
		cfg.DefaultHashAlgorithm = y.DefaultHashAlgorithm
	}
	if y.LockDir != "" {
		cfg.LockDir = y.LockDir
	}
	if y.LockTimeout != "" {
		d, err := time.ParseDuration(y.LockTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid lock_timeout %q: %w", y.LockTimeout, err)
		}
		cfg.LockTimeout = d
	}
	if y.OperationTimeout != "" {
		d, err := time.ParseDuration(y.OperationTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid operation_timeout %q: %w", y.OperationTimeout, err)
		}
		cfg.OperationTimeout = d
	}
	if y.LogLevel != "" {
		cfg.LogLevel = y.LogLevel
	}
	if y.LogFormat != "" {
		cfg.LogFormat = y.LogFormat
	}
	return cfg, nil
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if c.WorkingDirectory == "" {
		return fmt.Errorf("working directory is required")
	}
	info, err := os.Stat(c.WorkingDirectory)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("working directory does not exist: %s", c.WorkingDirectory)
		}
		return fmt.Errorf("error accessing working directory: %v", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("working directory is not a directory: %s", c.WorkingDirectory)
	}

	if c.Transport != "http" && c.Transport != "stdio" {
		return fmt.Errorf("transport must be 'http' or 'stdio'")
	}
	if c.Transport == "http" && (c.Port < 1024 || c.Port > 65535) {
		return fmt.Errorf("port must be between 1024 and 65535")
	}
	if c.MaxNameAttempts < 0 {
		return fmt.Errorf("max name attempts must be >= 0, got %d", c.MaxNameAttempts)
	}
	if _, err := hashing.ParseAlgorithm(c.DefaultHashAlgorithm); err != nil {
		return fmt.Errorf("default hash algorithm: %w", err)
	}
	if c.LockTimeout < 10*time.Millisecond || c.LockTimeout > 5*time.Minute {
		return fmt.Errorf("lock timeout must be between 10ms and 5m")
	}
	if c.OperationTimeout < time.Second || c.OperationTimeout > 300*time.Second {
		return fmt.Errorf("operation timeout must be between 1 and 300 seconds")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console'")
	}
	return nil
}
