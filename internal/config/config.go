package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	MCP         MCPConfig     `toml:"mcp"`
	SAP         SAPConfig     `toml:"sap"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// MCPConfig contains tool transport settings. StrictPayload switches the
// dispatcher from ignoring unknown payload fields to rejecting them.
type MCPConfig struct {
	BasePath      string `toml:"base_path"`
	StrictPayload bool   `toml:"strict_payload"`
}

// SAPConfig contains SAP sandbox API settings. The API key may also be
// supplied via the SAP_API_KEY environment variable, which takes priority.
type SAPConfig struct {
	BaseURL  string `toml:"base_url"`
	APIKey   string `toml:"api_key"`
	Timeout  string `toml:"timeout"`
	CacheTTL string `toml:"cache_ttl"`
}

// GetTimeout parses and returns the request timeout duration.
func (c *SAPConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetCacheTTL parses the response cache TTL. Zero disables caching.
func (c *SAPConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)
	normalize(config)

	return config, nil
}

// applyEnvOverrides applies PROCURA_* environment variable overrides.
// PORT is also honored for platform deployments that inject it.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PROCURA_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("PROCURA_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	} else if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("PROCURA_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if base := os.Getenv("PROCURA_MCP_BASE_PATH"); base != "" {
		config.MCP.BasePath = base
	}
	if url := os.Getenv("PROCURA_SAP_BASE_URL"); url != "" {
		config.SAP.BaseURL = url
	}
	if level := os.Getenv("PROCURA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("PROCURA_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
}

// normalize cleans up values that are easy to get slightly wrong in config
// files: the base path always starts with "/" and carries no trailing "/".
func normalize(config *Config) {
	base := strings.TrimSpace(config.MCP.BasePath)
	if base != "" && !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	config.MCP.BasePath = strings.TrimRight(base, "/")
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks mandatory configuration and returns human-readable issues.
func (c *Config) Validate() []string {
	var issues []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
	}
	if c.MCP.BasePath == "" {
		issues = append(issues, "mcp.base_path must not be empty")
	}
	if c.SAP.BaseURL == "" {
		issues = append(issues, "sap.base_url must not be empty")
	}

	return issues
}

// IsDevMode returns true when the environment is set to dev.
func (c *Config) IsDevMode() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "dev"
}
