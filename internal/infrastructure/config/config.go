package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for FacilityMap Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Map      MapConfig      `yaml:"map"`
	Backend  BackendConfig  `yaml:"backend"`
	Socket   SocketConfig   `yaml:"socket"`
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MapConfig contains map-provider settings.
//
// SubscriptionKey is the map-provider subscription key. It has no default
// and no sane fallback: rendering is impossible without it, so Load fails
// when it is absent.
type MapConfig struct {
	SubscriptionKey string `yaml:"subscription_key"`
	Geography       string `yaml:"geography"`
	DefaultStyle    string `yaml:"default_style"`
	InitialPath     string `yaml:"initial_path"`
}

// BackendConfig contains the REST backend base URL and per-endpoint paths.
//
// Endpoint values starting with "/" are resolved against BaseURL; anything
// else is treated as a full URL with scheme and host. Rooms, sidebar and
// warnings endpoints carry a "{locationPath}" placeholder that is replaced
// with the location id at request time.
type BackendConfig struct {
	BaseURL   string          `yaml:"base_url"`
	Endpoints EndpointsConfig `yaml:"endpoints"`
	Timeout   int             `yaml:"timeout"`
}

// EndpointsConfig contains the per-endpoint path overrides.
type EndpointsConfig struct {
	Sitemap        string `yaml:"sitemap"`
	Assets         string `yaml:"assets"`
	AssetTypes     string `yaml:"asset_types"`
	AssetTypeProps string `yaml:"asset_type_props"`
	AssetIcons     string `yaml:"asset_icons"`
	Rooms          string `yaml:"rooms"`
	Sidebar        string `yaml:"sidebar"`
	Warnings       string `yaml:"warnings"`
	User           string `yaml:"user"`
	UserRights     string `yaml:"user_rights"`
	DeskBooking    string `yaml:"desk_booking"`
}

// SocketConfig contains the live-update socket settings.
type SocketConfig struct {
	URL            string `yaml:"url"`
	ReconnectDelay int    `yaml:"reconnect_delay"`
	MaxMessageSize int    `yaml:"max_message_size"`
}

// DatabaseConfig contains SQLite settings for the favorites store.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// APIConfig contains the read-only state API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: FACILITYMAP_SECTION_KEY
// For example: FACILITYMAP_BACKEND_BASE_URL, FACILITYMAP_MAP_SUBSCRIPTION_KEY
//
// Parameters:
//   - path: Path to the YAML configuration file; an empty path skips the
//     file and uses defaults plus environment overrides only
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
// Endpoint defaults mirror the backend's stock deployment layout.
func defaultConfig() *Config {
	return &Config{
		Map: MapConfig{
			Geography:    "eu",
			DefaultStyle: "road",
			InitialPath:  "/",
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:3001",
			Endpoints: EndpointsConfig{
				Sitemap:        "/sitemap",
				Assets:         "/assets",
				AssetTypes:     "/asset_types",
				AssetTypeProps: "/asset_type_props",
				AssetIcons:     "/asset_icons",
				Rooms:          "/roomdata/{locationPath}",
				Sidebar:        "/sidebar/{locationPath}",
				Warnings:       "/faults/{locationPath}",
				User:           "/user",
				UserRights:     "/user_rights",
				DeskBooking:    "/book_desk",
			},
			Timeout: 15,
		},
		Socket: SocketConfig{
			URL:            "ws://localhost:3001/ws/booking",
			ReconnectDelay: 3,
			MaxMessageSize: 65536,
		},
		Database: DatabaseConfig{
			Path:        "data/favorites.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  15,
				Write: 15,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Map provider
	if v := os.Getenv("FACILITYMAP_MAP_SUBSCRIPTION_KEY"); v != "" {
		cfg.Map.SubscriptionKey = v
	}
	if v := os.Getenv("FACILITYMAP_MAP_INITIAL_PATH"); v != "" {
		cfg.Map.InitialPath = v
	}

	// Backend
	if v := os.Getenv("FACILITYMAP_BACKEND_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("FACILITYMAP_SITEMAP_URL"); v != "" {
		cfg.Backend.Endpoints.Sitemap = v
	}
	if v := os.Getenv("FACILITYMAP_ASSET_DATA_URL"); v != "" {
		cfg.Backend.Endpoints.Assets = v
	}
	if v := os.Getenv("FACILITYMAP_ASSET_TYPES_URL"); v != "" {
		cfg.Backend.Endpoints.AssetTypes = v
	}
	if v := os.Getenv("FACILITYMAP_ASSET_TYPE_PROPS_URL"); v != "" {
		cfg.Backend.Endpoints.AssetTypeProps = v
	}
	if v := os.Getenv("FACILITYMAP_ASSET_ICONS_URL"); v != "" {
		cfg.Backend.Endpoints.AssetIcons = v
	}
	if v := os.Getenv("FACILITYMAP_ROOMS_DATA_URL"); v != "" {
		cfg.Backend.Endpoints.Rooms = v
	}
	if v := os.Getenv("FACILITYMAP_SIDEBAR_DATA_URL"); v != "" {
		cfg.Backend.Endpoints.Sidebar = v
	}
	if v := os.Getenv("FACILITYMAP_WARNINGS_DATA_URL"); v != "" {
		cfg.Backend.Endpoints.Warnings = v
	}
	if v := os.Getenv("FACILITYMAP_USER_DATA_URL"); v != "" {
		cfg.Backend.Endpoints.User = v
	}
	if v := os.Getenv("FACILITYMAP_USER_RIGHTS_URL"); v != "" {
		cfg.Backend.Endpoints.UserRights = v
	}
	if v := os.Getenv("FACILITYMAP_DESK_BOOKING_URL"); v != "" {
		cfg.Backend.Endpoints.DeskBooking = v
	}

	// Socket
	if v := os.Getenv("FACILITYMAP_SOCKET_URL"); v != "" {
		cfg.Socket.URL = v
	}

	// Database
	if v := os.Getenv("FACILITYMAP_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// API
	if v := os.Getenv("FACILITYMAP_API_HOST"); v != "" {
		cfg.API.Host = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// The subscription key is the one mandatory setting. Everything else
	// has a documented default.
	if c.Map.SubscriptionKey == "" {
		errs = append(errs, "map.subscription_key is required (set FACILITYMAP_MAP_SUBSCRIPTION_KEY environment variable)")
	}

	if c.Backend.BaseURL == "" {
		errs = append(errs, "backend.base_url is required")
	}

	if c.Socket.URL == "" {
		errs = append(errs, "socket.url is required")
	}
	if c.Socket.ReconnectDelay < 1 {
		errs = append(errs, "socket.reconnect_delay must be at least 1 second")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ResolveEndpoint resolves an endpoint value against the backend base URL.
// Values starting with "/" are prefixed with BaseURL; anything else is
// returned unchanged (treated as a full URL).
func (b BackendConfig) ResolveEndpoint(endpoint string) string {
	if strings.HasPrefix(endpoint, "/") {
		return b.BaseURL + endpoint
	}
	return endpoint
}

// GetTimeout returns the backend HTTP timeout as a Duration.
func (b BackendConfig) GetTimeout() time.Duration {
	return time.Duration(b.Timeout) * time.Second
}

// GetReconnectDelay returns the socket reconnect delay as a Duration.
func (s SocketConfig) GetReconnectDelay() time.Duration {
	return time.Duration(s.ReconnectDelay) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
