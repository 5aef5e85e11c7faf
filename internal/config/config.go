// ABOUTME: Configuration loading and parsing for chatrelay
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// defaultConfig is used when no config file exists. Every secret comes from
// the process environment.
//
//go:embed default.yaml
var defaultConfig string

// Default values applied after decoding.
const (
	DefaultHTTPAddr          = ":3001"
	DefaultPollInterval      = time.Second
	DefaultMaxPollAttempts   = 120
	DefaultNotifyTimeout     = 30 * time.Second
	DefaultNotifyDedupeTTL   = 24 * time.Hour
	DefaultHistoryMaxEntries = 1000
	DefaultViewerRealm       = "Logs Access"
	DefaultMailSubject       = "Nouveau prospect"
	DefaultMailPort          = 587
)

// Config represents the complete chatrelay configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
	Assistant AssistantConfig `yaml:"assistant" toml:"assistant"`
	Mail      MailConfig      `yaml:"mail" toml:"mail"`
	Matrix    MatrixConfig    `yaml:"matrix" toml:"matrix"`
	Notify    NotifyConfig    `yaml:"notify" toml:"notify"`
	Leads     LeadsConfig     `yaml:"leads" toml:"leads"`
	Viewer    ViewerConfig    `yaml:"viewer" toml:"viewer"`
	History   HistoryConfig   `yaml:"history" toml:"history"`
	CORS      CORSConfig      `yaml:"cors" toml:"cors"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// ServerConfig holds the HTTP listener address
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
	HTTPS     bool   `yaml:"https" toml:"https"`
	Funnel    bool   `yaml:"funnel" toml:"funnel"` // public HTTPS via Funnel
}

// AssistantConfig holds the assistant-execution service settings
type AssistantConfig struct {
	APIKey          string        `yaml:"api_key" toml:"api_key"`
	AssistantID     string        `yaml:"assistant_id" toml:"assistant_id"`
	BaseURL         string        `yaml:"base_url" toml:"base_url"`
	MaxPollAttempts int           `yaml:"max_poll_attempts" toml:"max_poll_attempts"`
	PollInterval    time.Duration `yaml:"-" toml:"-"`

	PollIntervalRaw string `yaml:"poll_interval" toml:"poll_interval"`
}

// MailConfig holds SMTP transport settings for lead notifications
type MailConfig struct {
	Host      string `yaml:"host" toml:"host"`
	Port      int    `yaml:"port" toml:"port"`
	Username  string `yaml:"username" toml:"username"`
	Password  string `yaml:"password" toml:"password"`
	From      string `yaml:"from" toml:"from"`
	To        string `yaml:"to" toml:"to"`
	Subject   string `yaml:"subject" toml:"subject"`
	TLSPolicy string `yaml:"tls_policy" toml:"tls_policy"` // opportunistic, mandatory, none
}

// Enabled reports whether an SMTP host is configured.
func (m MailConfig) Enabled() bool {
	return m.Host != ""
}

// MatrixConfig holds the optional Matrix notification channel
type MatrixConfig struct {
	Enabled     bool   `yaml:"enabled" toml:"enabled"`
	Homeserver  string `yaml:"homeserver" toml:"homeserver"`
	UserID      string `yaml:"user_id" toml:"user_id"`
	AccessToken string `yaml:"access_token" toml:"access_token"`
	RoomID      string `yaml:"room_id" toml:"room_id"`
}

// NotifyConfig holds delivery settings shared by all notification channels
type NotifyConfig struct {
	Timeout   time.Duration `yaml:"-" toml:"-"`
	DedupeTTL time.Duration `yaml:"-" toml:"-"`

	TimeoutRaw   string `yaml:"timeout" toml:"timeout"`
	DedupeTTLRaw string `yaml:"dedupe_ttl" toml:"dedupe_ttl"`
}

// LeadsConfig overrides the lead keyword markers
type LeadsConfig struct {
	Markers []string `yaml:"markers" toml:"markers"`
}

// ViewerConfig holds the transcript viewer credential pair
type ViewerConfig struct {
	Username     string `yaml:"username" toml:"username"`
	Password     string `yaml:"password" toml:"password"`
	PasswordHash string `yaml:"password_hash" toml:"password_hash"` // bcrypt, takes precedence over password
	Realm        string `yaml:"realm" toml:"realm"`
	Title        string `yaml:"title" toml:"title"`
}

// Enabled reports whether a credential pair is configured.
func (v ViewerConfig) Enabled() bool {
	return v.Username != "" && (v.Password != "" || v.PasswordHash != "")
}

// HistoryConfig selects the conversation log backend
type HistoryConfig struct {
	Backend    string `yaml:"backend" toml:"backend"` // memory or sqlite
	Path       string `yaml:"path" toml:"path"`
	MaxEntries int    `yaml:"max_entries" toml:"max_entries"`
}

// CORSConfig holds allowed origins for browser clients
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded before decoding.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}
	return Parse(string(data), format)
}

// LoadOrDefault loads path when it exists, otherwise the embedded default
// configuration driven entirely by environment variables.
func LoadOrDefault(path string) (*Config, bool, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			cfg, err := Load(path)
			return cfg, true, err
		}
	}
	cfg, err := Parse(defaultConfig, "yaml")
	return cfg, false, err
}

// Parse decodes raw configuration text in the given format ("yaml" or "toml").
func Parse(raw, format string) (*Config, error) {
	expanded := expandEnvVars(raw)

	var cfg Config
	switch format {
	case "toml":
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills zero values. An http_addr of ":" comes from an unset PORT.
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" || c.Server.HTTPAddr == ":" {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Assistant.PollInterval == 0 {
		c.Assistant.PollInterval = DefaultPollInterval
	}
	if c.Assistant.MaxPollAttempts == 0 {
		c.Assistant.MaxPollAttempts = DefaultMaxPollAttempts
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = DefaultMailPort
	}
	if c.Mail.Subject == "" {
		c.Mail.Subject = DefaultMailSubject
	}
	if c.Mail.TLSPolicy == "" {
		c.Mail.TLSPolicy = "opportunistic"
	}
	if c.Notify.Timeout == 0 {
		c.Notify.Timeout = DefaultNotifyTimeout
	}
	if c.Notify.DedupeTTLRaw == "" {
		c.Notify.DedupeTTL = DefaultNotifyDedupeTTL
	}
	if c.Viewer.Realm == "" {
		c.Viewer.Realm = DefaultViewerRealm
	}
	if c.Viewer.Title == "" {
		c.Viewer.Title = "Conversations"
	}
	if c.History.Backend == "" {
		c.History.Backend = "memory"
	}
	if c.History.MaxEntries == 0 {
		c.History.MaxEntries = DefaultHistoryMaxEntries
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Assistant.APIKey == "" {
		return fmt.Errorf("assistant.api_key is required")
	}
	if c.Assistant.AssistantID == "" {
		return fmt.Errorf("assistant.assistant_id is required")
	}
	if c.Assistant.MaxPollAttempts < 0 {
		return fmt.Errorf("assistant.max_poll_attempts must not be negative")
	}
	if c.Assistant.PollInterval < 0 {
		return fmt.Errorf("assistant.poll_interval must not be negative")
	}

	if c.Mail.Enabled() {
		if c.Mail.From == "" || c.Mail.To == "" {
			return fmt.Errorf("mail.from and mail.to are required when mail.host is set")
		}
		switch c.Mail.TLSPolicy {
		case "opportunistic", "mandatory", "none":
		default:
			return fmt.Errorf("mail.tls_policy %q is not one of opportunistic, mandatory, none", c.Mail.TLSPolicy)
		}
	}

	if c.Matrix.Enabled {
		if c.Matrix.Homeserver == "" || c.Matrix.AccessToken == "" || c.Matrix.RoomID == "" {
			return fmt.Errorf("matrix.homeserver, matrix.access_token and matrix.room_id are required when matrix is enabled")
		}
	}

	switch c.History.Backend {
	case "memory":
	case "sqlite":
		if c.History.Path == "" {
			return fmt.Errorf("history.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("history.backend %q is not one of memory, sqlite", c.History.Backend)
	}
	if c.History.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries must not be negative")
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Assistant.PollIntervalRaw != "" {
		cfg.Assistant.PollInterval, err = time.ParseDuration(cfg.Assistant.PollIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing poll_interval %q: %w", cfg.Assistant.PollIntervalRaw, err)
		}
	}

	if cfg.Notify.TimeoutRaw != "" {
		cfg.Notify.Timeout, err = time.ParseDuration(cfg.Notify.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing notify timeout %q: %w", cfg.Notify.TimeoutRaw, err)
		}
	}

	if cfg.Notify.DedupeTTLRaw != "" {
		cfg.Notify.DedupeTTL, err = time.ParseDuration(cfg.Notify.DedupeTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing dedupe_ttl %q: %w", cfg.Notify.DedupeTTLRaw, err)
		}
	}

	return nil
}
