package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL       = "https://app.asana.com/api/1.0"
	DefaultSectionLabel = "critical milestone"
	DefaultLaunchLabel  = "Launch"
	DefaultCommentLimit = 3
	DefaultFetchWorkers = 10
	DefaultPageLimit    = 100
	DefaultListenAddr   = ":8080"
	DefaultLogLevel     = "info"

	// LaunchMatchExact matches the launch task by case-insensitive
	// equality; LaunchMatchSubstring by case-insensitive containment.
	LaunchMatchExact     = "exact"
	LaunchMatchSubstring = "substring"

	configDirEnvKey = "PULSE_CONFIG_DIR"
	tokenEnvKey     = "PULSE_TRACKER_TOKEN"

	configFileName = ".pulse.toml"
)

// Config defines runtime configuration for pulse.
type Config struct {
	APIURL        string   `toml:"api_url"`
	WorkspaceGID  string   `toml:"workspace_gid"`
	PortfolioGID  string   `toml:"portfolio_gid"`
	SectionLabel  string   `toml:"section_label"`
	LaunchLabel   string   `toml:"launch_label"`
	LaunchMatch   string   `toml:"launch_match"`
	DraftPatterns []string `toml:"draft_patterns"`
	CommentLimit  int      `toml:"comment_limit"`
	FetchWorkers  int      `toml:"fetch_workers"`
	PageLimit     int      `toml:"page_limit"`
	WebhookURL    string   `toml:"webhook_url"`
	ListenAddr    string   `toml:"listen_addr"`
	RosterPath    string   `toml:"roster_path"`
	LogLevel      string   `toml:"log_level"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:        DefaultAPIURL,
		SectionLabel:  DefaultSectionLabel,
		LaunchLabel:   DefaultLaunchLabel,
		LaunchMatch:   LaunchMatchExact,
		DraftPatterns: []string{"draft", "template"},
		CommentLimit:  DefaultCommentLimit,
		FetchWorkers:  DefaultFetchWorkers,
		PageLimit:     DefaultPageLimit,
		ListenAddr:    DefaultListenAddr,
		LogLevel:      DefaultLogLevel,
	}
}

// Load reads config from the global file and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := GlobalPath()
	if err == nil {
		if _, err := loadFileIfExists(path, &cfg); err != nil {
			return nil, err
		}
	}

	if apiURL := os.Getenv("PULSE_API_URL"); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if ws := os.Getenv("PULSE_WORKSPACE_GID"); ws != "" {
		cfg.WorkspaceGID = ws
	}
	if portfolio := os.Getenv("PULSE_PORTFOLIO_GID"); portfolio != "" {
		cfg.PortfolioGID = portfolio
	}
	if webhook := os.Getenv("PULSE_WEBHOOK_URL"); webhook != "" {
		cfg.WebhookURL = webhook
	}

	cfg.normalizeDefaults()

	return &cfg, nil
}

// ValidateReport checks the settings the digest pipeline needs before
// any network call is made.
func (c *Config) ValidateReport() error {
	if strings.TrimSpace(os.Getenv(tokenEnvKey)) == "" {
		return fmt.Errorf("%s is required", tokenEnvKey)
	}
	if c.WorkspaceGID == "" && c.PortfolioGID == "" {
		return fmt.Errorf("workspace_gid or portfolio_gid is required")
	}
	if c.LaunchMatch != LaunchMatchExact && c.LaunchMatch != LaunchMatchSubstring {
		return fmt.Errorf("launch_match must be %q or %q", LaunchMatchExact, LaunchMatchSubstring)
	}
	if c.SectionLabel == "" {
		return fmt.Errorf("section_label is required")
	}
	if c.CommentLimit <= 0 {
		return fmt.Errorf("comment_limit must be a positive integer")
	}
	if c.FetchWorkers <= 0 {
		return fmt.Errorf("fetch_workers must be a positive integer")
	}
	return nil
}

// ValidateListen checks the settings the inbound listener needs.
func (c *Config) ValidateListen() error {
	if strings.TrimSpace(os.Getenv(tokenEnvKey)) == "" {
		return fmt.Errorf("%s is required", tokenEnvKey)
	}
	if c.RosterPath == "" {
		return fmt.Errorf("roster_path is required")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	return nil
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

var allowedKeys = []string{
	"api_url",
	"workspace_gid",
	"portfolio_gid",
	"section_label",
	"launch_label",
	"launch_match",
	"draft_patterns",
	"comment_limit",
	"fetch_workers",
	"page_limit",
	"webhook_url",
	"listen_addr",
	"roster_path",
	"log_level",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "workspace_gid":
		return c.WorkspaceGID, nil
	case "portfolio_gid":
		return c.PortfolioGID, nil
	case "section_label":
		return c.SectionLabel, nil
	case "launch_label":
		return c.LaunchLabel, nil
	case "launch_match":
		return c.LaunchMatch, nil
	case "draft_patterns":
		return strings.Join(c.DraftPatterns, ","), nil
	case "comment_limit":
		return strconv.Itoa(c.CommentLimit), nil
	case "fetch_workers":
		return strconv.Itoa(c.FetchWorkers), nil
	case "page_limit":
		return strconv.Itoa(c.PageLimit), nil
	case "webhook_url":
		return c.WebhookURL, nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "roster_path":
		return c.RosterPath, nil
	case "log_level":
		return c.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	data[key] = parsedValue

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "comment_limit", "fetch_workers", "page_limit":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "launch_match":
		if value != LaunchMatchExact && value != LaunchMatchSubstring {
			return nil, fmt.Errorf("launch_match must be %q or %q", LaunchMatchExact, LaunchMatchSubstring)
		}
		return value, nil
	case "draft_patterns":
		return splitCSV(value), nil
	default:
		return value, nil
	}
}

func splitCSV(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (c *Config) normalizeDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.SectionLabel == "" {
		c.SectionLabel = DefaultSectionLabel
	}
	if c.LaunchLabel == "" {
		c.LaunchLabel = DefaultLaunchLabel
	}
	if c.LaunchMatch == "" {
		c.LaunchMatch = LaunchMatchExact
	}
	if c.CommentLimit <= 0 {
		c.CommentLimit = DefaultCommentLimit
	}
	if c.FetchWorkers <= 0 {
		c.FetchWorkers = DefaultFetchWorkers
	}
	if c.PageLimit <= 0 {
		c.PageLimit = DefaultPageLimit
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
}
