package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	apperrors "vkbackup/pkg/errors"
)

const (
	// DefaultSettingsFile holds the [Tokens] section with vk_token and yd_token
	DefaultSettingsFile = "settings.ini"

	// DefaultManifestPath is where accepted uploads are recorded
	DefaultManifestPath = "uploaded_photos.json"

	// DefaultPhotoCount is used when the count prompt is left empty
	DefaultPhotoCount = 5

	tokensSection = "Tokens"
)

// Config holds all configuration options for a backup run
type Config struct {
	// API tokens, normally read from settings.ini
	Tokens TokensConfig `yaml:"tokens" json:"tokens"`

	// VK photo source settings
	VK VKConfig `yaml:"vk" json:"vk"`

	// Yandex.Disk storage settings
	YandexDisk YandexDiskConfig `yaml:"yandex_disk" json:"yandex_disk"`

	// Shared HTTP transport settings
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TokensConfig holds the pre-obtained API credentials
type TokensConfig struct {
	SettingsFile string `yaml:"settings_file" json:"settings_file"`
	VKToken      string `yaml:"vk_token,omitempty" json:"vk_token,omitempty"`
	YDToken      string `yaml:"yd_token,omitempty" json:"yd_token,omitempty"`
}

// VKConfig holds VK API configuration
type VKConfig struct {
	APIURL       string `yaml:"api_url" json:"api_url"`
	APIVersion   string `yaml:"api_version" json:"api_version"`
	TimeZone     string `yaml:"timezone" json:"timezone"`
	DefaultCount int    `yaml:"default_count" json:"default_count"`
}

// YandexDiskConfig holds Yandex.Disk REST API configuration
type YandexDiskConfig struct {
	APIURL       string `yaml:"api_url" json:"api_url"`
	FolderPrefix string `yaml:"folder_prefix" json:"folder_prefix"`
}

// HTTPConfig holds HTTP client configuration
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
}

// OutputConfig holds output file configuration
type OutputConfig struct {
	ManifestPath string `yaml:"manifest_path" json:"manifest_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	File   string `yaml:"file" json:"file"`
	Format string `yaml:"format" json:"format"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Tokens: TokensConfig{
			SettingsFile: DefaultSettingsFile,
		},
		VK: VKConfig{
			APIURL:       "https://api.vk.com/method",
			APIVersion:   "5.131",
			TimeZone:     "Local",
			DefaultCount: DefaultPhotoCount,
		},
		YandexDisk: YandexDiskConfig{
			APIURL:       "https://cloud-api.yandex.net/v1/disk",
			FolderPrefix: "vk_profile_photos_",
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "vkbackup/1.0",
		},
		Output: OutputConfig{
			ManifestPath: DefaultManifestPath,
		},
		Logging: LoggingConfig{
			Level:  "info",
			File:   "",
			Format: "text",
		},
	}
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".vkbackup.yaml",
		".vkbackup.yml",
		filepath.Join(home, ".config", "vkbackup", "config.yaml"),
		filepath.Join(home, ".config", "vkbackup", "config.yml"),
		filepath.Join(home, ".vkbackup.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// LoadSettings reads the [Tokens] section of an INI settings file.
// A missing file is not an error: tokens may still come from the environment,
// flags or a credential store.
func (c *Config) LoadSettings(path string) error {
	if path == "" {
		return nil
	}
	c.Tokens.SettingsFile = path
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return apperrors.Config(fmt.Sprintf("failed to parse settings file %s", path), err)
	}

	section, err := file.GetSection(tokensSection)
	if err != nil {
		return nil
	}

	if v := strings.TrimSpace(section.Key("vk_token").String()); v != "" {
		c.Tokens.VKToken = v
	}
	if v := strings.TrimSpace(section.Key("yd_token").String()); v != "" {
		c.Tokens.YDToken = v
	}

	return nil
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if token := os.Getenv("VKBACKUP_VK_TOKEN"); token != "" {
		c.Tokens.VKToken = token
	}
	if token := os.Getenv("VKBACKUP_YD_TOKEN"); token != "" {
		c.Tokens.YDToken = token
	}
	if manifest := os.Getenv("VKBACKUP_MANIFEST"); manifest != "" {
		c.Output.ManifestPath = manifest
	}
	if tz := os.Getenv("VKBACKUP_TIMEZONE"); tz != "" {
		c.VK.TimeZone = tz
	}
	if timeout := os.Getenv("VKBACKUP_HTTP_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid VKBACKUP_HTTP_TIMEOUT: %w", err)
		}
		c.HTTP.Timeout = d
	}
	if logLevel := os.Getenv("VKBACKUP_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if vkToken, ok := flags["vk-token"].(string); ok && vkToken != "" {
		c.Tokens.VKToken = vkToken
	}
	if ydToken, ok := flags["yd-token"].(string); ok && ydToken != "" {
		c.Tokens.YDToken = ydToken
	}
	if manifest, ok := flags["manifest"].(string); ok && manifest != "" {
		c.Output.ManifestPath = manifest
	}
	if prefix, ok := flags["folder-prefix"].(string); ok && prefix != "" {
		c.YandexDisk.FolderPrefix = prefix
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.HTTP.Timeout = timeout
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
}

// settingsPath resolves which settings file to read: flag > env > config file > default
func (c *Config) settingsPath(flags map[string]interface{}) string {
	if path, ok := flags["settings"].(string); ok && path != "" {
		return path
	}
	if path := os.Getenv("VKBACKUP_SETTINGS"); path != "" {
		return path
	}
	return c.Tokens.SettingsFile
}

// Validate checks if the configuration is valid. Tokens are checked separately
// by RequireTokens since they can be filled in from a credential store later.
func (c *Config) Validate() error {
	var errs []error

	if c.VK.APIVersion == "" {
		errs = append(errs, errors.New("VK API version is required"))
	}
	if err := validateURL(c.VK.APIURL); err != nil {
		errs = append(errs, fmt.Errorf("invalid VK API URL: %w", err))
	}
	if _, err := c.VK.Location(); err != nil {
		errs = append(errs, fmt.Errorf("invalid VK timezone: %w", err))
	}
	if c.VK.DefaultCount <= 0 {
		errs = append(errs, errors.New("default photo count must be positive"))
	}

	if err := validateURL(c.YandexDisk.APIURL); err != nil {
		errs = append(errs, fmt.Errorf("invalid Yandex.Disk API URL: %w", err))
	}

	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("HTTP timeout must be positive"))
	}

	if c.Output.ManifestPath == "" {
		errs = append(errs, errors.New("manifest path is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, errors.New("invalid log format"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// RequireTokens returns a ConfigError naming every missing token
func (c *Config) RequireTokens() error {
	var missing []string
	if c.Tokens.VKToken == "" {
		missing = append(missing, "vk_token")
	}
	if c.Tokens.YDToken == "" {
		missing = append(missing, "yd_token")
	}
	if len(missing) == 0 {
		return nil
	}
	return apperrors.Config(
		fmt.Sprintf("missing %s in section [%s] of %s", strings.Join(missing, ", "), tokensSection, c.Tokens.SettingsFile),
		nil,
	)
}

// Location resolves the configured time zone used to format photo dates
func (v VKConfig) Location() (*time.Location, error) {
	if v.TimeZone == "" || strings.EqualFold(v.TimeZone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(v.TimeZone)
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", raw)
	}
	return nil
}

// Masked returns a copy of the configuration with tokens hidden, for display
func (c *Config) Masked() *Config {
	masked := *c
	masked.Tokens.VKToken = MaskToken(c.Tokens.VKToken)
	masked.Tokens.YDToken = MaskToken(c.Tokens.YDToken)
	return &masked
}

// MaskToken masks all but the first 4 and last 4 characters of a token
func MaskToken(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > settings.ini > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".vkbackup.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadSettings(config.settingsPath(flags)); err != nil {
		return nil, err
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
