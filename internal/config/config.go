package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vortex-oo/clouddrop/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "clouddrop.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultMaxFileSize is the default intake limit (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024

	// DriverDisk stages dropped files in a local directory.
	DriverDisk = "disk"

	// DriverS3 stages dropped files in an S3 bucket.
	DriverS3 = "s3"
)

// Config represents the complete clouddrop.json configuration.
type Config struct {
	// Name is the application name attached to log output and
	// used as the tracer name for upload spans.
	Name string `json:"name,omitempty"`

	// Server contains HTTP listener configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Session contains live session configuration.
	Session SessionConfig `json:"session,omitempty"`

	// Upload contains upload client configuration.
	Upload UploadConfig `json:"upload,omitempty"`

	// Staging contains configuration for where dropped files wait before upload.
	Staging StagingConfig `json:"staging,omitempty"`

	// Metrics contains Prometheus endpoint configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// ShutdownTimeout is how long graceful shutdown may take (e.g., "30s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty"`
}

// SessionConfig contains live session settings.
type SessionConfig struct {
	// MaxEventQueue is the per-session event queue size.
	MaxEventQueue int `json:"maxEventQueue,omitempty"`

	// ReadTimeout is the idle timeout of a session WebSocket (e.g., "60s").
	ReadTimeout string `json:"readTimeout,omitempty"`

	// ClipboardTimeout bounds the browser clipboard round trip (e.g., "5s").
	ClipboardTimeout string `json:"clipboardTimeout,omitempty"`
}

// UploadConfig contains upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum accepted file size in bytes.
	MaxFileSize int64 `json:"maxFileSize,omitempty"`

	// Timeout bounds a single POST to the remote API (e.g., "60s").
	Timeout string `json:"timeout,omitempty"`
}

// StagingConfig contains staging store settings.
type StagingConfig struct {
	// Driver is "disk" or "s3".
	Driver string `json:"driver,omitempty"`

	// Dir is the staging directory for the disk driver.
	// Default: <os temp dir>/clouddrop.
	Dir string `json:"dir,omitempty"`

	// TempExpiry is how long a staged file lives before cleanup (e.g., "1h").
	TempExpiry string `json:"tempExpiry,omitempty"`

	// CleanupInterval is how often expired files are swept (e.g., "5m").
	CleanupInterval string `json:"cleanupInterval,omitempty"`

	// S3 contains settings for the s3 driver.
	S3 S3Config `json:"s3,omitempty"`
}

// S3Config contains S3 staging settings.
type S3Config struct {
	// Bucket is the bucket name.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the key prefix for staged objects.
	Prefix string `json:"prefix,omitempty"`

	// Region overrides the region from the AWS environment.
	Region string `json:"region,omitempty"`
}

// MetricsConfig contains Prometheus endpoint settings.
type MetricsConfig struct {
	// Disabled turns off the metrics endpoint.
	Disabled bool `json:"disabled,omitempty"`

	// Path is the metrics endpoint path.
	Path string `json:"path,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{Name: "CloudDrop"}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory.
// It looks for clouddrop.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No clouddrop.json found in " + filepath.Dir(path)).
				WithSuggestion("Create clouddrop.json or run without --config to use defaults")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := &Config{Name: "CloudDrop"}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse clouddrop.json: " + err.Error()).
			WithSuggestion("Check that clouddrop.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads clouddrop.json from dir, falling back to defaults
// when the file does not exist.
func LoadOrDefault(dir string) (*Config, error) {
	if !Exists(dir) {
		return New(), nil
	}
	return Load(dir)
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "30s"
	}

	if c.Session.MaxEventQueue == 0 {
		c.Session.MaxEventQueue = 64
	}
	if c.Session.ReadTimeout == "" {
		c.Session.ReadTimeout = "60s"
	}
	if c.Session.ClipboardTimeout == "" {
		c.Session.ClipboardTimeout = "5s"
	}

	if c.Upload.MaxFileSize == 0 {
		c.Upload.MaxFileSize = DefaultMaxFileSize
	}
	if c.Upload.Timeout == "" {
		c.Upload.Timeout = "60s"
	}

	if c.Staging.Driver == "" {
		c.Staging.Driver = DriverDisk
	}
	if c.Staging.Dir == "" {
		c.Staging.Dir = filepath.Join(os.TempDir(), "clouddrop")
	}
	if c.Staging.TempExpiry == "" {
		c.Staging.TempExpiry = "1h"
	}
	if c.Staging.CleanupInterval == "" {
		c.Staging.CleanupInterval = "5m"
	}
	if c.Staging.S3.Prefix == "" {
		c.Staging.S3.Prefix = "clouddrop/staging/"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetail("Port must be between 0 and 65535, got " + strconv.Itoa(c.Server.Port))
	}
	switch c.Staging.Driver {
	case DriverDisk:
	case DriverS3:
		if c.Staging.S3.Bucket == "" {
			return errors.New("E120").
				WithDetail("staging.s3.bucket is required when staging.driver is \"s3\"")
		}
	default:
		return errors.New("E123").
			WithDetail("Unknown staging driver " + strconv.Quote(c.Staging.Driver))
	}
	if c.Upload.MaxFileSize < 0 {
		return errors.New("E120").WithDetail("upload.maxFileSize must not be negative")
	}

	for name, value := range map[string]string{
		"server.shutdownTimeout":   c.Server.ShutdownTimeout,
		"session.readTimeout":      c.Session.ReadTimeout,
		"session.clipboardTimeout": c.Session.ClipboardTimeout,
		"upload.timeout":           c.Upload.Timeout,
		"staging.tempExpiry":       c.Staging.TempExpiry,
		"staging.cleanupInterval":  c.Staging.CleanupInterval,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return errors.New("E120").
				WithDetail(name + " is not a valid duration: " + strconv.Quote(value)).
				WithSuggestion(`Use Go duration syntax such as "30s" or "5m"`)
		}
	}
	return nil
}

// Address returns the listen address for the server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the base URL of the server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// ShutdownTimeout returns the parsed server shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 30*time.Second)
}

// ReadTimeout returns the parsed session read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return parseDuration(c.Session.ReadTimeout, 60*time.Second)
}

// ClipboardTimeout returns the parsed clipboard round-trip timeout.
func (c *Config) ClipboardTimeout() time.Duration {
	return parseDuration(c.Session.ClipboardTimeout, 5*time.Second)
}

// UploadTimeout returns the parsed upload request timeout.
func (c *Config) UploadTimeout() time.Duration {
	return parseDuration(c.Upload.Timeout, 60*time.Second)
}

// TempExpiry returns the parsed staging expiry.
func (c *Config) TempExpiry() time.Duration {
	return parseDuration(c.Staging.TempExpiry, time.Hour)
}

// CleanupInterval returns the parsed staging sweep interval.
func (c *Config) CleanupInterval() time.Duration {
	return parseDuration(c.Staging.CleanupInterval, 5*time.Minute)
}

// LogLevel maps the configured level to a slog-compatible name.
func (c *Config) LogLevel() string {
	return strings.ToLower(c.Log.Level)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
