// Package config resolves daybook settings from defaults, a YAML file and the
// environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/daybook/internal/filter"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Config struct {
	DataDir   string          `mapstructure:"data_dir" yaml:"data_dir"`
	UserID    string          `mapstructure:"user_id" yaml:"user_id"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Remote    RemoteConfig    `mapstructure:"remote" yaml:"remote"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Filters   FiltersConfig   `mapstructure:"filters" yaml:"filters"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
}

type StorageConfig struct {
	Backend    string `mapstructure:"backend" yaml:"backend"`
	Key        string `mapstructure:"key" yaml:"key"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

// RemoteConfig leaves BaseURL empty when sync is disabled.
type RemoteConfig struct {
	BaseURL       string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	HealthTimeout time.Duration `mapstructure:"health_timeout" yaml:"health_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type FiltersConfig struct {
	StatusPolicy   string `mapstructure:"status_policy" yaml:"status_policy"`
	WeekLowerBound bool   `mapstructure:"week_lower_bound" yaml:"week_lower_bound"`
}

type ServerConfig struct {
	Addr   string `mapstructure:"addr" yaml:"addr"`
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

type SchedulerConfig struct {
	Buffer               int  `mapstructure:"buffer" yaml:"buffer"`
	DesktopNotifications bool `mapstructure:"desktop_notifications" yaml:"desktop_notifications"`
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".daybook"
	}
	return filepath.Join(home, ".daybook")
}

func Default() Config {
	return Config{
		DataDir: defaultDataDir(),
		Storage: StorageConfig{
			Backend: BackendFile,
			Key:     "daybook_state",
		},
		Remote: RemoteConfig{
			Timeout:       5 * time.Second,
			HealthTimeout: 2 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Filters: FiltersConfig{
			StatusPolicy: string(filter.MatchAny),
		},
		Server: ServerConfig{
			Addr:   ":8080",
			DBPath: "daybook-server.db",
		},
		Scheduler: SchedulerConfig{
			Buffer: 64,
		},
	}
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if err := loadFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	cfg = FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	return v.Unmarshal(cfg)
}

// FromEnv applies DAYBOOK_* overrides on top of base.
func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("DAYBOOK_DATA_DIR"); ok {
		cfg.DataDir = v
	}
	if v, ok := getEnvString("DAYBOOK_USER_ID"); ok {
		cfg.UserID = v
	}
	if v, ok := getEnvString("DAYBOOK_STORAGE_BACKEND"); ok {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v, ok := getEnvString("DAYBOOK_STORAGE_KEY"); ok {
		cfg.Storage.Key = v
	}
	if v, ok := getEnvString("DAYBOOK_SQLITE_PATH"); ok {
		cfg.Storage.SQLitePath = v
	}
	if v, ok := getEnvString("DAYBOOK_REMOTE_URL"); ok {
		cfg.Remote.BaseURL = v
	}
	if v, ok := getEnvDuration("DAYBOOK_REMOTE_TIMEOUT"); ok && v > 0 {
		cfg.Remote.Timeout = v
	}
	if v, ok := getEnvDuration("DAYBOOK_REMOTE_HEALTH_TIMEOUT"); ok && v > 0 {
		cfg.Remote.HealthTimeout = v
	}
	if v, ok := getEnvString("DAYBOOK_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := getEnvString("DAYBOOK_LOG_FORMAT"); ok {
		cfg.Log.Format = v
	}
	if v, ok := getEnvString("DAYBOOK_STATUS_POLICY"); ok {
		cfg.Filters.StatusPolicy = strings.ToLower(v)
	}
	if v, ok := getEnvBool("DAYBOOK_WEEK_LOWER_BOUND"); ok {
		cfg.Filters.WeekLowerBound = v
	}
	if v, ok := getEnvString("DAYBOOK_SERVER_ADDR"); ok {
		cfg.Server.Addr = v
	}
	if v, ok := getEnvString("DAYBOOK_SERVER_DB"); ok {
		cfg.Server.DBPath = v
	}
	if v, ok := getEnvInt("DAYBOOK_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.Scheduler.Buffer = v
	}
	if v, ok := getEnvBool("DAYBOOK_DESKTOP_NOTIFICATIONS"); ok {
		cfg.Scheduler.DesktopNotifications = v
	}
	return cfg
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("config: storage.key is required")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("config: data_dir is required")
	}
	if c.Remote.Timeout <= 0 || c.Remote.HealthTimeout <= 0 {
		return errors.New("config: remote timeouts must be positive")
	}
	if !filter.StatusPolicy(c.Filters.StatusPolicy).IsValid() {
		return fmt.Errorf("config: unknown status policy %q", c.Filters.StatusPolicy)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if c.Scheduler.Buffer <= 0 {
		return errors.New("config: scheduler.buffer must be positive")
	}
	return nil
}

// SQLitePath falls back to a file inside the data dir.
func (c Config) SQLitePath() string {
	if strings.TrimSpace(c.Storage.SQLitePath) != "" {
		return c.Storage.SQLitePath
	}
	return filepath.Join(c.DataDir, "daybook.db")
}

func (c Config) SyncEnabled() bool {
	return strings.TrimSpace(c.Remote.BaseURL) != ""
}

func (c Config) FilterOptions() []filter.Option {
	return []filter.Option{
		filter.WithStatusPolicy(filter.StatusPolicy(c.Filters.StatusPolicy)),
		filter.WithWeekLowerBound(c.Filters.WeekLowerBound),
	}
}

// WriteDefault writes the default configuration as YAML. An existing file is
// left alone unless overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config: %s already exists", path)
		}
	}
	raw, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, raw, 0o644)
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvDuration(name string) (time.Duration, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return false, false
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
