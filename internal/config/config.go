// Package config loads notemode settings from a YAML file, a .env file and
// the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/monodeaf/notemode/internal/platform"
	"github.com/monodeaf/notemode/pkg/reminders"
)

// DefaultFile is looked for in the working directory when no file is given.
const DefaultFile = "notemode.yaml"

// DefaultDatabase is the sqlite file created inside the vault directory.
const DefaultDatabase = "notemode.db"

// EnvPrefix prefixes every notemode variable; NOTEMODE_FIREBASE_PROJECT_ID
// reaches firebase.project_id, for instance.
const EnvPrefix = "NOTEMODE"

// Config holds everything the CLI needs to open a store.
type Config struct {
	Vault    string `mapstructure:"vault"`
	Adapter  string `mapstructure:"adapter"`
	Database string `mapstructure:"database"` // sqlite file; defaults to <vault>/notemode.db
	Format   string `mapstructure:"format"`
	User     string `mapstructure:"user"`
	ReadOnly bool   `mapstructure:"read_only"`
	Strict   bool   `mapstructure:"strict"`
	Location string `mapstructure:"location"` // IANA zone for statistics; empty means local
	// DedupWindow is a Go duration such as "1s".
	DedupWindow string `mapstructure:"dedup_window"`

	Firebase  Firebase           `mapstructure:"firebase"`
	Reminders reminders.Settings `mapstructure:"reminders"`
}

// Firebase groups the settings of the firebase and firestore adapters.
type Firebase struct {
	ProjectID             string `mapstructure:"project_id"`
	DatabaseURL           string `mapstructure:"database_url"`
	CredentialsFile       string `mapstructure:"credentials_file"`
	CredentialsJSONBase64 string `mapstructure:"credentials_json_base64"`
	Collection            string `mapstructure:"collection"`
}

// envAliases binds keys to variable names that do not follow the
// NOTEMODE_<KEY> scheme: the short reminder names and the names the
// Firebase tooling already uses.
var envAliases = map[string][]string{
	"reminders.enabled":                   {"NOTEMODE_REMINDERS"},
	"reminders.daily_reminder":            {"NOTEMODE_DAILY_REMINDER"},
	"reminders.reminder_time":             {"NOTEMODE_REMINDER_TIME"},
	"reminders.group_reminders":           {"NOTEMODE_GROUP_REMINDERS"},
	"reminders.inactivity_threshold_days": {"NOTEMODE_INACTIVITY_DAYS"},
	"firebase.collection":                 {"NOTEMODE_FIRESTORE_COLLECTION"},
	"firebase.project_id":                 {"FIREBASE_PROJECT_ID"},
	"firebase.database_url":               {"FIREBASE_DATABASE_URL"},
	"firebase.credentials_file":           {"GOOGLE_APPLICATION_CREDENTIALS"},
	"firebase.credentials_json_base64":    {"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"},
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Vault:     ".",
		Adapter:   platform.AdapterFS,
		Reminders: reminders.DefaultSettings(),
	}
}

// Load reads path (or DefaultFile when path is empty and the file exists),
// then envFile (".env" when empty; a missing file is fine), then NOTEMODE_*
// and the usual Firebase variables from the environment.
func Load(path, envFile string) (*Config, error) {
	v := newViper()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load %s: %w", envFile, err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, cfg.Validate()
}

// newViper knows every key of Config, so that AutomaticEnv can reach keys
// absent from the file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("vault", d.Vault)
	v.SetDefault("adapter", d.Adapter)
	for _, key := range []string{"database", "format", "user", "location", "dedup_window", "read_only", "strict"} {
		_ = v.BindEnv(key)
	}
	v.SetDefault("reminders.reminder_time", d.Reminders.ReminderTime)
	v.SetDefault("reminders.inactivity_threshold_days", d.Reminders.InactivityThresholdDays)
	for key, names := range envAliases {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
	return v
}

// Validate reports settings that would fail later, when the store opens.
func (c *Config) Validate() error {
	switch c.Adapter {
	case platform.AdapterFS, platform.AdapterMemory, platform.AdapterSQLite,
		platform.AdapterFirebase, platform.AdapterFirestore:
	default:
		return fmt.Errorf("config: unknown adapter %q", c.Adapter)
	}
	if c.Adapter == platform.AdapterFirebase && c.Firebase.DatabaseURL == "" {
		return errors.New("config: firebase adapter needs firebase.database_url")
	}
	if _, err := c.location(); err != nil {
		return err
	}
	if _, err := c.dedupWindow(); err != nil {
		return err
	}
	if c.Reminders.InactivityThresholdDays < 0 {
		return errors.New("config: reminders.inactivity_threshold_days must not be negative")
	}
	if c.Reminders.Enabled && c.Reminders.DailyReminder {
		if _, _, err := reminders.ParseReminderTime(c.Reminders.ReminderTime); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

func (c *Config) location() (*time.Location, error) {
	if c.Location == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("config: location %q: %w", c.Location, err)
	}
	return loc, nil
}

func (c *Config) dedupWindow() (time.Duration, error) {
	if c.DedupWindow == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.DedupWindow)
	if err != nil {
		return 0, fmt.Errorf("config: dedup_window %q: %w", c.DedupWindow, err)
	}
	return d, nil
}

// URI is the adapter-specific location passed to platform.Init.
func (c *Config) URI() string {
	switch c.Adapter {
	case platform.AdapterSQLite:
		if c.Database != "" {
			return c.Database
		}
		return filepath.Join(c.Vault, DefaultDatabase)
	case platform.AdapterFirebase:
		return c.Firebase.DatabaseURL
	case platform.AdapterFirestore:
		return c.Firebase.ProjectID
	case platform.AdapterMemory:
		return ""
	}
	return c.Vault
}

// Options converts the configuration into platform options. Call Validate
// first; invalid durations and zones are skipped here.
func (c *Config) Options() []platform.Option {
	opts := []platform.Option{
		platform.WithAdapter(c.Adapter),
		platform.WithFormat(c.Format),
		platform.WithReadOnly(c.ReadOnly),
		platform.WithStrict(c.Strict),
		platform.WithProjectID(c.Firebase.ProjectID),
		platform.WithCredentialsFile(c.Firebase.CredentialsFile),
		platform.WithCredentialsJSONBase64(c.Firebase.CredentialsJSONBase64),
		platform.WithCollection(c.Firebase.Collection),
	}
	if loc, err := c.location(); err == nil && loc != nil {
		opts = append(opts, platform.WithLocation(loc))
	}
	if d, err := c.dedupWindow(); err == nil && d > 0 {
		opts = append(opts, platform.WithDedupWindow(d))
	}
	return opts
}
