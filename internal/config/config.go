package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Locale     string           `yaml:"locale"`
	Timezone   string           `yaml:"timezone"`
	Store      StoreConfig      `yaml:"store"`
	Notify     NotifyConfig     `yaml:"notify"`
	Attendance AttendanceConfig `yaml:"attendance"`
	Report     ReportConfig     `yaml:"report"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type StoreConfig struct {
	Driver        string `yaml:"driver"` // mongo | postgres | memory
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
	PostgresDSN   string `yaml:"postgres_dsn"`
}

type NotifyConfig struct {
	AttendanceWebhook     string        `yaml:"attendance_webhook"`
	ReportReminderWebhook string        `yaml:"report_reminder_webhook"`
	AttendanceFormURL     string        `yaml:"attendance_form_url"`
	ReportFormURL         string        `yaml:"report_form_url"`
	Timeout               time.Duration `yaml:"timeout"`
}

type AttendanceConfig struct {
	DayStartHour int           `yaml:"day_start_hour"`
	MaxAttempts  int           `yaml:"max_attempts"`
	RetryDelay   time.Duration `yaml:"retry_delay"`
}

type ReportConfig struct {
	ManagerName  string `yaml:"manager_name"`
	ManagerEmail string `yaml:"manager_email"`
}

type ScheduleConfig struct {
	Attendance     string `yaml:"attendance"`
	Report         string `yaml:"report"`
	ReportReminder string `yaml:"report_reminder"`
}

func defaults() *Config {
	return &Config{
		Server:   ServerConfig{Port: 3000},
		Log:      LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Locale:   "ja",
		Timezone: "Asia/Yangon",
		Store: StoreConfig{
			Driver:        "mongo",
			MongoURI:      "mongodb://localhost:27017/?replicaSet=rs0",
			MongoDatabase: "report",
		},
		Notify:     NotifyConfig{Timeout: 10 * time.Second},
		Attendance: AttendanceConfig{DayStartHour: 8, MaxAttempts: 3, RetryDelay: 15 * time.Minute},
		Schedule: ScheduleConfig{
			Attendance:     "30 8 * * 1-5",
			Report:         "0 18 * * 1-5",
			ReportReminder: "45 17 * * 1-5",
		},
	}
}

// Load reads defaults, then the first YAML file found, then environment
// overrides. An explicit path must exist.
func Load(path string) (*Config, error) {
	c := defaults()

	paths := []string{"etc/config.yaml", "/etc/report-bot/config.yaml"}
	if path != "" {
		paths = []string{path}
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if path != "" {
				return nil, fmt.Errorf("read config %s: %w", p, err)
			}
			continue
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", p, err)
		}
		break
	}

	envOverrideInt(&c.Server.Port, "PORT")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	envOverride(&c.Locale, "LOCALE")
	envOverride(&c.Timezone, "TZ_NAME")
	envOverride(&c.Store.Driver, "STORE_DRIVER")
	envOverride(&c.Store.MongoURI, "MONGODB_URI")
	envOverride(&c.Store.MongoDatabase, "MONGODB_DATABASE")
	envOverride(&c.Store.PostgresDSN, "POSTGRES_DSN")
	envOverride(&c.Notify.AttendanceWebhook, "TEAMS_WEBHOOK")
	envOverride(&c.Notify.ReportReminderWebhook, "EVENING_REPORT_WEBHOOK")
	envOverride(&c.Report.ManagerName, "MANAGER_NAME")
	envOverride(&c.Report.ManagerEmail, "MANAGER_EMAIL")

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	switch c.Store.Driver {
	case "mongo", "postgres", "memory":
	default:
		return fmt.Errorf("store.driver %q: want mongo, postgres or memory", c.Store.Driver)
	}
	if c.Attendance.MaxAttempts < 1 {
		return fmt.Errorf("attendance.max_attempts must be at least 1")
	}
	if c.Notify.Timeout <= 0 {
		return fmt.Errorf("notify.timeout must be positive")
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Location returns the configured time zone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
