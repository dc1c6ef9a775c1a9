package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

const defaultConfigPath = "config/config.yaml"

type Config struct {
	ApplicationTitle string `yaml:"application_title" env:"APPLICATION_TITLE"`

	Server ServerConfig `yaml:"server" envPrefix:"SERVER_"`

	Database DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`

	Email EmailConfig `yaml:"email" envPrefix:"EMAIL_"`

	JWT JWTConfig `yaml:"jwt" envPrefix:"JWT_"`

	Storage StorageConfig `yaml:"storage" envPrefix:"STORAGE_"`

	Media MediaConfig `yaml:"media" envPrefix:"MEDIA_"`

	Registration RegistrationConfig `yaml:"registration" envPrefix:"REGISTRATION_"`

	FirstAdminEmail    string `yaml:"first_admin_email" env:"FIRST_ADMIN_EMAIL"`
	FirstAdminPassword string `yaml:"first_admin_password" env:"FIRST_ADMIN_PASSWORD"`
}

type ServerConfig struct {
	Host           string   `yaml:"host" env:"HOST"`
	Port           int      `yaml:"port" env:"PORT"`
	Env            string   `yaml:"env" env:"ENV"`
	BaseURL        string   `yaml:"base_url" env:"BASE_URL"`
	TimeZone       string   `yaml:"time_zone" env:"TIME_ZONE"`
	TrustedProxies []string `yaml:"trusted_proxies" env:"TRUSTED_PROXIES" envSeparator:","`
	CORSOrigins    []string `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
}

type DatabaseConfig struct {
	Driver             string `yaml:"driver" env:"DRIVER"`
	DSN                string `yaml:"url" env:"URL"`
	MaxOpenConns       int    `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns       int    `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	ConnMaxLifetimeMin int    `yaml:"conn_max_lifetime_minutes" env:"CONN_MAX_LIFETIME_MINUTES"`
}

type EmailConfig struct {
	SMTPHost              string   `yaml:"smtp_host" env:"HOST"`
	SMTPPort              int      `yaml:"smtp_port" env:"PORT"`
	SMTPUsername          string   `yaml:"smtp_user" env:"USER"`
	SMTPPassword          string   `yaml:"smtp_password" env:"PASSWORD"`
	FromEmail             string   `yaml:"from_email" env:"FROM"`
	FromName              string   `yaml:"from_name" env:"FROM_NAME"`
	SubjectPrefix         string   `yaml:"subject_prefix" env:"SUBJECT"`
	DebugEmail            string   `yaml:"debug_email" env:"DEBUG_ADDRESS"`
	MonitorAddresses      []string `yaml:"monitor_addresses" env:"MONITOR_ADDRESSES" envSeparator:","`
	TechnicalContact      string   `yaml:"technical_contact" env:"TECHNICAL_CONTACT"`
	TechnicalContactEmail string   `yaml:"technical_contact_email" env:"TECHNICAL_CONTACT_EMAIL"`
	// Debug logs messages instead of handing them to SMTP.
	Debug          bool `yaml:"debug" env:"DEBUG"`
	TimeoutSeconds int  `yaml:"timeout_seconds" env:"TIMEOUT_SECONDS"`
}

type JWTConfig struct {
	Secret             string `yaml:"secret" env:"SECRET"`
	TTL                int    `yaml:"ttl" env:"TTL"` // minutes
	SubscriberTTLHours int    `yaml:"subscriber_ttl_hours" env:"SUBSCRIBER_TTL_HOURS"`
}

type StorageConfig struct {
	Type       string `yaml:"type" env:"TYPE"` // local, s3
	BasePath   string `yaml:"base_path" env:"BASE_PATH"`
	BaseURL    string `yaml:"base_url" env:"BASE_URL"`
	Bucket     string `yaml:"bucket" env:"BUCKET"`
	Region     string `yaml:"region" env:"REGION"`
	AccessKey  string `yaml:"access_key" env:"ACCESS_KEY"`
	SecretKey  string `yaml:"secret_key" env:"SECRET_KEY"`
	Endpoint   string `yaml:"endpoint" env:"ENDPOINT"`
	UseSSL     bool   `yaml:"use_ssl" env:"USE_SSL"`
	PublicRead bool   `yaml:"public_read" env:"PUBLIC_READ"`
}

type MediaConfig struct {
	MaxUploadSize   int64  `yaml:"max_upload_size" env:"MAX_UPLOAD_SIZE"`
	MaxImageWidth   int    `yaml:"max_image_width" env:"MAX_IMAGE_WIDTH"`
	MaxImageHeight  int    `yaml:"max_image_height" env:"MAX_IMAGE_HEIGHT"`
	ImageQuality    int    `yaml:"image_quality" env:"IMAGE_QUALITY"`
	PreviewDPI      int    `yaml:"preview_dpi" env:"PREVIEW_DPI"`
	PreviewFrames   int    `yaml:"preview_frames" env:"PREVIEW_FRAMES"`
	FFprobeBinary   string `yaml:"ffprobe_binary" env:"FFPROBE"`
	FFmpegBinary    string `yaml:"ffmpeg_binary" env:"FFMPEG"`
	PdftoppmBinary  string `yaml:"pdftoppm_binary" env:"PDFTOPPM"`
	Workers         int    `yaml:"workers" env:"WORKERS"`
	QueueSize       int    `yaml:"queue_size" env:"QUEUE_SIZE"`
	ProcessingLimit int    `yaml:"processing_timeout_seconds" env:"PROCESSING_TIMEOUT_SECONDS"`
}

type RegistrationConfig struct {
	RegistrationURL    string `yaml:"registration_url" env:"URL"`
	VideotecaURL       string `yaml:"videoteca_url" env:"VIDEOTECA_URL"`
	PillsCategory      string `yaml:"pills_category" env:"PILLS_CATEGORY"`
	PersonsDumpPath    string `yaml:"persons_dump_path" env:"PERSONS_DUMP"`
	StructuresDumpPath string `yaml:"structures_dump_path" env:"STRUCTURES_DUMP"`
	ReminderEnabled    bool   `yaml:"reminder_enabled" env:"REMINDER_ENABLED"`
	ReminderHour       int    `yaml:"reminder_hour" env:"REMINDER_HOUR"`
	ReminderDays       int    `yaml:"reminder_days" env:"REMINDER_DAYS"`
	LoginPerMinute     int    `yaml:"login_per_minute" env:"LOGIN_PER_MINUTE"`
	CookieSecure       bool   `yaml:"cookie_secure" env:"COOKIE_SECURE"`
}

var AppConfig *Config

// Defaults returns a configuration with every optional value filled in.
func Defaults() *Config {
	var cfg Config
	cfg.ApplicationTitle = "Media Matrix Hub"

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8000
	cfg.Server.Env = "development"
	cfg.Server.BaseURL = "http://localhost:8000"
	cfg.Server.TimeZone = "Europe/Rome"

	cfg.Database.Driver = "mysql"
	cfg.Database.MaxOpenConns = 20
	cfg.Database.MaxIdleConns = 5
	cfg.Database.ConnMaxLifetimeMin = 30

	cfg.Email.SMTPHost = "localhost"
	cfg.Email.SMTPPort = 25
	cfg.Email.FromEmail = "noreply@localhost"
	cfg.Email.SubjectPrefix = "[MediaMatrixHub]"
	cfg.Email.TimeoutSeconds = 30

	cfg.JWT.TTL = 60
	cfg.JWT.SubscriberTTLHours = 24 * 7 * 4

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./media"
	cfg.Storage.BaseURL = "/media"

	cfg.Media.MaxUploadSize = 2 << 30
	cfg.Media.MaxImageWidth = 1920
	cfg.Media.MaxImageHeight = 1080
	cfg.Media.ImageQuality = 85
	cfg.Media.PreviewDPI = 200
	cfg.Media.PreviewFrames = 4
	cfg.Media.FFprobeBinary = "ffprobe"
	cfg.Media.FFmpegBinary = "ffmpeg"
	cfg.Media.PdftoppmBinary = "pdftoppm"
	cfg.Media.Workers = 2
	cfg.Media.QueueSize = 64
	cfg.Media.ProcessingLimit = 600

	cfg.Registration.PillsCategory = "pillole informative"
	cfg.Registration.ReminderHour = 7
	cfg.Registration.ReminderDays = 1
	cfg.Registration.LoginPerMinute = 10

	return &cfg
}

// Load reads the YAML file at path (CONFIG_PATH or config/config.yaml when
// empty) and applies MMH_* environment overrides. A missing default file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
	}
	if path == "" {
		path = defaultConfigPath
	}

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("open config file %s: %w", path, err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "MMH_"}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Server.BaseURL = strings.TrimRight(c.Server.BaseURL, "/")
	c.Database.Driver = strings.ToLower(c.Database.Driver)

	addrs := make([]string, 0, len(c.Email.MonitorAddresses))
	for _, a := range c.Email.MonitorAddresses {
		for _, part := range strings.Split(a, ",") {
			if part = strings.TrimSpace(part); part != "" {
				addrs = append(addrs, part)
			}
		}
	}
	c.Email.MonitorAddresses = addrs
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Server.Env == "production" && c.JWT.Secret == "" {
		return errors.New("jwt.secret is required in production")
	}
	if c.Media.MaxImageWidth <= 0 || c.Media.MaxImageHeight <= 0 {
		return errors.New("media.max_image_width and media.max_image_height must be positive")
	}
	if c.Registration.ReminderHour < 0 || c.Registration.ReminderHour > 23 {
		return fmt.Errorf("registration.reminder_hour out of range: %d", c.Registration.ReminderHour)
	}
	return nil
}

// Subject prefixes s with the configured subject tag.
func (c *Config) Subject(s string) string {
	if c.Email.SubjectPrefix == "" {
		return s
	}
	return c.Email.SubjectPrefix + " " + s
}

// LoadConfig populates AppConfig and panics on failure; used by entrypoints
// that have no way to recover.
func LoadConfig() {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	AppConfig = cfg
}

// Location resolves Server.TimeZone, falling back to the process zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Server.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Server.TimeZone)
	if err != nil {
		return time.Local, fmt.Errorf("load time zone %q: %w", c.Server.TimeZone, err)
	}
	return loc, nil
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
