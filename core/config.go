package core

import (
	"fmt"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env              string `mapstructure:"-"`
		Debug            bool   `mapstructure:"debug"`
		TestMode         bool   `mapstructure:"testMode"`
		AppName          string `mapstructure:"appName"`
		Build            string `mapstructure:"build"`
		SecretKey        string `mapstructure:"secretKey"`
		FrontendBaseURL  string `mapstructure:"frontendBaseURL"`
		DefaultFromEmail string `mapstructure:"defaultFromEmail"`
		SendgridApiKey   string `mapstructure:"sendgridApiKey"`
		RollbarToken     string `mapstructure:"rollbarToken"`
		CronSecret       string `mapstructure:"cronSecret"`
		WebhookSecret    string `mapstructure:"webhookSecret"`
		DefaultTimezone  string `mapstructure:"defaultTimezone"`

		Server   ServerConfig   `mapstructure:"server"`
		Database DatabaseConfig `mapstructure:"database"`
		Reminder ReminderConfig `mapstructure:"reminder"`
	}

	ServerConfig struct {
		Host               string        `mapstructure:"host"`
		DebugHost          string        `mapstructure:"debugHost"`
		ReadTimeout        time.Duration `mapstructure:"readTimeout"`
		WriteTimeout       time.Duration `mapstructure:"writeTimeout"`
		ShutdownTimeout    time.Duration `mapstructure:"shutdownTimeout"`
		JWTExpirationDelta time.Duration `mapstructure:"jwtExpirationDelta"`
	}

	DatabaseConfig struct {
		Engine        string `mapstructure:"engine"`
		Host          string `mapstructure:"host"`
		Port          string `mapstructure:"port"`
		Name          string `mapstructure:"name"`
		User          string `mapstructure:"user"`
		Password      string `mapstructure:"password"`
		AdminUser     string `mapstructure:"adminUser"`
		AdminPassword string `mapstructure:"adminPassword"`
		DisableTLS    bool   `mapstructure:"disableTLS"`
	}

	// ReminderConfig positions the two daily reminder windows.
	// A window covers [hour-LeadHours, hour) in the user's local time.
	ReminderConfig struct {
		MiddayHour     int    `mapstructure:"middayHour"`
		EODHour        int    `mapstructure:"eodHour"`
		LeadHours      int    `mapstructure:"leadHours"`
		SubmissionPath string `mapstructure:"submissionPath"`
	}
)

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

// DefaultFromAddress parses Config.DefaultFromEmail, falling back to a bare address.
func (conf *Config) DefaultFromAddress() mail.Address {
	if addr, err := mail.ParseAddress(conf.DefaultFromEmail); err == nil {
		return *addr
	}
	return mail.Address{Name: conf.AppName, Address: conf.DefaultFromEmail}
}

// SubmissionURL is the page users are sent to from reminder emails.
func (conf *Config) SubmissionURL() string {
	return strings.TrimRight(conf.FrontendBaseURL, "/") + conf.Reminder.SubmissionPath
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "DevTracker")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "k1f$v0q9-devtracker-!b7x%2n@p#c8m^w3l&d6s*z")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "DevTracker <noreply@devtracker.com>")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("cronSecret", "")
	v.SetDefault("webhookSecret", "")
	v.SetDefault("defaultTimezone", "America/New_York")

	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 30*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "devtracker")
	v.SetDefault("database.user", "devtracker")
	v.SetDefault("database.password", "devtracker")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("reminder.middayHour", 12)
	v.SetDefault("reminder.eodHour", 18)
	v.SetDefault("reminder.leadHours", 1)
	v.SetDefault("reminder.submissionPath", "/dashboard")
}

// NewConfig loads the configuration for the current ENV (DEV (local; default), TEST, QA, PROD).
// Values come from, in order of precedence: "<ENV>_"-prefixed environment variables,
// config/.env.<env> (if present), then defaults.
func NewConfig() (*Config, error) {
	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)
	if env == "TEST" {
		v.SetDefault("testMode", true)
		v.SetDefault("debug", false)
	}

	// load .env if it exists (ignore if it does not)
	configDir := os.Getenv("CONFIG_DIR")
	if configDir == "" {
		configDir = "config"
	}
	dotEnvPath := filepath.Join(configDir, ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	conf.Env = env

	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (conf *Config) validate() error {
	r := conf.Reminder
	if r.LeadHours < 1 || r.LeadHours > 12 {
		return fmt.Errorf("config: reminder.leadHours must be between 1 and 12 (got %d)", r.LeadHours)
	}
	for _, h := range []int{r.MiddayHour, r.EODHour} {
		if h-r.LeadHours < 0 || h > 24 {
			return fmt.Errorf("config: reminder hour %d out of range", h)
		}
	}
	if r.MiddayHour-r.LeadHours < r.EODHour && r.EODHour-r.LeadHours < r.MiddayHour {
		return errors.New("config: reminder windows overlap")
	}
	if !conf.Debug && !conf.TestMode && conf.SendgridApiKey == "" {
		return errors.New("config: sendgridApiKey is required outside debug mode")
	}
	return nil
}

// NewTestConfig returns the configuration used by tests; it never touches the environment.
func NewTestConfig() *Config {
	v := viper.New()
	setDefaults(v)
	conf := new(Config)
	_ = v.Unmarshal(conf)
	conf.Env = "TEST"
	conf.Debug = false
	conf.TestMode = true
	conf.SecretKey = "secret"
	return conf
}
