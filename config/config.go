package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/fadhlanhapp/paytracker-backend/utils"
)

// Config holds all runtime settings for the service
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	NewRelic NewRelicConfig `mapstructure:"newrelic"`
}

type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type LedgerConfig struct {
	DailyRate decimal.Decimal `mapstructure:"-"`
	Roster    []string        `mapstructure:"roster"`
	Clock     string          `mapstructure:"clock"`
}

type NewRelicConfig struct {
	AppName    string `mapstructure:"app_name"`
	LicenseKey string `mapstructure:"license_key"`
}

// DSN builds the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// envKeys maps config keys to the environment variables the service has always read
var envKeys = map[string]string{
	"server.port":          "PORT",
	"server.cors_origins":  "CORS_ORIGINS",
	"database.driver":      "LEDGER_DRIVER",
	"database.host":        "DB_HOST",
	"database.port":        "DB_PORT",
	"database.user":        "DB_USER",
	"database.password":    "DB_PASSWORD",
	"database.name":        "DB_NAME",
	"database.sslmode":     "DB_SSLMODE",
	"ledger.daily_rate":    "DAILY_RATE",
	"ledger.roster":        "ROSTER",
	"ledger.clock":         "ACCRUAL_CLOCK",
	"newrelic.app_name":    "NEW_RELIC_APP_NAME",
	"newrelic.license_key": "NEW_RELIC_LICENSE_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.cors_origins", "*")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "paytracker")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("ledger.daily_rate", utils.DefaultDailyRate)
	v.SetDefault("ledger.roster", utils.DefaultRoster)
	v.SetDefault("ledger.clock", utils.ClockShared)
	v.SetDefault("newrelic.app_name", "PayTracker API")
}

// Load reads configuration from the environment and, when configFile is not
// empty, from that YAML file. Environment variables win over the file.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Printf("Loaded configuration from %s", configFile)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Lists arrive either as YAML sequences or comma separated env values
	cfg.Ledger.Roster = stringList(v.Get("ledger.roster"))
	cfg.Server.CORSOrigins = stringList(v.Get("server.cors_origins"))

	rate, err := decimal.NewFromString(strings.TrimSpace(v.GetString("ledger.daily_rate")))
	if err != nil {
		return nil, fmt.Errorf("invalid daily rate: %w", err)
	}
	cfg.Ledger.DailyRate = rate

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the ledger settings the accrual calculator depends on
func (c *Config) Validate() error {
	if err := utils.ValidatePositive(c.Ledger.DailyRate, "daily rate"); err != nil {
		return err
	}
	if err := utils.ValidateNotEmpty(c.Ledger.Roster, "roster"); err != nil {
		return err
	}
	if err := utils.ValidateRosterNames(c.Ledger.Roster); err != nil {
		return err
	}
	switch c.Ledger.Clock {
	case utils.ClockShared, utils.ClockPerPerson:
	default:
		return utils.NewValidationError(fmt.Sprintf("unknown accrual clock %q", c.Ledger.Clock))
	}
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return utils.NewValidationError(fmt.Sprintf("unknown ledger driver %q", c.Database.Driver))
	}
	return nil
}

func stringList(raw interface{}) []string {
	switch val := raw.(type) {
	case string:
		return utils.SplitList(val)
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return utils.SplitList(strings.Join(val, ","))
	}
	return nil
}
