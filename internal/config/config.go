// Package config provides Viper-based configuration loading for the duel CLI.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DUEL_LOGGING_LEVEL.
const EnvPrefix = "DUEL"

// Store drivers.
const (
	DriverYAML     = "yaml"
	DriverPostgres = "postgres"
)

// DatabaseConfig holds PostgreSQL connection settings. It is only checked
// when the postgres store driver is selected.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host" validate:"required"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	User            string        `mapstructure:"user" validate:"required"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name" validate:"required"`
	SSLMode         string        `mapstructure:"sslmode" validate:"oneof=disable require verify-ca verify-full"`
	MaxConns        int32         `mapstructure:"max_conns" validate:"min=1"`
	MinConns        int32         `mapstructure:"min_conns" validate:"min=0,ltefield=MaxConns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the connection URL; credentials are escaped.
//
// Precondition: Host, Port, User, and Name must be set.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	// Output is "stderr", "stdout", or a file path. Prompts use stdout, so
	// the default keeps logs off it.
	Output string `mapstructure:"output"`
}

// RulesConfig locates rule data. Empty directories select the embedded defaults.
type RulesConfig struct {
	Dir            string `mapstructure:"dir"`
	ConditionsDir  string `mapstructure:"conditions_dir"`
	SituationsFile string `mapstructure:"situations_file"`
	// ScriptsDir holds Lua house-rule scripts; empty disables hooks.
	ScriptsDir string `mapstructure:"scripts_dir"`
	// RerollLimit overrides the rule set's reroll cap when > 0.
	RerollLimit int `mapstructure:"reroll_limit" validate:"min=0"`
}

// StoreConfig selects where combatants and encounter logs live.
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=yaml postgres"`
	// Path is the encounter file of the yaml driver.
	Path string `mapstructure:"path" validate:"required_if=Driver yaml"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	// Textfile is written after every exchange; empty disables metrics.
	Textfile string `mapstructure:"textfile"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database" validate:"-"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Store    StoreConfig    `mapstructure:"store"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

var validate = newValidator()

// newValidator reports fields by their configuration keys.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
	})
	return v
}

// Validate checks every setting the selected store driver depends on.
//
// Postcondition: Returns nil, or one error naming every violated key.
func (c Config) Validate() error {
	var problems []string
	collect := func(prefix string, err error) {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			if err != nil {
				problems = append(problems, err.Error())
			}
			return
		}
		for _, fe := range verrs {
			problems = append(problems, describe(prefix, fe))
		}
	}
	collect("", validate.Struct(c))
	if c.Store.Driver == DriverPostgres {
		collect("database.", validate.Struct(c.Database))
	}
	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// describe renders fe as "<key> must ..." using configuration key names.
func describe(prefix string, fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	key := prefix + ns
	switch fe.Tag() {
	case "required", "required_if":
		return key + " must not be empty"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, strings.ReplaceAll(fe.Param(), " ", ", "), fmt.Sprint(fe.Value()))
	case "min":
		return fmt.Sprintf("%s must be >= %s, got %v", key, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be <= %s, got %v", key, fe.Param(), fe.Value())
	case "ltefield":
		return key + " must not exceed " + prefix + "max_conns"
	default:
		return fmt.Sprintf("%s fails %s", key, fe.Tag())
	}
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// New returns a Viper instance with defaults and DUEL_ environment overrides.
// When path is non-empty it is read as a YAML configuration file.
//
// Postcondition: Returns a configured Viper or a non-nil error.
func New(path string) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return v, nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v, err := New(path)
	if err != nil {
		return Config{}, err
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "duel")
	v.SetDefault("database.password", "duel")
	v.SetDefault("database.name", "duel")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 0)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("rules.dir", "")
	v.SetDefault("rules.conditions_dir", "")
	v.SetDefault("rules.situations_file", "")
	v.SetDefault("rules.scripts_dir", "")
	v.SetDefault("rules.reroll_limit", 0)

	v.SetDefault("store.driver", DriverYAML)
	v.SetDefault("store.path", "encounter.yaml")

	v.SetDefault("metrics.textfile", "")
}
