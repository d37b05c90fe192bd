package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"
)

type Config struct {
	Env         string   `env:"BENDER_ENV" default:"development"`
	Addr        string   `env:"BENDER_ADDR" default:":5000"`
	Database    string   `env:"DATABASE"`
	DebugRaw    string   `env:"DEBUG"`
	CORSOrigins []string `env:"CORS_ORIGINS"`
	LogLevel    string   `env:"LOG_LEVEL" default:"info"`
	LogFile     string   `env:"LOG_FILE"`
	APIVersion  string   `env:"API_VERSION" default:"1.0.0"`
	BcryptCost  int      `env:"BCRYPT_COST" default:"0"`

	Debug     bool
	BuildDate time.Time
}

// profile holds the defaults each environment applies to unset values.
type profile struct {
	database string
	debug    bool
}

var profiles = map[string]profile{
	EnvDevelopment: {database: "db.sqlite", debug: true},
	EnvTesting:     {database: "test.sqlite", debug: false},
	EnvProduction:  {database: "db.sqlite", debug: false},
}

// Load reads an optional .env file, then the process environment, and fills
// the remaining gaps from the selected profile.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Load(&cfg, &env.Options{SliceSep: ","}); err != nil {
		return Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := cfg.applyProfile(); err != nil {
		return Config{}, err
	}
	cfg.BuildDate = time.Now().UTC()
	return cfg, nil
}

func (c *Config) applyProfile() error {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env == "" {
		c.Env = EnvDevelopment
	}
	p, ok := profiles[c.Env]
	if !ok {
		return fmt.Errorf("unknown BENDER_ENV %q", c.Env)
	}
	if c.Database == "" {
		c.Database = p.database
	}
	c.Debug = p.debug
	if c.DebugRaw != "" {
		debug, err := strconv.ParseBool(c.DebugRaw)
		if err != nil {
			return fmt.Errorf("DEBUG must be a boolean: %w", err)
		}
		c.Debug = debug
	}
	origins := c.CORSOrigins[:0]
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c.CORSOrigins = origins
	if c.BcryptCost != 0 && (c.BcryptCost < 4 || c.BcryptCost > 31) {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	return nil
}

// AllowAllOrigins reports whether CORS is open to any origin.
func (c Config) AllowAllOrigins() bool {
	for _, o := range c.CORSOrigins {
		if o == "*" {
			return true
		}
	}
	return len(c.CORSOrigins) == 0
}

func (c Config) String() string {
	return fmt.Sprintf("env=%s addr=%s database=%s debug=%t cors=%s version=%s",
		c.Env, c.Addr, c.Database, c.Debug, strings.Join(c.CORSOrigins, ","), c.APIVersion)
}
