package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/cmsroute/pkg/logger"
	"github.com/dmitrymomot/cmsroute/pkg/redis"
	"github.com/dmitrymomot/cmsroute/pkg/rewrite"
	"github.com/dmitrymomot/cmsroute/pkg/website"
)

// Config is the process configuration of a cmsroute deployment.
type Config struct {
	// BaseURL prefixes generated URLs. Empty derives it from the request.
	BaseURL  string `env:"CMSROUTE_BASE_URL"`
	HTTPAddr string `env:"CMSROUTE_HTTP_ADDR" envDefault:":8080"`

	// CacheTTL bounds compiled tables and rewrite snapshots. Zero or
	// negative keeps them until an explicit flush.
	CacheTTL time.Duration `env:"CMSROUTE_CACHE_TTL" envDefault:"0s"`

	// CacheMaxEntries bounds the in-process cache used without Redis.
	// Zero is unbounded.
	CacheMaxEntries int `env:"CMSROUTE_CACHE_MAX_ENTRIES" envDefault:"0"`

	// Maintenance serves only routes that work offline (the admin area).
	Maintenance bool `env:"CMSROUTE_MAINTENANCE" envDefault:"false"`

	// StrictRouteNames rejects duplicate route names when tables are built.
	StrictRouteNames bool `env:"CMSROUTE_STRICT_ROUTE_NAMES" envDefault:"false"`

	// Sites lists host=website_id pairs.
	Sites          []string `env:"CMSROUTE_SITES" envSeparator:","`
	DefaultWebsite int64    `env:"CMSROUTE_DEFAULT_WEBSITE" envDefault:"0"`

	ShutdownTimeout time.Duration `env:"CMSROUTE_SHUTDOWN_TIMEOUT" envDefault:"15s"`

	Logger  logger.Config
	Redis   redis.Config
	Rewrite rewrite.Config
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrParseConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFrom parses the configuration from an explicit environment map,
// ignoring the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return Config{}, errors.Join(ErrParseConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints the tags cannot express.
func (c Config) Validate() error {
	switch c.Rewrite.Driver {
	case rewrite.DriverMemory, rewrite.DriverSQLite, "":
	case rewrite.DriverPostgres:
		if c.Rewrite.DB.ConnectionString == "" {
			return errors.Join(ErrInvalidConfig, errors.New("DATABASE_CONN_URL is required for the postgres rewrite driver"))
		}
	default:
		return errors.Join(ErrInvalidConfig, rewrite.ErrUnknownDriver)
	}
	if _, err := website.ParseSites(c.Sites); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	return nil
}

// Websites builds the domain resolver from Sites.
func (c Config) Websites() *website.Resolver {
	sites, _ := website.ParseSites(c.Sites)
	return website.New(sites, c.DefaultWebsite)
}
