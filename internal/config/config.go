// Package config loads planet-core settings from an optional YAML file, an
// optional .env file and PLANET_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/talgya/planet-core/internal/planet"
)

// Storage backends accepted by StorageConfig.Backend.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendFile     = "file"
)

// Generator limits. Rivers and settlements are bounded by the cell count.
const (
	MaxOctaves = 16
	MaxPlates  = 64
)

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Terrain TerrainConfig `yaml:"terrain"`
	API     APIConfig     `yaml:"api"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StorageConfig struct {
	Backend     string        `yaml:"backend"`
	Path        string        `yaml:"path"`         // sqlite database file
	DSN         string        `yaml:"dsn"`          // postgres connection string
	RedisURL    string        `yaml:"redis_url"`    // redis://host:port/db
	RedisPrefix string        `yaml:"redis_prefix"` // prepended to every slot key
	Dir         string        `yaml:"dir"`          // file backend directory
	Timeout     time.Duration `yaml:"timeout"`
}

// TerrainConfig carries the generator parameters the server and CLI use
// when asked for a fresh planet.
type TerrainConfig struct {
	Seed        int64   `yaml:"seed"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity"`
	Frequency   float64 `yaml:"frequency"`
	Plates      int     `yaml:"plates"`
	Rivers      int     `yaml:"rivers"`
}

type APIConfig struct {
	Addr        string   `yaml:"addr"`
	AdminKey    string   `yaml:"admin_key"`
	CORSOrigins []string `yaml:"cors_origins"`
	RateLimit   float64  `yaml:"rate_limit"` // requests per second per client; 0 disables
	RateBurst   int      `yaml:"rate_burst"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Storage: StorageConfig{
			Backend:     BackendSQLite,
			Path:        "data/planet.db",
			RedisPrefix: "planet-core:",
			Dir:         "data/slots",
			Timeout:     3 * time.Second,
		},
		Terrain: TerrainConfig{
			Seed:        42,
			Width:       64,
			Height:      32,
			Octaves:     6,
			Persistence: 0.5,
			Lacunarity:  2.0,
			Frequency:   1.5,
			Plates:      7,
			Rivers:      12,
		},
		API: APIConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
			RateLimit:   5,
			RateBurst:   20,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), a .env file if one exists and PLANET_* overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, set func(string) error) {
		if v, ok := lookup(key); ok && v != "" {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}

	str("PLANET_LOG_LEVEL", &c.Log.Level)
	str("PLANET_LOG_FORMAT", &c.Log.Format)

	str("PLANET_STORAGE_BACKEND", &c.Storage.Backend)
	str("PLANET_STORAGE_PATH", &c.Storage.Path)
	str("PLANET_STORAGE_DSN", &c.Storage.DSN)
	str("PLANET_REDIS_URL", &c.Storage.RedisURL)
	str("PLANET_REDIS_PREFIX", &c.Storage.RedisPrefix)
	str("PLANET_STORAGE_DIR", &c.Storage.Dir)
	num("PLANET_STORAGE_TIMEOUT", func(v string) (err error) {
		c.Storage.Timeout, err = time.ParseDuration(v)
		return err
	})

	num("PLANET_SEED", func(v string) (err error) {
		c.Terrain.Seed, err = strconv.ParseInt(v, 10, 64)
		return err
	})
	num("PLANET_OCTAVES", func(v string) (err error) {
		c.Terrain.Octaves, err = strconv.Atoi(v)
		return err
	})

	str("PLANET_API_ADDR", &c.API.Addr)
	str("PLANET_ADMIN_KEY", &c.API.AdminKey)
	if v, ok := lookup("PLANET_CORS_ORIGINS"); ok && v != "" {
		c.API.CORSOrigins = splitList(v)
	}
	num("PLANET_RATE_LIMIT", func(v string) (err error) {
		c.API.RateLimit, err = strconv.ParseFloat(v, 64)
		return err
	})
	num("PLANET_RATE_BURST", func(v string) (err error) {
		c.API.RateBurst, err = strconv.Atoi(v)
		return err
	})

	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not text or json", c.Log.Format))
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for the sqlite backend"))
		}
	case BackendPostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for the postgres backend"))
		}
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			errs = append(errs, errors.New("storage.redis_url is required for the redis backend"))
		}
	case BackendFile:
		if c.Storage.Dir == "" {
			errs = append(errs, errors.New("storage.dir is required for the file backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q is not supported", c.Storage.Backend))
	}
	if c.Storage.Timeout < 0 {
		errs = append(errs, errors.New("storage.timeout must not be negative"))
	}

	if c.Terrain.Octaves < 1 || c.Terrain.Octaves > MaxOctaves {
		errs = append(errs, fmt.Errorf("terrain.octaves must be in [1, %d], got %d", MaxOctaves, c.Terrain.Octaves))
	}
	t := c.Terrain
	gridOK := t.Width >= 1 && t.Height >= 1 && t.Width <= planet.MaxGridDimension && t.Height <= planet.MaxGridDimension
	if !gridOK {
		errs = append(errs, fmt.Errorf("terrain grid %dx%d outside [1, %d]", t.Width, t.Height, planet.MaxGridDimension))
	}
	if t.Plates < 0 || t.Plates > MaxPlates {
		errs = append(errs, fmt.Errorf("terrain.plates must be in [0, %d], got %d", MaxPlates, t.Plates))
	}
	if t.Rivers < 0 || (gridOK && t.Rivers > t.Width*t.Height) {
		errs = append(errs, fmt.Errorf("terrain.rivers must be in [0, cells], got %d", t.Rivers))
	}

	if c.API.RateLimit < 0 || c.API.RateBurst < 0 {
		errs = append(errs, errors.New("api.rate_limit and api.rate_burst must not be negative"))
	}

	return errors.Join(errs...)
}
