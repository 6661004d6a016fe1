package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/matst80/council-finder/pkg/common"
	"github.com/matst80/council-finder/pkg/sorting"
	"github.com/matst80/council-finder/pkg/store"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DataDir         string        `yaml:"dataDir"`
	CatalogFile     string        `yaml:"catalogFile"`
	ListenAddress   string        `yaml:"listenAddress"`
	DebugAddress    string        `yaml:"debugAddress"`
	RedisUrl        string        `yaml:"redisUrl"`
	RedisPassword   string        `yaml:"redisPassword"`
	RedisDB         int           `yaml:"redisDb"`
	RawCacheTTL     time.Duration `yaml:"rawCacheTtl"`
	RabbitUrl       string        `yaml:"rabbitUrl"`
	RabbitPrefix    string        `yaml:"rabbitPrefix"`
	Collation       string        `yaml:"collation"`
	PartialFailure  string        `yaml:"partialFailure"`
	LoadConcurrency int           `yaml:"loadConcurrency"`
	SessionLifetime time.Duration `yaml:"sessionLifetime"`
	Timeouts        Timeouts      `yaml:"timeouts"`
}

type Timeouts struct {
	ReadHeader time.Duration `yaml:"readHeader"`
	Read       time.Duration `yaml:"read"`
	Write      time.Duration `yaml:"write"`
	Idle       time.Duration `yaml:"idle"`
	Shutdown   time.Duration `yaml:"shutdown"`
	Hook       time.Duration `yaml:"hook"`
}

func Default() Config {
	return Config{
		DataDir:         "data",
		CatalogFile:     "data/catalog.yaml",
		ListenAddress:   ":8080",
		DebugAddress:    ":8081",
		RawCacheTTL:     time.Hour,
		RabbitPrefix:    "council",
		PartialFailure:  "silent",
		LoadConcurrency: 4,
		SessionLifetime: 2 * time.Hour,
		Timeouts: Timeouts{
			ReadHeader: 5 * time.Second,
			Read:       15 * time.Second,
			Write:      30 * time.Second,
			Idle:       60 * time.Second,
			Shutdown:   15 * time.Second,
			Hook:       5 * time.Second,
		},
	}
}

// Load reads path over the defaults and then applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	str := func(curr *string, env string) {
		if v, ok := os.LookupEnv(env); ok {
			*curr = v
		}
	}
	str(&c.DataDir, "DATA_DIR")
	str(&c.CatalogFile, "CATALOG_FILE")
	str(&c.ListenAddress, "LISTEN_ADDRESS")
	str(&c.DebugAddress, "DEBUG_ADDRESS")
	str(&c.RedisUrl, "REDIS_URL")
	str(&c.RedisPassword, "REDIS_PASSWORD")
	str(&c.RabbitUrl, "RABBIT_URL")
	str(&c.Collation, "COLLATION")
	str(&c.PartialFailure, "PARTIAL_FAILURE")
	if v, ok := os.LookupEnv("LOAD_CONCURRENCY"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.LoadConcurrency = n
		}
	}
	if v, ok := os.LookupEnv("REDIS_DB"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.RedisDB = n
		}
	}
	t := common.LoadTimeoutConfig(c.TimeoutConfig())
	c.Timeouts = Timeouts{
		ReadHeader: t.ReadHeader,
		Read:       t.Read,
		Write:      t.Write,
		Idle:       t.Idle,
		Shutdown:   t.Shutdown,
		Hook:       t.Hook,
	}
}

func (c *Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return err
	}
	if _, err := c.Collator(); err != nil {
		return err
	}
	if c.LoadConcurrency <= 0 {
		return fmt.Errorf("loadConcurrency must be positive, got %d", c.LoadConcurrency)
	}
	return nil
}

func (c *Config) Policy() (store.PartialFailurePolicy, error) {
	return store.ParsePartialFailurePolicy(c.PartialFailure)
}

func (c *Config) Collator() (sorting.Collator, error) {
	return sorting.NewCollator(c.Collation)
}

func (c *Config) TimeoutConfig() common.TimeoutConfig {
	return common.TimeoutConfig{
		ReadHeader: c.Timeouts.ReadHeader,
		Read:       c.Timeouts.Read,
		Write:      c.Timeouts.Write,
		Idle:       c.Timeouts.Idle,
		Shutdown:   c.Timeouts.Shutdown,
		Hook:       c.Timeouts.Hook,
	}
}
