package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

var supportedDrivers = map[string]struct{}{
	"mongo":    {},
	"postgres": {},
	"sqlite":   {},
}

// Load reads the YAML file at path when it exists and then applies environment
// overrides. An empty path reads the environment only.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	path = strings.TrimSpace(path)
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			return &cfg, cfg.Validate()
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config %s: %w", path, err)
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return &cfg, cfg.Validate()
}

func (c *AppConfig) Validate() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	if _, ok := supportedDrivers[c.DBDriver]; !ok {
		return fmt.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	if strings.TrimSpace(c.DBURL) == "" {
		return errors.New("db_url is required")
	}
	if c.IsMongo() && strings.TrimSpace(c.MongoDatabase) == "" {
		return errors.New("mongo_database is required for the mongo driver")
	}
	if strings.TrimSpace(c.Uploads.Dir) == "" {
		return errors.New("uploads.dir is required")
	}
	return nil
}

// Usage renders the environment variable reference.
func Usage() string {
	var cfg AppConfig
	desc, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return err.Error()
	}
	return desc
}
