// Package config holds the configuration of the observatory API service.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/observatory/pkg/config"
	"github.com/abgdnv/observatory/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Storage    StorageConfig           `koanf:"storage"`
	Query      QueryConfig             `koanf:"query"`
	Admin      AdminConfig             `koanf:"admin"`
	Token      config.TokenConfig      `koanf:"token"`
	Nats       config.NATSConfig       `koanf:"nats"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
}

// StorageConfig selects the entity store. The memory driver keeps nothing across restarts.
type StorageConfig struct {
	Driver      string        `koanf:"driver"`
	LockTimeout time.Duration `koanf:"locktimeout"`
}

type QueryConfig struct {
	MaxCount int64 `koanf:"maxcount"`
}

// AdminConfig is the superuser created at start-up. An empty username disables it.
type AdminConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())

	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Storage.Driver))
	b.WriteString(fmt.Sprintf("  lockTimeout: %s\n", c.Storage.LockTimeout))
	if c.Storage.Driver == DriverPostgres {
		b.WriteString(c.Database.String())
	}

	b.WriteString("\n--- Query ---\n")
	b.WriteString(fmt.Sprintf("  maxCount: %d\n", c.Query.MaxCount))

	b.WriteString("\n--- Admin ---\n")
	if c.Admin.Username == "" {
		b.WriteString("  username: <not configured>\n")
	} else {
		b.WriteString(fmt.Sprintf("  username: %s\n", c.Admin.Username))
		b.WriteString("  password: ****\n")
	}

	b.WriteString(c.Token.String())
	b.WriteString(c.Nats.String())
	b.WriteString(c.Resilience.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	switch c.Storage.Driver {
	case DriverPostgres:
		if err := c.Database.Validate(); err != nil {
			return err
		}
		if c.Storage.LockTimeout <= 0 {
			return fmt.Errorf("storage lock timeout must be positive")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage driver must be %s or %s: %q", DriverPostgres, DriverMemory, c.Storage.Driver)
	}
	if c.Query.MaxCount <= 0 {
		return fmt.Errorf("query max count must be positive")
	}
	if c.Admin.Username != "" && c.Admin.Password == "" {
		return fmt.Errorf("admin password is required when admin username is set")
	}
	if err := c.Token.Validate(); err != nil {
		return err
	}
	if c.Nats.Enabled {
		if err := c.Nats.Validate(); err != nil {
			return err
		}
		if err := c.Resilience.Validate(); err != nil {
			return err
		}
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	return nil
}
