package sqlite

import "fmt"

const (
	defaultBusyTimeout = 5000
	defaultKey         = "default"
)

// Config holds the SQLite offset store configuration.
type Config struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// Key identifies the bot whose cursor is stored, so several bots can
	// share one database. Defaults to "default".
	Key string `yaml:"key"`

	// BusyTimeout is the milliseconds to wait on a busy lock. Defaults to 5000.
	BusyTimeout int `yaml:"busy_timeout"`
}

func (c *Config) defaults() {
	if c.Key == "" {
		c.Key = defaultKey
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = defaultBusyTimeout
	}
}

func (c *Config) validate() error {
	if c.Path == "" {
		return fmt.Errorf("sqlite: path is required")
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("sqlite: busy_timeout must be non-negative, got %d", c.BusyTimeout)
	}
	return nil
}
