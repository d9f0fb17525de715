package quorly

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/viant/afs"
	"github.com/viant/quorly/service/meta"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the engine configuration. It can
// be populated from YAML, JSON or environment variables; functional options
// passed to New override whatever the config carries.
type Config struct {
	Board   BoardConfig   `json:"board" yaml:"board"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Queue   QueueConfig   `json:"queue" yaml:"queue"`
}

// BoardConfig seeds the owner registry.
type BoardConfig struct {
	Owners   []string `json:"owners" yaml:"owners" env:"QUORLY_OWNERS" envSeparator:","`
	Required int      `json:"required" yaml:"required" env:"QUORLY_REQUIRED"`
}

// JournalConfig selects the journal backing store.
type JournalConfig struct {
	// Vendor is "memory" (default) or "fs"
	Vendor string `json:"vendor" yaml:"vendor" env:"QUORLY_JOURNAL_VENDOR"`
	// BaseURL roots the fs journal, e.g. file:///var/lib/quorly/journal
	BaseURL string `json:"baseURL" yaml:"baseURL" env:"QUORLY_JOURNAL_BASE_URL"`
}

// QueueConfig tunes the journal fan-out queue.
type QueueConfig struct {
	Buffer     int           `json:"buffer" yaml:"buffer" env:"QUORLY_QUEUE_BUFFER"`
	MaxRetries int           `json:"maxRetries" yaml:"maxRetries" env:"QUORLY_QUEUE_MAX_RETRIES"`
	RetryDelay time.Duration `json:"retryDelay" yaml:"retryDelay" env:"QUORLY_QUEUE_RETRY_DELAY"`
	DeadLetter bool          `json:"deadLetter" yaml:"deadLetter" env:"QUORLY_QUEUE_DEAD_LETTER"`
}

const (
	// JournalVendorMemory keeps records in process memory.
	JournalVendorMemory = "memory"
	// JournalVendorFS persists one JSON file per record under Journal.BaseURL.
	JournalVendorFS = "fs"
)

// DefaultConfig returns a Config populated with the package defaults. Callers
// may modify the returned struct before passing it to New via WithConfig.
func DefaultConfig() *Config {
	return &Config{
		Journal: JournalConfig{
			Vendor: JournalVendorMemory,
		},
		Queue: QueueConfig{
			Buffer:     100,
			MaxRetries: 3,
			RetryDelay: 100 * time.Millisecond,
			DeadLetter: true,
		},
	}
}

// Validate returns an error describing the first invalid setting, or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if len(c.Board.Owners) > 0 {
		if c.Board.Required < 1 || c.Board.Required > len(c.Board.Owners) {
			return fmt.Errorf("board.required %v of %v owners is out of range", c.Board.Required, len(c.Board.Owners))
		}
	}
	switch c.Journal.Vendor {
	case "", JournalVendorMemory:
	case JournalVendorFS:
		if c.Journal.BaseURL == "" {
			return fmt.Errorf("journal.baseURL is required for the %v vendor", JournalVendorFS)
		}
	default:
		return fmt.Errorf("journal.vendor %q is not supported", c.Journal.Vendor)
	}
	if c.Queue.Buffer < 0 {
		return fmt.Errorf("queue.buffer must not be negative")
	}
	return nil
}

// LoadConfig reads a YAML config from the supplied URL (any scheme the file
// service understands, e.g. file://, mem://, s3://) over the defaults.
// ${env.KEY} expressions in the document are expanded before decoding.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %v: %w", URL, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal([]byte(meta.ExpandEnv(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse config %v: %w", URL, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ConfigFromEnv builds a config from QUORLY_* environment variables over the
// defaults.
func ConfigFromEnv() (*Config, error) {
	config := DefaultConfig()
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
