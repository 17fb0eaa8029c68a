// Package config loads the docdir CLI configuration from YAML and builds the
// store, directory options and logger it describes.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jmgilman/go/docdir/core"
	"github.com/jmgilman/go/docdir/errors"
	"github.com/jmgilman/go/docdir/input"
	"github.com/jmgilman/go/docdir/store/postgres"
	"github.com/jmgilman/go/docdir/store/redis"
)

// Backend names.
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMinio    = "minio"
)

// Config is the top-level configuration document.
type Config struct {
	Namespace NamespaceConfig `yaml:"namespace"`
	Backend   string          `yaml:"backend"`
	Badger    BadgerConfig    `yaml:"badger"`
	Redis     RedisConfig     `yaml:"redis"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Minio     MinioConfig     `yaml:"minio"`
	Directory DirectoryConfig `yaml:"directory"`
	Log       LogConfig       `yaml:"log"`
}

// NamespaceConfig selects the index generation.
type NamespaceConfig struct {
	Category string `yaml:"category"`
	Version  int64  `yaml:"version"`
}

// Namespace returns the configured namespace.
func (n NamespaceConfig) Namespace() core.Namespace {
	return core.Namespace{Category: n.Category, Version: n.Version}
}

// BadgerConfig configures the embedded BadgerDB store.
type BadgerConfig struct {
	Dir      string `yaml:"dir"`
	InMemory bool   `yaml:"in_memory"`
}

// RedisConfig configures the Redis store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// PostgresConfig configures the PostgreSQL store.
type PostgresConfig struct {
	URL      string `yaml:"url"`
	Table    string `yaml:"table"`
	MaxConns int32  `yaml:"max_conns"`

	// Migrate creates the table on open.
	Migrate bool `yaml:"migrate"`
}

// MinioConfig configures the MinIO/S3 store.
type MinioConfig struct {
	Endpoint        string `yaml:"endpoint"`
	Bucket          string `yaml:"bucket"`
	AccessKey       string `yaml:"access_key"`
	SecretKey       string `yaml:"secret_key"`
	UseSSL          bool   `yaml:"use_ssl"`
	Prefix          string `yaml:"prefix"`
	StatConcurrency int    `yaml:"stat_concurrency"`

	// CreateBucket creates the bucket on open if it is missing.
	CreateBucket bool `yaml:"create_bucket"`
}

// DirectoryConfig holds directory behaviour switches.
type DirectoryConfig struct {
	StrictUniqueness     bool `yaml:"strict_uniqueness"`
	ReadBufferSize       int  `yaml:"read_buffer_size"`
	AllowRenameOverwrite bool `yaml:"allow_rename_overwrite"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns the configuration used for keys a document leaves out.
func Default() Config {
	return Config{
		Backend:   BackendMemory,
		Badger:    BadgerConfig{Dir: "./data"},
		Redis:     RedisConfig{Addr: "localhost:6379", Prefix: redis.DefaultPrefix},
		Postgres:  PostgresConfig{Table: postgres.DefaultTable},
		Directory: DirectoryConfig{ReadBufferSize: input.DefaultBufferSize},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInvalidConfig, "failed to read config file %s", path)
	}
	return Parse(data)
}

// Parse decodes a YAML document over Default, expanding ${VAR} references
// from the environment first, and validates the result. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(data)))))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to parse config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration. Only the section of the selected
// backend is checked.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "invalid config")
	}
	return nil
}

func (c *Config) validate() error {
	// The namespace may come from command-line flags instead.
	if c.Namespace != (NamespaceConfig{}) {
		if err := c.Namespace.Namespace().Validate(); err != nil {
			return fmt.Errorf("namespace: %w", err)
		}
	}

	switch c.Backend {
	case BackendMemory:
	case BackendBadger:
		if c.Badger.Dir == "" && !c.Badger.InMemory {
			return fmt.Errorf("badger.dir is required unless badger.in_memory is set")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("redis.db must not be negative")
		}
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("postgres.url is required")
		}
		if c.Postgres.MaxConns < 0 {
			return fmt.Errorf("postgres.max_conns must not be negative")
		}
	case BackendMinio:
		if c.Minio.Endpoint == "" {
			return fmt.Errorf("minio.endpoint is required")
		}
		if c.Minio.Bucket == "" {
			return fmt.Errorf("minio.bucket is required")
		}
		if c.Minio.AccessKey == "" {
			return fmt.Errorf("minio.access_key is required")
		}
		if c.Minio.SecretKey == "" {
			return fmt.Errorf("minio.secret_key is required")
		}
		if c.Minio.StatConcurrency < 0 {
			return fmt.Errorf("minio.stat_concurrency must not be negative")
		}
	default:
		return fmt.Errorf("backend %q is not one of memory, badger, redis, postgres, minio", c.Backend)
	}

	if c.Directory.ReadBufferSize < 0 {
		return fmt.Errorf("directory.read_buffer_size must not be negative")
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q is not one of text, json", c.Log.Format)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
