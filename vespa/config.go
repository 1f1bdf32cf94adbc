// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package vespa

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Default configuration values.
const (
	DefaultMaxRetryAttempts = 8
	DefaultRetryDelay       = 2 * time.Second
	DefaultPage             = 10
	DefaultUpdateInterval   = time.Hour
	DefaultNamespace        = "namespace"
	DefaultCluster          = "my_content"
)

// Config holds transport and library-wide settings.
type Config struct {
	// QueryEndpoint is the base URL of the query API container.
	QueryEndpoint string `koanf:"queryEndpoint"`
	// FeedEndpoint is the base URL of the document API container.
	FeedEndpoint string `koanf:"feedEndpoint"`
	// Namespace and Cluster are passed through to the document API.
	Namespace string `koanf:"namespace"`
	Cluster   string `koanf:"cluster"`

	// MaxRetryAttempts bounds the insert retry loop.
	MaxRetryAttempts int `koanf:"maxRetryAttempts"`
	// RetryDelay is the base delay of the exponential backoff.
	RetryDelay time.Duration `koanf:"retryDelay"`

	// Page is the default hit limit when a caller omits one.
	Page int `koanf:"page"`
	// IsDebugMode adds rank-feature listing and tracing to payloads.
	IsDebugMode bool `koanf:"isDebugMode"`
	// UserQueryUpdateInterval is the minimum interval between updates of
	// a user's query-history record.
	UserQueryUpdateInterval time.Duration `koanf:"userQueryUpdateInterval"`

	// SchemaSources lists every schema the cluster serves, in the order
	// queries should name them.
	SchemaSources []string `koanf:"schemaSources"`
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		QueryEndpoint:           "http://localhost:8080",
		FeedEndpoint:            "http://localhost:8080",
		Namespace:               DefaultNamespace,
		Cluster:                 DefaultCluster,
		MaxRetryAttempts:        DefaultMaxRetryAttempts,
		RetryDelay:              DefaultRetryDelay,
		Page:                    DefaultPage,
		UserQueryUpdateInterval: DefaultUpdateInterval,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.QueryEndpoint == "" {
		return oops.Code("CONFIG_INVALID").Errorf("queryEndpoint is required")
	}
	if c.FeedEndpoint == "" {
		return oops.Code("CONFIG_INVALID").Errorf("feedEndpoint is required")
	}
	if c.Namespace == "" {
		return oops.Code("CONFIG_INVALID").Errorf("namespace is required")
	}
	if c.MaxRetryAttempts < 0 {
		return oops.Code("CONFIG_INVALID").Errorf("maxRetryAttempts cannot be negative")
	}
	if c.RetryDelay <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("retryDelay must be positive")
	}
	if c.Page <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("page must be positive")
	}
	return nil
}

// LoadConfig layers defaults, an optional YAML file, and optional command
// line flags, in that order.
func LoadConfig(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := DefaultConfig()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").
				With("path", path).
				Wrap(err)
		}
	}
	if flags != nil {
		// Only explicitly-set flags participate, otherwise flag defaults
		// would clobber file values and built-in defaults.
		changed := pflag.NewFlagSet("changed", pflag.ContinueOnError)
		flags.Visit(func(f *pflag.Flag) { changed.AddFlag(f) })
		if err := k.Load(posflag.Provider(changed, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
		}
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
