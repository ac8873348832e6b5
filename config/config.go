package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/routecost/cache"
	"github.com/jonwraymond/routecost/codec"
	"github.com/jonwraymond/routecost/health"
	"github.com/jonwraymond/routecost/lookup"
	"github.com/jonwraymond/routecost/observe"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "ROUTECOST_CONFIG"

// Config is the top-level routecost configuration.
type Config struct {
	Profile ProfileConfig  `yaml:"profile" toml:"profile"`
	Cache   CacheConfig    `yaml:"cache" toml:"cache"`
	Codec   CodecConfig    `yaml:"codec" toml:"codec"`
	Health  HealthConfig   `yaml:"health" toml:"health"`
	Observe observe.Config `yaml:"observe" toml:"observe"`
}

// ProfileConfig names the metadata file and the contexts to evaluate.
type ProfileConfig struct {
	// Name labels logs and metrics. Default: the metadata file name.
	Name string `yaml:"name" toml:"name"`

	// Metadata is the lookup metadata file.
	Metadata string `yaml:"metadata" toml:"metadata"`

	// Contexts lists the evaluation contexts to load.
	// Default: [way, node]
	Contexts []string `yaml:"contexts" toml:"contexts"`
}

// CacheConfig configures the per-context result cache.
type CacheConfig struct {
	// Capacity is the bucket count. 1 keeps only the last result.
	// Default: 4096
	Capacity int `yaml:"capacity" toml:"capacity"`
}

// CodecConfig overrides the wire format.
type CodecConfig struct {
	// Format is varlength or fixed. Empty follows the metadata file.
	Format string `yaml:"format" toml:"format"`
}

// HealthConfig configures the cache hit-ratio checker.
type HealthConfig struct {
	WarningHitRatio  float64 `yaml:"warning_hit_ratio" toml:"warning_hit_ratio"`
	CriticalHitRatio float64 `yaml:"critical_hit_ratio" toml:"critical_hit_ratio"`
	MinRequests      uint64  `yaml:"min_requests" toml:"min_requests"`
}

// Default returns a configuration with every default applied and no
// metadata path.
func Default() *Config {
	return &Config{
		Profile: ProfileConfig{Contexts: []string{lookup.ContextWay, lookup.ContextNode}},
		Cache:   CacheConfig{Capacity: cache.DefaultCapacity},
		Observe: observe.DefaultConfig(),
	}
}

// Load loads the file named by ROUTECOST_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return nil, fmt.Errorf("%w: set %s or pass --config", ErrNoConfig, EnvVar)
	}
	return LoadFile(path)
}

// LoadFile loads and validates the configuration at path. Values absent from
// the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.resolvePaths(filepath.Dir(path)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolvePaths(dir string) error {
	if c.Profile.Metadata == "" {
		return nil
	}
	metadata, err := expandEnvStrict(c.Profile.Metadata)
	if err != nil {
		return fmt.Errorf("config: profile.metadata: %w", err)
	}
	c.Profile.Metadata = metadata
	if !filepath.IsAbs(c.Profile.Metadata) {
		c.Profile.Metadata = filepath.Join(dir, c.Profile.Metadata)
	}
	if c.Profile.Name == "" {
		c.Profile.Name = strings.TrimSuffix(filepath.Base(c.Profile.Metadata), filepath.Ext(c.Profile.Metadata))
	}
	return nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Profile.Metadata == "" {
		return ErrMissingMetadata
	}
	for _, name := range c.Profile.Contexts {
		if name != lookup.ContextWay && name != lookup.ContextNode {
			return fmt.Errorf("%w: %q", ErrUnknownContext, name)
		}
	}

	if err := c.CachePolicy().Validate(); err != nil {
		return fmt.Errorf("config: cache: %w", err)
	}
	if c.Codec.Format != "" {
		if _, err := codec.ParseFormat(c.Codec.Format); err != nil {
			return fmt.Errorf("config: codec: %w", err)
		}
	}

	for _, r := range []float64{c.Health.WarningHitRatio, c.Health.CriticalHitRatio} {
		if r < 0 || r > 1 {
			return fmt.Errorf("%w: got %v", ErrInvalidHitRatio, r)
		}
	}

	if err := c.Observe.Validate(); err != nil {
		return fmt.Errorf("config: observe: %w", err)
	}
	return nil
}

// HasContext reports whether name is one of the configured contexts.
func (c *Config) HasContext(name string) bool {
	return slices.Contains(c.Profile.Contexts, name)
}

// CachePolicy returns the cache policy for each evaluation context.
func (c *Config) CachePolicy() cache.Policy {
	return cache.Policy{Capacity: c.Cache.Capacity}
}

// CodecFormat returns the configured wire format, falling back to the one
// the metadata file asks for.
func (c *Config) CodecFormat(md lookup.Metadata) codec.Format {
	if c.Codec.Format == "" {
		return codec.FormatFor(md)
	}
	f, err := codec.ParseFormat(c.Codec.Format)
	if err != nil {
		return codec.FormatFor(md)
	}
	return f
}

// CacheChecker returns the hit-ratio thresholds for health checks.
func (c *Config) CacheChecker() health.CacheCheckerConfig {
	return health.CacheCheckerConfig{
		WarningHitRatio:  c.Health.WarningHitRatio,
		CriticalHitRatio: c.Health.CriticalHitRatio,
		MinRequests:      c.Health.MinRequests,
	}
}
