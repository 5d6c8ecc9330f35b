// Package config resolves portlist settings from flags, environment, an
// optional YAML file and built-in defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/naclports/portlist/internal/paths"
)

const (
	// DefaultSourceURL is the source-browsing prefix all report links hang off
	DefaultSourceURL = "https://code.google.com/p/naclports/source/browse/trunk/src"
	// DefaultGenerator is the path of this tool inside the tree, linked from
	// the report header
	DefaultGenerator = "build_tools/portlist"

	EnvPrefix = "PORTLIST"
)

// Viper keys
const (
	KeyRoot      = "root"
	KeySourceURL = "src_url"
	KeyGenerator = "generator"
	KeyVerbose   = "verbose"
)

// Config holds the resolved settings for one run
type Config struct {
	Root      string `mapstructure:"root" yaml:"root"`
	SourceURL string `mapstructure:"src_url" yaml:"src_url"`
	Generator string `mapstructure:"generator" yaml:"generator"`
	Verbose   bool   `mapstructure:"verbose" yaml:"verbose"`
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeySourceURL, DefaultSourceURL)
	v.SetDefault(KeyGenerator, DefaultGenerator)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyRoot, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file, if any, and unmarshals the result. An explicit
// configFile must exist; the default location is optional.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigFile(paths.DefaultConfigPath())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", paths.DefaultConfigPath(), err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolve() error {
	if c.SourceURL == "" {
		return fmt.Errorf("src_url must not be empty")
	}
	c.SourceURL = strings.TrimRight(c.SourceURL, "/")

	if c.Root == "" {
		root, err := paths.DefaultRoot()
		if err != nil {
			return err
		}
		c.Root = root
	}
	if c.Root == "~" || strings.HasPrefix(c.Root, "~/") {
		if home, _ := os.UserHomeDir(); home != "" {
			c.Root = filepath.Join(home, strings.TrimPrefix(c.Root, "~"))
		}
	}
	abs, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("invalid root %s: %w", c.Root, err)
	}
	c.Root = abs
	return nil
}
