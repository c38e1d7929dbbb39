// Package config loads pluginmeta settings from file and environment.
package config

import (
	"net"
	"strings"

	"github.com/toyz/pluginmeta/internal/errors"
	"github.com/toyz/pluginmeta/internal/registry"
	"github.com/toyz/pluginmeta/internal/utils"
)

// Defaults
const (
	DefaultCacheSize = utils.DefaultCacheSize
	DefaultAdapter   = "gin"
	DefaultAddr      = ":7420"
	DefaultLogLevel  = "info"
)

// Adapters lists the transports the transform server can run on
var Adapters = []string{"gin", "echo", "fiber"}

// LogLevels lists the accepted log.level values
var LogLevels = []string{"quiet", "info", "verbose", "debug"}

// Config is the resolved tool configuration
type Config struct {
	Sourcemap SourcemapConfig `mapstructure:"sourcemap" yaml:"sourcemap"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	Registry  string          `mapstructure:"registry" yaml:"registry"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// SourcemapConfig mirrors the build's per-target source map switches
type SourcemapConfig struct {
	Client bool `mapstructure:"client" yaml:"client"`
	Server bool `mapstructure:"server" yaml:"server"`
}

// CacheConfig bounds the extractor's metadata cache
type CacheConfig struct {
	Size int `mapstructure:"size" yaml:"size"`
}

// ServerConfig configures the transform server
type ServerConfig struct {
	Adapter string `mapstructure:"adapter" yaml:"adapter"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// LogConfig configures diagnostics
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// WithDefaults returns a copy with zero values replaced by defaults
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.Cache.Size == 0 {
		out.Cache.Size = DefaultCacheSize
	}
	if out.Server.Adapter == "" {
		out.Server.Adapter = DefaultAdapter
	}
	if out.Server.Addr == "" {
		out.Server.Addr = DefaultAddr
	}
	if out.Log.Level == "" {
		out.Log.Level = DefaultLogLevel
	}
	return &out
}

// Validate checks the configuration. Every problem is reported.
func (c *Config) Validate() error {
	problems := errors.NewMultipleErrors()

	check := func(key string, err error) {
		if err != nil {
			problems.Add(errors.WrapConfigurationError(key, "validate", err))
		}
	}

	check("cache.size", utils.AtLeast("cache.size", 0)(c.Cache.Size))
	check("server.adapter", utils.IsOneOf("server.adapter", Adapters...)(c.Server.Adapter))
	check("server.addr", addrValidator.Validate(c.Server.Addr))
	check("registry", registryValidator(c.Registry))
	check("log.level", utils.IsOneOf("log.level", LogLevels...)(c.Log.Level))

	return problems.ErrorOrNil()
}

var addrValidator = utils.NewValidatorChain(utils.NotEmpty("server.addr")).
	Add(utils.Custom("server.addr", "must be host:port", func(addr string) bool {
		_, _, err := net.SplitHostPort(addr)
		return err == nil
	}))

var registryValidator = utils.Conditional(
	func(path string) bool { return strings.TrimSpace(path) != "" },
	utils.Custom("registry", "must end in .json, .yaml, .yml or .toml", func(path string) bool {
		_, err := registry.FormatForPath(path)
		return err == nil
	}),
)
