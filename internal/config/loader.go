package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	pmerrors "github.com/toyz/pluginmeta/internal/errors"
)

// Environment variable prefix for pluginmeta configuration
const envPrefix = "PLUGINMETA"

// DefaultConfigName is the config file looked up in the working directory
// when none is given
const DefaultConfigName = "pluginmeta"

// Loader handles loading and merging configuration from file and environment
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Registered keys make nested values visible to Unmarshal when they only
	// come from the environment.
	v.SetDefault("sourcemap.client", false)
	v.SetDefault("sourcemap.server", false)
	v.SetDefault("cache.size", DefaultCacheSize)
	v.SetDefault("registry", "")
	v.SetDefault("server.adapter", DefaultAdapter)
	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("log.level", DefaultLogLevel)

	return &Loader{v: v}
}

// Set overrides a key, taking precedence over file and environment
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// Load reads configFile, or pluginmeta.{yaml,yml,json,toml} from the working
// directory when configFile is empty. A missing default file is not an
// error. Environment variables take precedence over file values.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile != "" {
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(DefaultConfigName)
		l.v.AddConfigPath(".")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || (!errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist)) {
			return nil, pmerrors.WrapConfigurationError(configFile, "read", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, pmerrors.WrapConfigurationError(l.v.ConfigFileUsed(), "decode", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads, applies defaults and validates
func (l *Loader) LoadWithDefaults(configFile string) (*Config, error) {
	cfg, err := l.Load(configFile)
	if err != nil {
		return nil, err
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigFileUsed returns the file the last Load read, if any
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}
