package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. JOBCORE_DATA_MONGODB_URI.
const EnvPrefix = "JOBCORE"

var (
	config *Config
	path   string
	mu     sync.RWMutex
)

// Config represents the configuration implementation.
type Config struct {
	AppName     string
	Environment string
	Server      *Server
	Logger      *Logger
	Data        *Data
	Auth        *Auth
	RateLimit   *RateLimit
	CORS        *CORS
	Views       *Views
	Employer    *Employer
	Observes    *Observes
	Viper       *viper.Viper
}

// IsProd reports whether the service runs in production.
func (c *Config) IsProd() bool {
	return strings.EqualFold(c.Environment, "production") || strings.EqualFold(c.Environment, "prod")
}

// Init loads the configuration from configPath (or the default search
// paths when empty) and installs it as the process-wide configuration.
func Init(configPath string) (*Config, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	mu.Lock()
	config, path = cfg, configPath
	mu.Unlock()
	return cfg, nil
}

// GetConfig returns the configuration.
func GetConfig() (*Config, error) {
	mu.RLock()
	cfg := config
	mu.RUnlock()
	if cfg != nil {
		return cfg, nil
	}
	return Init(path)
}

// LoadConfig loads the configuration from the file. An explicit path must
// exist; without one, a missing file falls back to defaults plus environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("/etc/jobcore")
		v.AddConfigPath("$HOME/.jobcore")
		v.AddConfigPath(".")
		if ex, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(ex))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		AppName:     getStringOrDefault(v, "app_name", "jobcore"),
		Environment: getStringOrDefault(v, "environment", "development"),
		Server:      getServerConfig(v),
		Logger:      getLoggerConfig(v),
		Data:        getDataConfig(v),
		Auth:        getAuthConfig(v),
		RateLimit:   getRateLimitConfig(v),
		CORS:        getCORSConfig(v),
		Views:       &Views{Timeout: getDurationOrDefault(v, "views.timeout", 3*time.Second)},
		Employer:    getEmployerConfig(v),
		Observes:    getObservesConfig(v),
		Viper:       v,
	}
	return cfg, nil
}

// Reload reloads the configuration from the file.
func Reload() error {
	mu.RLock()
	p := path
	mu.RUnlock()

	newConfig, err := LoadConfig(p)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	mu.Lock()
	config = newConfig
	mu.Unlock()
	return nil
}

// Watch watches the configuration file and calls callback with the reloaded
// configuration, or onError when the new file cannot be loaded.
func Watch(callback func(*Config), onError func(error)) {
	mu.RLock()
	cfg := config
	mu.RUnlock()
	if cfg == nil || cfg.Viper.ConfigFileUsed() == "" {
		return
	}
	cfg.Viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		if err := Reload(); err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		mu.RLock()
		reloaded := config
		mu.RUnlock()
		callback(reloaded)
	})
	cfg.Viper.WatchConfig()
}
