// Package config loads typeahead settings from a YAML file with TYPEAHEAD_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// ErrUnknownKey is returned by Set for keys it does not know.
var ErrUnknownKey = errors.New("unknown config key")

type Config struct {
	Keyboard KeyboardConfig `yaml:"keyboard"`
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
	Log      LogConfig      `yaml:"log"`
}

type KeyboardConfig struct {
	// Endpoint is the full URL of the prediction service, query excluded.
	Endpoint          string        `yaml:"endpoint"`
	PredictionTimeout time.Duration `yaml:"prediction_timeout"`
	KeyUpDelay        time.Duration `yaml:"key_up_delay"`
	Placeholder       string        `yaml:"placeholder"`
	Apology           string        `yaml:"apology"`
	Analytics         bool          `yaml:"analytics"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	CacheSize      int           `yaml:"cache_size"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	PredictTimeout time.Duration `yaml:"predict_timeout"`
}

// LLMConfig enables an OpenAI-compatible model behind the prediction service.
// When disabled the service answers from the built-in word tables.
type LLMConfig struct {
	Enabled     bool     `yaml:"enabled"`
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Keyboard: KeyboardConfig{
			Endpoint:          "http://127.0.0.1:5000/output",
			PredictionTimeout: 3 * time.Second,
			KeyUpDelay:        100 * time.Millisecond,
			Placeholder:       "Start typing...",
			Apology:           "Sorry, unable to process that key press.",
			Analytics:         true,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:5000",
			CacheSize:      100,
			CacheTTL:       5 * time.Minute,
			PredictTimeout: 3 * time.Second,
		},
		LLM: LLMConfig{
			BaseURL: "http://localhost:11434/v1/",
			Model:   "qwen2.5:3b",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults, then applies environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setters maps dotted keys, as accepted by Set and the environment, to the
// field they assign.
var setters = map[string]func(c *Config, v string) error{
	"keyboard.endpoint":           func(c *Config, v string) error { c.Keyboard.Endpoint = v; return nil },
	"keyboard.prediction_timeout": durationSetter(func(c *Config) *time.Duration { return &c.Keyboard.PredictionTimeout }),
	"keyboard.key_up_delay":       durationSetter(func(c *Config) *time.Duration { return &c.Keyboard.KeyUpDelay }),
	"keyboard.placeholder":        func(c *Config, v string) error { c.Keyboard.Placeholder = v; return nil },
	"keyboard.apology":            func(c *Config, v string) error { c.Keyboard.Apology = v; return nil },
	"keyboard.analytics":          boolSetter(func(c *Config) *bool { return &c.Keyboard.Analytics }),
	"server.addr":                 func(c *Config, v string) error { c.Server.Addr = v; return nil },
	"server.cache_size": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Server.CacheSize = n
		return nil
	},
	"server.cache_ttl":       durationSetter(func(c *Config) *time.Duration { return &c.Server.CacheTTL }),
	"server.predict_timeout": durationSetter(func(c *Config) *time.Duration { return &c.Server.PredictTimeout }),
	"llm.enabled":            boolSetter(func(c *Config) *bool { return &c.LLM.Enabled }),
	"llm.base_url":           func(c *Config, v string) error { c.LLM.BaseURL = v; return nil },
	"llm.api_key":            func(c *Config, v string) error { c.LLM.APIKey = v; return nil },
	"llm.model":              func(c *Config, v string) error { c.LLM.Model = v; return nil },
	"llm.temperature": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.LLM.Temperature = &f
		return nil
	},
	"log.level": func(c *Config, v string) error { c.Log.Level = v; return nil },
}

func durationSetter(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

// Keys lists every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EnvName maps a dotted key to its environment variable,
// e.g. keyboard.endpoint to TYPEAHEAD_KEYBOARD_ENDPOINT.
func EnvName(key string) string {
	return "TYPEAHEAD_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, key := range Keys() {
		v, ok := lookup(EnvName(key))
		if !ok {
			continue
		}
		if err := setters[key](c, v); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvName(key), err)
		}
	}
	return nil
}

// Set assigns one dotted key from its string form.
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := set(c, value); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
	}
	return nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Keyboard.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: keyboard.endpoint must be an http(s) URL, got %q", ErrInvalid, c.Keyboard.Endpoint)
	}
	if c.Keyboard.PredictionTimeout <= 0 {
		return fmt.Errorf("%w: keyboard.prediction_timeout must be positive", ErrInvalid)
	}
	if c.Keyboard.KeyUpDelay <= 0 {
		return fmt.Errorf("%w: keyboard.key_up_delay must be positive", ErrInvalid)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is empty", ErrInvalid)
	}
	if c.Server.CacheSize < 0 {
		return fmt.Errorf("%w: server.cache_size is negative", ErrInvalid)
	}
	if c.Server.CacheTTL < 0 || c.Server.PredictTimeout < 0 {
		return fmt.Errorf("%w: server durations must not be negative", ErrInvalid)
	}
	if c.LLM.Enabled && c.LLM.Model == "" {
		return fmt.Errorf("%w: llm.model is required when llm.enabled is set", ErrInvalid)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	return nil
}

// LogLevel returns the parsed log level, info when it does not parse.
func (c *Config) LogLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// SetInFile updates one key in the file at path, leaving other settings as
// they are. Concurrent writers are serialised with a lock file and the file is
// replaced atomically.
func SetInFile(path, key, value string) error {
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	unlock, err := lockConfig(path)
	if err != nil {
		return err
	}
	defer unlock()

	// Read the existing file while holding the lock
	cfg := Default()
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return writeAtomic(path, data)
}

// writeAtomic writes to a temp file, fsyncs and renames it over path.
func writeAtomic(path string, data []byte) error {
	configDir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(configDir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Chmod(0600); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	// Fsync the directory so the rename is persisted
	if dir, err := os.Open(configDir); err == nil {
		_ = dir.Sync()
		_ = dir.Close()
	}

	success = true
	return nil
}
