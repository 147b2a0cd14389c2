// Package config reads service settings from the environment, optionally layered over a
// config file named by CONFIG_FILE. Environment variables always win.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

var (
	mu  sync.RWMutex
	std = newViper()
)

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	return v
}

// Load reads path (yaml, json, toml or .env) beneath the environment. An empty path
// falls back to CONFIG_FILE; when neither is set Load is a no-op.
func Load(path string) error {
	if path == "" {
		path = String("CONFIG_FILE", "")
	}
	if path == "" {
		return nil
	}
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	mu.Lock()
	std = v
	mu.Unlock()
	return nil
}

// Reset drops any loaded file. Tests use it to isolate cases.
func Reset() {
	mu.Lock()
	std = newViper()
	mu.Unlock()
}

func get(key string) string {
	mu.RLock()
	defer mu.RUnlock()
	return strings.TrimSpace(std.GetString(key))
}

func String(key, fallback string) string {
	v := get(key)
	if v == "" {
		return fallback
	}
	return v
}

func RequiredString(key string) (string, error) {
	v := get(key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func Port(key, fallback string) (string, error) {
	v := String(key, fallback)
	p, err := strconv.Atoi(v)
	if err != nil || p < 1 || p > 65535 {
		return "", fmt.Errorf("%s must be a valid TCP port (got %q)", key, v)
	}
	return v, nil
}

func Int(key string, fallback int) (int, error) {
	v := get(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got %q)", key, v)
	}
	return n, nil
}

// Bool accepts 1/0, true/false, yes/no and on/off; anything else yields fallback.
func Bool(key string, fallback bool) bool {
	switch strings.ToLower(get(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

// List splits a comma-separated value, dropping blanks.
func List(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(String(key, fallback), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
