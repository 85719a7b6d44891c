// Package config resolves where sf talks to and with which credentials.
//
// Non-secret settings come from an optional YAML file and STOREFRONT_*
// environment variables. Tokens live in the OS keyring, one entry per
// profile.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	kmaps "github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"sigs.k8s.io/yaml"

	"github.com/storefront/storefront-cli/internal/api"
)

const (
	envPrefix     = "STOREFRONT_"
	envConfigPath = "STOREFRONT_CONFIG"

	DefaultTimeout = 30 * time.Second
	DefaultOutput  = "text"
)

// Settings are the non-secret options.
type Settings struct {
	BaseURL   string        `koanf:"base_url" json:"base_url"`
	Timeout   time.Duration `koanf:"timeout" json:"timeout"`
	Output    string        `koanf:"output" json:"output"`
	UserAgent string        `koanf:"user_agent" json:"user_agent,omitempty"`
	PageSize  int           `koanf:"page_size" json:"page_size"`

	path string
}

// Path is the settings file that was consulted, whether or not it exists.
func (s *Settings) Path() string { return s.path }

// SettingsPath returns STOREFRONT_CONFIG or
// $XDG_CONFIG_HOME/storefront-cli/config.yaml.
func SettingsPath() string {
	if p := strings.TrimSpace(os.Getenv(envConfigPath)); p != "" {
		return p
	}
	dir, err := userConfigDir()
	if err != nil || strings.TrimSpace(dir) == "" {
		return filepath.Join(".", "storefront-cli.yaml")
	}
	return filepath.Join(dir, serviceName, "config.yaml")
}

// LoadSettings reads SettingsPath.
func LoadSettings() (*Settings, error) {
	return LoadSettingsFrom(SettingsPath())
}

// LoadSettingsFrom layers the YAML file at path (when present) under the
// STOREFRONT_* environment and fills defaults for anything unset.
func LoadSettingsFrom(path string) (*Settings, error) {
	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), new(yamlParser), koanf.WithMergeFunc(mergeLegacyKeys)); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, err
	}

	s := &Settings{path: path}
	if err := k.UnmarshalWithConf("", s, koanfConf(s)); err != nil {
		return nil, err
	}
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.Output == "" {
		s.Output = DefaultOutput
	}
	if s.PageSize <= 0 {
		s.PageSize = api.DefaultPageSize
	}
	return s, nil
}

// Map returns the settings keyed by their file names, with the timeout in
// duration notation.
func (s *Settings) Map() map[string]any {
	m := map[string]any{
		"base_url":  s.BaseURL,
		"timeout":   s.Timeout.String(),
		"output":    s.Output,
		"page_size": s.PageSize,
	}
	if s.UserAgent != "" {
		m["user_agent"] = s.UserAgent
	}
	return m
}

// Set assigns one key from its string form, as accepted in the file.
func (s *Settings) Set(key, value string) error {
	k := koanf.New(".")
	for name, v := range s.Map() {
		if err := k.Set(name, v); err != nil {
			return err
		}
	}
	key = toSnake(strings.TrimSpace(key))
	if !k.Exists(key) && key != "user_agent" {
		return fmt.Errorf("unknown setting %q (known: base_url, timeout, output, user_agent, page_size)", key)
	}
	if err := k.Set(key, value); err != nil {
		return err
	}
	next := &Settings{path: s.path}
	if err := k.UnmarshalWithConf("", next, koanfConf(next)); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*s = *next
	return nil
}

// Save writes s to its path as YAML.
func (s *Settings) Save() error {
	data, err := yaml.Marshal(s.Map())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// LoadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// ReadEnvFile parses a dotenv file without touching the environment.
func ReadEnvFile(path string) (map[string]string, error) {
	return godotenv.Read(path)
}

type yamlParser struct{}

func (p *yamlParser) Unmarshal(b []byte) (map[string]any, error) {
	var out map[string]any
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *yamlParser) Marshal(o map[string]any) ([]byte, error) {
	return yaml.Marshal(o)
}

func koanfConf(out any) koanf.UnmarshalConf {
	return koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			Result:           out,
			WeaklyTypedInput: true,
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName) ||
					strings.EqualFold(mapKey, strings.ReplaceAll(fieldName, "_", ""))
			},
		},
	}
}

// mergeLegacyKeys accepts camelCase spellings (baseUrl, pageSize) in the
// YAML file by folding them onto the snake_case keys.
func mergeLegacyKeys(src, dst map[string]any) error {
	for key, value := range src {
		snake := toSnake(key)
		if snake != key {
			if _, ok := src[snake]; !ok {
				src[snake] = value
			}
			delete(src, key)
		}
	}
	kmaps.Merge(src, dst)
	return nil
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
