package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/storefront/storefront-cli/internal/api"
)

// Overrides are the command-line values that beat every other source.
type Overrides struct {
	BaseURL string
	Token   string
	Profile string
	Timeout time.Duration
}

// ClientConfig contains resolved API client settings.
type ClientConfig struct {
	BaseURL   string
	Profile   string
	Timeout   time.Duration
	UserAgent string
	PageSize  int
	// Token is set only when it came from a flag or STOREFRONT_TOKEN.
	// Otherwise the keyring is read per request through TokenStore.
	Token      string
	TokenStore api.TokenStore
}

// ResolveClientConfig picks each value from, in order: overrides, the
// environment, the stored profile, the settings file.
func ResolveClientConfig(settings *Settings, o Overrides) (ClientConfig, error) {
	if settings == nil {
		settings = &Settings{Timeout: DefaultTimeout, PageSize: api.DefaultPageSize}
	}
	cfg := ClientConfig{
		Timeout:   settings.Timeout,
		UserAgent: settings.UserAgent,
		PageSize:  settings.PageSize,
	}

	cfg.Profile = strings.TrimSpace(o.Profile)
	if cfg.Profile == "" {
		if current, err := CurrentProfile(); err == nil {
			cfg.Profile = current
		} else {
			cfg.Profile = defaultProfile
		}
	}

	var account Account
	if acct, err := LoadProfile(cfg.Profile); err == nil {
		account = acct
	}

	cfg.BaseURL = firstNonBlank(o.BaseURL, os.Getenv("STOREFRONT_BASE_URL"), account.BaseURL, settings.BaseURL)
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		return ClientConfig{}, fmt.Errorf("base URL not configured (set STOREFRONT_BASE_URL, run 'sf auth login', or pass --base-url)")
	}

	cfg.Token = firstNonBlank(o.Token, os.Getenv("STOREFRONT_TOKEN"))
	if cfg.Token == "" && !keychainDisabled() {
		cfg.TokenStore = KeyringTokenStore{Profile: cfg.Profile}
	}
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	return cfg, nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
