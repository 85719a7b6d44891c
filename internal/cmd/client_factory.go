package cmd

import (
	"fmt"

	"github.com/storefront/storefront-cli/internal/api"
	"github.com/storefront/storefront-cli/internal/config"
	"github.com/storefront/storefront-cli/internal/validation"
)

type clientFactory struct {
	overrides config.Overrides
	userAgent string
	// loadSettings is swapped in tests.
	loadSettings func() (*config.Settings, error)
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		overrides: config.Overrides{
			BaseURL: flags.BaseURL,
			Token:   flags.Token,
			Profile: flags.Profile,
			Timeout: flags.Timeout,
		},
		userAgent:    fmt.Sprintf("storefront-cli/%s", version),
		loadSettings: config.LoadSettings,
	}
}

// resolve returns the effective connection settings without building a client.
func (f *clientFactory) resolve() (config.ClientConfig, error) {
	settings, err := f.loadSettings()
	if err != nil {
		return config.ClientConfig{}, fmt.Errorf("failed to load settings: %w", err)
	}
	cfg, err := config.ResolveClientConfig(settings, f.overrides)
	if err != nil {
		return config.ClientConfig{}, err
	}
	if err := validation.ValidateBaseURL(cfg.BaseURL); err != nil {
		return config.ClientConfig{}, fmt.Errorf("invalid base URL: %w", err)
	}
	return cfg, nil
}

func (f *clientFactory) client() (*api.Client, config.ClientConfig, error) {
	cfg, err := f.resolve()
	if err != nil {
		return nil, cfg, err
	}
	return f.newClient(cfg), cfg, nil
}

func (f *clientFactory) newClient(cfg config.ClientConfig) *api.Client {
	userAgent := f.userAgent
	if cfg.UserAgent != "" {
		userAgent = cfg.UserAgent
	}
	var getter api.TokenGetter
	if cfg.Token != "" {
		getter = api.StaticToken(cfg.Token)
	}
	client := api.New(api.Config{
		BaseURL:     cfg.BaseURL,
		TokenGetter: getter,
		TokenStore:  cfg.TokenStore,
		UserAgent:   userAgent,
	})
	if cfg.Timeout > 0 {
		client.HTTP.Timeout = cfg.Timeout
	}
	return client
}

// getClient creates an API client from flags, environment, profile and settings.
func getClient() (*api.Client, error) {
	client, _, err := newClientFactory().client()
	return client, err
}

// getClientWithConfig also returns the resolved settings, for commands that
// need the page size or base URL.
func getClientWithConfig() (*api.Client, config.ClientConfig, error) {
	return newClientFactory().client()
}
