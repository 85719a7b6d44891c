package config

import (
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveClientConfig_Precedence(t *testing.T) {
	withMockKeyring(t, keyring.NewArrayKeyring(nil))
	t.Setenv("STOREFRONT_BASE_URL", "")
	t.Setenv("STOREFRONT_TOKEN", "")
	require.NoError(t, SaveProfile("default", Account{BaseURL: "https://profile.example.com", Token: "stored"}))

	settings := &Settings{BaseURL: "https://file.example.com", Timeout: 10 * time.Second, PageSize: 20}

	cfg, err := ResolveClientConfig(settings, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "https://profile.example.com", cfg.BaseURL)
	assert.Equal(t, "default", cfg.Profile)
	assert.Empty(t, cfg.Token)
	require.NotNil(t, cfg.TokenStore)
	token, err := cfg.TokenStore.Token()
	require.NoError(t, err)
	assert.Equal(t, "stored", token)

	t.Setenv("STOREFRONT_BASE_URL", "https://env.example.com/")
	t.Setenv("STOREFRONT_TOKEN", "env-token")
	cfg, err = ResolveClientConfig(settings, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.BaseURL)
	assert.Equal(t, "env-token", cfg.Token)
	assert.Nil(t, cfg.TokenStore)

	cfg, err = ResolveClientConfig(settings, Overrides{BaseURL: "https://flag.example.com", Token: "flag-token", Timeout: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example.com", cfg.BaseURL)
	assert.Equal(t, "flag-token", cfg.Token)
	assert.Equal(t, time.Minute, cfg.Timeout)
}

func TestResolveClientConfig_FallsBackToSettingsFile(t *testing.T) {
	withMockKeyring(t, keyring.NewArrayKeyring(nil))
	t.Setenv("STOREFRONT_BASE_URL", "")
	t.Setenv("STOREFRONT_TOKEN", "")

	cfg, err := ResolveClientConfig(&Settings{BaseURL: "https://file.example.com", Timeout: time.Second}, Overrides{Profile: "staging"})
	require.NoError(t, err)
	assert.Equal(t, "https://file.example.com", cfg.BaseURL)
	assert.Equal(t, "staging", cfg.Profile)
	assert.Equal(t, time.Second, cfg.Timeout)
}

func TestResolveClientConfig_MissingBaseURL(t *testing.T) {
	withMockKeyring(t, keyring.NewArrayKeyring(nil))
	t.Setenv("STOREFRONT_BASE_URL", "")

	_, err := ResolveClientConfig(nil, Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base URL not configured")
}

func TestResolveClientConfig_NoKeychain(t *testing.T) {
	t.Setenv(envNoKeychain, "1")
	t.Setenv("STOREFRONT_TOKEN", "")
	t.Setenv("STOREFRONT_PROFILE", "")

	cfg, err := ResolveClientConfig(nil, Overrides{BaseURL: "https://shop.example.com"})
	require.NoError(t, err)
	assert.Nil(t, cfg.TokenStore)
	assert.Equal(t, "default", cfg.Profile)
}
