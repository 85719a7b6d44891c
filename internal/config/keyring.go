package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
	"github.com/goccy/go-json"
)

const (
	serviceName       = "storefront-cli"
	defaultProfile    = "default"
	profilePrefix     = "profile:"
	profileIndexKey   = "profiles_index"
	currentProfileKey = "current_profile"

	envKeyringBackend  = "STOREFRONT_KEYRING_BACKEND"
	envKeyringPassword = "STOREFRONT_KEYRING_PASSWORD"
	envCredentialsDir  = "STOREFRONT_CREDENTIALS_DIR"
	envNoKeychain      = "STOREFRONT_NO_KEYCHAIN"

	keyringBackendAuto   = "auto"
	keyringBackendFile   = "file"
	keyringBackendSystem = "system"
)

// openKeyring can be replaced in tests to use an in-memory keyring.
var openKeyring = func(cfg keyring.Config) (keyring.Keyring, error) {
	return keyring.Open(cfg)
}

var userConfigDir = os.UserConfigDir

var stdinHasTTY = func() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// SetOpenKeyring replaces the keyring opener and returns a restore func.
func SetOpenKeyring(fn func(keyring.Config) (keyring.Keyring, error)) func() {
	original := openKeyring
	openKeyring = fn
	return func() { openKeyring = original }
}

// Account is what a profile stores: where the store lives and the bearer
// token obtained at login.
type Account struct {
	BaseURL string `json:"base_url"`
	Token   string `json:"token"`
	Email   string `json:"email,omitempty"`
}

var (
	// ErrNotConfigured is returned when the profile has no stored account.
	ErrNotConfigured = errors.New("not logged in - run 'sf auth login' first")
	// ErrKeychainDisabled is returned when STOREFRONT_NO_KEYCHAIN is set.
	ErrKeychainDisabled = errors.New("keychain access disabled by " + envNoKeychain)
)

func keychainDisabled() bool {
	v := strings.TrimSpace(os.Getenv(envNoKeychain))
	return v != "" && v != "0" && !strings.EqualFold(v, "false")
}

func openRing() (keyring.Keyring, error) {
	if keychainDisabled() {
		return nil, ErrKeychainDisabled
	}
	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return ring, nil
}

func keyringConfig() keyring.Config {
	cfg := keyring.Config{ServiceName: serviceName}

	backend := keyringBackendMode()
	if backend == keyringBackendSystem {
		return cfg
	}

	// Auto mode keeps file details so keyring.Open can fall through to the
	// encrypted file backend when no native backend exists.
	cfg.FileDir = keyringFileDir()
	cfg.FilePasswordFunc = keyringFilePassword

	if shouldForceFileBackend(runtime.GOOS, backend, os.Getenv("DBUS_SESSION_BUS_ADDRESS")) {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}
	return cfg
}

func keyringBackendMode() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(envKeyringBackend))) {
	case keyringBackendFile:
		return keyringBackendFile
	case keyringBackendSystem, "os", "native":
		return keyringBackendSystem
	default:
		return keyringBackendAuto
	}
}

// shouldForceFileBackend is true for an explicit file backend, and for
// headless Linux where the secret service is unreachable.
func shouldForceFileBackend(goos, backend, dbusAddr string) bool {
	if backend == keyringBackendFile {
		return true
	}
	if backend != keyringBackendAuto {
		return false
	}
	return goos == "linux" && strings.TrimSpace(dbusAddr) == ""
}

func keyringFileDir() string {
	base := strings.TrimSpace(os.Getenv(envCredentialsDir))
	if base == "" {
		if dir, err := userConfigDir(); err == nil && strings.TrimSpace(dir) != "" {
			base = filepath.Join(dir, serviceName)
		}
	}
	if base == "" {
		base = filepath.Join(os.TempDir(), serviceName)
	}
	return filepath.Join(base, "keyring")
}

func keyringFilePassword(prompt string) (string, error) {
	if password, ok := os.LookupEnv(envKeyringPassword); ok && strings.TrimSpace(password) != "" {
		return password, nil
	}
	if !stdinHasTTY() {
		return "", fmt.Errorf("set %s when using file keyring in non-interactive environments", envKeyringPassword)
	}
	return keyring.TerminalPrompt(prompt)
}

func profileKey(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultProfile
	}
	return profilePrefix + name
}

func loadProfileIndex(ring keyring.Keyring) ([]string, error) {
	item, err := ring.Get(profileIndexKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to get profile index: %w", err)
	}
	var profiles []string
	if err := json.Unmarshal(item.Data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile index: %w", err)
	}
	return profiles, nil
}

func saveProfileIndex(ring keyring.Keyring, profiles []string) error {
	data, err := json.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("failed to marshal profile index: %w", err)
	}
	return ring.Set(keyring.Item{Key: profileIndexKey, Data: data})
}

func normalizeProfiles(profiles []string) []string {
	seen := make(map[string]struct{}, len(profiles))
	var out []string
	for _, p := range profiles {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// SaveProfile stores account under profile and makes it current.
func SaveProfile(profile string, account Account) error {
	if profile == "" {
		profile = defaultProfile
	}
	ring, err := openRing()
	if err != nil {
		return err
	}

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}
	if err := ring.Set(keyring.Item{Key: profileKey(profile), Data: data}); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	profiles, err := loadProfileIndex(ring)
	if err != nil {
		return err
	}
	if err := saveProfileIndex(ring, normalizeProfiles(append(profiles, profile))); err != nil {
		return err
	}
	return setCurrentProfile(ring, profile)
}

// LoadProfile retrieves the account stored under profile.
func LoadProfile(profile string) (Account, error) {
	ring, err := openRing()
	if err != nil {
		return Account{}, err
	}
	item, err := ring.Get(profileKey(profile))
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return Account{}, ErrNotConfigured
		}
		return Account{}, fmt.Errorf("failed to get profile: %w", err)
	}
	var account Account
	if err := json.Unmarshal(item.Data, &account); err != nil {
		return Account{}, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return account, nil
}

// DeleteProfile removes a stored profile. When it was current, the first
// remaining profile (or "default") becomes current.
func DeleteProfile(profile string) error {
	if profile == "" {
		profile = defaultProfile
	}
	ring, err := openRing()
	if err != nil {
		return err
	}
	if err := ring.Remove(profileKey(profile)); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to remove profile: %w", err)
	}

	profiles, err := loadProfileIndex(ring)
	if err != nil {
		return err
	}
	var remaining []string
	for _, p := range profiles {
		if p != profile {
			remaining = append(remaining, p)
		}
	}
	if err := saveProfileIndex(ring, remaining); err != nil {
		return err
	}

	if current, err := currentProfile(ring); err == nil && current == profile {
		next := defaultProfile
		if len(remaining) > 0 {
			next = remaining[0]
		}
		_ = setCurrentProfile(ring, next)
	}
	return nil
}

// ListProfiles returns the known profile names in creation order.
func ListProfiles() ([]string, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return loadProfileIndex(ring)
}

// CurrentProfile returns the active profile name. STOREFRONT_PROFILE wins
// over the stored selection.
func CurrentProfile() (string, error) {
	if env := strings.TrimSpace(os.Getenv("STOREFRONT_PROFILE")); env != "" {
		return env, nil
	}
	ring, err := openRing()
	if err != nil {
		return "", err
	}
	return currentProfile(ring)
}

func currentProfile(ring keyring.Keyring) (string, error) {
	item, err := ring.Get(currentProfileKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return defaultProfile, nil
		}
		return "", fmt.Errorf("failed to get current profile: %w", err)
	}
	return string(item.Data), nil
}

// SetCurrentProfile sets the active profile name.
func SetCurrentProfile(profile string) error {
	ring, err := openRing()
	if err != nil {
		return err
	}
	return setCurrentProfile(ring, profile)
}

func setCurrentProfile(ring keyring.Keyring, profile string) error {
	if profile == "" {
		profile = defaultProfile
	}
	return ring.Set(keyring.Item{Key: currentProfileKey, Data: []byte(profile)})
}

// KeyringTokenStore reads the token of a stored profile. An empty Profile
// means the current one.
type KeyringTokenStore struct {
	Profile string
}

// Token returns the stored token or ErrNotConfigured.
func (s KeyringTokenStore) Token() (string, error) {
	profile := s.Profile
	if profile == "" {
		current, err := CurrentProfile()
		if err != nil {
			return "", err
		}
		profile = current
	}
	account, err := LoadProfile(profile)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(account.Token) == "" {
		return "", ErrNotConfigured
	}
	return account.Token, nil
}
