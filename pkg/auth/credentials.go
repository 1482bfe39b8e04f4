package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"vkbackup/pkg/config"
)

// DefaultProfile is used when no profile name is given
const DefaultProfile = "default"

// Tokens holds the API tokens saved under a profile name
type Tokens struct {
	Profile      string    `json:"profile"`
	VKToken      string    `json:"vk_token,omitempty"`
	YDToken      string    `json:"yd_token,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving tokens
type CredentialStore interface {
	// Store saves tokens for a profile
	Store(tokens *Tokens) error

	// Retrieve gets tokens for a profile
	Retrieve(profile string) (*Tokens, error)

	// List returns all stored profiles
	List() ([]*Tokens, error)

	// Delete removes tokens for a profile
	Delete(profile string) error

	// Exists checks if tokens exist for a profile
	Exists(profile string) bool

	// Name identifies the store in status output
	Name() string
}

// Manager handles token storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a new credential manager with appropriate storage backends
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	// Try keyring first (system keychain)
	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	// Always add encrypted file store as fallback
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	stores = append(stores, NewEncryptedFileStore(filepath.Join(configDir, "credentials.json")))

	// Add environment store as last resort
	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a Manager that consults stores in order
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves tokens using the first store that accepts them and returns its name
func (m *Manager) Store(tokens *Tokens) (string, error) {
	if tokens == nil || (tokens.VKToken == "" && tokens.YDToken == "") {
		return "", errors.New("at least one token is required")
	}
	if tokens.Profile == "" {
		tokens.Profile = DefaultProfile
	}

	tokens.LastModified = time.Now()

	// Try each store in order
	var lastErr error
	for _, store := range m.stores {
		err := store.Store(tokens)
		if err == nil {
			return store.Name(), nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to store tokens: %w", lastErr)
	}
	return "", ErrStoreUnavailable
}

// Retrieve gets tokens from the first store that has them
func (m *Manager) Retrieve(profile string) (*Tokens, string, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	for _, store := range m.stores {
		if tokens, err := store.Retrieve(profile); err == nil && tokens != nil {
			return tokens, store.Name(), nil
		}
	}
	return nil, "", fmt.Errorf("%w for profile: %s", ErrCredentialsNotFound, profile)
}

// List returns all stored profiles from all stores, sorted by name
func (m *Manager) List() ([]*Tokens, error) {
	byProfile := make(map[string]*Tokens)

	for _, store := range m.stores {
		list, err := store.List()
		if err != nil {
			continue
		}
		for _, tokens := range list {
			// Use the most recently modified version
			if existing, ok := byProfile[tokens.Profile]; !ok || tokens.LastModified.After(existing.LastModified) {
				byProfile[tokens.Profile] = tokens
			}
		}
	}

	result := make([]*Tokens, 0, len(byProfile))
	for _, tokens := range byProfile {
		result = append(result, tokens)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Profile < result[j].Profile })

	return result, nil
}

// Delete removes tokens for profile from all stores
func (m *Manager) Delete(profile string) error {
	if profile == "" {
		profile = DefaultProfile
	}

	var deleted bool
	var lastErr error
	for _, store := range m.stores {
		if err := store.Delete(profile); err == nil {
			deleted = true
		} else if !errors.Is(err, ErrCredentialsNotFound) && !errors.Is(err, ErrStoreUnavailable) {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete tokens: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("%w for profile: %s", ErrCredentialsNotFound, profile)
	}

	return nil
}

// FillConfig copies stored tokens into cfg where cfg has none. It returns the
// name of the store used, or "" when nothing was needed or found.
func (m *Manager) FillConfig(cfg *config.Config, profile string) string {
	if cfg.Tokens.VKToken != "" && cfg.Tokens.YDToken != "" {
		return ""
	}

	tokens, source, err := m.Retrieve(profile)
	if err != nil {
		return ""
	}

	if cfg.Tokens.VKToken == "" {
		cfg.Tokens.VKToken = tokens.VKToken
	}
	if cfg.Tokens.YDToken == "" {
		cfg.Tokens.YDToken = tokens.YDToken
	}
	return source
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "vkbackup")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "vkbackup")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "vkbackup")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "vkbackup")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// Sanitize creates a copy of tokens with secrets masked
func Sanitize(tokens *Tokens) *Tokens {
	if tokens == nil {
		return nil
	}

	return &Tokens{
		Profile:      tokens.Profile,
		VKToken:      config.MaskToken(tokens.VKToken),
		YDToken:      config.MaskToken(tokens.YDToken),
		LastModified: tokens.LastModified,
	}
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("tokens not found")
	ErrInvalidCredentials  = errors.New("invalid tokens")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
