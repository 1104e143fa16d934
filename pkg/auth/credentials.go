package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

// Account is what igapi remembers about a login between runs
type Account struct {
	Username string `json:"username"`
	// Password is kept only when the user asked for relogin support
	Password string `json:"password,omitempty"`
	// Snapshot is the encoded session.Snapshot
	Snapshot     json.RawMessage `json:"snapshot,omitempty"`
	LastModified time.Time       `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving accounts
type CredentialStore interface {
	// Store saves an account, replacing any previous one with the same username
	Store(account *Account) error

	// Retrieve gets the account for a specific username
	Retrieve(username string) (*Account, error)

	// List returns all stored accounts
	List() ([]*Account, error)

	// Delete removes the account for a specific username
	Delete(username string) error

	// Exists checks if an account exists for a username
	Exists(username string) bool
}

// Manager handles account storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a manager for the configured store kind: keyring,
// encrypted, or auto (keyring first, encrypted file as fallback). Every kind
// also reads credentials from the environment as a last resort.
func NewManager(kind string) (*Manager, error) {
	var stores []CredentialStore

	kind = strings.ToLower(kind)
	if kind == "" {
		kind = "auto"
	}

	if kind == "auto" || kind == "keyring" {
		keyringStore, err := NewKeyringStore()
		switch {
		case err == nil:
			stores = append(stores, keyringStore)
		case kind == "keyring":
			return nil, err
		}
	}

	if kind == "auto" || kind == "encrypted" {
		configDir, err := getConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}

		encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "accounts.enc"))
		if err != nil {
			return nil, fmt.Errorf("failed to create encrypted store: %w", err)
		}
		stores = append(stores, encryptedStore)
	}

	if len(stores) == 0 {
		return nil, fmt.Errorf("unknown account store %q", kind)
	}

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a Manager over the given stores, tried in order
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves the account using the first store that accepts it
func (m *Manager) Store(account *Account) error {
	if account == nil || account.Username == "" {
		return errors.New("username is required")
	}
	if account.Password == "" && len(account.Snapshot) == 0 {
		return errors.New("password or session snapshot is required")
	}

	account.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(account)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store account: %w", lastErr)
	}
	return errors.New("no available credential stores")
}

// SaveSnapshot replaces the snapshot of an account, keeping its password.
// It has the shape of the client's OnLogin hook once bound to a username.
func (m *Manager) SaveSnapshot(username string, snapshot []byte) error {
	account, err := m.Retrieve(username)
	if err != nil {
		account = &Account{Username: username}
	}
	account.Snapshot = json.RawMessage(snapshot)
	return m.Store(account)
}

// Retrieve gets the account from the first store that has it
func (m *Manager) Retrieve(username string) (*Account, error) {
	for _, store := range m.stores {
		if account, err := store.Retrieve(username); err == nil && account != nil {
			return account, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, username)
}

// RetrieveDefault gets the account named in the environment, or the most
// recently used stored account
func (m *Manager) RetrieveDefault() (*Account, error) {
	if envStore, ok := m.stores[len(m.stores)-1].(*EnvironmentStore); ok {
		if account, err := envStore.Retrieve(""); err == nil {
			if stored, err := m.Retrieve(account.Username); err == nil {
				if stored.Password == "" {
					stored.Password = account.Password
				}
				return stored, nil
			}
			return account, nil
		}
	}

	accounts, err := m.List()
	if err == nil && len(accounts) > 0 {
		return accounts[0], nil
	}

	return nil, ErrCredentialsNotFound
}

// List returns all stored accounts from all stores, most recent first
func (m *Manager) List() ([]*Account, error) {
	accountMap := make(map[string]*Account)

	for _, store := range m.stores {
		accounts, err := store.List()
		if err != nil {
			continue
		}
		for _, account := range accounts {
			// Use the most recently modified version
			if existing, ok := accountMap[account.Username]; !ok || account.LastModified.After(existing.LastModified) {
				accountMap[account.Username] = account
			}
		}
	}

	result := make([]*Account, 0, len(accountMap))
	for _, account := range accountMap {
		result = append(result, account)
	}
	sortByLastModified(result)

	return result, nil
}

// Delete removes the account from all stores
func (m *Manager) Delete(username string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(username); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete account: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrCredentialsNotFound, username)
	}

	return nil
}

// DeleteAll removes all stored accounts
func (m *Manager) DeleteAll() error {
	accounts, err := m.List()
	if err != nil {
		return err
	}

	for _, account := range accounts {
		_ = m.Delete(account.Username) // Ignore individual errors
	}

	return nil
}

func sortByLastModified(accounts []*Account) {
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].LastModified.After(accounts[j].LastModified)
	})
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
		configDir = filepath.Join(home, "Library", "Application Support", "igapi")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "igapi")
	default: // Linux and others
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "igapi")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "igapi")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// SanitizeAccount creates a copy of the account safe to print. The password
// is fully masked and the snapshot is reduced to its size.
func SanitizeAccount(account *Account) *Account {
	if account == nil {
		return nil
	}

	sanitized := &Account{
		Username:     account.Username,
		LastModified: account.LastModified,
	}
	if account.Password != "" {
		sanitized.Password = passwordMask
	}
	if len(account.Snapshot) > 0 {
		sanitized.Snapshot = json.RawMessage(fmt.Sprintf(`"<%d bytes>"`, len(account.Snapshot)))
	}
	return sanitized
}

const passwordMask = "********"

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
