package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "igapi"
	keyringPrefix  = "instagram_"
)

// KeyringStore implements CredentialStore using the system keychain.
// Some keychains cap secret size, so a large snapshot may be refused; the
// Manager then falls through to the next store.
type KeyringStore struct{}

// NewKeyringStore creates a new keyring-based credential store
func NewKeyringStore() (*KeyringStore, error) {
	// Test if keyring is available
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("%w: keyring: %v", ErrStoreUnavailable, err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves the account to the system keychain
func (k *KeyringStore) Store(account *Account) error {
	if account == nil || account.Username == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	if err := keyring.Set(keyringService, keyringPrefix+account.Username, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	return nil
}

// Retrieve gets the account from the system keychain
func (k *KeyringStore) Retrieve(username string) (*Account, error) {
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	data, err := keyring.Get(keyringService, keyringPrefix+username)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var account Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &account, nil
}

// List always returns nothing: go-keyring cannot enumerate secrets
func (k *KeyringStore) List() ([]*Account, error) {
	return []*Account{}, nil
}

// Delete removes the account from the system keychain
func (k *KeyringStore) Delete(username string) error {
	if username == "" {
		return ErrInvalidCredentials
	}

	err := keyring.Delete(keyringService, keyringPrefix+username)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	return nil
}

// Exists checks if an account exists in the keychain
func (k *KeyringStore) Exists(username string) bool {
	if username == "" {
		return false
	}

	_, err := keyring.Get(keyringService, keyringPrefix+username)
	return err == nil
}
