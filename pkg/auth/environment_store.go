package auth

import (
	"os"
)

// EnvironmentStore reads a username and password from IGAPI_USERNAME and
// IGAPI_PASSWORD. It never holds a snapshot and cannot be written.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment account. An empty username matches it;
// any other username must equal IGAPI_USERNAME.
func (e *EnvironmentStore) Retrieve(username string) (*Account, error) {
	envUser := os.Getenv("IGAPI_USERNAME")
	password := os.Getenv("IGAPI_PASSWORD")

	if envUser == "" || password == "" {
		return nil, ErrCredentialsNotFound
	}
	if username != "" && username != envUser {
		return nil, ErrCredentialsNotFound
	}

	return &Account{
		Username: envUser,
		Password: password,
	}, nil
}

// List returns a single account if environment variables are set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(username string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(username string) bool {
	_, err := e.Retrieve(username)
	return err == nil
}
