package auth

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"igapi/pkg/storage"

	"golang.org/x/crypto/pbkdf2"
)

const (
	vaultVersion    = 1
	vaultSaltSize   = 32
	vaultKeySize    = 32
	vaultIterations = 100000
)

// vaultAAD binds the sealed accounts to the file format version
var vaultAAD = []byte("igapi accounts v1")

// vaultFile is the on-disk form. []byte fields are base64 in JSON.
type vaultFile struct {
	Version  int       `json:"version"`
	Salt     []byte    `json:"salt"`
	Nonce    []byte    `json:"nonce"`
	Sealed   []byte    `json:"sealed"`
	Modified time.Time `json:"modified"`
}

// EncryptedFileStore keeps every account, snapshot included, in one file
// sealed with AES-GCM under a PBKDF2 key. The salt is fixed for the life of
// the file so the key is derived once per store.
type EncryptedFileStore struct {
	path       string
	passphrase string

	mu   sync.Mutex
	salt []byte
	aead cipher.AEAD
}

// NewEncryptedFileStore opens the store at path. The passphrase comes from
// IGAPI_PASSPHRASE, or from a generated .passphrase file next to the store.
func NewEncryptedFileStore(path string) (*EncryptedFileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	passphrase, err := getPassphrase(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}
	return &EncryptedFileStore{path: path, passphrase: passphrase}, nil
}

// NewEncryptedFileStoreWithPassphrase opens the store with an explicit passphrase
func NewEncryptedFileStoreWithPassphrase(path, passphrase string) (*EncryptedFileStore, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return &EncryptedFileStore{path: path, passphrase: passphrase}, nil
}

func (e *EncryptedFileStore) Store(account *Account) error {
	if account == nil || account.Username == "" {
		return ErrInvalidCredentials
	}
	return e.update(func(accounts map[string]Account) error {
		accounts[account.Username] = *account
		return nil
	})
}

func (e *EncryptedFileStore) Retrieve(username string) (*Account, error) {
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	accounts, err := e.open()
	if err != nil {
		return nil, err
	}
	account, ok := accounts[username]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return &account, nil
}

func (e *EncryptedFileStore) List() ([]*Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	accounts, err := e.open()
	if err != nil {
		return nil, err
	}
	list := make([]*Account, 0, len(accounts))
	for _, account := range accounts {
		account := account
		list = append(list, &account)
	}
	return list, nil
}

// Delete removes the account. The file goes with the last one.
func (e *EncryptedFileStore) Delete(username string) error {
	if username == "" {
		return ErrInvalidCredentials
	}
	return e.update(func(accounts map[string]Account) error {
		if _, ok := accounts[username]; !ok {
			return ErrCredentialsNotFound
		}
		delete(accounts, username)
		return nil
	})
}

func (e *EncryptedFileStore) Exists(username string) bool {
	_, err := e.Retrieve(username)
	return err == nil
}

// update runs fn over the decrypted accounts and writes the result back
func (e *EncryptedFileStore) update(fn func(map[string]Account) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	accounts, err := e.open()
	if err != nil {
		return err
	}
	if err := fn(accounts); err != nil {
		return err
	}

	if len(accounts) == 0 {
		if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
			return err
		}
		e.salt, e.aead = nil, nil
		return nil
	}
	return e.seal(accounts)
}

// open reads and decrypts the file. A missing file is an empty store.
func (e *EncryptedFileStore) open() (map[string]Account, error) {
	content, err := os.ReadFile(e.path)
	if os.IsNotExist(err) {
		return map[string]Account{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", e.path, err)
	}

	var vf vaultFile
	if err := json.Unmarshal(content, &vf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", e.path, err)
	}
	if vf.Version != vaultVersion {
		return nil, fmt.Errorf("unsupported account file version %d", vf.Version)
	}

	aead, err := e.cipherFor(vf.Salt)
	if err != nil {
		return nil, err
	}
	plain, err := aead.Open(nil, vf.Nonce, vf.Sealed, vaultAAD)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt %s: wrong passphrase or corrupted file", e.path)
	}

	accounts := map[string]Account{}
	if err := json.Unmarshal(plain, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse accounts: %w", err)
	}
	return accounts, nil
}

// seal encrypts accounts under a fresh nonce and writes the file atomically
func (e *EncryptedFileStore) seal(accounts map[string]Account) error {
	if e.aead == nil {
		salt := make([]byte, vaultSaltSize)
		if _, err := rand.Read(salt); err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
		if _, err := e.cipherFor(salt); err != nil {
			return err
		}
	}

	plain, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	content, err := json.MarshalIndent(vaultFile{
		Version:  vaultVersion,
		Salt:     e.salt,
		Nonce:    nonce,
		Sealed:   e.aead.Seal(nil, nonce, plain, vaultAAD),
		Modified: time.Now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal account file: %w", err)
	}
	return storage.WriteFileAtomic(e.path, content, 0600)
}

// cipherFor returns the AEAD for salt, deriving the key only when the salt
// differs from the cached one
func (e *EncryptedFileStore) cipherFor(salt []byte) (cipher.AEAD, error) {
	if e.aead != nil && bytes.Equal(e.salt, salt) {
		return e.aead, nil
	}
	if len(salt) == 0 {
		return nil, errors.New("account file has no salt")
	}

	key := pbkdf2.Key([]byte(e.passphrase), salt, vaultIterations, vaultKeySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	e.salt, e.aead = salt, aead
	return aead, nil
}

// getPassphrase returns IGAPI_PASSPHRASE, else the passphrase kept in dir,
// creating one on first use
func getPassphrase(dir string) (string, error) {
	if pass := os.Getenv("IGAPI_PASSPHRASE"); pass != "" {
		return pass, nil
	}

	file := filepath.Join(dir, ".passphrase")
	if content, err := os.ReadFile(file); err == nil && len(content) > 0 {
		return string(content), nil
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}
	passphrase := base64.RawURLEncoding.EncodeToString(b)

	if err := storage.WriteFileAtomic(file, []byte(passphrase), 0600); err != nil {
		return "", fmt.Errorf("failed to save passphrase: %w", err)
	}
	return passphrase, nil
}
