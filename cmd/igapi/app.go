package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"igapi/pkg/auth"
	"igapi/pkg/config"
	igerrors "igapi/pkg/errors"
	"igapi/pkg/instagram"
	"igapi/pkg/logger"
	"igapi/pkg/ratelimit"
	"igapi/pkg/retry"
	"igapi/pkg/session"
	"igapi/pkg/storage"
	"igapi/pkg/ui"
)

var errNotLoggedIn = errors.New("no saved session, run 'igapi login' first")

// app is what every command needs: config, logger and the session store
type app struct {
	cfg   *config.Config
	log   logger.Logger
	store sessionStore
}

func loadConfig() (*config.Config, error) {
	return config.Load(configFile, flagMap())
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, err
	}

	store, err := openSessionStore(cfg.Session)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, store: store}, nil
}

// newClient builds a client for account. A stored snapshot is restored; the
// password, when known, enables Relogin.
func (a *app) newClient(account *auth.Account) (*instagram.Client, error) {
	opts := instagram.Options{
		Username: account.Username,
		Password: account.Password,
		Config:   a.cfg,
		Logger:   a.log,
		Limiter:  ratelimit.FromConfig(a.cfg.RateLimit, a.log),
		OnLogin:  a.saveSnapshot,
	}

	if len(account.Snapshot) > 0 {
		snap, err := session.DecodeSnapshot(account.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("saved session is unreadable, log in again: %w", err)
		}
		opts.Snapshot = snap
	}

	return instagram.New(opts)
}

// loggedInClient restores the saved session of the selected account
func (a *app) loggedInClient() (*instagram.Client, error) {
	account, err := a.store.Load(a.cfg.Session.Username)
	if err != nil {
		if errors.Is(err, auth.ErrCredentialsNotFound) || errors.Is(err, storage.ErrNotFound) {
			return nil, errNotLoggedIn
		}
		return nil, err
	}
	if len(account.Snapshot) == 0 {
		return nil, errNotLoggedIn
	}
	return a.newClient(account)
}

func (a *app) saveSnapshot(snap *session.Snapshot) {
	data, err := snap.Encode()
	if err == nil {
		err = a.store.SaveSnapshot(snap.Username, data)
	}
	if err != nil {
		a.log.WithError(err).Error("failed to save session")
		ui.PrintWarning("Session not saved", err)
	}
}

// retrier retries throttled, transport and server failures and renews an
// expired session once when the config allows it
func (a *app) retrier(c *instagram.Client) *retry.Retrier {
	r := retry.NewRetrier(retry.FromConfig(a.cfg.Retry, a.log))
	if a.cfg.Retry.Relogin {
		r = r.WithRelogin(c.Relogin)
	}
	return r
}

// sessionStore hides whether sessions live in a settings file or in the
// account manager
type sessionStore interface {
	Load(username string) (*auth.Account, error)
	SaveSnapshot(username string, snapshot []byte) error
	SavePassword(username, password string) error
	Clear(username string) error
	ClearAll() error
	Describe() string
}

func openSessionStore(cfg config.SessionConfig) (sessionStore, error) {
	if strings.EqualFold(cfg.Store, "file") {
		fs, err := storage.NewFileStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return &fileSessions{fs: fs, env: auth.NewEnvironmentStore()}, nil
	}

	manager, err := auth.NewManager(cfg.Store)
	if err != nil {
		return nil, err
	}
	return &managerSessions{manager: manager, kind: strings.ToLower(cfg.Store)}, nil
}

// fileSessions keeps the snapshot in a plain settings file. Passwords are
// never written there; IGAPI_PASSWORD supplies one for relogin.
type fileSessions struct {
	fs  *storage.FileStore
	env *auth.EnvironmentStore
}

func (f *fileSessions) Load(username string) (*auth.Account, error) {
	data, err := f.fs.Load()
	if err != nil {
		return nil, err
	}

	var head struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("settings file %s: %w", f.fs.Path(), err)
	}
	if username != "" && head.Username != username {
		return nil, fmt.Errorf("%w: settings file holds %s", auth.ErrCredentialsNotFound, head.Username)
	}

	account := &auth.Account{Username: head.Username, Snapshot: data}
	if env, err := f.env.Retrieve(head.Username); err == nil {
		account.Password = env.Password
	}
	return account, nil
}

func (f *fileSessions) SaveSnapshot(_ string, snapshot []byte) error {
	return f.fs.Save(snapshot)
}

func (f *fileSessions) SavePassword(_, _ string) error {
	return errors.New("the settings file never stores passwords, set IGAPI_PASSWORD instead")
}

func (f *fileSessions) Clear(_ string) error {
	return f.fs.Remove()
}

func (f *fileSessions) ClearAll() error {
	return f.fs.Remove()
}

func (f *fileSessions) Describe() string {
	return "file " + f.fs.Path()
}

// managerSessions keeps accounts in the keychain or the encrypted file
type managerSessions struct {
	manager *auth.Manager
	kind    string
}

func (m *managerSessions) Load(username string) (*auth.Account, error) {
	if username == "" {
		return m.manager.RetrieveDefault()
	}
	return m.manager.Retrieve(username)
}

func (m *managerSessions) SaveSnapshot(username string, snapshot []byte) error {
	return m.manager.SaveSnapshot(username, snapshot)
}

func (m *managerSessions) SavePassword(username, password string) error {
	account, err := m.manager.Retrieve(username)
	if err != nil {
		account = &auth.Account{Username: username}
	}
	account.Password = password
	return m.manager.Store(account)
}

func (m *managerSessions) Clear(username string) error {
	if username == "" {
		account, err := m.manager.RetrieveDefault()
		if err != nil {
			return err
		}
		username = account.Username
	}
	return m.manager.Delete(username)
}

func (m *managerSessions) ClearAll() error {
	return m.manager.DeleteAll()
}

func (m *managerSessions) Describe() string {
	if m.kind == "" {
		return "auto"
	}
	return m.kind
}

// readPassword reads a password from stdin without echoing
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err == nil {
			return string(password), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// readLine prompts for one line of input
func readLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	input, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// exitCode maps error kinds to distinct process exit codes for scripts
func exitCode(err error) int {
	switch igerrors.TypeOf(err) {
	case igerrors.ErrorTypeValidation:
		return 2
	case igerrors.ErrorTypeLogin:
		return 3
	case igerrors.ErrorTypeSessionExpired:
		return 4
	case igerrors.ErrorTypeCheckpoint:
		return 5
	case igerrors.ErrorTypeRateLimit:
		return 6
	}
	if errors.Is(err, errNotLoggedIn) {
		return 4
	}
	return 1
}
