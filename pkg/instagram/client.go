package instagram

import (
	"math/rand"
	"net/http"
	"strings"
	"time"

	"igapi/pkg/config"
	"igapi/pkg/errors"
	"igapi/pkg/logger"
	"igapi/pkg/ratelimit"
	"igapi/pkg/session"
	"igapi/pkg/signature"
	"igapi/pkg/useragent"
)

// State is the login state of a Client
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Options configures a Client. Everything is optional; a client with neither
// credentials nor a snapshot can still reach endpoints that need no login.
type Options struct {
	Username string
	Password string

	// Snapshot restores a saved session without a network login
	Snapshot *session.Snapshot

	// OnLogin is called once after every successful Login or Relogin
	OnLogin func(*session.Snapshot)

	// Config supplies API and device settings; DefaultConfig when nil
	Config *config.Config

	Logger logger.Logger

	// HTTPClient is copied, never modified. Its Jar is replaced by the
	// session jar.
	HTTPClient *http.Client

	// Limiter, when set, is waited on before every request
	Limiter ratelimit.Limiter
}

// Client talks to the private API on behalf of one account. It is not safe
// for concurrent use; callers serialize access.
type Client struct {
	httpClient *http.Client
	baseURL    string
	signer     *signature.Signer
	api        config.APIConfig

	username string
	password string
	session  *session.Session
	state    State

	onLogin func(*session.Snapshot)
	limiter ratelimit.Limiter
	logger  logger.Logger
	now     func() time.Time
	rand    *rand.Rand
}

// New creates a client. A non-nil Options.Snapshot puts the client straight
// into the authenticated state when the snapshot holds a login cookie, even
// one past its expiry.
func New(opts Options) (*Client, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	c := &Client{
		baseURL:  strings.TrimRight(cfg.API.BaseURL, "/") + "/" + cfg.API.Version + "/",
		signer:   signature.New(cfg.API.SigKey, cfg.API.SigKeyVersion),
		api:      cfg.API,
		username: opts.Username,
		password: opts.Password,
		onLogin:  opts.OnLogin,
		limiter:  opts.Limiter,
		logger:   log.WithField("component", "instagram"),
		now:      time.Now,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if opts.Snapshot != nil {
		c.session = session.FromSnapshot(opts.Snapshot)
		if c.username == "" {
			c.username = c.session.Username
		}
		// An expired login cookie still counts here; the first Call notices.
		if _, ok := c.session.Jar.AuthExpires(); ok || c.session.LoggedIn() {
			c.state = StateAuthenticated
		}
	} else {
		c.session = session.New(opts.Username, opts.Username+opts.Password)
	}

	if c.session.UserAgent == "" {
		ua, err := userAgentFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		c.session.UserAgent = ua
	}

	if opts.HTTPClient != nil {
		hc := *opts.HTTPClient
		c.httpClient = &hc
	} else {
		c.httpClient = &http.Client{Timeout: cfg.API.Timeout}
	}
	c.httpClient.Jar = c.session.Jar

	c.logger.DebugWithFields("client created", map[string]interface{}{
		"username": c.username,
		"state":    c.state.String(),
		"base_url": c.baseURL,
	})

	return c, nil
}

func userAgentFromConfig(cfg *config.Config) (string, error) {
	if cfg.Device.UserAgent != "" {
		if _, err := useragent.Parse(cfg.Device.UserAgent); err != nil {
			return "", err
		}
		return cfg.Device.UserAgent, nil
	}
	return useragent.Generate(useragent.Device{
		AppVersion:     cfg.API.AppVersion,
		AndroidVersion: cfg.Device.AndroidVersion,
		AndroidRelease: cfg.Device.AndroidRelease,
		DPI:            cfg.Device.DPI,
		Resolution:     cfg.Device.Resolution,
		Manufacturer:   cfg.Device.Manufacturer,
		Device:         cfg.Device.Device,
		Model:          cfg.Device.Model,
		Chipset:        cfg.Device.Chipset,
		Locale:         cfg.API.Locale,
	})
}

// State returns the current login state
func (c *Client) State() State {
	return c.state
}

// Session exposes the live session. Mutating it outside the client is
// allowed but the caller then owns the consequences.
func (c *Client) Session() *session.Session {
	return c.session
}

// Snapshot captures the current session for persistence
func (c *Client) Snapshot() *session.Snapshot {
	return c.session.Snapshot()
}

// Username returns the account name the client logs in with
func (c *Client) Username() string {
	return c.username
}

// UserAgent returns the user agent sent with every request
func (c *Client) UserAgent() string {
	return c.session.UserAgent
}

// AuthenticatedUserID is the numeric id of the logged in account, empty
// before login
func (c *Client) AuthenticatedUserID() string {
	return c.session.UserID()
}

// RankToken returns "<user id>_<uuid>"
func (c *Client) RankToken() string {
	return c.session.RankToken()
}

// CookieExpiry returns when the login cookie expires
func (c *Client) CookieExpiry() (time.Time, bool) {
	return c.session.Jar.AuthExpires()
}

func (c *Client) setState(to State) {
	if c.state == to {
		return
	}
	logger.LogStateChange(c.logger, c.username, c.state.String(), to.String())
	c.state = to
}

// authParams are the fields the server expects on every authenticated write
func (c *Client) authParams() map[string]any {
	return map[string]any{
		"_uuid":      c.session.UUID,
		"_uid":       c.session.UserID(),
		"_csrftoken": c.session.CSRFToken(),
	}
}

// withAuth merges authParams into params. Keys already in params win.
func (c *Client) withAuth(params map[string]any) map[string]any {
	out := c.authParams()
	for k, v := range params {
		out[k] = v
	}
	return out
}

func requireID(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewValidation("%s is required", name)
	}
	return nil
}
