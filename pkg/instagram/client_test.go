package instagram

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"igapi/pkg/config"
	"igapi/pkg/errors"
	"igapi/pkg/logger"
	"igapi/pkg/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRoundTripper allows us to intercept HTTP requests
type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.handler(req)
}

// Helper function to create a response
func newResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func writeJSON(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprint(w, body)
}

// newTestConfig points the API at server
func newTestConfig(server *httptest.Server) *config.Config {
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = server.URL + "/api/"
	return cfg
}

// newTestClient starts a fake API around handler and returns an
// unauthenticated client with credentials for it
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *logger.TestLogger) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logger.NewTestLogger()
	c, err := New(Options{
		Username: "alice",
		Password: "secret",
		Config:   newTestConfig(server),
		Logger:   log,
	})
	require.NoError(t, err)
	return c, log
}

// authenticate gives c the cookies of a logged in session without a login
// round trip
func authenticate(t *testing.T, c *Client) {
	t.Helper()
	u, err := url.Parse(c.baseURL)
	require.NoError(t, err)
	host := u.Hostname()

	c.session.Jar.Set(session.Cookie{Name: session.CookieUserID, Value: "42", Domain: host})
	c.session.Jar.Set(session.Cookie{Name: session.CookieSessionID, Value: "sess", Domain: host})
	c.session.Jar.Set(session.Cookie{Name: session.CookieCSRF, Value: "csrf", Domain: host})
	c.state = StateAuthenticated
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUnauthenticated, "unauthenticated"},
		{StateAuthenticating, "authenticating"},
		{StateAuthenticated, "authenticated"},
		{StateExpired, "expired"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := New(Options{Username: "alice", Password: "secret"})
		require.NoError(t, err)

		assert.Equal(t, "https://i.instagram.com/api/v1/", c.baseURL)
		assert.Equal(t, StateUnauthenticated, c.State())
		assert.Equal(t, "alice", c.Username())
		assert.Contains(t, c.UserAgent(), "Instagram 10.26.0 Android (24/7.0; 640dpi; 1440x2560")
		assert.Equal(t, session.DeviceID("alicesecret"), c.Session().DeviceID)
		assert.Equal(t, 15*time.Second, c.httpClient.Timeout)
		assert.Same(t, c.session.Jar, c.httpClient.Jar)
	})

	t.Run("http client is copied", func(t *testing.T) {
		hc := &http.Client{Timeout: time.Second}
		c, err := New(Options{HTTPClient: hc})
		require.NoError(t, err)

		assert.Nil(t, hc.Jar)
		assert.NotSame(t, hc, c.httpClient)
		assert.Equal(t, time.Second, c.httpClient.Timeout)
	})

	t.Run("configured user agent", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Device.UserAgent = "Instagram 9.2.0 Android (22/5.1.1; 480dpi; 1080x1920; Xiaomi; Redmi Note 3; kenzo; qcom; en_GB)"
		c, err := New(Options{Config: cfg})
		require.NoError(t, err)
		assert.Equal(t, cfg.Device.UserAgent, c.UserAgent())
	})

	t.Run("invalid user agent", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Device.UserAgent = "Mozilla/5.0"
		_, err := New(Options{Config: cfg})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrValidation))
	})
}

func TestNewFromSnapshot(t *testing.T) {
	s := session.New("bob", "seed")
	s.UserAgent = "Instagram 9.2.0 Android (22/5.1.1; 480dpi; 1080x1920; Xiaomi; Redmi Note 3; kenzo; qcom; en_GB)"
	s.Jar.Set(session.Cookie{Name: session.CookieUserID, Value: "77", Domain: ".instagram.com"})
	s.Jar.Set(session.Cookie{Name: session.CookieCSRF, Value: "tok", Domain: ".instagram.com"})

	c, err := New(Options{Snapshot: s.Snapshot()})
	require.NoError(t, err)

	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "bob", c.Username())
	assert.Equal(t, "77", c.AuthenticatedUserID())
	assert.Equal(t, "77_"+s.UUID, c.RankToken())
	assert.Equal(t, s.DeviceID, c.Session().DeviceID)
	assert.Equal(t, s.UserAgent, c.UserAgent())

	t.Run("without login cookie", func(t *testing.T) {
		anon := session.New("carol", "seed")
		c, err := New(Options{Snapshot: anon.Snapshot()})
		require.NoError(t, err)
		assert.Equal(t, StateUnauthenticated, c.State())
	})
}

func TestCallDetectsExpiredCookieLazily(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, http.StatusOK, `{"status":"ok"}`)
	}))
	defer server.Close()

	now := time.Now()
	s := session.New("bob", "seed")
	s.Jar.Set(session.Cookie{
		Name:    session.CookieUserID,
		Value:   "77",
		Domain:  "127.0.0.1",
		Expires: now.Add(time.Hour).Unix(),
	})

	log := logger.NewTestLogger()
	c, err := New(Options{Snapshot: s.Snapshot(), Config: newTestConfig(server), Logger: log})
	require.NoError(t, err)
	require.Equal(t, StateAuthenticated, c.State())

	exp, ok := c.CookieExpiry()
	require.True(t, ok)
	assert.Equal(t, now.Add(time.Hour).Unix(), exp.Unix())

	_, err = c.Call("news/inbox/", Call{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))

	c.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = c.Call("news/inbox/", Call{})
	require.Error(t, err)
	assert.True(t, errors.IsSessionExpired(err))
	assert.Equal(t, StateExpired, c.State())
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits), "expired session must not reach the network")
	assert.True(t, log.HasMessage("session state changed"))
}

func TestSessionExpiredThenRelogin(t *testing.T) {
	var expired atomic.Bool
	expired.Store(true)
	var timelineHits int32

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/news/inbox/":
			atomic.AddInt32(&timelineHits, 1)
			if expired.Load() {
				writeJSON(w, http.StatusForbidden, `{"status":"fail","message":"login_required"}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"status":"ok"}`)
		case "/api/v1/si/fetch_headers/":
			http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "fresh", Path: "/"})
			writeJSON(w, http.StatusOK, `{"status":"ok"}`)
		case "/api/v1/accounts/login/":
			http.SetCookie(w, &http.Cookie{Name: "ds_user_id", Value: "42", Path: "/"})
			http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "new", Path: "/"})
			writeJSON(w, http.StatusOK, `{"status":"ok","logged_in_user":{"pk":42,"username":"alice"}}`)
		default:
			writeJSON(w, http.StatusNotFound, `{"status":"fail"}`)
		}
	})
	authenticate(t, c)

	var logins int
	c.onLogin = func(*session.Snapshot) { logins++ }
	device, uuid := c.session.DeviceID, c.session.UUID

	_, err := c.Call("news/inbox/", Call{})
	require.Error(t, err)
	assert.True(t, errors.IsSessionExpired(err))
	assert.Equal(t, StateExpired, c.State())

	_, err = c.Call("news/inbox/", Call{})
	assert.True(t, errors.IsSessionExpired(err))
	assert.EqualValues(t, 1, atomic.LoadInt32(&timelineHits))

	expired.Store(false)
	require.NoError(t, c.Relogin())
	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, 1, logins)
	assert.Equal(t, device, c.session.DeviceID)
	assert.Equal(t, uuid, c.session.UUID)
	assert.Same(t, c.session.Jar, c.httpClient.Jar)
	assert.Equal(t, "fresh", c.session.CSRFToken())

	_, err = c.Call("news/inbox/", Call{})
	require.NoError(t, err)
}

func TestReloginNeedsCredentials(t *testing.T) {
	s := session.New("bob", "seed")
	c, err := New(Options{Snapshot: s.Snapshot()})
	require.NoError(t, err)

	err = c.Relogin()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}
