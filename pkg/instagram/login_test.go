package instagram

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"igapi/pkg/errors"
	"igapi/pkg/session"
	"igapi/pkg/signature"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeSignedBody checks the signature of a signed POST and returns its payload
func decodeSignedBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	if !assert.NoError(t, r.ParseForm()) {
		return nil
	}
	assert.Equal(t, signature.DefaultKeyVersion, r.PostForm.Get("ig_sig_key_version"))

	parts := strings.SplitN(r.PostForm.Get("signed_body"), ".", 2)
	if !assert.Len(t, parts, 2) {
		return nil
	}
	assert.Equal(t, signature.New("", "").Hash([]byte(parts[1])), parts[0])

	var payload map[string]any
	assert.NoError(t, json.Unmarshal([]byte(parts[1]), &payload))
	return payload
}

func loginHandler(t *testing.T, loginStatus int, loginBody string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/si/fetch_headers/":
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "signup", r.URL.Query().Get("challenge_type"))
			guid := r.URL.Query().Get("guid")
			assert.Len(t, guid, 32)
			assert.NotContains(t, guid, "-")

			http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "tok", Path: "/"})
			writeJSON(w, http.StatusOK, `{"status":"ok"}`)
		case "/api/v1/accounts/login/":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "tok", r.Header.Get("X-CSRFToken"))

			payload := decodeSignedBody(t, r)
			assert.Equal(t, "alice", payload["username"])
			assert.Equal(t, "secret", payload["password"])
			assert.Equal(t, "tok", payload["_csrftoken"])
			assert.Equal(t, "0", payload["login_attempt_count"])
			assert.Contains(t, payload["device_id"], "android-")

			if loginStatus == http.StatusOK {
				http.SetCookie(w, &http.Cookie{Name: "ds_user_id", Value: "42", Path: "/"})
				http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "abc", Path: "/"})
			}
			writeJSON(w, loginStatus, loginBody)
		default:
			writeJSON(w, http.StatusNotFound, `{"status":"fail","message":"not found"}`)
		}
	}
}

func TestLogin(t *testing.T) {
	c, log := newTestClient(t, loginHandler(t, http.StatusOK,
		`{"status":"ok","logged_in_user":{"pk":42,"username":"alice"}}`))

	var snapshots []*session.Snapshot
	c.onLogin = func(s *session.Snapshot) { snapshots = append(snapshots, s) }

	require.NoError(t, c.Login())

	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "42", c.AuthenticatedUserID())
	assert.Equal(t, "tok", c.session.CSRFToken())
	require.Len(t, snapshots, 1)
	assert.Equal(t, c.session.UUID, snapshots[0].UUID)

	names := map[string]bool{}
	for _, ck := range snapshots[0].Cookies {
		names[ck.Name] = true
	}
	assert.True(t, names["sessionid"])
	assert.True(t, names["ds_user_id"])

	assert.True(t, log.HasMessage("logged in"))
	for _, m := range log.GetMessages() {
		for _, v := range m.Fields {
			assert.NotEqual(t, "secret", v, "password leaked into log %q", m.Message)
		}
	}
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{
			name:   "bad password",
			status: http.StatusBadRequest,
			body:   `{"status":"fail","message":"The password you entered is incorrect.","error_type":"bad_password"}`,
			want:   errors.ErrLogin,
		},
		{
			name:   "ok without user",
			status: http.StatusOK,
			body:   `{"status":"ok"}`,
			want:   errors.ErrLogin,
		},
		{
			name:   "checkpoint keeps its kind",
			status: http.StatusBadRequest,
			body:   `{"status":"fail","message":"challenge_required","error_type":"checkpoint_challenge_required"}`,
			want:   errors.ErrCheckpoint,
		},
		{
			name:   "throttled keeps its kind",
			status: http.StatusTooManyRequests,
			body:   `{"status":"fail","message":"Please wait a few minutes before you try again."}`,
			want:   errors.ErrThrottled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, loginHandler(t, tt.status, tt.body))
			called := false
			c.onLogin = func(*session.Snapshot) { called = true }

			err := c.Login()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, StateUnauthenticated, c.State())
			assert.False(t, called)
		})
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	c, err := New(Options{Username: "alice"})
	require.NoError(t, err)

	err = c.Login()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Equal(t, StateUnauthenticated, c.State())
}

func TestLoginIgnoresRejectedFetchHeaders(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/si/fetch_headers/":
			writeJSON(w, http.StatusBadRequest, `not json`)
		case "/api/v1/accounts/login/":
			http.SetCookie(w, &http.Cookie{Name: "ds_user_id", Value: "42", Path: "/"})
			writeJSON(w, http.StatusOK, `{"status":"ok","logged_in_user":{"pk":42}}`)
		}
	})

	require.NoError(t, c.Login())
	assert.Equal(t, StateAuthenticated, c.State())
}

func TestLogout(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/accounts/logout/", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Empty(t, r.PostForm.Get("signed_body"))
		assert.Equal(t, "csrf", r.PostForm.Get("_csrftoken"))
		writeJSON(w, http.StatusOK, `{"status":"ok"}`)
	})
	authenticate(t, c)

	require.NoError(t, c.Logout())
	assert.Equal(t, StateUnauthenticated, c.State())
	assert.Zero(t, c.session.Jar.Len())
}

func TestLogoutClearsSessionOnFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"status":"fail"}`)
	})
	authenticate(t, c)

	err := c.Logout()
	require.Error(t, err)
	assert.Equal(t, StateUnauthenticated, c.State())
	assert.Zero(t, c.session.Jar.Len())
}
