package session

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Session is the client-side state of one logged in (or logging in) account:
// the cookie jar plus the device identity sent with every request.
type Session struct {
	Username       string
	UUID           string
	PhoneID        string
	AdID           string
	DeviceID       string
	UserAgent      string
	TimezoneOffset int
	Created        time.Time

	// Extra holds caller-defined values that travel with the snapshot.
	// []byte values survive a save/load cycle.
	Extra map[string]any

	Jar *Jar
}

// New creates a session with a fresh device identity. The seed, usually
// username plus password, makes the android device id stable across logins.
func New(username, seed string) *Session {
	if seed == "" {
		seed = uuid.NewString()
	}
	_, offset := time.Now().Zone()
	return &Session{
		Username:       username,
		UUID:           uuid.NewString(),
		PhoneID:        uuid.NewString(),
		AdID:           uuid.NewString(),
		DeviceID:       DeviceID(seed),
		TimezoneOffset: offset,
		Created:        time.Now(),
		Jar:            NewJar(),
	}
}

// DeviceID derives an "android-<16 hex>" device id from seed
func DeviceID(seed string) string {
	hash := sha256.Sum256([]byte(seed))
	return "android-" + hex.EncodeToString(hash[:])[:16]
}

// Fresh returns a new session that keeps the device identity of s but has an
// empty cookie jar. Used on relogin.
func (s *Session) Fresh() *Session {
	return &Session{
		Username:       s.Username,
		UUID:           s.UUID,
		PhoneID:        s.PhoneID,
		AdID:           s.AdID,
		DeviceID:       s.DeviceID,
		UserAgent:      s.UserAgent,
		TimezoneOffset: s.TimezoneOffset,
		Created:        time.Now(),
		Extra:          s.Extra,
		Jar:            NewJar(),
	}
}

// CSRFToken returns the current csrftoken cookie value, empty if none
func (s *Session) CSRFToken() string {
	v, _ := s.Jar.Get(CookieCSRF)
	return v
}

// UserID returns the authenticated user id from the ds_user_id cookie
func (s *Session) UserID() string {
	v, _ := s.Jar.Get(CookieUserID)
	return v
}

// UserIDInt is UserID parsed as an integer, zero when not logged in
func (s *Session) UserIDInt() int64 {
	id, err := strconv.ParseInt(s.UserID(), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// RankToken is "<user id>_<uuid>", used by search and feed endpoints
func (s *Session) RankToken() string {
	return s.UserID() + "_" + s.UUID
}

// LoggedIn reports whether the jar holds a login cookie
func (s *Session) LoggedIn() bool {
	_, ok := s.Jar.Get(CookieUserID)
	if !ok {
		_, ok = s.Jar.Get(CookieSessionID)
	}
	return ok
}

// AuthExpired reports whether the login cookie has passed its expiry at now.
// Sessions whose cookies carry no expiry never expire locally.
func (s *Session) AuthExpired(now time.Time) bool {
	exp, ok := s.Jar.AuthExpires()
	return ok && !now.Before(exp)
}
