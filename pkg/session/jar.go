package session

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Names of the cookies the client cares about
const (
	CookieCSRF      = "csrftoken"
	CookieSessionID = "sessionid"
	CookieUserID    = "ds_user_id"
	CookieMID       = "mid"
)

// Cookie is the persisted form of one jar entry. Expires is a unix timestamp,
// zero for cookies that live as long as the session.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Expires  int64  `json:"expires,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	HttpOnly bool   `json:"http_only,omitempty"`
}

func (c *Cookie) expired(now time.Time) bool {
	return c.Expires != 0 && now.Unix() >= c.Expires
}

func domainMatch(host, domain string) bool {
	domain = strings.TrimPrefix(domain, ".")
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func (c *Cookie) matches(host, path string) bool {
	if !domainMatch(host, c.Domain) {
		return false
	}
	p := c.Path
	if p == "" {
		p = "/"
	}
	return strings.HasPrefix(path, p)
}

// Jar is an http.CookieJar whose entries, expiry included, can be exported
// and restored. It has no locking; the owning client serializes access.
type Jar struct {
	cookies map[string]*Cookie
	now     func() time.Time
}

// NewJar returns an empty jar
func NewJar() *Jar {
	return &Jar{cookies: make(map[string]*Cookie), now: time.Now}
}

func key(name, domain, path string) string {
	return strings.TrimPrefix(domain, ".") + ";" + path + ";" + name
}

// SetCookies implements http.CookieJar
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	now := j.now()
	for _, hc := range cookies {
		c := &Cookie{
			Name:     hc.Name,
			Value:    hc.Value,
			Domain:   hc.Domain,
			Path:     hc.Path,
			Secure:   hc.Secure,
			HttpOnly: hc.HttpOnly,
		}
		if c.Domain == "" {
			c.Domain = u.Hostname()
		} else if !domainMatch(u.Hostname(), c.Domain) {
			continue
		}
		if c.Path == "" {
			c.Path = "/"
		}

		switch {
		case hc.MaxAge < 0:
			delete(j.cookies, key(c.Name, c.Domain, c.Path))
			continue
		case hc.MaxAge > 0:
			c.Expires = now.Add(time.Duration(hc.MaxAge) * time.Second).Unix()
		case !hc.Expires.IsZero():
			c.Expires = hc.Expires.Unix()
		}

		if c.expired(now) {
			delete(j.cookies, key(c.Name, c.Domain, c.Path))
			continue
		}
		j.cookies[key(c.Name, c.Domain, c.Path)] = c
	}
}

// Cookies implements http.CookieJar
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	now := j.now()
	host := u.Hostname()
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	var out []*http.Cookie
	for _, c := range j.sorted() {
		if c.expired(now) || !c.matches(host, path) {
			continue
		}
		if c.Secure && u.Scheme != "https" {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// Get returns the value of the first live cookie with the given name
func (j *Jar) Get(name string) (string, bool) {
	if c := j.find(name); c != nil {
		return c.Value, true
	}
	return "", false
}

// Set stores a cookie directly, bypassing response handling
func (j *Jar) Set(c Cookie) {
	if c.Path == "" {
		c.Path = "/"
	}
	j.cookies[key(c.Name, c.Domain, c.Path)] = &c
}

// AuthExpires returns when the login cookie expires. ok is false when the jar
// holds no login cookie or it carries no expiry.
func (j *Jar) AuthExpires() (t time.Time, ok bool) {
	c := j.findAny(CookieUserID)
	if c == nil {
		c = j.findAny(CookieSessionID)
	}
	if c == nil || c.Expires == 0 {
		return time.Time{}, false
	}
	return time.Unix(c.Expires, 0), true
}

// ExpiresEarliest returns the soonest expiry across all cookies
func (j *Jar) ExpiresEarliest() (time.Time, bool) {
	var earliest int64
	for _, c := range j.cookies {
		if c.Expires != 0 && (earliest == 0 || c.Expires < earliest) {
			earliest = c.Expires
		}
	}
	if earliest == 0 {
		return time.Time{}, false
	}
	return time.Unix(earliest, 0), true
}

// Export returns a copy of every entry, expired ones included, sorted by key
func (j *Jar) Export() []Cookie {
	sorted := j.sorted()
	out := make([]Cookie, 0, len(sorted))
	for _, c := range sorted {
		out = append(out, *c)
	}
	return out
}

// Len returns the number of stored cookies
func (j *Jar) Len() int {
	return len(j.cookies)
}

// Clear drops every cookie
func (j *Jar) Clear() {
	j.cookies = make(map[string]*Cookie)
}

func (j *Jar) find(name string) *Cookie {
	now := j.now()
	for _, c := range j.sorted() {
		if c.Name == name && !c.expired(now) {
			return c
		}
	}
	return nil
}

// findAny ignores expiry so callers can tell "expired" from "absent"
func (j *Jar) findAny(name string) *Cookie {
	for _, c := range j.sorted() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (j *Jar) sorted() []*Cookie {
	keys := make([]string, 0, len(j.cookies))
	for k := range j.cookies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*Cookie, 0, len(keys))
	for _, k := range keys {
		out = append(out, j.cookies[k])
	}
	return out
}
