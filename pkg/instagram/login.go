package instagram

import (
	"strings"

	"igapi/pkg/errors"
)

// Login authenticates with the stored credentials. On success the client is
// authenticated and OnLogin fires with the new snapshot. On failure the client
// is left unauthenticated.
func (c *Client) Login() error {
	if c.username == "" || c.password == "" {
		return errors.NewValidation("username and password are required to log in")
	}

	c.setState(StateAuthenticating)
	if err := c.login(); err != nil {
		c.setState(StateUnauthenticated)
		c.logger.WithError(err).WarnWithFields("login failed", map[string]interface{}{
			"username": c.username,
		})
		return err
	}
	c.setState(StateAuthenticated)

	c.logger.InfoWithFields("logged in", map[string]interface{}{
		"username": c.username,
		"user_id":  c.session.UserID(),
	})

	if c.onLogin != nil {
		c.onLogin(c.session.Snapshot())
	}
	return nil
}

func (c *Client) login() error {
	// Primes the csrftoken cookie; a rejected or unparsable reply is fine.
	_, err := c.do("si/fetch_headers/", Call{Query: map[string]string{
		"challenge_type": "signup",
		"guid":           strings.ReplaceAll(c.session.UUID, "-", ""),
	}})
	if err != nil && !errors.Is(err, errors.ErrAPI) && !errors.Is(err, errors.ErrParsing) {
		return err
	}

	res, err := c.do("accounts/login/", Call{Params: map[string]any{
		"device_id":           c.session.DeviceID,
		"guid":                c.session.UUID,
		"adid":                c.session.AdID,
		"phone_id":            c.session.PhoneID,
		"_csrftoken":          c.session.CSRFToken(),
		"username":            c.username,
		"password":            c.password,
		"login_attempt_count": "0",
	}})
	if err != nil {
		return asLoginError(err)
	}
	if res.Map("logged_in_user") == nil {
		return errors.New(errors.ErrorTypeLogin, 200, "login response carries no logged_in_user", "", nil)
	}
	return nil
}

// asLoginError turns generic API failures of the login call into login errors.
// Checkpoint, throttling, transport and parsing failures keep their kind.
func asLoginError(err error) error {
	e, ok := errors.As(err)
	if !ok || (e.Type != errors.ErrorTypeAPI && e.Type != errors.ErrorTypeSessionExpired) {
		return err
	}
	return errors.New(errors.ErrorTypeLogin, e.Code, e.Message, e.VendorType, e.Body)
}

// Relogin starts a fresh session that keeps the device identity and logs in
// again with the stored credentials. This is the way out of StateExpired.
func (c *Client) Relogin() error {
	if c.username == "" || c.password == "" {
		return errors.NewValidation("relogin needs stored credentials")
	}
	c.session = c.session.Fresh()
	c.httpClient.Jar = c.session.Jar
	return c.Login()
}

// Logout ends the session on the server and clears local cookies, even when
// the server call fails.
func (c *Client) Logout() error {
	_, err := c.Call("accounts/logout/", Call{
		Params: map[string]any{
			"phone_id":   c.session.PhoneID,
			"_csrftoken": c.session.CSRFToken(),
			"guid":       c.session.UUID,
			"device_id":  c.session.DeviceID,
			"_uuid":      c.session.UUID,
		},
		Unsigned: true,
	})
	c.session.Jar.Clear()
	c.setState(StateUnauthenticated)
	return err
}
