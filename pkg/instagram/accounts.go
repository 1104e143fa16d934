package instagram

import (
	"strconv"

	"igapi/pkg/errors"
)

// Gender values accepted by EditProfile
const (
	GenderMale        = 1
	GenderFemale      = 2
	GenderUnspecified = 3
)

// Profile holds the fields EditProfile sends. All are sent, so start from
// CurrentUser to keep the values you do not mean to change.
type Profile struct {
	FirstName   string
	Biography   string
	ExternalURL string
	Email       string
	PhoneNumber string
	Gender      int
}

// CurrentUser returns the logged in account's editable profile
func (c *Client) CurrentUser() (Response, error) {
	res, err := c.Call("accounts/current_user/", Call{Query: map[string]string{"edit": "true"}})
	if err != nil {
		return nil, err
	}
	if u := res.Map("user"); u != nil {
		c.patchUser(u)
	}
	return res, nil
}

// EditProfile updates the logged in account's profile
func (c *Client) EditProfile(p Profile) (Response, error) {
	if p.Gender < GenderMale || p.Gender > GenderUnspecified {
		return nil, errors.NewValidation("invalid gender %d", p.Gender)
	}
	if p.Email == "" {
		return nil, errors.NewValidation("email is required")
	}

	res, err := c.Call("accounts/edit_profile/", Call{Params: c.withAuth(map[string]any{
		"username":     c.username,
		"gender":       strconv.Itoa(p.Gender),
		"phone_number": p.PhoneNumber,
		"first_name":   p.FirstName,
		"biography":    p.Biography,
		"external_url": p.ExternalURL,
		"email":        p.Email,
	})})
	if err != nil {
		return nil, err
	}
	if u := res.Map("user"); u != nil {
		c.patchUser(u)
	}
	return res, nil
}

// RemoveProfilePicture resets the profile picture to the default silhouette
func (c *Client) RemoveProfilePicture() (Response, error) {
	return c.accountAction("accounts/remove_profile_picture/")
}

// SetAccountPrivate makes the account private
func (c *Client) SetAccountPrivate() (Response, error) {
	return c.accountAction("accounts/set_private/")
}

// SetAccountPublic makes the account public
func (c *Client) SetAccountPublic() (Response, error) {
	return c.accountAction("accounts/set_public/")
}

func (c *Client) accountAction(endpoint string) (Response, error) {
	res, err := c.Call(endpoint, Call{Params: c.authParams()})
	if err != nil {
		return nil, err
	}
	if u := res.Map("user"); u != nil {
		c.patchUser(u)
	}
	return res, nil
}

// PresenceStatus reports whether activity status is shown to others
func (c *Client) PresenceStatus() (Response, error) {
	return c.Call("accounts/get_presence_disabled/", Call{})
}
