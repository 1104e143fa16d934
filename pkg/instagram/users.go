package instagram

import "strconv"

// UserInfo returns a user's profile by numeric id
func (c *Client) UserInfo(userID string) (Response, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	return c.userCall("users/"+userID+"/info/", nil)
}

// UsernameInfo returns a user's profile by username
func (c *Client) UsernameInfo(username string) (Response, error) {
	if err := requireID("username", username); err != nil {
		return nil, err
	}
	return c.userCall("users/"+username+"/usernameinfo/", nil)
}

func (c *Client) userCall(endpoint string, query map[string]string) (Response, error) {
	res, err := c.Call(endpoint, Call{Query: query})
	if err != nil {
		return nil, err
	}
	if u := res.Map("user"); u != nil {
		c.patchUser(u)
	}
	return res, nil
}

// UserDetailInfo returns profile, feed and story of a user in one response
func (c *Client) UserDetailInfo(userID string, query map[string]string) (Response, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	res, err := c.Call("users/"+userID+"/full_detail_info/", Call{Query: query})
	if err != nil {
		return nil, err
	}
	if detail := res.Map("user_detail"); detail != nil {
		if u := detail.Map("user"); u != nil {
			c.patchUser(u)
		}
	}
	if feed := res.Map("feed"); feed != nil {
		c.patchMedia(feed.Items("items")...)
	}
	if reel := res.Map("reel_feed"); reel != nil {
		c.patchMedia(reel.Items("items")...)
	}
	return res, nil
}

// UserMap returns the geotagged media of a user
func (c *Client) UserMap(userID string) (Response, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	return c.Call("maps/user/"+userID+"/", Call{})
}

// SearchUsers runs a typeahead user search
func (c *Client) SearchUsers(query string, extra map[string]string) (Response, error) {
	if err := requireID("query", query); err != nil {
		return nil, err
	}
	res, err := c.Call("users/search/", Call{Query: merge(map[string]string{
		"ig_sig_key_version": c.signer.KeyVersion,
		"is_typeahead":       "true",
		"q":                  query,
		"rank_token":         c.RankToken(),
		"timezone_offset":    strconv.Itoa(c.session.TimezoneOffset),
	}, extra)})
	if err != nil {
		return nil, err
	}
	c.patchListUsers(res.Items("users")...)
	return res, nil
}

// CheckUsername reports whether a username is available
func (c *Client) CheckUsername(username string) (Response, error) {
	if err := requireID("username", username); err != nil {
		return nil, err
	}
	return c.Call("users/check_username/", Call{Params: c.withAuth(map[string]any{"username": username})})
}

// BlockedUserList returns the accounts the user has blocked
func (c *Client) BlockedUserList() (Response, error) {
	res, err := c.Call("users/blocked_list/", Call{})
	if err != nil {
		return nil, err
	}
	c.patchListUsers(res.Items("blocked_list")...)
	return res, nil
}
