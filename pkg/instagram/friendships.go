package instagram

import (
	"strings"

	"igapi/pkg/errors"
)

// FriendshipsShow returns the relationship between the account and a user
func (c *Client) FriendshipsShow(userID string) (Response, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	return c.Call("friendships/show/"+userID+"/", Call{})
}

// FriendshipsShowMany returns relationships with several users at once
func (c *Client) FriendshipsShowMany(userIDs []string) (Response, error) {
	if len(userIDs) == 0 {
		return nil, errors.NewValidation("at least one user id is required")
	}
	return c.Call("friendships/show_many/", Call{
		Params: map[string]any{
			"_uuid":      c.session.UUID,
			"_csrftoken": c.session.CSRFToken(),
			"user_ids":   strings.Join(userIDs, ","),
		},
		Unsigned: true,
	})
}

// FriendshipsPending returns follow requests waiting for approval
func (c *Client) FriendshipsPending() (Response, error) {
	res, err := c.Call("friendships/pending/", Call{})
	if err != nil {
		return nil, err
	}
	c.patchListUsers(res.Items("users")...)
	return res, nil
}

// UserFollowing returns the accounts a user follows. query may carry max_id.
func (c *Client) UserFollowing(userID string, query map[string]string) (Response, error) {
	return c.followList("following", userID, query)
}

// UserFollowers returns the followers of a user. query may carry max_id.
func (c *Client) UserFollowers(userID string, query map[string]string) (Response, error) {
	return c.followList("followers", userID, query)
}

func (c *Client) followList(kind, userID string, query map[string]string) (Response, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	res, err := c.Call("friendships/"+userID+"/"+kind+"/", Call{Query: merge(map[string]string{
		"rank_token": c.RankToken(),
	}, query)})
	if err != nil {
		return nil, err
	}
	c.patchListUsers(res.Items("users")...)
	return res, nil
}

// FriendshipsCreate follows a user
func (c *Client) FriendshipsCreate(userID string) (Response, error) {
	return c.friendshipAction("create", userID)
}

// FriendshipsDestroy unfollows a user
func (c *Client) FriendshipsDestroy(userID string) (Response, error) {
	return c.friendshipAction("destroy", userID)
}

// FriendshipsBlock blocks a user
func (c *Client) FriendshipsBlock(userID string) (Response, error) {
	return c.friendshipAction("block", userID)
}

func (c *Client) friendshipAction(action, userID string) (Response, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	return c.Call("friendships/"+action+"/"+userID+"/", Call{Params: c.withAuth(map[string]any{"user_id": userID})})
}
