package instagram

import (
	"strconv"

	"github.com/google/uuid"

	"igapi/pkg/errors"
)

const maxBroadcastLikes = 5

// BroadcastInfo returns a live broadcast's details
func (c *Client) BroadcastInfo(broadcastID string) (Response, error) {
	if err := requireID("broadcast id", broadcastID); err != nil {
		return nil, err
	}
	return c.Call("live/"+broadcastID+"/info/", Call{})
}

// BroadcastComments returns comments posted after lastCommentTS
func (c *Client) BroadcastComments(broadcastID string, lastCommentTS int64) (Response, error) {
	if err := requireID("broadcast id", broadcastID); err != nil {
		return nil, err
	}
	res, err := c.Call("live/"+broadcastID+"/get_comment/", Call{Query: map[string]string{
		"last_comment_ts": strconv.FormatInt(lastCommentTS, 10),
	}})
	if err != nil {
		return nil, err
	}
	c.patchComments(res.Items("comments")...)
	return res, nil
}

// BroadcastHeartbeatAndViewerCount keeps a viewer registered and returns the
// current viewer count
func (c *Client) BroadcastHeartbeatAndViewerCount(broadcastID string) (Response, error) {
	if err := requireID("broadcast id", broadcastID); err != nil {
		return nil, err
	}
	return c.Call("live/"+broadcastID+"/heartbeat_and_get_viewer_count/", Call{
		Params: map[string]any{
			"_csrftoken": c.session.CSRFToken(),
			"_uuid":      c.session.UUID,
		},
		Unsigned: true,
	})
}

// BroadcastLikeCount returns likes received since likeTS
func (c *Client) BroadcastLikeCount(broadcastID string, likeTS int64) (Response, error) {
	if err := requireID("broadcast id", broadcastID); err != nil {
		return nil, err
	}
	return c.Call("live/"+broadcastID+"/get_like_count/", Call{Query: map[string]string{
		"like_ts": strconv.FormatInt(likeTS, 10),
	}})
}

// BroadcastLike sends 1 to 5 likes to a live broadcast
func (c *Client) BroadcastLike(broadcastID string, count int) (Response, error) {
	if err := requireID("broadcast id", broadcastID); err != nil {
		return nil, err
	}
	if count < 1 || count > maxBroadcastLikes {
		return nil, errors.NewValidation("like count must be between 1 and %d", maxBroadcastLikes)
	}
	return c.Call("live/"+broadcastID+"/like/", Call{Params: c.withAuth(map[string]any{
		"user_like_count": strconv.Itoa(count),
	})})
}

// BroadcastComment comments on a live broadcast
func (c *Client) BroadcastComment(broadcastID, text string) (Response, error) {
	if err := requireID("broadcast id", broadcastID); err != nil {
		return nil, err
	}
	if err := ValidateComment(text); err != nil {
		return nil, err
	}
	res, err := c.Call("live/"+broadcastID+"/comment/", Call{Params: c.withAuth(map[string]any{
		"live_or_vod":           "1",
		"offset_to_video_start": "0",
		"comment_text":          text,
		"user_breadcrumb":       userBreadcrumb(len([]rune(text)), c.now(), c.rand),
		"idempotence_token":     uuid.NewString(),
	})})
	if err != nil {
		return nil, err
	}
	if m := res.Map("comment"); m != nil {
		c.patchComments(m)
	}
	return res, nil
}

// DiscoverTopLive returns the top live broadcasts
func (c *Client) DiscoverTopLive(query map[string]string) (Response, error) {
	return c.Call("discover/top_live/", Call{Query: query})
}

// SuggestedBroadcasts returns broadcasts suggested for the account
func (c *Client) SuggestedBroadcasts(query map[string]string) (Response, error) {
	return c.Call("live/get_suggested_broadcasts/", Call{Query: query})
}

// TopLiveStatus returns the status of several broadcasts
func (c *Client) TopLiveStatus(broadcastIDs []string) (Response, error) {
	if len(broadcastIDs) == 0 {
		return nil, errors.NewValidation("at least one broadcast id is required")
	}
	ids := make([]any, len(broadcastIDs))
	for i, id := range broadcastIDs {
		ids[i] = id
	}
	return c.Call("discover/top_live_status/", Call{Params: c.withAuth(map[string]any{
		"broadcast_ids": ids,
	})})
}
