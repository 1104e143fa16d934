package instagram

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"

	"igapi/pkg/errors"
)

// DefaultCommentCount is how many comments MediaNComments collects when asked
// for zero or fewer
const DefaultCommentCount = 150

// Usertag places a user on a photo. Position is x, y in the range 0..1.
type Usertag struct {
	UserID   string     `json:"user_id"`
	Position [2]float64 `json:"position"`
}

// MediaInfo returns one post
func (c *Client) MediaInfo(mediaID string) (Response, error) {
	if err := requireID("media id", mediaID); err != nil {
		return nil, err
	}
	res, err := c.Call("media/"+mediaID+"/info/", Call{})
	if err != nil {
		return nil, err
	}
	c.patchMedia(res.Items("items")...)
	return res, nil
}

// MediasInfo returns several posts in one request
func (c *Client) MediasInfo(mediaIDs []string) (Response, error) {
	if len(mediaIDs) == 0 {
		return nil, errors.NewValidation("at least one media id is required")
	}
	res, err := c.Call("media/infos/", Call{
		Params: map[string]any{
			"_uuid":          c.session.UUID,
			"_csrftoken":     c.session.CSRFToken(),
			"media_ids":      strings.Join(mediaIDs, ","),
			"ranked_content": "true",
		},
		Unsigned: true,
	})
	if err != nil {
		return nil, err
	}
	c.patchMedia(res.Items("items")...)
	return res, nil
}

// MediaPermalink returns the web permalink of a post
func (c *Client) MediaPermalink(mediaID string) (Response, error) {
	if err := requireID("media id", mediaID); err != nil {
		return nil, err
	}
	return c.Call("media/"+mediaID+"/permalink/", Call{})
}

// MediaComments returns one page (20) of comments. query may carry max_id.
func (c *Client) MediaComments(mediaID string, query map[string]string) (Response, error) {
	if err := requireID("media id", mediaID); err != nil {
		return nil, err
	}
	res, err := c.Call("media/"+mediaID+"/comments/", Call{Query: query})
	if err != nil {
		return nil, err
	}
	c.patchComments(res.Items("comments")...)
	return res, nil
}

// MediaNComments collects at least n comments of a post, oldest first, or
// newest first when reverse is set.
func (c *Client) MediaNComments(mediaID string, n int, reverse bool) ([]map[string]any, error) {
	if err := requireID("media id", mediaID); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultCommentCount
	}

	comments, err := paginate(n, "comments", "has_more_comments", func(maxID string) (Response, error) {
		var query map[string]string
		if maxID != "" {
			query = map[string]string{"max_id": maxID}
		}
		return c.Call("media/"+mediaID+"/comments/", Call{Query: query})
	})
	if err != nil {
		return nil, err
	}
	c.patchComments(comments...)

	sort.SliceStable(comments, func(i, j int) bool {
		a, b := Response(comments[i]).Int("created_at"), Response(comments[j]).Int("created_at")
		if reverse {
			return a > b
		}
		return a < b
	})
	return comments, nil
}

// EditMedia replaces a post's caption and, when usertags is non-empty, its
// user tags
func (c *Client) EditMedia(mediaID, caption string, usertags []Usertag) (Response, error) {
	if err := requireID("media id", mediaID); err != nil {
		return nil, err
	}
	params := c.withAuth(map[string]any{"caption_text": caption})
	if len(usertags) > 0 {
		tags, err := json.Marshal(map[string]any{"in": usertags})
		if err != nil {
			return nil, errors.NewValidation("invalid usertags: %v", err)
		}
		params["usertags"] = string(tags)
	}

	res, err := c.Call("media/"+mediaID+"/edit_media/", Call{Params: params})
	if err != nil {
		return nil, err
	}
	if m := res.Map("media"); m != nil {
		c.patchMedia(m)
	}
	return res, nil
}

// DeleteMedia deletes one of the account's posts
func (c *Client) DeleteMedia(mediaID string) (Response, error) {
	if err := requireID("media id", mediaID); err != nil {
		return nil, err
	}
	return c.Call("media/"+mediaID+"/delete/", Call{Params: c.withAuth(map[string]any{"media_id": mediaID})})
}

// PostComment validates text locally, then comments on a post
func (c *Client) PostComment(mediaID, text string) (Response, error) {
	if err := requireID("media id", mediaID); err != nil {
		return nil, err
	}
	if err := ValidateComment(text); err != nil {
		return nil, err
	}

	res, err := c.Call("media/"+mediaID+"/comment/", Call{Params: c.withAuth(map[string]any{
		"comment_text":      text,
		"user_breadcrumb":   userBreadcrumb(len([]rune(text)), c.now(), c.rand),
		"idempotence_token": uuid.NewString(),
		"containermodule":   "comments_feed_timeline",
	})})
	if err != nil {
		return nil, err
	}
	if m := res.Map("comment"); m != nil {
		c.patchComments(m)
	}
	return res, nil
}

// DeleteComment removes a comment from a post
func (c *Client) DeleteComment(mediaID, commentID string) (Response, error) {
	if err := requireID("media id", mediaID); err != nil {
		return nil, err
	}
	if err := requireID("comment id", commentID); err != nil {
		return nil, err
	}
	return c.Call("media/"+mediaID+"/comment/"+commentID+"/delete/", Call{Params: c.authParams()})
}

// MediaLikers returns the users who liked a post
func (c *Client) MediaLikers(mediaID string, query map[string]string) (Response, error) {
	return c.likers("media/"+mediaID+"/likers/", mediaID, query)
}

// MediaLikersChrono returns the users who liked a post, oldest first
func (c *Client) MediaLikersChrono(mediaID string) (Response, error) {
	return c.likers("media/"+mediaID+"/likers_chrono/", mediaID, nil)
}

// CommentLikers returns the users who liked a comment
func (c *Client) CommentLikers(commentID string) (Response, error) {
	return c.likers("media/"+commentID+"/comment_likers/", commentID, nil)
}

func (c *Client) likers(endpoint, id string, query map[string]string) (Response, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	res, err := c.Call(endpoint, Call{Query: query})
	if err != nil {
		return nil, err
	}
	c.patchListUsers(res.Items("users")...)
	return res, nil
}

// PostLike likes a post
func (c *Client) PostLike(mediaID string) (Response, error) {
	if err := requireID("media id", mediaID); err != nil {
		return nil, err
	}
	return c.Call("media/"+mediaID+"/like/", Call{Params: c.withAuth(map[string]any{"media_id": mediaID})})
}

// DeleteLike unlikes a post
func (c *Client) DeleteLike(mediaID string) (Response, error) {
	if err := requireID("media id", mediaID); err != nil {
		return nil, err
	}
	return c.Call("media/"+mediaID+"/unlike/", Call{Params: c.withAuth(map[string]any{"media_id": mediaID})})
}

// MediaSeen marks stories as seen. reels maps a story media id to
// "<taken at>_<seen at>" unix timestamps.
func (c *Client) MediaSeen(reels map[string]string) (Response, error) {
	if len(reels) == 0 {
		return nil, errors.NewValidation("no reels to mark as seen")
	}
	r := make(map[string]any, len(reels))
	for k, v := range reels {
		r[k] = v
	}
	return c.Call("media/seen/", Call{Params: c.withAuth(map[string]any{
		"nuxes": map[string]any{},
		"reels": r,
	})})
}

// CommentLike likes a comment
func (c *Client) CommentLike(commentID string) (Response, error) {
	if err := requireID("comment id", commentID); err != nil {
		return nil, err
	}
	return c.Call("media/"+commentID+"/comment_like/", Call{Params: c.authParams()})
}

// CommentUnlike removes a like from a comment
func (c *Client) CommentUnlike(commentID string) (Response, error) {
	if err := requireID("comment id", commentID); err != nil {
		return nil, err
	}
	return c.Call("media/"+commentID+"/comment_unlike/", Call{Params: c.authParams()})
}

// SavePhoto adds a post to the saved collection
func (c *Client) SavePhoto(mediaID string) (Response, error) {
	if err := requireID("media id", mediaID); err != nil {
		return nil, err
	}
	return c.Call("media/"+mediaID+"/save/", Call{Params: c.withAuth(map[string]any{"radio_type": "WIFI"})})
}

// UnsavePhoto removes a post from the saved collection
func (c *Client) UnsavePhoto(mediaID string) (Response, error) {
	if err := requireID("media id", mediaID); err != nil {
		return nil, err
	}
	return c.Call("media/"+mediaID+"/unsave/", Call{Params: c.withAuth(map[string]any{"radio_type": "WIFI"})})
}

// DisableComments turns comments off on one of the account's posts
func (c *Client) DisableComments(mediaID string) (Response, error) {
	return c.toggleComments(mediaID, "disable_comments")
}

// EnableComments turns comments back on
func (c *Client) EnableComments(mediaID string) (Response, error) {
	return c.toggleComments(mediaID, "enable_comments")
}

func (c *Client) toggleComments(mediaID, action string) (Response, error) {
	if err := requireID("media id", mediaID); err != nil {
		return nil, err
	}
	return c.Call("media/"+mediaID+"/"+action+"/", Call{
		Params: map[string]any{
			"_csrftoken": c.session.CSRFToken(),
			"_uuid":      c.session.UUID,
		},
		Unsigned: true,
	})
}
