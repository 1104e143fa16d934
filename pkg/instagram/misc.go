package instagram

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"

	"igapi/pkg/errors"
)

// Translation object types
const (
	TranslateCaption = 1
	TranslateComment = 2
	TranslateBio     = 3
)

// DefaultExperiments is the experiment list Sync reports when none is given
var DefaultExperiments = []string{
	"ig_android_profile_contextual_feed",
	"ig_android_feed_seen_state_with_view_info",
	"ig_android_comment_inline_composer",
	"ig_android_live_comment_composer_animation_universe",
	"ig_android_direct_inbox_search",
	"ig_android_sticker_search_explorations",
	"ig_android_react_native_universe_kill_switch",
}

var stickerTypes = map[string]bool{"static_stickers": true}

// Explore returns the explore page
func (c *Client) Explore(query map[string]string) (Response, error) {
	res, err := c.Call("discover/explore/", Call{Query: query})
	if err != nil {
		return nil, err
	}
	for _, item := range res.Items("items") {
		if m, ok := item["media"].(map[string]any); ok {
			c.patchMedia(m)
		}
	}
	return res, nil
}

// DiscoverChaining returns accounts similar to userID
func (c *Client) DiscoverChaining(userID string) (Response, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	res, err := c.Call("discover/chaining/", Call{Query: map[string]string{"target_id": userID}})
	if err != nil {
		return nil, err
	}
	c.patchListUsers(res.Items("users")...)
	return res, nil
}

// TopSearch runs the blended users, hashtags and places search
func (c *Client) TopSearch(text string) (Response, error) {
	if err := requireID("query", text); err != nil {
		return nil, err
	}
	return c.Call("fbsearch/topsearch/", Call{Query: map[string]string{
		"context":         "blended",
		"ranked_token":    c.RankToken(),
		"query":           text,
		"timezone_offset": strconv.Itoa(c.session.TimezoneOffset),
	}})
}

// Stickers returns story stickers. location, when set, is lat, lng and
// horizontal accuracy.
func (c *Client) Stickers(stickerType string, location []float64) (Response, error) {
	if stickerType == "" {
		stickerType = "static_stickers"
	}
	if !stickerTypes[stickerType] {
		return nil, errors.NewValidation("unsupported sticker type %q", stickerType)
	}
	params := map[string]any{"type": stickerType}
	if len(location) > 0 {
		if len(location) != 3 {
			return nil, errors.NewValidation("location must be lat, lng and accuracy")
		}
		params["lat"] = location[0]
		params["lng"] = location[1]
		params["horizontalAccuracy"] = location[2]
	}
	return c.Call("creatives/assets/", Call{Params: c.withAuth(params)})
}

// Sync reports the client's experiments. An empty list sends DefaultExperiments.
func (c *Client) Sync(experiments []string) (Response, error) {
	if len(experiments) == 0 {
		experiments = DefaultExperiments
	}
	return c.Call("qe/sync/", Call{Params: c.withAuth(map[string]any{
		"id":          c.AuthenticatedUserID(),
		"experiments": strings.Join(experiments, ","),
	})})
}

// Expose reports that an experiment was shown
func (c *Client) Expose(experiment string) (Response, error) {
	if experiment == "" {
		experiment = "ig_android_profile_contextual_feed"
	}
	return c.Call("qe/expose/", Call{Params: c.withAuth(map[string]any{
		"id":         c.AuthenticatedUserID(),
		"experiment": experiment,
	})})
}

// MegaphoneLog records an interaction with an in-app banner. Empty logType
// and action default to "feed_aysf" and "seen".
func (c *Client) MegaphoneLog(logType, action, reason string) (Response, error) {
	if logType == "" {
		logType = "feed_aysf"
	}
	if action == "" {
		action = "seen"
	}
	sum := md5.Sum([]byte(strconv.FormatInt(c.now().Unix(), 10)))
	return c.Call("megaphone/log/", Call{
		Params: map[string]any{
			"type":       logType,
			"action":     action,
			"reason":     reason,
			"_uuid":      c.session.UUID,
			"device_id":  c.session.DeviceID,
			"_csrftoken": c.session.CSRFToken(),
			"uuid":       hex.EncodeToString(sum[:]),
		},
		Unsigned: true,
	})
}

// RankedRecipients returns suggested direct message recipients
func (c *Client) RankedRecipients() (Response, error) {
	return c.Call("direct_v2/ranked_recipients/", Call{Query: map[string]string{"show_threads": "true"}})
}

// RecentRecipients returns recent direct share recipients
func (c *Client) RecentRecipients() (Response, error) {
	return c.Call("direct_share/recent_recipients/", Call{})
}

// News returns activity of the accounts the user follows
func (c *Client) News(query map[string]string) (Response, error) {
	return c.Call("news/", Call{Query: query})
}

// NewsInbox returns activity on the user's own account
func (c *Client) NewsInbox() (Response, error) {
	return c.Call("news/inbox/", Call{})
}

// DirectV2Inbox returns the direct message inbox
func (c *Client) DirectV2Inbox(query map[string]string) (Response, error) {
	return c.Call("direct_v2/inbox/", Call{Query: query})
}

// Oembed returns embed markup for a post's web URL
func (c *Client) Oembed(postURL string, query map[string]string) (Response, error) {
	if err := requireID("url", postURL); err != nil {
		return nil, err
	}
	return c.Call("oembed/", Call{Query: merge(map[string]string{"url": postURL}, query)})
}

// Translate translates a caption, comment or bio
func (c *Client) Translate(objectID string, objectType int) (Response, error) {
	if err := requireID("object id", objectID); err != nil {
		return nil, err
	}
	if objectType < TranslateCaption || objectType > TranslateBio {
		return nil, errors.NewValidation("invalid translation object type %d", objectType)
	}
	return c.Call("language/translate/", Call{Query: map[string]string{
		"id":   objectID,
		"type": strconv.Itoa(objectType),
	}})
}

// BulkTranslate translates several comments
func (c *Client) BulkTranslate(commentIDs []string) (Response, error) {
	if len(commentIDs) == 0 {
		return nil, errors.NewValidation("at least one comment id is required")
	}
	return c.Call("language/bulk_translate/", Call{Query: map[string]string{
		"comment_ids": strings.Join(commentIDs, ","),
	}})
}
