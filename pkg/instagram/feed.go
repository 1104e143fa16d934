package instagram

import "strconv"

// DefaultTimelineItems is how many timeline items FeedTimeline collects when
// asked for zero or fewer
const DefaultTimelineItems = 50

// FeedLiked returns media the account has liked
func (c *Client) FeedLiked(query map[string]string) (Response, error) {
	res, err := c.Call("feed/liked/", Call{Query: query})
	if err != nil {
		return nil, err
	}
	c.patchMedia(res.Items("items")...)
	return res, nil
}

// FeedTimeline collects at least n timeline items (fewer when the feed runs
// out). extra is merged into every page request, e.g. seen_posts.
func (c *Client) FeedTimeline(n int, extra map[string]string) ([]map[string]any, error) {
	if n <= 0 {
		n = DefaultTimelineItems
	}
	items, err := paginate(n, "feed_items", "more_available", func(maxID string) (Response, error) {
		params := map[string]any{
			"_uuid":              c.session.UUID,
			"_csrftoken":         c.session.CSRFToken(),
			"is_prefetch":        "0",
			"is_pull_to_refresh": "0",
			"phone_id":           c.session.PhoneID,
			"timezone_offset":    strconv.Itoa(c.session.TimezoneOffset),
		}
		for k, v := range extra {
			params[k] = v
		}
		if maxID != "" {
			params["max_id"] = maxID
		}
		return c.Call("feed/timeline/", Call{Params: params, Unsigned: true})
	})
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if m, ok := item["media_or_ad"].(map[string]any); ok {
			c.patchMedia(m)
		}
	}
	return items, nil
}

// FeedPopular returns the popular (explore) feed
func (c *Client) FeedPopular(query map[string]string) (Response, error) {
	res, err := c.Call("feed/popular", Call{Query: merge(map[string]string{
		"people_teaser_supported": "1",
		"rank_token":              c.RankToken(),
		"ranked_content":          "true",
	}, query)})
	if err != nil {
		return nil, err
	}
	c.patchMedia(res.Items("items")...)
	return res, nil
}

// UserFeed returns a user's posts. query may carry max_id or min_timestamp.
func (c *Client) UserFeed(userID string, query map[string]string) (Response, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	res, err := c.Call("feed/user/"+userID+"/", Call{Query: merge(map[string]string{
		"rank_token":     c.RankToken(),
		"ranked_content": "true",
	}, query)})
	if err != nil {
		return nil, err
	}
	c.patchMedia(res.Items("items")...)
	return res, nil
}

// SelfFeed is UserFeed for the logged in account
func (c *Client) SelfFeed(query map[string]string) (Response, error) {
	return c.UserFeed(c.AuthenticatedUserID(), query)
}

// UsernameFeed returns a user's posts looked up by name
func (c *Client) UsernameFeed(username string, query map[string]string) (Response, error) {
	if err := requireID("username", username); err != nil {
		return nil, err
	}
	res, err := c.Call("feed/user/"+username+"/username/", Call{Query: query})
	if err != nil {
		return nil, err
	}
	c.patchMedia(res.Items("items")...)
	return res, nil
}

// ReelsTray returns the story tray shown above the timeline
func (c *Client) ReelsTray(query map[string]string) (Response, error) {
	res, err := c.Call("feed/reels_tray/", Call{Query: query})
	if err != nil {
		return nil, err
	}
	for _, reel := range res.Items("tray") {
		c.patchMedia(Response(reel).Items("items")...)
	}
	return res, nil
}

// UserReelMedia returns a user's current story
func (c *Client) UserReelMedia(userID string, query map[string]string) (Response, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	res, err := c.Call("feed/user/"+userID+"/reel_media/", Call{Query: query})
	if err != nil {
		return nil, err
	}
	c.patchMedia(res.Items("items")...)
	return res, nil
}

// ReelsMedia returns the stories of several users at once
func (c *Client) ReelsMedia(userIDs []string, extra map[string]any) (Response, error) {
	if len(userIDs) == 0 {
		return nil, requireID("user ids", "")
	}
	ids := make([]any, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id
	}
	params := map[string]any{"user_ids": ids}
	for k, v := range extra {
		params[k] = v
	}

	res, err := c.Call("feed/reels_media/", Call{Params: params})
	if err != nil {
		return nil, err
	}
	for _, reel := range res.Items("reels_media") {
		c.patchMedia(Response(reel).Items("items")...)
	}
	for _, reel := range res.Map("reels") {
		if m, ok := reel.(map[string]any); ok {
			c.patchMedia(Response(m).Items("items")...)
		}
	}
	return res, nil
}

// FeedTag returns recent and ranked posts for a hashtag
func (c *Client) FeedTag(tag string, query map[string]string) (Response, error) {
	if err := requireID("tag", tag); err != nil {
		return nil, err
	}
	res, err := c.Call("feed/tag/"+tag+"/", Call{Query: query})
	if err != nil {
		return nil, err
	}
	c.patchMedia(res.Items("items")...)
	c.patchMedia(res.Items("ranked_items")...)
	return res, nil
}

// UserStoryFeed returns a user's story and live broadcast, if any
func (c *Client) UserStoryFeed(userID string) (Response, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	res, err := c.Call("feed/user/"+userID+"/story/", Call{})
	if err != nil {
		return nil, err
	}
	if reel := res.Map("reel"); reel != nil {
		c.patchMedia(reel.Items("items")...)
	}
	return res, nil
}

// FeedLocation returns posts tagged with a location
func (c *Client) FeedLocation(locationID string, query map[string]string) (Response, error) {
	if err := requireID("location id", locationID); err != nil {
		return nil, err
	}
	res, err := c.Call("feed/location/"+locationID+"/", Call{Query: query})
	if err != nil {
		return nil, err
	}
	c.patchMedia(res.Items("items")...)
	c.patchMedia(res.Items("ranked_items")...)
	return res, nil
}

// SavedFeed returns the account's saved posts
func (c *Client) SavedFeed(query map[string]string) (Response, error) {
	res, err := c.Call("feed/saved/", Call{Query: query})
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
