package instagram

import (
	"encoding/json"
	"strconv"
)

// TagInfo returns a hashtag's media count
func (c *Client) TagInfo(tag string) (Response, error) {
	if err := requireID("tag", tag); err != nil {
		return nil, err
	}
	return c.Call("tags/"+tag+"/info/", Call{})
}

// TagRelated returns hashtags related to tag
func (c *Client) TagRelated(tag string) (Response, error) {
	if err := requireID("tag", tag); err != nil {
		return nil, err
	}
	return c.Call("tags/"+tag+"/related/", Call{Query: relatedQuery(tag, "hashtag")})
}

// TagSearch searches hashtags by name
func (c *Client) TagSearch(text string, query map[string]string) (Response, error) {
	if err := requireID("query", text); err != nil {
		return nil, err
	}
	return c.Call("tags/search/", Call{Query: merge(map[string]string{
		"q":               text,
		"timezone_offset": strconv.Itoa(c.session.TimezoneOffset),
		"count":           "30",
		"rank_token":      c.RankToken(),
	}, query)})
}

// UsertagFeed returns posts in which a user is tagged
func (c *Client) UsertagFeed(userID string, query map[string]string) (Response, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	res, err := c.Call("usertags/"+userID+"/feed/", Call{Query: merge(map[string]string{
		"rank_token":     c.RankToken(),
		"ranked_content": "true",
	}, query)})
	if err != nil {
		return nil, err
	}
	c.patchMedia(res.Items("items")...)
	return res, nil
}

// UsertagSelfRemove removes the account's tag from a post
func (c *Client) UsertagSelfRemove(mediaID string) (Response, error) {
	if err := requireID("media id", mediaID); err != nil {
		return nil, err
	}
	res, err := c.Call("usertags/"+mediaID+"/remove/", Call{Params: c.authParams()})
	if err != nil {
		return nil, err
	}
	if m := res.Map("media"); m != nil {
		c.patchMedia(m)
	}
	return res, nil
}

// relatedQuery builds the visited/related_types pair shared by the related
// tag and location endpoints
func relatedQuery(id, kind string) map[string]string {
	visited, _ := json.Marshal([]map[string]string{{"id": id, "type": kind}})
	types, _ := json.Marshal([]string{kind})
	return map[string]string{
		"visited":       string(visited),
		"related_types": string(types),
	}
}
