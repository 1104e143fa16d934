package instagram

import (
	"net/http"
	"net/url"
	"testing"

	"igapi/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  url.Values
	form   url.Values
}

// newRecordingClient returns an authenticated client whose server answers
// every request with body and remembers the last request
func newRecordingClient(t *testing.T, body string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		*rec = recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			form:   r.PostForm,
		}
		writeJSON(w, http.StatusOK, body)
	})
	authenticate(t, c)
	return c, rec
}

func TestEndpointRouting(t *testing.T) {
	tests := []struct {
		name   string
		call   func(c *Client) (Response, error)
		method string
		path   string
		signed bool
		query  map[string]string
	}{
		// accounts
		{"CurrentUser", func(c *Client) (Response, error) { return c.CurrentUser() }, "GET", "accounts/current_user/", false, map[string]string{"edit": "true"}},
		{"EditProfile", func(c *Client) (Response, error) {
			return c.EditProfile(Profile{Email: "a@b.c", Gender: GenderUnspecified})
		}, "POST", "accounts/edit_profile/", true, nil},
		{"RemoveProfilePicture", func(c *Client) (Response, error) { return c.RemoveProfilePicture() }, "POST", "accounts/remove_profile_picture/", true, nil},
		{"SetAccountPrivate", func(c *Client) (Response, error) { return c.SetAccountPrivate() }, "POST", "accounts/set_private/", true, nil},
		{"SetAccountPublic", func(c *Client) (Response, error) { return c.SetAccountPublic() }, "POST", "accounts/set_public/", true, nil},
		{"PresenceStatus", func(c *Client) (Response, error) { return c.PresenceStatus() }, "GET", "accounts/get_presence_disabled/", false, nil},

		// feed
		{"FeedLiked", func(c *Client) (Response, error) { return c.FeedLiked(nil) }, "GET", "feed/liked/", false, nil},
		{"FeedPopular", func(c *Client) (Response, error) { return c.FeedPopular(nil) }, "GET", "feed/popular", false, map[string]string{"ranked_content": "true"}},
		{"UserFeed", func(c *Client) (Response, error) {
			return c.UserFeed("7", map[string]string{"max_id": "m"})
		}, "GET", "feed/user/7/", false, map[string]string{"max_id": "m", "ranked_content": "true"}},
		{"SelfFeed", func(c *Client) (Response, error) { return c.SelfFeed(nil) }, "GET", "feed/user/42/", false, nil},
		{"UsernameFeed", func(c *Client) (Response, error) { return c.UsernameFeed("bob", nil) }, "GET", "feed/user/bob/username/", false, nil},
		{"ReelsTray", func(c *Client) (Response, error) { return c.ReelsTray(nil) }, "GET", "feed/reels_tray/", false, nil},
		{"UserReelMedia", func(c *Client) (Response, error) { return c.UserReelMedia("7", nil) }, "GET", "feed/user/7/reel_media/", false, nil},
		{"ReelsMedia", func(c *Client) (Response, error) { return c.ReelsMedia([]string{"7", "8"}, nil) }, "POST", "feed/reels_media/", true, nil},
		{"FeedTag", func(c *Client) (Response, error) { return c.FeedTag("go", nil) }, "GET", "feed/tag/go/", false, nil},
		{"UserStoryFeed", func(c *Client) (Response, error) { return c.UserStoryFeed("7") }, "GET", "feed/user/7/story/", false, nil},
		{"FeedLocation", func(c *Client) (Response, error) { return c.FeedLocation("99", nil) }, "GET", "feed/location/99/", false, nil},
		{"SavedFeed", func(c *Client) (Response, error) { return c.SavedFeed(nil) }, "GET", "feed/saved/", false, nil},

		// media
		{"MediaInfo", func(c *Client) (Response, error) { return c.MediaInfo("1_7") }, "GET", "media/1_7/info/", false, nil},
		{"MediasInfo", func(c *Client) (Response, error) { return c.MediasInfo([]string{"1_7", "2_7"}) }, "POST", "media/infos/", false, nil},
		{"MediaPermalink", func(c *Client) (Response, error) { return c.MediaPermalink("1_7") }, "GET", "media/1_7/permalink/", false, nil},
		{"MediaComments", func(c *Client) (Response, error) { return c.MediaComments("1_7", nil) }, "GET", "media/1_7/comments/", false, nil},
		{"EditMedia", func(c *Client) (Response, error) {
			return c.EditMedia("1_7", "new caption", []Usertag{{UserID: "8", Position: [2]float64{0.5, 0.5}}})
		}, "POST", "media/1_7/edit_media/", true, nil},
		{"DeleteMedia", func(c *Client) (Response, error) { return c.DeleteMedia("1_7") }, "POST", "media/1_7/delete/", true, nil},
		{"DeleteComment", func(c *Client) (Response, error) { return c.DeleteComment("1_7", "9") }, "POST", "media/1_7/comment/9/delete/", true, nil},
		{"MediaLikers", func(c *Client) (Response, error) { return c.MediaLikers("1_7", nil) }, "GET", "media/1_7/likers/", false, nil},
		{"MediaLikersChrono", func(c *Client) (Response, error) { return c.MediaLikersChrono("1_7") }, "GET", "media/1_7/likers_chrono/", false, nil},
		{"CommentLikers", func(c *Client) (Response, error) { return c.CommentLikers("9") }, "GET", "media/9/comment_likers/", false, nil},
		{"PostLike", func(c *Client) (Response, error) { return c.PostLike("1_7") }, "POST", "media/1_7/like/", true, nil},
		{"DeleteLike", func(c *Client) (Response, error) { return c.DeleteLike("1_7") }, "POST", "media/1_7/unlike/", true, nil},
		{"MediaSeen", func(c *Client) (Response, error) {
			return c.MediaSeen(map[string]string{"1_7": "100_200"})
		}, "POST", "media/seen/", true, nil},
		{"CommentLike", func(c *Client) (Response, error) { return c.CommentLike("9") }, "POST", "media/9/comment_like/", true, nil},
		{"CommentUnlike", func(c *Client) (Response, error) { return c.CommentUnlike("9") }, "POST", "media/9/comment_unlike/", true, nil},
		{"SavePhoto", func(c *Client) (Response, error) { return c.SavePhoto("1_7") }, "POST", "media/1_7/save/", true, nil},
		{"UnsavePhoto", func(c *Client) (Response, error) { return c.UnsavePhoto("1_7") }, "POST", "media/1_7/unsave/", true, nil},
		{"DisableComments", func(c *Client) (Response, error) { return c.DisableComments("1_7") }, "POST", "media/1_7/disable_comments/", false, nil},
		{"EnableComments", func(c *Client) (Response, error) { return c.EnableComments("1_7") }, "POST", "media/1_7/enable_comments/", false, nil},

		// users
		{"UserInfo", func(c *Client) (Response, error) { return c.UserInfo("7") }, "GET", "users/7/info/", false, nil},
		{"UsernameInfo", func(c *Client) (Response, error) { return c.UsernameInfo("bob") }, "GET", "users/bob/usernameinfo/", false, nil},
		{"UserDetailInfo", func(c *Client) (Response, error) { return c.UserDetailInfo("7", nil) }, "GET", "users/7/full_detail_info/", false, nil},
		{"UserMap", func(c *Client) (Response, error) { return c.UserMap("7") }, "GET", "maps/user/7/", false, nil},
		{"SearchUsers", func(c *Client) (Response, error) { return c.SearchUsers("bob", nil) }, "GET", "users/search/", false, map[string]string{"q": "bob", "is_typeahead": "true"}},
		{"CheckUsername", func(c *Client) (Response, error) { return c.CheckUsername("bob") }, "POST", "users/check_username/", true, nil},
		{"BlockedUserList", func(c *Client) (Response, error) { return c.BlockedUserList() }, "GET", "users/blocked_list/", false, nil},

		// friendships
		{"FriendshipsShow", func(c *Client) (Response, error) { return c.FriendshipsShow("7") }, "GET", "friendships/show/7/", false, nil},
		{"FriendshipsShowMany", func(c *Client) (Response, error) { return c.FriendshipsShowMany([]string{"7", "8"}) }, "POST", "friendships/show_many/", false, nil},
		{"FriendshipsPending", func(c *Client) (Response, error) { return c.FriendshipsPending() }, "GET", "friendships/pending/", false, nil},
		{"UserFollowing", func(c *Client) (Response, error) { return c.UserFollowing("7", nil) }, "GET", "friendships/7/following/", false, nil},
		{"UserFollowers", func(c *Client) (Response, error) { return c.UserFollowers("7", nil) }, "GET", "friendships/7/followers/", false, nil},
		{"FriendshipsCreate", func(c *Client) (Response, error) { return c.FriendshipsCreate("7") }, "POST", "friendships/create/7/", true, nil},
		{"FriendshipsDestroy", func(c *Client) (Response, error) { return c.FriendshipsDestroy("7") }, "POST", "friendships/destroy/7/", true, nil},
		{"FriendshipsBlock", func(c *Client) (Response, error) { return c.FriendshipsBlock("7") }, "POST", "friendships/block/7/", true, nil},

		// tags
		{"TagInfo", func(c *Client) (Response, error) { return c.TagInfo("go") }, "GET", "tags/go/info/", false, nil},
		{"TagRelated", func(c *Client) (Response, error) { return c.TagRelated("go") }, "GET", "tags/go/related/", false, map[string]string{"related_types": `["hashtag"]`}},
		{"TagSearch", func(c *Client) (Response, error) { return c.TagSearch("go", nil) }, "GET", "tags/search/", false, map[string]string{"q": "go"}},
		{"UsertagFeed", func(c *Client) (Response, error) { return c.UsertagFeed("7", nil) }, "GET", "usertags/7/feed/", false, nil},
		{"UsertagSelfRemove", func(c *Client) (Response, error) { return c.UsertagSelfRemove("1_7") }, "POST", "usertags/1_7/remove/", true, nil},

		// locations
		{"LocationInfo", func(c *Client) (Response, error) { return c.LocationInfo("99") }, "GET", "locations/99/info/", false, nil},
		{"LocationRelated", func(c *Client) (Response, error) { return c.LocationRelated("99") }, "GET", "locations/99/related/", false, map[string]string{"related_types": `["location"]`}},
		{"LocationSearch", func(c *Client) (Response, error) { return c.LocationSearch(1.5, 103.25, "cafe") }, "GET", "location_search/", false, map[string]string{"latitude": "1.5", "longitude": "103.25", "search_query": "cafe"}},
		{"LocationFbSearch", func(c *Client) (Response, error) { return c.LocationFbSearch("cafe", nil) }, "GET", "fbsearch/places/", false, map[string]string{"query": "cafe"}},

		// live
		{"BroadcastInfo", func(c *Client) (Response, error) { return c.BroadcastInfo("b1") }, "GET", "live/b1/info/", false, nil},
		{"BroadcastComments", func(c *Client) (Response, error) { return c.BroadcastComments("b1", 5) }, "GET", "live/b1/get_comment/", false, map[string]string{"last_comment_ts": "5"}},
		{"BroadcastHeartbeatAndViewerCount", func(c *Client) (Response, error) { return c.BroadcastHeartbeatAndViewerCount("b1") }, "POST", "live/b1/heartbeat_and_get_viewer_count/", false, nil},
		{"BroadcastLikeCount", func(c *Client) (Response, error) { return c.BroadcastLikeCount("b1", 0) }, "GET", "live/b1/get_like_count/", false, map[string]string{"like_ts": "0"}},
		{"BroadcastLike", func(c *Client) (Response, error) { return c.BroadcastLike("b1", 3) }, "POST", "live/b1/like/", true, nil},
		{"BroadcastComment", func(c *Client) (Response, error) { return c.BroadcastComment("b1", "hello") }, "POST", "live/b1/comment/", true, nil},
		{"DiscoverTopLive", func(c *Client) (Response, error) { return c.DiscoverTopLive(nil) }, "GET", "discover/top_live/", false, nil},
		{"SuggestedBroadcasts", func(c *Client) (Response, error) { return c.SuggestedBroadcasts(nil) }, "GET", "live/get_suggested_broadcasts/", false, nil},
		{"TopLiveStatus", func(c *Client) (Response, error) { return c.TopLiveStatus([]string{"b1"}) }, "POST", "discover/top_live_status/", true, nil},

		// misc
		{"Explore", func(c *Client) (Response, error) { return c.Explore(nil) }, "GET", "discover/explore/", false, nil},
		{"DiscoverChaining", func(c *Client) (Response, error) { return c.DiscoverChaining("7") }, "GET", "discover/chaining/", false, map[string]string{"target_id": "7"}},
		{"TopSearch", func(c *Client) (Response, error) { return c.TopSearch("go") }, "GET", "fbsearch/topsearch/", false, map[string]string{"context": "blended", "query": "go"}},
		{"Stickers", func(c *Client) (Response, error) { return c.Stickers("", []float64{1, 2, 3}) }, "POST", "creatives/assets/", true, nil},
		{"Sync", func(c *Client) (Response, error) { return c.Sync(nil) }, "POST", "qe/sync/", true, nil},
		{"Expose", func(c *Client) (Response, error) { return c.Expose("") }, "POST", "qe/expose/", true, nil},
		{"MegaphoneLog", func(c *Client) (Response, error) { return c.MegaphoneLog("", "", "") }, "POST", "megaphone/log/", false, nil},
		{"RankedRecipients", func(c *Client) (Response, error) { return c.RankedRecipients() }, "GET", "direct_v2/ranked_recipients/", false, map[string]string{"show_threads": "true"}},
		{"RecentRecipients", func(c *Client) (Response, error) { return c.RecentRecipients() }, "GET", "direct_share/recent_recipients/", false, nil},
		{"News", func(c *Client) (Response, error) { return c.News(nil) }, "GET", "news/", false, nil},
		{"NewsInbox", func(c *Client) (Response, error) { return c.NewsInbox() }, "GET", "news/inbox/", false, nil},
		{"DirectV2Inbox", func(c *Client) (Response, error) { return c.DirectV2Inbox(nil) }, "GET", "direct_v2/inbox/", false, nil},
		{"Oembed", func(c *Client) (Response, error) {
			return c.Oembed("https://www.instagram.com/p/BJL-gjsDyo1/", nil)
		}, "GET", "oembed/", false, map[string]string{"url": "https://www.instagram.com/p/BJL-gjsDyo1/"}},
		{"Translate", func(c *Client) (Response, error) { return c.Translate("7", TranslateBio) }, "GET", "language/translate/", false, map[string]string{"id": "7", "type": "3"}},
		{"BulkTranslate", func(c *Client) (Response, error) { return c.BulkTranslate([]string{"1", "2"}) }, "GET", "language/bulk_translate/", false, map[string]string{"comment_ids": "1,2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newRecordingClient(t, `{"status":"ok"}`)

			res, err := tt.call(c)
			require.NoError(t, err)
			assert.Equal(t, "ok", res.Status())

			assert.Equal(t, tt.method, rec.method)
			assert.Equal(t, "/api/v1/"+tt.path, rec.path)
			assert.Equal(t, tt.signed, rec.form.Get("signed_body") != "", "signed body")
			for k, v := range tt.query {
				assert.Equal(t, v, rec.query.Get(k), "query %s", k)
			}
		})
	}
}

func TestEndpointValidation(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Client) (Response, error)
	}{
		{"MediaInfo empty", func(c *Client) (Response, error) { return c.MediaInfo("") }},
		{"MediasInfo none", func(c *Client) (Response, error) { return c.MediasInfo(nil) }},
		{"UserInfo blank", func(c *Client) (Response, error) { return c.UserInfo("  ") }},
		{"ReelsMedia none", func(c *Client) (Response, error) { return c.ReelsMedia(nil, nil) }},
		{"EditProfile gender", func(c *Client) (Response, error) { return c.EditProfile(Profile{Email: "a@b.c", Gender: 7}) }},
		{"EditProfile email", func(c *Client) (Response, error) { return c.EditProfile(Profile{Gender: GenderMale}) }},
		{"MediaSeen none", func(c *Client) (Response, error) { return c.MediaSeen(nil) }},
		{"FriendshipsShowMany none", func(c *Client) (Response, error) { return c.FriendshipsShowMany(nil) }},
		{"LocationSearch bounds", func(c *Client) (Response, error) { return c.LocationSearch(91, 0, "") }},
		{"BroadcastLike zero", func(c *Client) (Response, error) { return c.BroadcastLike("b1", 0) }},
		{"BroadcastLike six", func(c *Client) (Response, error) { return c.BroadcastLike("b1", 6) }},
		{"TopLiveStatus none", func(c *Client) (Response, error) { return c.TopLiveStatus(nil) }},
		{"Stickers type", func(c *Client) (Response, error) { return c.Stickers("animated", nil) }},
		{"Stickers location", func(c *Client) (Response, error) { return c.Stickers("", []float64{1, 2}) }},
		{"Translate type", func(c *Client) (Response, error) { return c.Translate("7", 9) }},
		{"BulkTranslate none", func(c *Client) (Response, error) { return c.BulkTranslate(nil) }},
		{"Oembed empty", func(c *Client) (Response, error) { return c.Oembed("", nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newRecordingClient(t, `{"status":"ok"}`)

			_, err := tt.call(c)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrValidation), "got %v", err)
			assert.Empty(t, rec.path, "validation must fail before any request")
		})
	}
}

func TestAutoPatch(t *testing.T) {
	const mediaBody = `{"status":"ok","items":[{
		"id": "1470687481426853460_42",
		"code": "BRo7njqD75U",
		"taken_at": 1479453671,
		"media_type": 1,
		"filter_type": 0,
		"like_count": 3,
		"user": {"pk": 42, "username": "alice", "profile_pic_url": "https://x/p.jpg"}
	}]}`

	t.Run("off by default", func(t *testing.T) {
		c, _ := newRecordingClient(t, mediaBody)
		res, err := c.MediaInfo("1470687481426853460_42")
		require.NoError(t, err)
		assert.NotContains(t, res.Items("items")[0], "link")
	})

	t.Run("media", func(t *testing.T) {
		c, _ := newRecordingClient(t, mediaBody)
		c.api.AutoPatch = true

		res, err := c.MediaInfo("1470687481426853460_42")
		require.NoError(t, err)
		item := Response(res.Items("items")[0])
		assert.Equal(t, "https://www.instagram.com/p/BRo7njqD75U/", item.String("link"))
		assert.Equal(t, "1479453671", item.String("created_time"))
		assert.Equal(t, "image", item.String("type"))
		assert.Equal(t, "Normal", item.String("filter"))
	})

	t.Run("user with drop", func(t *testing.T) {
		c, _ := newRecordingClient(t, `{"status":"ok","user":{"pk":42,"username":"alice","biography":"hi","external_url":"https://a.b","full_name":"Alice"}}`)
		c.api.AutoPatch = true
		c.api.DropIncompatKeys = true

		res, err := c.UserInfo("42")
		require.NoError(t, err)
		user := res.Map("user")
		assert.Equal(t, "hi", user.String("bio"))
		assert.Equal(t, "https://a.b", user.String("website"))
		assert.Equal(t, "42", user.String("id"))
	})

	t.Run("list users", func(t *testing.T) {
		c, _ := newRecordingClient(t, `{"status":"ok","users":[{"pk":7,"username":"bob","profile_pic_url":"https://x/b.jpg"}]}`)
		c.api.AutoPatch = true

		res, err := c.UserFollowers("42", nil)
		require.NoError(t, err)
		u := Response(res.Items("users")[0])
		assert.Equal(t, "7", u.String("id"))
		assert.Equal(t, "https://x/b.jpg", u.String("profile_picture"))
	})
}
