// Package compat adds legacy (public API v1) field names to entities returned
// by the private API, so code written against the old response shapes keeps
// working.
//
// Every patch function is additive and idempotent: derived fields are computed
// only from source fields, and when a source is missing (for example because a
// previous pass dropped it) the derived field is left untouched. With
// dropIncompat set, source keys that have no place in the legacy shape are
// removed after derivation.
package compat

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"

	"igapi/pkg/igid"
)

var (
	mediaDrop = []string{
		"taken_at", "image_versions2", "video_versions", "media_type", "filter_type",
		"has_liked", "like_count", "comment_count", "top_likers", "usertags",
		"preview_comments", "device_timestamp", "client_cache_key", "organic_tracking_token",
	}
	commentDrop  = []string{"user_id", "created_at_utc", "bit_flags", "content_type", "did_report_as_spam"}
	userDrop     = []string{"biography", "external_url", "media_count", "follower_count", "following_count", "hd_profile_pic_versions", "hd_profile_pic_url_info", "profile_pic_id"}
	listUserDrop = []string{"profile_pic_id"}
)

var hashtagRe = regexp.MustCompile(`#(\w+)`)

// Media patches a feed item or media_info item in place
func Media(m map[string]any, dropIncompat bool) {
	if m == nil {
		return
	}

	if _, ok := m["id"]; !ok {
		if pk, ok := str(m["pk"]); ok {
			m["id"] = pk
		}
	} else if id, ok := str(m["id"]); ok {
		m["id"] = id
	}

	if code, ok := m["code"].(string); ok && code != "" {
		m["link"] = igid.WebBase + code + "/"
	} else if id, ok := m["id"].(string); ok {
		if link, err := igid.WeblinkFromMediaID(id); err == nil {
			m["link"] = link
		}
	}

	if ts, ok := str(m["taken_at"]); ok {
		m["created_time"] = ts
	}

	if mt, ok := num(m["media_type"]); ok {
		switch mt {
		case 1:
			m["type"] = "image"
		case 2:
			m["type"] = "video"
		case 8:
			m["type"] = "carousel"
		}
	}

	if ft, ok := num(m["filter_type"]); ok {
		if ft == 0 {
			m["filter"] = "Normal"
		} else {
			m["filter"] = strconv.FormatInt(int64(ft), 10)
		}
	}

	if iv, ok := m["image_versions2"].(map[string]any); ok {
		if images := shorthand(list(iv["candidates"]), "standard_resolution", "low_resolution", "thumbnail"); images != nil {
			m["images"] = images
		}
	}
	if vv := list(m["video_versions"]); len(vv) > 0 {
		if videos := shorthand(vv, "standard_resolution", "low_resolution", "low_bandwidth"); videos != nil {
			m["videos"] = videos
		}
	}

	if liked, ok := m["has_liked"].(bool); ok {
		m["user_has_liked"] = liked
	}

	if count, ok := m["like_count"]; ok {
		likers := []any{}
		for _, l := range list(m["top_likers"]) {
			likers = append(likers, map[string]any{"username": l})
		}
		m["likes"] = map[string]any{"count": count, "data": likers}
	}

	if count, ok := m["comment_count"]; ok {
		if _, native := m["comments"].([]any); !native {
			data := []any{}
			for _, c := range list(m["preview_comments"]) {
				if cm, ok := c.(map[string]any); ok {
					Comment(cm, dropIncompat)
					data = append(data, cm)
				}
			}
			m["comments"] = map[string]any{"count": count, "data": data}
		}
	}

	if u, ok := m["user"].(map[string]any); ok {
		ListUser(u, dropIncompat)
	}

	if ut, ok := m["usertags"].(map[string]any); ok {
		users := []any{}
		for _, t := range list(ut["in"]) {
			tm, ok := t.(map[string]any)
			if !ok {
				continue
			}
			entry := map[string]any{}
			if u, ok := tm["user"].(map[string]any); ok {
				ListUser(u, dropIncompat)
				entry["user"] = from(u)
			}
			if pos := list(tm["position"]); len(pos) == 2 {
				entry["position"] = map[string]any{"x": pos[0], "y": pos[1]}
			}
			users = append(users, entry)
		}
		m["users_in_photo"] = users
	}

	if loc, ok := m["location"].(map[string]any); ok {
		if lat, ok := loc["lat"]; ok {
			loc["latitude"] = lat
		}
		if lng, ok := loc["lng"]; ok {
			loc["longitude"] = lng
		}
		if pk, ok := str(loc["pk"]); ok {
			loc["id"] = pk
		}
	}

	if caption, ok := m["caption"].(map[string]any); ok {
		if pk, ok := str(caption["pk"]); ok {
			caption["id"] = pk
		}
		if ts, ok := str(caption["created_at"]); ok {
			caption["created_time"] = ts
		}
		if u, ok := caption["user"].(map[string]any); ok {
			ListUser(u, dropIncompat)
			caption["from"] = from(u)
		}
		if text, ok := caption["text"].(string); ok {
			tags := []any{}
			for _, match := range hashtagRe.FindAllStringSubmatch(text, -1) {
				tags = append(tags, match[1])
			}
			m["tags"] = tags
		}
	}

	for _, item := range list(m["carousel_media"]) {
		if im, ok := item.(map[string]any); ok {
			Media(im, dropIncompat)
		}
	}

	if dropIncompat {
		drop(m, mediaDrop)
	}
}

// Comment patches a comment in place
func Comment(c map[string]any, dropIncompat bool) {
	if c == nil {
		return
	}
	if pk, ok := str(c["pk"]); ok {
		c["id"] = pk
	}
	if ts, ok := str(c["created_at"]); ok {
		c["created_time"] = ts
	}
	if u, ok := c["user"].(map[string]any); ok {
		ListUser(u, dropIncompat)
		c["from"] = from(u)
	}
	if dropIncompat {
		drop(c, commentDrop)
	}
}

// User patches a full user object (user_info, current_user) in place
func User(u map[string]any, dropIncompat bool) {
	if u == nil {
		return
	}
	ListUser(u, false)

	if bio, ok := u["biography"]; ok {
		u["bio"] = bio
	}
	if site, ok := u["external_url"]; ok {
		u["website"] = site
	}

	_, hasMedia := u["media_count"]
	_, hasFollowers := u["follower_count"]
	_, hasFollowing := u["following_count"]
	if hasMedia || hasFollowers || hasFollowing {
		u["counts"] = map[string]any{
			"media":       u["media_count"],
			"followed_by": u["follower_count"],
			"follows":     u["following_count"],
		}
	}

	if dropIncompat {
		drop(u, userDrop)
		drop(u, listUserDrop)
	}
}

// ListUser patches the short user form found in user lists, likers and
// media owners
func ListUser(u map[string]any, dropIncompat bool) {
	if u == nil {
		return
	}
	if pk, ok := str(u["pk"]); ok {
		u["id"] = pk
	}
	if pic, ok := u["profile_pic_url"]; ok {
		u["profile_picture"] = pic
	}
	if dropIncompat {
		drop(u, listUserDrop)
	}
}

// from builds the legacy "from" object out of an already patched user
func from(u map[string]any) map[string]any {
	out := map[string]any{}
	for _, k := range []string{"id", "username", "full_name", "profile_picture"} {
		if v, ok := u[k]; ok {
			out[k] = v
		}
	}
	return out
}

// shorthand picks the largest, a mid-sized (closest to 320px wide) and the
// smallest of the given image or video versions
func shorthand(versions []any, large, mid, small string) map[string]any {
	type version struct {
		width float64
		entry map[string]any
	}
	var vs []version
	for _, v := range versions {
		vm, ok := v.(map[string]any)
		if !ok {
			continue
		}
		w, _ := num(vm["width"])
		entry := map[string]any{"url": vm["url"], "width": vm["width"], "height": vm["height"]}
		vs = append(vs, version{w, entry})
	}
	if len(vs) == 0 {
		return nil
	}
	sort.SliceStable(vs, func(i, j int) bool { return vs[i].width > vs[j].width })

	closest := vs[0]
	for _, v := range vs {
		if abs(v.width-320) < abs(closest.width-320) {
			closest = v
		}
	}
	return map[string]any{
		large: vs[0].entry,
		mid:   closest.entry,
		small: vs[len(vs)-1].entry,
	}
}

func drop(m map[string]any, keys []string) {
	for _, k := range keys {
		delete(m, k)
	}
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}

// str renders ids and timestamps, which may arrive as json.Number, float64
// or string, as a decimal string
func str(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}

func num(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
