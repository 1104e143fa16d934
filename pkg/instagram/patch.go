package instagram

import "igapi/pkg/compat"

// The patch helpers are no-ops unless AutoPatch is configured.

func (c *Client) patchMedia(items ...map[string]any) {
	if !c.api.AutoPatch {
		return
	}
	for _, m := range items {
		compat.Media(m, c.api.DropIncompatKeys)
	}
}

func (c *Client) patchComments(items ...map[string]any) {
	if !c.api.AutoPatch {
		return
	}
	for _, m := range items {
		compat.Comment(m, c.api.DropIncompatKeys)
	}
}

func (c *Client) patchUser(u map[string]any) {
	if c.api.AutoPatch {
		compat.User(u, c.api.DropIncompatKeys)
	}
}

func (c *Client) patchListUsers(items ...map[string]any) {
	if !c.api.AutoPatch {
		return
	}
	for _, u := range items {
		compat.ListUser(u, c.api.DropIncompatKeys)
	}
}

// merge copies extra over base; extra usually carries pagination cursors
func merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
