package instagram

import (
	"strconv"

	"igapi/pkg/errors"
)

// LocationInfo returns a location's details
func (c *Client) LocationInfo(locationID string) (Response, error) {
	if err := requireID("location id", locationID); err != nil {
		return nil, err
	}
	return c.Call("locations/"+locationID+"/info/", Call{})
}

// LocationRelated returns locations related to locationID
func (c *Client) LocationRelated(locationID string) (Response, error) {
	if err := requireID("location id", locationID); err != nil {
		return nil, err
	}
	return c.Call("locations/"+locationID+"/related/", Call{Query: relatedQuery(locationID, "location")})
}

// LocationSearch returns venues near a coordinate, optionally filtered by name
func (c *Client) LocationSearch(latitude, longitude float64, text string) (Response, error) {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return nil, errors.NewValidation("invalid coordinates %f,%f", latitude, longitude)
	}
	query := map[string]string{
		"rank_token": c.RankToken(),
		"latitude":   strconv.FormatFloat(latitude, 'f', -1, 64),
		"longitude":  strconv.FormatFloat(longitude, 'f', -1, 64),
		"timestamp":  strconv.FormatInt(c.now().Unix(), 10),
	}
	if text != "" {
		query["search_query"] = text
	}
	return c.Call("location_search/", Call{Query: query})
}

// LocationFbSearch searches places by name
func (c *Client) LocationFbSearch(text string, query map[string]string) (Response, error) {
	if err := requireID("query", text); err != nil {
		return nil, err
	}
	return c.Call("fbsearch/places/", Call{Query: merge(map[string]string{
		"rank_token": c.RankToken(),
		"query":      text,
	}, query)})
}
