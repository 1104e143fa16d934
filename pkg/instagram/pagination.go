package instagram

// paginate fetches the first page, then keeps following next_max_id while the
// page's moreKey flag is set, a cursor is present and fewer than limit items
// have been collected. A follow-up page with no cursor or no items ends the
// loop after its items are kept; the flag alone is not trusted.
func paginate(limit int, itemsKey, moreKey string, fetch func(maxID string) (Response, error)) ([]map[string]any, error) {
	res, err := fetch("")
	if err != nil {
		return nil, err
	}
	items := res.Items(itemsKey)

	for res.Bool(moreKey) && res.NextMaxID() != "" && len(items) < limit {
		res, err = fetch(res.NextMaxID())
		if err != nil {
			return nil, err
		}
		page := res.Items(itemsKey)
		items = append(items, page...)
		if res.NextMaxID() == "" || len(page) == 0 {
			break
		}
	}
	return items, nil
}
