package instagram

import (
	"encoding/json"
	"strconv"
)

// Response is a decoded API reply. Numbers are json.Number so 64-bit ids
// survive; use the accessors rather than type switches.
type Response map[string]any

// Status is "ok" or "fail"
func (r Response) Status() string {
	return r.String("status")
}

// Message is the server's human readable error, if any
func (r Response) Message() string {
	return r.String("message")
}

// ErrorType is the machine readable error_type field, if any
func (r Response) ErrorType() string {
	return r.String("error_type")
}

// String returns a string field, rendering numbers in decimal
func (r Response) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Bool returns a boolean field. Some endpoints send 0/1 instead of
// true/false; both are accepted.
func (r Response) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case json.Number:
		n, err := v.Int64()
		return err == nil && n != 0
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// Int returns an integer field, zero when absent or not a number
func (r Response) Int(key string) int64 {
	switch v := r[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, _ := v.Float64()
			return int64(f)
		}
		return n
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// List returns an array field
func (r Response) List(key string) []any {
	l, _ := r[key].([]any)
	return l
}

// Items returns the objects of an array field, skipping anything else
func (r Response) Items(key string) []map[string]any {
	var out []map[string]any
	for _, v := range r.List(key) {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Map returns an object field as a Response, nil when absent
func (r Response) Map(key string) Response {
	m, ok := r[key].(map[string]any)
	if !ok {
		return nil
	}
	return Response(m)
}

// NextMaxID is the pagination cursor, which some endpoints send as a number
func (r Response) NextMaxID() string {
	return r.String("next_max_id")
}

// MoreAvailable reports the feed pagination flag
func (r Response) MoreAvailable() bool {
	return r.Bool("more_available")
}

// Decode converts the response into a typed value via JSON
func (r Response) Decode(v any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
