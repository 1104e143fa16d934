package instagram

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"igapi/pkg/errors"
	"igapi/pkg/logger"
)

// Call describes one API request.
//
// With Params set the request is a POST whose body is the signed envelope, or
// a plain form when Unsigned is true. Without Params it is a GET. Method
// overrides the choice, e.g. a POST with an empty body. Params of a request
// that is not a POST are encoded the same way and sent in the query string.
type Call struct {
	Query    map[string]string
	Params   map[string]any
	Unsigned bool
	Method   string
}

// Markers in a 400/403 body that mean the login cookie is no longer valid
var expiredSessionMarkers = []string{
	"login_required",
	"checkpoint_logged_out",
	"user_has_logged_out",
}

var checkpointMarkers = []string{
	"checkpoint_required",
	"checkpoint_challenge_required",
	"challenge_required",
	"two_factor_required",
}

// Call invokes an endpoint (a path relative to /api/v1/, e.g. "feed/timeline/")
// and returns the decoded response. Every endpoint method goes through here.
func (c *Client) Call(endpoint string, call Call) (Response, error) {
	switch c.state {
	case StateExpired:
		return nil, errors.New(errors.ErrorTypeSessionExpired, 0, "session expired, relogin required", "", nil)
	case StateAuthenticated:
		if c.session.AuthExpired(c.now()) {
			c.setState(StateExpired)
			return nil, errors.New(errors.ErrorTypeSessionExpired, 0, "login cookie expired", "", nil)
		}
	}

	res, err := c.do(endpoint, call)
	if err != nil && errors.IsSessionExpired(err) && c.state == StateAuthenticated {
		c.setState(StateExpired)
	}
	return res, err
}

func (c *Client) do(endpoint string, call Call) (Response, error) {
	endpoint = strings.TrimLeft(endpoint, "/")

	method := strings.ToUpper(call.Method)
	if method == "" {
		method = http.MethodGet
		if call.Params != nil {
			method = http.MethodPost
		}
	}

	q := url.Values{}
	for k, v := range call.Query {
		q.Set(k, v)
	}

	var body io.Reader
	switch {
	case method == http.MethodPost:
		form, err := c.encodeParams(call)
		if err != nil {
			return nil, err
		}
		body = strings.NewReader(form.Encode())
	case call.Params != nil:
		form, err := c.encodeParams(call)
		if err != nil {
			return nil, err
		}
		for k, vs := range form {
			q[k] = vs
		}
	}

	target := c.baseURL + endpoint
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return nil, errors.NewValidation("invalid request for %s: %v", endpoint, err)
	}
	c.setHeaders(req)

	if c.limiter != nil {
		c.limiter.Wait()
	}

	start := time.Now()
	c.logger.DebugWithFields("sending API request", map[string]interface{}{
		"method":   method,
		"endpoint": endpoint,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorWithFields("API request failed", map[string]interface{}{
			"method":   method,
			"endpoint": endpoint,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, errors.NewTransport(err)
	}
	defer resp.Body.Close()

	raw, err := readBody(resp)
	if err != nil {
		return nil, errors.NewTransport(fmt.Errorf("reading response body: %w", err))
	}
	logger.LogRequest(c.logger, method, endpoint, resp.StatusCode, time.Since(start))

	return c.parseResponse(endpoint, resp.StatusCode, raw)
}

func (c *Client) encodeParams(call Call) (url.Values, error) {
	if !call.Unsigned {
		params := call.Params
		if params == nil {
			params = map[string]any{}
		}
		form, err := c.signer.SignedBody(params)
		if err != nil {
			return nil, errors.NewValidation("cannot sign parameters: %v", err)
		}
		return form, nil
	}

	form := url.Values{}
	for k, v := range call.Params {
		s, err := formValue(v)
		if err != nil {
			return nil, errors.NewValidation("parameter %s: %v", k, err)
		}
		form.Set(k, s)
	}
	return form, nil
}

// formValue renders a parameter for an unsigned form. Composite values are
// sent as JSON.
func formValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	case nil:
		return "", nil
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

func (c *Client) setHeaders(req *http.Request) {
	h := req.Header
	h.Set("User-Agent", c.session.UserAgent)
	h.Set("Accept", "*/*")
	h.Set("Accept-Language", strings.ReplaceAll(c.api.Locale, "_", "-"))
	h.Set("Accept-Encoding", "gzip")
	h.Set("X-IG-Capabilities", c.api.Capabilities)
	h.Set("X-IG-Connection-Type", "WIFI")
	h.Set("X-IG-Connection-Speed", "1000kbps")
	h.Set("X-IG-Bandwidth-Speed-KBPS", "-1.000")
	h.Set("X-IG-Bandwidth-TotalBytes-B", "0")
	h.Set("X-IG-Bandwidth-TotalTime-MS", "0")
	h.Set("X-IG-App-ID", c.api.AppID)
	h.Set("X-FB-HTTP-Engine", "Liger")
	if token := c.session.CSRFToken(); token != "" {
		h.Set("X-CSRFToken", token)
	}
	if req.Method == http.MethodPost {
		h.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}
}

// readBody reads the whole response, decoding gzip since Accept-Encoding is
// set by hand and net/http will not decompress for us
func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(r)
}

func decodeResponse(raw []byte) (Response, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var res Response
	if err := dec.Decode(&res); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("response is not a JSON object")
	}
	return res, nil
}

func (c *Client) parseResponse(endpoint string, code int, raw []byte) (Response, error) {
	res, perr := decodeResponse(raw)
	ok := code >= 200 && code < 300

	if ok && perr != nil {
		c.logger.ErrorWithFields("failed to parse API response", map[string]interface{}{
			"endpoint":     endpoint,
			"status":       code,
			"error":        perr.Error(),
			"body_preview": preview(raw),
		})
		return nil, errors.NewParsing(code, raw, perr)
	}
	if ok && res.Status() == "ok" {
		return res, nil
	}

	err := classify(code, res, raw)
	c.logger.WarnWithFields("API call rejected", map[string]interface{}{
		"endpoint":   endpoint,
		"status":     code,
		"error_type": string(err.Type),
		"message":    err.Message,
	})
	return nil, err
}

// classify maps a failed response to an error kind. res may be nil when the
// body was not JSON.
func classify(code int, res Response, raw []byte) *errors.Error {
	msg := res.Message()
	vendor := res.ErrorType()
	if msg == "" {
		if code >= 200 && code < 300 {
			msg = "request failed"
		} else {
			msg = http.StatusText(code)
		}
	}

	switch {
	case code == http.StatusTooManyRequests:
		return errors.New(errors.ErrorTypeRateLimit, code, msg, vendor, raw)
	case code == http.StatusRequestHeaderFieldsTooLarge:
		return errors.New(errors.ErrorTypeAPI, code, msg, "ReqHeadersTooLarge", raw)
	case matches(checkpointMarkers, msg, vendor):
		return errors.New(errors.ErrorTypeCheckpoint, code, msg, vendor, raw)
	case (code == http.StatusBadRequest || code == http.StatusForbidden) && matches(expiredSessionMarkers, msg, vendor):
		return errors.New(errors.ErrorTypeSessionExpired, code, msg, vendor, raw)
	default:
		return errors.New(errors.ErrorTypeAPI, code, msg, vendor, raw)
	}
}

func matches(markers []string, values ...string) bool {
	for _, v := range values {
		for _, m := range markers {
			if v == m {
				return true
			}
		}
	}
	return false
}

func preview(raw []byte) string {
	s := string(raw)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
