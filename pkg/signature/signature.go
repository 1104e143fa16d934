// Package signature produces the signed_body envelope expected by the private API.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"

	"igapi/pkg/tagged"
)

const (
	DefaultKey        = "4f8732eb9ba7d1c8e8897a75d6474d4eb3f5279137431b2aafb71fafe2abe178"
	DefaultKeyVersion = "4"
)

// Signer signs request payloads with a shared secret.
type Signer struct {
	Key        string
	KeyVersion string
}

// New returns a Signer, falling back to the default key and version for empty arguments.
func New(key, keyVersion string) *Signer {
	if key == "" {
		key = DefaultKey
	}
	if keyVersion == "" {
		keyVersion = DefaultKeyVersion
	}
	return &Signer{Key: key, KeyVersion: keyVersion}
}

var defaultSigner = New("", "")

// Hash returns the hex HMAC-SHA256 of data under the signer key.
func (s *Signer) Hash(data []byte) string {
	mac := hmac.New(sha256.New, []byte(s.Key))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign encodes params as JSON and returns "<hex hmac>.<json>".
// Map keys are emitted in sorted order so the result is deterministic.
func (s *Signer) Sign(params map[string]any) (string, error) {
	payload, err := tagged.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode signed params: %w", err)
	}
	return s.Hash(payload) + "." + string(payload), nil
}

// SignedBody returns the form fields for a signed POST.
func (s *Signer) SignedBody(params map[string]any) (url.Values, error) {
	signed, err := s.Sign(params)
	if err != nil {
		return nil, err
	}
	form := url.Values{}
	form.Set("signed_body", signed)
	form.Set("ig_sig_key_version", s.KeyVersion)
	return form, nil
}

// Sign signs params with the default key.
func Sign(params map[string]any) (string, error) {
	return defaultSigner.Sign(params)
}

// SignedBody builds signed form fields with the default key.
func SignedBody(params map[string]any) (url.Values, error) {
	return defaultSigner.SignedBody(params)
}
