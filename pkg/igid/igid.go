// Package igid converts between numeric media ids and the shortcodes used in
// www.instagram.com/p/<shortcode>/ links.
package igid

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// WebBase is the permalink prefix for posts
const WebBase = "https://www.instagram.com/p/"

// ExpandCode converts a shortcode to its numeric id.
func ExpandCode(code string) (uint64, error) {
	if code == "" {
		return 0, fmt.Errorf("igid: empty shortcode")
	}
	var id uint64
	for _, c := range code {
		idx := strings.IndexRune(alphabet, c)
		if idx < 0 {
			return 0, fmt.Errorf("igid: invalid character %q in shortcode %q", c, code)
		}
		hi, lo := bits.Mul64(id, 64)
		if hi != 0 {
			return 0, fmt.Errorf("igid: shortcode %q overflows", code)
		}
		var carry uint64
		id, carry = bits.Add64(lo, uint64(idx), 0)
		if carry != 0 {
			return 0, fmt.Errorf("igid: shortcode %q overflows", code)
		}
	}
	return id, nil
}

// ShortenID converts a numeric id to a shortcode.
func ShortenID(id uint64) string {
	if id == 0 {
		return string(alphabet[0])
	}
	var buf [11]byte
	i := len(buf)
	for id > 0 {
		i--
		buf[i] = alphabet[id%64]
		id /= 64
	}
	return string(buf[i:])
}

// ShortenMediaID converts a "<pk>_<user id>" media id (or a bare pk) to a shortcode.
func ShortenMediaID(mediaID string) (string, error) {
	pk, _, _ := strings.Cut(mediaID, "_")
	id, err := strconv.ParseUint(pk, 10, 64)
	if err != nil {
		return "", fmt.Errorf("igid: invalid media id %q: %w", mediaID, err)
	}
	return ShortenID(id), nil
}

// WeblinkFromMediaID returns the post permalink for a media id.
func WeblinkFromMediaID(mediaID string) (string, error) {
	code, err := ShortenMediaID(mediaID)
	if err != nil {
		return "", err
	}
	return WebBase + code + "/", nil
}
