package instagram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"igapi/pkg/errors"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxCommentLength = 300

// nonSpace is \S over Unicode white space, not just ASCII
const nonSpace = `[^\s\v\x{1c}-\x{1f}\x{85}\p{Z}]`

var (
	letterRe  = regexp.MustCompile(`(?i)[a-z]+`)
	hashtagRe = regexp.MustCompile(`#[^#]+`)
	urlRe     = regexp.MustCompile(`https?://` + nonSpace + `+\.` + nonSpace + `+`)
)

// ValidateComment applies the server's comment rules locally so obviously
// rejected comments never leave the client.
func ValidateComment(text string) error {
	if utf8.RuneCountInString(text) > maxCommentLength {
		return errors.NewValidation("the total length of the comment cannot exceed %d characters", maxCommentLength)
	}
	if letterRe.MatchString(text) && text == cases.Upper(language.Und).String(text) {
		return errors.NewValidation("the comment cannot consist of all capital letters")
	}
	if countHashtags(text) > 4 {
		return errors.NewValidation("the comment cannot contain more than 4 hashtags")
	}
	if countURLs(text) > 1 {
		return errors.NewValidation("the comment cannot contain more than 1 URL")
	}
	return nil
}

// isWordRune is a word character in any script
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// countHashtags counts '#' runs that contain at least one word character,
// so "#東京" counts and "#!!" does not.
func countHashtags(text string) int {
	n := 0
	for _, tag := range hashtagRe.FindAllString(text, -1) {
		if strings.IndexFunc(tag[1:], isWordRune) >= 0 {
			n++
		}
	}
	return n
}

// countURLs counts links that start on a word boundary. A scheme glued to a
// preceding word ("東京https://...") is not a link.
func countURLs(text string) int {
	n := 0
	for pos := 0; pos < len(text); {
		loc := urlRe.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); start > 0 && isWordRune(r) {
			pos = start + 1
			continue
		}
		n++
		pos += loc[1]
	}
	return n
}

const breadcrumbKey = "iN4$aGr0m"

// userBreadcrumb imitates the typing telemetry the app sends with comments:
// "<size> <elapsed ms> <edit count> <unix ms>" plus its HMAC, both base64.
func userBreadcrumb(size int, now time.Time, r *rand.Rand) string {
	elapsed := r.Intn(1001) + 500 + size*(r.Intn(1001)+500)
	edits := size / (r.Intn(3) + 3)
	if edits < 1 {
		edits = 1
	}
	data := fmt.Sprintf("%d %d %d %d", size, elapsed, edits, now.UnixMilli())

	mac := hmac.New(sha256.New, []byte(breadcrumbKey))
	mac.Write([]byte(data))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)) + "\n" +
		base64.StdEncoding.EncodeToString([]byte(data)) + "\n"
}
