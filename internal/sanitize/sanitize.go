// Package sanitize filters player-supplied text before it is stored or
// redisplayed. Markup is stripped entirely; the result is plain text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Clean strips all markup from s and trims surrounding whitespace.
// bluemonday escapes entities on the way out, so unescape to get the
// plain text back.
func Clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}
