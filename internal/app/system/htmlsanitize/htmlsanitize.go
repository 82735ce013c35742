// Package htmlsanitize strips dangerous markup from user-supplied text.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ugc allows the formatting tags reasonable in user-generated
	// content (links, lists, emphasis) and nothing executable.
	ugc = bluemonday.UGCPolicy()

	// strict strips all markup.
	strict = bluemonday.StrictPolicy()
)

// UGC sanitizes rich user content such as board descriptions and post
// bodies.
func UGC(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}

// Plain strips all markup; use for single-line fields such as titles and
// names.
func Plain(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
