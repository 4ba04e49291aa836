package util

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	scriptBlock = regexp.MustCompile(`(?i)<script[^>]*>[\s\S]*?</script>`)
	styleBlock  = regexp.MustCompile(`(?i)<style[^>]*>[\s\S]*?</style>`)
	stripTags   = bluemonday.StripTagsPolicy()
)

// SanitizeText reduces user input to plain text: entities decoded, tags and
// script/style bodies removed, whitespace collapsed.
func SanitizeText(s string) string {
	s = html.UnescapeString(s)
	s = scriptBlock.ReplaceAllString(s, "")
	s = styleBlock.ReplaceAllString(s, "")
	s = stripTags.Sanitize(s)
	// bluemonday escapes what it keeps
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
