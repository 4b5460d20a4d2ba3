// Package sanitize strips markup from user-supplied free text before it is
// stored.
package sanitize

import (
	"regexp"
	"strings"
)

// Only tag-shaped runs count as markup, so comparisons like "< 5" survive.
var markupTag = regexp.MustCompile(`(?s)<!--.*?-->|</?[A-Za-z][^<>]*>`)

var entityDecoder = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&amp;", "&",
)

// Text removes HTML tags, decodes the common entities and trims the result.
// Tags are stripped again after decoding so encoded markup cannot survive.
func Text(s string) string {
	out := markupTag.ReplaceAllString(s, "")
	out = entityDecoder.Replace(out)
	out = markupTag.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// TextPtr applies Text to an optional value.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	out := Text(*s)
	return &out
}
