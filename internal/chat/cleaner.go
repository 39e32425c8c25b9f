package chat

import (
	"regexp"
	"strings"
)

var (
	markupRe     = regexp.MustCompile("```[a-zA-Z]*|\\*\\*|\\*|__|_|#|`|~|\\n{2,}")
	whitespaceRe = regexp.MustCompile(`\s+`)
	urlRe        = regexp.MustCompile(`http\S+`)
	emailRe      = regexp.MustCompile(`\S+@\S+`)
	periodsRe    = regexp.MustCompile(`\.{2,}`)
)

// Clean turns model markdown into plain chat text.
func Clean(text string) string {
	text = markupRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = urlRe.ReplaceAllString(text, "")
	text = emailRe.ReplaceAllString(text, "")
	text = periodsRe.ReplaceAllString(text, ".")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
