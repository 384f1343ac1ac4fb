// Package normalize turns raw Fantlab payloads into flat catalog records and
// cleans up the markup Fantlab embeds in titles and descriptions.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
)

var (
	bracketRe    = regexp.MustCompile(`\[.*?\]`)
	whitespaceRe = regexp.MustCompile(`\s{2,}`)
	folder       = cases.Fold()
)

// ClearDescription strips anchor tags (keeping their text) and every
// [...] segment. Other markup is left as is.
//
//	"<a href=x>Title</a> [footnote]" -> "Title "
func ClearDescription(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.StartTagToken || tt == html.EndTagToken || tt == html.SelfClosingTagToken {
			if name, _ := z.TagName(); string(name) == "a" {
				continue
			}
		}
		b.Write(z.Raw())
	}

	return bracketRe.ReplaceAllString(b.String(), "")
}

// CleanTitle removes bracketed annotations such as "[сборник]" from an
// edition title and tidies the remaining whitespace.
func CleanTitle(s string) string {
	s = bracketRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FoldName case-folds a name for case-insensitive prefix matching.
// Unlike strings.ToLower it handles Cyrillic and other scripts uniformly.
func FoldName(s string) string {
	return folder.String(strings.TrimSpace(s))
}
