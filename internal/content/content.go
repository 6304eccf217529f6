// Package content turns user-authored text into something safe to show in the app.
package content

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps(), goldmarkHTML.WithXHTML()),
	)
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// RenderMarkdown converts markdown to HTML and strips anything a UGC page must not contain.
func RenderMarkdown(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return string(ugcPolicy.SanitizeBytes(buf.Bytes())), nil
}

// PlainText removes all markup from s and trims it. Entities the sanitizer
// produces are decoded again, since the result is stored as text, not HTML.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}
