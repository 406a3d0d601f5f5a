// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips dangerous markup from user-supplied text
// before it is persisted. Reviewer-entered rejection reasons are the main
// consumer.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var (
	// ugc keeps basic formatting but removes scripts, event handlers,
	// and javascript: URLs.
	ugc = bluemonday.UGCPolicy()

	// strict strips all markup, leaving plain text.
	strict = bluemonday.StrictPolicy()
)

// Sanitize removes unsafe markup while keeping user-generated-content
// formatting tags.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// PlainText strips all markup from s.
func PlainText(s string) string {
	return strict.Sanitize(s)
}
