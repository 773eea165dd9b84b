package content

import (
	"context"
	"net/url"
	"strings"
)

// IsURL reports whether input is a single absolute http(s) URL.
func IsURL(input string) bool {
	s := strings.TrimSpace(input)
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Resolve turns user input into the text to summarize. URLs are fetched
// through src; anything else is used literally.
func Resolve(ctx context.Context, src Source, input string) Document {
	if !IsURL(input) || src == nil {
		return Document{Body: strings.TrimSpace(input)}
	}
	return src.Fetch(ctx, strings.TrimSpace(input))
}
