// Package urls provides utility functions for working with URLs.
package urls

import (
	"net/url"
	"strings"
)

const (
	schemeHTTP  = "http"
	schemeHTTPS = "https"
)

// IsURLValid checks if the given URL is valid.
func IsURLValid(raw string) bool {
	u, err := url.Parse(raw)

	return err == nil && u.Scheme != "" && u.Host != "" && (u.Scheme == schemeHTTP || u.Scheme == schemeHTTPS)
}

// Normalize trims spaces, parses and returns the URL in string format.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	return u.String()
}

// Filename returns the last "/"-delimited segment of the URL path, or fallback
// when the path has no usable segment.
// Example: https://example.com/media/clip.mp4?x=1 => clip.mp4
func Filename(raw, fallback string) string {
	p := raw

	u, err := url.Parse(strings.TrimSpace(raw))
	if err == nil {
		p = u.EscapedPath()
	}

	segment := p[strings.LastIndex(p, "/")+1:]
	if unescaped, err := url.PathUnescape(segment); err == nil {
		segment = unescaped
	}

	segment = strings.TrimSpace(segment)

	// %2F and backslashes must not turn a segment into a path.
	if segment == "" || segment == "." || segment == ".." || strings.ContainsAny(segment, `/\`) {
		return fallback
	}

	return segment
}
