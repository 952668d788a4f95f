package docket

import (
	"github.com/eringen/docket/views"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	return views.BuildURL(base, pathSegments...)
}

// AbsURL resolves a site-relative link against base.
func AbsURL(base, link string) string {
	return views.AbsURL(base, link)
}
