// Package images turns provider-relative artwork paths into full CDN URLs.
package images

import (
	"net/url"
	"strings"
)

// Sizes the CDN serves. "original" is valid for every image kind.
const (
	SizePosterSmall = "w342"
	SizePosterLarge = "w500"
	SizeBackdrop    = "w1280"
	SizeLogo        = "w300"
	SizeProfile     = "w185"
	SizeOriginal    = "original"
)

// Resolver builds display URLs from the artwork paths the metadata
// provider returns. Paths arrive as "/abc123.jpg"; the CDN expects
// "<base>/<size>/abc123.jpg".
type Resolver struct {
	base string
}

// NewResolver creates a resolver rooted at the given CDN base URL.
func NewResolver(base string) *Resolver {
	if base == "" {
		base = "https://image.tmdb.org/t/p"
	}
	return &Resolver{base: strings.TrimRight(base, "/")}
}

// URL resolves a provider path at the given size. Absolute URLs pass
// through untouched so avatar and external artwork links keep working.
func (r *Resolver) URL(path, size string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return EncodeSpaces(path)
	}
	if size == "" {
		size = SizeOriginal
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return r.base + "/" + size + path
}

// Poster resolves a poster path at the standard card size.
func (r *Resolver) Poster(path string) string { return r.URL(path, SizePosterLarge) }

// Backdrop resolves a backdrop path at the standard hero size.
func (r *Resolver) Backdrop(path string) string { return r.URL(path, SizeBackdrop) }

// Logo resolves a title logo path.
func (r *Resolver) Logo(path string) string { return r.URL(path, SizeLogo) }

// EncodeSpaces percent-encodes raw spaces in a URL. Some avatar hosts
// hand out links with unencoded spaces that http.NewRequest rejects.
func EncodeSpaces(rawURL string) string {
	if !strings.Contains(rawURL, " ") {
		return rawURL
	}
	parsed, err := url.Parse(strings.ReplaceAll(rawURL, " ", "%20"))
	if err != nil {
		return rawURL
	}
	return parsed.String()
}
