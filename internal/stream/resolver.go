/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package stream builds playable URLs for selected tracks against the media
// server fronting the library.
package stream

import (
	"net/url"
	"strings"
)

// Resolver renders stream and cover-art URLs off a single base URL.
type Resolver struct {
	base string
}

// NewResolver creates a resolver. Trailing slashes on the base are ignored.
func NewResolver(baseURL string) *Resolver {
	return &Resolver{base: strings.TrimRight(baseURL, "/")}
}

// StreamURL returns the playback URL for a track.
func (r *Resolver) StreamURL(trackID string) string {
	return r.base + "/rest/stream?id=" + url.QueryEscape(trackID)
}

// CoverArtURL returns the artwork URL for a cover reference.
func (r *Resolver) CoverArtURL(ref string) string {
	if ref == "" {
		return ""
	}
	return r.base + "/rest/getCoverArt?id=" + url.QueryEscape(ref)
}
