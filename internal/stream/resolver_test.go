/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package stream

import "testing"

func TestResolver(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		trackID  string
		expected string
	}{
		{"plain id", "http://music.local", "abc-123", "http://music.local/rest/stream?id=abc-123"},
		{"trailing slash trimmed", "http://music.local/", "abc", "http://music.local/rest/stream?id=abc"},
		{"id is escaped", "http://music.local", "a&b c", "http://music.local/rest/stream?id=a%26b+c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.base)
			if got := r.StreamURL(tt.trackID); got != tt.expected {
				t.Errorf("StreamURL = %s, want %s", got, tt.expected)
			}
		})
	}

	t.Run("cover art", func(t *testing.T) {
		r := NewResolver("http://music.local")
		if got := r.CoverArtURL("al-9"); got != "http://music.local/rest/getCoverArt?id=al-9" {
			t.Errorf("CoverArtURL = %s", got)
		}
		if got := r.CoverArtURL(""); got != "" {
			t.Errorf("CoverArtURL(\"\") = %s, want empty", got)
		}
	})
}
