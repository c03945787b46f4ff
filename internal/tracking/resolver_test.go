package tracking

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aoe-motors/lead-tracker/internal/service/scoring"
)

func TestResolve(t *testing.T) {
	click := scoring.Classify("clicked_video")
	open := scoring.Classify("opened")
	other := scoring.Classify("clicked_configurator")

	tests := []struct {
		name     string
		rule     scoring.Rule
		redirect string
		allow    []string
		wantKind ResponseKind
		wantLoc  string
	}{
		{"open without target", open, "", nil, NoContent, ""},
		{"open with target", open, "https://a.example", nil, NoContent, ""},
		{"click without target", click, "", nil, NoContent, ""},
		{"click with plain target", click, "https://a.example/v", nil, Redirect, "https://a.example/v"},
		{"click with query", click, "https://a.example/v?id=1", nil, Redirect, "https://a.example/v?id=1"},
		{"percent escape in path kept", click, "https://cdn.example.com/offers/100%25-off.pdf", nil, Redirect, "https://cdn.example.com/offers/100%25-off.pdf"},
		{"signed query kept", click, "https://cdn.example.com/b.pdf?sig=a%2Bb%3D", nil, Redirect, "https://cdn.example.com/b.pdf?sig=a%2Bb%3D"},
		{"target escaped twice is not unwrapped", click, url.QueryEscape("https://a.example/v"), nil, BadRequest, ""},
		{"unscored click type still redirects", other, "http://a.example", nil, Redirect, "http://a.example"},
		{"allowlisted host", click, "https://WWW.AOEMOTORS.COM/x", []string{"www.aoemotors.com"}, Redirect, "https://WWW.AOEMOTORS.COM/x"},
		{"host not allowlisted", click, "https://other.example", []string{"www.aoemotors.com"}, BadRequest, ""},
		{"bad escape", click, "%zz", nil, BadRequest, ""},
		{"no scheme", click, "www.aoemotors.com/x", nil, BadRequest, ""},
		{"ftp scheme", click, "ftp://a.example/f", nil, BadRequest, ""},
		{"no host", click, "https:///path", nil, BadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewResolver(tt.allow).Resolve(tt.rule, tt.redirect)
			assert.Equal(t, tt.wantKind, resp.Kind)
			assert.Equal(t, tt.wantLoc, resp.Location)
			if tt.wantKind == BadRequest {
				assert.ErrorIs(t, resp.Err, ErrInvalidRedirect)
			} else {
				assert.NoError(t, resp.Err)
			}
		})
	}
}
