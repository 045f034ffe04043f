package watch

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultPlayerBase is the external player links to streaming manifests
// are wrapped with when the config does not override it.
const DefaultPlayerBase = "https://smarterz.netlify.app/player"

// Quality/part variants look like .../720_1.m3u8; every variant of a
// recording collapses to the same canonical index_1 manifest.
var segmentedStreamRe = regexp.MustCompile(`/(\d+)_(\d+)\.m3u8$`)

// NormalizeLink derives the user-facing link from a raw item URL.
//
// Segmented-stream filenames are rewritten to the canonical first-index
// manifest, and any streaming-manifest URL is wrapped as a player link
// with the manifest percent-encoded in the url parameter. Anything else
// (including an empty string) passes through unchanged.
func NormalizeLink(raw, playerBase string) string {
	final := raw
	if segmentedStreamRe.MatchString(final) {
		final = segmentedStreamRe.ReplaceAllString(final, "/index_1.m3u8")
	}
	if final != "" && strings.Contains(final, ".m3u8") {
		if playerBase == "" {
			playerBase = DefaultPlayerBase
		}
		final = playerBase + "?url=" + url.QueryEscape(final)
	}
	return final
}
