// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

import (
	"fmt"
	"net/url"
)

// Audio and spectrogram endpoints are opaque URL-producing collaborators:
// given a recording reference and a time interval they yield a streamable
// audio URL or a spectrogram image URL. Their internal format is the
// server's business; the client only builds and hands off the URLs.

// AudioURL returns the streamable audio URL for a clip.
func (c *Client) AudioURL(ref RecordingRef) string {
	return c.mediaURL("audio", ref)
}

// SpectrogramURL returns the spectrogram image URL for a clip.
func (c *Client) SpectrogramURL(ref RecordingRef) string {
	return c.mediaURL("spectrogram", ref)
}

func (c *Client) mediaURL(kind string, ref RecordingRef) string {
	params := url.Values{}
	params.Set("start", fmt.Sprintf("%.3f", ref.StartSec))
	params.Set("end", fmt.Sprintf("%.3f", ref.EndSec))
	return fmt.Sprintf("%s/v1/recordings/%s/%s?%s",
		c.baseURL, url.PathEscape(ref.RecordingID), kind, params.Encode())
}
