// Package coverart fetches front-cover images from the Cover Art Archive,
// keyed by MusicBrainz release MBID.
package coverart

import (
	"context"
	"fmt"
	"strings"

	"coverfetch/internal/fetch"
)

const (
	defaultBaseURL  = "https://coverartarchive.org/release/"
	defaultMinBytes = 20000
)

// Config holds configuration for the Cover Art Archive client.
type Config struct {
	BaseURL       string
	MinImageBytes int
}

// DefaultConfig returns sensible defaults for the Cover Art Archive client.
func DefaultConfig() Config {
	return Config{
		BaseURL:       defaultBaseURL,
		MinImageBytes: defaultMinBytes,
	}
}

// Client queries the Cover Art Archive.
type Client struct {
	fetcher *fetch.Client
	config  Config
}

// NewClient creates a Cover Art Archive client on top of the given fetch client.
func NewClient(fetcher *fetch.Client, config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.MinImageBytes == 0 {
		config.MinImageBytes = defaultMinBytes
	}
	return &Client{fetcher: fetcher, config: config}
}

type listing struct {
	Images []listedImage `json:"images"`
}

type listedImage struct {
	Front      bool              `json:"front"`
	Image      string            `json:"image"`
	Thumbnails map[string]string `json:"thumbnails"`
}

// candidateURLs orders the URLs to try for a listing: images flagged front
// first (falling back to all images when none is flagged), and per image the
// large thumbnail, then small, then the raw image.
func candidateURLs(l listing) []string {
	fronts := make([]listedImage, 0, len(l.Images))
	for _, img := range l.Images {
		if img.Front {
			fronts = append(fronts, img)
		}
	}
	if len(fronts) == 0 {
		fronts = l.Images
	}

	var urls []string
	for _, img := range fronts {
		for _, k := range []string{"large", "small"} {
			if u := img.Thumbnails[k]; u != "" {
				urls = append(urls, u)
			}
		}
		if img.Image != "" {
			urls = append(urls, img.Image)
		}
	}
	return urls
}

// FetchFront returns the front-cover bytes and content type for a release
// MBID, or nil when no acceptable image could be fetched. The structured
// listing is preferred; when it is unusable, the conventional /front path is
// tried as a last resort. Never returns an error to the caller: exhaustion
// is a miss, not a failure.
func (c *Client) FetchFront(ctx context.Context, mbid string) ([]byte, string) {
	var l listing
	if err := c.fetcher.GetJSON(ctx, c.config.BaseURL+mbid, &l); err == nil {
		for _, u := range candidateURLs(l) {
			data, contentType, err := c.fetcher.Get(ctx, u, "")
			if err != nil {
				continue
			}
			if !strings.Contains(contentType, "image") {
				continue
			}
			if len(data) < c.config.MinImageBytes {
				continue
			}
			return data, contentType
		}
	}

	// Listing unusable: fall back to the conventional front image path.
	data, contentType, err := c.fetcher.Get(ctx, fmt.Sprintf("%s%s/front", c.config.BaseURL, mbid), "")
	if err == nil && strings.Contains(contentType, "image") {
		return data, contentType
	}
	return nil, ""
}
