// Package musicbrainz implements the second-priority lookup source. Stage 1
// resolves a release MBID from free-text artist/album or artist/title
// queries; stage 2 fetches release details (date, genres or community tags).
package musicbrainz

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"coverfetch/internal/fetch"
)

const (
	defaultBaseURL = "https://musicbrainz.org/ws/2/"
)

// Config holds configuration for the MusicBrainz client.
type Config struct {
	BaseURL string
}

// DefaultConfig returns sensible defaults for the MusicBrainz client.
func DefaultConfig() Config {
	return Config{BaseURL: defaultBaseURL}
}

// Client is a MusicBrainz web service client.
type Client struct {
	fetcher *fetch.Client
	config  Config
}

// NewClient creates a MusicBrainz client on top of the given fetch client.
// The fetch client should be rate limited: MusicBrainz allows ~1 req/s for
// anonymous use.
func NewClient(fetcher *fetch.Client, config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	return &Client{fetcher: fetcher, config: config}
}

// ReleaseRef identifies a release found by a search.
type ReleaseRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ReleaseDetails carries the descriptive fields of a release.
type ReleaseDetails struct {
	Date   string
	Genres []string
}

// SearchReleaseByArtistAlbum searches for a release by album title and
// optional artist. Returns nil when nothing matched.
func (c *Client) SearchReleaseByArtistAlbum(ctx context.Context, artist, album string) (*ReleaseRef, error) {
	if album == "" {
		return nil, nil
	}

	var query string
	if artist != "" {
		query = fmt.Sprintf("artist:%q AND release:%q", artist, album)
	} else {
		query = fmt.Sprintf("release:%q", album)
	}
	path := fmt.Sprintf("release?query=%s&fmt=json&limit=1", url.QueryEscape(query))

	var searchResult struct {
		Releases []ReleaseRef `json:"releases"`
	}
	if err := c.fetcher.GetJSON(ctx, c.config.BaseURL+path, &searchResult); err != nil {
		return nil, fmt.Errorf("failed to search release: %w", err)
	}
	if len(searchResult.Releases) == 0 {
		return nil, nil
	}
	return &searchResult.Releases[0], nil
}

// SearchReleaseByRecording searches recordings by artist and track title and
// returns the first release of the best recording match. Returns nil when
// nothing matched.
func (c *Client) SearchReleaseByRecording(ctx context.Context, artist, title string) (*ReleaseRef, error) {
	if artist == "" || title == "" {
		return nil, nil
	}

	query := fmt.Sprintf("artist:%q AND recording:%q", artist, title)
	path := fmt.Sprintf("recording?query=%s&fmt=json&limit=1&inc=releases", url.QueryEscape(query))

	var searchResult struct {
		Recordings []struct {
			ID       string       `json:"id"`
			Title    string       `json:"title"`
			Releases []ReleaseRef `json:"releases"`
		} `json:"recordings"`
	}
	if err := c.fetcher.GetJSON(ctx, c.config.BaseURL+path, &searchResult); err != nil {
		return nil, fmt.Errorf("failed to search recording: %w", err)
	}
	if len(searchResult.Recordings) == 0 || len(searchResult.Recordings[0].Releases) == 0 {
		return nil, nil
	}
	return &searchResult.Recordings[0].Releases[0], nil
}

// GetReleaseDetails fetches date and genres for a release MBID. Curated
// genres are preferred; when none exist, free-text community tags ranked by
// occurrence count are used instead.
func (c *Client) GetReleaseDetails(ctx context.Context, mbid string) (*ReleaseDetails, error) {
	if mbid == "" {
		return nil, fmt.Errorf("MBID cannot be empty")
	}

	path := fmt.Sprintf("release/%s?fmt=json&inc=genres+tags", mbid)

	var release struct {
		Date   string `json:"date"`
		Genres []struct {
			Name string `json:"name"`
		} `json:"genres"`
		Tags []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"tags"`
	}
	if err := c.fetcher.GetJSON(ctx, c.config.BaseURL+path, &release); err != nil {
		return nil, fmt.Errorf("failed to fetch release details for MBID %s: %w", mbid, err)
	}

	details := &ReleaseDetails{Date: release.Date}
	for _, g := range release.Genres {
		if g.Name != "" {
			details.Genres = append(details.Genres, g.Name)
		}
	}
	if len(details.Genres) == 0 && len(release.Tags) > 0 {
		tags := release.Tags
		sort.SliceStable(tags, func(i, j int) bool { return tags[i].Count > tags[j].Count })
		for _, t := range tags {
			if t.Name != "" {
				details.Genres = append(details.Genres, t.Name)
			}
		}
	}
	return details, nil
}
