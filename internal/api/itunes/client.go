// Package itunes implements the highest-priority lookup source: the iTunes
// Search API (no key required). It returns cover-art candidates with
// descriptive fields attached.
package itunes

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"coverfetch/internal/fetch"
	"coverfetch/internal/shared"
)

const (
	defaultBaseURL  = "https://itunes.apple.com/search"
	defaultLimit    = 5
	defaultMinBytes = 25000
)

// defaultArtSizes are the artwork resolutions tried per result, best first.
var defaultArtSizes = []int{1200, 1000, 800, 600}

// artSizeRe matches the size segment of an iTunes artwork URL, e.g. /100x100bb.jpg
var artSizeRe = regexp.MustCompile(`/\d+x\d+bb\.`)

// Config holds configuration for the iTunes client.
type Config struct {
	BaseURL       string
	Limit         int
	MinImageBytes int
	ArtSizes      []int
}

// DefaultConfig returns sensible defaults for the iTunes client.
func DefaultConfig() Config {
	return Config{
		BaseURL:       defaultBaseURL,
		Limit:         defaultLimit,
		MinImageBytes: defaultMinBytes,
		ArtSizes:      defaultArtSizes,
	}
}

// Client queries the iTunes Search API.
type Client struct {
	fetcher *fetch.Client
	config  Config
}

// NewClient creates an iTunes client on top of the given fetch client.
func NewClient(fetcher *fetch.Client, config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Limit == 0 {
		config.Limit = defaultLimit
	}
	if config.MinImageBytes == 0 {
		config.MinImageBytes = defaultMinBytes
	}
	if len(config.ArtSizes) == 0 {
		config.ArtSizes = defaultArtSizes
	}
	return &Client{fetcher: fetcher, config: config}
}

// searchResult is one entry of an iTunes search response. Album and song
// entities share the relevant fields.
type searchResult struct {
	ArtworkURL100  string `json:"artworkUrl100"`
	CollectionName string `json:"collectionName"`
	ReleaseDate    string `json:"releaseDate"`
	PrimaryGenre   string `json:"primaryGenreName"`
	ArtistName     string `json:"artistName"`
	TrackName      string `json:"trackName"`
	TrackNumber    int    `json:"trackNumber"`
	TrackCount     int    `json:"trackCount"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// query is one search variant: a free-text term against an entity type.
type query struct {
	term   string
	entity string
}

// buildQueries returns the search variants for meta in fixed priority order,
// skipping any variant whose required fields are missing.
func buildQueries(meta shared.TrackMeta) []query {
	var queries []query
	if meta.Album != "" && meta.Artist != "" {
		queries = append(queries, query{term: meta.Artist + " " + meta.Album, entity: "album"})
	}
	if meta.Title != "" && meta.Artist != "" {
		queries = append(queries, query{term: meta.Artist + " " + meta.Title, entity: "song"})
	}
	if meta.Album != "" {
		queries = append(queries, query{term: meta.Album, entity: "album"})
	}
	if meta.Title != "" {
		queries = append(queries, query{term: meta.Title, entity: "song"})
	}
	return queries
}

// upscaleArtworkURL rewrites the size segment of an iTunes artwork URL to
// request a larger rendition.
func upscaleArtworkURL(artURL string, target int) string {
	return artSizeRe.ReplaceAllString(artURL, fmt.Sprintf("/%dx%dbb.", target, target))
}

// Search issues the query variants for meta in priority order and returns
// all candidates that carried an acceptable image, concatenated in query
// order. Failures of individual queries or image fetches are swallowed; a
// total miss returns an empty slice, never an error.
func (c *Client) Search(ctx context.Context, meta shared.TrackMeta) []shared.Candidate {
	var candidates []shared.Candidate

	for _, q := range buildQueries(meta) {
		params := url.Values{}
		params.Set("media", "music")
		params.Set("term", q.term)
		params.Set("entity", q.entity)
		params.Set("limit", fmt.Sprintf("%d", c.config.Limit))

		var resp searchResponse
		if err := c.fetcher.GetJSON(ctx, c.config.BaseURL+"?"+params.Encode(), &resp); err != nil {
			continue
		}

		for _, item := range resp.Results {
			if item.ArtworkURL100 == "" {
				continue
			}

			cand, ok := c.fetchArtwork(ctx, item, meta)
			if ok {
				candidates = append(candidates, cand)
			}
		}
	}

	return candidates
}

// fetchArtwork tries the artwork of one result at decreasing resolutions and
// keeps the first acceptable rendition. Results with no acceptable image at
// any tier are dropped.
func (c *Client) fetchArtwork(ctx context.Context, item searchResult, meta shared.TrackMeta) (shared.Candidate, bool) {
	for _, size := range c.config.ArtSizes {
		imgURL := upscaleArtworkURL(item.ArtworkURL100, size)

		data, contentType, err := c.fetcher.Get(ctx, imgURL, "")
		if err != nil {
			continue
		}
		if !strings.Contains(contentType, "image") {
			continue
		}
		if len(data) < c.config.MinImageBytes {
			continue
		}

		releaseDate := item.ReleaseDate
		if len(releaseDate) > 10 {
			releaseDate = releaseDate[:10] // YYYY-MM-DD
		}
		trackTitle := item.TrackName
		if trackTitle == "" {
			trackTitle = meta.Title
		}

		return shared.Candidate{
			ImageData:   data,
			ContentType: contentType,
			Source:      fmt.Sprintf("iTunes %dpx", size),
			AlbumTitle:  item.CollectionName,
			ReleaseDate: releaseDate,
			Genre:       item.PrimaryGenre,
			ArtistName:  item.ArtistName,
			TrackTitle:  trackTitle,
			TrackNumber: item.TrackNumber,
			TrackCount:  item.TrackCount,
		}, true
	}
	return shared.Candidate{}, false
}
