// Package meta builds the best-effort identity of a file before resolution.
// It reads existing tags when present and falls back to a filename
// heuristic; it never touches the network and never fails.
package meta

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dhowden/tag"

	"coverfetch/internal/shared"
)

// artistTitleRe splits "Artist - Title" filenames on the first separator.
var artistTitleRe = regexp.MustCompile(`^(.+?)\s*-\s*(.+)$`)

// Read derives a TrackMeta for path. Existing descriptive tags win; when
// artist, album and title are all absent, the filename is split on a single
// " - " separator into artist/title. Worst case the title falls back to the
// filename stem.
func Read(path string) shared.TrackMeta {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	m := readTags(path)
	if m.Artist == "" && m.Album == "" && m.Title == "" {
		if match := artistTitleRe.FindStringSubmatch(stem); match != nil {
			return shared.TrackMeta{
				Artist: strings.TrimSpace(match[1]),
				Title:  strings.TrimSpace(match[2]),
			}
		}
	}
	if m.Title == "" {
		m.Title = stem
	}
	return m
}

// readTags reads artist/album/title from the file's tag store. Any failure
// yields an empty TrackMeta; the caller applies filename fallbacks.
func readTags(path string) shared.TrackMeta {
	f, err := os.Open(path)
	if err != nil {
		return shared.TrackMeta{}
	}
	defer f.Close()

	t, err := tag.ReadFrom(f)
	if err != nil {
		return shared.TrackMeta{}
	}

	artist := strings.TrimSpace(t.Artist())
	if artist == "" {
		artist = strings.TrimSpace(t.AlbumArtist())
	}
	return shared.TrackMeta{
		Artist: artist,
		Album:  strings.TrimSpace(t.Album()),
		Title:  strings.TrimSpace(t.Title()),
	}
}
