// Package resolver orchestrates the fallback chain across lookup sources.
// Source precedence is strict: the iTunes candidate list is consumed first,
// and MusicBrainz plus the Cover Art Archive are consulted only when iTunes
// yields nothing usable. There is no cross-source quality scoring.
package resolver

import (
	"context"

	"coverfetch/internal/api/musicbrainz"
	"coverfetch/internal/shared"
)

// SourceA is the highest-priority lookup capability (iTunes Search).
type SourceA interface {
	Search(ctx context.Context, meta shared.TrackMeta) []shared.Candidate
}

// SourceB resolves a release id from partial identity (MusicBrainz).
type SourceB interface {
	SearchReleaseByArtistAlbum(ctx context.Context, artist, album string) (*musicbrainz.ReleaseRef, error)
	SearchReleaseByRecording(ctx context.Context, artist, title string) (*musicbrainz.ReleaseRef, error)
	GetReleaseDetails(ctx context.Context, mbid string) (*musicbrainz.ReleaseDetails, error)
}

// ImageArchive fetches front-cover art for a release id (Cover Art Archive).
type ImageArchive interface {
	FetchFront(ctx context.Context, mbid string) ([]byte, string)
}

// Resolver produces at most one accepted record per file.
type Resolver struct {
	sourceA  SourceA
	sourceB  SourceB
	archive  ImageArchive
	warnings *shared.WarningCollector
}

// New creates a resolver over the given sources. Lookup and cover-art
// failures are recorded against warnings when one is supplied; they never
// fail a resolution.
func New(sourceA SourceA, sourceB SourceB, archive ImageArchive, warnings *shared.WarningCollector) *Resolver {
	return &Resolver{sourceA: sourceA, sourceB: sourceB, archive: archive, warnings: warnings}
}

func (r *Resolver) warnLookup(context string, err error) {
	if r.warnings != nil {
		r.warnings.AddSourceLookupWarning("MusicBrainz", context, err.Error())
	}
}

// Resolve runs the fallback chain for meta. A nil record is a normal miss,
// never an error: source failures have already been absorbed by the clients.
func (r *Resolver) Resolve(ctx context.Context, meta shared.TrackMeta) *shared.ResolvedRecord {
	if rec := r.resolveA(ctx, meta); rec != nil {
		return rec
	}
	return r.resolveB(ctx, meta)
}

// resolveA consumes Source A's candidates in produced order. Candidates that
// carry a track number (song-entity hits) are preferred; otherwise the first
// candidate with image bytes wins.
func (r *Resolver) resolveA(ctx context.Context, meta shared.TrackMeta) *shared.ResolvedRecord {
	candidates := r.sourceA.Search(ctx, meta)

	var best *shared.Candidate
	for i := range candidates {
		if len(candidates[i].ImageData) > 0 && candidates[i].TrackNumber > 0 {
			best = &candidates[i]
			break
		}
	}
	if best == nil {
		for i := range candidates {
			if len(candidates[i].ImageData) > 0 {
				best = &candidates[i]
				break
			}
		}
	}
	if best == nil {
		return nil
	}

	rec := &shared.ResolvedRecord{Candidate: *best}
	if best.Genre != "" {
		rec.Genres = []string{best.Genre}
	}
	return rec
}

// resolveB runs the two-stage MusicBrainz path: resolve a release id, then
// fetch details and front cover. Descriptive fields are usable even when the
// image fetch comes back empty.
func (r *Resolver) resolveB(ctx context.Context, meta shared.TrackMeta) *shared.ResolvedRecord {
	release, err := r.sourceB.SearchReleaseByArtistAlbum(ctx, meta.Artist, meta.Album)
	if err != nil {
		r.warnLookup(meta.Artist+" - "+meta.Album, err)
		release = nil
	}
	if release == nil && meta.Artist != "" && meta.Title != "" {
		release, err = r.sourceB.SearchReleaseByRecording(ctx, meta.Artist, meta.Title)
		if err != nil {
			r.warnLookup(meta.Artist+" - "+meta.Title, err)
			release = nil
		}
	}
	if release == nil {
		return nil
	}

	rec := &shared.ResolvedRecord{
		Candidate: shared.Candidate{
			Source:     "CoverArtArchive",
			AlbumTitle: release.Title,
			ArtistName: meta.Artist,
			TrackTitle: meta.Title,
		},
	}

	if details, err := r.sourceB.GetReleaseDetails(ctx, release.ID); err != nil {
		r.warnLookup("release "+release.ID, err)
	} else if details != nil {
		rec.ReleaseDate = details.Date
		rec.Genres = details.Genres
		if len(details.Genres) > 0 {
			rec.Genre = details.Genres[0]
		}
	}

	if data, contentType := r.archive.FetchFront(ctx, release.ID); len(data) > 0 {
		rec.ImageData = data
		rec.ContentType = contentType
	} else if r.warnings != nil {
		r.warnings.AddCoverArtFetchWarning("release "+release.ID, "no acceptable front image")
	}
	return rec
}
