package resolver

import (
	"context"
	"errors"
	"testing"

	"coverfetch/internal/api/musicbrainz"
	"coverfetch/internal/shared"
)

type fakeSourceA struct {
	candidates []shared.Candidate
	calls      int
}

func (f *fakeSourceA) Search(ctx context.Context, meta shared.TrackMeta) []shared.Candidate {
	f.calls++
	return f.candidates
}

type fakeSourceB struct {
	albumRef     *musicbrainz.ReleaseRef
	albumErr     error
	recordingRef *musicbrainz.ReleaseRef
	details      *musicbrainz.ReleaseDetails
	detailsErr   error

	albumCalls     int
	recordingCalls int
}

func (f *fakeSourceB) SearchReleaseByArtistAlbum(ctx context.Context, artist, album string) (*musicbrainz.ReleaseRef, error) {
	f.albumCalls++
	return f.albumRef, f.albumErr
}

func (f *fakeSourceB) SearchReleaseByRecording(ctx context.Context, artist, title string) (*musicbrainz.ReleaseRef, error) {
	f.recordingCalls++
	return f.recordingRef, nil
}

func (f *fakeSourceB) GetReleaseDetails(ctx context.Context, mbid string) (*musicbrainz.ReleaseDetails, error) {
	return f.details, f.detailsErr
}

type fakeArchive struct {
	data  []byte
	mime  string
	calls int
}

func (f *fakeArchive) FetchFront(ctx context.Context, mbid string) ([]byte, string) {
	f.calls++
	return f.data, f.mime
}

func imageCandidate(source string, trackNumber int) shared.Candidate {
	return shared.Candidate{
		ImageData:   []byte("image-bytes"),
		ContentType: "image/jpeg",
		Source:      source,
		AlbumTitle:  "Album X",
		Genre:       "Rock",
		TrackNumber: trackNumber,
	}
}

func TestResolve_SourceAWinsWithoutConsultingB(t *testing.T) {
	a := &fakeSourceA{candidates: []shared.Candidate{imageCandidate("iTunes 1200px", 3)}}
	b := &fakeSourceB{}
	arch := &fakeArchive{}

	rec := New(a, b, arch, nil).Resolve(context.Background(), shared.TrackMeta{Artist: "A", Title: "T"})
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Source != "iTunes 1200px" {
		t.Errorf("Source = %q", rec.Source)
	}
	if b.albumCalls != 0 || b.recordingCalls != 0 || arch.calls != 0 {
		t.Error("second source consulted despite first-source hit")
	}
	if len(rec.Genres) != 1 || rec.Genres[0] != "Rock" {
		t.Errorf("Genres = %v, want the candidate genre lifted", rec.Genres)
	}
}

func TestResolve_PrefersTrackNumberedCandidate(t *testing.T) {
	a := &fakeSourceA{candidates: []shared.Candidate{
		imageCandidate("iTunes 1200px album", 0),
		imageCandidate("iTunes 1200px song", 7),
	}}

	rec := New(a, &fakeSourceB{}, &fakeArchive{}, nil).Resolve(context.Background(), shared.TrackMeta{Title: "T"})
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.TrackNumber != 7 {
		t.Errorf("TrackNumber = %d, want the song-entity candidate", rec.TrackNumber)
	}
}

func TestResolve_SkipsImagelessCandidates(t *testing.T) {
	a := &fakeSourceA{candidates: []shared.Candidate{
		{Source: "no image", AlbumTitle: "X"},
	}}
	b := &fakeSourceB{}

	rec := New(a, b, &fakeArchive{}, nil).Resolve(context.Background(), shared.TrackMeta{Artist: "A", Album: "B"})
	if rec != nil {
		t.Fatalf("imageless candidates must not be accepted, got %+v", rec)
	}
	if b.albumCalls == 0 {
		t.Error("second source should have been consulted")
	}
}

func TestResolve_FallsBackToSourceB(t *testing.T) {
	a := &fakeSourceA{}
	b := &fakeSourceB{
		albumRef: &musicbrainz.ReleaseRef{ID: "mbid-1", Title: "Album X"},
		details:  &musicbrainz.ReleaseDetails{Date: "1999-06-01", Genres: []string{"rock", "indie"}},
	}
	arch := &fakeArchive{data: []byte("caa-bytes"), mime: "image/jpeg"}

	rec := New(a, b, arch, nil).Resolve(context.Background(), shared.TrackMeta{Artist: "Artist X", Album: "Album X"})
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Source != "CoverArtArchive" {
		t.Errorf("Source = %q", rec.Source)
	}
	if rec.AlbumTitle != "Album X" || rec.ReleaseDate != "1999-06-01" {
		t.Errorf("fields = %+v", rec.Candidate)
	}
	if rec.PrimaryGenre() != "rock" {
		t.Errorf("PrimaryGenre() = %q", rec.PrimaryGenre())
	}
	if string(rec.ImageData) != "caa-bytes" {
		t.Errorf("ImageData = %q", rec.ImageData)
	}
}

func TestResolve_RecordingFallbackWhenAlbumSearchMisses(t *testing.T) {
	b := &fakeSourceB{
		recordingRef: &musicbrainz.ReleaseRef{ID: "mbid-2", Title: "Album Y"},
	}
	arch := &fakeArchive{data: []byte("img"), mime: "image/png"}

	rec := New(&fakeSourceA{}, b, arch, nil).Resolve(context.Background(), shared.TrackMeta{Artist: "A", Title: "T"})
	if rec == nil {
		t.Fatal("expected a record via recording fallback")
	}
	if b.recordingCalls != 1 {
		t.Errorf("recording search calls = %d, want 1", b.recordingCalls)
	}
	if rec.AlbumTitle != "Album Y" {
		t.Errorf("AlbumTitle = %q", rec.AlbumTitle)
	}
}

func TestResolve_SourceBUsableWithoutImage(t *testing.T) {
	b := &fakeSourceB{
		albumRef: &musicbrainz.ReleaseRef{ID: "mbid-1", Title: "Album X"},
		details:  &musicbrainz.ReleaseDetails{Date: "2001", Genres: []string{"jazz"}},
	}

	rec := New(&fakeSourceA{}, b, &fakeArchive{}, nil).Resolve(context.Background(), shared.TrackMeta{Artist: "A", Album: "Album X"})
	if rec == nil {
		t.Fatal("a detail-only record is still a hit")
	}
	if len(rec.ImageData) != 0 {
		t.Errorf("ImageData = %d bytes, want none", len(rec.ImageData))
	}
	if rec.ReleaseDate != "2001" || rec.PrimaryGenre() != "jazz" {
		t.Errorf("details missing: %+v", rec)
	}
}

func TestResolve_DetailsErrorTolerated(t *testing.T) {
	b := &fakeSourceB{
		albumRef:   &musicbrainz.ReleaseRef{ID: "mbid-1", Title: "Album X"},
		detailsErr: errors.New("boom"),
	}
	arch := &fakeArchive{data: []byte("img"), mime: "image/jpeg"}

	rec := New(&fakeSourceA{}, b, arch, nil).Resolve(context.Background(), shared.TrackMeta{Artist: "A", Album: "Album X"})
	if rec == nil {
		t.Fatal("expected a record despite details failure")
	}
	if rec.ReleaseDate != "" {
		t.Errorf("ReleaseDate = %q, want empty", rec.ReleaseDate)
	}
	if string(rec.ImageData) != "img" {
		t.Error("image should still have been fetched")
	}
}

func TestResolve_TotalMiss(t *testing.T) {
	b := &fakeSourceB{albumErr: errors.New("search down")}

	rec := New(&fakeSourceA{}, b, &fakeArchive{}, nil).Resolve(context.Background(), shared.TrackMeta{Album: "B"})
	if rec != nil {
		t.Errorf("expected nil on total miss, got %+v", rec)
	}
}

func TestResolve_RecordsLookupWarning(t *testing.T) {
	b := &fakeSourceB{albumErr: errors.New("search down")}
	warnings := shared.NewWarningCollector(true)

	New(&fakeSourceA{}, b, &fakeArchive{}, warnings).Resolve(context.Background(), shared.TrackMeta{Artist: "A", Album: "B"})

	grouped := warnings.GetWarningsByType()
	if len(grouped[shared.SourceLookupWarning]) != 1 {
		t.Errorf("source lookup warnings = %d, want 1", len(grouped[shared.SourceLookupWarning]))
	}
}

func TestResolve_RecordsCoverArtWarning(t *testing.T) {
	b := &fakeSourceB{
		albumRef: &musicbrainz.ReleaseRef{ID: "mbid-1", Title: "Album X"},
	}
	warnings := shared.NewWarningCollector(true)

	rec := New(&fakeSourceA{}, b, &fakeArchive{}, warnings).Resolve(context.Background(), shared.TrackMeta{Artist: "A", Album: "Album X"})
	if rec == nil {
		t.Fatal("expected a record")
	}

	grouped := warnings.GetWarningsByType()
	if len(grouped[shared.CoverArtFetchWarning]) != 1 {
		t.Errorf("cover art warnings = %d, want 1", len(grouped[shared.CoverArtFetchWarning]))
	}
}
