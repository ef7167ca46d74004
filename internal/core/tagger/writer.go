package tagger

import (
	"fmt"
	"strconv"

	"coverfetch/internal/shared"
)

// UpdateFlags enables overwriting per descriptive field. A disabled flag
// never blocks writing into an empty slot; see Decide.
type UpdateFlags struct {
	Album  bool
	Date   bool
	Genre  bool
	Artist bool
	Title  bool
	Track  bool
}

// For returns the update flag of one field.
func (u UpdateFlags) For(field Field) bool {
	switch field {
	case FieldAlbum:
		return u.Album
	case FieldDate:
		return u.Date
	case FieldGenre:
		return u.Genre
	case FieldArtist:
		return u.Artist
	case FieldTitle:
		return u.Title
	case FieldTrack:
		return u.Track
	}
	return false
}

// WriteRequest is the immutable per-job write configuration.
type WriteRequest struct {
	Update     UpdateFlags
	Force      bool
	DryRun     bool
	MaxArtSize int  // downscale embedded art to this many pixels, 0 keeps original
	ID3Version byte // 3 or 4, MP3 only
}

// ImageAction reports what happened to the image slot.
type ImageAction int

const (
	// ImageNone means the record carried no usable image bytes.
	ImageNone ImageAction = iota
	// ImageSkipped means the file already has art and force is off.
	ImageSkipped
	// ImageEmbedded means the image slot was (or in dry-run, would be) replaced.
	ImageEmbedded
)

// ApplyResult reports the outcome of applying one record to one file.
type ApplyResult struct {
	Fields     []shared.FieldOutcome
	Image      ImageAction
	ImageBytes int
}

// discoveredValue extracts the value a record carries for one field, "" when absent.
func discoveredValue(rec *shared.ResolvedRecord, field Field) string {
	switch field {
	case FieldAlbum:
		return rec.AlbumTitle
	case FieldDate:
		return rec.ReleaseDate
	case FieldGenre:
		return rec.PrimaryGenre()
	case FieldArtist:
		return rec.ArtistName
	case FieldTitle:
		return rec.TrackTitle
	case FieldTrack:
		if rec.TrackNumber == 0 {
			return ""
		}
		if rec.TrackCount > 0 {
			return strconv.Itoa(rec.TrackNumber) + "/" + strconv.Itoa(rec.TrackCount)
		}
		return strconv.Itoa(rec.TrackNumber)
	}
	return ""
}

// Apply writes the record's discovered fields and image into the tag store
// of path under the write policy. Fields are applied first, the image slot
// last; the store is persisted once, and only when something changed. In
// dry-run mode outcomes are computed but nothing is opened for writing past
// the read, and the file stays byte-identical.
func Apply(path string, rec *shared.ResolvedRecord, req WriteRequest) (*ApplyResult, error) {
	st, err := Open(path, Options{ID3Version: req.ID3Version})
	if err != nil {
		return nil, fmt.Errorf("open tag store: %w", err)
	}
	defer st.Close()

	result := &ApplyResult{}

	for _, field := range Fields {
		value := discoveredValue(rec, field)
		if value == "" {
			continue
		}

		action := Decide(st.Get(field) != "", req.Update.For(field), req.Force)
		written := action != ActionKeep
		if written && !req.DryRun {
			st.Set(field, value)
		}
		result.Fields = append(result.Fields, shared.FieldOutcome{
			Field:   string(field),
			Value:   value,
			Written: written,
		})
	}

	// The has-art check comes first: a file that already carries art is
	// skipped without force, whether or not the record brought an image.
	switch {
	case st.HasImage() && !req.Force:
		result.Image = ImageSkipped
	case len(rec.ImageData) == 0:
		result.Image = ImageNone
	default:
		data, mime := NormalizeArtwork(rec.ImageData, req.MaxArtSize)
		if mime == "" {
			mime = rec.ContentType
		}
		if !req.DryRun {
			st.SetImage(data, mime)
		}
		result.Image = ImageEmbedded
		result.ImageBytes = len(data)
	}

	if !req.DryRun && st.Dirty() {
		if err := st.Save(); err != nil {
			return nil, fmt.Errorf("persist tag store: %w", err)
		}
	}
	return result, nil
}
