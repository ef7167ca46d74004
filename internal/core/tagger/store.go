// Package tagger applies resolved metadata to a file's embedded tag store
// under an explicit field-level write policy. Two stores are supported: MP3
// (ID3v2 frames) and FLAC (Vorbis comments plus picture blocks).
package tagger

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Field names one descriptive slot of a tag store.
type Field string

const (
	FieldAlbum  Field = "album"
	FieldDate   Field = "date"
	FieldGenre  Field = "genre"
	FieldArtist Field = "artist"
	FieldTitle  Field = "title"
	FieldTrack  Field = "track"
)

// Fields lists the descriptive fields in the order they are written and reported.
var Fields = []Field{FieldAlbum, FieldDate, FieldGenre, FieldArtist, FieldTitle, FieldTrack}

// Store is the keyed frame store embedded in one media file. Set removes all
// prior occurrences of the field's key and adds the single new value; nothing
// touches the file until Save persists the whole store once. Close releases
// the underlying file handle without persisting.
type Store interface {
	Get(field Field) string
	Set(field Field, value string)
	HasImage() bool
	SetImage(data []byte, mime string)
	Dirty() bool
	Save() error
	Close() error
}

// Options selects the on-disk form a store normalizes to when saved.
type Options struct {
	// ID3Version is the ID3v2 tag version MP3 stores save at: 3 or 4.
	ID3Version byte
}

// Open opens the tag store of path, selecting the backend by extension.
func Open(path string, opts Options) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return openMP3(path, opts)
	case ".flac":
		return openFLAC(path)
	default:
		return nil, fmt.Errorf("unsupported format: %s", filepath.Ext(path))
	}
}

// HasImage reports whether the file at path already carries embedded art.
// Unreadable files report false; the write path surfaces the real error.
func HasImage(path string) bool {
	st, err := Open(path, Options{})
	if err != nil {
		return false
	}
	defer st.Close()
	return st.HasImage()
}
