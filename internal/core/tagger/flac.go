package tagger

import (
	"fmt"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
)

// flacStore is the Vorbis-comment tag store of a FLAC file.
type flacStore struct {
	path    string
	file    *flac.File
	comment *flacvorbis.MetaDataBlockVorbisComment
	dirty   bool
}

func openFLAC(path string) (*flacStore, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse flac file: %w", err)
	}

	var comment *flacvorbis.MetaDataBlockVorbisComment
	for _, block := range f.Meta {
		if block.Type == flac.VorbisComment {
			comment, err = flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				return nil, fmt.Errorf("parse vorbis comment: %w", err)
			}
			break
		}
	}
	if comment == nil {
		comment = flacvorbis.New()
	}
	return &flacStore{path: path, file: f, comment: comment}, nil
}

// vorbisKeys maps a field to its Vorbis comment keys. FieldTrack spans two
// keys: TRACKNUMBER and TRACKTOTAL.
func vorbisKeys(field Field) []string {
	switch field {
	case FieldAlbum:
		return []string{flacvorbis.FIELD_ALBUM}
	case FieldDate:
		return []string{flacvorbis.FIELD_DATE}
	case FieldGenre:
		return []string{flacvorbis.FIELD_GENRE}
	case FieldArtist:
		return []string{flacvorbis.FIELD_ARTIST}
	case FieldTitle:
		return []string{flacvorbis.FIELD_TITLE}
	case FieldTrack:
		return []string{flacvorbis.FIELD_TRACKNUMBER, "TRACKTOTAL"}
	}
	return nil
}

func (s *flacStore) Get(field Field) string {
	keys := vorbisKeys(field)
	if len(keys) == 0 {
		return ""
	}
	values, err := s.comment.Get(keys[0])
	if err != nil || len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// deleteKey removes every comment with the given key.
func (s *flacStore) deleteKey(key string) {
	kept := s.comment.Comments[:0]
	prefix := strings.ToUpper(key) + "="
	for _, c := range s.comment.Comments {
		if !strings.HasPrefix(strings.ToUpper(c), prefix) {
			kept = append(kept, c)
		}
	}
	s.comment.Comments = kept
}

func (s *flacStore) Set(field Field, value string) {
	for _, key := range vorbisKeys(field) {
		s.deleteKey(key)
	}
	if field == FieldTrack {
		// "n/total" splits across TRACKNUMBER and TRACKTOTAL.
		number, total, _ := strings.Cut(value, "/")
		s.comment.Add(flacvorbis.FIELD_TRACKNUMBER, number)
		if total != "" {
			s.comment.Add("TRACKTOTAL", total)
		}
	} else {
		s.comment.Add(vorbisKeys(field)[0], value)
	}
	s.dirty = true
}

func (s *flacStore) HasImage() bool {
	for _, block := range s.file.Meta {
		if block.Type == flac.Picture {
			return true
		}
	}
	return false
}

func (s *flacStore) SetImage(data []byte, mime string) {
	if !strings.Contains(mime, "/") {
		mime = "image/jpeg"
	}

	kept := s.file.Meta[:0]
	for _, block := range s.file.Meta {
		if block.Type != flac.Picture {
			kept = append(kept, block)
		}
	}
	s.file.Meta = kept

	pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front cover", data, mime)
	if err != nil {
		return
	}
	pictureBlock := pic.Marshal()
	s.file.Meta = append(s.file.Meta, &pictureBlock)
	s.dirty = true
}

func (s *flacStore) Dirty() bool {
	return s.dirty
}

func (s *flacStore) Save() error {
	// Replace the Vorbis comment block with the updated one.
	kept := s.file.Meta[:0]
	for _, block := range s.file.Meta {
		if block.Type != flac.VorbisComment {
			kept = append(kept, block)
		}
	}
	s.file.Meta = kept

	commentBlock := s.comment.Marshal()
	s.file.Meta = append(s.file.Meta, &commentBlock)

	if err := s.file.Save(s.path); err != nil {
		return fmt.Errorf("save flac file: %w", err)
	}
	return nil
}

func (s *flacStore) Close() error {
	return nil
}
