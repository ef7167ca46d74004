package tagger

import (
	"fmt"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// mp3Store is the ID3v2 tag store of an MP3 file.
type mp3Store struct {
	tag     *id3v2.Tag
	version byte
	enc     id3v2.Encoding
	dirty   bool
}

func openMP3(path string, opts Options) (*mp3Store, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("open id3 tag: %w", err)
	}

	version := opts.ID3Version
	if version != 4 {
		version = 3
	}
	// ID3v2.3 has no UTF-8 text encoding; fall back to UTF-16 there.
	enc := id3v2.EncodingUTF8
	if version == 3 {
		enc = id3v2.EncodingUTF16
	}
	return &mp3Store{tag: tag, version: version, enc: enc}, nil
}

// frameID maps a field to its ID3 frame for the target tag version. The date
// frame differs: TDRC in v2.4, TYER in v2.3.
func (s *mp3Store) frameID(field Field) string {
	switch field {
	case FieldAlbum:
		return "TALB"
	case FieldDate:
		if s.version == 3 {
			return "TYER"
		}
		return "TDRC"
	case FieldGenre:
		return "TCON"
	case FieldArtist:
		return "TPE1"
	case FieldTitle:
		return "TIT2"
	case FieldTrack:
		return "TRCK"
	}
	return ""
}

func (s *mp3Store) Get(field Field) string {
	if field == FieldDate {
		// Accept either date frame regardless of target version.
		for _, id := range []string{"TDRC", "TYER"} {
			if text := strings.TrimSpace(s.tag.GetTextFrame(id).Text); text != "" {
				return text
			}
		}
		return ""
	}
	return strings.TrimSpace(s.tag.GetTextFrame(s.frameID(field)).Text)
}

func (s *mp3Store) Set(field Field, value string) {
	if field == FieldDate {
		// Both date frames are cleared so the store holds a single date key.
		s.tag.DeleteFrames("TDRC")
		s.tag.DeleteFrames("TYER")
		if s.version == 3 && len(value) > 4 {
			value = value[:4] // TYER holds a year only
		}
	} else {
		s.tag.DeleteFrames(s.frameID(field))
	}
	s.tag.AddTextFrame(s.frameID(field), s.enc, value)
	s.dirty = true
}

func (s *mp3Store) HasImage() bool {
	return len(s.tag.GetFrames(s.tag.CommonID("Attached picture"))) > 0
}

func (s *mp3Store) SetImage(data []byte, mime string) {
	if !strings.Contains(mime, "/") {
		mime = "image/jpeg"
	}
	s.tag.DeleteFrames(s.tag.CommonID("Attached picture"))
	s.tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    s.enc,
		MimeType:    mime,
		PictureType: id3v2.PTFrontCover,
		Description: "Front cover",
		Picture:     data,
	})
	s.dirty = true
}

func (s *mp3Store) Dirty() bool {
	return s.dirty
}

func (s *mp3Store) Save() error {
	s.tag.SetVersion(s.version)
	s.tag.SetDefaultEncoding(s.enc)
	if err := s.tag.Save(); err != nil {
		return fmt.Errorf("save id3 tag: %w", err)
	}
	return nil
}

func (s *mp3Store) Close() error {
	return s.tag.Close()
}
