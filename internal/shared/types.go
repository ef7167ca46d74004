package shared

// TrackMeta is the best-effort identity of one audio file, derived from its
// existing tags or its filename. Fields are empty strings when unknown and
// are never mutated after construction.
type TrackMeta struct {
	Artist string
	Album  string
	Title  string
}

// Candidate is a not-yet-accepted cover-art/metadata result from a lookup
// source. Image bytes may be empty when a source could only resolve
// descriptive fields.
type Candidate struct {
	ImageData   []byte
	ContentType string
	Source      string
	AlbumTitle  string
	ReleaseDate string
	Genre       string
	ArtistName  string
	TrackTitle  string
	TrackNumber int
	TrackCount  int
}

// ResolvedRecord is the single accepted candidate for a file plus its
// normalized genre list. The first genre is the primary one written to tags.
type ResolvedRecord struct {
	Candidate
	Genres []string
}

// PrimaryGenre returns the first genre of the record, falling back to the
// candidate's own genre when no list was attached, or "".
func (r *ResolvedRecord) PrimaryGenre() string {
	if len(r.Genres) > 0 {
		return r.Genres[0]
	}
	return r.Genre
}

// Status is the terminal outcome of processing one file.
type Status string

const (
	StatusOK    Status = "ok"
	StatusSkip  Status = "skip"
	StatusMiss  Status = "miss"
	StatusError Status = "error"
	StatusFound Status = "found" // dry-run only
)

// FieldOutcome records what happened to one descriptive field during a write.
type FieldOutcome struct {
	Field   string
	Value   string
	Written bool
}

// WorkResult is the terminal report for one file. Exactly one is produced
// per scanned file, regardless of how processing ended.
type WorkResult struct {
	Path         string
	Status       Status
	Source       string
	Detail       string
	BytesWritten int
	Fields       []FieldOutcome
}
