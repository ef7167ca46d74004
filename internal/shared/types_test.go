package shared

import "testing"

func TestPrimaryGenre(t *testing.T) {
	tests := []struct {
		name string
		rec  ResolvedRecord
		want string
	}{
		{"empty", ResolvedRecord{}, ""},
		{"genre list wins", ResolvedRecord{
			Candidate: Candidate{Genre: "Pop"},
			Genres:    []string{"rock", "indie"},
		}, "rock"},
		{"candidate genre fallback", ResolvedRecord{
			Candidate: Candidate{Genre: "Pop"},
		}, "Pop"},
	}

	for _, tt := range tests {
		if got := tt.rec.PrimaryGenre(); got != tt.want {
			t.Errorf("%s: PrimaryGenre() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
