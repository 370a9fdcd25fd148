package musicbrainz

import (
	"math"
	"testing"

	"mblookup/internal/metadata"
)

func rec(id, title, artist string) Recording {
	return Recording{ID: id, Title: title, ArtistCredit: []ArtistCredit{{Name: artist}}}
}

func TestBestMatch(t *testing.T) {
	tests := []struct {
		name     string
		subject  metadata.Subject
		recs     []Recording
		wantID   string
		wantConf float64
	}{
		{
			name:    "exact match wins over cover",
			subject: metadata.Song{Title: "Blinding Lights", Artist: "The Weeknd"},
			recs: []Recording{
				rec("cover", "Blinding Lights", "Some Cover Band"),
				rec("orig", "Blinding Lights", "The Weeknd"),
			},
			wantID:   "orig",
			wantConf: 1.0,
		},
		{
			name:     "compact artist spelling",
			subject:  metadata.Song{Title: "Blinding Lights", Artist: "TheWeeknd"},
			recs:     []Recording{rec("orig", "Blinding Lights", "The Weeknd")},
			wantID:   "orig",
			wantConf: 1.0,
		},
		{
			name:     "title only subject ignores artist",
			subject:  metadata.Song{Title: "Hello"},
			recs:     []Recording{rec("a", "Hello", "Adele")},
			wantID:   "a",
			wantConf: 1.0,
		},
		{
			name:    "partial title",
			subject: metadata.Song{Title: "One More Time", Artist: "Daft Punk"},
			recs:    []Recording{rec("edit", "One More Time (Radio Edit)", "Daft Punk")},
			wantID:  "edit",
			// 3 of 5 title tokens shared: 0.6*0.6 + 0.4*1.0
			wantConf: 0.76,
		},
		{
			name:    "tie keeps provider order",
			subject: metadata.Song{Title: "Intro", Artist: "X"},
			recs: []Recording{
				rec("first", "Intro", "X"),
				rec("second", "Intro", "X"),
			},
			wantID:   "first",
			wantConf: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best, ok := BestMatch(tt.subject, tt.recs)
			if !ok {
				t.Fatal("BestMatch() ok = false")
			}
			if best.Recording.ID != tt.wantID {
				t.Errorf("best = %q, want %q", best.Recording.ID, tt.wantID)
			}
			if math.Abs(best.Confidence-tt.wantConf) > 1e-9 {
				t.Errorf("confidence = %f, want %f", best.Confidence, tt.wantConf)
			}
		})
	}
}

func TestBestMatch_Empty(t *testing.T) {
	if _, ok := BestMatch(metadata.Song{Title: "x"}, nil); ok {
		t.Error("expected ok = false for no recordings")
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"a", "", 0.0},
		{"the weeknd", "theweeknd", 1.0},
		{"one more time", "one more time radio edit", 0.6},
		{"abc", "xyz", 0.0},
	}
	for _, tt := range tests {
		if got := similarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("similarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
	}
}
