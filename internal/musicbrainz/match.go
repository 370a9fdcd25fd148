package musicbrainz

import (
	"strings"
	"unicode"

	"mblookup/internal/metadata"
)

// Match is a recording with its similarity to the subject (0.0-1.0).
type Match struct {
	Recording  Recording `json:"recording"`
	Confidence float64   `json:"confidence"`
}

// BestMatch scores each recording against subject and returns the best one.
// Title weighs 60% and artist 40%; without an artist only the title counts.
// Ties keep the provider's order. ok is false when recs is empty.
func BestMatch(subject metadata.Subject, recs []Recording) (best Match, ok bool) {
	for i, rec := range recs {
		conf := score(subject, rec)
		if i == 0 || conf > best.Confidence {
			best = Match{Recording: rec, Confidence: conf}
		}
	}
	return best, len(recs) > 0
}

func score(subject metadata.Subject, rec Recording) float64 {
	titleScore := similarity(normalize(subject.LookupTitle()), normalize(rec.Title))
	if strings.TrimSpace(subject.LookupArtist()) == "" {
		return titleScore
	}
	artistScore := similarity(normalize(subject.LookupArtist()), normalize(rec.ArtistName()))
	return titleScore*0.6 + artistScore*0.4
}

// similarity compares two normalized strings by compact equality first
// ("theweeknd" vs "the weeknd"), then by shared-token ratio.
func similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	if strings.ReplaceAll(a, " ", "") == strings.ReplaceAll(b, " ", "") {
		return 1.0
	}

	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}

	seen := make(map[string]bool, len(tokensB))
	for _, t := range tokensB {
		seen[t] = true
	}
	shared := 0
	for _, t := range tokensA {
		if seen[t] {
			shared++
		}
	}

	return float64(shared) / float64(max(len(tokensA), len(tokensB)))
}

// normalize lowercases and keeps letters, digits and spaces.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
