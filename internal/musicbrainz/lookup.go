package musicbrainz

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"mblookup/internal/metadata"
)

const (
	// DefaultInclude asks MusicBrainz to embed releases in each recording.
	DefaultInclude = "releases"

	searchLimit = 5
)

// Service builds provider queries from lookup subjects.
type Service struct {
	api *Client
	art *Client
}

// NewService creates a Service. api talks to the MusicBrainz web service and
// art to the Cover Art Archive.
func NewService(api, art *Client) *Service {
	return &Service{api: api, art: art}
}

// FindRecordings searches recordings matching subject.
//
// Extended subjects with an album or ISRC are first searched with those
// extra terms; if that finds nothing, the title/artist query is sent. An
// empty result is not an error. A blank title returns no results without
// contacting the provider.
func (s *Service) FindRecordings(ctx context.Context, subject metadata.Subject, include string) ([]Recording, error) {
	base := BaseTerms(subject)
	if base == nil {
		return nil, nil
	}

	if advanced := AdvancedTerms(subject); len(advanced) > len(base) {
		recs, err := s.searchRecordings(ctx, advanced, include)
		if err != nil {
			return nil, err
		}
		if len(recs) > 0 {
			return recs, nil
		}
	}

	return s.searchRecordings(ctx, base, include)
}

func (s *Service) searchRecordings(ctx context.Context, terms []string, include string) ([]Recording, error) {
	query := url.Values{}
	query.Set("query", JoinTerms(terms))
	query.Set("limit", strconv.Itoa(searchLimit))
	if include != "" {
		query.Set("inc", include)
	}

	var resp searchResponse
	if err := s.api.GetJSON(ctx, "recording/", query, &resp); err != nil {
		return nil, err
	}
	return resp.Recordings, nil
}

// BaseTerms returns the quoted title and, when present, the artist term.
// It returns nil for a blank title.
func BaseTerms(subject metadata.Subject) []string {
	title := strings.TrimSpace(subject.LookupTitle())
	if title == "" {
		return nil
	}

	terms := []string{quote(title)}
	if artist := strings.TrimSpace(subject.LookupArtist()); artist != "" {
		terms = append(terms, "artist:"+quote(artist))
	}
	return terms
}

// AdvancedTerms returns BaseTerms plus release and ISRC terms for extended
// subjects. For plain subjects it equals BaseTerms.
func AdvancedTerms(subject metadata.Subject) []string {
	terms := BaseTerms(subject)
	ext, ok := subject.(metadata.ExtendedSubject)
	if !ok || terms == nil {
		return terms
	}

	if album := strings.TrimSpace(ext.LookupAlbum()); album != "" {
		terms = append(terms, "release:"+quote(album))
	}
	if isrc := strings.TrimSpace(ext.LookupISRC()); isrc != "" {
		terms = append(terms, "isrc:"+quote(isrc))
	}
	return terms
}

// JoinTerms combines query terms into one Lucene query string.
func JoinTerms(terms []string) string {
	return strings.Join(terms, " AND ")
}

// quote wraps s in double quotes. Embedded double quotes become single quotes
// because the search grammar has no reliable escape for them.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `'`) + `"`
}
