package metadata

// Subject is anything that can be looked up by title and artist.
type Subject interface {
	LookupTitle() string
	LookupArtist() string
}

// ExtendedSubject carries album and ISRC on top of Subject. Lookups use the
// extra fields to try a narrower query first.
type ExtendedSubject interface {
	Subject
	LookupAlbum() string
	LookupISRC() string
}

// Song is a plain title/artist pair, e.g. now-playing metadata.
type Song struct {
	Title  string `json:"title"`
	Artist string `json:"artist,omitempty"`
}

func (s Song) LookupTitle() string  { return s.Title }
func (s Song) LookupArtist() string { return s.Artist }

// Media is a song backed by a media file with its full tag set.
type Media struct {
	Path   string `json:"path,omitempty"`
	Title  string `json:"title"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	ISRC   string `json:"isrc,omitempty"`
}

func (m Media) LookupTitle() string  { return m.Title }
func (m Media) LookupArtist() string { return m.Artist }
func (m Media) LookupAlbum() string  { return m.Album }
func (m Media) LookupISRC() string   { return m.ISRC }
