package musicbrainz

import "encoding/json"

// Recording is one entry of a recording search. Fields absent from the
// response stay zero; Raw keeps the full server object.
type Recording struct {
	ID             string         `json:"id"`
	Score          int            `json:"score"`
	Title          string         `json:"title"`
	Length         int            `json:"length"`
	Disambiguation string         `json:"disambiguation"`
	ArtistCredit   []ArtistCredit `json:"artist-credit"`
	Releases       []Release      `json:"releases"`
	ISRCs          []string       `json:"isrcs"`

	Raw map[string]any `json:"-"`
}

type ArtistCredit struct {
	Name       string `json:"name"`
	JoinPhrase string `json:"joinphrase"`
	Artist     Artist `json:"artist"`
}

type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Release struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Status       string       `json:"status"`
	Date         string       `json:"date"`
	Country      string       `json:"country"`
	ReleaseGroup ReleaseGroup `json:"release-group"`
}

type ReleaseGroup struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	PrimaryType string `json:"primary-type"`
}

// ArtistName joins the artist credit the way MusicBrainz displays it.
func (r Recording) ArtistName() string {
	var name string
	for _, ac := range r.ArtistCredit {
		credited := ac.Name
		if credited == "" {
			credited = ac.Artist.Name
		}
		name += credited + ac.JoinPhrase
	}
	return name
}

func (r *Recording) UnmarshalJSON(data []byte) error {
	type plain Recording
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Recording(p)
	r.Raw = raw
	return nil
}

// MarshalJSON writes Raw when present so a decoded recording round-trips
// without losing fields the struct does not model.
func (r Recording) MarshalJSON() ([]byte, error) {
	if r.Raw != nil {
		return json.Marshal(r.Raw)
	}
	type plain Recording
	return json.Marshal(plain(r))
}

type searchResponse struct {
	Count      int           `json:"count"`
	Recordings recordingList `json:"recordings"`
}

// recordingList drops entries that fail to decode instead of failing the
// whole search.
type recordingList []Recording

func (l *recordingList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	recs := make(recordingList, 0, len(raws))
	for _, raw := range raws {
		var rec Recording
		if err := json.Unmarshal(raw, &rec); err != nil || rec.Raw == nil {
			continue
		}
		recs = append(recs, rec)
	}
	*l = recs
	return nil
}

// CoverArtImage is one entry of a Cover Art Archive image list.
// Thumbnail keys are sizes ("250", "500", "1200") or names ("small", "large").
type CoverArtImage struct {
	Front      bool              `json:"front"`
	Back       bool              `json:"back"`
	Types      []string          `json:"types"`
	Thumbnails map[string]string `json:"thumbnails"`
	Image      string            `json:"image"`
}

// UnmarshalJSON reads each field on its own. A field of the wrong type is
// left zero, and non-string thumbnails are dropped.
func (img *CoverArtImage) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	*img = CoverArtImage{}
	img.Front, _ = m["front"].(bool)
	img.Back, _ = m["back"].(bool)
	img.Image, _ = m["image"].(string)

	if types, ok := m["types"].([]any); ok {
		for _, t := range types {
			if s, ok := t.(string); ok {
				img.Types = append(img.Types, s)
			}
		}
	}
	if thumbs, ok := m["thumbnails"].(map[string]any); ok {
		img.Thumbnails = make(map[string]string, len(thumbs))
		for k, v := range thumbs {
			if s, ok := v.(string); ok {
				img.Thumbnails[k] = s
			}
		}
	}
	return nil
}

// imageList drops entries that are not JSON objects.
type imageList []CoverArtImage

func (l *imageList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	images := make(imageList, 0, len(raws))
	for _, raw := range raws {
		var img CoverArtImage
		if err := json.Unmarshal(raw, &img); err != nil {
			continue
		}
		images = append(images, img)
	}
	*l = images
	return nil
}

type coverArtResponse struct {
	Images imageList `json:"images"`
}
