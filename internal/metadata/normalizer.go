package metadata

import (
	"regexp"
	"strings"
)

// Suffixes that uploaders append to titles and that never appear in catalogue
// titles. Each is matched inside parentheses or square brackets.
var noiseSuffixes = []string{
	`official\s+(?:music\s+|lyric\s+)?video`,
	`official\s+audio`,
	`official\s+visuali[sz]er`,
	`lyrics?`,
	`visual(?:i[sz]er)?`,
	`audio`,
	`hd`,
	`hq`,
	`4k`,
	`explicit`,
	`clean`,
}

var noisePattern = regexp.MustCompile(`(?i)\s*[\(\[]\s*(?:` + strings.Join(noiseSuffixes, "|") + `)\s*[\)\]]`)

var featuringPattern = regexp.MustCompile(`(?i)\s*[\(\[]\s*(?:feat\.?|ft\.?|featuring)\s+[^\)\]]+[\)\]]`)

var vevoPattern = regexp.MustCompile(`(?i)vevo$`)

var artistTitleSeparator = regexp.MustCompile(`^(.+?)\s*[-–—]\s*(.+)$`)

// Clean strips upload noise from a media's title and artist so the lookup
// query matches catalogue spelling. Album and ISRC are left alone.
//
// When the artist is empty and the title looks like "Artist - Title", the
// two are split apart.
func Clean(m Media) Media {
	title := strings.TrimSpace(m.Title)
	artist := strings.TrimSpace(vevoPattern.ReplaceAllString(strings.TrimSpace(m.Artist), ""))

	if title == "" {
		m.Title, m.Artist = title, artist
		return m
	}

	title = noisePattern.ReplaceAllString(title, "")
	title = featuringPattern.ReplaceAllString(title, "")

	if artist == "" {
		if parts := artistTitleSeparator.FindStringSubmatch(title); parts != nil {
			artist = parts[1]
			title = parts[2]
		}
	}

	m.Title = strings.TrimSpace(title)
	m.Artist = strings.TrimSpace(artist)
	return m
}
