package metadata

import (
	"fmt"
	"strings"

	"go.senan.xyz/taglib"
)

// ReadMedia reads the lookup fields of an audio file from its tags.
func ReadMedia(path string) (Media, error) {
	tags, err := taglib.ReadTags(path)
	if err != nil {
		return Media{}, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}
	return mediaFromTags(path, tags), nil
}

func mediaFromTags(path string, tags map[string][]string) Media {
	return Media{
		Path:   path,
		Title:  firstTag(tags, taglib.Title),
		Artist: firstTag(tags, taglib.Artist),
		Album:  firstTag(tags, taglib.Album),
		ISRC:   strings.ToUpper(firstTag(tags, taglib.ISRC)),
	}
}

func firstTag(tags map[string][]string, key string) string {
	if vals, ok := tags[key]; ok && len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}
