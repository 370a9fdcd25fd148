package musicbrainz

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Thumbnail keys in order of preference.
var thumbnailPreference = []string{"1200", "large"}

// CoverArt returns an https URL of the front cover for a release or release
// group ("release", "release-group") identified by its MBID.
//
// Missing cover art is routine: any non-200 status, an empty or malformed
// body, or an image list without a usable front image returns "" and a nil
// error. Transport failures and ErrRateLimitExceeded are returned as errors.
func (s *Service) CoverArt(ctx context.Context, recordType, mbid string) (string, error) {
	uri := "/" + url.PathEscape(recordType) + "/" + url.PathEscape(mbid)

	resp, err := s.art.Get(ctx, uri, nil)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return "", nil
	}

	var body coverArtResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", nil
	}

	return FrontImageURL(body.Images), nil
}

// FrontImageURL picks the first front image with a usable URL, preferring
// the 1200px thumbnail, then the large one, then the full image. The result
// always uses the https scheme; "" means no front image qualified.
func FrontImageURL(images []CoverArtImage) string {
	for _, img := range images {
		if !img.Front {
			continue
		}
		if u := forceHTTPS(imageURL(img)); u != "" {
			return u
		}
	}
	return ""
}

func imageURL(img CoverArtImage) string {
	for _, key := range thumbnailPreference {
		if u := img.Thumbnails[key]; u != "" {
			return u
		}
	}
	return img.Image
}

func forceHTTPS(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	u.Scheme = "https"
	return u.String()
}
