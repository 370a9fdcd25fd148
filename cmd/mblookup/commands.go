package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"mblookup/internal/cache"
	"mblookup/internal/logger"
	"mblookup/internal/metadata"
	"mblookup/internal/musicbrainz"
	"mblookup/internal/progress"
	"mblookup/pkg/utils"
)

type app struct {
	looker    cache.Looker
	log       *logger.Logger
	out       io.Writer
	errOut    io.Writer
	threshold float64
	showBar   bool
}

type bestResult struct {
	Query metadata.Subject   `json:"query"`
	Match *musicbrainz.Match `json:"match"`
}

type coverArtResult struct {
	Type  string `json:"type"`
	MBID  string `json:"mbid"`
	Found bool   `json:"found"`
	URL   string `json:"url,omitempty"`
}

type fileResult struct {
	Path     string             `json:"path"`
	Query    *metadata.Media    `json:"query,omitempty"`
	Match    *musicbrainz.Match `json:"match,omitempty"`
	Accepted bool               `json:"accepted"`
	CoverArt string             `json:"cover_art,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func (a *app) execute(ctx context.Context, inv invocation) error {
	switch inv.Command {
	case "recordings":
		return a.recordings(ctx, inv)
	case "coverart":
		return a.coverArt(ctx, inv.Args[0], inv.Args[1])
	case "file":
		res, err := a.lookupFile(ctx, inv.Args[0], inv.Include)
		if err != nil {
			return err
		}
		return a.writeJSON(res)
	case "scan":
		return a.scan(ctx, inv.Args[0], inv.Include)
	}
	return fmt.Errorf("unknown command: %s", inv.Command)
}

func (a *app) recordings(ctx context.Context, inv invocation) error {
	var subject metadata.Subject = metadata.Song{Title: inv.Title, Artist: inv.Artist}
	if inv.Album != "" || inv.ISRC != "" {
		subject = metadata.Media{Title: inv.Title, Artist: inv.Artist, Album: inv.Album, ISRC: inv.ISRC}
	}

	recs, err := a.looker.FindRecordings(ctx, subject, inv.Include)
	if err != nil {
		return fmt.Errorf("recording search failed: %w", err)
	}
	a.log.Debug("Found %d recordings for %q", len(recs), inv.Title)

	if inv.Best {
		res := bestResult{Query: subject}
		if m, ok := musicbrainz.BestMatch(subject, recs); ok {
			res.Match = &m
		}
		return a.writeJSON(res)
	}

	if recs == nil {
		recs = []musicbrainz.Recording{}
	}
	return a.writeJSON(recs)
}

func (a *app) coverArt(ctx context.Context, recordType, mbid string) error {
	u, err := a.looker.CoverArt(ctx, recordType, mbid)
	if err != nil {
		return fmt.Errorf("cover art lookup failed: %w", err)
	}
	return a.writeJSON(coverArtResult{Type: recordType, MBID: mbid, Found: u != "", URL: u})
}

func (a *app) lookupFile(ctx context.Context, path, include string) (fileResult, error) {
	media, err := metadata.ReadMedia(path)
	if err != nil {
		return fileResult{}, err
	}
	return a.lookupMedia(ctx, media, include)
}

// lookupMedia searches a cleaned copy of media and, when the best match clears
// the confidence threshold, fetches the cover of its first release.
func (a *app) lookupMedia(ctx context.Context, media metadata.Media, include string) (fileResult, error) {
	cleaned := metadata.Clean(media)
	res := fileResult{Path: media.Path, Query: &cleaned}

	if cleaned.Title == "" {
		return res, fmt.Errorf("%s: no title tag", media.Path)
	}

	recs, err := a.looker.FindRecordings(ctx, cleaned, include)
	if err != nil {
		return res, fmt.Errorf("%s: %w", media.Path, err)
	}

	m, ok := musicbrainz.BestMatch(cleaned, recs)
	if !ok {
		a.log.Debug("No recordings for %s", media.Path)
		return res, nil
	}
	res.Match = &m
	res.Accepted = m.Confidence >= a.threshold
	a.log.Debug("Best match for %s: %s - %s (%.2f)", media.Path, m.Recording.ArtistName(), m.Recording.Title, m.Confidence)

	if !res.Accepted || len(m.Recording.Releases) == 0 {
		return res, nil
	}

	u, err := a.looker.CoverArt(ctx, "release", m.Recording.Releases[0].ID)
	if err != nil {
		return res, fmt.Errorf("%s: %w", media.Path, err)
	}
	res.CoverArt = u
	return res, nil
}

func (a *app) scan(ctx context.Context, dir, include string) error {
	files, err := utils.FindAudioFiles(dir)
	if err != nil {
		return err
	}
	a.log.Info("Found %d audio files in %s", len(files), dir)

	var bar *progress.Bar
	if a.showBar && len(files) > 0 {
		bar = progress.New(a.errOut, "scan", len(files))
		a.log.SetProgressBar(true)
	}

	results := make([]fileResult, 0, len(files))
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}

		res, err := a.lookupFile(ctx, path, include)
		if err != nil {
			a.log.Warn("%v", err)
			res.Path = path
			res.Error = err.Error()
		}
		results = append(results, res)

		if bar != nil {
			bar.Increment(err == nil)
		}
	}

	if bar != nil {
		bar.Finish()
		a.log.SetProgressBar(false)
	}

	if err := a.writeJSON(results); err != nil {
		return err
	}
	return ctx.Err()
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
