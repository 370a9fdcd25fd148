package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"mblookup/internal/logger"
	"mblookup/internal/metadata"
	"mblookup/internal/musicbrainz"
)

// Looker is the lookup surface being cached. *musicbrainz.Service satisfies it.
type Looker interface {
	FindRecordings(ctx context.Context, subject metadata.Subject, include string) ([]musicbrainz.Recording, error)
	CoverArt(ctx context.Context, recordType, mbid string) (string, error)
}

// Lookup caches a Looker. Recording lists are kept for TTL and cover-art
// answers for TTL, except "no cover art" which is kept for NegativeTTL.
// Errors are never cached. Store failures are logged and read as misses.
type Lookup struct {
	next        Looker
	store       Store
	ttl         time.Duration
	negativeTTL time.Duration
	logger      *logger.Logger
}

// NewLookup wraps next. A zero ttl disables caching of positive answers, a
// zero negativeTTL disables caching of missing cover art.
func NewLookup(next Looker, store Store, ttl, negativeTTL time.Duration, log *logger.Logger) *Lookup {
	if log == nil {
		log = logger.Discard()
	}
	return &Lookup{next: next, store: store, ttl: ttl, negativeTTL: negativeTTL, logger: log}
}

func (l *Lookup) FindRecordings(ctx context.Context, subject metadata.Subject, include string) ([]musicbrainz.Recording, error) {
	key := recordingsKey(subject, include)

	if data, ok := l.get(ctx, key); ok {
		var recs []musicbrainz.Recording
		if err := json.Unmarshal(data, &recs); err == nil {
			l.logger.Debug("cache hit: recordings for %q", subject.LookupTitle())
			return recs, nil
		}
		l.logger.Warn("discarding unreadable cache entry %s", key)
	}

	recs, err := l.next.FindRecordings(ctx, subject, include)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(recs); err == nil {
		l.set(ctx, key, data, l.ttl)
	}
	return recs, nil
}

func (l *Lookup) CoverArt(ctx context.Context, recordType, mbid string) (string, error) {
	key := "coverart:" + recordType + ":" + mbid

	if data, ok := l.get(ctx, key); ok {
		l.logger.Debug("cache hit: cover art for %s %s", recordType, mbid)
		return string(data), nil
	}

	u, err := l.next.CoverArt(ctx, recordType, mbid)
	if err != nil {
		return "", err
	}

	ttl := l.ttl
	if u == "" {
		ttl = l.negativeTTL
	}
	l.set(ctx, key, []byte(u), ttl)
	return u, nil
}

func (l *Lookup) get(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := l.store.Get(ctx, key)
	if err != nil {
		l.logger.Warn("cache read failed for %s: %v", key, err)
		return nil, false
	}
	return data, ok
}

func (l *Lookup) set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := l.store.Set(ctx, key, data, ttl); err != nil {
		l.logger.Warn("cache write failed for %s: %v", key, err)
	}
}

// recordingsKey hashes everything that shapes the provider queries.
func recordingsKey(subject metadata.Subject, include string) string {
	parts := []string{"v1", include}
	parts = append(parts, musicbrainz.AdvancedTerms(subject)...)
	parts = append(parts, "|")
	parts = append(parts, musicbrainz.BaseTerms(subject)...)

	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "recordings:" + hex.EncodeToString(sum[:])
}
