package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"mblookup/internal/cache"
	"mblookup/internal/config"
	"mblookup/internal/lock"
	"mblookup/internal/logger"
	"mblookup/internal/musicbrainz"
	"mblookup/internal/shutdown"

	"github.com/redis/go-redis/v9"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, inv, configPath, err := parseArgs(args)
	switch {
	case errors.Is(err, errHelp):
		printUsage(stdout)
		return 0
	case errors.Is(err, errNoCommand):
		printUsage(stderr)
		return 1
	case err != nil:
		fmt.Fprintf(stderr, "[ERROR] %v\n", err)
		return 1
	}

	if inv.Command == "init-config" {
		if err := initConfigFile(configPath, stdout); err != nil {
			fmt.Fprintf(stderr, "[ERROR] %v\n", err)
			return 1
		}
		return 0
	}

	log := logger.NewWithWriters(cfg.Verbose, stderr, stderr)

	if err := cfg.Validate(); err != nil {
		log.Error("Configuration error: %v", err)
		return 1
	}

	if !cfg.Verbose {
		setupFileLog(log, cfg.LogDir, stderr)
	}
	if configPath != "" {
		log.Debug("Loaded configuration from: %s", configPath)
	}

	sh := shutdown.New(context.Background())
	sh.AddCleanup(log.Close)
	defer func() {
		if err := sh.Close(); err != nil {
			fmt.Fprintf(stderr, "[WARN] shutdown: %v\n", err)
		}
	}()

	locks, store, err := connect(sh, cfg, log)
	if err != nil {
		log.Error("%v", err)
		return 1
	}

	looker, err := newLooker(cfg, locks, store, log)
	if err != nil {
		log.Error("%v", err)
		return 1
	}

	a := &app{
		looker:    looker,
		log:       log,
		out:       stdout,
		errOut:    stderr,
		threshold: cfg.ConfidenceThreshold,
		showBar:   !cfg.Verbose,
	}
	if err := a.execute(sh.Context(), inv); err != nil {
		log.Error("%v", err)
		return 1
	}
	return 0
}

func setupFileLog(log *logger.Logger, logDir string, stderr io.Writer) {
	if logDir == "" {
		return
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Fprintf(stderr, "[WARN] Failed to create log directory: %v\n", err)
		return
	}
	logFile := filepath.Join(logDir, fmt.Sprintf("mblookup_%s.log", time.Now().Format("2006-01-02_15-04-05")))
	if err := log.SetFileLog(logFile); err != nil {
		fmt.Fprintf(stderr, "[WARN] Failed to setup file logging: %v\n", err)
		return
	}
	log.Debug("Logging to file: %s", logFile)
}

// connect picks the lock provider and cache store. With a Redis address both
// live in Redis and are shared by every process; otherwise they are local.
// An unreachable Redis is an error, never a fallback to local locks.
func connect(sh *shutdown.Handler, cfg config.Config, log *logger.Logger) (lock.Provider, cache.Store, error) {
	if cfg.RedisAddr == "" {
		log.Debug("Using in-process locks and cache")
		store := cache.NewMemoryStore()
		store.StartJanitor(sh.Context(), time.Minute)
		sh.AddCleanup(func() error {
			log.Debug("In-process cache held %d entries", store.Len())
			return nil
		})
		return lock.NewMemory(), store, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(sh.Context(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	sh.AddCleanup(rdb.Close)

	log.Debug("Using redis at %s (prefix %q)", cfg.RedisAddr, cfg.RedisPrefix)
	locks := lock.NewRedis(rdb, lock.WithPrefix(cfg.RedisPrefix+":lock"))
	store := cache.NewRedisStore(rdb, cache.WithPrefix(cfg.RedisPrefix+":cache"))
	return locks, store, nil
}

// newLooker builds the rate-limited clients, the lookup service and the cache
// in front of it.
func newLooker(cfg config.Config, locks lock.Provider, store cache.Store, log *logger.Logger) (cache.Looker, error) {
	httpClient := &http.Client{}
	lockOpts := lock.Options{
		Wait:         cfg.LockWait(),
		Lease:        cfg.LockLease(),
		PollInterval: cfg.LockPoll(),
	}

	apiOpts := musicbrainz.APIOptions()
	apiOpts.BaseURL = cfg.APIBaseURL
	apiOpts.UserAgent = cfg.UserAgent
	apiOpts.Timeout = cfg.RequestTimeout()
	apiOpts.MinInterval = cfg.MinInterval()
	apiOpts.Lock = lockOpts

	api, err := musicbrainz.NewClient(httpClient, locks, apiOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create musicbrainz client: %w", err)
	}

	artOpts := musicbrainz.CoverArtOptions()
	artOpts.BaseURL = cfg.CoverArtBaseURL
	artOpts.UserAgent = cfg.UserAgent
	artOpts.Timeout = cfg.RequestTimeout()
	artOpts.Lock = lockOpts

	art, err := musicbrainz.NewClient(httpClient, locks, artOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create cover art client: %w", err)
	}

	for _, c := range []*musicbrainz.Client{api, art} {
		log.Debug("Client %s: requests serialized by lock %q", c.Name(), c.LockName())
	}

	service := musicbrainz.NewService(api, art)
	return cache.NewLookup(service, store, cfg.CacheTTL(), cfg.CacheNegativeTTL(), log), nil
}
