// Package musicbrainz looks up recordings on MusicBrainz and front covers on
// the Cover Art Archive.
//
// Every outbound call goes through a Client, which holds the service's named
// lock ("api_<name>") for the duration of the HTTP exchange only. With a
// shared lock.Provider (Redis) this serializes calls across every process of
// a deployment. The package never retries and never logs; both are left to
// the caller.
package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"mblookup/internal/lock"

	"golang.org/x/time/rate"
)

const (
	APIBaseURL      = "https://musicbrainz.org/ws/2/"
	CoverArtBaseURL = "https://coverartarchive.org/"

	DefaultUserAgent = "mblookup/1.0"
	DefaultTimeout   = 7 * time.Second

	// maxErrorBody caps how much of an error response ends up in UpstreamError.
	maxErrorBody = 512

	// leaseMargin is added to the request timeout when the configured lease
	// would expire before a request can finish.
	leaseMargin = time.Second
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	// Name identifies the service in errors and in the lock name "api_<Name>".
	Name    string
	BaseURL string
	// UserAgent is sent on every request (MusicBrainz rejects anonymous clients).
	UserAgent string
	// Timeout bounds a single request including reading the body.
	Timeout time.Duration
	// DefaultQuery is merged into every request and wins over caller keys.
	DefaultQuery url.Values
	// MinInterval spaces requests from this process. Zero disables it.
	MinInterval time.Duration
	Lock        lock.Options
}

// APIOptions returns the options for the MusicBrainz web service.
func APIOptions() Options {
	return Options{
		Name:         "musicbrainz",
		BaseURL:      APIBaseURL,
		DefaultQuery: url.Values{"fmt": {"json"}},
		MinInterval:  time.Second,
	}
}

// CoverArtOptions returns the options for the Cover Art Archive.
func CoverArtOptions() Options {
	return Options{
		Name:    "coverartarchive",
		BaseURL: CoverArtBaseURL,
	}
}

// Client is a rate-limited HTTP client for one external API.
type Client struct {
	http      Doer
	locks     lock.Provider
	base      *url.URL
	name      string
	lockName  string
	userAgent string
	timeout   time.Duration
	defaults  url.Values
	lockOpts  lock.Options
	throttle  *rate.Limiter
}

// Response is a raw provider answer.
type Response struct {
	StatusCode int
	Body       []byte
}

// NewClient creates a Client. transport and locks are required.
func NewClient(transport Doer, locks lock.Provider, opts Options) (*Client, error) {
	if transport == nil {
		return nil, errors.New("musicbrainz: nil transport")
	}
	if locks == nil {
		return nil, errors.New("musicbrainz: nil lock provider")
	}
	if opts.Name == "" {
		return nil, errors.New("musicbrainz: client name is required")
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid %s base URL: %w", opts.Name, err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("%s base URL must be absolute, got %q", opts.Name, opts.BaseURL)
	}

	c := &Client{
		http:      transport,
		locks:     locks,
		base:      base,
		name:      opts.Name,
		lockName:  "api_" + opts.Name,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		defaults:  opts.DefaultQuery,
		lockOpts:  opts.Lock.WithDefaults(),
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	// The lock serializes callers; one holder is the whole point.
	c.lockOpts.MaxHolders = 1
	// A lease shorter than a request would free the lock mid-call.
	if c.lockOpts.Lease < c.timeout+leaseMargin {
		c.lockOpts.Lease = c.timeout + leaseMargin
	}
	if opts.MinInterval > 0 {
		c.throttle = rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	}
	return c, nil
}

// Name returns the service name the client was created with.
func (c *Client) Name() string { return c.name }

// LockName returns the named lock guarding this client's requests.
func (c *Client) LockName() string { return c.lockName }

// Get sends a GET for uri (resolved against the base URL) and returns the
// status and body without interpreting them.
func (c *Client) Get(ctx context.Context, uri string, query url.Values) (*Response, error) {
	reqURL, err := c.resolve(uri, query)
	if err != nil {
		return nil, err
	}

	if c.throttle != nil {
		if err := c.throttle.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s request throttled: %w", c.name, err)
		}
	}

	handle, err := c.locks.Acquire(ctx, c.lockName, c.lockOpts)
	if errors.Is(err, lock.ErrConflict) {
		return nil, fmt.Errorf("%w: could not acquire %s lock", ErrRateLimitExceeded, c.lockName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s lock: %w", c.lockName, err)
	}
	defer c.release(ctx, handle)

	return c.send(ctx, reqURL)
}

// GetJSON sends a GET and decodes the JSON body into v. A status of 400 or
// above yields *UpstreamError; a malformed body yields *DecodeError.
func (c *Client) GetJSON(ctx context.Context, uri string, query url.Values, v any) error {
	resp, err := c.Get(ctx, uri, query)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		body := resp.Body
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &UpstreamError{Service: c.name, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(resp.Body, v); err != nil {
		return &DecodeError{Service: c.name, Err: err}
	}
	return nil
}

// Request sends a GET and returns the decoded JSON object.
func (c *Client) Request(ctx context.Context, uri string, query url.Values) (map[string]any, error) {
	var out map[string]any
	if err := c.GetJSON(ctx, uri, query, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, &DecodeError{Service: c.name, Err: errors.New("response is not a JSON object")}
	}
	return out, nil
}

// resolve builds the absolute request URL. Query parameters already in uri
// come first, then the caller's, then the client defaults.
func (c *Client) resolve(uri string, query url.Values) (string, error) {
	ref, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid %s request URI %q: %w", c.name, uri, err)
	}
	u := c.base.ResolveReference(ref)

	params := u.Query()
	for k, vs := range query {
		params[k] = append([]string(nil), vs...)
	}
	for k, vs := range c.defaults {
		params[k] = append([]string(nil), vs...)
	}
	u.RawQuery = params.Encode()

	return u.String(), nil
}

func (c *Client) send(ctx context.Context, reqURL string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", c.name, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", c.name, err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// release frees the lock even when ctx is already cancelled.
func (c *Client) release(ctx context.Context, h lock.Handle) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	// A failed release is covered by the lease expiring.
	_ = h.Release(ctx)
}
