package auth

import (
	"aggregat4/coffeeshop/internal/logging"
	"aggregat4/coffeeshop/internal/metrics"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-jose/go-jose/v3"
	"golang.org/x/sync/singleflight"
)

var logger = logging.ForComponent("internal.auth")

// ErrKeyNotFound is returned when the key set has no key with the requested id.
var ErrKeyNotFound = errors.New("signing key not found")

const fetchTimeout = 10 * time.Second

// KeySet caches the provider's JSON Web Key Set. Reads are cheap; refreshes
// happen when the cache is older than the TTL or when an unknown key id shows
// up, and concurrent refreshes share a single fetch.
type KeySet struct {
	url    string
	client *http.Client
	ttl    time.Duration
	// unknown key ids only trigger a refetch if the last fetch is at least this old
	minRefreshInterval time.Duration
	now                func() time.Time

	mu        sync.RWMutex
	keys      jose.JSONWebKeySet
	fetchedAt time.Time

	group singleflight.Group
}

type KeySetOption func(*KeySet)

func WithHTTPClient(client *http.Client) KeySetOption {
	return func(s *KeySet) { s.client = client }
}

func WithClock(now func() time.Time) KeySetOption {
	return func(s *KeySet) { s.now = now }
}

func WithMinRefreshInterval(interval time.Duration) KeySetOption {
	return func(s *KeySet) { s.minRefreshInterval = interval }
}

// NewKeySet creates a key set for the given URL. http(s) URLs are fetched,
// file URLs are read from disk.
func NewKeySet(jwksUrl string, ttl time.Duration, options ...KeySetOption) *KeySet {
	s := &KeySet{
		url:                jwksUrl,
		client:             &http.Client{Timeout: fetchTimeout},
		ttl:                ttl,
		minRefreshInterval: 10 * time.Second,
		now:                time.Now,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Key returns the public key for a key id.
func (s *KeySet) Key(ctx context.Context, kid string) (any, error) {
	s.mu.RLock()
	keys, fetchedAt := s.keys, s.fetchedAt
	s.mu.RUnlock()

	age := s.now().Sub(fetchedAt)
	if !fetchedAt.IsZero() && age < s.ttl {
		if key, ok := lookup(keys, kid); ok {
			return key, nil
		}
		if age < s.minRefreshInterval {
			return nil, ErrKeyNotFound
		}
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if key, ok := lookup(s.keys, kid); ok {
		return key, nil
	}
	return nil, ErrKeyNotFound
}

// Refresh fetches the key set now. Concurrent callers share one fetch, which
// is not cancelled when an individual caller gives up.
func (s *KeySet) Refresh(ctx context.Context) error {
	result := s.group.DoChan("jwks", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		keys, err := s.fetch(fetchCtx)
		if err != nil {
			metrics.RecordJwksRefresh("failure")
			logging.Warn(logger, "Fetching signing keys from {Url} failed: {Error}", s.url, err)
			return nil, err
		}
		s.mu.Lock()
		s.keys = keys
		s.fetchedAt = s.now()
		s.mu.Unlock()
		metrics.RecordJwksRefresh("success")
		logging.Debug(logger, "Signing keys refreshed, {Count} keys", len(keys.Keys))
		return nil, nil
	})
	select {
	case res := <-result:
		return res.Err
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for key set")
	}
}

func (s *KeySet) fetch(ctx context.Context) (jose.JSONWebKeySet, error) {
	var keys jose.JSONWebKeySet
	body, err := s.read(ctx)
	if err != nil {
		return keys, err
	}
	if err := json.Unmarshal(body, &keys); err != nil {
		return keys, errors.Wrap(err, "decoding key set")
	}
	return keys, nil
}

func (s *KeySet) read(ctx context.Context) ([]byte, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return nil, errors.Wrap(err, "parsing key set url")
	}
	if u.Scheme == "file" {
		return os.ReadFile(u.Path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	res, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "requesting key set")
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("key set endpoint returned %d", res.StatusCode)
	}
	return io.ReadAll(io.LimitReader(res.Body, 1<<20))
}

func lookup(keys jose.JSONWebKeySet, kid string) (any, bool) {
	for _, key := range keys.Key(kid) {
		if key.Use != "" && key.Use != "sig" {
			continue
		}
		if !key.IsPublic() {
			continue
		}
		return key.Key, true
	}
	return nil, false
}
