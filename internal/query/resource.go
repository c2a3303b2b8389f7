package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/comarapa/catalog-desk/internal/domain"
)

// Result is the state of a keyed fetch, mirroring what a search box or
// detail panel needs to render: data, loading flags, and the last error.
type Result[T any] struct {
	Data T
	// IsLoading is true only for a first load with no data to show yet.
	IsLoading bool
	// IsFetching is true whenever a fetch is in flight, including a
	// background revalidation of stale data.
	IsFetching bool
	IsError    bool
	Err        error
}

// Store caches fetch results per key and deduplicates background
// revalidations. Within the staleness window a key is served from cache
// without touching the network; between staleness and retention the
// cached value is served immediately while a background refetch replaces
// it (stale-while-revalidate). Both windows are finite.
type Store struct {
	cache    domain.CacheRepository
	staleTTL time.Duration
	cacheTTL time.Duration
	log      *zap.SugaredLogger

	mu       sync.Mutex
	inflight map[string]bool
}

// NewStore creates a query store over the given cache. staleTTL and
// cacheTTL must be positive; cacheTTL shorter than staleTTL is raised to
// match so entries never expire before going stale.
func NewStore(cache domain.CacheRepository, staleTTL, cacheTTL time.Duration, log *zap.SugaredLogger) *Store {
	if staleTTL <= 0 {
		staleTTL = time.Minute
	}
	if cacheTTL < staleTTL {
		cacheTTL = staleTTL
	}
	return &Store{
		cache:    cache,
		staleTTL: staleTTL,
		cacheTTL: cacheTTL,
		log:      log,
		inflight: make(map[string]bool),
	}
}

// Key builds a cache key from an operation name and its normalized
// arguments. String arguments are lowercased and trimmed so equivalent
// queries share an entry.
func Key(operation string, args ...interface{}) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, operation)
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			parts = append(parts, strings.ToLower(strings.TrimSpace(v)))
		default:
			parts = append(parts, fmt.Sprintf("%v", v))
		}
	}
	return strings.Join(parts, ":")
}

// Fetch resolves a key through the store. When enabled is false no fetch
// happens and a zero Result is returned; callers use it to gate on absent
// ids or too-short search terms. Fetch never panics into the caller:
// failures come back as IsError with the zero value for data.
func Fetch[T any](ctx context.Context, s *Store, key string, enabled bool, fn func(context.Context) (T, error)) Result[T] {
	var zero T

	if !enabled {
		return Result[T]{Data: zero}
	}

	cached, stale, err := s.cache.GetStale(ctx, key)
	if err == nil {
		data, ok := cached.(T)
		if ok {
			if stale {
				revalidate(ctx, s, key, fn)
				return Result[T]{Data: data, IsFetching: true}
			}
			return Result[T]{Data: data}
		}
		// Type mismatch means the key is shared across operations;
		// treat as a miss and overwrite below.
	}

	data, fetchErr := fn(ctx)
	if fetchErr != nil {
		return Result[T]{Data: zero, IsError: true, Err: fetchErr}
	}

	if err := s.cache.Set(ctx, key, data, s.staleTTL, s.cacheTTL); err != nil && s.log != nil {
		s.log.Warnw("query cache write failed", "key", key, "error", err)
	}

	return Result[T]{Data: data}
}

// revalidate refetches a stale key in the background, at most once at a
// time per key. The stale value stays in place until the refetch
// succeeds; a failed refetch keeps serving it.
func revalidate[T any](ctx context.Context, s *Store, key string, fn func(context.Context) (T, error)) {
	s.mu.Lock()
	if s.inflight[key] {
		s.mu.Unlock()
		return
	}
	s.inflight[key] = true
	s.mu.Unlock()

	bg := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.inflight, key)
			s.mu.Unlock()
		}()

		data, err := fn(bg)
		if err != nil {
			if s.log != nil && !errors.Is(err, context.Canceled) {
				s.log.Debugw("background revalidation failed", "key", key, "error", err)
			}
			return
		}
		if err := s.cache.Set(bg, key, data, s.staleTTL, s.cacheTTL); err != nil && s.log != nil {
			s.log.Warnw("query cache write failed", "key", key, "error", err)
		}
	}()
}
