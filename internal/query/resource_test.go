package query

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/comarapa/catalog-desk/internal/infrastructure/cache"
)

func newTestStore(staleTTL, cacheTTL time.Duration) *Store {
	return NewStore(cache.NewMemoryCache(), staleTTL, cacheTTL, nil)
}

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		op   string
		args []interface{}
		want string
	}{
		{
			name: "operation only",
			op:   "products:search",
			want: "products:search",
		},
		{
			name: "normalizes string args",
			op:   "products:search",
			args: []interface{}{"  Arroz ", 10},
			want: "products:search:arroz:10",
		},
		{
			name: "same term different case shares a key",
			op:   "products:search",
			args: []interface{}{"ARROZ", 10},
			want: "products:search:arroz:10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.op, tt.args...); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetch_DisabledShortCircuits(t *testing.T) {
	s := newTestStore(time.Minute, 5*time.Minute)
	calls := 0

	res := Fetch(context.Background(), s, "op:disabled", false, func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"should not run"}, nil
	})

	if calls != 0 {
		t.Errorf("fetch function called %d times, want 0", calls)
	}
	if res.IsLoading || res.IsFetching || res.IsError {
		t.Errorf("Result flags = %+v, want all false", res)
	}
	if res.Data != nil {
		t.Errorf("Data = %v, want zero value", res.Data)
	}
}

func TestFetch_CachesPerKey(t *testing.T) {
	s := newTestStore(time.Minute, 5*time.Minute)
	var calls int32

	fn := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "result", nil
	}

	first := Fetch(context.Background(), s, "op:a", true, fn)
	second := Fetch(context.Background(), s, "op:a", true, fn)

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("fetch function called %d times, want 1 (second call served from cache)", calls)
	}
	if first.Data != "result" || second.Data != "result" {
		t.Errorf("Data = %q / %q, want result", first.Data, second.Data)
	}
	if second.IsFetching {
		t.Error("fresh cache hit reported IsFetching = true")
	}

	// A different key fetches independently
	Fetch(context.Background(), s, "op:b", true, fn)
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("fetch function called %d times, want 2", calls)
	}
}

func TestFetch_StaleWhileRevalidate(t *testing.T) {
	s := newTestStore(10*time.Millisecond, time.Minute)
	var calls int32

	fn := func(ctx context.Context) (string, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return "old", nil
		}
		return "new", nil
	}

	if res := Fetch(context.Background(), s, "op:swr", true, fn); res.Data != "old" {
		t.Fatalf("first fetch Data = %q, want old", res.Data)
	}

	time.Sleep(30 * time.Millisecond) // past the staleness window

	// Stale hit: old data served immediately, refetch runs in background
	res := Fetch(context.Background(), s, "op:swr", true, fn)
	if res.Data != "old" {
		t.Errorf("stale hit Data = %q, want old (previous data not cleared)", res.Data)
	}
	if !res.IsFetching {
		t.Error("stale hit IsFetching = false, want true")
	}
	if res.IsLoading {
		t.Error("stale hit IsLoading = true, want false (data already shown)")
	}

	// Wait for revalidation, then the refreshed value is served fresh
	deadline := time.Now().Add(time.Second)
	for {
		res = Fetch(context.Background(), s, "op:swr", true, fn)
		if res.Data == "new" && !res.IsFetching {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("revalidated value never observed, last = %+v", res)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("fetch function called %d times, want 2", calls)
	}
}

func TestFetch_ErrorSurfacesWithoutPanic(t *testing.T) {
	s := newTestStore(time.Minute, 5*time.Minute)
	wantErr := errors.New("backend down")

	res := Fetch(context.Background(), s, "op:err", true, func(ctx context.Context) ([]int, error) {
		return nil, wantErr
	})

	if !res.IsError {
		t.Error("IsError = false, want true")
	}
	if !errors.Is(res.Err, wantErr) {
		t.Errorf("Err = %v, want %v", res.Err, wantErr)
	}
	if res.Data != nil {
		t.Errorf("Data = %v, want zero value", res.Data)
	}

	// Errors are not cached: the next call tries again
	ok := Fetch(context.Background(), s, "op:err", true, func(ctx context.Context) ([]int, error) {
		return []int{1}, nil
	})
	if ok.IsError || len(ok.Data) != 1 {
		t.Errorf("retry after error = %+v, want success", ok)
	}
}

func TestFetch_FailedRevalidationKeepsStaleData(t *testing.T) {
	s := newTestStore(5*time.Millisecond, time.Minute)
	var calls int32

	fn := func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return "good", nil
		}
		return "", errors.New("flaky backend")
	}

	Fetch(context.Background(), s, "op:keep", true, fn)
	time.Sleep(20 * time.Millisecond)

	res := Fetch(context.Background(), s, "op:keep", true, fn)
	if res.Data != "good" {
		t.Errorf("stale Data = %q, want good", res.Data)
	}

	time.Sleep(50 * time.Millisecond) // let the failed revalidation finish

	res = Fetch(context.Background(), s, "op:keep", true, fn)
	if res.Data != "good" || res.IsError {
		t.Errorf("after failed revalidation = %+v, want stale data still served", res)
	}
}
