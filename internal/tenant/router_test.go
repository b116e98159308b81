package tenant_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/brightpath/brightpath-lms/internal/tenant"
)

func newTestRouter(t *testing.T, maxConns int) *tenant.Router {
	t.Helper()
	tpl := "file:" + filepath.Join(t.TempDir(), "{tenant}.db")
	r := tenant.NewRouter(tenant.DriverSQLite, tpl, maxConns)
	t.Cleanup(r.Close)
	return r
}

func TestGetReturnsSameHandle(t *testing.T) {
	r := newTestRouter(t, 8)
	ctx := context.Background()

	c1, err := r.Get(ctx, "springfield-high")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	c2, err := r.Get(ctx, "springfield-high")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c1 != c2 {
		t.Fatal("same key should return the same cached handle")
	}
	if c1.Key != "springfield-high" || c1.Driver != tenant.DriverSQLite {
		t.Fatalf("unexpected conn: %+v", c1)
	}
}

func TestGetNormalizesKey(t *testing.T) {
	r := newTestRouter(t, 8)
	ctx := context.Background()

	c1, err := r.Get(ctx, "  Springfield-High ")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	c2, err := r.Get(ctx, "springfield-high")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c1 != c2 {
		t.Fatal("case and whitespace variants should share one handle")
	}
}

func TestGetRejectsBadKeys(t *testing.T) {
	r := newTestRouter(t, 8)
	ctx := context.Background()

	for _, key := range []string{"", "../../etc/passwd", "a b", "-leading", "bad_underscore"} {
		if _, err := r.Get(ctx, key); err == nil {
			t.Errorf("key %q should be rejected", key)
		}
	}
}

func TestConcurrentFirstUseSharesOneOpen(t *testing.T) {
	r := newTestRouter(t, 8)
	ctx := context.Background()

	const n = 16
	conns := make([]*tenant.Conn, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			c, err := r.Get(ctx, "busy-school")
			if err != nil {
				t.Errorf("get: %v", err)
				return
			}
			conns[i] = c
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if conns[i] != conns[0] {
			t.Fatal("concurrent first use should share a single handle")
		}
	}
	if r.Len() != 1 {
		t.Fatalf("cache size=%d, want 1", r.Len())
	}
}

func TestCacheBoundEvicts(t *testing.T) {
	r := newTestRouter(t, 2)
	ctx := context.Background()

	for _, key := range []string{"school-a", "school-b", "school-c"} {
		if _, err := r.Get(ctx, key); err != nil {
			t.Fatalf("get %s: %v", key, err)
		}
	}
	if r.Len() != 2 {
		t.Fatalf("cache size=%d, want bound 2", r.Len())
	}

	// the evicted tenant reopens transparently
	if _, err := r.Get(ctx, "school-a"); err != nil {
		t.Fatalf("reopen evicted: %v", err)
	}
}

func TestUnreachableTenant(t *testing.T) {
	r := tenant.NewRouter(tenant.DriverPostgres, "postgres://127.0.0.1:1/school_{tenant}?sslmode=disable&connect_timeout=1", 8)
	t.Cleanup(r.Close)

	_, err := r.Get(context.Background(), "nowhere")
	if !errors.Is(err, tenant.ErrTenantUnavailable) {
		t.Fatalf("want ErrTenantUnavailable, got %v", err)
	}
}
