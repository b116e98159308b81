package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite" // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ErrTenantUnavailable means the school's database could not be reached.
// The router never retries internally; callers see this immediately.
var ErrTenantUnavailable = errors.New("tenant: database unavailable")

var errBadTenantKey = errors.New("tenant: invalid tenant key")

// Conn is a live handle to one school's isolated database. The schema is
// process-wide and immutable; only the connection varies per tenant.
type Conn struct {
	DB     *sql.DB
	Driver Driver
	Key    string
}

// Router resolves a tenant key to a cached database handle, opening the
// connection on first use. Concurrent first-use calls for the same key share
// a single open (no duplicate connection storms). The cache is bounded:
// when full, the least-recently-used handle is closed and evicted.
type Router struct {
	driver   Driver
	dsnTpl   string
	maxConns int

	mu    sync.Mutex
	conns map[string]*entry
	tick  uint64

	sf singleflight.Group
}

type entry struct {
	conn     *Conn
	lastUsed uint64
}

func NewRouter(driver Driver, dsnTemplate string, maxConns int) *Router {
	if maxConns <= 0 {
		maxConns = 64
	}
	return &Router{
		driver:   driver,
		dsnTpl:   dsnTemplate,
		maxConns: maxConns,
		conns:    map[string]*entry{},
	}
}

// Get returns the handle for tenantKey, opening it on first use. The same
// handle is returned for every call with the same key for the process
// lifetime (unless evicted by the cache bound).
func (r *Router) Get(ctx context.Context, tenantKey string) (*Conn, error) {
	key := sanitizeKey(tenantKey)
	if key == "" {
		return nil, errBadTenantKey
	}

	r.mu.Lock()
	if e, ok := r.conns[key]; ok {
		r.tick++
		e.lastUsed = r.tick
		r.mu.Unlock()
		return e.conn, nil
	}
	r.mu.Unlock()

	v, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check: a concurrent caller may have populated the cache
		// between the fast path and the singleflight slot.
		r.mu.Lock()
		if e, ok := r.conns[key]; ok {
			r.mu.Unlock()
			return e.conn, nil
		}
		r.mu.Unlock()

		conn, err := r.open(ctx, key)
		if err != nil {
			return nil, err
		}
		r.put(key, conn)
		return conn, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Conn), nil
}

func (r *Router) open(ctx context.Context, key string) (*Conn, error) {
	var drvName string
	switch r.driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
	default:
		return nil, fmt.Errorf("tenant: unsupported driver: %s", r.driver)
	}
	dsn := strings.ReplaceAll(r.dsnTpl, "{tenant}", key)

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTenantUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrTenantUnavailable, err)
	}
	if err := EnsureSchema(ctx, db, r.driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: schema: %v", ErrTenantUnavailable, err)
	}
	return &Conn{DB: db, Driver: r.driver, Key: key}, nil
}

func (r *Router) put(key string, conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tick++
	if len(r.conns) >= r.maxConns {
		r.evictOldestLocked()
	}
	r.conns[key] = &entry{conn: conn, lastUsed: r.tick}
}

func (r *Router) evictOldestLocked() {
	var oldestKey string
	var oldest uint64
	first := true
	for k, e := range r.conns {
		if first || e.lastUsed < oldest {
			oldestKey, oldest, first = k, e.lastUsed, false
		}
	}
	if oldestKey == "" {
		return
	}
	e := r.conns[oldestKey]
	delete(r.conns, oldestKey)
	if err := e.conn.DB.Close(); err != nil {
		log.Printf("tenant: closing evicted connection %s: %v", oldestKey, err)
	}
}

// Close closes every cached handle. Used on shutdown and in tests.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, e := range r.conns {
		_ = e.conn.DB.Close()
		delete(r.conns, k)
	}
}

// Len reports the number of cached handles.
func (r *Router) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,61}$`)

// sanitizeKey lowercases and validates the tenant key. The DNS-friendly
// pattern keeps keys safe for DSN interpolation and file names.
func sanitizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if !keyPattern.MatchString(s) {
		return ""
	}
	return s
}
