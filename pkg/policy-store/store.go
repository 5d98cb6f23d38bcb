package policystore

import (
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/always-cache/cachecontrol/rfc9111"

	"github.com/cockroachdb/errors"
	_ "github.com/glebarez/go-sqlite"
)

// Policy is the Cache-Control value to use for responses whose path
// starts with Prefix.
type Policy struct {
	Prefix       string
	CacheControl string
	UpdatedAt    time.Time
}

// PolicyProvider stores Cache-Control policies by path prefix.
// Stored values are always in canonical serialized form.
//
// Implementations must be thread-safe!
type PolicyProvider interface {
	// Put validates and stores the policy for a prefix, replacing any previous one.
	Put(prefix, cacheControl string) (Policy, error)
	// Get returns the policy for exactly this prefix, and whether it exists.
	Get(prefix string) (Policy, bool, error)
	// All returns all policies ordered by prefix.
	All() ([]Policy, error)
	// Purge removes the policy for the given prefix.
	Purge(prefix string) error
}

// Canonicalize validates a Cache-Control value as response directives and
// returns it re-serialized.
func Canonicalize(cacheControl string) (string, error) {
	directives := rfc9111.NewResponseDirectives(nil, nil)
	if err := directives.Update(rfc9111.ParseCacheControl([]string{cacheControl})...); err != nil {
		return "", errors.Wrapf(err, "invalid policy %q", cacheControl)
	}
	return directives.ToHeader(), nil
}

type SQLiteStore struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteStore opens the policy store with the given filename as the db.
// If file name is empty, a new in-memory db is opened.
func NewSQLiteStore(filename string) (SQLiteStore, error) {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return SQLiteStore{}, errors.Wrap(err, "opening policy db")
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS policies (
		prefix TEXT PRIMARY KEY,
		cache_control TEXT NOT NULL,
		updated_at INTEGER
	)`)
	if err != nil {
		return SQLiteStore{}, errors.Wrap(err, "creating policies table")
	}
	return SQLiteStore{
		db:         db,
		writeMutex: &sync.Mutex{},
	}, nil
}

func (s SQLiteStore) Put(prefix, cacheControl string) (Policy, error) {
	canonical, err := Canonicalize(cacheControl)
	if err != nil {
		return Policy{}, err
	}
	policy := Policy{Prefix: prefix, CacheControl: canonical, UpdatedAt: time.Now()}
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err = s.db.Exec("INSERT OR REPLACE INTO policies (prefix, cache_control, updated_at) VALUES (?, ?, ?)",
		policy.Prefix, policy.CacheControl, policy.UpdatedAt.Unix())
	if err != nil {
		return Policy{}, errors.Wrapf(err, "storing policy for %q", prefix)
	}
	return policy, nil
}

func (s SQLiteStore) Get(prefix string) (Policy, bool, error) {
	policy := Policy{Prefix: prefix}
	var updated int64
	err := s.db.QueryRow("SELECT cache_control, updated_at FROM policies WHERE prefix = ?", prefix).
		Scan(&policy.CacheControl, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Policy{}, false, nil
	}
	if err != nil {
		return Policy{}, false, errors.Wrapf(err, "reading policy for %q", prefix)
	}
	policy.UpdatedAt = time.Unix(updated, 0)
	return policy, true, nil
}

func (s SQLiteStore) All() ([]Policy, error) {
	policies := make([]Policy, 0)
	rows, err := s.db.Query("SELECT prefix, cache_control, updated_at FROM policies ORDER BY prefix")
	if err != nil {
		return policies, errors.Wrap(err, "listing policies")
	}
	defer rows.Close()
	for rows.Next() {
		var policy Policy
		var updated int64
		if err := rows.Scan(&policy.Prefix, &policy.CacheControl, &updated); err != nil {
			return policies, errors.Wrap(err, "scanning policy")
		}
		policy.UpdatedAt = time.Unix(updated, 0)
		policies = append(policies, policy)
	}
	return policies, rows.Err()
}

func (s SQLiteStore) Purge(prefix string) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("DELETE FROM policies WHERE prefix = ?", prefix)
	return errors.Wrapf(err, "purging policy for %q", prefix)
}

// Close closes the underlying db.
func (s SQLiteStore) Close() error {
	return s.db.Close()
}

// MemStore keeps policies in memory.
type MemStore struct {
	mu       sync.RWMutex
	policies map[string]Policy
}

func NewMemStore() *MemStore {
	return &MemStore{policies: make(map[string]Policy)}
}

func (m *MemStore) Put(prefix, cacheControl string) (Policy, error) {
	canonical, err := Canonicalize(cacheControl)
	if err != nil {
		return Policy{}, err
	}
	policy := Policy{Prefix: prefix, CacheControl: canonical, UpdatedAt: time.Now()}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[prefix] = policy
	return policy, nil
}

func (m *MemStore) Get(prefix string) (Policy, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	policy, ok := m.policies[prefix]
	return policy, ok, nil
}

func (m *MemStore) All() ([]Policy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	policies := make([]Policy, 0, len(m.policies))
	for _, policy := range m.policies {
		policies = append(policies, policy)
	}
	sort.Slice(policies, func(i, j int) bool { return policies[i].Prefix < policies[j].Prefix })
	return policies, nil
}

func (m *MemStore) Purge(prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.policies, prefix)
	return nil
}
