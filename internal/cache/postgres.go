package cache

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore is a Store backed by a kv_cache table with a read-through
// memory layer. It lets multiple server instances share one cookie jar and
// TMDB cache.
type PostgresStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	memory map[string]memoryEntry
	done   chan struct{}
}

// Connect opens a Postgres connection with pool settings suitable for the
// cache workload.
func Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// NewPostgresStore creates the kv_cache table if needed and starts the
// cleanup worker.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS kv_cache (
			key TEXT PRIMARY KEY,
			data BYTEA NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_kv_cache_expires ON kv_cache(expires_at)`,
	}
	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return nil, fmt.Errorf("failed to create cache table: %w", err)
		}
	}

	p := &PostgresStore{
		db:     db,
		memory: make(map[string]memoryEntry),
		done:   make(chan struct{}),
	}
	go p.cleanupWorker()
	return p, nil
}

func (p *PostgresStore) Get(key string) ([]byte, bool) {
	p.mu.RLock()
	if e, ok := p.memory[key]; ok && time.Now().Before(e.expiresAt) {
		p.mu.RUnlock()
		return e.value, true
	}
	p.mu.RUnlock()

	var data []byte
	var expiresAt time.Time
	err := p.db.QueryRow(
		"SELECT data, expires_at FROM kv_cache WHERE key = $1 AND expires_at > NOW()",
		key,
	).Scan(&data, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		log.Printf("cache: get %q: %v", key, err)
		return nil, false
	}

	p.mu.Lock()
	p.memory[key] = memoryEntry{value: data, expiresAt: expiresAt}
	p.mu.Unlock()

	return data, true
}

func (p *PostgresStore) Set(key string, value []byte, ttl time.Duration) {
	expiresAt := time.Now().Add(ttl)

	_, err := p.db.Exec(
		`INSERT INTO kv_cache (key, data, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key)
		 DO UPDATE SET data = $2, expires_at = $3`,
		key, value, expiresAt,
	)
	if err != nil {
		log.Printf("cache: set %q: %v", key, err)
	}

	p.mu.Lock()
	p.memory[key] = memoryEntry{value: value, expiresAt: expiresAt}
	p.mu.Unlock()
}

func (p *PostgresStore) Delete(key string) {
	if _, err := p.db.Exec("DELETE FROM kv_cache WHERE key = $1", key); err != nil {
		log.Printf("cache: delete %q: %v", key, err)
	}

	p.mu.Lock()
	delete(p.memory, key)
	p.mu.Unlock()
}

// Close stops the cleanup worker. The caller owns the *sql.DB.
func (p *PostgresStore) Close() {
	close(p.done)
}

func (p *PostgresStore) cleanupWorker() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			if _, err := p.db.Exec("DELETE FROM kv_cache WHERE expires_at < NOW()"); err != nil {
				log.Printf("cache: cleanup: %v", err)
			}
			now := time.Now()
			p.mu.Lock()
			for key, e := range p.memory {
				if now.After(e.expiresAt) {
					delete(p.memory, key)
				}
			}
			p.mu.Unlock()
		}
	}
}
