package postgres

import (
	"context"
	"embed"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store keeps counters in a rate_limit_counters table so several gateway
// instances can share one quota. Increments go through a single upsert.
type Store struct {
	pool         *pgxpool.Pool
	url          string
	cleanupEvery time.Duration
}

type Option func(*Store)

func WithCleanupEvery(d time.Duration) Option {
	return func(s *Store) { s.cleanupEvery = d }
}

func New(ctx context.Context, url string, opts ...Option) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	s := &Store{pool: pool, url: url, cleanupEvery: 5 * time.Minute}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Migrate applies the embedded goose migrations.
func (s *Store) Migrate() error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := goose.OpenDBWithDriver("pgx", s.url)
	if err != nil {
		return err
	}
	defer db.Close()

	return goose.Up(db, "migrations")
}

func (s *Store) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `
		insert into rate_limit_counters (key, count, expires_at)
		values ($1, 1, now() + $2::interval)
		on conflict (key) do update
		set count = rate_limit_counters.count + 1
		returning count
	`, key, window).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) Cleanup(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `delete from rate_limit_counters where expires_at <= now()`)
	return err
}

// StartJanitor deletes expired rows periodically until ctx is cancelled.
func (s *Store) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				_ = s.Cleanup(ctx)
			}
		}
	}()
}
