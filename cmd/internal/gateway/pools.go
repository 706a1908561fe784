package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pools owns one pgx pool per privilege class. It is created once at startup
// and closed at shutdown; handles borrow from it for the process lifetime.
type Pools struct {
	pools map[Class]*pgxpool.Pool
}

// Open connects every privilege class and prepares its statements on each new
// connection. On any failure the pools opened so far are closed.
func Open(ctx context.Context, cfg Config) (*Pools, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pools{pools: make(map[Class]*pgxpool.Pool, len(classNames))}
	for _, c := range Classes() {
		pool, err := openPool(ctx, cfg, c)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("gateway: open %s: %w", c, err)
		}
		p.pools[c] = pool
	}
	return p, nil
}

func openPool(ctx context.Context, cfg Config, c Class) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	cred := cfg.Credentials[c]
	pcfg.ConnConfig.User = cred.User
	pcfg.ConnConfig.Password = cred.Password

	if cfg.Schema != "" {
		pcfg.ConnConfig.RuntimeParams["search_path"] = cfg.Schema
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns >= 0 {
		pcfg.MinConns = cfg.MinConns
	}
	pcfg.AfterConnect = prepareFor(c)

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	if err := ping(ctx, pool, 3*time.Second); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Ping checks that every pool can hand out a connection within timeout.
func (p *Pools) Ping(ctx context.Context, timeout time.Duration) error {
	if p == nil {
		return errors.New("gateway: nil pools")
	}
	for _, c := range Classes() {
		pool, ok := p.pools[c]
		if !ok {
			return fmt.Errorf("gateway: %s pool not open", c)
		}
		if err := ping(ctx, pool, timeout); err != nil {
			return fmt.Errorf("gateway: %s: %w", c, err)
		}
	}
	return nil
}

// Close closes all pools. It is safe to call on a partially opened set.
func (p *Pools) Close() {
	if p == nil {
		return
	}
	for c, pool := range p.pools {
		pool.Close()
		delete(p.pools, c)
	}
}

func ping(parent context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	conn.Release()
	return nil
}

func (p *Pools) ReadOnlyUsers() ReadOnlyUsers { return ReadOnlyUsers{db: p.pools[ClassReadOnlyUsers]} }
func (p *Pools) InsertUsers() InsertUsers     { return InsertUsers{db: p.pools[ClassInsertUsers]} }

func (p *Pools) ReadOnlySessions() ReadOnlySessions {
	return ReadOnlySessions{db: p.pools[ClassReadOnlySessions]}
}
func (p *Pools) InsertSessions() InsertSessions {
	return InsertSessions{db: p.pools[ClassInsertSessions]}
}
func (p *Pools) DeleteSessions() DeleteSessions {
	return DeleteSessions{db: p.pools[ClassDeleteSessions]}
}

func (p *Pools) ReadOnlyPosts() ReadOnlyPosts { return ReadOnlyPosts{db: p.pools[ClassReadOnlyPosts]} }
func (p *Pools) InsertUpdatePosts() InsertUpdatePosts {
	return InsertUpdatePosts{db: p.pools[ClassInsertUpdatePosts]}
}
func (p *Pools) DeletePosts() DeletePosts { return DeletePosts{db: p.pools[ClassDeletePosts]} }
