package postgres

import (
	"github.com/jmoiron/sqlx"
	"github.com/mgupta0995/stockfolio/config"
)

// Postgres is the holdings repository. Every operation is a single
// statement, so methods run straight against the pool with no
// transaction plumbing.
type Postgres struct {
	db  *sqlx.DB
	cfg *config.Config
}

func NewPostgres(cfg *config.Config, db *sqlx.DB) *Postgres {
	return &Postgres{db: db, cfg: cfg}
}
