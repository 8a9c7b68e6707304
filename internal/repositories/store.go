package repositories

import (
	"database/sql"
	"fmt"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx, so every
// repository method can run either standalone or inside a transaction.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Repos bundles the repositories bound to one DBTX.
type Repos struct {
	Users UserRepository
	Otps  OtpRepository
}

// Store hands out repositories and runs units of work transactionally.
type Store interface {
	// Repos returns repositories bound to the plain connection pool.
	Repos() Repos
	// InTx begins a transaction, runs fn with tx-bound repositories and
	// commits; any error (or panic) rolls everything back. The transaction
	// is released on every exit path.
	InTx(fn func(r Repos) error) error
}

type sqlStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) Store {
	return &sqlStore{db: db}
}

func bind(q DBTX) Repos {
	return Repos{
		Users: NewUserRepository(q),
		Otps:  NewOtpRepository(q),
	}
}

func (s *sqlStore) Repos() Repos {
	return bind(s.db)
}

func (s *sqlStore) InTx(fn func(r Repos) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// no-op once Commit has succeeded
	defer func() { _ = tx.Rollback() }()

	if err := fn(bind(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
