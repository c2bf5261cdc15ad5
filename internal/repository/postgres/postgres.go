package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rental-gateway/internal/logger"
	"rental-gateway/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.FailureRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                db,
		FailureRepository: NewFailureRepository(db),
	}
}

// Open connects to PostgreSQL and verifies the connection before returning.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established")
	return db, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
