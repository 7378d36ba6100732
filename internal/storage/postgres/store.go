// Package postgres archives indexed history records for offline
// inspection. The chain and the subgraph stay authoritative; this is an
// export sink only.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"petadopt/internal/model"
)

// Store provides Postgres persistence for history records.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the archive tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS funds_forwards (
			transaction_hash TEXT NOT NULL,
			pet_id           TEXT NOT NULL,
			shelter          TEXT NOT NULL,
			amount           NUMERIC NOT NULL,
			block_timestamp  BIGINT NOT NULL,
			ingested_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (transaction_hash, pet_id, shelter)
		);
		CREATE TABLE IF NOT EXISTS pet_adoptions (
			transaction_hash TEXT NOT NULL,
			pet_id           TEXT NOT NULL,
			adopter          TEXT NOT NULL,
			shelter          TEXT NOT NULL,
			amount           NUMERIC NOT NULL,
			block_timestamp  BIGINT NOT NULL,
			ingested_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (transaction_hash, pet_id, adopter)
		);
	`)
	return err
}

// PutForwardBatch upserts a batch of forwarding records.
func (s *Store) PutForwardBatch(ctx context.Context, forwards []model.ForwardRecord) error {
	if len(forwards) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, forward := range forwards {
		batch.Queue(`
			INSERT INTO funds_forwards (
				transaction_hash, pet_id, shelter, amount, block_timestamp
			) VALUES ($1, $2, $3, $4::numeric, $5::bigint)
			ON CONFLICT (transaction_hash, pet_id, shelter) DO NOTHING
		`,
			forward.TransactionHash,
			forward.PetID,
			forward.Shelter,
			forward.Amount,
			forward.BlockTimestamp,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range forwards {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutAdoptionBatch upserts a batch of adoption records.
func (s *Store) PutAdoptionBatch(ctx context.Context, adoptions []model.AdoptionRecord) error {
	if len(adoptions) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, adoptionRecord := range adoptions {
		batch.Queue(`
			INSERT INTO pet_adoptions (
				transaction_hash, pet_id, adopter, shelter, amount, block_timestamp
			) VALUES ($1, $2, $3, $4, $5::numeric, $6::bigint)
			ON CONFLICT (transaction_hash, pet_id, adopter) DO NOTHING
		`,
			adoptionRecord.TransactionHash,
			adoptionRecord.PetID,
			adoptionRecord.Adopter,
			adoptionRecord.Shelter,
			adoptionRecord.Amount,
			adoptionRecord.BlockTimestamp,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range adoptions {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
