package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pacuit/conferencia/internal/db"
	"github.com/pacuit/conferencia/internal/util"
)

// PostgresStore persiste registros como JSONB na tabela records.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore cria o backend relacional.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, collection string, data Record) (Record, error) {
	const query = `
        INSERT INTO records (collection, id, data)
        VALUES ($1, $2, $3)
        RETURNING data
    `

	id := util.NewID()
	payload, err := json.Marshal(data.WithoutID())
	if err != nil {
		return nil, fmt.Errorf("serializar registro: %w", err)
	}

	var raw []byte
	if err := s.pool.QueryRow(ctx, query, collection, id, payload).Scan(&raw); err != nil {
		return nil, err
	}
	return decodeRow(id, raw)
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Record, error) {
	const query = `
        SELECT data
        FROM records
        WHERE collection = $1 AND id = $2
    `

	var raw []byte
	if err := s.pool.QueryRow(ctx, query, collection, id).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeRow(id, raw)
}

func (s *PostgresStore) List(ctx context.Context, collection string) ([]Record, error) {
	const query = `
        SELECT id, data
        FROM records
        WHERE collection = $1
        ORDER BY created_at, id
    `

	rows, err := s.pool.Query(ctx, query, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		rec, err := decodeRow(id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// Update trava a linha, aplica o patch e grava na mesma transação.
func (s *PostgresStore) Update(ctx context.Context, collection, id string, patch Record) (Record, error) {
	const selectQuery = `
        SELECT data
        FROM records
        WHERE collection = $1 AND id = $2
        FOR UPDATE
    `
	const updateQuery = `
        UPDATE records
        SET data = $3, updated_at = now()
        WHERE collection = $1 AND id = $2
    `

	var merged Record
	err := db.WithTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		var raw []byte
		if err := tx.QueryRow(ctx, selectQuery, collection, id).Scan(&raw); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		current, err := decodeRow(id, raw)
		if err != nil {
			return err
		}

		merged = current.Merge(patch)
		payload, err := json.Marshal(merged.WithoutID())
		if err != nil {
			return fmt.Errorf("serializar registro: %w", err)
		}
		_, err = tx.Exec(ctx, updateQuery, collection, id, payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	const query = `DELETE FROM records WHERE collection = $1 AND id = $2`

	tag, err := s.pool.Exec(ctx, query, collection, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeRow(id string, raw []byte) (Record, error) {
	rec := Record{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decodificar registro %s: %w", id, err)
		}
	}
	rec["id"] = id
	return rec, nil
}
