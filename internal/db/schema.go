package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const recordsSchema = `
    CREATE TABLE IF NOT EXISTS records (
        collection TEXT NOT NULL,
        id TEXT NOT NULL,
        data JSONB NOT NULL DEFAULT '{}'::jsonb,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        PRIMARY KEY (collection, id)
    );
    CREATE INDEX IF NOT EXISTS records_collection_created_idx ON records (collection, created_at);
`

// EnsureSchema cria a tabela de registros quando ausente.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, recordsSchema)
	return err
}
