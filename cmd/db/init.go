package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

func createTables(ctx context.Context, scheme string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	connURL, err := connString()
	if err != nil {
		return err
	}

	conn, err := pgx.Connect(ctx, connURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer conn.Close(ctx)

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}

	if _, err = conn.Exec(ctx, scheme); err != nil {
		return fmt.Errorf("create DB scheme: %w", err)
	}
	return nil
}
