package lead

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dental-dashboard/internal/platform/apperr"
)

type Repository interface {
	Save(ctx context.Context, l *Lead) error
}

type postgresRepo struct {
	db *sql.DB
}

// NewRepository returns a Postgres-backed store. A nil db yields a store
// that reports UNAVAILABLE, which lets the server start without a database.
func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

var errNoDatabase = errors.New("database not connected")

func (r *postgresRepo) Save(ctx context.Context, l *Lead) error {
	if r.db == nil {
		return apperr.Wrap(apperr.CodeUnavailable, "lead store unavailable", errNoDatabase)
	}

	query := `
		INSERT INTO smile_analysis_leads (id, name, email, phone, age, utm_source, utm_campaign, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		l.ID,
		l.Name,
		l.Email,
		nullString(l.Phone),
		nullInt(l.Age),
		l.UTMSource,
		l.UTMCampaign,
		l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
