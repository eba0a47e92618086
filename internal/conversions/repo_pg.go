package conversions

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const conversionColumns = `id, candidate_name, status, error_code, error_message, source_key, source_file_name, source_mime_type, output_key, output_file_name, profile, created_at, updated_at`

// Create inserts a new conversion record.
func (r *PGRepo) Create(ctx context.Context, c Conversion) error {
	const query = `
INSERT INTO conversions (
    id,
    candidate_name,
    status,
    error_code,
    error_message,
    source_key,
    source_file_name,
    source_mime_type,
    output_key,
    output_file_name,
    profile,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		c.ID,
		c.CandidateName,
		string(c.Status),
		nullString(c.ErrorCode),
		nullString(c.ErrorMessage),
		nullString(c.SourceKey),
		c.SourceFileName,
		c.SourceMimeType,
		nullString(c.OutputKey),
		nullString(c.OutputFileName),
		nullBytes(c.Profile),
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

// Update overwrites the mutable fields of a conversion record.
func (r *PGRepo) Update(ctx context.Context, c Conversion) error {
	const query = `
UPDATE conversions
SET status = $1,
    error_code = $2,
    error_message = $3,
    source_key = $4,
    source_file_name = $5,
    source_mime_type = $6,
    output_key = $7,
    output_file_name = $8,
    profile = $9,
    updated_at = $10
WHERE id = $11`

	res, err := r.DB.ExecContext(
		ctx,
		query,
		string(c.Status),
		nullString(c.ErrorCode),
		nullString(c.ErrorMessage),
		nullString(c.SourceKey),
		c.SourceFileName,
		c.SourceMimeType,
		nullString(c.OutputKey),
		nullString(c.OutputFileName),
		nullBytes(c.Profile),
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return err
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches a conversion by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Conversion, error) {
	const query = `
SELECT ` + conversionColumns + `
FROM conversions
WHERE id = $1
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, id)
	c, err := scanConversion(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Conversion{}, ErrNotFound
		}
		return Conversion{}, err
	}
	return c, nil
}

// ListRecent lists conversions ordered newest-first.
func (r *PGRepo) ListRecent(ctx context.Context, limit int) ([]Conversion, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	const query = `
SELECT ` + conversionColumns + `
FROM conversions
ORDER BY created_at DESC, id DESC
LIMIT $1`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Conversion
	for rows.Next() {
		c, err := scanConversion(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanConversion(scan func(dest ...any) error) (Conversion, error) {
	var c Conversion
	var status string
	var errorCode sql.NullString
	var errorMessage sql.NullString
	var sourceKey sql.NullString
	var outputKey sql.NullString
	var outputFileName sql.NullString
	var profile []byte
	err := scan(
		&c.ID,
		&c.CandidateName,
		&status,
		&errorCode,
		&errorMessage,
		&sourceKey,
		&c.SourceFileName,
		&c.SourceMimeType,
		&outputKey,
		&outputFileName,
		&profile,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return Conversion{}, err
	}
	c.Status = State(status)
	if errorCode.Valid {
		c.ErrorCode = errorCode.String
	}
	if errorMessage.Valid {
		c.ErrorMessage = errorMessage.String
	}
	if sourceKey.Valid {
		c.SourceKey = sourceKey.String
	}
	if outputKey.Valid {
		c.OutputKey = outputKey.String
	}
	if outputFileName.Valid {
		c.OutputFileName = outputFileName.String
	}
	if len(profile) > 0 {
		c.Profile = append([]byte(nil), profile...)
	}
	return c, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return []byte(b)
}

var _ Repo = (*PGRepo)(nil)
