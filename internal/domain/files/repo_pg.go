package files

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const fileCols = `id, user_id, filename, original_name, file_path, category, description, file_size, mime_type, created_at`

func (r *repoPG) Create(ctx context.Context, f *MedicalFile) error {
	f.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO medical_file (id, user_id, filename, original_name, file_path, category, description, file_size, mime_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		f.ID, f.UserID, f.Filename, f.OriginalName, f.FilePath, f.Category, f.Description, f.FileSize, f.MimeType,
	).Scan(&f.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, userID, fileID uuid.UUID) (*MedicalFile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+fileCols+` FROM medical_file WHERE id = $1 AND user_id = $2`,
		fileID, userID)
	f, err := scanFile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return f, err
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*MedicalFile, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_file WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+fileCols+` FROM medical_file WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []*MedicalFile{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, f)
	}
	return out, total, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, userID, fileID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medical_file WHERE id = $1 AND user_id = $2`, fileID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanFile(row pgx.Row) (*MedicalFile, error) {
	var f MedicalFile
	err := row.Scan(&f.ID, &f.UserID, &f.Filename, &f.OriginalName, &f.FilePath,
		&f.Category, &f.Description, &f.FileSize, &f.MimeType, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
