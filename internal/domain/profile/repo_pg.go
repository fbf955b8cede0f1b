package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

// pgx encodes the section structs to JSONB and decodes them back on scan.

func (r *repoPG) Create(ctx context.Context, p *HealthProfile) error {
	p.ID = uuid.New()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO health_profile (id, user_id, personal_info, medical_history, current_symptoms, vital_signs)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		p.ID, p.UserID, p.PersonalInfo, p.MedicalHistory, p.CurrentSymptoms, p.VitalSigns,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrExists
	}
	return err
}

func (r *repoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*HealthProfile, error) {
	var p HealthProfile
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, personal_info, medical_history, current_symptoms, vital_signs, created_at, updated_at
		FROM health_profile WHERE user_id = $1`, userID,
	).Scan(&p.ID, &p.UserID, &p.PersonalInfo, &p.MedicalHistory, &p.CurrentSymptoms, &p.VitalSigns, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) Update(ctx context.Context, p *HealthProfile) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE health_profile
		SET personal_info = $2, medical_history = $3, current_symptoms = $4, vital_signs = $5, updated_at = $6
		WHERE user_id = $1`,
		p.UserID, p.PersonalInfo, p.MedicalHistory, p.CurrentSymptoms, p.VitalSigns, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
