package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalid marks a profile that failed validation. Handlers map it to
// 400; anything else bubbles up as an internal error.
var ErrInvalid = errors.New("invalid profile")

type CreateInput struct {
	PersonalInfo    PersonalInfo     `json:"personalInfo"`
	MedicalHistory  MedicalHistory   `json:"medicalHistory"`
	CurrentSymptoms []SymptomEntry   `json:"currentSymptoms"`
	VitalSigns      []VitalSignEntry `json:"vitalSigns"`
}

// UpdateInput carries only the sections the caller wants to replace. Nil
// sections keep their stored value.
type UpdateInput struct {
	PersonalInfo    *PersonalInfo     `json:"personalInfo"`
	MedicalHistory  *MedicalHistory   `json:"medicalHistory"`
	CurrentSymptoms *[]SymptomEntry   `json:"currentSymptoms"`
	VitalSigns      *[]VitalSignEntry `json:"vitalSigns"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores the user's profile. A second create for the same user fails
// with ErrExists; updates go through Update instead.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*HealthProfile, error) {
	p := &HealthProfile{
		UserID:          userID,
		PersonalInfo:    in.PersonalInfo,
		MedicalHistory:  in.MedicalHistory,
		CurrentSymptoms: in.CurrentSymptoms,
		VitalSigns:      in.VitalSigns,
	}
	stampSymptoms(p.CurrentSymptoms)
	stampVitals(p.VitalSigns)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*HealthProfile, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// Update merges the supplied sections into the stored profile and stamps
// UpdatedAt. It never creates a profile for a user without one.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, in UpdateInput) (*HealthProfile, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.PersonalInfo != nil {
		p.PersonalInfo = *in.PersonalInfo
	}
	if in.MedicalHistory != nil {
		p.MedicalHistory = *in.MedicalHistory
	}
	if in.CurrentSymptoms != nil {
		p.CurrentSymptoms = *in.CurrentSymptoms
		stampSymptoms(p.CurrentSymptoms)
	}
	if in.VitalSigns != nil {
		p.VitalSigns = *in.VitalSigns
		stampVitals(p.VitalSigns)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AppendSymptom adds one symptom entry to the user's profile. Used by the
// analysis flow after a completed analysis.
func (s *Service) AppendSymptom(ctx context.Context, userID uuid.UUID, entry SymptomEntry) error {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if entry.DateReported.IsZero() {
		entry.DateReported = time.Now().UTC()
	}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	p.CurrentSymptoms = append(p.CurrentSymptoms, entry)
	p.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, p)
}

func stampSymptoms(entries []SymptomEntry) {
	now := time.Now().UTC()
	for i := range entries {
		if entries[i].DateReported.IsZero() {
			entries[i].DateReported = now
		}
	}
}

func stampVitals(entries []VitalSignEntry) {
	now := time.Now().UTC()
	for i := range entries {
		if entries[i].Date.IsZero() {
			entries[i].Date = now
		}
	}
}
