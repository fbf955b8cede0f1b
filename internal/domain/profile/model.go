package profile

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

type Severity string

const (
	SeverityMild     Severity = "MILD"
	SeverityModerate Severity = "MODERATE"
	SeveritySevere   Severity = "SEVERE"
)

// SeverityFromScale maps a 1-10 self-reported score onto the stored enum.
// Out-of-range values fall back to MODERATE.
func SeverityFromScale(score int) Severity {
	switch {
	case score >= 1 && score <= 3:
		return SeverityMild
	case score >= 7 && score <= 10:
		return SeveritySevere
	default:
		return SeverityModerate
	}
}

var bloodTypes = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true,
}

type PersonalInfo struct {
	Age       int     `json:"age"`
	Gender    Gender  `json:"gender"`
	Height    float64 `json:"height"` // cm
	Weight    float64 `json:"weight"` // kg
	BloodType string  `json:"bloodType,omitempty"`
}

func (p *PersonalInfo) Validate() error {
	if p.Age < 0 || p.Age > 150 {
		return fmt.Errorf("age must be between 0 and 150")
	}
	switch p.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		return fmt.Errorf("gender must be one of MALE, FEMALE, OTHER")
	}
	if p.Height <= 0 {
		return fmt.Errorf("height must be positive")
	}
	if p.Weight <= 0 {
		return fmt.Errorf("weight must be positive")
	}
	if p.BloodType != "" && !bloodTypes[p.BloodType] {
		return fmt.Errorf("unknown blood type %q", p.BloodType)
	}
	return nil
}

type MedicalHistory struct {
	Conditions    []string `json:"conditions,omitempty"`
	Surgeries     []string `json:"surgeries,omitempty"`
	Allergies     []string `json:"allergies,omitempty"`
	Medications   []string `json:"medications,omitempty"`
	FamilyHistory []string `json:"familyHistory,omitempty"`
}

type SymptomEntry struct {
	Symptom      string    `json:"symptom"`
	Severity     Severity  `json:"severity"`
	Duration     string    `json:"duration,omitempty"`
	DateReported time.Time `json:"dateReported"`
}

func (s *SymptomEntry) Validate() error {
	if s.Symptom == "" {
		return fmt.Errorf("symptom is required")
	}
	switch s.Severity {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return nil
	default:
		return fmt.Errorf("severity must be one of MILD, MODERATE, SEVERE")
	}
}

type VitalSignEntry struct {
	BloodPressure string    `json:"bloodPressure,omitempty"`
	HeartRate     *int      `json:"heartRate,omitempty"`
	Temperature   *float64  `json:"temperature,omitempty"` // Celsius
	Date          time.Time `json:"date"`
}

func (v *VitalSignEntry) Validate() error {
	if v.HeartRate != nil && (*v.HeartRate < 30 || *v.HeartRate > 250) {
		return fmt.Errorf("heartRate must be between 30 and 250")
	}
	if v.Temperature != nil && (*v.Temperature < 30 || *v.Temperature > 45) {
		return fmt.Errorf("temperature must be between 30 and 45")
	}
	return nil
}

// HealthProfile maps to the health_profile table. One per user; the nested
// sections are stored as JSONB documents.
type HealthProfile struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	UserID          uuid.UUID        `db:"user_id" json:"userId"`
	PersonalInfo    PersonalInfo     `db:"personal_info" json:"personalInfo"`
	MedicalHistory  MedicalHistory   `db:"medical_history" json:"medicalHistory"`
	CurrentSymptoms []SymptomEntry   `db:"current_symptoms" json:"currentSymptoms"`
	VitalSigns      []VitalSignEntry `db:"vital_signs" json:"vitalSigns"`
	CreatedAt       time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updatedAt"`
}

func (p *HealthProfile) Validate() error {
	if err := p.PersonalInfo.Validate(); err != nil {
		return err
	}
	for i := range p.CurrentSymptoms {
		if err := p.CurrentSymptoms[i].Validate(); err != nil {
			return fmt.Errorf("currentSymptoms[%d]: %w", i, err)
		}
	}
	for i := range p.VitalSigns {
		if err := p.VitalSigns[i].Validate(); err != nil {
			return fmt.Errorf("vitalSigns[%d]: %w", i, err)
		}
	}
	return nil
}
