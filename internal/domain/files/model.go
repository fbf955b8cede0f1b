package files

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryLabReport    Category = "lab_report"
	CategoryPrescription Category = "prescription"
	CategoryXray         Category = "xray"
	CategoryGeneral      Category = "general"
	CategoryOther        Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryLabReport, CategoryPrescription, CategoryXray, CategoryGeneral, CategoryOther:
		return true
	}
	return false
}

// MedicalFile maps to the medical_file table. FilePath is the storage
// location and never serialized to clients.
type MedicalFile struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"userId"`
	Filename     string    `db:"filename" json:"filename"`
	OriginalName string    `db:"original_name" json:"originalName"`
	FilePath     string    `db:"file_path" json:"-"`
	Category     Category  `db:"category" json:"category"`
	Description  string    `db:"description" json:"description"`
	FileSize     int64     `db:"file_size" json:"fileSize"`
	MimeType     string    `db:"mime_type" json:"mimeType"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
