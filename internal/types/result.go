package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Result lifecycle, forward only. A result never regresses from validated.
const (
	ResultStatusPending   = "pending"
	ResultStatusCompleted = "completed"
	ResultStatusValidated = "validated"
)

type Result struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompanyID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	SampleID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"sample_id"`
	Sample       *Sample        `gorm:"constraint:OnDelete:CASCADE;foreignKey:SampleID;references:ID" json:"sample,omitempty"`
	SampleTestID uuid.UUID      `gorm:"type:uuid;not null;index" json:"sample_test_id"`
	SampleTest   *SampleTest    `gorm:"constraint:OnDelete:CASCADE;foreignKey:SampleTestID;references:ID" json:"sample_test,omitempty"`
	TestArea     string         `gorm:"column:test_area;not null" json:"test_area"`
	Diagnosis    string         `gorm:"column:diagnosis;not null" json:"diagnosis"`
	Value        string         `gorm:"column:value" json:"value"`
	Status       string         `gorm:"column:status;not null;default:'pending'" json:"status"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Result) TableName() string { return "result" }

// ResultStatusRank orders the lifecycle for the forward-only guard.
func ResultStatusRank(status string) int {
	switch status {
	case ResultStatusPending:
		return 0
	case ResultStatusCompleted:
		return 1
	case ResultStatusValidated:
		return 2
	default:
		return -1
	}
}
