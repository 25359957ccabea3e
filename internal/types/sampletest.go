package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Laboratory test areas.
const (
	AreaNematology     = "nematology"
	AreaPhytopathology = "phytopathology"
	AreaVirology       = "virology"
	AreaBacteriology   = "bacteriology"
)

// SampleTest is one analysis requested on a sample within a test area.
type SampleTest struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompanyID uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	SampleID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"sample_id"`
	Sample    *Sample        `gorm:"constraint:OnDelete:CASCADE;foreignKey:SampleID;references:ID" json:"sample,omitempty"`
	TestArea  string         `gorm:"column:test_area;not null" json:"test_area"`
	Method    string         `gorm:"column:method" json:"method"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SampleTest) TableName() string { return "sample_test" }
