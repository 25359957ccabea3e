package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Comparators accepted by interpretation rules.
const (
	ComparatorLT      = "lt"
	ComparatorLTE     = "lte"
	ComparatorGT      = "gt"
	ComparatorGTE     = "gte"
	ComparatorEQ      = "eq"
	ComparatorNEQ     = "neq"
	ComparatorBetween = "between"
	ComparatorIn      = "in"
)

// Rule severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// InterpretationRule is an analyst-authored threshold rule. Species and
// CropNext are wildcards when nil: a nil value matches any sample.
type InterpretationRule struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompanyID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	TestArea   string         `gorm:"column:test_area;not null;index" json:"test_area"`
	Species    *string        `gorm:"column:species" json:"species"`
	CropNext   *string        `gorm:"column:crop_next" json:"crop_next"`
	Analyte    string         `gorm:"column:analyte;not null" json:"analyte"`
	Comparator string         `gorm:"column:comparator;not null" json:"comparator"`
	Threshold  datatypes.JSON `gorm:"column:threshold;type:jsonb;not null" json:"threshold"`
	Message    string         `gorm:"column:message;not null" json:"message"`
	Severity   string         `gorm:"column:severity;not null" json:"severity"`
	Active     bool           `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (InterpretationRule) TableName() string { return "interpretation_rule" }

func ValidComparator(c string) bool {
	switch c {
	case ComparatorLT, ComparatorLTE, ComparatorGT, ComparatorGTE,
		ComparatorEQ, ComparatorNEQ, ComparatorBetween, ComparatorIn:
		return true
	}
	return false
}

func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}
