package types

import (
	"time"

	"github.com/google/uuid"
)

// AppliedInterpretation records one rule having matched one result. The
// (rule_id, result_id) pair is unique so re-evaluation is idempotent, and
// rows are never mutated after insert: they are audit facts.
type AppliedInterpretation struct {
	ID        uuid.UUID           `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompanyID uuid.UUID           `gorm:"type:uuid;not null;index" json:"company_id"`
	SampleID  uuid.UUID           `gorm:"type:uuid;not null;index" json:"sample_id"`
	Sample    *Sample             `gorm:"constraint:OnDelete:CASCADE;foreignKey:SampleID;references:ID" json:"sample,omitempty"`
	RuleID    uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_applied_rule_result" json:"rule_id"`
	Rule      *InterpretationRule `gorm:"foreignKey:RuleID;references:ID" json:"rule,omitempty"`
	ResultID  uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_applied_rule_result" json:"result_id"`
	Result    *Result             `gorm:"constraint:OnDelete:CASCADE;foreignKey:ResultID;references:ID" json:"result,omitempty"`
	Message   string              `gorm:"column:message;not null" json:"message"`
	Severity  string              `gorm:"column:severity;not null" json:"severity"`
	CreatedAt time.Time           `gorm:"not null;default:now()" json:"created_at"`
}

func (AppliedInterpretation) TableName() string { return "applied_interpretation" }
