package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Workflow stages a sample moves through, forward only.
const (
	StageReceived          = "received"
	StageProcessing        = "processing"
	StageMicroscopy        = "microscopy"
	StageIsolation         = "isolation"
	StageIdentification    = "identification"
	StageMolecularAnalysis = "molecular_analysis"
	StageValidation        = "validation"
	StageCompleted         = "completed"
)

// SLA urgency classes.
const (
	SLATypeStandard = "standard"
	SLATypeExpress  = "express"
)

// SLA status buckets. The stored value is a recomputable projection of
// received_date, sla_type, stage and wall-clock time, never an independent
// source of truth.
const (
	SLAStatusOnTime   = "on_time"
	SLAStatusAtRisk   = "at_risk"
	SLAStatusBreached = "breached"
	SLAStatusFrozen   = "frozen"
)

type Sample struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompanyID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Company      *Company       `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"company,omitempty"`
	ClientID     uuid.UUID      `gorm:"type:uuid;index" json:"client_id"`
	Client       *Client        `gorm:"foreignKey:ClientID;references:ID" json:"client,omitempty"`
	Code         string         `gorm:"column:code;not null;index" json:"code"`
	Status       string         `gorm:"column:status;not null;default:'received'" json:"status"`
	SLAType      string         `gorm:"column:sla_type;not null;default:'standard'" json:"sla_type"`
	ReceivedDate time.Time      `gorm:"column:received_date;not null" json:"received_date"`
	DueDate      time.Time      `gorm:"column:due_date" json:"due_date"`
	SLAStatus    string         `gorm:"column:sla_status;not null;default:'on_time'" json:"sla_status"`
	Species      string         `gorm:"column:species" json:"species"`
	Variety      string         `gorm:"column:variety" json:"variety"`
	CropNext     string         `gorm:"column:crop_next" json:"crop_next"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Sample) TableName() string { return "sample" }

// IsTerminalStage reports whether SLA tracking stops for a sample in the
// given stage. Once results are validated the deadline no longer applies.
func IsTerminalStage(stage string) bool {
	return stage == StageValidation || stage == StageCompleted
}
