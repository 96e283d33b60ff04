package domain

import (
	"time"

	"gorm.io/datatypes"
)

// AdminAction is an append-only audit entry for privileged operations.
type AdminAction struct {
	ID          uint           `gorm:"column:id;primaryKey" json:"id"`
	AdminID     uint           `gorm:"column:admin_id;not null;index" json:"admin_id"`
	Description string         `gorm:"column:description;not null" json:"description"`
	Details     datatypes.JSON `gorm:"column:details" json:"details,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"timestamp"`
}

func (AdminAction) TableName() string {
	return "admin_actions"
}
