package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FlagInstance records a single flag event against a FlaggedContent
// aggregate. Instances are created through FlagService and never mutated
// afterwards; deleting one does not decrement the aggregate counter.
type FlagInstance struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FlaggedContentID uuid.UUID `gorm:"type:uuid;not null;index:idx_flag_instances_parent_user,priority:1" json:"flagged_content_id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index:idx_flag_instances_parent_user,priority:2" json:"user_id"`
	Comment          string    `gorm:"type:text" json:"comment,omitempty"`
	Status           int       `gorm:"not null;default:1;index" json:"status"`
	CreatedAt        time.Time `json:"created_at"`

	FlaggedContent *FlaggedContent `gorm:"foreignKey:FlaggedContentID" json:"-"`
	User           User            `gorm:"foreignKey:UserID" json:"-"`
}

func (fi *FlagInstance) BeforeCreate(tx *gorm.DB) error {
	if fi.ID == uuid.Nil {
		fi.ID = uuid.New()
	}
	return nil
}

func (fi *FlagInstance) String() string {
	return fmt.Sprintf("flag on %s by user %s", fi.FlaggedContentID, fi.UserID)
}

func (FlagInstance) TableName() string {
	return "flag_instances"
}
