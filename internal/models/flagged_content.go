package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusPending is the default moderation status of freshly flagged content.
// Only instances carrying this status count towards the aggregate counter.
const StatusPending = 1

// FlaggedContent is the per-item aggregate: exactly one row per flagged
// content object, holding the cumulative flag count and the current
// moderation status. The content itself lives in an external store and is
// referenced by (content_type, object_id) only.
type FlaggedContent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContentType string    `gorm:"size:100;not null;uniqueIndex:idx_flagged_contents_ref,priority:1" json:"content_type"`
	ObjectID    uint64    `gorm:"not null;uniqueIndex:idx_flagged_contents_ref,priority:2" json:"object_id"`
	// creator of the flagged object, kept here so it outlives the content
	CreatorID *uuid.UUID `gorm:"type:uuid;index" json:"creator_id,omitempty"`
	Status    int        `gorm:"not null;default:1;index" json:"status"`
	// moderator responsible for the last status change
	ModeratorID *uuid.UUID `gorm:"type:uuid" json:"moderator_id,omitempty"`
	Count       uint       `gorm:"not null;default:0" json:"count"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Creator   *User `gorm:"foreignKey:CreatorID" json:"-"`
	Moderator *User `gorm:"foreignKey:ModeratorID" json:"-"`
}

func (fc *FlaggedContent) BeforeCreate(tx *gorm.DB) error {
	if fc.ID == uuid.Nil {
		fc.ID = uuid.New()
	}
	return nil
}

func (fc *FlaggedContent) String() string {
	return fmt.Sprintf("%s #%d", fc.ContentType, fc.ObjectID)
}

func (FlaggedContent) TableName() string {
	return "flagged_contents"
}
