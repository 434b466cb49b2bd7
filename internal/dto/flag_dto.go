package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitFlagRequest struct {
	ContentType string     `json:"content_type"`
	ObjectID    uint64     `json:"object_id"`
	Comment     string     `json:"comment,omitempty"`
	CreatorID   *uuid.UUID `json:"creator_id,omitempty"`
}

type ModerateRequest struct {
	Status  int    `json:"status"`
	Comment string `json:"comment,omitempty"`
}

type FlagSummaryResponse struct {
	ID            uuid.UUID `json:"id"`
	ContentType   string    `json:"content_type"`
	ObjectID      uint64    `json:"object_id"`
	Status        int       `json:"status"`
	StatusDisplay string    `json:"status_display"`
	Count         uint      `json:"count"`
	UpdatedAt     time.Time `json:"updated_at"`
}
