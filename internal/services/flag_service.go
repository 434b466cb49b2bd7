package services

import (
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/content"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/settings"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FlagService orchestrates the add-a-flag use case: find or create the
// aggregate, validate, persist the instance and cascade its side effects.
type FlagService struct {
	db       *gorm.DB
	contents *FlaggedContentService
	settings *settings.Settings
	registry *content.Registry
}

func NewFlagService(db *gorm.DB, contents *FlaggedContentService, set *settings.Settings, registry *content.Registry) *FlagService {
	return &FlagService{db: db, contents: contents, settings: set, registry: registry}
}

// AddOptions tunes one Add call. A zero Status keeps the aggregate's
// current status; a non-zero one is a moderation-driven assignment.
type AddOptions struct {
	CreatorID *uuid.UUID
	Comment   string
	Status    int
	EmitEvent bool
	SendMail  bool
}

// Add flags a content object on behalf of a user. CreatorID and a creating
// Status only stick when this is the very first flag on the object.
func (s *FlagService) Add(userID uuid.UUID, ref content.Ref, opts AddOptions) (*models.FlagInstance, error) {
	fc, _, err := s.contents.GetOrCreateForContent(ref, opts.CreatorID, opts.Status)
	if err != nil {
		return nil, err
	}

	if opts.Status != 0 {
		fc.Status = opts.Status
		// a non-default status is a moderation act: record who did it
		if opts.Status != s.settings.For(ref.Type).DefaultStatus() {
			moderator := userID
			fc.ModeratorID = &moderator
		}
	}
	// persist unconditionally so updated_at moves even without a status change
	if err := s.contents.Save(fc); err != nil {
		return nil, err
	}

	fi := &models.FlagInstance{
		FlaggedContentID: fc.ID,
		UserID:           userID,
		Comment:          opts.Comment,
		Status:           fc.Status,
		FlaggedContent:   fc,
	}
	if err := s.Save(fi, opts.EmitEvent, opts.SendMail); err != nil {
		return nil, err
	}
	return fi, nil
}

// Save persists a flag instance. A new record (zero id) is validated —
// flag limits when it is a plain pending flag, then the comment policy —
// and cascades to the parent aggregate exactly once. Saving an existing
// record does neither.
func (s *FlagService) Save(fi *models.FlagInstance, emitEvent, sendMail bool) error {
	isNew := fi.ID == uuid.Nil
	if !isNew {
		return s.db.Save(fi).Error
	}

	fc, err := s.parent(fi)
	if err != nil {
		return err
	}

	if fi.Status == models.StatusPending {
		if err := s.contents.AssertCanBeFlaggedBy(fc, fi.UserID); err != nil {
			return err
		}
	}

	allowComments := s.settings.For(fc.ContentType).AllowComments
	if allowComments && fi.Comment == "" {
		return ErrCommentRequired
	}
	if !allowComments && fi.Comment != "" {
		return ErrCommentNotAllowed
	}

	if err := s.db.Create(fi).Error; err != nil {
		return err
	}

	return s.contents.OnFlagAdded(fc, fi, emitEvent, sendMail)
}

func (s *FlagService) parent(fi *models.FlagInstance) (*models.FlaggedContent, error) {
	if fi.FlaggedContent != nil {
		return fi.FlaggedContent, nil
	}
	fc, err := s.contents.GetByID(fi.FlaggedContentID)
	if err != nil {
		return nil, err
	}
	fi.FlaggedContent = fc
	return fc, nil
}

// ListInstances returns a page of flag instances for one aggregate, newest
// first.
func (s *FlagService) ListInstances(flaggedContentID uuid.UUID, limit, offset int) ([]models.FlagInstance, int64, error) {
	var items []models.FlagInstance
	var total int64

	query := s.db.Model(&models.FlagInstance{}).Where("flagged_content_id = ?", flaggedContentID)
	query.Count(&total)

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SubmitFlag is the single external entry point: flag object objectID of
// model typeTag on behalf of flagger, with events and mail enabled.
func (s *FlagService) SubmitFlag(flaggerID uuid.UUID, typeTag string, objectID uint64, creatorID *uuid.UUID, comment string, status int) (*models.FlagInstance, error) {
	ref := content.Ref{Type: typeTag, ObjectID: objectID}
	if _, err := s.registry.Resolve(ref); err != nil {
		return nil, err
	}
	return s.Add(flaggerID, ref, AddOptions{
		CreatorID: creatorID,
		Comment:   comment,
		Status:    status,
		EmitEvent: true,
		SendMail:  true,
	})
}
