package services

import (
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/content"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/settings"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FlaggedContentService owns the FlaggedContent aggregates: lookups,
// idempotent creation, flag-limit policy and the side effects of a newly
// added flag.
type FlaggedContentService struct {
	db       *gorm.DB
	settings *settings.Settings
	registry *content.Registry
	userURLs content.UserURLBuilder
	bus      events.Bus
	notifier *Notifier
}

func NewFlaggedContentService(
	db *gorm.DB,
	set *settings.Settings,
	registry *content.Registry,
	userURLs content.UserURLBuilder,
	bus events.Bus,
	notifier *Notifier,
) *FlaggedContentService {
	return &FlaggedContentService{
		db:       db,
		settings: set,
		registry: registry,
		userURLs: userURLs,
		bus:      bus,
		notifier: notifier,
	}
}

// Settings resolves the flag policy for one content type.
func (s *FlaggedContentService) Settings(typeTag string) settings.Model {
	return s.settings.For(typeTag)
}

func (s *FlaggedContentService) GetByID(id uuid.UUID) (*models.FlaggedContent, error) {
	var fc models.FlaggedContent
	if err := s.db.First(&fc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFlaggedContentNotFound
		}
		return nil, err
	}
	return &fc, nil
}

// GetForContent looks up the aggregate for one content reference.
func (s *FlaggedContentService) GetForContent(ref content.Ref) (*models.FlaggedContent, error) {
	var fc models.FlaggedContent
	err := s.db.Where("content_type = ? AND object_id = ?", ref.Type, ref.ObjectID).First(&fc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFlaggedContentNotFound
		}
		return nil, err
	}
	return &fc, nil
}

// List returns a page of aggregates, optionally filtered by type tag and
// status (zero values mean no filter).
func (s *FlaggedContentService) List(typeTag string, status, limit, offset int) ([]models.FlaggedContent, int64, error) {
	var items []models.FlaggedContent
	var total int64

	query := s.db.Model(&models.FlaggedContent{})
	if typeTag != "" {
		query = query.Scopes(ForModel(typeTag))
	}
	if status != 0 {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)

	if err := query.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ObjectIDsByModel returns only the object ids flagged for one type tag,
// for content models that cannot hold a back-reference collection.
func (s *FlaggedContentService) ObjectIDsByModel(typeTag string) ([]uint64, error) {
	var ids []uint64
	err := s.db.Model(&models.FlaggedContent{}).
		Scopes(ForModel(typeTag)).
		Pluck("object_id", &ids).Error
	return ids, err
}

// GetOrCreateForContent returns the aggregate for a reference, creating it
// on first flag. creatorID and status only apply on creation and are
// ignored when the row already exists.
func (s *FlaggedContentService) GetOrCreateForContent(ref content.Ref, creatorID *uuid.UUID, status int) (*models.FlaggedContent, bool, error) {
	fc, err := s.GetForContent(ref)
	if err == nil {
		return fc, false, nil
	}
	if !errors.Is(err, ErrFlaggedContentNotFound) {
		return nil, false, err
	}

	fc = &models.FlaggedContent{
		ContentType: ref.Type,
		ObjectID:    ref.ObjectID,
		Status:      models.StatusPending,
		CreatorID:   creatorID,
	}
	if status != 0 {
		fc.Status = status
	}
	if err := s.Create(fc); err != nil {
		// lost a creation race against a concurrent flagger: the unique
		// (content_type, object_id) index rejected us, so use their row
		if existing, gerr := s.GetForContent(ref); gerr == nil {
			return existing, false, nil
		}
		return nil, false, err
	}
	return fc, true, nil
}

// Create persists a new aggregate after checking the model is flaggable.
func (s *FlaggedContentService) Create(fc *models.FlaggedContent) error {
	if err := s.AssertModelIsFlaggable(fc.ContentType); err != nil {
		return err
	}
	return s.db.Create(fc).Error
}

// Save persists aggregate changes after checking the model is flaggable.
// Always touches updated_at. The counter column is excluded: it is owned by
// the relative update in OnFlagAdded, and writing the in-memory value here
// would clobber increments committed by concurrent flaggers since this
// aggregate was loaded.
func (s *FlaggedContentService) Save(fc *models.FlaggedContent) error {
	if err := s.AssertModelIsFlaggable(fc.ContentType); err != nil {
		return err
	}
	return s.db.Omit("count").Save(fc).Error
}

// ModelIsFlaggable reports whether a type tag may be flagged: tags outside
// the configured allow-list and malformed tags never are.
func (s *FlaggedContentService) ModelIsFlaggable(typeTag string) bool {
	if _, _, err := content.ParseTypeTag(typeTag); err != nil {
		return false
	}
	return s.settings.ModelAllowed(typeTag)
}

func (s *FlaggedContentService) AssertModelIsFlaggable(typeTag string) error {
	if !s.ModelIsFlaggable(typeTag) {
		return fmt.Errorf("%w: %q", ErrModelNotFlaggable, typeTag)
	}
	return nil
}

// FlagsByUserCount counts one user's pending flags on this aggregate.
func (s *FlaggedContentService) FlagsByUserCount(fc *models.FlaggedContent, userID uuid.UUID) (int64, error) {
	var n int64
	err := s.db.Model(&models.FlagInstance{}).
		Where("flagged_content_id = ? AND user_id = ? AND status = ?", fc.ID, userID, models.StatusPending).
		Count(&n).Error
	return n, err
}

// CanBeFlagged checks the per-object limit. No limit configured means the
// content can always take one more flag.
func (s *FlaggedContentService) CanBeFlagged(fc *models.FlaggedContent) bool {
	limit := s.settings.For(fc.ContentType).LimitForObject
	if limit == 0 {
		return true
	}
	return int(fc.Count) < limit
}

func (s *FlaggedContentService) AssertCanBeFlagged(fc *models.FlaggedContent) error {
	if !s.CanBeFlagged(fc) {
		return ErrContentOverFlagged
	}
	return nil
}

// CanBeFlaggedBy checks the per-object limit, then the per-user limit.
func (s *FlaggedContentService) CanBeFlaggedBy(fc *models.FlaggedContent, userID uuid.UUID) (bool, error) {
	if !s.CanBeFlagged(fc) {
		return false, nil
	}
	limit := s.settings.For(fc.ContentType).LimitSameObjectForUser
	if limit == 0 {
		return true, nil
	}
	n, err := s.FlagsByUserCount(fc, userID)
	if err != nil {
		return false, err
	}
	return n < int64(limit), nil
}

// AssertCanBeFlaggedBy fails with ErrContentOverFlagged when the object
// limit is hit, and only otherwise evaluates the per-user limit, which
// fails with an AlreadyFlaggedError carrying the user's flag count.
func (s *FlaggedContentService) AssertCanBeFlaggedBy(fc *models.FlaggedContent, userID uuid.UUID) error {
	if err := s.AssertCanBeFlagged(fc); err != nil {
		return err
	}
	limit := s.settings.For(fc.ContentType).LimitSameObjectForUser
	if limit == 0 {
		return nil
	}
	n, err := s.FlagsByUserCount(fc, userID)
	if err != nil {
		return err
	}
	if n >= int64(limit) {
		return &AlreadyFlaggedError{Count: n}
	}
	return nil
}

// OnFlagAdded runs the aggregate side effects of one newly created flag
// instance: counter increment, optional event, optional mail. The counter
// moves only while the aggregate is pending, through a relative update so
// concurrent flaggers never lose increments, and is reloaded afterwards for
// the authoritative value.
func (s *FlaggedContentService) OnFlagAdded(fc *models.FlaggedContent, fi *models.FlagInstance, emitEvent, sendMail bool) error {
	if fc.Status == models.StatusPending {
		err := s.db.Model(&models.FlaggedContent{}).
			Where("id = ?", fc.ID).
			UpdateColumn("count", gorm.Expr("count + ?", 1)).Error
		if err != nil {
			return err
		}
		var fresh models.FlaggedContent
		if err := s.db.First(&fresh, "id = ?", fc.ID).Error; err != nil {
			return err
		}
		fc.Count = fresh.Count
	}

	if emitEvent && s.bus != nil {
		s.bus.Publish(events.ContentFlagged, events.ContentFlaggedPayload{
			FlaggedContent: fc,
			FlagInstance:   fi,
		})
	}

	if sendMail && s.notifier != nil &&
		s.settings.For(fc.ContentType).SendMails && s.shouldSendMail(fc) {
		s.notifier.SendFlagAlert(fc, fi)
	}
	return nil
}

// shouldSendMail decides whether this count warrants a moderation mail:
// always once the object limit is reached, otherwise per the ordered
// (min_count, step) rules — the last rule whose threshold is met applies,
// and mail goes out every step flags past its threshold.
func (s *FlaggedContentService) shouldSendMail(fc *models.FlaggedContent) bool {
	conf := s.settings.For(fc.ContentType)
	count := int(fc.Count)

	if conf.LimitForObject != 0 && count >= conf.LimitForObject {
		return true
	}

	minCount, step := 0, 0
	for _, rule := range conf.SendMailsRules {
		if count >= rule.MinCount {
			minCount, step = rule.MinCount, rule.Step
		} else {
			break
		}
	}
	return step != 0 && (count-minCount)%step == 0
}

// StatusDisplay maps the aggregate's status code to its configured label.
func (s *FlaggedContentService) StatusDisplay(fc *models.FlaggedContent) string {
	label, _ := s.settings.For(fc.ContentType).StatusLabel(fc.Status)
	return label
}

// URL helpers are best-effort: any resolution miss yields "".

func (s *FlaggedContentService) ContentURL(fc *models.FlaggedContent) string {
	if s.registry == nil {
		return ""
	}
	return s.registry.PublicURL(content.Ref{Type: fc.ContentType, ObjectID: fc.ObjectID})
}

func (s *FlaggedContentService) ContentAdminURL(fc *models.FlaggedContent) string {
	if s.registry == nil {
		return ""
	}
	return s.registry.AdminURL(content.Ref{Type: fc.ContentType, ObjectID: fc.ObjectID})
}

func (s *FlaggedContentService) CreatorURL(fc *models.FlaggedContent) string {
	if fc.CreatorID == nil {
		return ""
	}
	return s.userURLs.PublicURL(*fc.CreatorID)
}

func (s *FlaggedContentService) CreatorAdminURL(fc *models.FlaggedContent) string {
	if fc.CreatorID == nil {
		return ""
	}
	return s.userURLs.AdminURL(*fc.CreatorID)
}

func (s *FlaggedContentService) FlaggerURL(fi *models.FlagInstance) string {
	return s.userURLs.PublicURL(fi.UserID)
}

func (s *FlaggedContentService) FlaggerAdminURL(fi *models.FlagInstance) string {
	return s.userURLs.AdminURL(fi.UserID)
}
