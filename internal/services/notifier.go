package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/content"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/settings"
	"gorm.io/gorm"
)

// Notifier composes and delivers moderation alert mails. Delivery is
// fire-and-forget: failures are logged and never surface to the flag
// creation path.
type Notifier struct {
	db        *gorm.DB
	settings  *settings.Settings
	registry  *content.Registry
	userURLs  content.UserURLBuilder
	templates *mailer.Templates
	mailer    mailer.Mailer
	site      string
}

func NewNotifier(
	db *gorm.DB,
	set *settings.Settings,
	registry *content.Registry,
	userURLs content.UserURLBuilder,
	templates *mailer.Templates,
	m mailer.Mailer,
	site string,
) *Notifier {
	return &Notifier{
		db:        db,
		settings:  set,
		registry:  registry,
		userURLs:  userURLs,
		templates: templates,
		mailer:    m,
		site:      site,
	}
}

// AlertContext is the data handed to the alert mail templates.
type AlertContext struct {
	Site     string
	App      string
	Model    string
	TypeTag  string
	ObjectID uint64
	Object   any
	Count    uint
	Comment  string

	FlaggerEmail    string
	FlaggerURL      string
	FlaggerAdminURL string

	ObjectURL      string
	ObjectAdminURL string

	Creator         *models.User
	CreatorURL      string
	CreatorAdminURL string
}

// SendFlagAlert mails the configured recipients about a new flag. No-op
// when mailing is disabled or no recipients are configured for the type.
func (n *Notifier) SendFlagAlert(fc *models.FlaggedContent, fi *models.FlagInstance) {
	conf := n.settings.For(fc.ContentType)
	if !conf.SendMails || len(conf.SendMailsTo) == 0 {
		return
	}

	recipients := make([]string, 0, len(conf.SendMailsTo))
	for _, r := range conf.SendMailsTo {
		recipients = append(recipients, r.Address)
	}

	data := n.buildContext(fc, fi)

	subject, err := n.templates.Render(mailer.SubjectCandidates(fc.ContentType), data)
	if err != nil {
		slog.Error("flag alert subject render failed", "error", err, "model", fc.ContentType)
		return
	}
	// mail subjects are a single line
	subject = strings.NewReplacer("\n", " ", "\r", " ").Replace(strings.TrimSpace(subject))

	body, err := n.templates.Render(mailer.BodyCandidates(fc.ContentType), data)
	if err != nil {
		slog.Error("flag alert body render failed", "error", err, "model", fc.ContentType)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := n.mailer.Send(ctx, conf.SendMailsFrom, recipients, subject, body); err != nil {
		slog.Error("flag alert mail failed",
			"error", err,
			"model", fc.ContentType,
			"object_id", fc.ObjectID,
			"count", fc.Count)
	}
}

func (n *Notifier) buildContext(fc *models.FlaggedContent, fi *models.FlagInstance) AlertContext {
	app, model, _ := content.ParseTypeTag(fc.ContentType)
	ref := content.Ref{Type: fc.ContentType, ObjectID: fc.ObjectID}

	data := AlertContext{
		Site:     n.site,
		App:      app,
		Model:    model,
		TypeTag:  fc.ContentType,
		ObjectID: fc.ObjectID,
		Count:    fc.Count,
		Comment:  fi.Comment,

		FlaggerEmail:    fi.UserID.String(),
		FlaggerURL:      n.userURLs.PublicURL(fi.UserID),
		FlaggerAdminURL: n.userURLs.AdminURL(fi.UserID),
	}

	if n.registry != nil {
		if obj, err := n.registry.Resolve(ref); err == nil {
			data.Object = obj
		}
		data.ObjectURL = n.registry.PublicURL(ref)
		data.ObjectAdminURL = n.registry.AdminURL(ref)
	}

	var flagger models.User
	if err := n.db.First(&flagger, "id = ?", fi.UserID).Error; err == nil {
		data.FlaggerEmail = flagger.Email
	}

	if fc.CreatorID != nil {
		var creator models.User
		if err := n.db.First(&creator, "id = ?", *fc.CreatorID).Error; err == nil {
			data.Creator = &creator
			data.CreatorURL = n.userURLs.PublicURL(creator.ID)
			data.CreatorAdminURL = n.userURLs.AdminURL(creator.ID)
		}
	}

	return data
}
