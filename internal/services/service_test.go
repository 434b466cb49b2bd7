package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/content"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/settings"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testTag = "forum.post"

type sentMail struct {
	From    string
	To      []string
	Subject string
	Body    string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(_ context.Context, from string, to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{From: from, To: to, Subject: subject, Body: body})
	return nil
}

func (m *recordingMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type testEnv struct {
	db       *gorm.DB
	set      *settings.Settings
	registry *content.Registry
	bus      *events.InProcBus
	mail     *recordingMailer
	contents *FlaggedContentService
	flags    *FlagService
}

func newTestEnv(t *testing.T, def settings.Model) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// serialize sqlite access so concurrent tests exercise the relative
	// counter update instead of driver-level write contention
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.FlaggedContent{},
		&models.FlagInstance{},
	))

	set := settings.New(def, nil)

	registry := content.NewRegistry()
	require.NoError(t, registry.Register(testTag, content.URLSource(
		"https://example.com/posts/%d",
		"https://example.com/admin/posts/%d",
	)))

	userURLs := content.UserURLBuilder{
		PublicPattern: "https://example.com/users/%s",
		AdminPattern:  "https://example.com/admin/users/%s",
	}

	bus := events.NewInProcBus()
	mail := &recordingMailer{}
	notifier := NewNotifier(db, set, registry, userURLs, mailer.DefaultTemplates(), mail, "testsite")

	contents := NewFlaggedContentService(db, set, registry, userURLs, bus, notifier)
	flags := NewFlagService(db, contents, set, registry)

	return &testEnv{
		db:       db,
		set:      set,
		registry: registry,
		bus:      bus,
		mail:     mail,
		contents: contents,
		flags:    flags,
	}
}

func (e *testEnv) newUser(t *testing.T) *models.User {
	t.Helper()
	u := &models.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		Password: "x",
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) reload(t *testing.T, id uuid.UUID) *models.FlaggedContent {
	t.Helper()
	fc, err := e.contents.GetByID(id)
	require.NoError(t, err)
	return fc
}
