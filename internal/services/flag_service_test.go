package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/content"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRequiredWhenAllowed(t *testing.T) {
	def := settings.DefaultModel()
	def.AllowComments = true
	env := newTestEnv(t, def)
	ref := content.Ref{Type: testTag, ObjectID: 1}

	_, err := env.flags.Add(env.newUser(t).ID, ref, AddOptions{})
	assert.ErrorIs(t, err, ErrCommentRequired)
	assert.ErrorIs(t, err, ErrInvalidComment)

	fi, err := env.flags.Add(env.newUser(t).ID, ref, AddOptions{Comment: "spam"})
	require.NoError(t, err)
	assert.Equal(t, "spam", fi.Comment)
}

func TestCommentRejectedWhenDisallowed(t *testing.T) {
	env := newTestEnv(t, settings.DefaultModel())
	ref := content.Ref{Type: testTag, ObjectID: 1}

	_, err := env.flags.Add(env.newUser(t).ID, ref, AddOptions{Comment: "spam"})
	assert.ErrorIs(t, err, ErrCommentNotAllowed)

	// the aggregate may exist but no instance was recorded
	var instances int64
	require.NoError(t, env.db.Model(&models.FlagInstance{}).Count(&instances).Error)
	assert.Equal(t, int64(0), instances)
}

func TestCreatorSticksFromFirstFlag(t *testing.T) {
	env := newTestEnv(t, settings.DefaultModel())
	ref := content.Ref{Type: testTag, ObjectID: 1}
	creator := env.newUser(t)
	impostor := env.newUser(t)

	fi, err := env.flags.Add(env.newUser(t).ID, ref, AddOptions{CreatorID: &creator.ID})
	require.NoError(t, err)

	_, err = env.flags.Add(env.newUser(t).ID, ref, AddOptions{CreatorID: &impostor.ID})
	require.NoError(t, err)

	fc := env.reload(t, fi.FlaggedContentID)
	require.NotNil(t, fc.CreatorID)
	assert.Equal(t, creator.ID, *fc.CreatorID)
}

func TestModerationRecordsModerator(t *testing.T) {
	env := newTestEnv(t, settings.DefaultModel())
	ref := content.Ref{Type: testTag, ObjectID: 1}

	fi, err := env.flags.Add(env.newUser(t).ID, ref, AddOptions{})
	require.NoError(t, err)

	moderator := env.newUser(t)
	mfi, err := env.flags.Add(moderator.ID, ref, AddOptions{Status: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, mfi.Status)

	fc := env.reload(t, fi.FlaggedContentID)
	assert.Equal(t, 2, fc.Status)
	require.NotNil(t, fc.ModeratorID)
	assert.Equal(t, moderator.ID, *fc.ModeratorID)
	// moderation is not a vote
	assert.Equal(t, uint(1), fc.Count)
}

func TestCountFrozenOnceModerated(t *testing.T) {
	env := newTestEnv(t, settings.DefaultModel())
	ref := content.Ref{Type: testTag, ObjectID: 1}

	fi, err := env.flags.Add(env.newUser(t).ID, ref, AddOptions{})
	require.NoError(t, err)

	_, err = env.flags.Add(env.newUser(t).ID, ref, AddOptions{Status: 2})
	require.NoError(t, err)

	// flags keep getting recorded under the moderated status, but the
	// pending counter no longer moves
	late, err := env.flags.Add(env.newUser(t).ID, ref, AddOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, late.Status)

	fc := env.reload(t, fi.FlaggedContentID)
	assert.Equal(t, uint(1), fc.Count)
}

func TestResavingInstanceIsInert(t *testing.T) {
	env := newTestEnv(t, settings.DefaultModel())
	ref := content.Ref{Type: testTag, ObjectID: 1}

	fi, err := env.flags.Add(env.newUser(t).ID, ref, AddOptions{})
	require.NoError(t, err)

	require.NoError(t, env.flags.Save(fi, true, true))

	fc := env.reload(t, fi.FlaggedContentID)
	assert.Equal(t, uint(1), fc.Count)

	var instances int64
	require.NoError(t, env.db.Model(&models.FlagInstance{}).Count(&instances).Error)
	assert.Equal(t, int64(1), instances)
	assert.Empty(t, env.mail.Sent())
}

func TestFlagEventEmitted(t *testing.T) {
	env := newTestEnv(t, settings.DefaultModel())
	ref := content.Ref{Type: testTag, ObjectID: 9}

	var got []events.ContentFlaggedPayload
	env.bus.Subscribe(events.ContentFlagged, func(name string, payload any) {
		if p, ok := payload.(events.ContentFlaggedPayload); ok {
			got = append(got, p)
		}
	})

	user := env.newUser(t)
	_, err := env.flags.Add(user.ID, ref, AddOptions{EmitEvent: true})
	require.NoError(t, err)

	// second flag without emission stays silent
	_, err = env.flags.Add(env.newUser(t).ID, ref, AddOptions{})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, uint64(9), got[0].FlaggedContent.ObjectID)
	assert.Equal(t, uint(1), got[0].FlaggedContent.Count)
	assert.Equal(t, user.ID, got[0].FlagInstance.UserID)
}

func TestSubmitFlagChecksRegistry(t *testing.T) {
	env := newTestEnv(t, settings.DefaultModel())
	user := env.newUser(t)

	_, err := env.flags.SubmitFlag(user.ID, "wiki.page", 1, nil, "", 0)
	assert.ErrorIs(t, err, content.ErrUnknownContentType)

	fi, err := env.flags.SubmitFlag(user.ID, testTag, 1, nil, "", 0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, fi.Status)
}

func TestListInstancesPagination(t *testing.T) {
	env := newTestEnv(t, settings.DefaultModel())
	ref := content.Ref{Type: testTag, ObjectID: 1}

	var fi *models.FlagInstance
	for i := 0; i < 5; i++ {
		var err error
		fi, err = env.flags.Add(env.newUser(t).ID, ref, AddOptions{})
		require.NoError(t, err)
	}

	page, total, err := env.flags.ListInstances(fi.FlaggedContentID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 2)

	rest, _, err := env.flags.ListInstances(fi.FlaggedContentID, 10, 4)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
