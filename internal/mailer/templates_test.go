package mailer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type alertData struct {
	Site     string
	TypeTag  string
	ObjectID uint64
	Count    uint
	Comment  string

	Object          any
	ObjectURL       string
	ObjectAdminURL  string
	FlaggerEmail    string
	FlaggerURL      string
	FlaggerAdminURL string
	Creator         any
	CreatorURL      string
	CreatorAdminURL string
}

func TestDefaultSubject(t *testing.T) {
	tm := DefaultTemplates()
	out, err := tm.Render(SubjectCandidates("forum.post"), alertData{
		Site: "testsite", TypeTag: "forum.post", ObjectID: 3, Count: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "[testsite] forum.post #3 flagged (5 flags)", strings.TrimSpace(out))
}

func TestDefaultBody(t *testing.T) {
	tm := DefaultTemplates()
	out, err := tm.Render(BodyCandidates("forum.post"), alertData{
		Site:           "testsite",
		TypeTag:        "forum.post",
		ObjectID:       3,
		Count:          2,
		Comment:        "looks like spam",
		ObjectURL:      "https://example.com/posts/3",
		ObjectAdminURL: "https://example.com/admin/posts/3",
		FlaggerEmail:   "user@example.com",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "looks like spam")
	assert.Contains(t, out, "https://example.com/posts/3")
	assert.Contains(t, out, "https://example.com/admin/posts/3")
	assert.Contains(t, out, "user@example.com")
}

func TestPerModelTemplateWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "mail_alert_subject_forum_post.txt"),
		[]byte("forum says {{.Count}}"), 0644))

	tm := DefaultTemplates()
	require.NoError(t, tm.LoadDir(dir))

	out, err := tm.Render(SubjectCandidates("forum.post"), alertData{Count: 7})
	require.NoError(t, err)
	assert.Equal(t, "forum says 7", out)

	// other models still fall back to the shipped default
	out, err = tm.Render(SubjectCandidates("blog.entry"), alertData{
		Site: "s", TypeTag: "blog.entry", ObjectID: 1, Count: 1,
	})
	require.NoError(t, err)
	assert.Contains(t, out, "blog.entry #1")
}

func TestRenderWithoutCandidatesFails(t *testing.T) {
	tm := DefaultTemplates()
	_, err := tm.Render([]string{"nope.txt"}, nil)
	assert.Error(t, err)
}
