package content

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeTag(t *testing.T) {
	app, model, err := ParseTypeTag("forum.post")
	require.NoError(t, err)
	assert.Equal(t, "forum", app)
	assert.Equal(t, "post", model)

	for _, tag := range []string{"", "forum", ".post", "forum.", "Forum.Post", "forum.post.extra", "for um.post"} {
		_, _, err := ParseTypeTag(tag)
		assert.ErrorIs(t, err, ErrMalformedTypeTag, tag)
	}
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("forum.post", Source{
		Fetch: func(id uint64) (any, error) { return map[string]uint64{"id": id}, nil },
	}))
	require.NoError(t, r.Register("blog.entry", Source{}))

	obj, err := r.Resolve(Ref{Type: "forum.post", ObjectID: 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{"id": 3}, obj)

	// no fetcher configured: the reference itself is the object
	stub, err := r.Resolve(Ref{Type: "blog.entry", ObjectID: 7})
	require.NoError(t, err)
	assert.Equal(t, Ref{Type: "blog.entry", ObjectID: 7}, stub)

	_, err = r.Resolve(Ref{Type: "wiki.page", ObjectID: 1})
	assert.ErrorIs(t, err, ErrUnknownContentType)
}

func TestRegistryRejectsMalformedTags(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Register("NotATag", Source{}), ErrMalformedTypeTag)
	assert.Equal(t, 0, r.Count())
}

func TestRegistryURLsNeverFail(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("forum.post", URLSource(
		"https://example.com/posts/%d", "")))

	ref := Ref{Type: "forum.post", ObjectID: 42}
	assert.Equal(t, "https://example.com/posts/42", r.PublicURL(ref))
	assert.Equal(t, "", r.AdminURL(ref))
	assert.Equal(t, "", r.PublicURL(Ref{Type: "wiki.page", ObjectID: 1}))
}

func TestUserURLBuilder(t *testing.T) {
	id := uuid.MustParse("a2f1b9ce-7c2e-4d5a-9e8f-1b2c3d4e5f60")
	b := UserURLBuilder{PublicPattern: "https://example.com/users/%s"}

	assert.Equal(t, "https://example.com/users/a2f1b9ce-7c2e-4d5a-9e8f-1b2c3d4e5f60", b.PublicURL(id))
	assert.Equal(t, "", b.AdminURL(id))
}
