package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagSettingsFromEnvValues(t *testing.T) {
	cfg := &Config{
		FlagModels:             "forum.post, blog.entry",
		LimitForObject:         10,
		LimitSameObjectForUser: 1,
		AllowComments:          true,
		SendMails:              true,
		SendMailsFrom:          "flags@example.com",
		SendMailsTo:            "Mods <mods@example.com>, second@example.com",
		SendMailsRules:         "5:1,10:5",
	}

	s, err := cfg.FlagSettings()
	require.NoError(t, err)

	assert.True(t, s.ModelAllowed("forum.post"))
	assert.True(t, s.ModelAllowed("blog.entry"))
	assert.False(t, s.ModelAllowed("wiki.page"))

	conf := s.For("forum.post")
	assert.Equal(t, 10, conf.LimitForObject)
	assert.Equal(t, 1, conf.LimitSameObjectForUser)
	assert.True(t, conf.AllowComments)
	assert.Equal(t, "flags@example.com", conf.SendMailsFrom)
	assert.Equal(t, []settings.Recipient{
		{Name: "Mods", Address: "mods@example.com"},
		{Address: "second@example.com"},
	}, conf.SendMailsTo)
	assert.Equal(t, []settings.MailRule{{MinCount: 5, Step: 1}, {MinCount: 10, Step: 5}}, conf.SendMailsRules)
}

func TestFlagSettingsRejectsBadValues(t *testing.T) {
	_, err := (&Config{SendMailsTo: "not an address <<"}).FlagSettings()
	assert.Error(t, err)

	_, err = (&Config{SendMailsRules: "bogus"}).FlagSettings()
	assert.Error(t, err)
}

func TestFlagSettingsMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"models": {"forum.post": {"limit_for_object": 2}}
	}`), 0644))

	cfg := &Config{LimitForObject: 10, FlagSettingsPath: path}
	s, err := cfg.FlagSettings()
	require.NoError(t, err)

	assert.Equal(t, 2, s.For("forum.post").LimitForObject)
	assert.Equal(t, 10, s.For("blog.entry").LimitForObject)
}
