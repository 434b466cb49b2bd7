package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMailerSend(t *testing.T) {
	var got httpMailRequest
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewHTTPMailer(srv.URL, "secret")
	err := m.Send(context.Background(), "flags@example.com",
		[]string{"mods@example.com"}, "subject", "body")
	require.NoError(t, err)

	assert.Equal(t, "/messages", path)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "flags@example.com", got.From)
	assert.Equal(t, []string{"mods@example.com"}, got.To)
	assert.Equal(t, "subject", got.Subject)
	assert.Equal(t, "body", got.Body)
}

func TestHTTPMailerRelayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	m := NewHTTPMailer(srv.URL, "")
	err := m.Send(context.Background(), "a@b.c", []string{"d@e.f"}, "s", "b")
	assert.Error(t, err)
}
