package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureHandler struct {
	level    slog.Level
	messages []string
	fail     error
}

func (h *captureHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level
}

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.messages = append(h.messages, r.Message)
	return h.fail
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func TestMultiHandlerRoutesByLevel(t *testing.T) {
	all := &captureHandler{level: slog.LevelInfo}
	errorsOnly := &captureHandler{level: slog.LevelError}
	log := slog.New(NewMultiHandler(all, errorsOnly))

	log.Info("routine")
	log.Error("broken")

	assert.Equal(t, []string{"routine", "broken"}, all.messages)
	assert.Equal(t, []string{"broken"}, errorsOnly.messages)
}

func TestMultiHandlerDeliversPastFailures(t *testing.T) {
	failing := &captureHandler{level: slog.LevelInfo, fail: errors.New("sink down")}
	healthy := &captureHandler{level: slog.LevelInfo}
	m := NewMultiHandler(failing, healthy)

	rec := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
	err := m.Handle(context.Background(), rec)
	require.Error(t, err)

	assert.Equal(t, []string{"hello"}, failing.messages)
	assert.Equal(t, []string{"hello"}, healthy.messages)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
