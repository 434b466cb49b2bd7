package events

import (
	"sync"

	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/models"
)

// ContentFlagged is published once per flag instance created with event
// emission requested.
const ContentFlagged = "content.flagged"

type ContentFlaggedPayload struct {
	FlaggedContent *models.FlaggedContent
	FlagInstance   *models.FlagInstance
}

type Handler func(name string, payload any)

// Bus is a fire-and-forget publish interface; delivery failures never reach
// the publisher.
type Bus interface {
	Publish(name string, payload any)
}

// InProcBus dispatches events synchronously to in-process subscribers.
type InProcBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewInProcBus() *InProcBus {
	return &InProcBus{handlers: make(map[string][]Handler)}
}

func (b *InProcBus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

func (b *InProcBus) Publish(name string, payload any) {
	b.mu.RLock()
	handlers := b.handlers[name]
	b.mu.RUnlock()
	for _, h := range handlers {
		h(name, payload)
	}
}
