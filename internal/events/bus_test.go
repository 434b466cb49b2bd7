package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInProcBusFanOut(t *testing.T) {
	bus := NewInProcBus()

	var first, second []string
	bus.Subscribe("thing.happened", func(name string, payload any) {
		first = append(first, payload.(string))
	})
	bus.Subscribe("thing.happened", func(name string, payload any) {
		second = append(second, payload.(string))
	})
	bus.Subscribe("other.event", func(name string, payload any) {
		t.Fatal("handler for a different event must not run")
	})

	bus.Publish("thing.happened", "a")
	bus.Publish("thing.happened", "b")

	assert.Equal(t, []string{"a", "b"}, first)
	assert.Equal(t, []string{"a", "b"}, second)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewInProcBus()
	// must not panic
	bus.Publish(ContentFlagged, ContentFlaggedPayload{})
}
