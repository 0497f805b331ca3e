package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe_ReceivesPublish(t *testing.T) {
	c := NewChannel()
	msgs, unsubscribe := c.Subscribe(4)
	defer unsubscribe()

	c.Publish("connections_snapshot:[]")
	select {
	case got := <-msgs:
		assert.Equal(t, "connections_snapshot:[]", got)
	default:
		t.Fatal("expected buffered message")
	}
}

func TestPublish_FullBufferDropsRatherThanBlocks(t *testing.T) {
	c := NewChannel()
	msgs, unsubscribe := c.Subscribe(1)
	defer unsubscribe()

	c.Publish("first")
	c.Publish("second") // dropped, buffer already full

	got := <-msgs
	assert.Equal(t, "first", got)
}

func TestUnsubscribe_ClosesChannel(t *testing.T) {
	c := NewChannel()
	msgs, unsubscribe := c.Subscribe(1)
	unsubscribe()

	_, ok := <-msgs
	assert.False(t, ok)
}

func TestPublish_FansOutToAllSubscribers(t *testing.T) {
	c := NewChannel()
	a, unsubA := c.Subscribe(4)
	b, unsubB := c.Subscribe(4)
	defer unsubA()
	defer unsubB()

	c.Publish("hello")

	require.Equal(t, "hello", <-a)
	require.Equal(t, "hello", <-b)
}
