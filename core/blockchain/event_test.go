package blockchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventFeedSubscribe(t *testing.T) {
	feed := NewEventFeed[int]()
	a := make(chan int, 1)
	b := make(chan int, 1)

	require.NoError(t, feed.Subscribe("a", a))
	require.NoError(t, feed.Subscribe("b", b))
	assert.Error(t, feed.Subscribe("a", a))

	feed.Send(1)
	assert.Equal(t, 1, <-a)
	assert.Equal(t, 1, <-b)

	feed.UnSubscribe("b")
	feed.Send(2)
	assert.Equal(t, 2, <-a)
	assert.Empty(t, b)
}

func TestEventFeedDropsWhenFull(t *testing.T) {
	feed := NewEventFeed[string]()
	ch := make(chan string, 1)
	require.NoError(t, feed.Subscribe("slow", ch))

	feed.Send("first")
	feed.Send("second")

	assert.Equal(t, "first", <-ch)
	assert.Empty(t, ch)
}
