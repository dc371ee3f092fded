package blockchain

import (
	"fmt"
	"sync"
)

type ChainOp string

const (
	OpInit      ChainOp = "init"
	OpMine      ChainOp = "mine"
	OpEdit      ChainOp = "edit"
	OpPropagate ChainOp = "propagate"
	OpUpdate    ChainOp = "update"
)

// ChainEvent is published after every successful chain mutation.
type ChainEvent struct {
	Op    ChainOp
	Index int
	Hash  string // hash of the block at Index after the operation
}

type EventFeed[T any] struct {
	subs map[string]chan<- T
	mu   sync.Mutex
}

type EventBus struct {
	ChainFeed *EventFeed[ChainEvent]
}

func NewEventFeed[T any]() *EventFeed[T] {
	return &EventFeed[T]{
		subs: make(map[string]chan<- T),
	}
}

func (ef *EventFeed[T]) Subscribe(id string, ch chan<- T) error {
	ef.mu.Lock()
	defer ef.mu.Unlock()
	if _, exists := ef.subs[id]; exists {
		return fmt.Errorf("subscriber with the id %s already present", id)
	}
	ef.subs[id] = ch
	return nil
}

func (ef *EventFeed[T]) UnSubscribe(id string) {
	ef.mu.Lock()
	defer ef.mu.Unlock()
	delete(ef.subs, id)
}

// Send never blocks: a subscriber with a full channel misses the event.
func (ef *EventFeed[T]) Send(event T) {
	ef.mu.Lock()
	defer ef.mu.Unlock()
	for id, ch := range ef.subs {
		select {
		case ch <- event:
		default:
			log.Warnf("Event skipped for subscriber %s - event channel full\n", id)
		}
	}
}

func NewEventBus() *EventBus {
	return &EventBus{
		ChainFeed: NewEventFeed[ChainEvent](),
	}
}
