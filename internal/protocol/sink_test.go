package protocol

import (
	"errors"
	"sync"
)

var errQueueFull = errors.New("send queue is full")

type recordingSink struct {
	id  string
	err error

	mu     sync.Mutex
	events []Outbound
}

func newRecordingSink(id string) *recordingSink {
	return &recordingSink{id: id}
}

func (that *recordingSink) ID() string {
	return that.id
}

func (that *recordingSink) Send(event Outbound) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.err != nil {
		return that.err
	}

	that.events = append(that.events, event)

	return nil
}

func (that *recordingSink) Events() []Outbound {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]Outbound(nil), that.events...)
}

func (that *recordingSink) Actions() []string {
	events := that.Events()

	actions := make([]string, 0, len(events))
	for _, event := range events {
		actions = append(actions, event.Action())
	}

	return actions
}

func (that *recordingSink) Reset() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = nil
}
