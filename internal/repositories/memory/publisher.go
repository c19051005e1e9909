package memory

import (
	"sync"

	"resorthub/internal/events"
)

// Publisher captures events instead of sending them over valkey.
type Publisher struct {
	mu     sync.Mutex
	Events []events.Event
}

func (p *Publisher) Publish(channel events.Channel, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.Channel == "" {
		event.Channel = channel
	}
	p.Events = append(p.Events, event)
	return nil
}

// OfType returns captured events of the given type in publish order.
func (p *Publisher) OfType(messageType events.MessageType) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []events.Event
	for _, event := range p.Events {
		if event.Type == messageType {
			out = append(out, event)
		}
	}
	return out
}
