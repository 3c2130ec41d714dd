package testutil

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/billcraft/billcraft/internal/pubsub"
)

var _ pubsub.PubSub = (*InMemoryPubSub)(nil)

// InMemoryPubSub captures published messages for assertions instead of
// routing them anywhere.
type InMemoryPubSub struct {
	mu       sync.Mutex
	messages map[string][]*message.Message
}

func NewInMemoryPubSub() *InMemoryPubSub {
	return &InMemoryPubSub{
		messages: make(map[string][]*message.Message),
	}
}

func (p *InMemoryPubSub) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages[topic] = append(p.messages[topic], msg)
	return nil
}

func (p *InMemoryPubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (p *InMemoryPubSub) Close() error {
	return nil
}

// Messages returns the messages published on a topic.
func (p *InMemoryPubSub) Messages(topic string) []*message.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messages[topic]
}

// Clear drops all captured messages.
func (p *InMemoryPubSub) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = make(map[string][]*message.Message)
}
