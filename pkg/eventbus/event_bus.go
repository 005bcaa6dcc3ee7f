package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lumenwiki/platform/pkg/serrors"
	"github.com/sirupsen/logrus"
)

// Handler is a synchronous observation listener. The context carries the
// identities restored from the emitting task's snapshot. Handlers must not
// perform unbounded work.
type Handler func(ctx context.Context, payload any)

// ErrorHandler is a handler variant whose failure is reported to PublishE
// callers.
type ErrorHandler func(ctx context.Context, payload any) error

type subscriber struct {
	topic   string
	handler Handler
	errFn   ErrorHandler
	id      uint64
}

// EventBus dispatches topic-tagged payloads to in-process listeners.
type EventBus interface {
	Publish(ctx context.Context, topic string, payload any)
	PublishE(ctx context.Context, topic string, payload any) error
	Subscribe(topic string, handler Handler) (unsubscribe func())
	SubscribeE(topic string, handler ErrorHandler) (unsubscribe func())
	Clear()
	SubscribersCount(topic string) int
}

var ErrNoSubscribers = serrors.NewError("EVENTBUS_NO_SUBSCRIBERS", "no matching subscribers", "")

type publisherImpl struct {
	log *logrus.Logger

	mu          sync.RWMutex
	subscribers map[string][]subscriber
	nextID      uint64
}

func NewEventPublisher(log *logrus.Logger) EventBus {
	return &publisherImpl{
		log:         log,
		subscribers: map[string][]subscriber{},
	}
}

func (p *publisherImpl) Publish(ctx context.Context, topic string, payload any) {
	subs := p.matching(topic)
	if len(subs) == 0 {
		if p.log != nil {
			p.log.Warnf("eventbus.Publish: no matching subscribers for topic %q", topic)
		}
		return
	}

	for _, sub := range subs {
		p.invoke(ctx, sub, topic, payload)
	}
}

func (p *publisherImpl) PublishE(ctx context.Context, topic string, payload any) error {
	subs := p.matching(topic)
	if len(subs) == 0 {
		return ErrNoSubscribers
	}

	var errs []error
	for _, sub := range subs {
		if err := p.invokeE(ctx, sub, topic, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *publisherImpl) invoke(ctx context.Context, sub subscriber, topic string, payload any) {
	defer func() {
		if r := recover(); r != nil {
			if p.log != nil {
				p.log.Errorf("eventbus: handler for topic %q panicked with payload %v: %v", topic, payload, r)
			}
		}
	}()
	if sub.handler != nil {
		sub.handler(ctx, payload)
		return
	}
	if err := sub.errFn(ctx, payload); err != nil && p.log != nil {
		p.log.WithError(err).Errorf("eventbus: handler for topic %q failed", topic)
	}
}

func (p *publisherImpl) invokeE(ctx context.Context, sub subscriber, topic string, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("eventbus: handler for topic %q panicked: %v", topic, r)
		}
	}()
	if sub.errFn != nil {
		return sub.errFn(ctx, payload)
	}
	sub.handler(ctx, payload)
	return nil
}

func (p *publisherImpl) matching(topic string) []subscriber {
	p.mu.RLock()
	defer p.mu.RUnlock()
	subs := p.subscribers[topic]
	out := make([]subscriber, len(subs))
	copy(out, subs)
	return out
}

func (p *publisherImpl) Subscribe(topic string, handler Handler) func() {
	if handler == nil {
		panic("handler must not be nil")
	}
	return p.add(subscriber{topic: topic, handler: handler})
}

func (p *publisherImpl) SubscribeE(topic string, handler ErrorHandler) func() {
	if handler == nil {
		panic("handler must not be nil")
	}
	return p.add(subscriber{topic: topic, errFn: handler})
}

func (p *publisherImpl) add(sub subscriber) func() {
	p.mu.Lock()
	p.nextID++
	sub.id = p.nextID
	p.subscribers[sub.topic] = append(p.subscribers[sub.topic], sub)
	p.mu.Unlock()

	return func() { p.remove(sub.topic, sub.id) }
}

func (p *publisherImpl) remove(topic string, id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	subs := p.subscribers[topic]
	for i, s := range subs {
		if s.id == id {
			p.subscribers[topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (p *publisherImpl) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = map[string][]subscriber{}
}

func (p *publisherImpl) SubscribersCount(topic string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscribers[topic])
}
