package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// pubsubConn is the part of *redis.PubSub a Subscription drives. Narrowed
// to an interface so the lifecycle can be exercised without a server.
type pubsubConn interface {
	ReceiveMessage(ctx context.Context) (*redis.Message, error)
	Close() error
}

// SubscriptionState is the lifecycle state of a topic subscription.
type SubscriptionState string

const (
	StateSubscribing  SubscriptionState = "subscribing"
	StateActive       SubscriptionState = "active"
	StateUnsubscribed SubscriptionState = "unsubscribed"
	StateErrored      SubscriptionState = "errored"
)

// Publish sends the payload to all current subscribers of the topic within
// the namespace. Delivery is fire and forget: publish does not wait for any
// subscriber, and a topic with no listeners is not an error.
func (r *Redis) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := r.cli.Publish(ctx, r.key(topic), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe opens a subscription on the topic and delivers each received
// payload to onItem, in transport order. Transport failures go to onError,
// after which no further items are delivered; the caller decides whether to
// open a fresh subscription. onItem runs on the subscription's delivery
// goroutine and must not call Unsubscribe; onError runs on its own
// goroutine and may.
func (r *Redis) Subscribe(ctx context.Context, topic string, onItem func([]byte), onError func(error)) (*Subscription, error) {
	s := &Subscription{
		topic: topic,
		state: StateSubscribing,
		done:  make(chan struct{}),
	}

	pubsub := r.cli.Subscribe(ctx, r.key(topic))
	// Wait for the subscribe confirmation so the caller never observes a
	// half-open subscription.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	s.pubsub = pubsub
	s.setState(StateActive)

	s.wg.Add(1)
	go s.deliver(onItem, onError)

	return s, nil
}

// A Subscription is one live connection to a topic. It moves through
// subscribing, active and then unsubscribed or errored; a resumed listener
// is always a brand-new Subscription, never a reused one.
type Subscription struct {
	topic  string
	pubsub pubsubConn

	mu    sync.Mutex
	state SubscriptionState

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// State returns the subscription's current lifecycle state.
func (s *Subscription) State() SubscriptionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Subscription) setState(state SubscriptionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateUnsubscribed {
		return
	}
	s.state = state
}

// Unsubscribe releases the underlying connection. It is idempotent and safe
// to call from any goroutine except the delivery callbacks; once it returns,
// no further items are delivered.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		_ = s.pubsub.Close()
		s.wg.Wait()
		s.mu.Lock()
		s.state = StateUnsubscribed
		s.mu.Unlock()
	})
}

func (s *Subscription) deliver(onItem func([]byte), onError func(error)) {
	defer s.wg.Done()
	for {
		msg, err := s.pubsub.ReceiveMessage(context.Background())
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			s.setState(StateErrored)
			// onError runs on its own goroutine so the handler may call
			// Unsubscribe without deadlocking against the delivery loop.
			go onError(fmt.Errorf("receive on topic %s: %w", s.topic, err))
			return
		}

		select {
		case <-s.done:
			return
		default:
		}
		onItem([]byte(msg.Payload))
	}
}
