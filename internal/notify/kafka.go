package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/campuskart/campuskart-backend/internal/order"
	"github.com/campuskart/campuskart-backend/internal/user"
	"github.com/segmentio/kafka-go"
)

// TopicOrderConfirmed carries one OrderConfirmation per committed order.
const TopicOrderConfirmed = "order.confirmed"

// Producer wraps an async kafka writer behind a buffered inbox so publishing
// never blocks the request path. Remaining messages are flushed on shutdown.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start runs the flush loop until ctx is cancelled, then drains whatever is
// already buffered and closes the writer. The inbox channel itself is never
// closed: confirmation goroutines may still be publishing during shutdown,
// and their messages are dropped, not panicked on.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				p.drain()
				_ = p.w.Close()
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		log.Printf("kafka publish failed: %v", err)
	}
}

// Publish enqueues a message; a full inbox or a stopped producer drops it
// rather than blocking or panicking.
func (p *Producer) Publish(key, value []byte) {
	select {
	case <-p.closeCh:
		log.Printf("producer stopped, dropping message key=%s", key)
		return
	default:
	}
	select {
	case p.inbox <- kafka.Message{Key: key, Value: value, Time: time.Now()}:
	default:
		log.Printf("notification inbox full, dropping message key=%s", key)
	}
}

// WaitClosed blocks until the flush goroutine exits.
func (p *Producer) WaitClosed() { <-p.closeCh }

// KafkaNotifier publishes order confirmations keyed by order reference.
type KafkaNotifier struct {
	producer *Producer
}

func NewKafkaNotifier(p *Producer) *KafkaNotifier {
	return &KafkaNotifier{producer: p}
}

func (n *KafkaNotifier) NotifyOrderPlaced(ctx context.Context, buyer user.User, ord order.Order) {
	payload, err := json.Marshal(confirmationFor(buyer, ord))
	if err != nil {
		log.Printf("order %s: could not encode confirmation: %v", ord.Reference, err)
		return
	}
	n.producer.Publish([]byte(ord.Reference), payload)
}
