package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/neuro-store/internal/lib/sl"
)

// Channel часть amqp.Channel, нужная для публикации.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// PublishMessage публикует сообщение в RabbitMQ в формате JSON.
func PublishMessage(ch Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Publisher публикует события в exchange. amqp.Channel не потокобезопасен
// для публикации, поэтому вызовы сериализуются мьютексом.
type Publisher struct {
	mu       sync.Mutex
	ch       Channel
	exchange string
	log      *slog.Logger
}

// NewPublisher создаёт Publisher. При ch == nil события только логируются.
func NewPublisher(ch Channel, exchange string, log *slog.Logger) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, log: log}
}

// Publish отправляет событие. Ошибка брокера логируется и не возвращается:
// доставка событий не влияет на результат бизнес-операции.
func (p *Publisher) Publish(ctx context.Context, routingKey string, event any) {
	if p == nil {
		return
	}
	if p.ch == nil {
		p.log.Debug("event publishing disabled", slog.String("routing_key", routingKey))
		return
	}
	if ctx.Err() != nil {
		p.log.Warn("event dropped, context done", slog.String("routing_key", routingKey))
		return
	}

	p.mu.Lock()
	err := PublishMessage(p.ch, p.exchange, routingKey, event)
	p.mu.Unlock()

	if err != nil {
		p.log.Warn("failed to publish event", slog.String("routing_key", routingKey), sl.Err(err))
		return
	}
	p.log.Debug("event published", slog.String("routing_key", routingKey))
}
