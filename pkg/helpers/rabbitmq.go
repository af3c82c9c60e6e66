package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrPublishNacked = errors.New("rabbitmq: broker did not confirm message")

// RabbitPublisher publishes to one durable queue on a channel in confirm
// mode. PublishJSON returns only after the broker has acked the message.
type RabbitPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	p := &RabbitPublisher{conn: conn, Queue: queue}
	if p.ch, err = conn.Channel(); err != nil {
		p.Close()
		return nil, err
	}
	if _, err = p.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.Close()
		return nil, err
	}
	if err = p.ch.Confirm(false); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *RabbitPublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// PublishJSON sends body as a persistent JSON message tagged with msgType and
// waits for the broker confirm.
func (p *RabbitPublisher) PublishJSON(ctx context.Context, msgType string, body any) error {
	msg, err := NewJSONMessage(msgType, body)
	if err != nil {
		return err
	}
	dc, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, "", p.Queue, true, false, msg)
	if err != nil {
		return err
	}
	acked, err := dc.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return ErrPublishNacked
	}
	return nil
}

// NewJSONMessage builds the persistent publishing used for queue jobs.
func NewJSONMessage(msgType string, body any) (amqp.Publishing, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         msgType,
		Timestamp:    time.Now().UTC(),
		Body:         b,
	}, nil
}
