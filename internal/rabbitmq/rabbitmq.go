package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	USER_INFO_UPDATED_QUEUE = "user-info-updated"
	POST_CREATED_QUEUE      = "post-created"
	POST_DELETED_QUEUE      = "post-deleted"
	COMMENT_REPORTED_QUEUE  = "comment-reported"
)

var queues = []string{
	USER_INFO_UPDATED_QUEUE,
	POST_CREATED_QUEUE,
	POST_DELETED_QUEUE,
	COMMENT_REPORTED_QUEUE,
}

type MQConn struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func New(connString string) (*MQConn, error) {
	conn, err := amqp.Dial(connString)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	for _, queue := range queues {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, err
		}
	}

	return &MQConn{
		conn: conn,
		ch:   ch,
	}, nil
}

func (c *MQConn) Consume(queue string) (<-chan amqp.Delivery, error) {
	return c.ch.Consume(queue, "", false, false, false, false, nil)
}

func (c *MQConn) PublishJSON(ctx context.Context, queue string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return c.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (c *MQConn) Close() error {
	if err := c.ch.Close(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}
