package service

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/EsnatJahan/E-Commerce/internal/datamodels/order"
)

// OrderEventsQueue 订单事件队列名，worker 端消费
const OrderEventsQueue = "order_events"

// OrderCreatedMessage 下单成功事件
type OrderCreatedMessage struct {
	OrderID       int64  `json:"order_id"`
	UserID        int64  `json:"user_id"`
	ProductID     int64  `json:"product_id"`
	Quantity      int64  `json:"quantity"`
	PaymentMethod string `json:"payment_method"`
}

// EventPublisher 订单事件发布接口，nil 实现表示不发布
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, o *order.Order) error
}

// MQEventPublisher 基于 RabbitMQ 的事件发布器
type MQEventPublisher struct {
	conn *amqp.Connection
}

// NewMQEventPublisher conn 为 nil 时返回 nil，调用方按无事件处理
func NewMQEventPublisher(conn *amqp.Connection) *MQEventPublisher {
	if conn == nil {
		return nil
	}
	return &MQEventPublisher{conn: conn}
}

func (p *MQEventPublisher) PublishOrderCreated(ctx context.Context, o *order.Order) error {
	if p == nil || p.conn == nil {
		return nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(OrderEventsQueue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(&OrderCreatedMessage{
		OrderID:       o.ID,
		UserID:        o.UserID,
		ProductID:     o.ProductID,
		Quantity:      o.Quantity,
		PaymentMethod: o.PaymentMethod,
	})
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		"",
		OrderEventsQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
