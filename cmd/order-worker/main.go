package main

import (
	"encoding/json"
	"fmt"

	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"

	"github.com/EsnatJahan/E-Commerce/internal/config"
	"github.com/EsnatJahan/E-Commerce/internal/infra/mq"
	"github.com/EsnatJahan/E-Commerce/internal/infra/redis"
	"github.com/EsnatJahan/E-Commerce/pkg/log"
)

const (
	redisOrderNotifiedKey   = "order:notified:%d" // orderID
	notifyMarkExpireSeconds = 86400               // 24小时有效期
)

func main() {
	log.InitLogger()

	cfg, err := config.Load("./config")
	if err != nil {
		zap.L().Fatal("load config failed", zap.Error(err))
	}

	mqConn := mq.Init(&cfg.RabbitMQ)
	redisClient := redis.Init(&cfg.Redis)

	ch, err := mqConn.Channel()
	if err != nil {
		zap.L().Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare("order_events", true, false, false, false, nil); err != nil {
		zap.L().Fatal("failed to declare queue", zap.Error(err))
	}

	// 手动确认模式（auto-ack=false）
	msgs, err := ch.Consume("order_events", "", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("failed to consume", zap.Error(err))
	}

	zap.L().Info("order worker started, waiting for messages...")

	for d := range msgs {
		var m struct {
			OrderID       int64  `json:"order_id"`
			UserID        int64  `json:"user_id"`
			ProductID     int64  `json:"product_id"`
			Quantity      int64  `json:"quantity"`
			PaymentMethod string `json:"payment_method"`
		}
		if err := json.Unmarshal(d.Body, &m); err != nil {
			zap.L().Warn("invalid message", zap.Error(err))
			// 消息格式错误，拒绝并丢弃
			_ = d.Nack(false, false)
			continue
		}

		// 已处理过的订单直接确认，保证通知幂等
		markKey := fmt.Sprintf(redisOrderNotifiedKey, m.OrderID)
		var seen int
		if err := redisClient.Do(radix.Cmd(&seen, "EXISTS", markKey)); err == nil && seen == 1 {
			zap.L().Info("order already notified, skip", zap.Int64("order_id", m.OrderID))
			_ = d.Ack(false)
			continue
		}

		zap.L().Info("order placed",
			zap.Int64("order_id", m.OrderID),
			zap.Int64("user_id", m.UserID),
			zap.Int64("product_id", m.ProductID),
			zap.Int64("quantity", m.Quantity),
			zap.String("payment_method", m.PaymentMethod))

		if err := redisClient.Do(radix.FlatCmd(nil, "SETEX", markKey, notifyMarkExpireSeconds, 1)); err != nil {
			zap.L().Warn("failed to set notified mark", zap.Error(err))
			// 标记失败则重新入队，下次重试
			_ = d.Nack(false, true)
			continue
		}

		_ = d.Ack(false)
	}
}
