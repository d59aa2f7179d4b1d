package order

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("order not found")

// 订单状态机：pending -> confirmed/cancelled, confirmed -> shipped/cancelled,
// shipped -> delivered。delivered 与 cancelled 为终态。
// 服务端只会产生 pending，后续流转由外部管理动作驱动。
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// 支付方式
const (
	PaymentCashOnDelivery = "cash_on_delivery"
	PaymentCard           = "card"
	PaymentBkash          = "bkash"
)

var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
}

// CanTransition 判断状态流转是否合法
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidPaymentMethod 校验支付方式取值
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCashOnDelivery, PaymentCard, PaymentBkash:
		return true
	}
	return false
}

// Order 订单模型，按 ID 弱引用用户与商品
type Order struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	UserID        int64     `gorm:"index;not null" json:"userId"`
	ProductID     int64     `gorm:"index;not null" json:"productId"`
	Address       string    `gorm:"size:512;not null" json:"address"`
	Phone         string    `gorm:"size:32;not null" json:"phone"`
	Size          string    `gorm:"size:32" json:"size,omitempty"`
	Color         string    `gorm:"size:32" json:"color,omitempty"`
	Quantity      int64     `gorm:"not null" json:"quantity"`
	PaymentMethod string    `gorm:"size:32;not null;default:cash_on_delivery" json:"paymentMethod"`
	Status        string    `gorm:"size:16;index;not null;default:pending" json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Repository 订单仓储接口
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	ListByStatus(ctx context.Context, status string) ([]*Order, error)
}
