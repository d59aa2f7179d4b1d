package product

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Product 商品模型。sizes/colors/images 按原始顺序整体存取（JSON 序列化列），
// 列表允许重复元素。
type Product struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Category    string    `gorm:"size:64;index" json:"category"`
	Type        string    `gorm:"size:64;index" json:"type"`
	Brand       string    `gorm:"size:64;index" json:"brand"`
	Description string    `gorm:"size:1024" json:"description"`
	Price       float64   `gorm:"not null" json:"price"`
	Discount    int       `gorm:"not null;default:0" json:"discount"` // 折扣百分比 0-100
	Sizes       []string  `gorm:"serializer:json" json:"sizes"`
	Colors      []string  `gorm:"serializer:json" json:"colors"`
	Stock       int64     `gorm:"not null;default:0" json:"stock"`
	Images      []string  `gorm:"serializer:json" json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Filter 商品等值过滤条件，空字段表示不过滤
type Filter struct {
	Category string
	Type     string
	Brand    string
}

// Repository 商品仓储接口。
// DecrementStock 必须是原子条件扣减：仅当剩余库存足够时一次性扣掉 qty，
// 否则返回 ErrInsufficientStock（商品不存在时返回 ErrNotFound）。
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, f Filter) ([]*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	DecrementStock(ctx context.Context, id, qty int64) error
	IncrementStock(ctx context.Context, id, qty int64) error
}
