package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/EsnatJahan/E-Commerce/internal/datamodels/product"
)

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepo{db: db}
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	var p product.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, f product.Filter) ([]*product.Product, error) {
	query := r.db.WithContext(ctx)
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.Brand != "" {
		query = query.Where("brand = ?", f.Brand)
	}
	var list []*product.Product
	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productRepo) Create(ctx context.Context, p *product.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) Update(ctx context.Context, p *product.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// DecrementStock 原子条件扣减：单条 UPDATE 内校验并扣库存，
// 并发下对同一商品的 check-then-decrement 由数据库行级串行化。
func (r *productRepo) DecrementStock(ctx context.Context, id, qty int64) error {
	res := r.db.WithContext(ctx).Model(&product.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// 没扣成：区分商品不存在与库存不足
		var count int64
		if err := r.db.WithContext(ctx).Model(&product.Product{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return product.ErrNotFound
		}
		return product.ErrInsufficientStock
	}
	return nil
}

// IncrementStock 回补库存，用于订单落库失败后的补偿
func (r *productRepo) IncrementStock(ctx context.Context, id, qty int64) error {
	res := r.db.WithContext(ctx).Model(&product.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return product.ErrNotFound
	}
	return nil
}
