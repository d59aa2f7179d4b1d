package service

import (
	"context"
	"errors"
	"strings"

	"github.com/EsnatJahan/E-Commerce/internal/datamodels/product"
)

var ErrInvalidProduct = errors.New("invalid product fields")

type ProductService struct {
	repo product.Repository
}

func NewProductService(repo product.Repository) *ProductService {
	return &ProductService{repo: repo}
}

// List 按分类/类型/品牌等值过滤，空条件返回全部
func (s *ProductService) List(ctx context.Context, f product.Filter) ([]*product.Product, error) {
	return s.repo.List(ctx, f)
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListRelated 品牌+类型推荐查询。结果包含被查询商品自身，
// 由调用方自行按 ID 剔除；无匹配时返回 ErrNotFound（沿用线上行为）。
func (s *ProductService) ListRelated(ctx context.Context, brand, ptype string) ([]*product.Product, error) {
	list, err := s.repo.List(ctx, product.Filter{Brand: brand, Type: ptype})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, product.ErrNotFound
	}
	return list, nil
}

// CreateRequest 建品请求，列表字段按给定顺序原样保存
type CreateRequest struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	Brand       string   `json:"brand"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Discount    int      `json:"discount"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	Stock       int64    `json:"stock"`
	Images      []string `json:"images"`
}

// Create 创建商品
func (s *ProductService) Create(ctx context.Context, req CreateRequest) (*product.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidProduct
	}
	if req.Price < 0 || req.Stock < 0 {
		return nil, ErrInvalidProduct
	}
	if req.Discount < 0 || req.Discount > 100 {
		return nil, ErrInvalidProduct
	}
	p := &product.Product{
		Name:        strings.TrimSpace(req.Name),
		Category:    req.Category,
		Type:        req.Type,
		Brand:       req.Brand,
		Description: req.Description,
		Price:       req.Price,
		Discount:    req.Discount,
		Sizes:       req.Sizes,
		Colors:      req.Colors,
		Stock:       req.Stock,
		Images:      req.Images,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
