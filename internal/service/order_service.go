package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/EsnatJahan/E-Commerce/internal/datamodels/order"
	"github.com/EsnatJahan/E-Commerce/internal/datamodels/product"
	"github.com/EsnatJahan/E-Commerce/internal/datamodels/user"
)

var ErrInvalidOrder = errors.New("address, phone and a positive quantity are required")

// OrderService 下单与订单查询。
// 下单的 check-then-decrement 由仓储的原子条件扣减保证串行化，
// 订单落库失败时回补库存，保证不留下半截状态。
type OrderService struct {
	orderRepo   order.Repository
	productRepo product.Repository
	userRepo    user.Repository
	events      EventPublisher
}

func NewOrderService(orderRepo order.Repository, productRepo product.Repository, userRepo user.Repository, events EventPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		events:      events,
	}
}

// PlaceRequest 下单请求
type PlaceRequest struct {
	ProductID     int64  `json:"productId"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Size          string `json:"size"`
	Color         string `json:"color"`
	Quantity      int64  `json:"quantity"`
	PaymentMethod string `json:"paymentMethod"`
}

// Place 下单：查商品 -> 原子条件扣库存 -> 建 pending 订单（失败则回补库存）。
// 成功后尽力发布订单事件，事件失败不影响订单结果。
func (s *OrderService) Place(ctx context.Context, userID int64, req PlaceRequest) (*order.Order, error) {
	GetMonitor().RecordOrderRequest()

	if strings.TrimSpace(req.Address) == "" || strings.TrimSpace(req.Phone) == "" || req.Quantity <= 0 {
		return nil, ErrInvalidOrder
	}
	method := req.PaymentMethod
	if method == "" {
		method = order.PaymentCashOnDelivery
	}
	if !order.ValidPaymentMethod(method) {
		return nil, ErrInvalidOrder
	}

	p, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.DecrementStock(ctx, p.ID, req.Quantity); err != nil {
		if errors.Is(err, product.ErrInsufficientStock) {
			GetMonitor().RecordOutOfStock()
		}
		return nil, err
	}

	o := &order.Order{
		UserID:        userID,
		ProductID:     p.ID,
		Address:       strings.TrimSpace(req.Address),
		Phone:         strings.TrimSpace(req.Phone),
		Size:          req.Size,
		Color:         req.Color,
		Quantity:      req.Quantity,
		PaymentMethod: method,
		Status:        order.StatusPending,
	}
	if err := s.orderRepo.Create(ctx, o); err != nil {
		GetMonitor().RecordDBError()
		// 补偿：订单没落库，把刚扣掉的库存还回去
		if rbErr := s.productRepo.IncrementStock(ctx, p.ID, req.Quantity); rbErr != nil {
			zap.L().Error("stock rollback failed",
				zap.Int64("product_id", p.ID),
				zap.Int64("quantity", req.Quantity),
				zap.Error(rbErr))
		}
		return nil, err
	}

	GetMonitor().RecordOrderSuccess()

	if s.events != nil {
		if err := s.events.PublishOrderCreated(ctx, o); err != nil {
			GetMonitor().RecordMQError()
			zap.L().Warn("publish order event failed", zap.Int64("order_id", o.ID), zap.Error(err))
		}
	}
	return o, nil
}

// MyOrderView 用户订单列表投影，读侧拼接商品名与首图
type MyOrderView struct {
	ID           int64  `json:"id"`
	ProductName  string `json:"productName"`
	ProductImage string `json:"productImage"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Quantity     int64  `json:"quantity"`
	Size         string `json:"size,omitempty"`
	Color        string `json:"color,omitempty"`
	Status       string `json:"status"`
	CreatedAt    string `json:"createdAt"`
}

// ListMine 查询当前用户的订单，最新在前
func (s *OrderService) ListMine(ctx context.Context, userID int64) ([]MyOrderView, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]MyOrderView, 0, len(orders))
	for _, o := range orders {
		v := MyOrderView{
			ID:        o.ID,
			Address:   o.Address,
			Phone:     o.Phone,
			Quantity:  o.Quantity,
			Size:      o.Size,
			Color:     o.Color,
			Status:    o.Status,
			CreatedAt: o.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		// 显式读侧 join：商品可能已不存在，留空即可
		if p, err := s.productRepo.GetByID(ctx, o.ProductID); err == nil {
			v.ProductName = p.Name
			if len(p.Images) > 0 {
				v.ProductImage = p.Images[0]
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// PendingOrderView 后台待处理订单投影，拼接商品与下单用户信息
type PendingOrderView struct {
	ID            int64  `json:"id"`
	ProductName   string `json:"productName"`
	ProductImage  string `json:"productImage"`
	Type          string `json:"type"`
	UserName      string `json:"userName"`
	UserEmail     string `json:"userEmail"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Quantity      int64  `json:"quantity"`
	Size          string `json:"size,omitempty"`
	Color         string `json:"color,omitempty"`
	PaymentMethod string `json:"paymentMethod"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
}

// ListPending 管理端查询所有 pending 订单
func (s *OrderService) ListPending(ctx context.Context) ([]PendingOrderView, error) {
	orders, err := s.orderRepo.ListByStatus(ctx, order.StatusPending)
	if err != nil {
		return nil, err
	}
	out := make([]PendingOrderView, 0, len(orders))
	for _, o := range orders {
		v := PendingOrderView{
			ID:            o.ID,
			Address:       o.Address,
			Phone:         o.Phone,
			Quantity:      o.Quantity,
			Size:          o.Size,
			Color:         o.Color,
			PaymentMethod: o.PaymentMethod,
			Status:        o.Status,
			CreatedAt:     o.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if p, err := s.productRepo.GetByID(ctx, o.ProductID); err == nil {
			v.ProductName = p.Name
			v.Type = p.Type
			if len(p.Images) > 0 {
				v.ProductImage = p.Images[0]
			}
		}
		if u, err := s.userRepo.GetByID(ctx, o.UserID); err == nil {
			v.UserName = u.Name
			v.UserEmail = u.Email
		}
		out = append(out, v)
	}
	return out, nil
}
