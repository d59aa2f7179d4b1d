package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/EsnatJahan/E-Commerce/internal/config"
	"github.com/EsnatJahan/E-Commerce/internal/datamodels/order"
	"github.com/EsnatJahan/E-Commerce/internal/datamodels/product"
	"github.com/EsnatJahan/E-Commerce/internal/repository/memory"
)

func setupOrder(t *testing.T) (*memory.Store, *ProductService, *OrderService) {
	t.Helper()
	store := memory.NewStore()
	ps := NewProductService(store.Products())
	os := NewOrderService(store.Orders(), store.Products(), store.Users(), nil)
	return store, ps, os
}

func mustCreateProduct(t *testing.T, ps *ProductService, name string, stock int64) *product.Product {
	t.Helper()
	p, err := ps.Create(context.Background(), CreateRequest{Name: name, Price: 40, Discount: 10, Stock: stock})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func TestPlaceOrderDecrementsStock(t *testing.T) {
	ctx := context.Background()
	store, ps, os := setupOrder(t)
	p := mustCreateProduct(t, ps, "Coat", 10)

	o, err := os.Place(ctx, 1, PlaceRequest{
		ProductID: p.ID,
		Address:   "12 Market Road",
		Phone:     "0171000000",
		Quantity:  3,
		Size:      "M",
		Color:     "Black",
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if o.Status != order.StatusPending {
		t.Fatalf("expected pending, got %q", o.Status)
	}
	if o.PaymentMethod != order.PaymentCashOnDelivery {
		t.Fatalf("expected default payment method, got %q", o.PaymentMethod)
	}

	after, err := store.Products().GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.Stock != 7 {
		t.Fatalf("stock expected 7, got %d", after.Stock)
	}
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	ctx := context.Background()
	store, ps, os := setupOrder(t)
	p := mustCreateProduct(t, ps, "Coat", 2)

	_, err := os.Place(ctx, 1, PlaceRequest{
		ProductID: p.ID, Address: "a", Phone: "p", Quantity: 3,
	})
	if !errors.Is(err, product.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	// 失败调用不得留下任何可见变化
	after, _ := store.Products().GetByID(ctx, p.ID)
	if after.Stock != 2 {
		t.Fatalf("stock changed on failed order: %d", after.Stock)
	}
	orders, _ := store.Orders().ListByUser(ctx, 1)
	if len(orders) != 0 {
		t.Fatalf("order created on failed placement: %d", len(orders))
	}
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	ctx := context.Background()
	_, _, os := setupOrder(t)
	_, err := os.Place(ctx, 1, PlaceRequest{ProductID: 99, Address: "a", Phone: "p", Quantity: 1})
	if !errors.Is(err, product.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	ctx := context.Background()
	_, ps, os := setupOrder(t)
	p := mustCreateProduct(t, ps, "Coat", 10)

	cases := []PlaceRequest{
		{ProductID: p.ID, Address: "", Phone: "p", Quantity: 1},
		{ProductID: p.ID, Address: "a", Phone: "", Quantity: 1},
		{ProductID: p.ID, Address: "a", Phone: "p", Quantity: 0},
		{ProductID: p.ID, Address: "a", Phone: "p", Quantity: -2},
		{ProductID: p.ID, Address: "a", Phone: "p", Quantity: 1, PaymentMethod: "paypal"},
	}
	for i, req := range cases {
		if _, err := os.Place(ctx, 1, req); !errors.Is(err, ErrInvalidOrder) {
			t.Fatalf("case %d: expected invalid order, got %v", i, err)
		}
	}
}

func TestPlaceOrderSequentialAccounting(t *testing.T) {
	ctx := context.Background()
	store, ps, os := setupOrder(t)
	p := mustCreateProduct(t, ps, "Coat", 10)

	placed := int64(0)
	for _, qty := range []int64{3, 2, 4, 5} {
		_, err := os.Place(ctx, 1, PlaceRequest{ProductID: p.ID, Address: "a", Phone: "p", Quantity: qty})
		if err == nil {
			placed += qty
		} else if !errors.Is(err, product.ErrInsufficientStock) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	after, _ := store.Products().GetByID(ctx, p.ID)
	if after.Stock != 10-placed {
		t.Fatalf("stock expected %d, got %d", 10-placed, after.Stock)
	}
	if after.Stock < 0 {
		t.Fatalf("stock went negative: %d", after.Stock)
	}
}

// 两个并发请求同时抢剩余的全部库存：必须恰好一个成功
func TestPlaceOrderConcurrentExactlyOne(t *testing.T) {
	ctx := context.Background()
	store, ps, os := setupOrder(t)
	p := mustCreateProduct(t, ps, "Coat", 10)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = os.Place(ctx, int64(i+1), PlaceRequest{
				ProductID: p.ID, Address: "a", Phone: "p", Quantity: 10,
			})
		}(i)
	}
	wg.Wait()

	success, outOfStock := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, product.ErrInsufficientStock):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 || outOfStock != 1 {
		t.Fatalf("expected exactly one winner, got success=%d outOfStock=%d", success, outOfStock)
	}

	after, _ := store.Products().GetByID(ctx, p.ID)
	if after.Stock != 0 {
		t.Fatalf("stock expected 0, got %d", after.Stock)
	}
}

// 订单落库失败时必须回补已扣库存
type failingOrderRepo struct {
	order.Repository
}

func (f *failingOrderRepo) Create(ctx context.Context, o *order.Order) error {
	return errors.New("store unavailable")
}

func TestPlaceOrderRollsBackStockOnCreateFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ps := NewProductService(store.Products())
	os := NewOrderService(&failingOrderRepo{store.Orders()}, store.Products(), store.Users(), nil)

	p := mustCreateProduct(t, ps, "Coat", 10)
	_, err := os.Place(ctx, 1, PlaceRequest{ProductID: p.ID, Address: "a", Phone: "p", Quantity: 4})
	if err == nil {
		t.Fatalf("expected create failure")
	}

	after, _ := store.Products().GetByID(ctx, p.ID)
	if after.Stock != 10 {
		t.Fatalf("stock not rolled back, got %d", after.Stock)
	}
}

func TestListMineJoinsProduct(t *testing.T) {
	ctx := context.Background()
	_, ps, os := setupOrder(t)
	p, err := ps.Create(ctx, CreateRequest{
		Name: "Coat", Price: 10, Stock: 10,
		Images: []string{"/uploads/c1.jpg", "/uploads/c2.jpg"},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if _, err := os.Place(ctx, 7, PlaceRequest{ProductID: p.ID, Address: "a", Phone: "p", Quantity: 1}); err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := os.Place(ctx, 7, PlaceRequest{ProductID: p.ID, Address: "b", Phone: "p", Quantity: 2}); err != nil {
		t.Fatalf("place: %v", err)
	}

	list, err := os.ListMine(ctx, 7)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(list))
	}
	// 最新在前
	if list[0].Address != "b" {
		t.Fatalf("expected newest first, got %q", list[0].Address)
	}
	if list[0].ProductName != "Coat" || list[0].ProductImage != "/uploads/c1.jpg" {
		t.Fatalf("product join missing: %+v", list[0])
	}
}

func TestListPendingJoinsUserAndProduct(t *testing.T) {
	ctx := context.Background()
	store, ps, os := setupOrder(t)
	userSvc := NewUserService(store.Users(), &config.JWTConfig{Secret: "test"})
	u, _, err := userSvc.Signup(ctx, "Rahim", "rahim@example.com", "secret1")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	p, err := ps.Create(ctx, CreateRequest{Name: "Sweater", Type: "Dress", Price: 40, Stock: 5, Images: []string{"/uploads/s1.jpg"}})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if _, err := os.Place(ctx, u.ID, PlaceRequest{ProductID: p.ID, Address: "a", Phone: "p", Quantity: 2, PaymentMethod: order.PaymentCard}); err != nil {
		t.Fatalf("place: %v", err)
	}

	list, err := os.ListPending(ctx)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 pending order, got %d", len(list))
	}
	v := list[0]
	if v.UserName != "Rahim" || v.UserEmail != "rahim@example.com" {
		t.Fatalf("user join incomplete: %+v", v)
	}
	if v.ProductName != "Sweater" || v.Type != "Dress" {
		t.Fatalf("product join incomplete: %+v", v)
	}
	if v.Status != order.StatusPending {
		t.Fatalf("status lost: %q", v.Status)
	}
	if v.PaymentMethod != order.PaymentCard {
		t.Fatalf("payment method lost: %q", v.PaymentMethod)
	}
}
