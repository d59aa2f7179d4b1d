package main

import (
	"context"
	"flag"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/EsnatJahan/E-Commerce/internal/config"
	"github.com/EsnatJahan/E-Commerce/internal/datamodels/product"
	"github.com/EsnatJahan/E-Commerce/internal/datamodels/user"
	"github.com/EsnatJahan/E-Commerce/internal/repository/mysql"
	"github.com/EsnatJahan/E-Commerce/pkg/log"
)

func main() {
	adminEmail := flag.String("admin-email", "", "管理员邮箱，留空则不创建")
	adminPassword := flag.String("admin-password", "", "管理员密码")
	flag.Parse()

	log.InitLogger()

	cfg, err := config.Load("./config")
	if err != nil {
		zap.L().Fatal("load config failed", zap.Error(err))
	}

	db := mysql.Init(&cfg.MySQL)
	productRepo := mysql.NewProductRepository(db)
	userRepo := mysql.NewUserRepository(db)
	ctx := context.Background()

	// 目录为空时插入示例商品
	existing, err := productRepo.List(ctx, product.Filter{})
	if err != nil {
		zap.L().Fatal("list products failed", zap.Error(err))
	}
	if len(existing) == 0 {
		samples := []*product.Product{
			{
				Name:        "Coat Set",
				Category:    "Coat",
				Brand:       "Zara",
				Type:        "Dress",
				Description: "Elegant winter coat crafted from a warm wool blend. Designed with a soft inner lining for comfort and a tailored fit for a polished look. Perfect for both casual outings and formal wearing",
				Price:       10,
				Discount:    20,
				Sizes:       []string{"M", "L", "XL"},
				Colors:      []string{"Black", "Gray"},
				Stock:       10,
				Images: []string{
					"/uploads/dress-collection/d1.jpg",
					"/uploads/dress-collection/d2.jpg",
					"/uploads/dress-collection/d3.jpg",
					"/uploads/dress-collection/d4.jpg",
				},
			},
			{
				Name:        "Cozy Winter Sweater",
				Category:    "Sweater",
				Brand:       "Zara",
				Type:        "Dress",
				Description: "Soft knit sweater with a comfortable fit. Perfect for chilly days and casual wear. Available in multiple colors to suit your style.",
				Price:       40,
				Discount:    10,
				Sizes:       []string{"S", "M", "L", "XL"},
				Colors:      []string{"Red", "Blue", "Green", "Gray"},
				Stock:       50,
				Images: []string{
					"/uploads/dress-collection/d5.jpg",
					"/uploads/dress-collection/d6.jpg",
					"/uploads/dress-collection/d7.jpg",
					"/uploads/dress-collection/d8.jpg",
				},
			},
		}
		for _, p := range samples {
			if err := productRepo.Create(ctx, p); err != nil {
				zap.L().Fatal("create sample product failed", zap.String("name", p.Name), zap.Error(err))
			}
			zap.L().Info("sample product inserted", zap.Int64("id", p.ID), zap.String("name", p.Name))
		}
	} else {
		zap.L().Info("catalog not empty, skip sample products", zap.Int("count", len(existing)))
	}

	if *adminEmail != "" {
		if *adminPassword == "" {
			zap.L().Fatal("admin-password is required when admin-email is set")
		}
		if _, err := userRepo.GetByEmail(ctx, *adminEmail); err == nil {
			zap.L().Info("admin already exists", zap.String("email", *adminEmail))
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*adminPassword), bcrypt.DefaultCost)
		if err != nil {
			zap.L().Fatal("hash admin password failed", zap.Error(err))
		}
		admin := &user.User{
			Name:     "Admin",
			Email:    *adminEmail,
			Password: string(hashed),
			Role:     user.RoleAdmin,
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			zap.L().Fatal("create admin failed", zap.Error(err))
		}
		zap.L().Info("admin user created", zap.Int64("id", admin.ID), zap.String("email", admin.Email))
	}
}
