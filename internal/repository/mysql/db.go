package mysql

import (
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/EsnatJahan/E-Commerce/internal/config"
	"github.com/EsnatJahan/E-Commerce/internal/datamodels/order"
	"github.com/EsnatJahan/E-Commerce/internal/datamodels/product"
	"github.com/EsnatJahan/E-Commerce/internal/datamodels/user"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Init 初始化全局 GORM 实例并自动迁移表结构。
// 存储不可达时直接终止进程，不允许带病提供服务。
func Init(cfg *config.MySQLConfig) *gorm.DB {
	once.Do(func() {
		var err error
		db, err = gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{})
		if err != nil {
			zap.L().Fatal("failed to connect mysql", zap.Error(err))
		}

		if err = db.AutoMigrate(&user.User{}, &product.Product{}, &order.Order{}); err != nil {
			zap.L().Fatal("auto migrate failed", zap.Error(err))
		}
	})
	return db
}

// DB 获取全局 DB
func DB() *gorm.DB {
	return db
}
