package server

import (
	"errors"
	"strings"
	"time"

	"github.com/kataras/iris/v12"
	radix "github.com/mediocregopher/radix/v3"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/EsnatJahan/E-Commerce/internal/auth"
	"github.com/EsnatJahan/E-Commerce/internal/config"
	"github.com/EsnatJahan/E-Commerce/internal/datamodels/order"
	"github.com/EsnatJahan/E-Commerce/internal/datamodels/product"
	"github.com/EsnatJahan/E-Commerce/internal/datamodels/user"
	"github.com/EsnatJahan/E-Commerce/internal/infra/mq"
	"github.com/EsnatJahan/E-Commerce/internal/infra/redis"
	"github.com/EsnatJahan/E-Commerce/internal/middleware"
	"github.com/EsnatJahan/E-Commerce/internal/repository/mysql"
	"github.com/EsnatJahan/E-Commerce/internal/service"
)

// Deps 路由依赖的仓储与基础设施，测试可注入内存实现（Redis/MQ 允许为 nil）
type Deps struct {
	Users    user.Repository
	Products product.Repository
	Orders   order.Repository
	Redis    radix.Client
	MQ       *amqp.Connection
}

// RegisterRoutes 生产入口：初始化 MySQL/Redis/MQ 后注册所有 HTTP 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	db := mysql.Init(&cfg.MySQL)
	deps := Deps{
		Users:    mysql.NewUserRepository(db),
		Products: mysql.NewProductRepository(db),
		Orders:   mysql.NewOrderRepository(db),
		Redis:    redis.Init(&cfg.Redis),
		MQ:       mq.Init(&cfg.RabbitMQ),
	}
	RegisterRoutesWith(app, cfg, deps)
}

// RegisterRoutesWith 按给定依赖注册路由
func RegisterRoutesWith(app *iris.Application, cfg *config.Config, deps Deps) {
	userSvc := service.NewUserService(deps.Users, &cfg.JWT)
	productSvc := service.NewProductService(deps.Products)
	orderSvc := service.NewOrderService(deps.Orders, deps.Products, deps.Users, service.NewMQEventPublisher(deps.MQ))

	ring := auth.NewConsistentHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	tokenCache := auth.NewTokenCache(deps.Redis, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	// 上传图片的静态目录：只存引用路径，字节本身由外部写入
	app.HandleDir("/uploads", iris.Dir("./uploads"))

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	// ---------------- 注册 / 登录 ----------------

	api.Post("/signup", func(ctx iris.Context) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		u, token, err := userSvc.Signup(ctx.Request().Context(), req.Name, req.Email, req.Password)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"token": token, "user": u}})
	})

	api.Post("/login", func(ctx iris.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		u, token, err := userSvc.Login(ctx.Request().Context(), req.Email, req.Password)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"token": token, "user": u}})
	})

	// ---------------- 商品（公开） ----------------

	// 商品列表，支持 category/type/brand 等值过滤，无条件返回全量
	api.Get("/products", func(ctx iris.Context) {
		f := product.Filter{
			Category: ctx.URLParam("category"),
			Type:     ctx.URLParam("type"),
			Brand:    ctx.URLParam("brand"),
		}
		list, err := productSvc.List(ctx.Request().Context(), f)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 品牌+类型推荐查询；结果包含当前商品自身，前端自行剔除
	api.Get("/products/related", func(ctx iris.Context) {
		list, err := productSvc.ListRelated(ctx.Request().Context(),
			ctx.URLParam("brand"), ctx.URLParam("type"))
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Get("/products/{id:uint64}", func(ctx iris.Context) {
		pid, _ := ctx.Params().GetUint64("id")
		p, err := productSvc.GetByID(ctx.Request().Context(), int64(pid))
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	// ---------------- 需要登录的接口 ----------------

	authAPI := api.Party("/", func(ctx iris.Context) {
		token := ctx.GetHeader("Authorization")
		token = strings.TrimPrefix(token, "Bearer ")
		if token == "" {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "missing token"})
			return
		}

		claims, hit, err := tokenCache.Get(ctx.Request().Context(), token)
		if err != nil {
			// 缓存故障不拦截请求，降级为直接验签
			zap.L().Warn("token cache get failed", zap.Error(err))
			hit = false
		}
		if !hit {
			claims, err = auth.ParseToken(&cfg.JWT, token)
			if err != nil {
				ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "invalid token"})
				return
			}
			if err := tokenCache.Set(ctx.Request().Context(), token, claims); err != nil {
				zap.L().Warn("token cache set failed", zap.Error(err))
			}
		}

		ctx.Values().Set("user_id", claims.UserID)
		ctx.Values().Set("email", claims.Email)
		ctx.Values().Set("role", claims.Role)
		ctx.Next()
	})

	adminOnly := func(ctx iris.Context) {
		if ctx.Values().GetStringDefault("role", "") != user.RoleAdmin {
			ctx.StopWithJSON(403, iris.Map{"code": 403, "msg": "admin only"})
			return
		}
		ctx.Next()
	}

	authAPI.Get("/me", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		u, err := userSvc.Profile(ctx.Request().Context(), userID)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": u})
	})

	authAPI.Put("/update", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		var req service.ProfileUpdate
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		u, err := userSvc.UpdateProfile(ctx.Request().Context(), userID, req)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": u})
	})

	authAPI.Get("/my-orders", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		list, err := orderSvc.ListMine(ctx.Request().Context(), userID)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 下单
	authAPI.Post("/order", middleware.OrderRateLimit(), func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		var req service.PlaceRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		o, err := orderSvc.Place(ctx.Request().Context(), userID, req)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// ---------------- 管理端 ----------------

	authAPI.Get("/orders/pending", adminOnly, func(ctx iris.Context) {
		list, err := orderSvc.ListPending(ctx.Request().Context())
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	authAPI.Post("/products", adminOnly, func(ctx iris.Context) {
		var req service.CreateRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		p, err := productSvc.Create(ctx.Request().Context(), req)
		if err != nil {
			fail(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	authAPI.Get("/stats", adminOnly, func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "data": service.GetMonitor().GetStats()})
	})
}

// fail 将服务层错误映射为 HTTP 状态；存储内部细节不外泄
func fail(ctx iris.Context, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": err.Error()})
	case errors.Is(err, user.ErrEmailExists),
		errors.Is(err, product.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidSignup),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrInvalidOrder),
		errors.Is(err, service.ErrInvalidProduct):
		ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
	default:
		zap.L().Error("request failed", zap.String("path", ctx.Path()), zap.Error(err))
		ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": "internal server error"})
	}
}
