package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mkowalczyk/libreserve/internal/auth"
	"github.com/mkowalczyk/libreserve/internal/cache"
	"github.com/mkowalczyk/libreserve/internal/config"
	"github.com/mkowalczyk/libreserve/internal/http/handlers"
	"github.com/mkowalczyk/libreserve/internal/http/middlewares"
	"github.com/mkowalczyk/libreserve/internal/notifications"
	"github.com/mkowalczyk/libreserve/internal/observability"
	"github.com/mkowalczyk/libreserve/internal/repo/postgres"
)

const serviceName = "libreserve"

func NewRouter(log *slog.Logger, cfg config.Config, pool *pgxpool.Pool, rdb *redis.Client) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// metrics registry lives with the router; everything downstream
	// shares the one Prom instance
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(otelgin.Middleware(serviceName))
	r.Use(prom.GinHandleMiddleware())

	// health
	ping := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				return err
			}
		}

		if rdb != nil {
			return cache.Ping(ctx, rdb)
		}

		return nil
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	booksRepo := postgres.NewBooksRepo(pool, prom)
	reservationsRepo := postgres.NewReservationsRepo(pool, prom)
	notificationsRepo := postgres.NewNotificationsRepo(pool, prom)

	notifier := notifications.NewService(notificationsRepo, usersRepo, log, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)
	gate := middlewares.NewAuthMiddleware(jwtManager)

	booksCache := cache.NewBooks(rdb, time.Duration(cfg.BookCacheTTLSeconds)*time.Second, log)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager, notifier)
	booksHandler := handlers.NewBooksHandler(booksRepo, booksCache)
	usersHandler := handlers.NewUsersHandler(usersRepo)
	reservationsHandler := handlers.NewReservationsHandler(reservationsRepo, booksRepo, notifier, log)
	notificationsHandler := handlers.NewNotificationsHandler(notificationsRepo)

	authLimiter := middlewares.NewRateLimiter(cfg.AuthRateLimit, time.Duration(cfg.AuthRateWindowSecs)*time.Second)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(authLimiter.Middleware(middlewares.KeyByIP))
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	books := api.Group("/books")
	books.GET("", booksHandler.ListBooks)
	books.GET("/:id", booksHandler.GetBook)
	books.POST("", gate.RequireAuth(), gate.RequireAdmin(), booksHandler.AddBook)
	books.PUT("/:id", gate.RequireAuth(), gate.RequireAdmin(), booksHandler.UpdateBook)

	users := api.Group("/users")
	users.GET("", gate.RequireAuth(), gate.RequireAdmin(), usersHandler.GetAllUsers)
	users.GET("/:id", gate.RequireAuth(), usersHandler.GetUser)
	users.PUT("/:id", gate.RequireAuth(), usersHandler.UpdateUser)
	users.PUT("/:id/approve", gate.RequireAuth(), gate.RequireAdmin(), usersHandler.ApproveUser)

	reservations := api.Group("/reservations")
	reservations.POST("", gate.RequireAuth(), reservationsHandler.CreateReservation)
	reservations.GET("", gate.RequireAuth(), gate.RequireAdmin(), reservationsHandler.ListReservations)
	reservations.GET("/:id", gate.RequireAuth(), reservationsHandler.GetReservation)
	reservations.PUT("/:id", gate.RequireAuth(), gate.RequireAdmin(), reservationsHandler.UpdateReservationStatus)

	notificationsGroup := api.Group("/notifications")
	notificationsGroup.GET("", gate.RequireAuth(), notificationsHandler.ListNotifications)
	notificationsGroup.PUT("/:id/read", gate.RequireAuth(), notificationsHandler.MarkRead)

	return r
}
