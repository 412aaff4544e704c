package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/resetcode"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/ratelimit"
	pkgredis "github.com/Skotchmaster/storefront/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := models.Migrate(gdb); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	Repo := repo.New(gdb)

	var (
		resets       resetcode.Store   = resetcode.NewMemoryStore()
		loginLimiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(cfg.LoginRateLimit, time.Minute)
		redisClient  *pkgredis.Client
	)
	if cfg.RedisURL != "" {
		redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = pkgredis.New(redisCtx, cfg.RedisURL)
		redisCancel()
		if err != nil {
			logger.Warn("redis_unavailable", "reason", "falling back to in-process stores", "error", err)
			redisClient = nil
		} else {
			resets = resetcode.NewRedisStore(redisClient)
			loginLimiter = &ratelimit.RedisLimiter{Store: redisClient, Limit: int64(cfg.LoginRateLimit), Window: time.Minute}
		}
	}

	var events mykafka.Publisher = mykafka.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Warn("kafka_unavailable", "reason", "events disabled", "error", err)
		} else {
			events = prod
		}
	}

	var index search.Index
	if cfg.ESURL != "" {
		client, err := search.NewClient(search.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword, Index: cfg.ESIndex})
		if err != nil {
			logger.Warn("search_unavailable", "reason", "using sql search", "error", err)
		} else {
			index = client
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	catalogService := &service.CatalogService{Repo: Repo, Search: index}
	userService := &service.UserService{Repo: Repo}
	deps := &httpserver.Deps{
		DB: gdb,
		Auth: &service.AuthService{
			Repo:          Repo,
			Resets:        resets,
			Events:        events,
			JWTSecret:     []byte(cfg.JWTAccessSecret),
			RefreshSecret: []byte(cfg.JWTRefreshSecret),
			AccessTTL:     cfg.AccessTTL,
			RefreshTTL:    cfg.RefreshTTL,
		},
		Users:        userService,
		Addresses:    &service.AddressService{Repo: Repo},
		Cart:         &service.CartService{Repo: Repo, Events: events},
		Orders:       &service.OrderService{Repo: Repo, Events: events, Metrics: m},
		Catalog:      catalogService,
		Admin:        &service.ProductAdminService{Repo: Repo, Catalog: catalogService, Search: index, Events: events},
		Inventory:    &service.InventoryService{Repo: Repo, Events: events, Metrics: m},
		Reviews:      &service.ReviewService{Repo: Repo},
		Wishlist:     &service.WishlistService{Repo: Repo},
		Promotions:   &service.PromotionService{Repo: Repo},
		JWTSecret:    []byte(cfg.JWTAccessSecret),
		CookieSecure: cfg.CookieSecure,
		LoginLimiter: loginLimiter,
		Gatherer:     reg,
	}
	if cfg.CSRFEnabled {
		csrfCfg := csrf.DefaultConfig()
		csrfCfg.Secure = cfg.CookieSecure
		csrfCfg.CookiePath = httpserver.RefreshCookiePath
		csrfCfg.TrustedOrigins = cfg.CORSOrigins
		deps.CSRF = &csrfCfg
	}

	seedCtx, seedCancel := context.WithTimeout(logging.IntoContext(context.Background(), logger), 10*time.Second)
	if err := userService.EnsureAdmin(seedCtx, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		log.Fatalf("admin seed error: %v", err)
	}
	seedCancel()

	e := echo.New()
	httpserver.Configure(e)

	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-CSRF-Token"},
		ExposeHeaders:    []string{"X-CSRF-Token"},
	}))
	e.Use(loggingmw.RequestLogger(logger, m))

	httpserver.Register(e, deps)

	go func() {
		logger.Info("server_starting", "addr", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("server_stopping")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", "error", err)
	}
	if err := events.Close(); err != nil {
		logger.Warn("kafka_close_failed", "error", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := db.Close(gdb); err != nil {
		logger.Warn("db_close_failed", "error", err)
	}
	logger.Info("server_stopped")
}
