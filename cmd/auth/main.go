package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	postgresrepo "github.com/karTik-kuMar04/Backend/internal/adapters/db/postgres"
	redisstore "github.com/karTik-kuMar04/Backend/internal/adapters/db/redis"
	s3store "github.com/karTik-kuMar04/Backend/internal/adapters/storage/s3"
	httptransport "github.com/karTik-kuMar04/Backend/internal/adapters/transport/http"
	httpmw "github.com/karTik-kuMar04/Backend/internal/adapters/transport/http/middleware"
	"github.com/karTik-kuMar04/Backend/internal/auth/service"
	"github.com/karTik-kuMar04/Backend/internal/auth/token"
	"github.com/karTik-kuMar04/Backend/internal/config"
	lg "github.com/karTik-kuMar04/Backend/internal/infra/log"
	"github.com/karTik-kuMar04/Backend/internal/infra/metrics"
	"github.com/karTik-kuMar04/Backend/internal/migrate"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(gormpostgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	redisCli := redisv9.NewClient(&redisv9.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	media, err := s3store.NewMediaStore(rootCtx, cfg)
	if err != nil {
		zapLog.Fatal("failed to init media store", zap.Error(err))
	}

	tokenUtil, err := token.NewTokenUtil(cfg)
	if err != nil {
		zapLog.Fatal("failed to init token util", zap.Error(err))
	}

	validate := validator.New()
	if err := validate.RegisterValidation("strongpwd", strongPassword); err != nil {
		zapLog.Fatal("register validation", zap.Error(err))
	}

	userRepo := postgresrepo.NewPostgresUserRepo(db)
	svc := service.NewAuthService(userRepo, tokenUtil, media, cfg, validate)

	registry := prometheus.NewRegistry()
	collector := metrics.NewPromCollector(registry)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmw.RequestLogger(zapLog))
	router.Use(httptransport.StatusRecorder(collector))
	router.Use(httpmw.NewRateLimitPerIP(50, 100, 10_000, time.Hour))

	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	attemptStore := redisstore.NewRedisAttemptStore(redisCli)
	loginThrottle := httpmw.NewLoginThrottle(attemptStore, cfg.LoginAttemptLimit, cfg.LoginAttemptWindow, zapLog)

	handler := httptransport.NewHandler(svc, cfg, zapLog, collector)
	handler.RegisterRoutes(router, loginThrottle)
	router.GET("/healthz", httptransport.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		zapLog.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			zapLog.Info("shutdown signal received")
		case <-ctx.Done():
		}
		cancel()

		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		return srv.Shutdown(ctxShutdown)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}

func strongPassword(fl validator.FieldLevel) bool {
	pwd := fl.Field().String()
	if len(pwd) < 8 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range pwd {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
