package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auctionhouse/internal/client/orderbook"
	"auctionhouse/internal/client/subgraph"
	"auctionhouse/internal/config"
	cronrunner "auctionhouse/internal/cron"
	"auctionhouse/internal/db"
	"auctionhouse/internal/handler"
	"auctionhouse/internal/logger"
	"auctionhouse/internal/notify"
	"auctionhouse/internal/pricing"
	gormrepository "auctionhouse/internal/repository/gorm"
	"auctionhouse/internal/service"
)

func main() {
	cfgPath := os.Getenv("AH_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("AH_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)

	orderbookHTTP := &http.Client{Timeout: cfg.Orderbook.Timeout}
	orderbookClient := orderbook.NewClient(orderbookHTTP, cfg.Orderbook.BaseURL, cfg.Orderbook.APIKey, cfg.Orderbook.Offline)
	subgraphHTTP := &http.Client{Timeout: cfg.Subgraph.Timeout}
	subgraphClient := subgraph.NewClient(subgraphHTTP, cfg.Subgraph.URL, cfg.Subgraph.APIKey, logger)

	hub := notify.NewHub(logger)
	curve := pricing.Curve{
		ExpFactor:        cfg.Pricing.ExpFactor,
		SigmoidSteepness: cfg.Pricing.SigmoidSteepness,
	}

	auctionService := &service.AuctionService{
		Repo:      store,
		Orderbook: orderbookClient,
		Notify:    hub,
		Logger:    logger,
	}
	settlementService := &service.SettlementService{
		Repo:   store,
		Fees:   cfg.Fees,
		Notify: hub,
		Logger: logger,
	}
	expiryService := &service.ExpiryService{
		Repo:       store,
		Settlement: settlementService,
		Logger:     logger,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	auctionHandler := &handler.AuctionHandler{
		Service:    auctionService,
		Settlement: settlementService,
		Expiry:     expiryService,
		Curve:      curve,
		Logger:     logger,
	}
	auctionHandler.Register(engine)
	listingHandler := &handler.ListingHandler{
		Service: auctionService,
		Auction: auctionHandler,
	}
	listingHandler.Register(engine)
	subgraphHandler := &handler.SubgraphHandler{Client: subgraphClient}
	subgraphHandler.Register(engine)
	wsHandler := &handler.WSHandler{Hub: hub}
	wsHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err := cronRunner.Add("settle-expired", cfg.Cron.SettleExpired, func(ctx context.Context) {
			if _, err := expiryService.RunOnce(ctx); err != nil {
				logger.Warn("cron settle-expired failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register settle-expired failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
