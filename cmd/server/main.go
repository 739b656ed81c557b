package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"games-ticketing-platform/internal/config"
	"games-ticketing-platform/internal/database"
	"games-ticketing-platform/internal/handlers"
	"games-ticketing-platform/internal/repositories"
	"games-ticketing-platform/internal/services"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Server.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewConnection(database.Config{
		Driver: cfg.Database.Driver,
		URL:    cfg.Database.URL,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	offerRepo := repositories.NewOfferRepository(db.DB)
	cartRepo := repositories.NewCartRepository(db.DB)
	paymentRepo := repositories.NewPaymentRepository(db.DB)
	ticketRepo := repositories.NewTicketRepository(db.DB)
	userRepo := repositories.NewUserRepository(db.DB)
	pipelineRepo := repositories.NewPipelineRepository(db.DB)

	inventoryService := services.NewInventoryService(offerRepo, logger)
	cartService := services.NewCartService(cartRepo, inventoryService, logger)
	ticketService := services.NewTicketService(ticketRepo, userRepo, []byte(cfg.Ticket.SecretSalt), logger)
	gateway := services.NewSimulatedGateway(cfg.Payment.GatewayPolicy, cfg.Payment.FailureRate, 0, logger)
	paymentService := services.NewPaymentService(
		paymentRepo, cartRepo, pipelineRepo, gateway,
		ticketService.KeyFunc(), cfg.Payment.GatewayTimeout, true, logger)
	emailService := services.NewLogEmailService(cfg.Email.FromEmail, cfg.Email.FromName, logger)
	checkoutService := services.NewCheckoutService(cartService, paymentService, userRepo, emailService, logger)

	router := handlers.NewRouter(handlers.RouterConfig{
		JWTSecret: cfg.Auth.JWTSecret,
		Env:       cfg.Server.Env,
	}, inventoryService, cartService, paymentService, checkoutService, ticketService, logger)

	srv := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
