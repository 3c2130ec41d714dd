package main

import (
	"context"
	"net/http"
	"time"

	"github.com/billcraft/billcraft/internal/api"
	"github.com/billcraft/billcraft/internal/api/cron"
	v1 "github.com/billcraft/billcraft/internal/api/v1"
	"github.com/billcraft/billcraft/internal/cache"
	"github.com/billcraft/billcraft/internal/config"
	"github.com/billcraft/billcraft/internal/httpclient"
	"github.com/billcraft/billcraft/internal/logger"
	"github.com/billcraft/billcraft/internal/postgres"
	"github.com/billcraft/billcraft/internal/repository"
	"github.com/billcraft/billcraft/internal/service"
	"github.com/billcraft/billcraft/internal/validator"
	"github.com/billcraft/billcraft/internal/webhook"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			postgres.NewDB,
			providePostgresClient,

			// HTTP client
			httpclient.NewDefaultClient,

			// Repositories
			repository.NewCustomerRepository,
			repository.NewProductRepository,
			repository.NewPlanRepository,
			repository.NewSubscriptionRepository,
			repository.NewInvoiceRepository,
			repository.NewPaymentRepository,
		),
	)

	// Webhook module (must be initialised before services)
	opts = append(opts, webhook.Module)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewCustomerService,
			service.NewProductService,
			service.NewPlanService,
			service.NewInvoiceService,
			service.NewSubscriptionService,
			service.NewPaymentService,
			service.NewBillingService,
		),
	)

	// API layer
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app := fx.New(opts...)
	app.Run()
}

func providePostgresClient(db *postgres.DB) postgres.IClient {
	return db
}

func provideHandlers(
	logger *logger.Logger,
	customerService service.CustomerService,
	productService service.ProductService,
	planService service.PlanService,
	subscriptionService service.SubscriptionService,
	invoiceService service.InvoiceService,
	paymentService service.PaymentService,
	billingService service.BillingService,
) api.Handlers {
	return api.Handlers{
		Health:           v1.NewHealthHandler(logger),
		Customer:         v1.NewCustomerHandler(customerService, logger),
		Product:          v1.NewProductHandler(productService, logger),
		Plan:             v1.NewPlanHandler(planService, logger),
		Subscription:     v1.NewSubscriptionHandler(subscriptionService, logger),
		Invoice:          v1.NewInvoiceHandler(invoiceService, paymentService, logger),
		Payment:          v1.NewPaymentHandler(paymentService, logger),
		Dashboard:        v1.NewDashboardHandler(billingService, logger),
		CronSubscription: cron.NewSubscriptionCronHandler(subscriptionService, logger),
		CronInvoice:      cron.NewInvoiceCronHandler(invoiceService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db *postgres.DB,
	webhookService *webhook.WebhookService,
	log *logger.Logger,
) {
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := webhookService.Start(context.Background()); err != nil {
				return err
			}

			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			if err := server.Shutdown(ctx); err != nil {
				log.Errorw("server shutdown failed", "error", err)
			}
			if err := webhookService.Stop(); err != nil {
				log.Errorw("webhook service shutdown failed", "error", err)
			}
			db.Close()
			return nil
		},
	})
}
