package api

import (
	"github.com/billcraft/billcraft/internal/api/cron"
	v1 "github.com/billcraft/billcraft/internal/api/v1"
	"github.com/billcraft/billcraft/internal/config"
	"github.com/billcraft/billcraft/internal/logger"
	"github.com/billcraft/billcraft/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler the router mounts
type Handlers struct {
	Health       *v1.HealthHandler
	Customer     *v1.CustomerHandler
	Product      *v1.ProductHandler
	Plan         *v1.PlanHandler
	Subscription *v1.SubscriptionHandler
	Invoice      *v1.InvoiceHandler
	Payment      *v1.PaymentHandler
	Dashboard    *v1.DashboardHandler

	CronSubscription *cron.SubscriptionHandler
	CronInvoice      *cron.InvoiceHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.CORSMiddleware,
		middleware.RequestIDMiddleware,
		middleware.TenantMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)
	registerCronRoutes(v1Group.Group("/cron"), handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	customers := router.Group("/customers")
	{
		customers.POST("", handlers.Customer.CreateCustomer)
		customers.GET("", handlers.Customer.GetCustomers)
		customers.GET("/:id", handlers.Customer.GetCustomer)
		customers.PUT("/:id", handlers.Customer.UpdateCustomer)
		customers.DELETE("/:id", handlers.Customer.DeleteCustomer)
	}

	products := router.Group("/products")
	{
		products.POST("", handlers.Product.CreateProduct)
		products.GET("", handlers.Product.GetProducts)
		products.GET("/:id", handlers.Product.GetProduct)
		products.PUT("/:id", handlers.Product.UpdateProduct)
		products.DELETE("/:id", handlers.Product.DeleteProduct)
	}

	plans := router.Group("/plans")
	{
		plans.POST("", handlers.Plan.CreatePlan)
		plans.GET("", handlers.Plan.GetPlans)
		plans.GET("/:id", handlers.Plan.GetPlan)
		plans.PUT("/:id", handlers.Plan.UpdatePlan)
		plans.DELETE("/:id", handlers.Plan.DeletePlan)
	}

	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.POST("", handlers.Subscription.CreateSubscription)
		subscriptions.GET("", handlers.Subscription.GetSubscriptions)
		subscriptions.GET("/:id", handlers.Subscription.GetSubscription)
		subscriptions.POST("/:id/lines", handlers.Subscription.AddOrUpdateLine)
		subscriptions.POST("/:id/confirm", handlers.Subscription.ConfirmSubscription)
		subscriptions.POST("/:id/cancel", handlers.Subscription.CancelSubscription)
	}

	invoices := router.Group("/invoices")
	{
		invoices.GET("", handlers.Invoice.GetInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.POST("/:id/pay", handlers.Invoice.PayInvoice)
		invoices.POST("/:id/void", handlers.Invoice.VoidInvoice)
	}

	payments := router.Group("/payments")
	{
		payments.GET("", handlers.Payment.GetPayments)
		payments.GET("/:id", handlers.Payment.GetPayment)
	}

	dashboard := router.Group("/dashboard")
	{
		dashboard.GET("/stats", handlers.Dashboard.GetStats)
	}
}

func registerCronRoutes(router *gin.RouterGroup, handlers Handlers) {
	router.POST("/renewals", handlers.CronSubscription.ProcessRenewals)
	router.POST("/overdue", handlers.CronInvoice.ProcessOverdue)
}
