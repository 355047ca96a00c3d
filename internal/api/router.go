package api

import (
	v1 "github.com/flexprice/checkout/internal/api/v1"
	"github.com/flexprice/checkout/internal/config"
	"github.com/flexprice/checkout/internal/logger"
	"github.com/flexprice/checkout/internal/rest/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Health         *v1.HealthHandler
	Auth           *v1.AuthHandler
	Profile        *v1.ProfileHandler
	PaymentSession *v1.PaymentSessionHandler
	Admin          *v1.AdminHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, roles middleware.RoleResolver) *gin.Engine {
	router := gin.Default()
	router.Use(
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware(cfg),
		middleware.SentryMiddleware(cfg),
		middleware.ErrorHandler(),
	)

	// Health check
	router.GET("/health", handlers.Health.Health)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1Private := router.Group("/v1")
	v1Private.Use(
		middleware.AuthenticateMiddleware(cfg, logger),
		middleware.SentryScopeMiddleware,
	)

	auth := v1Private.Group("/auth")
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/logout", handlers.Auth.Logout)
	}

	profile := v1Private.Group("/profile")
	{
		profile.GET("", handlers.Profile.GetProfile)
		profile.PUT("", handlers.Profile.UpdateProfile)
		profile.GET("/role", handlers.Profile.GetRole)
	}

	payments := v1Private.Group("/payments")
	{
		payments.POST("/session", handlers.PaymentSession.StartPayment)
		payments.GET("/session", handlers.PaymentSession.GetSession)
		payments.DELETE("/session", handlers.PaymentSession.CancelSession)
		payments.POST("/session/check", handlers.PaymentSession.RecheckSession)
		payments.GET("/session/events", handlers.PaymentSession.StreamEvents)
		payments.GET("/invoice", handlers.PaymentSession.GetInvoice)
		payments.GET("/attempts", handlers.PaymentSession.ListAttempts)
	}

	admin := v1Private.Group("/admin")
	admin.Use(middleware.RequireAdmin(roles, logger))
	{
		admin.GET("/credentials", handlers.Admin.GetCredentials)
		admin.PUT("/credentials", handlers.Admin.UpdateCredentials)
		admin.GET("/template", handlers.Admin.GetTemplate)
		admin.PUT("/template", handlers.Admin.UpdateTemplate)
		admin.GET("/invoices", handlers.Admin.ListInvoices)
		admin.GET("/payments", handlers.Admin.ListPayments)
	}

	return router
}
