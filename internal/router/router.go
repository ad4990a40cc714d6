package router

import (
	"github.com/paygate-next/internal/config"
	publichandlers "github.com/paygate-next/internal/http/handlers/public"
	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter initializes the routes
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// buyer endpoints
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey))
		{
			user.POST("/payments", publicHandler.CreatePayment)
			user.POST("/payments/qr", publicHandler.CreateQRPayment)
			user.GET("/payments", publicHandler.ListPayments)
			user.GET("/payments/:payment_id", publicHandler.GetPaymentStatus)
			user.GET("/payments/:payment_id/refunds", publicHandler.ListRefunds)
			user.POST("/payments/:payment_id/refunds", publicHandler.RequestRefund)
		}

		// gateway callbacks are authenticated by signature, not by token
		apiV1.GET("/payments/callback/vnpay", publicHandler.HandleVNPayCallback)
		apiV1.POST("/payments/callback/vnpay", publicHandler.HandleVNPayCallback)
		apiV1.GET("/payments/return/vnpay", publicHandler.HandleVNPayReturn)
		apiV1.POST("/payments/callback/momo", publicHandler.HandleMoMoCallback)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
