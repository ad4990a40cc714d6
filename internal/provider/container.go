package provider

import (
	"time"

	"github.com/paygate-next/internal/cache"
	"github.com/paygate-next/internal/config"
	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/payment"
	"github.com/paygate-next/internal/payment/cardpay"
	"github.com/paygate-next/internal/payment/cod"
	"github.com/paygate-next/internal/payment/momo"
	"github.com/paygate-next/internal/payment/vnpay"
	"github.com/paygate-next/internal/queue"
	"github.com/paygate-next/internal/repository"
	"github.com/paygate-next/internal/service"
)

// Container dependency injection container
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	PaymentAttemptRepo repository.PaymentAttemptRepository
	RefundRepo         repository.RefundRepository
	OrderRepo          repository.OrderRepository

	// Gateway registry
	Registry *payment.Registry

	// Services
	PaymentService      *service.PaymentService
	NotificationService *service.NotificationService
}

// NewContainer initializes the container
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initRegistry()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.PaymentAttemptRepo = repository.NewPaymentAttemptRepository(db)
	c.RefundRepo = repository.NewRefundRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
}

// initRegistry builds adapters for every configured gateway. A gateway with
// incomplete credentials is skipped so the rest of the stack still serves.
func (c *Container) initRegistry() {
	registry := payment.NewRegistry()
	gateways := c.Config.Gateways

	if vnpayCfg := (vnpay.Config{
		TmnCode:    gateways.VNPay.TmnCode,
		HashSecret: gateways.VNPay.HashSecret,
		PayURL:     gateways.VNPay.PayURL,
		ReturnURL:  gateways.VNPay.ReturnURL,
	}); vnpay.ValidateConfig(vnpayCfg) == nil {
		adapter, err := vnpay.NewAdapter(vnpayCfg)
		if err != nil {
			logger.Errorw("provider_init_vnpay_failed", "error", err)
		} else {
			registry.Register(adapter)
		}
	} else {
		logger.Warnw("provider_gateway_skipped", "method", "vnpay", "reason", "config_incomplete")
	}

	if momoCfg := (momo.Config{
		PartnerCode: gateways.MoMo.PartnerCode,
		AccessKey:   gateways.MoMo.AccessKey,
		SecretKey:   gateways.MoMo.SecretKey,
		Endpoint:    gateways.MoMo.Endpoint,
		ReturnURL:   gateways.MoMo.ReturnURL,
		NotifyURL:   gateways.MoMo.NotifyURL,
		Timeout:     time.Duration(gateways.MoMo.TimeoutMS) * time.Millisecond,
	}); momo.ValidateConfig(momoCfg) == nil {
		adapter, err := momo.NewAdapter(momoCfg)
		if err != nil {
			logger.Errorw("provider_init_momo_failed", "error", err)
		} else {
			registry.Register(adapter)
		}
	} else {
		logger.Warnw("provider_gateway_skipped", "method", "momo", "reason", "config_incomplete")
	}

	if cardCfg := (cardpay.Config{
		SecretKey: gateways.Card.SecretKey,
		Endpoint:  gateways.Card.Endpoint,
		Timeout:   time.Duration(gateways.Card.TimeoutMS) * time.Millisecond,
	}); cardpay.ValidateConfig(cardCfg) == nil {
		adapter, err := cardpay.NewAdapter(cardCfg)
		if err != nil {
			logger.Errorw("provider_init_cardpay_failed", "error", err)
		} else {
			registry.Register(adapter)
		}
	} else {
		logger.Warnw("provider_gateway_skipped", "method", "card", "reason", "config_incomplete")
	}

	if gateways.COD.Enabled {
		registry.Register(cod.NewAdapter())
	}

	logger.Infow("provider_gateways_registered", "methods", registry.Methods())
	c.Registry = registry
}

func (c *Container) initServices() {
	replayTTL := time.Duration(c.Config.Payment.CallbackReplayTTLS) * time.Second
	c.PaymentService = service.NewPaymentService(
		c.PaymentAttemptRepo,
		c.RefundRepo,
		c.OrderRepo,
		c.Registry,
		c.QueueClient,
		replayTTL,
	)
	c.NotificationService = service.NewNotificationService(c.PaymentAttemptRepo)
}
