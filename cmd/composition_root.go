package cmd

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"

	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/memory"
	"fulfillment/internal/adapters/out/orderservice"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/rabbitmq"
	"fulfillment/internal/core/application/delivery"
	"fulfillment/internal/core/application/dispatch"
	"fulfillment/internal/core/application/feed"
	"fulfillment/internal/core/application/ledger"
	"fulfillment/internal/core/application/session"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/application/verification"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/metrics"
	"fulfillment/internal/pkg/clock"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// CompositionRoot owns the stateful components of one agent session and
// builds the handlers that front them.
type CompositionRoot struct {
	cfg      Config
	logger   *zap.Logger
	registry *prometheus.Registry

	uowFactory   ports.UnitOfWorkFactory
	orderService *orderservice.Client
	feed         *feed.Feed
	verifier     *verification.Verifier
	ledger       *ledger.Ledger
	stateMachine *delivery.StateMachine
	pool         *dispatch.Pool

	closers []func() error
}

// NewCompositionRoot connects the configured adapters and builds the
// application components. Close releases whatever it opened, also on error.
func NewCompositionRoot(ctx context.Context, cfg Config, logger *zap.Logger) (*CompositionRoot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &CompositionRoot{cfg: cfg, logger: logger}
	if err := c.build(ctx); err != nil {
		if closeErr := c.Close(); closeErr != nil {
			logger.Warn("failed to release resources", zap.Error(closeErr))
		}
		return nil, err
	}
	return c, nil
}

func (c *CompositionRoot) build(ctx context.Context) error {
	cfg, logger := c.cfg, c.logger

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	sess, err := session.NewSession(cfg.AgentID, cfg.OfferWindow, loc)
	if err != nil {
		return err
	}
	calculator, err := services.NewCommissionCalculator(cfg.CommissionRate, kernel.Money(cfg.BaseFee))
	if err != nil {
		return err
	}

	clk := clock.New()
	c.registry = prometheus.NewRegistry()
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(c.registry)

	if c.uowFactory, err = c.connectStorage(ctx); err != nil {
		return err
	}
	publisher, err := c.connectPublisher()
	if err != nil {
		return err
	}

	c.feed, err = feed.NewFeed(cfg.FeedCapacity, clk, c.uowFactory.Create().NotificationRepository(), publisher, m, logger)
	if err != nil {
		return err
	}

	c.orderService, err = orderservice.NewClient(cfg.OrderServiceURL, &http.Client{Timeout: cfg.OrderServiceTimeout}, logger)
	if err != nil {
		return err
	}

	var issuer ports.OTPIssuer = c.orderService
	var confirmer verification.OTPConfirmer = c.orderService
	if cfg.LocalOTP {
		issuer = verification.NewLocalIssuer(rand.Reader)
		confirmer = nil
	}
	if c.verifier, err = verification.NewVerifier(issuer, confirmer, clk, c.feed, logger); err != nil {
		return err
	}

	earningsUoW := FuncEarningsUoWFactory(func() ledger.EarningsUoW {
		return c.uowFactory.Create()
	})
	if c.ledger, err = ledger.NewLedger(sess, calculator, earningsUoW, clk, c.feed, m, logger); err != nil {
		return err
	}

	orderUoW := FuncOrderUoWFactory(func() delivery.OrderUoW {
		return c.uowFactory.Create()
	})
	c.stateMachine, err = delivery.NewStateMachine(c.orderService, orderUoW, c.ledger, c.verifier, clk, c.feed, m, logger)
	if err != nil {
		return err
	}

	if c.pool, err = dispatch.NewPool(sess, c.orderService, c.stateMachine, clk, c.feed, m, logger); err != nil {
		return err
	}
	return nil
}

func (c *CompositionRoot) connectStorage(ctx context.Context) (ports.UnitOfWorkFactory, error) {
	if !c.cfg.UsesDatabase() {
		c.logger.Warn("DB_HOST not set, keeping state in memory")
		return memory.NewUnitOfWorkFactory(memory.NewStore()), nil
	}

	db, err := postgres.Connect(ctx, c.cfg.Postgres().DSN(), c.logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, sqlDB.Close)
	return postgres.NewGormUnitOfWorkFactory(db), nil
}

func (c *CompositionRoot) connectPublisher() (ports.NotificationPublisher, error) {
	if c.cfg.RabbitMQURL == "" {
		return nil, nil
	}

	conn, err := rabbitmq.Dial(c.cfg.RabbitMQURL, c.cfg.NotificationExchange, c.cfg.AgentID, c.logger)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, conn.Close)
	return conn, nil
}

// Restore loads the persisted feed and takes back the orders that were still
// being delivered when the process stopped.
func (c *CompositionRoot) Restore(ctx context.Context) error {
	if err := c.feed.Load(ctx); err != nil {
		return err
	}
	restored, err := c.stateMachine.Restore(ctx)
	if err != nil {
		return err
	}
	c.logger.Info("session restored", zap.Int("active_orders", restored), zap.Int("notifications", c.feed.Len()))
	return nil
}

func (c *CompositionRoot) CreateRefreshOffersCommandHandler() commands.RefreshOffersCommandHandler {
	return commands.NewRefreshOffersCommandHandler(c.pool)
}

func (c *CompositionRoot) CreateAcceptOfferCommandHandler() commands.AcceptOfferCommandHandler {
	return commands.NewAcceptOfferCommandHandler(c.pool)
}

func (c *CompositionRoot) CreateDeclineOfferCommandHandler() commands.DeclineOfferCommandHandler {
	return commands.NewDeclineOfferCommandHandler(c.pool)
}

func (c *CompositionRoot) CreateAdvanceDeliveryCommandHandler() commands.AdvanceDeliveryCommandHandler {
	return commands.NewAdvanceDeliveryCommandHandler(c.stateMachine, c.verifier)
}

func (c *CompositionRoot) CreateRequestOTPCommandHandler() commands.RequestOTPCommandHandler {
	return commands.NewRequestOTPCommandHandler(c.stateMachine, c.verifier)
}

func (c *CompositionRoot) CreateSettlePayoutCommandHandler() commands.SettlePayoutCommandHandler {
	return commands.NewSettlePayoutCommandHandler(c.ledger)
}

func (c *CompositionRoot) CreateClearNotificationsCommandHandler() commands.ClearNotificationsCommandHandler {
	return commands.NewClearNotificationsCommandHandler(c.feed)
}

func (c *CompositionRoot) CreateGetOpenOffersQueryHandler() queries.GetOpenOffersQueryHandler {
	return queries.NewGetOpenOffersQueryHandler(c.pool)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.stateMachine)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.stateMachine)
}

func (c *CompositionRoot) CreateGetNotificationsQueryHandler() queries.GetNotificationsQueryHandler {
	return queries.NewGetNotificationsQueryHandler(c.feed)
}

func (c *CompositionRoot) CreateGetEarningsQueryHandler() queries.GetEarningsQueryHandler {
	return queries.NewGetEarningsQueryHandler(c.ledger)
}

func (c *CompositionRoot) CreateGetEarningsSummaryQueryHandler() queries.GetEarningsSummaryQueryHandler {
	return queries.NewGetEarningsSummaryQueryHandler(c.ledger)
}

// CreateRouter builds the HTTP API over every handler.
func (c *CompositionRoot) CreateRouter() (*echo.Echo, error) {
	server := httpin.NewServer(httpin.Handlers{
		AcceptOffer:        c.CreateAcceptOfferCommandHandler(),
		DeclineOffer:       c.CreateDeclineOfferCommandHandler(),
		AdvanceDelivery:    c.CreateAdvanceDeliveryCommandHandler(),
		RequestOTP:         c.CreateRequestOTPCommandHandler(),
		SettlePayout:       c.CreateSettlePayoutCommandHandler(),
		ClearNotifications: c.CreateClearNotificationsCommandHandler(),
		GetOpenOffers:      c.CreateGetOpenOffersQueryHandler(),
		GetActiveOrders:    c.CreateGetActiveOrdersQueryHandler(),
		GetOrder:           c.CreateGetOrderQueryHandler(),
		GetNotifications:   c.CreateGetNotificationsQueryHandler(),
		GetEarnings:        c.CreateGetEarningsQueryHandler(),
		GetEarningsSummary: c.CreateGetEarningsSummaryQueryHandler(),
	})
	return httpin.NewRouter(server, httpin.Options{
		JWTSecret: []byte(c.cfg.JWTSecret),
		AgentID:   c.cfg.AgentID,
		Gatherer:  c.registry,
		LogLevel:  c.cfg.LogLevel,
		Logger:    c.logger,
	})
}

// Close stops the offer timers and releases connections in reverse order.
func (c *CompositionRoot) Close() error {
	if c.pool != nil {
		c.pool.Stop()
	}
	var errList []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errList = append(errList, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errList...)
}

type FuncOrderUoWFactory func() delivery.OrderUoW

func (f FuncOrderUoWFactory) Create() delivery.OrderUoW {
	return f()
}

type FuncEarningsUoWFactory func() ledger.EarningsUoW

func (f FuncEarningsUoWFactory) Create() ledger.EarningsUoW {
	return f()
}
