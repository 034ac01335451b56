package cmd

import (
	"context"
	"log/slog"
	"strconv"

	"blockdelivery/internal/adapters/out/eventbus"
	"blockdelivery/internal/adapters/out/postgres"
	"blockdelivery/internal/client"
	"blockdelivery/internal/core/application/usecases/commands"
	"blockdelivery/internal/core/application/usecases/queries"
	"blockdelivery/internal/core/domain/model/order"
	"blockdelivery/internal/core/domain/services"
	"blockdelivery/internal/core/ports"
	"blockdelivery/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	broker     *eventbus.Broker
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewCompositionRoot wires the application graph. The local broker always
// carries the event feed; an extra publisher (the NATS bridge) is fanned in
// when provided.
func NewCompositionRoot(config Config, gormDB *gorm.DB, extra ports.EventPublisher, logger *slog.Logger) CompositionRoot {
	broker := eventbus.NewBroker()

	var publisher ports.EventPublisher = broker
	if extra != nil {
		publisher = multiPublisher{broker, extra}
	}

	return CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		broker:     broker,
		publisher:  publisher,
		logger:     logger,
	}
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.LedgerUoWFactory = FuncLedgerUoWFactory(func() commands.LedgerUoW {
		return c.uowFactory.Create()
	})

	attempts, err := strconv.Atoi(c.config.IssuanceAttempts)
	if err != nil {
		attempts = 0 // handler falls back to its default budget
	}

	return commands.NewCreateOrderCommandHandler(f, services.NewTransitionAuthority(), c.publisher, attempts)
}

func (c *CompositionRoot) CreateAcceptOrderCommandHandler() commands.AcceptOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAcceptOrderCommandHandler(f, services.NewTransitionAuthority(), c.publisher)
}

func (c *CompositionRoot) CreateCompleteOrderCommandHandler() commands.CompleteOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCompleteOrderCommandHandler(f, services.NewTransitionAuthority(), c.publisher)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetUncompletedOrdersQueryHandler() queries.GetUncompletedOrdersQueryHandler {
	return queries.NewGetUncompletedOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateSynchronizer() *client.Synchronizer {
	reader := c.CreateGetUncompletedOrdersQueryHandler()
	return client.NewSynchronizer(c.broker, reader, c.logger)
}

func (c *CompositionRoot) CreateJobManager(synchronizer *client.Synchronizer) *jobs.JobManager {
	return jobs.NewJobManager(synchronizer, c.config.ResyncSchedule, c.logger)
}

// Broker exposes the local event stream for additional subscribers.
func (c *CompositionRoot) Broker() *eventbus.Broker {
	return c.broker
}

type FuncLedgerUoWFactory func() commands.LedgerUoW

func (f FuncLedgerUoWFactory) Create() commands.LedgerUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

// multiPublisher fans one committed-transition event out to several publishers.
// Each leg is best effort on its own; one failing leg does not stop the others.
type multiPublisher []ports.EventPublisher

func (m multiPublisher) Publish(ctx context.Context, event order.Event) error {
	var firstErr error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
