package commands_test

import (
	"testing"
	"time"

	"blockdelivery/internal/core/application/usecases/commands"
	"blockdelivery/internal/core/domain/model/kernel"
	"blockdelivery/internal/core/domain/model/order"
	"blockdelivery/internal/core/domain/services"
	"blockdelivery/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCreatedRecord(t *testing.T, customer kernel.Identity) *order.Order {
	t.Helper()
	record, err := order.NewOrder(0, customer, 1000, time.Now())
	require.NoError(t, err)
	return record
}

func newAcceptHandlerFixture(record *order.Order, getErr error) (
	*MockOrderRepository, *MockOrderUoW, *MockOrderUoWFactory, *RecordingPublisher,
) {
	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, mock.AnythingOfType("kernel.Address")).Return(record, getErr)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*order.Order"), order.Created).Return(nil)

	uow := new(MockOrderUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("OrderRepository").Return(repo)
	uow.On("Commit", mock.Anything).Return(nil)
	uow.On("Rollback", mock.Anything).Return(nil)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	return repo, uow, factory, new(RecordingPublisher)
}

func TestAcceptOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	customer := kernel.NewRandomIdentity()
	courier := kernel.NewRandomIdentity()
	record := newCreatedRecord(t, customer)

	repo, uow, factory, publisher := newAcceptHandlerFixture(record, nil)
	cmd, _ := commands.NewAcceptOrderCommand(record.Address(), courier)

	h := commands.NewAcceptOrderCommandHandler(factory, services.NewTransitionAuthority(), publisher)
	accepted, err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, order.Accepted, accepted.Status())
	require.NotNil(t, accepted.Courier())
	assert.True(t, courier.IsEqual(*accepted.Courier()))

	require.Len(t, publisher.events, 1)
	ev, ok := publisher.events[0].(order.OrderAccepted)
	require.True(t, ok)
	assert.True(t, courier.IsEqual(ev.Courier))

	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestAcceptOrderCommandHandler_Handle_NotFound(t *testing.T) {
	ctx := t.Context()
	address := orderAddress(t, 9)

	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, mock.AnythingOfType("kernel.Address")).
		Return(nil, errs.NewObjectNotFoundError("order", address.String()))

	uow := new(MockOrderUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("OrderRepository").Return(repo)
	uow.On("Rollback", mock.Anything).Return(nil)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)
	publisher := new(RecordingPublisher)

	cmd, _ := commands.NewAcceptOrderCommand(address, kernel.NewRandomIdentity())
	h := commands.NewAcceptOrderCommandHandler(factory, services.NewTransitionAuthority(), publisher)

	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	assert.Empty(t, publisher.events)
}

func TestAcceptOrderCommandHandler_Handle_CustomerCannotAcceptOwnOrder(t *testing.T) {
	ctx := t.Context()
	customer := kernel.NewRandomIdentity()
	record := newCreatedRecord(t, customer)

	_, _, factory, publisher := newAcceptHandlerFixture(record, nil)
	cmd, _ := commands.NewAcceptOrderCommand(record.Address(), customer)

	h := commands.NewAcceptOrderCommandHandler(factory, services.NewTransitionAuthority(), publisher)
	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrUnauthorized)
	assert.Empty(t, publisher.events)
}

func TestAcceptOrderCommandHandler_Handle_AlreadyAccepted(t *testing.T) {
	ctx := t.Context()
	record := newCreatedRecord(t, kernel.NewRandomIdentity())
	require.NoError(t, record.Accept(kernel.NewRandomIdentity(), time.Now()))

	_, _, factory, publisher := newAcceptHandlerFixture(record, nil)
	cmd, _ := commands.NewAcceptOrderCommand(record.Address(), kernel.NewRandomIdentity())

	h := commands.NewAcceptOrderCommandHandler(factory, services.NewTransitionAuthority(), publisher)
	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrInvalidTransition)
	assert.Empty(t, publisher.events)
}

func TestAcceptOrderCommandHandler_Handle_LostGuardedWrite(t *testing.T) {
	ctx := t.Context()
	record := newCreatedRecord(t, kernel.NewRandomIdentity())

	// Another courier's accept committed between our read and our write.
	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, mock.AnythingOfType("kernel.Address")).Return(record, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*order.Order"), order.Created).
		Return(order.ErrInvalidTransition)

	uow := new(MockOrderUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("OrderRepository").Return(repo)
	uow.On("Rollback", mock.Anything).Return(nil)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)
	publisher := new(RecordingPublisher)

	cmd, _ := commands.NewAcceptOrderCommand(record.Address(), kernel.NewRandomIdentity())
	h := commands.NewAcceptOrderCommandHandler(factory, services.NewTransitionAuthority(), publisher)

	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrInvalidTransition)
	assert.Empty(t, publisher.events)
}
