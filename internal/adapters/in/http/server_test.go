package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apihttp "blockdelivery/internal/adapters/in/http"
	"blockdelivery/internal/core/application/usecases/commands"
	"blockdelivery/internal/core/application/usecases/queries"
	"blockdelivery/internal/core/domain/model/counter"
	"blockdelivery/internal/core/domain/model/kernel"
	"blockdelivery/internal/core/domain/model/order"
	"blockdelivery/internal/core/domain/services"
	"blockdelivery/internal/core/ports"
	"blockdelivery/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ledgerState is a single in-memory backing store shared by all fake units of
// work, standing in for the database in handler-level tests.
type ledgerState struct {
	records map[kernel.Address]*order.Order
	nextID  uint64
	version int64
}

func newLedgerState() *ledgerState {
	return &ledgerState{records: make(map[kernel.Address]*order.Order)}
}

type memOrderRepo struct{ state *ledgerState }

func (r memOrderRepo) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, exists := r.state.records[aggregate.Address()]; exists {
		return fmt.Errorf("record already exists at %s", aggregate.Address())
	}
	r.state.records[aggregate.Address()] = aggregate
	return nil
}

func (r memOrderRepo) Update(_ context.Context, aggregate *order.Order, expectedStatus order.Status) error {
	stored, ok := r.state.records[aggregate.Address()]
	if !ok {
		return errs.NewObjectNotFoundError("order", aggregate.Address().String())
	}
	if stored != aggregate && stored.Status() != expectedStatus {
		return fmt.Errorf("%w: order %s is %s",
			order.ErrInvalidTransition, aggregate.Address(), stored.Status())
	}
	r.state.records[aggregate.Address()] = aggregate
	return nil
}

func (r memOrderRepo) Get(_ context.Context, address kernel.Address) (*order.Order, error) {
	stored, ok := r.state.records[address]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", address.String())
	}
	return stored, nil
}

type memCounterRepo struct{ state *ledgerState }

func (r memCounterRepo) GetOrCreate(context.Context) (*counter.Registry, error) {
	return counter.RestoreRegistry(r.state.nextID, r.state.version)
}

func (r memCounterRepo) Save(_ context.Context, registry *counter.Registry) error {
	if registry.Version() != r.state.version {
		return counter.ErrStaleCounterRead
	}
	r.state.nextID = registry.Peek()
	r.state.version++
	return nil
}

type memUoW struct{ state *ledgerState }

func (u memUoW) Begin(context.Context) error                { return nil }
func (u memUoW) Commit(context.Context) error               { return nil }
func (u memUoW) Rollback(context.Context) error             { return nil }
func (u memUoW) OrderRepository() ports.OrderRepository     { return memOrderRepo{state: u.state} }
func (u memUoW) CounterRepository() ports.CounterRepository { return memCounterRepo{state: u.state} }

type ledgerUoWFactory struct{ state *ledgerState }

func (f ledgerUoWFactory) Create() commands.LedgerUoW { return memUoW{state: f.state} }

type orderUoWFactory struct{ state *ledgerState }

func (f orderUoWFactory) Create() commands.OrderUoW { return memUoW{state: f.state} }

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, order.Event) error { return nil }

type memOrderReader struct{ state *ledgerState }

func (r memOrderReader) Handle(_ context.Context, query queries.GetOrderQuery) (queries.OrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return queries.OrderQueryResponse{}, err
	}
	stored, ok := r.state.records[query.Address()]
	if !ok {
		return queries.OrderQueryResponse{}, errs.NewObjectNotFoundError("address", query.Address().String())
	}
	return toResponse(stored), nil
}

type memActiveReader struct{ state *ledgerState }

func (r memActiveReader) Handle(_ context.Context, query queries.GetUncompletedOrdersQuery) ([]queries.OrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	views := make([]queries.OrderQueryResponse, 0)
	for _, stored := range r.state.records {
		if stored.Status() != order.Completed {
			views = append(views, toResponse(stored))
		}
	}
	return views, nil
}

func toResponse(record *order.Order) queries.OrderQueryResponse {
	return queries.OrderQueryResponse{
		ID:       record.ID(),
		Address:  record.Address(),
		Customer: record.Customer(),
		Courier:  record.Courier(),
		Amount:   record.Amount(),
		Status:   record.Status(),
	}
}

type fixture struct {
	echo  *echo.Echo
	state *ledgerState
}

func newFixture() fixture {
	state := newLedgerState()
	authority := services.NewTransitionAuthority()
	publisher := noopPublisher{}

	server := apihttp.NewServer(
		commands.NewCreateOrderCommandHandler(ledgerUoWFactory{state: state}, authority, publisher, 0),
		commands.NewAcceptOrderCommandHandler(orderUoWFactory{state: state}, authority, publisher),
		commands.NewCompleteOrderCommandHandler(orderUoWFactory{state: state}, authority, publisher),
		memOrderReader{state: state},
		memActiveReader{state: state},
	)

	e := echo.New()
	server.RegisterRoutes(e)

	return fixture{echo: e, state: state}
}

func (f fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func (f fixture) createOrder(t *testing.T, customer kernel.Identity) apihttp.OrderResponse {
	t.Helper()
	body := fmt.Sprintf(`{"customer":%q,"amount":1200}`, customer.String())
	rec := f.do(http.MethodPost, "/api/v1/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp apihttp.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestServer_Health(t *testing.T) {
	f := newFixture()
	rec := f.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_CreateOrder_ReturnsAddressAndID(t *testing.T) {
	f := newFixture()
	customer := kernel.NewRandomIdentity()

	resp := f.createOrder(t, customer)

	assert.Equal(t, uint64(0), resp.ID)
	assert.Equal(t, customer.String(), resp.Customer)
	assert.Equal(t, "Created", resp.Status)

	expected, err := kernel.DeriveOrderAddress(resp.ID)
	require.NoError(t, err)
	assert.Equal(t, expected.String(), resp.Address)

	// Sequential creations issue consecutive ids
	second := f.createOrder(t, customer)
	assert.Equal(t, uint64(1), second.ID)
}

func TestServer_CreateOrder_ZeroAmount_Returns400(t *testing.T) {
	f := newFixture()
	body := fmt.Sprintf(`{"customer":%q,"amount":0}`, kernel.NewRandomIdentity().String())

	rec := f.do(http.MethodPost, "/api/v1/orders", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_CreateOrder_MalformedCustomer_Returns400(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodPost, "/api/v1/orders", `{"customer":"zz","amount":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_AcceptOrder_Success(t *testing.T) {
	f := newFixture()
	created := f.createOrder(t, kernel.NewRandomIdentity())
	courier := kernel.NewRandomIdentity()

	rec := f.do(http.MethodPost, "/api/v1/orders/"+created.Address+"/accept",
		fmt.Sprintf(`{"actor":%q}`, courier.String()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp apihttp.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Accepted", resp.Status)
	require.NotNil(t, resp.Courier)
	assert.Equal(t, courier.String(), *resp.Courier)
}

func TestServer_AcceptOrder_ByCustomer_Returns403(t *testing.T) {
	f := newFixture()
	customer := kernel.NewRandomIdentity()
	created := f.createOrder(t, customer)

	rec := f.do(http.MethodPost, "/api/v1/orders/"+created.Address+"/accept",
		fmt.Sprintf(`{"actor":%q}`, customer.String()))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_AcceptOrder_Twice_Returns409(t *testing.T) {
	f := newFixture()
	created := f.createOrder(t, kernel.NewRandomIdentity())

	first := f.do(http.MethodPost, "/api/v1/orders/"+created.Address+"/accept",
		fmt.Sprintf(`{"actor":%q}`, kernel.NewRandomIdentity().String()))
	require.Equal(t, http.StatusOK, first.Code)

	second := f.do(http.MethodPost, "/api/v1/orders/"+created.Address+"/accept",
		fmt.Sprintf(`{"actor":%q}`, kernel.NewRandomIdentity().String()))
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestServer_AcceptOrder_UnknownAddress_Returns404(t *testing.T) {
	f := newFixture()
	address, err := kernel.DeriveOrderAddress(777)
	require.NoError(t, err)

	rec := f.do(http.MethodPost, "/api/v1/orders/"+address.String()+"/accept",
		fmt.Sprintf(`{"actor":%q}`, kernel.NewRandomIdentity().String()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_AcceptOrder_MalformedAddress_Returns400(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodPost, "/api/v1/orders/nothex/accept",
		fmt.Sprintf(`{"actor":%q}`, kernel.NewRandomIdentity().String()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_CompleteOrder_ByAssignedCourier_Succeeds(t *testing.T) {
	f := newFixture()
	created := f.createOrder(t, kernel.NewRandomIdentity())
	courier := kernel.NewRandomIdentity()

	accept := f.do(http.MethodPost, "/api/v1/orders/"+created.Address+"/accept",
		fmt.Sprintf(`{"actor":%q}`, courier.String()))
	require.Equal(t, http.StatusOK, accept.Code)

	complete := f.do(http.MethodPost, "/api/v1/orders/"+created.Address+"/complete",
		fmt.Sprintf(`{"actor":%q}`, courier.String()))
	require.Equal(t, http.StatusOK, complete.Code, complete.Body.String())

	var resp apihttp.OrderResponse
	require.NoError(t, json.Unmarshal(complete.Body.Bytes(), &resp))
	assert.Equal(t, "Completed", resp.Status)
}

func TestServer_CompleteOrder_ByCustomer_Returns403(t *testing.T) {
	f := newFixture()
	customer := kernel.NewRandomIdentity()
	created := f.createOrder(t, customer)

	accept := f.do(http.MethodPost, "/api/v1/orders/"+created.Address+"/accept",
		fmt.Sprintf(`{"actor":%q}`, kernel.NewRandomIdentity().String()))
	require.Equal(t, http.StatusOK, accept.Code)

	complete := f.do(http.MethodPost, "/api/v1/orders/"+created.Address+"/complete",
		fmt.Sprintf(`{"actor":%q}`, customer.String()))
	assert.Equal(t, http.StatusForbidden, complete.Code)
}

func TestServer_CompleteOrder_BeforeAccept_Returns409(t *testing.T) {
	f := newFixture()
	created := f.createOrder(t, kernel.NewRandomIdentity())

	rec := f.do(http.MethodPost, "/api/v1/orders/"+created.Address+"/complete",
		fmt.Sprintf(`{"actor":%q}`, kernel.NewRandomIdentity().String()))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_GetOrder_ReturnsRecord(t *testing.T) {
	f := newFixture()
	created := f.createOrder(t, kernel.NewRandomIdentity())

	rec := f.do(http.MethodGet, "/api/v1/orders/"+created.Address, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp apihttp.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, created.Address, resp.Address)
	assert.Equal(t, created.ID, resp.ID)
}

func TestServer_GetOrder_Missing_Returns404(t *testing.T) {
	f := newFixture()
	address, err := kernel.DeriveOrderAddress(123456)
	require.NoError(t, err)

	rec := f.do(http.MethodGet, "/api/v1/orders/"+address.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_GetActiveOrders_ExcludesCompleted(t *testing.T) {
	f := newFixture()
	active := f.createOrder(t, kernel.NewRandomIdentity())
	finished := f.createOrder(t, kernel.NewRandomIdentity())

	courier := kernel.NewRandomIdentity()
	require.Equal(t, http.StatusOK, f.do(http.MethodPost,
		"/api/v1/orders/"+finished.Address+"/accept",
		fmt.Sprintf(`{"actor":%q}`, courier.String())).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost,
		"/api/v1/orders/"+finished.Address+"/complete",
		fmt.Sprintf(`{"actor":%q}`, courier.String())).Code)

	rec := f.do(http.MethodGet, "/api/v1/orders/active", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []apihttp.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, active.Address, resp[0].Address)
}
