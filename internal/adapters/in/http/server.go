// Package http exposes the order ledger over a REST API.
// It coordinates between HTTP handlers and application use cases, translating
// the domain error taxonomy into status codes.
package http

import (
	"context"
	"errors"
	"net/http"

	"blockdelivery/internal/core/application/usecases/commands"
	"blockdelivery/internal/core/application/usecases/queries"
	"blockdelivery/internal/core/domain/model/counter"
	"blockdelivery/internal/core/domain/model/kernel"
	"blockdelivery/internal/core/domain/model/order"
	"blockdelivery/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the JSON error envelope returned on every failure.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CreateOrderRequest is the body of POST /api/v1/orders.
type CreateOrderRequest struct {
	Customer string `json:"customer"`
	Amount   uint64 `json:"amount"`
}

// ActorRequest carries the identity submitting an accept or complete transition.
type ActorRequest struct {
	Actor string `json:"actor"`
}

// OrderResponse is the JSON view of one order record.
type OrderResponse struct {
	ID       uint64  `json:"id"`
	Address  string  `json:"address"`
	Customer string  `json:"customer"`
	Courier  *string `json:"courier,omitempty"`
	Amount   uint64  `json:"amount"`
	Status   string  `json:"status"`
}

// OrderReader serves single record lookups.
// Satisfied by queries.GetOrderQueryHandler.
type OrderReader interface {
	Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderQueryResponse, error)
}

// ActiveOrdersReader serves the uncompleted orders listing.
// Satisfied by queries.GetUncompletedOrdersQueryHandler.
type ActiveOrdersReader interface {
	Handle(ctx context.Context, query queries.GetUncompletedOrdersQuery) ([]queries.OrderQueryResponse, error)
}

// Server implements the REST handlers for the order lifecycle.
type Server struct {
	// Command handlers
	createOrderHandler   commands.CreateOrderCommandHandler
	acceptOrderHandler   commands.AcceptOrderCommandHandler
	completeOrderHandler commands.CompleteOrderCommandHandler

	// Query handlers
	getOrderHandler             OrderReader
	getUncompletedOrdersHandler ActiveOrdersReader
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	acceptOrderHandler commands.AcceptOrderCommandHandler,
	completeOrderHandler commands.CompleteOrderCommandHandler,
	getOrderHandler OrderReader,
	getUncompletedOrdersHandler ActiveOrdersReader,
) *Server {
	return &Server{
		createOrderHandler:          createOrderHandler,
		acceptOrderHandler:          acceptOrderHandler,
		completeOrderHandler:        completeOrderHandler,
		getOrderHandler:             getOrderHandler,
		getUncompletedOrdersHandler: getUncompletedOrdersHandler,
	}
}

// RegisterRoutes mounts all handlers on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/active", s.GetActiveOrders)
	api.GET("/orders/:address", s.GetOrder)
	api.POST("/orders/:address/accept", s.AcceptOrder)
	api.POST("/orders/:address/complete", s.CompleteOrder)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateOrder handles POST /api/v1/orders - submits a creation transition.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req CreateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "Invalid request body")
	}

	customer, err := kernel.IdentityFromString(req.Customer)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "Invalid customer identity: "+err.Error())
	}

	cmd, err := commands.NewCreateOrderCommand(customer, req.Amount)
	if err != nil {
		return domainErrorResponse(ctx, err)
	}

	record, err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainErrorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, toOrderResponse(record))
}

// AcceptOrder handles POST /api/v1/orders/:address/accept.
func (s *Server) AcceptOrder(ctx echo.Context) error {
	address, err := kernel.AddressFromString(ctx.Param("address"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "Invalid order address: "+err.Error())
	}

	var req ActorRequest
	if err = ctx.Bind(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "Invalid request body")
	}

	courier, err := kernel.IdentityFromString(req.Actor)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "Invalid courier identity: "+err.Error())
	}

	cmd, err := commands.NewAcceptOrderCommand(address, courier)
	if err != nil {
		return domainErrorResponse(ctx, err)
	}

	record, err := s.acceptOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainErrorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrderResponse(record))
}

// CompleteOrder handles POST /api/v1/orders/:address/complete.
func (s *Server) CompleteOrder(ctx echo.Context) error {
	address, err := kernel.AddressFromString(ctx.Param("address"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "Invalid order address: "+err.Error())
	}

	var req ActorRequest
	if err = ctx.Bind(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "Invalid request body")
	}

	actor, err := kernel.IdentityFromString(req.Actor)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "Invalid actor identity: "+err.Error())
	}

	cmd, err := commands.NewCompleteOrderCommand(address, actor)
	if err != nil {
		return domainErrorResponse(ctx, err)
	}

	record, err := s.completeOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainErrorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrderResponse(record))
}

// GetOrder handles GET /api/v1/orders/:address - retrieves one record.
func (s *Server) GetOrder(ctx echo.Context) error {
	address, err := kernel.AddressFromString(ctx.Param("address"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "Invalid order address: "+err.Error())
	}

	query, err := queries.NewGetOrderQuery(address)
	if err != nil {
		return domainErrorResponse(ctx, err)
	}

	view, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainErrorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toViewResponse(view))
}

// GetActiveOrders handles GET /api/v1/orders/active - retrieves all uncompleted orders.
func (s *Server) GetActiveOrders(ctx echo.Context) error {
	query := queries.NewGetUncompletedOrdersQuery()

	views, err := s.getUncompletedOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainErrorResponse(ctx, err)
	}

	response := make([]OrderResponse, len(views))
	for i, view := range views {
		response[i] = toViewResponse(view)
	}

	return ctx.JSON(http.StatusOK, response)
}

func toOrderResponse(record *order.Order) OrderResponse {
	var courier *string
	if c := record.Courier(); c != nil {
		hex := c.String()
		courier = &hex
	}

	return OrderResponse{
		ID:       record.ID(),
		Address:  record.Address().String(),
		Customer: record.Customer().String(),
		Courier:  courier,
		Amount:   record.Amount(),
		Status:   record.Status().String(),
	}
}

func toViewResponse(view queries.OrderQueryResponse) OrderResponse {
	var courier *string
	if view.Courier != nil {
		hex := view.Courier.String()
		courier = &hex
	}

	return OrderResponse{
		ID:       view.ID,
		Address:  view.Address.String(),
		Customer: view.Customer.String(),
		Courier:  courier,
		Amount:   view.Amount,
		Status:   view.Status.String(),
	}
}

// domainErrorResponse maps the domain error taxonomy onto HTTP status codes.
func domainErrorResponse(ctx echo.Context, err error) error {
	var notFound *errs.ObjectNotFoundError

	switch {
	case errors.As(err, &notFound):
		return errorResponse(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrUnauthorized):
		return errorResponse(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, order.ErrInvalidTransition):
		return errorResponse(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, counter.ErrIssuanceExhausted):
		return errorResponse(ctx, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, order.ErrInvalidAmount), errors.Is(err, kernel.ErrInvalidSeedEncoding):
		return errorResponse(ctx, http.StatusBadRequest, err.Error())
	default:
		return errorResponse(ctx, http.StatusInternalServerError, err.Error())
	}
}

func errorResponse(ctx echo.Context, code int, message string) error {
	return ctx.JSON(code, Error{Code: code, Message: message})
}
