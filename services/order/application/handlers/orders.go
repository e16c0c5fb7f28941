package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/errhttp"
	"github.com/ghuser/orderdesk/pkg/httpx"
	pkgvalidator "github.com/ghuser/orderdesk/pkg/validator"
	appsvcs "github.com/ghuser/orderdesk/services/order/application/services"
	"github.com/ghuser/orderdesk/services/order/domain/models"
	"github.com/ghuser/orderdesk/services/order/domain/repositories"
)

// CreateOrderRequest is the request body for POST /orders.
type CreateOrderRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"      example:"123e4567-e89b-12d3-a456-426614174000"`
	Quantity  int       `json:"quantity"   validate:"required,gt=0" example:"3"`
} // @name CreateOrderRequest

// BulkCreateOrdersRequest is the request body for POST /orders/bulk.
type BulkCreateOrdersRequest struct {
	Orders []CreateOrderRequest `json:"orders" validate:"required,min=1,max=100,dive"`
} // @name BulkCreateOrdersRequest

// OrderIDsRequest is the request body for POST /orders/process.
type OrderIDsRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" validate:"required,min=1,max=500,unique"`
} // @name OrderIDsRequest

// SetStatusRequest is the request body for PUT /orders/{id}/status.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved failed" example:"failed"`
} // @name SetStatusRequest

// OrderResponse is the public view of an order.
type OrderResponse struct {
	ID               uuid.UUID `json:"id"                 example:"123e4567-e89b-12d3-a456-426614174000"`
	ReferenceCode    uuid.UUID `json:"reference_code"     example:"9b2f6a50-4b8e-4a62-a1f6-0d3c1e5b7a11"`
	CompanyID        uuid.UUID `json:"company_id"         example:"550e8400-e29b-41d4-a716-446655440000"`
	ProductID        uuid.UUID `json:"product_id"         example:"6ba7b810-9dad-11d1-80b4-00c04fd430c8"`
	CreatedBy        uuid.UUID `json:"created_by"         example:"6ba7b811-9dad-11d1-80b4-00c04fd430c8"`
	Quantity         int       `json:"quantity"           example:"3"`
	Status           string    `json:"status"             example:"pending"`
	HasBeenProcessed bool      `json:"has_been_processed" example:"false"`
	Attempts         int       `json:"attempts"           example:"0"`
	CreatedAt        time.Time `json:"created_at"         example:"2024-01-15T10:30:00Z"`
	UpdatedAt        time.Time `json:"updated_at"         example:"2024-01-15T10:30:00Z"`
} // @name OrderResponse

// OrderListResponse is a page of orders.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Total int             `json:"total" example:"1"`
	httpx.Page
} // @name OrderListResponse

// OrderStatusResponse is the polling view of an order.
type OrderStatusResponse struct {
	OrderID          uuid.UUID `json:"order_id"`
	Status           string    `json:"status"             example:"processing"`
	HasBeenProcessed bool      `json:"has_been_processed" example:"false"`
	UpdatedAt        time.Time `json:"updated_at"`
} // @name OrderStatusResponse

// EnqueueResponse reports a bulk process request.
type EnqueueResponse struct {
	Enqueued []uuid.UUID `json:"enqueued"`
	Skipped  []uuid.UUID `json:"skipped"`
} // @name EnqueueResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"order not found"`
} // @name ErrorResponse

// OrdersHandler serves the /orders endpoints.
type OrdersHandler struct {
	svc *appsvcs.Services
}

// NewOrdersHandler returns an OrdersHandler backed by the given services.
func NewOrdersHandler(svc *appsvcs.Services) *OrdersHandler {
	return &OrdersHandler{svc: svc}
}

// Create places one order.
//
//	@Summary		Create order
//	@Description	Creates a pending order after an advisory stock check. Processing is requested separately.
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateOrderRequest	true	"Order"
//	@Success		201		{object}	OrderResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/orders [post]
func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CreateOrderRequest](w, r)
	if !ok {
		return
	}
	o, err := h.svc.Orders.Create(r.Context(), id, appsvcs.OrderLine{ProductID: req.ProductID, Quantity: req.Quantity})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toOrderResponse(o))
}

// BulkCreate places several orders atomically.
//
//	@Summary	Create orders in bulk
//	@Tags		orders
//	@Accept		json
//	@Produce	json
//	@Param		request	body		BulkCreateOrdersRequest	true	"Orders"
//	@Success	201		{array}		OrderResponse
//	@Failure	422		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/orders/bulk [post]
func (h *OrdersHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[BulkCreateOrdersRequest](w, r)
	if !ok {
		return
	}
	lines := make([]appsvcs.OrderLine, len(req.Orders))
	for i, o := range req.Orders {
		lines[i] = appsvcs.OrderLine{ProductID: o.ProductID, Quantity: o.Quantity}
	}
	orders, err := h.svc.Orders.BulkCreate(r.Context(), id, lines)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	resp := make([]OrderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	httpx.JSON(w, http.StatusCreated, resp)
}

// List returns orders visible to the caller.
//
//	@Summary	List orders
//	@Tags		orders
//	@Produce	json
//	@Param		status	query		string	false	"Filter by status"	Enums(pending, processing, approved, failed)
//	@Param		limit	query		int		false	"Page size (max 200)"
//	@Param		offset	query		int		false	"Offset"
//	@Success	200		{object}	OrderListResponse
//	@Security	BearerAuth
//	@Router		/orders [get]
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	page := httpx.ParsePage(r)
	opts := repositories.QueryOpts{Limit: page.Limit, Offset: page.Offset}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			errhttp.WriteError(w, err)
			return
		}
		opts.Status = status
	}
	orders, total, err := h.svc.Orders.List(r.Context(), id, opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	items := make([]OrderResponse, len(orders))
	for i, o := range orders {
		items[i] = toOrderResponse(o)
	}
	httpx.JSON(w, http.StatusOK, OrderListResponse{Items: items, Total: total, Page: page})
}

// Get returns one order.
//
//	@Summary	Get order
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"Order ID"
//	@Success	200	{object}	OrderResponse
//	@Failure	404	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/orders/{id} [get]
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, orderID, ok := identityAndOrderID(w, r)
	if !ok {
		return
	}
	o, err := h.svc.Orders.Get(r.Context(), id, orderID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(o))
}

// Status returns the order's current status from the read model.
//
//	@Summary	Poll order status
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"Order ID"
//	@Success	200	{object}	OrderStatusResponse
//	@Failure	404	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/orders/{id}/status [get]
func (h *OrdersHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, orderID, ok := identityAndOrderID(w, r)
	if !ok {
		return
	}
	s, err := h.svc.Orders.Status(r.Context(), id, orderID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, OrderStatusResponse{
		OrderID:          s.OrderID,
		Status:           s.Status,
		HasBeenProcessed: s.HasBeenProcessed,
		UpdatedAt:        s.UpdatedAt,
	})
}

// Process hands a pending order to the workers.
//
//	@Summary	Process order
//	@Tags		orders
//	@Param		id	path	string	true	"Order ID"
//	@Success	202
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/orders/{id}/process [post]
func (h *OrdersHandler) Process(w http.ResponseWriter, r *http.Request) {
	id, orderID, ok := identityAndOrderID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Orders.Enqueue(r.Context(), id, orderID); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ProcessMany hands every pending order among the given ids to the workers.
//
//	@Summary	Process orders in bulk
//	@Tags		orders
//	@Accept		json
//	@Produce	json
//	@Param		request	body		OrderIDsRequest	true	"Order IDs"
//	@Success	202		{object}	EnqueueResponse
//	@Failure	422		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/orders/process [post]
func (h *OrdersHandler) ProcessMany(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[OrderIDsRequest](w, r)
	if !ok {
		return
	}
	res, err := h.svc.Orders.EnqueueMany(r.Context(), id, req.OrderIDs)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, EnqueueResponse{
		Enqueued: orEmpty(res.Enqueued),
		Skipped:  orEmpty(res.Skipped),
	})
}

// Retry re-enqueues a processed failure.
//
//	@Summary	Retry order
//	@Tags		orders
//	@Param		id	path	string	true	"Order ID"
//	@Success	202
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/orders/{id}/retry [post]
func (h *OrdersHandler) Retry(w http.ResponseWriter, r *http.Request) {
	id, orderID, ok := identityAndOrderID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Orders.Retry(r.Context(), id, orderID); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// SetStatus applies an administrative status correction.
//
//	@Summary		Correct order status
//	@Description	Admins only. Stock is not touched. Correcting a processed order to failed counts against its creator.
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Order ID"
//	@Param			request	body		SetStatusRequest	true	"New status"
//	@Success		200		{object}	OrderResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/orders/{id}/status [put]
func (h *OrdersHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, orderID, ok := identityAndOrderID(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[SetStatusRequest](w, r)
	if !ok {
		return
	}
	o, err := h.svc.Orders.SetStatus(r.Context(), id, orderID, models.Status(req.Status))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(o))
}

func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, err := auth.IdentityFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return auth.Identity{}, false
	}
	return id, true
}

func identityAndOrderID(w http.ResponseWriter, r *http.Request) (auth.Identity, uuid.UUID, bool) {
	id, ok := identity(w, r)
	if !ok {
		return id, uuid.Nil, false
	}
	orderID, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return id, uuid.Nil, false
	}
	return id, orderID, true
}

func orEmpty(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

func toOrderResponse(o *models.Order) OrderResponse {
	return OrderResponse{
		ID:               o.ID,
		ReferenceCode:    o.ReferenceCode,
		CompanyID:        o.CompanyID,
		ProductID:        o.ProductID,
		CreatedBy:        o.CreatedBy,
		Quantity:         o.Quantity,
		Status:           string(o.Status),
		HasBeenProcessed: o.HasBeenProcessed,
		Attempts:         o.Attempts,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}
