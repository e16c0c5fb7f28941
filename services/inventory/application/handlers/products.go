package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/errhttp"
	"github.com/ghuser/orderdesk/pkg/httpx"
	pkgvalidator "github.com/ghuser/orderdesk/pkg/validator"
	appsvcs "github.com/ghuser/orderdesk/services/inventory/application/services"
	"github.com/ghuser/orderdesk/services/inventory/domain/models"
	"github.com/ghuser/orderdesk/services/inventory/domain/repositories"
)

// CreateProductRequest is the request body for POST /products.
type CreateProductRequest struct {
	SKU           string `json:"sku"            validate:"required,nonblank,max=100" example:"WID-001"`
	Name          string `json:"name"           validate:"required,nonblank,max=255" example:"Widget"`
	StockQuantity int    `json:"stock_quantity" validate:"gte=0"                     example:"100"`
} // @name CreateProductRequest

// AdjustStockRequest is the request body for POST /products/{id}/stock.
type AdjustStockRequest struct {
	Delta int `json:"delta" validate:"required" example:"-5"`
} // @name AdjustStockRequest

// ProductResponse is the public view of a product.
type ProductResponse struct {
	ID            uuid.UUID `json:"id"             example:"123e4567-e89b-12d3-a456-426614174000"`
	CompanyID     uuid.UUID `json:"company_id"     example:"550e8400-e29b-41d4-a716-446655440000"`
	SKU           string    `json:"sku"            example:"WID-001"`
	Name          string    `json:"name"           example:"Widget"`
	StockQuantity int       `json:"stock_quantity" example:"100"`
	IsActive      bool      `json:"is_active"      example:"true"`
	CreatedAt     time.Time `json:"created_at"     example:"2024-01-15T10:30:00Z"`
} // @name ProductResponse

// ProductListResponse is a page of products.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total" example:"1"`
	httpx.Page
} // @name ProductListResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"product not found"`
} // @name ErrorResponse

// ProductsHandler serves the /products endpoints.
type ProductsHandler struct {
	svc *appsvcs.Services
}

// NewProductsHandler returns a ProductsHandler backed by the given services.
func NewProductsHandler(svc *appsvcs.Services) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// List returns the caller's products.
//
//	@Summary	List products
//	@Tags		products
//	@Produce	json
//	@Param		limit	query		int	false	"Page size (max 200)"
//	@Param		offset	query		int	false	"Offset"
//	@Success	200		{object}	ProductListResponse
//	@Failure	401		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/products [get]
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	page := httpx.ParsePage(r)
	products, total, err := h.svc.Product.List(r.Context(), id, repositories.QueryOpts{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	items := make([]ProductResponse, len(products))
	for i, p := range products {
		items[i] = toProductResponse(p)
	}
	httpx.JSON(w, http.StatusOK, ProductListResponse{Items: items, Total: total, Page: page})
}

// Get returns one product.
//
//	@Summary	Get product
//	@Tags		products
//	@Produce	json
//	@Param		id	path		string	true	"Product ID"
//	@Success	200	{object}	ProductResponse
//	@Failure	404	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/products/{id} [get]
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	productID, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.svc.Product.Get(r.Context(), id, productID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponse(p))
}

// Create adds a product.
//
//	@Summary	Create product
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateProductRequest	true	"Product"
//	@Success	201		{object}	ProductResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/products [post]
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CreateProductRequest](w, r)
	if !ok {
		return
	}
	p, err := h.svc.Product.Create(r.Context(), id, req.SKU, req.Name, req.StockQuantity)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toProductResponse(p))
}

// AdjustStock applies a manual stock correction.
//
//	@Summary		Adjust stock
//	@Description	Adds delta to the stock; rejected when the result would be negative.
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Product ID"
//	@Param			request	body		AdjustStockRequest	true	"Adjustment"
//	@Success		200		{object}	ProductResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/products/{id}/stock [post]
func (h *ProductsHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	productID, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, ok := pkgvalidator.ValidateRequest[AdjustStockRequest](w, r)
	if !ok {
		return
	}
	p, err := h.svc.Product.AdjustStock(r.Context(), id, productID, req.Delta)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponse(p))
}

func toProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		CompanyID:     p.CompanyID,
		SKU:           p.SKU,
		Name:          p.Name,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
	}
}
