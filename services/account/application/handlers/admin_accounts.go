package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/errhttp"
	"github.com/ghuser/orderdesk/pkg/httpx"
	pkgvalidator "github.com/ghuser/orderdesk/pkg/validator"
	appsvcs "github.com/ghuser/orderdesk/services/account/application/services"
)

// CreateAccountRequest is the request body for POST /admin/accounts.
type CreateAccountRequest struct {
	Username  string     `json:"username"   validate:"required,nonblank,max=150"              example:"alice"`
	Email     string     `json:"email"      validate:"omitempty,email"                       example:"alice@example.com"`
	Password  string     `json:"password"   validate:"required,min=8,max=128"                example:"s3cret-pass"`
	Role      string     `json:"role"       validate:"omitempty,oneof=admin operator viewer" example:"operator"`
	CompanyID *uuid.UUID `json:"company_id,omitempty"                                        example:"550e8400-e29b-41d4-a716-446655440000"`
	Superuser bool       `json:"superuser,omitempty"                                         example:"false"`
} // @name CreateAccountRequest

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID                uuid.UUID `json:"id"                  example:"123e4567-e89b-12d3-a456-426614174000"`
	CompanyID         uuid.UUID `json:"company_id"          example:"550e8400-e29b-41d4-a716-446655440000"`
	Username          string    `json:"username"            example:"alice"`
	Email             string    `json:"email"               example:"alice@example.com"`
	Role              string    `json:"role"                example:"operator"`
	IsBlocked         bool      `json:"is_blocked"          example:"false"`
	FailedOrdersCount int       `json:"failed_orders_count" example:"0"`
	CreatedAt         time.Time `json:"created_at"          example:"2024-01-15T10:30:00Z"`
} // @name AccountResponse

// AccountIDsRequest names the accounts a bulk operation applies to.
type AccountIDsRequest struct {
	AccountIDs []uuid.UUID `json:"account_ids" validate:"required,min=1,max=500,unique"`
} // @name AccountIDsRequest

// BulkResultResponse reports how many accounts a bulk operation changed.
type BulkResultResponse struct {
	Updated int64       `json:"updated"               example:"2"`
	IDs     []uuid.UUID `json:"account_ids,omitempty"`
} // @name BulkResultResponse

// AdminAccountsHandler serves the /admin/accounts endpoints.
type AdminAccountsHandler struct {
	svc *appsvcs.Services
}

// NewAdminAccountsHandler returns an AdminAccountsHandler backed by the given services.
func NewAdminAccountsHandler(svc *appsvcs.Services) *AdminAccountsHandler {
	return &AdminAccountsHandler{svc: svc}
}

// Create provisions an account.
//
//	@Summary		Create account
//	@Description	Admins create accounts in their own company; superusers may name any company.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateAccountRequest	true	"Account"
//	@Success		201		{object}	AccountResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/accounts [post]
func (h *AdminAccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CreateAccountRequest](w, r)
	if !ok {
		return
	}

	preq := appsvcs.ProvisionRequest{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Role:      auth.Role(req.Role),
		CompanyID: uuid.NullUUID{UUID: id.CompanyID, Valid: true},
	}
	if id.Superuser {
		preq.Superuser = req.Superuser
		preq.CompanyID = uuid.NullUUID{}
		if req.CompanyID != nil {
			preq.CompanyID = uuid.NullUUID{UUID: *req.CompanyID, Valid: true}
		}
	} else if req.Superuser || (req.CompanyID != nil && *req.CompanyID != id.CompanyID) {
		errhttp.WriteError(w, auth.ErrForbidden)
		return
	}

	account, err := h.svc.Provisioning.Provision(r.Context(), preq)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, AccountResponse{
		ID:                account.ID,
		CompanyID:         account.CompanyID,
		Username:          account.Username,
		Email:             account.Email,
		Role:              string(account.Role),
		IsBlocked:         account.IsBlocked,
		FailedOrdersCount: account.FailedOrdersCount,
		CreatedAt:         account.CreatedAt,
	})
}

// BlockOverThreshold blocks every account at or over the failure threshold.
//
//	@Summary	Block accounts over the failure threshold
//	@Tags		admin
//	@Produce	json
//	@Success	200	{object}	BulkResultResponse
//	@Failure	403	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/admin/accounts/block-over-threshold [post]
func (h *AdminAccountsHandler) BlockOverThreshold(w http.ResponseWriter, r *http.Request) {
	id, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	ids, err := h.svc.Blocking.BlockOverThreshold(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, BulkResultResponse{Updated: int64(len(ids)), IDs: ids})
}

// ResetFailures zeroes failure counters.
//
//	@Summary	Reset failed order counters
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		request	body		AccountIDsRequest	true	"Accounts"
//	@Success	200		{object}	BulkResultResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/admin/accounts/reset-failures [post]
func (h *AdminAccountsHandler) ResetFailures(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, h.svc.Blocking.ResetFailures)
}

// Unblock clears the blocked flag.
//
//	@Summary	Unblock accounts
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		request	body		AccountIDsRequest	true	"Accounts"
//	@Success	200		{object}	BulkResultResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/admin/accounts/unblock [post]
func (h *AdminAccountsHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, h.svc.Blocking.Unblock)
}

func (h *AdminAccountsHandler) bulk(w http.ResponseWriter, r *http.Request, op func(context.Context, auth.Identity, []uuid.UUID) (int64, error)) {
	id, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[AccountIDsRequest](w, r)
	if !ok {
		return
	}
	n, err := op(r.Context(), id, req.AccountIDs)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, BulkResultResponse{Updated: n})
}

func requireAdmin(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, err := auth.IdentityFromCtx(r.Context())
	if err == nil {
		err = id.Require(auth.RoleAdmin)
	}
	if err != nil {
		errhttp.WriteError(w, err)
		return auth.Identity{}, false
	}
	return id, true
}
