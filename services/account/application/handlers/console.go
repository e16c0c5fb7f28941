package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/errhttp"
	"github.com/ghuser/orderdesk/pkg/httpx"
	"github.com/ghuser/orderdesk/pkg/logger"
	pkgvalidator "github.com/ghuser/orderdesk/pkg/validator"
	appsvcs "github.com/ghuser/orderdesk/services/account/application/services"
)

// SessionResponse describes the identity bound to a console session.
type SessionResponse struct {
	AccountID uuid.UUID `json:"account_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	CompanyID uuid.UUID `json:"company_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Role      string    `json:"role"       example:"operator"`
	Superuser bool      `json:"superuser"  example:"false"`
} // @name SessionResponse

// ConsoleLoginHandler handles POST /console/login requests.
type ConsoleLoginHandler struct {
	svc   *appsvcs.Services
	store sessions.Store
	log   logger.Logger
}

// NewConsoleLoginHandler returns a ConsoleLoginHandler writing sessions to store.
func NewConsoleLoginHandler(svc *appsvcs.Services, store sessions.Store, log logger.Logger) *ConsoleLoginHandler {
	return &ConsoleLoginHandler{svc: svc, store: store, log: log}
}

// Execute starts a console session.
//
//	@Summary		Console login
//	@Description	Authenticates and sets the console session cookie. Blocked accounts get 403.
//	@Tags			console
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	SessionResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Router			/console/login [post]
func (h *ConsoleLoginHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[LoginRequest](w, r)
	if !ok {
		return
	}

	account, err := h.svc.Auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	id := account.Identity()
	if err := auth.StartSession(w, r, h.store, id); err != nil {
		h.log.ErrorContext(r.Context(), "failed to start console session", "error", err, "account_id", id.AccountID)
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, sessionResponse(id))
}

// ConsoleLogoutHandler handles POST /console/logout requests.
type ConsoleLogoutHandler struct {
	store sessions.Store
}

// NewConsoleLogoutHandler returns a ConsoleLogoutHandler.
func NewConsoleLogoutHandler(store sessions.Store) *ConsoleLogoutHandler {
	return &ConsoleLogoutHandler{store: store}
}

// Execute ends the console session.
//
//	@Summary	Console logout
//	@Tags		console
//	@Success	204
//	@Router		/console/logout [post]
func (h *ConsoleLogoutHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if err := auth.EndSession(w, r, h.store); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MeHandler handles GET /me requests.
type MeHandler struct{}

// Execute returns the caller's identity.
//
//	@Summary	Current identity
//	@Tags		console
//	@Produce	json
//	@Success	200	{object}	SessionResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/me [get]
func (MeHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse(id))
}

func sessionResponse(id auth.Identity) SessionResponse {
	return SessionResponse{
		AccountID: id.AccountID,
		CompanyID: id.CompanyID,
		Role:      string(id.Role),
		Superuser: id.Superuser,
	}
}
