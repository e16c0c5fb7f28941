package handlers

import (
	"net/http"
	"time"

	"github.com/ghuser/orderdesk/pkg/errhttp"
	"github.com/ghuser/orderdesk/pkg/httpx"
	pkgvalidator "github.com/ghuser/orderdesk/pkg/validator"
	appsvcs "github.com/ghuser/orderdesk/services/account/application/services"
)

// LoginRequest is the credential body shared by both login entry points.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=150" example:"alice"`
	Password string `json:"password" validate:"required,max=128" example:"s3cret-pass"`
} // @name LoginRequest

// TokenResponse is returned by POST /auth/token.
type TokenResponse struct {
	Token     string    `json:"token"      example:"eyJhbGciOiJIUzI1NiIs..."`
	TokenType string    `json:"token_type" example:"Bearer"`
	ExpiresAt time.Time `json:"expires_at" example:"2024-01-15T22:30:00Z"`
} // @name TokenResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"account blocked"`
} // @name ErrorResponse

// PostTokenHandler handles POST /auth/token requests.
type PostTokenHandler struct {
	svc *appsvcs.Services
}

// NewPostTokenHandler returns a PostTokenHandler backed by the given services.
func NewPostTokenHandler(svc *appsvcs.Services) *PostTokenHandler {
	return &PostTokenHandler{svc: svc}
}

// Execute exchanges credentials for an API token.
//
//	@Summary		Issue API token
//	@Description	Exchanges username and password for a bearer token. Blocked accounts get 403.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	TokenResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/auth/token [post]
func (h *PostTokenHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[LoginRequest](w, r)
	if !ok {
		return
	}

	token, exp, err := h.svc.Auth.IssueToken(r.Context(), req.Username, req.Password)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, TokenResponse{Token: token, TokenType: "Bearer", ExpiresAt: exp})
}
