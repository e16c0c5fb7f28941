package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/errhttp"
	"github.com/ghuser/orderdesk/pkg/httpx"
	"github.com/ghuser/orderdesk/pkg/logger"
	pkgvalidator "github.com/ghuser/orderdesk/pkg/validator"
	appsvcs "github.com/ghuser/orderdesk/services/export/application/services"
	"github.com/ghuser/orderdesk/services/export/domain/models"
)

// RequestExportRequest is the request body for POST /exports.
type RequestExportRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" validate:"required,min=1,max=1000"`
} // @name RequestExportRequest

// ExportResponse is the public view of an export.
type ExportResponse struct {
	ID          uuid.UUID `json:"id"           example:"123e4567-e89b-12d3-a456-426614174000"`
	CompanyID   uuid.UUID `json:"company_id"   example:"550e8400-e29b-41d4-a716-446655440000"`
	RequestedBy uuid.UUID `json:"requested_by" example:"6ba7b811-9dad-11d1-80b4-00c04fd430c8"`
	Status      string    `json:"status"       example:"ready"`
	FileName    string    `json:"file_name,omitempty" example:"exports/export_1700000000000000000_123e4567-e89b-12d3-a456-426614174000.csv"`
	Note        string    `json:"note,omitempty"      example:"read orders: connection refused"`
	CreatedAt   time.Time `json:"created_at"   example:"2024-01-15T10:30:00Z"`
	UpdatedAt   time.Time `json:"updated_at"   example:"2024-01-15T10:30:05Z"`
} // @name ExportResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"export is not ready"`
} // @name ErrorResponse

// ExportsHandler serves the /exports endpoints.
type ExportsHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewExportsHandler returns an ExportsHandler backed by the given services.
func NewExportsHandler(svc *appsvcs.Services, log logger.Logger) *ExportsHandler {
	return &ExportsHandler{svc: svc, log: log}
}

// Request creates an export and queues its generation.
//
//	@Summary		Request export
//	@Description	Records a pending export of the given orders and queues the CSV generation. Poll GET /exports/{id} for the outcome.
//	@Tags			exports
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RequestExportRequest	true	"Orders to export"
//	@Success		202		{object}	ExportResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/exports [post]
func (h *ExportsHandler) Request(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[RequestExportRequest](w, r)
	if !ok {
		return
	}
	e, err := h.svc.Exports.Request(r.Context(), id, req.OrderIDs)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, toExportResponse(e))
}

// Get returns one export.
//
//	@Summary	Get export
//	@Tags		exports
//	@Produce	json
//	@Param		id	path		string	true	"Export ID"	format(uuid)
//	@Success	200	{object}	ExportResponse
//	@Failure	404	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/exports/{id} [get]
func (h *ExportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, exportID, ok := identityAndExportID(w, r)
	if !ok {
		return
	}
	e, err := h.svc.Exports.Get(r.Context(), id, exportID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toExportResponse(e))
}

// Download streams the generated CSV.
//
//	@Summary	Download export
//	@Tags		exports
//	@Produce	text/csv
//	@Param		id	path		string	true	"Export ID"	format(uuid)
//	@Success	200	{file}		file
//	@Failure	400	{object}	ErrorResponse	"Export not ready"
//	@Failure	404	{object}	ErrorResponse	"Export or file not found"
//	@Security	BearerAuth
//	@Router		/exports/{id}/download [get]
func (h *ExportsHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, exportID, ok := identityAndExportID(w, r)
	if !ok {
		return
	}
	rc, name, err := h.svc.Exports.Download(r.Context(), id, exportID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	defer rc.Close() //nolint:errcheck

	if err := httpx.Attachment(w, name, "text/csv", rc); err != nil {
		h.log.WarnContext(r.Context(), "export download interrupted", "export_id", exportID, "error", err)
	}
}

func identityAndExportID(w http.ResponseWriter, r *http.Request) (auth.Identity, uuid.UUID, bool) {
	id, err := auth.IdentityFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return id, uuid.Nil, false
	}
	exportID, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return id, uuid.Nil, false
	}
	return id, exportID, true
}

func toExportResponse(e *models.Export) ExportResponse {
	return ExportResponse{
		ID:          e.ID,
		CompanyID:   e.CompanyID,
		RequestedBy: e.RequestedBy,
		Status:      string(e.Status),
		FileName:    e.FileName,
		Note:        e.Note,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
