package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fixmarket/marketplace-system/internal/api/metrics"
	"github.com/fixmarket/marketplace-system/internal/core/domain"
	"github.com/fixmarket/marketplace-system/internal/core/ports"
)

// DisputeHandler handles HTTP requests for disputes and their administrative
// resolution.
type DisputeHandler struct {
	service ports.DisputeService
}

func NewDisputeHandler(service ports.DisputeService) *DisputeHandler {
	return &DisputeHandler{service: service}
}

type openDisputeRequest struct {
	PaymentID string   `json:"payment_id" validate:"required"`
	Category  string   `json:"category"   validate:"required"`
	Reason    string   `json:"reason"     validate:"required"`
	Evidence  []string `json:"evidence"   validate:"max=5"`
}

type resolveDisputeRequest struct {
	Favor      string `json:"favor"      validate:"required,oneof=client professional"`
	Resolution string `json:"resolution" validate:"required"`
}

type disputeResponse struct {
	ID         string     `json:"id"`
	PaymentID  string     `json:"payment_id"`
	JobID      string     `json:"job_id"`
	CreatorID  string     `json:"creator_id"`
	Category   string     `json:"category"`
	Reason     string     `json:"reason"`
	Evidence   []string   `json:"evidence,omitempty"`
	Status     string     `json:"status"`
	Resolution string     `json:"resolution,omitempty"`
	ResolvedBy string     `json:"resolved_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

type disputeListResponse struct {
	Data       []disputeResponse  `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

func toDisputeResponse(d *domain.Dispute) disputeResponse {
	return disputeResponse{
		ID:         d.ID,
		PaymentID:  d.PaymentID,
		JobID:      d.JobID,
		CreatorID:  d.CreatorID,
		Category:   d.Category,
		Reason:     d.Reason,
		Evidence:   d.Evidence,
		Status:     string(d.Status),
		Resolution: d.Resolution,
		ResolvedBy: d.ResolvedBy,
		CreatedAt:  d.CreatedAt.UTC(),
		ResolvedAt: d.ResolvedAt,
	}
}

// Open handles POST /v1/disputes: either party escalates a paid payment.
//
// @Summary      Open a dispute
// @Tags         disputes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      openDisputeRequest  true  "Dispute claim"
// @Success      201   {object}  disputeResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/disputes [post]
func (h *DisputeHandler) Open(c echo.Context) error {
	var req openDisputeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	creatorID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	dispute, err := h.service.Open(c.Request().Context(), ports.OpenDisputeInput{
		PaymentID: req.PaymentID,
		CreatorID: creatorID,
		Category:  req.Category,
		Reason:    req.Reason,
		Evidence:  req.Evidence,
	})
	if err != nil {
		return err
	}

	metrics.DisputesOpenedTotal.Inc()

	return c.JSON(http.StatusCreated, toDisputeResponse(dispute))
}

// List handles GET /v1/disputes: the admin queue.
//
// @Summary      List disputes
// @Tags         disputes
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by dispute status"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  disputeListResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /v1/disputes [get]
func (h *DisputeHandler) List(c echo.Context) error {
	page, limit := pageParams(c)
	result, err := h.service.List(c.Request().Context(), ports.ListDisputesFilter{
		Status: c.QueryParam("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	items := make([]disputeResponse, len(result.Items))
	for i, d := range result.Items {
		items[i] = toDisputeResponse(d)
	}
	return c.JSON(http.StatusOK, disputeListResponse{
		Data: items,
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

// Review handles POST /v1/disputes/:id/review.
//
// @Summary      Move a dispute into review
// @Tags         disputes
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Dispute id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/disputes/{id}/review [post]
func (h *DisputeHandler) Review(c echo.Context) error {
	if err := h.service.Review(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "in_review"})
}

// Resolve handles POST /v1/disputes/:id/resolve.
//
// @Summary      Resolve a dispute
// @Tags         disputes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Dispute id"
// @Param        body  body      resolveDisputeRequest  true  "Resolution; favor decides release vs refund"
// @Success      200   {object}  disputeResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/disputes/{id}/resolve [post]
func (h *DisputeHandler) Resolve(c echo.Context) error {
	var req resolveDisputeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	adminID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	dispute, err := h.service.Resolve(c.Request().Context(), ports.ResolveDisputeInput{
		DisputeID:  c.Param("id"),
		AdminID:    adminID,
		Resolution: req.Resolution,
		Favor:      req.Favor,
	})
	if err != nil {
		return err
	}

	metrics.DisputesResolvedTotal.WithLabelValues(req.Favor).Inc()

	return c.JSON(http.StatusOK, toDisputeResponse(dispute))
}
