package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fixmarket/marketplace-system/internal/api/metrics"
	"github.com/fixmarket/marketplace-system/internal/core/domain"
	"github.com/fixmarket/marketplace-system/internal/core/ports"
)

// PaymentHandler handles HTTP requests for the escrow ledger.
type PaymentHandler struct {
	service ports.PaymentService
}

func NewPaymentHandler(service ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

type fundEscrowRequest struct {
	JobID  string  `json:"job_id" validate:"required"`
	Gross  float64 `json:"gross"  validate:"required,gt=0"`
	Method string  `json:"method" validate:"required,oneof=card transfer cash"`
}

type refundEscrowRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type paymentResponse struct {
	ID             string     `json:"id"`
	JobID          string     `json:"job_id"`
	ClientID       string     `json:"client_id"`
	ProfessionalID string     `json:"professional_id"`
	Gross          float64    `json:"gross"`
	Fee            float64    `json:"fee"`
	Net            float64    `json:"net"`
	Method         string     `json:"method"`
	Status         string     `json:"status"`
	RefundReason   string     `json:"refund_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	SettledAt      *time.Time `json:"settled_at,omitempty"`
}

type paymentListResponse struct {
	Data       []paymentResponse  `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type earningsResponse struct {
	ReleasedTotal float64 `json:"released_total"`
	ReleasedCount int     `json:"released_count"`
	HeldTotal     float64 `json:"held_total"`
	HeldCount     int     `json:"held_count"`
}

func toPaymentResponse(p *domain.EscrowPayment) paymentResponse {
	return paymentResponse{
		ID:             p.ID,
		JobID:          p.JobID,
		ClientID:       p.ClientID,
		ProfessionalID: p.ProfessionalID,
		Gross:          p.Gross,
		Fee:            p.Fee,
		Net:            p.Net,
		Method:         p.Method,
		Status:         string(p.Status),
		RefundReason:   p.RefundReason,
		CreatedAt:      p.CreatedAt.UTC(),
		SettledAt:      p.SettledAt,
	}
}

// Fund handles POST /v1/escrow: the client funds escrow for the accepted offer.
//
// @Summary      Fund escrow for a job
// @Tags         escrow
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      fundEscrowRequest  true  "Funding details; gross must equal the accepted offer"
// @Success      201   {object}  paymentResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/escrow [post]
func (h *PaymentHandler) Fund(c echo.Context) error {
	var req fundEscrowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	clientID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	payment, err := h.service.Fund(c.Request().Context(), ports.FundEscrowInput{
		JobID:    req.JobID,
		ClientID: clientID,
		Gross:    req.Gross,
		Method:   req.Method,
	})
	if err != nil {
		return err
	}

	metrics.EscrowFundedTotal.Inc()

	return c.JSON(http.StatusCreated, toPaymentResponse(payment))
}

// Release handles POST /v1/escrow/:id/release.
//
// @Summary      Release escrow to the professional
// @Tags         escrow
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Payment id"
// @Success      200  {object}  paymentResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/escrow/{id}/release [post]
func (h *PaymentHandler) Release(c echo.Context) error {
	clientID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	payment, err := h.service.Release(c.Request().Context(), ports.ReleaseEscrowInput{
		PaymentID: c.Param("id"),
		ClientID:  clientID,
	})
	if err != nil {
		return err
	}

	observeSettlement(payment, "released")

	return c.JSON(http.StatusOK, toPaymentResponse(payment))
}

// Refund handles POST /v1/escrow/:id/refund.
//
// @Summary      Refund escrow to the client
// @Tags         escrow
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Payment id"
// @Param        body  body      refundEscrowRequest  true  "Refund reason"
// @Success      200   {object}  paymentResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/escrow/{id}/refund [post]
func (h *PaymentHandler) Refund(c echo.Context) error {
	var req refundEscrowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actorID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	payment, err := h.service.Refund(c.Request().Context(), ports.RefundEscrowInput{
		PaymentID: c.Param("id"),
		ActorID:   actorID,
		Reason:    req.Reason,
	})
	if err != nil {
		return err
	}

	observeSettlement(payment, "refunded")

	return c.JSON(http.StatusOK, toPaymentResponse(payment))
}

// List handles GET /v1/escrow: payments where the caller is a party.
//
// @Summary      List my payments
// @Tags         escrow
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  paymentListResponse
// @Failure      401    {object}  errorResponse
// @Router       /v1/escrow [get]
func (h *PaymentHandler) List(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	page, limit := pageParams(c)
	result, err := h.service.List(c.Request().Context(), ports.ListPaymentsInput{
		UserID: userID,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	items := make([]paymentResponse, len(result.Items))
	for i, p := range result.Items {
		items[i] = toPaymentResponse(p)
	}
	return c.JSON(http.StatusOK, paymentListResponse{
		Data: items,
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

// Earnings handles GET /v1/escrow/earnings: the professional's aggregated
// released and held totals.
//
// @Summary      Get my earnings
// @Tags         escrow
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  earningsResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/escrow/earnings [get]
func (h *PaymentHandler) Earnings(c echo.Context) error {
	professionalID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	earnings, err := h.service.Earnings(c.Request().Context(), professionalID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, earningsResponse{
		ReleasedTotal: earnings.ReleasedTotal,
		ReleasedCount: earnings.ReleasedCount,
		HeldTotal:     earnings.HeldTotal,
		HeldCount:     earnings.HeldCount,
	})
}

func observeSettlement(p *domain.EscrowPayment, outcome string) {
	metrics.EscrowSettledTotal.WithLabelValues(outcome).Inc()
	if p.SettledAt != nil {
		metrics.EscrowHeldDuration.Observe(p.SettledAt.Sub(p.CreatedAt).Seconds())
	}
}
