package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
	"github.com/fixmarket/marketplace-system/internal/core/ports"
)

// NotificationHandler is the polling read side of the notification fan-out.
type NotificationHandler struct {
	service ports.NotificationService
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type notificationResponse struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Payload   map[string]any `json:"payload,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}

type notificationListResponse struct {
	Data        []notificationResponse `json:"data"`
	UnreadCount int64                  `json:"unread_count"`
	Pagination  paginationResponse     `json:"pagination"`
}

func toNotificationResponse(n *domain.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		Kind:      string(n.Kind),
		Payload:   n.Payload,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.UTC(),
	}
}

// List handles GET /v1/notifications.
//
// @Summary      List my notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  notificationListResponse
// @Failure      401    {object}  errorResponse
// @Router       /v1/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	page, limit := pageParams(c)
	result, err := h.service.List(c.Request().Context(), userID, page, limit)
	if err != nil {
		return err
	}

	items := make([]notificationResponse, len(result.Items))
	for i, n := range result.Items {
		items[i] = toNotificationResponse(n)
	}
	return c.JSON(http.StatusOK, notificationListResponse{
		Data:        items,
		UnreadCount: result.UnreadCount,
		Pagination: paginationResponse{
			Total: result.Total,
			Page:  result.Page,
			Limit: result.Limit,
		},
	})
}

// MarkRead handles POST /v1/notifications/:id/read.
//
// @Summary      Mark a notification read
// @Tags         notifications
// @Security     BearerAuth
// @Param        id  path  string  true  "Notification id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.service.MarkRead(c.Request().Context(), c.Param("id"), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles POST /v1/notifications/read-all.
//
// @Summary      Mark all my notifications read
// @Tags         notifications
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /v1/notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.service.MarkAllRead(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
