// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/atelier-api/internal/apperror"
	"codeberg.org/oliverandrich/atelier-api/internal/models"
	"codeberg.org/oliverandrich/atelier-api/internal/query"
)

// CreateRequestRequest is the request body for a customer inquiry.
type CreateRequestRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	TextileName string `json:"textileName"`
	Type        string `json:"type"`
	Category    string `json:"category"`
}

// CreateRequest records a customer inquiry and its admin notification.
func (h *Handlers) CreateRequest(c echo.Context) error {
	var req CreateRequestRequest
	if err := c.Bind(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid request body")
	}
	if req.Name == "" || req.PhoneNumber == "" || req.Type == "" {
		return apperror.New(apperror.KindValidation, "name, phoneNumber and type are required")
	}

	request := &models.Request{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		TextileName: req.TextileName,
		Type:        req.Type,
		Category:    req.Category,
	}
	if _, err := h.repo.CreateRequestWithNotification(c.Request().Context(), request); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, request)
}

// ListRequests returns a filtered, paginated page of inquiries.
func (h *Handlers) ListRequests(c echo.Context) error {
	q := query.Build(queryParams(c), query.Filter{
		SearchFields: []string{"name", "phone_number", "textile_name"},
		ByType:       true,
		ByCategory:   true,
	})

	requests, total, err := h.repo.ListRequests(c.Request().Context(), q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listBody(requests, total, q))
}

// ListNotifications returns unread notifications, newest first.
func (h *Handlers) ListNotifications(c echo.Context) error {
	notifications, err := h.repo.ListUnreadNotifications(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead flags a notification as read.
func (h *Handlers) MarkNotificationRead(c echo.Context) error {
	if err := h.repo.MarkNotificationRead(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "notification marked as read",
	})
}
