// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers contains the echo HTTP handlers.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/atelier-api/internal/repository"
)

// Handlers contains the handlers that only need data access.
type Handlers struct {
	repo *repository.Repository
}

// New creates a new Handlers instance.
func New(repo *repository.Repository) *Handlers {
	return &Handlers{repo: repo}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
