// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/atelier-api/internal/query"
)

// ListUsers returns a filtered, paginated page of users.
func (h *Handlers) ListUsers(c echo.Context) error {
	// Users have no type or category column, so only search applies.
	q := query.Build(queryParams(c), query.Filter{SearchFields: []string{"username", "email"}})

	users, total, err := h.repo.ListUsers(c.Request().Context(), q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listBody(users, total, q))
}

// queryParams reads the shared pagination/filter parameters.
func queryParams(c echo.Context) query.Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return query.Params{
		Page:      page,
		Limit:     limit,
		Search:    c.QueryParam("search"),
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
		Type:      c.QueryParam("type"),
		Category:  c.QueryParam("category"),
	}
}

func listBody[T any](items []T, total int, q *query.Result) map[string]any {
	return map[string]any{
		"data":  items,
		"total": total,
		"page":  q.Page,
		"limit": q.Limit,
	}
}
