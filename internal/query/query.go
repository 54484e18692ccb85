// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package query translates list-endpoint query parameters into a SQL filter
// plus skip/limit values. Search is a case-insensitive substring match across
// a fixed set of text fields; date ranges are inclusive, with the end date
// normalized to end-of-day.
package query

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params are the raw pagination/filter query parameters.
type Params struct { //nolint:govet // fieldalignment: readability over optimization
	Page      int
	Limit     int
	Search    string
	StartDate string // "2006-01-02" or RFC 3339
	EndDate   string
	Type      string
	Category  string
}

// Filter declares which optional conditions a listing supports. Parameters
// without a matching entry are ignored, so an unknown filter matches
// everything instead of producing SQL for a column the table does not have.
type Filter struct {
	SearchFields []string
	ByType       bool
	ByCategory   bool
}

// Result is the storage-level translation of Params.
type Result struct { //nolint:govet // fieldalignment: readability over optimization
	Page  int
	Limit int
	Skip  int

	conds []string
	args  []any
}

// Build translates params into a Result, keeping only the conditions the
// filter allows.
func Build(p Params, f Filter) *Result {
	r := &Result{
		Page:  max(p.Page, 1),
		Limit: p.Limit,
	}
	if r.Limit < 1 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	r.Skip = (r.Page - 1) * r.Limit

	if search := strings.TrimSpace(p.Search); search != "" && len(f.SearchFields) > 0 {
		pattern := "%" + strings.ToLower(search) + "%"
		ors := make([]string, 0, len(f.SearchFields))
		for _, field := range f.SearchFields {
			ors = append(ors, fmt.Sprintf("LOWER(%s) LIKE ?", field))
			r.args = append(r.args, pattern)
		}
		r.conds = append(r.conds, "("+strings.Join(ors, " OR ")+")")
	}

	if f.ByCategory && p.Category != "" {
		r.conds = append(r.conds, "LOWER(category) = ?")
		r.args = append(r.args, strings.ToLower(p.Category))
	}

	start, startOK := parseDate(p.StartDate)
	end, endOK := parseDate(p.EndDate)
	if endOK {
		end = endOfDay(end)
	}
	switch {
	case startOK && endOK:
		r.conds = append(r.conds, "created_at >= ? AND created_at <= ?")
		r.args = append(r.args, start, end)
	case startOK:
		r.conds = append(r.conds, "created_at >= ?")
		r.args = append(r.args, start)
	case endOK:
		r.conds = append(r.conds, "created_at <= ?")
		r.args = append(r.args, end)
	}

	if f.ByType && p.Type != "" {
		r.conds = append(r.conds, "type = ?")
		r.args = append(r.args, p.Type)
	}

	return r
}

// Clause returns the WHERE fragment (with leading space, empty when
// unfiltered) and its arguments.
func (r *Result) Clause() (string, []any) {
	if len(r.conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(r.conds, " AND "), r.args
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, t.Location())
}
