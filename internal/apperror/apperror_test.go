// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"codeberg.org/oliverandrich/atelier-api/internal/apperror"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind apperror.Kind
		want int
	}{
		{apperror.KindInvalidCredentials, http.StatusUnauthorized},
		{apperror.KindTokenExpired, http.StatusUnauthorized},
		{apperror.KindTokenInvalid, http.StatusUnauthorized},
		{apperror.KindEmailNotVerified, http.StatusForbidden},
		{apperror.KindCodeExpired, http.StatusBadRequest},
		{apperror.KindCodeInvalid, http.StatusBadRequest},
		{apperror.KindValidation, http.StatusBadRequest},
		{apperror.KindRateLimited, http.StatusTooManyRequests},
		{apperror.KindNotFound, http.StatusNotFound},
		{apperror.KindAlreadyExists, http.StatusConflict},
		{apperror.KindEmailDelivery, http.StatusInternalServerError},
		{apperror.KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.HTTPStatus(), string(tt.kind))
	}
}

func TestNew(t *testing.T) {
	err := apperror.New(apperror.KindNotFound, "user %s not found", "u1")

	assert.Equal(t, "user u1 not found", err.Error())
	assert.Equal(t, apperror.KindNotFound, err.Kind)
}

func TestKindOf(t *testing.T) {
	err := apperror.New(apperror.KindRateLimited, "slow down")

	assert.Equal(t, apperror.KindRateLimited, apperror.KindOf(err))
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(errors.New("plain")))
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", apperror.New(apperror.KindCodeInvalid, "bad code"))

	assert.Equal(t, apperror.KindCodeInvalid, apperror.KindOf(err))
}

func TestIs(t *testing.T) {
	err := apperror.New(apperror.KindValidation, "missing field")

	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.False(t, apperror.Is(err, apperror.KindNotFound))
	assert.False(t, apperror.Is(errors.New("plain"), apperror.KindValidation))
}
