package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("gone")))
	assert.Equal(t, CodePermissionDenied, CodeOf(Unauthorized("nope")))
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("plain")))
	assert.Equal(t, CodeUnknown, CodeOf(nil))
}

func TestCodeOfWrapped(t *testing.T) {
	inner := InvalidArg("bad input")
	wrapped := fmt.Errorf("handler: %w", inner)

	assert.Equal(t, CodeInvalidArgument, CodeOf(wrapped))
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("query failed", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{InvalidArg("x"), http.StatusBadRequest},
		{NotFound("x"), http.StatusNotFound},
		{NewError(CodeAlreadyExists, "x"), http.StatusConflict},
		{Unauthorized("x"), http.StatusForbidden},
		{Unauthenticated("x"), http.StatusUnauthorized},
		{Internal("x", nil), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, HTTPStatus(tc.err))
	}
}
