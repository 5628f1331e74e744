package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		want   error
	}{
		{http.StatusOK, nil},
		{http.StatusCreated, nil},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusBadRequest, ErrValidation},
		{http.StatusUnprocessableEntity, ErrValidation},
		{http.StatusInternalServerError, ErrServer},
		{http.StatusBadGateway, ErrServer},
		{http.StatusTeapot, ErrUnknown},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FromStatus(tc.status), "status %d", tc.status)
	}
}

func TestRemoteError_UnwrapsToKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("accept: %w", &RemoteError{Op: "accept order", Status: 409, Message: "taken", Kind: ErrConflict})

	require.ErrorIs(t, err, ErrConflict)
	require.Equal(t, "taken", Message(err))
	require.Equal(t, 409, Status(err))
	require.Equal(t, "conflict", Kind(err))
	require.Contains(t, err.Error(), "status 409")
}

func TestRemoteError_NilKindIsUnknown(t *testing.T) {
	t.Parallel()

	err := &RemoteError{Op: "get order"}
	require.ErrorIs(t, err, ErrUnknown)
	require.Equal(t, "get order: unknown error", err.Error())
}

func TestDerivedSentinels_AreValidation(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, ErrInvalidCode, ErrValidation)
	require.ErrorIs(t, ErrNotAssigned, ErrValidation)
	require.Equal(t, "validation_failed", Kind(ErrInvalidCode))
}

func TestKind(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", Kind(nil))
	require.Equal(t, "network_unreachable", Kind(ErrNetworkUnreachable))
	require.Equal(t, "unauthorized", Kind(ErrUnauthorized))
	require.Equal(t, "not_found", Kind(ErrNotFound))
	require.Equal(t, "server_error", Kind(ErrServer))
	require.Equal(t, "unknown", Kind(errors.New("x")))
	require.Equal(t, "unknown", Kind(context.Canceled))
	require.Equal(t, 0, Status(errors.New("x")))
	require.Empty(t, Message(errors.New("x")))
}
