package errors_test

import (
	"testing"

	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	require.NoError(t, ierrors.Wrapf(nil, "ignored"))

	err := ierrors.Wrapf(ierrors.ErrNotFound, "scope %s", "api.read")
	require.EqualError(t, err, "scope api.read: not found")
	require.True(t, ierrors.Is(err, ierrors.ErrNotFound))
	require.False(t, ierrors.Is(err, ierrors.ErrAlreadyExists))
}
